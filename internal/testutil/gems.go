// Package testutil provides gem fixtures shared by adapter, app and
// integration tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// GemDependency is a dependency entry of a fixture gem. Requirements are
// "op version" strings; empty means ">= 0".
type GemDependency struct {
	Name         string
	Type         string
	Requirements []string
}

// Gem describes a fixture gem and the files it ships.
type Gem struct {
	Name         string
	Version      string
	Summary      string
	Description  string
	Authors      []string
	Email        []string
	Homepage     string
	Licenses     []string
	Metadata     map[string]string
	Requirements []string
	RequirePaths []string
	Dependencies []GemDependency
	Files        map[string]string
}

// FullName is "name-version".
func (g Gem) FullName() string {
	return g.Name + "-" + g.Version
}

// SpecYAML renders the gem the way `gem specification --yaml` does,
// Ruby object tags included.
func (g Gem) SpecYAML() string {
	var b strings.Builder
	b.WriteString("--- !ruby/object:Gem::Specification\n")
	fmt.Fprintf(&b, "name: %s\n", g.Name)
	b.WriteString("version: !ruby/object:Gem::Version\n")
	fmt.Fprintf(&b, "  version: %s\n", quote(g.Version))
	b.WriteString("platform: ruby\n")
	writeList(&b, "authors", g.Authors)
	b.WriteString("bindir: bin\n")
	b.WriteString("date: 2015-01-01 00:00:00.000000000 Z\n")
	if len(g.Dependencies) == 0 {
		b.WriteString("dependencies: []\n")
	} else {
		b.WriteString("dependencies:\n")
		for _, dep := range g.Dependencies {
			depType := dep.Type
			if depType == "" {
				depType = "runtime"
			}
			requirements := dep.Requirements
			if len(requirements) == 0 {
				requirements = []string{">= 0"}
			}
			b.WriteString("- !ruby/object:Gem::Dependency\n")
			fmt.Fprintf(&b, "  name: %s\n", dep.Name)
			b.WriteString("  requirement: !ruby/object:Gem::Requirement\n")
			b.WriteString("    requirements:\n")
			for _, req := range requirements {
				op, version, _ := strings.Cut(req, " ")
				fmt.Fprintf(&b, "    - - %s\n", quote(op))
				b.WriteString("      - !ruby/object:Gem::Version\n")
				fmt.Fprintf(&b, "        version: %s\n", quote(version))
			}
			fmt.Fprintf(&b, "  type: :%s\n", depType)
			b.WriteString("  prerelease: false\n")
		}
	}
	if g.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", quote(g.Description))
	}
	writeList(&b, "email", g.Email)
	b.WriteString("executables: []\n")
	b.WriteString("files:\n")
	for _, name := range sortedKeys(g.Files) {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	if g.Homepage != "" {
		fmt.Fprintf(&b, "homepage: %s\n", g.Homepage)
	}
	writeList(&b, "licenses", g.Licenses)
	if len(g.Metadata) == 0 {
		b.WriteString("metadata: {}\n")
	} else {
		b.WriteString("metadata:\n")
		for _, key := range sortedKeys(g.Metadata) {
			fmt.Fprintf(&b, "  %s: %s\n", key, quote(g.Metadata[key]))
		}
	}
	b.WriteString("post_install_message:\n")
	requirePaths := g.RequirePaths
	if len(requirePaths) == 0 {
		requirePaths = []string{"lib"}
	}
	writeList(&b, "require_paths", requirePaths)
	writeList(&b, "requirements", g.Requirements)
	b.WriteString("rubygems_version: 2.4.5\n")
	b.WriteString("signing_key:\n")
	b.WriteString("specification_version: 4\n")
	if g.Summary != "" {
		fmt.Fprintf(&b, "summary: %s\n", quote(g.Summary))
	}
	b.WriteString("test_files: []\n")
	return b.String()
}

// WriteTree writes files below root.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// WriteSourceTree lays the gem out as a source checkout with a
// metadata.yaml and returns its root.
func WriteSourceTree(t *testing.T, dir string, gem Gem) string {
	t.Helper()
	root := filepath.Join(dir, gem.Name)
	WriteTree(t, root, gem.Files)
	require.NoError(t, os.WriteFile(filepath.Join(root, "metadata.yaml"), []byte(gem.SpecYAML()), 0644))
	return root
}

// InstallGem installs the gem into a GEM_HOME style directory:
// specifications/<full>.yaml and gems/<full>/.
func InstallGem(t *testing.T, gemHome string, gem Gem) string {
	t.Helper()
	root := filepath.Join(gemHome, "gems", gem.FullName())
	WriteTree(t, root, gem.Files)
	specDir := filepath.Join(gemHome, "specifications")
	require.NoError(t, os.MkdirAll(specDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(specDir, gem.FullName()+".yaml"), []byte(gem.SpecYAML()), 0644))
	return root
}

// BuildGemArchive writes a .gem archive for gem into dir and returns its
// path.
func BuildGemArchive(t *testing.T, dir string, gem Gem) string {
	t.Helper()
	var metadata bytes.Buffer
	gz := gzip.NewWriter(&metadata)
	_, err := gz.Write([]byte(gem.SpecYAML()))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	var data bytes.Buffer
	gz = gzip.NewWriter(&data)
	inner := tar.NewWriter(gz)
	for _, name := range sortedKeys(gem.Files) {
		writeTarEntry(t, inner, name, []byte(gem.Files[name]))
	}
	require.NoError(t, inner.Close())
	require.NoError(t, gz.Close())

	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, gem.FullName()+".gem")
	var outer bytes.Buffer
	tw := tar.NewWriter(&outer)
	writeTarEntry(t, tw, "metadata.gz", metadata.Bytes())
	writeTarEntry(t, tw, "data.tar.gz", data.Bytes())
	require.NoError(t, tw.Close())
	require.NoError(t, os.WriteFile(path, outer.Bytes(), 0644))
	return path
}

var fixtureTime = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

func writeTarEntry(t *testing.T, tw *tar.Writer, name string, content []byte) {
	t.Helper()
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Mode:     0644,
		Size:     int64(len(content)),
		ModTime:  fixtureTime,
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
}

func writeList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s: []\n", key)
		return
	}
	fmt.Fprintf(b, "%s:\n", key)
	for _, value := range values {
		fmt.Fprintf(b, "- %s\n", quote(value))
	}
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
