package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gemcook/internal/ports"
	"gemcook/internal/shared"
	"gemcook/internal/types"
)

// SourceSpecFile is the specification file that marks a gem source tree.
const SourceSpecFile = "metadata.yaml"

// GemLocatorAdapter finds gems in GEM_HOME style directories, in .gem
// archives and in source trees carrying a metadata.yaml.
type GemLocatorAdapter struct {
	// GemPaths are searched in order. Each may hold specifications/*.yaml
	// with matching gems/<name>-<version>/ trees, and .gem archives either
	// directly or under cache/.
	GemPaths []string
	// InstallDir receives archives that have no unpacked tree yet.
	InstallDir string
}

func NewGemLocatorAdapter(gemPaths []string, installDir string) GemLocatorAdapter {
	return GemLocatorAdapter{GemPaths: gemPaths, InstallDir: installDir}
}

// DefaultGemPaths returns GEM_PATH, or GEM_HOME when GEM_PATH is unset.
func DefaultGemPaths() []string {
	value := os.Getenv("GEM_PATH")
	if strings.TrimSpace(value) == "" {
		value = os.Getenv("GEM_HOME")
	}
	var out []string
	for _, entry := range filepath.SplitList(value) {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

type gemCandidate struct {
	spec    types.GemSpec
	root    string
	archive string
}

func (a GemLocatorAdapter) Locate(ctx context.Context, ref types.PackageRef) (types.Package, error) {
	switch r := ref.(type) {
	case types.ResolvedPackage:
		return r.Package, nil
	case types.PackageByName:
		return a.locateByName(ctx, r)
	default:
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported package reference %T", ref))
	}
}

func (a GemLocatorAdapter) locateByName(ctx context.Context, ref types.PackageByName) (types.Package, error) {
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("gem name is empty")
	}

	var candidates []gemCandidate
	switch {
	case strings.HasSuffix(name, ".gem") && isFile(name):
		spec, err := readGemArchiveSpec(name)
		if err != nil {
			return types.Package{}, err
		}
		candidates = append(candidates, gemCandidate{spec: spec, root: a.installRoot(spec), archive: name})
	case isFile(filepath.Join(name, SourceSpecFile)):
		spec, err := readSpecFile(filepath.Join(name, SourceSpecFile))
		if err != nil {
			return types.Package{}, err
		}
		candidates = append(candidates, gemCandidate{spec: spec, root: name})
	default:
		found, err := a.scan(ctx, name)
		if err != nil {
			return types.Package{}, err
		}
		candidates = found
	}

	chosen, ok, err := selectCandidate(candidates, ref.Requirements)
	if err != nil {
		return types.Package{}, err
	}
	if !ok {
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("cannot find a gem to satisfy %s", describeRequest(name, ref.Requirements)))
	}
	return a.load(ctx, chosen)
}

// scan collects every installed or cached version of name.
func (a GemLocatorAdapter) scan(ctx context.Context, name string) ([]gemCandidate, error) {
	var out []gemCandidate
	seen := map[string]struct{}{}
	add := func(candidate gemCandidate) {
		full := candidate.spec.FullName()
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		out = append(out, candidate)
	}

	for _, dir := range a.GemPaths {
		specs, err := filepath.Glob(filepath.Join(dir, "specifications", "*.yaml"))
		if err != nil {
			return nil, err
		}
		for _, path := range specs {
			if !strings.HasPrefix(filepath.Base(path), name+"-") {
				continue
			}
			spec, err := readSpecFile(path)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable specification")
				continue
			}
			if spec.Name == name {
				add(gemCandidate{spec: spec, root: filepath.Join(dir, "gems", spec.FullName())})
			}
		}

		for _, pattern := range []string{filepath.Join(dir, name+"-*.gem"), filepath.Join(dir, "cache", name+"-*.gem")} {
			archives, err := filepath.Glob(pattern)
			if err != nil {
				return nil, err
			}
			for _, path := range archives {
				spec, err := readGemArchiveSpec(path)
				if err != nil {
					log.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping unreadable gem archive")
					continue
				}
				if spec.Name != name {
					continue
				}
				root := filepath.Join(dir, "gems", spec.FullName())
				if !isDir(root) {
					root = a.installRoot(spec)
				}
				add(gemCandidate{spec: spec, root: root, archive: path})
			}
		}
	}
	log.Ctx(ctx).Debug().Str("gem", name).Int("candidates", len(out)).Msg("gem paths scanned")
	return out, nil
}

func (a GemLocatorAdapter) installRoot(spec types.GemSpec) string {
	return filepath.Join(a.InstallDir, "gems", spec.FullName())
}

// load unpacks the candidate when needed and builds its package model.
func (a GemLocatorAdapter) load(ctx context.Context, candidate gemCandidate) (types.Package, error) {
	if candidate.archive != "" && !isDir(candidate.root) {
		if strings.TrimSpace(a.InstallDir) == "" {
			return types.Package{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("install directory is required to unpack " + candidate.archive)
		}
		staging := candidate.root + ".partial"
		if err := os.RemoveAll(staging); err != nil {
			return types.Package{}, types.ConversionError("failed to clear "+staging, err)
		}
		if err := os.MkdirAll(staging, 0755); err != nil {
			return types.Package{}, types.ConversionError("failed to create "+staging, err)
		}
		if err := unpackGemArchive(candidate.archive, staging); err != nil {
			_ = os.RemoveAll(staging)
			return types.Package{}, err
		}
		if err := os.Rename(staging, candidate.root); err != nil {
			_ = os.RemoveAll(staging)
			return types.Package{}, types.ConversionError("failed to install "+candidate.spec.FullName(), err)
		}
		log.Ctx(ctx).Debug().Str("archive", candidate.archive).Str("root", candidate.root).Msg("gem unpacked")
	}
	pkg, err := buildPackage(candidate.spec, candidate.root)
	if err != nil {
		return types.Package{}, err
	}
	log.Ctx(ctx).Debug().
		Str("gem", candidate.spec.FullName()).
		Str("root", candidate.root).
		Int("library_files", len(pkg.LibraryFiles)).
		Msg("gem located")
	return pkg, nil
}

// selectCandidate picks the highest release satisfying every requirement
// and falls back to the highest pre-release.
func selectCandidate(candidates []gemCandidate, requirements []string) (gemCandidate, bool, error) {
	cache := newVersionCache()
	ordered := append([]gemCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return cache.compare(ordered[i].spec.Version, ordered[j].spec.Version) > 0
	})
	var prerelease *gemCandidate
	for i := range ordered {
		ok, err := cache.satisfiesAll(ordered[i].spec.Version, requirements)
		if err != nil {
			return gemCandidate{}, false, err
		}
		if !ok {
			continue
		}
		if !shared.IsPrerelease(ordered[i].spec.Version) {
			return ordered[i], true, nil
		}
		if prerelease == nil {
			prerelease = &ordered[i]
		}
	}
	if prerelease != nil {
		return *prerelease, true, nil
	}
	return gemCandidate{}, false, nil
}

func buildPackage(spec types.GemSpec, root string) (types.Package, error) {
	files, err := listGemFiles(root)
	if err != nil {
		return types.Package{}, err
	}
	pkg := types.Package{Spec: spec, Root: root, Files: files}
	for _, requirePath := range spec.RequirePaths {
		pkg.LibraryFiles = append(pkg.LibraryFiles, pkg.FilesUnder(requirePath)...)
	}
	header, err := readLicenseHeader(filepath.Join(root, spec.Name+".gemspec"))
	if err != nil {
		return types.Package{}, err
	}
	pkg.LicenseHeader = header
	return pkg, nil
}

// listGemFiles returns every regular file below root, sorted by relative
// path. Version control directories are skipped.
func listGemFiles(root string) ([]types.LibraryFile, error) {
	var files []types.LibraryFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipGemDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, types.LibraryFile{SourcePath: path, RelativePath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to scan gem directory %s", root)).
			WithCause(err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

func shouldSkipGemDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn", ".bundle":
		return true
	default:
		return false
	}
}

// readLicenseHeader returns the leading comment block of a gemspec, blank
// lines included. A missing gemspec yields an empty header.
func readLicenseHeader(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", types.ConversionError("failed to read "+path, err)
	}
	var header strings.Builder
	for _, line := range strings.SplitAfter(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			break
		}
		header.WriteString(line)
	}
	return header.String(), nil
}

func readSpecFile(path string) (types.GemSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.GemSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("gem specification not found: " + path).
			WithCause(err)
	}
	return parseGemSpec(data, path)
}

func describeRequest(name string, requirements []string) string {
	if len(requirements) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(requirements, ", "))
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var _ ports.PackageLocatorPort = GemLocatorAdapter{}
