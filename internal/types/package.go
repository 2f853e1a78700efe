package types

import (
	"fmt"
	"regexp"
	"strings"
)

// LibraryFile is a file inside a gem. RelativePath is slash separated and
// relative to the prefix the file was listed under.
type LibraryFile struct {
	SourcePath   string
	RelativePath string
}

// Package is a located gem, read-only for the duration of a conversion.
type Package struct {
	Spec GemSpec
	Root string
	// Files lists every file of the gem relative to Root, sorted.
	Files []LibraryFile
	// LibraryFiles lists files under the gem's require paths, sorted by
	// source path.
	LibraryFiles  []LibraryFile
	LicenseHeader string
}

var cookbookAffix = regexp.MustCompile(`(^(chef|cookbook)[_-])|([_-](chef|cookbook))$`)

// cookbookVersionPrefix keeps a leading "x.y." or "x.y.z".
var cookbookVersionPrefix = regexp.MustCompile(`^(\d+\.\d+\.(\d+)?)`)

var githubHomepage = regexp.MustCompile(`^http(s)?://(www\.)?github\.com`)

func (p Package) Name() string {
	return p.Spec.Name
}

func (p Package) Version() string {
	return p.Spec.Version
}

// CookbookName is the name the gem is published under as a cookbook.
func (p Package) CookbookName() string {
	if name, ok := p.Spec.Metadata[MetadataName]; ok {
		return name
	}
	return cookbookAffix.ReplaceAllString(p.Spec.Name, "")
}

// CookbookVersion strips pre-release tags and extra segments from the gem
// version.
func (p Package) CookbookVersion() (string, error) {
	match := cookbookVersionPrefix.FindStringSubmatch(p.Spec.Version)
	if match == nil {
		return "", ConversionError(fmt.Sprintf("unable to parse %q as a Chef cookbook version", p.Spec.Version), nil)
	}
	return match[1], nil
}

// IsCookbook reports whether the gem depends directly on the marker gem and
// has not opted out.
func (p Package) IsCookbook(marker string) bool {
	if _, ignored := p.Spec.Metadata[MetadataIgnore]; ignored {
		return false
	}
	for _, dep := range p.Spec.Dependencies {
		if dep.Name == marker {
			return true
		}
	}
	return false
}

// IssuesURL returns the issue tracker declared in metadata or derived from a
// GitHub homepage, or "".
func (p Package) IssuesURL() string {
	if url := p.Spec.Metadata[MetadataIssuesURL]; url != "" {
		return url
	}
	if githubHomepage.MatchString(p.Spec.Homepage) {
		return strings.TrimSuffix(p.Spec.Homepage, "/") + "/issues"
	}
	return ""
}

// FilesUnder returns the files below prefix with paths made relative to it.
func (p Package) FilesUnder(prefix string) []LibraryFile {
	prefix = strings.Trim(prefix, "/") + "/"
	var out []LibraryFile
	for _, file := range p.Files {
		if rel, ok := strings.CutPrefix(file.RelativePath, prefix); ok && rel != "" {
			out = append(out, LibraryFile{SourcePath: file.SourcePath, RelativePath: rel})
		}
	}
	return out
}

// MiscPath looks for a project-level file such as README.md at the root of
// the gem. Matching is case sensitive.
func (p Package) MiscPath(name string) (string, bool) {
	top := map[string]string{}
	for _, file := range p.Files {
		if !strings.Contains(file.RelativePath, "/") {
			top[file.RelativePath] = file.SourcePath
		}
	}
	for _, base := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
		for _, suffix := range []string{".md", "", ".txt", ".html"} {
			if path, ok := top[base+suffix]; ok {
				return path, true
			}
		}
	}
	return "", false
}

// PackageRef identifies a gem either by name or by an already located
// package.
type PackageRef interface {
	packageRef()
}

// PackageByName asks the locator for the highest installed version of Name
// satisfying every entry of Requirements. Name may also be a path to a .gem
// archive or to a gem source directory.
type PackageByName struct {
	Name         string
	Requirements []string
}

// ResolvedPackage wraps a package that has already been located.
type ResolvedPackage struct {
	Package Package
}

func (PackageByName) packageRef()   {}
func (ResolvedPackage) packageRef() {}

// RewrittenFile is a library file ready to be written under libraries/.
type RewrittenFile struct {
	RelativePath string
	Content      string
}
