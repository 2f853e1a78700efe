package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gemcook/internal/types"
)

// SourceRewriter rewrites the require statements of one package's library
// files and wraps each file in the load guard. Patterns are compiled once
// per library file when the rewriter is built.
type SourceRewriter struct {
	cookbookName string
	own          []ownRequire
	external     []*regexp.Regexp
}

type ownRequire struct {
	pattern     *regexp.Regexp
	replacement string
}

// NewSourceRewriter prepares the rewrite rules for pkg. Requires of pkg's
// own library files become require_relative calls on the flattened name;
// requires of library files belonging to runtime cookbook dependencies
// are commented out.
func NewSourceRewriter(pkg types.Package, deps []types.Dependency) SourceRewriter {
	rewriter := SourceRewriter{cookbookName: pkg.CookbookName()}
	claimed := map[string]struct{}{}
	for _, file := range pkg.LibraryFiles {
		key := LibPath(file.RelativePath)
		if _, ok := claimed[key]; ok {
			continue
		}
		claimed[key] = struct{}{}
		rewriter.own = append(rewriter.own, ownRequire{
			pattern:     regexp.MustCompile(`\brequire[ \t]+['"]` + regexp.QuoteMeta(key) + `['"]`),
			replacement: fmt.Sprintf("require_relative '%s'", FlattenFilename(key)),
		})
	}
	for _, dep := range deps {
		if dep.Origin != types.DependencyOriginDependencies || dep.Package == nil {
			continue
		}
		for _, file := range dep.Package.LibraryFiles {
			key := LibPath(file.RelativePath)
			if _, ok := claimed[key]; ok {
				continue
			}
			claimed[key] = struct{}{}
			rewriter.external = append(rewriter.external,
				regexp.MustCompile(`(?m)^.*\brequire[ \t]+['"]`+regexp.QuoteMeta(key)+`['"].*$`))
		}
	}
	return rewriter
}

// Rewrite returns the converted content of one library file. The entry
// point sets the guard flag for the duration of its body; every other file
// only runs while the flag names this cookbook.
func (r SourceRewriter) Rewrite(source string, entryPoint bool) string {
	body := source
	for _, rule := range r.own {
		body = rule.pattern.ReplaceAllLiteralString(body, rule.replacement)
	}
	for _, pattern := range r.external {
		body = pattern.ReplaceAllString(body, "# ${0}")
	}
	body = strings.TrimRightFunc(body, unicode.IsSpace)
	return r.header(entryPoint) + body + r.footer(entryPoint)
}

func (r SourceRewriter) header(entryPoint bool) string {
	if entryPoint {
		return fmt.Sprintf("ENV['%s'] = '%s'; begin; ", types.GuardFlag, r.cookbookName)
	}
	return fmt.Sprintf("if ENV['%s'] == '%s'; ", types.GuardFlag, r.cookbookName)
}

func (r SourceRewriter) footer(entryPoint bool) string {
	if entryPoint {
		return fmt.Sprintf("\nensure; ENV.delete('%s'); end\n", types.GuardFlag)
	}
	return "\nend\n"
}

// RewriteFile is a one-shot form of NewSourceRewriter(pkg, deps).Rewrite.
func RewriteFile(pkg types.Package, deps []types.Dependency, source string, entryPoint bool) string {
	return NewSourceRewriter(pkg, deps).Rewrite(source, entryPoint)
}

// LibPath strips the source extension: "mygem/version.rb" becomes
// "mygem/version".
func LibPath(rel string) string {
	return strings.TrimSuffix(rel, types.SourceExt)
}

// FlattenFilename maps a nested library path onto the flat libraries/
// directory.
func FlattenFilename(rel string) string {
	return strings.ReplaceAll(rel, "/", "__")
}
