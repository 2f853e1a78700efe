package adapters

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	debversion "github.com/knqyf263/go-deb-version"

	"gemcook/internal/shared"
)

// versionCache memoizes parsed gem versions during candidate selection.
// Gem versions are ordered as PEP 440 versions, which accept the usual
// RubyGems pre-release spellings ("2.3.1.rc.1", "1.0.beta2"). Versions PEP
// 440 rejects fall back to Debian ordering with the pre-release tag moved
// behind a "~" so it still sorts before the release.
type versionCache struct {
	pep map[string]pep440.Version
	deb map[string]debversion.Version
	bad map[string]bool
}

func newVersionCache() *versionCache {
	return &versionCache{
		pep: map[string]pep440.Version{},
		deb: map[string]debversion.Version{},
		bad: map[string]bool{},
	}
}

// pepVersion returns a parsed PEP 440 version, caching the result.
func (c *versionCache) pepVersion(value string) (pep440.Version, bool) {
	if c.bad[value] {
		return pep440.Version{}, false
	}
	if parsed, ok := c.pep[value]; ok {
		return parsed, true
	}
	parsed, err := pep440.Parse(shared.CanonicalGemVersion(value))
	if err != nil {
		c.bad[value] = true
		return pep440.Version{}, false
	}
	c.pep[value] = parsed
	return parsed, true
}

// debVersion returns a parsed Debian version, caching the result.
func (c *versionCache) debVersion(value string) (debversion.Version, error) {
	if parsed, ok := c.deb[value]; ok {
		return parsed, nil
	}
	parsed, err := debversion.NewVersion(debianizeGemVersion(value))
	if err != nil {
		return debversion.Version{}, err
	}
	c.deb[value] = parsed
	return parsed, nil
}

// compare returns -1, 0, or 1. Unparseable versions compare equal.
func (c *versionCache) compare(a string, b string) int {
	if v1, ok := c.pepVersion(a); ok {
		if v2, ok := c.pepVersion(b); ok {
			return v1.Compare(v2)
		}
	}
	v1, err := c.debVersion(a)
	if err != nil {
		return 0
	}
	v2, err := c.debVersion(b)
	if err != nil {
		return 0
	}
	return v1.Compare(v2)
}

// satisfies evaluates one RubyGems requirement against version.
func (c *versionCache) satisfies(version string, requirement string) (bool, error) {
	op, want, ok := shared.SplitGemRequirement(requirement)
	if !ok {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("illformed requirement %q", requirement))
	}
	cmp := c.compare(version, want)
	switch op {
	case "=":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case ">":
		return cmp > 0, nil
	case "<":
		return cmp < 0, nil
	case ">=":
		return cmp >= 0, nil
	case "<=":
		return cmp <= 0, nil
	case "~>":
		return cmp >= 0 && c.compare(shared.GemRelease(version), shared.GemBump(want)) < 0, nil
	default:
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported requirement operator %q", op))
	}
}

// satisfiesAll reports whether version meets every requirement.
func (c *versionCache) satisfiesAll(version string, requirements []string) (bool, error) {
	for _, requirement := range requirements {
		ok, err := c.satisfies(version, requirement)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// debianizeGemVersion turns "1.0.0.pre.beta" into "1.0.0~pre.beta".
func debianizeGemVersion(value string) string {
	canonical := shared.CanonicalGemVersion(value)
	release := shared.GemRelease(canonical)
	if release == "" || !shared.IsPrerelease(canonical) {
		return canonical
	}
	tag := strings.TrimLeft(strings.TrimPrefix(canonical, release), ".")
	return release + "~" + tag
}
