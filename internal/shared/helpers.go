// Package shared provides common utility functions used across multiple
// packages in the gemcook codebase.
package shared

import (
	"regexp"
	"strconv"
	"strings"
)

// GemVersionPattern matches a RubyGems version string, unanchored.
const GemVersionPattern = `[0-9]+(?:\.[0-9a-zA-Z]+)*(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?`

var (
	gemVersionRe = regexp.MustCompile(`^\s*` + GemVersionPattern + `\s*$`)
	segmentRe    = regexp.MustCompile(`[0-9]+|[a-zA-Z]+`)
	// Longer operators must precede shorter ones (">=" before ">").
	requirementRe = regexp.MustCompile(`^\s*(>=|<=|~>|!=|=|>|<)?\s*(` + GemVersionPattern + `)\s*$`)
)

// IsGemVersion reports whether value is a well-formed RubyGems version.
func IsGemVersion(value string) bool {
	return gemVersionRe.MatchString(value)
}

// SplitGemRequirement splits a RubyGems requirement such as "~> 1.0" into
// its operator and version. A bare version is an exact match.
func SplitGemRequirement(raw string) (op string, version string, ok bool) {
	match := requirementRe.FindStringSubmatch(raw)
	if match == nil {
		return "", "", false
	}
	op = match[1]
	if op == "" {
		op = "="
	}
	return op, match[2], true
}

// CanonicalGemVersion trims value and rewrites "-" the way RubyGems does
// ("1.0-beta" becomes "1.0.pre.beta").
func CanonicalGemVersion(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), "-", ".pre.")
}

// GemSegments splits a version into numeric and alphabetic runs, e.g.
// "2.3.1.rc1" yields [2 3 1 rc 1].
func GemSegments(value string) []string {
	return segmentRe.FindAllString(CanonicalGemVersion(value), -1)
}

// IsNumericSegment reports whether a segment is made of digits only.
func IsNumericSegment(segment string) bool {
	if segment == "" {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsPrerelease reports whether the version carries a letter anywhere.
func IsPrerelease(value string) bool {
	for _, segment := range GemSegments(value) {
		if !IsNumericSegment(segment) {
			return true
		}
	}
	return false
}

// NumericPrefix returns the leading numeric segments of a version.
func NumericPrefix(value string) []string {
	var out []string
	for _, segment := range GemSegments(value) {
		if !IsNumericSegment(segment) {
			break
		}
		out = append(out, segment)
	}
	return out
}

// GemRelease drops any pre-release tag: "2.3.1.rc.1" becomes "2.3.1".
func GemRelease(value string) string {
	return strings.Join(NumericPrefix(value), ".")
}

// GemBump returns the exclusive upper bound used by "~>": "1.2.3" becomes
// "1.3" and "1.2" becomes "2".
func GemBump(value string) string {
	segments := NumericPrefix(value)
	if len(segments) == 0 {
		return "1"
	}
	if len(segments) > 1 {
		segments = segments[:len(segments)-1]
	}
	last, err := strconv.Atoi(segments[len(segments)-1])
	if err != nil {
		return strings.Join(segments, ".")
	}
	segments = append(segments[:len(segments)-1:len(segments)-1], strconv.Itoa(last+1))
	return strings.Join(segments, ".")
}
