package core

import (
	"regexp"
	"strconv"
	"strings"

	"gemcook/internal/shared"
	"gemcook/internal/types"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeDependency turns a raw dependency declaration into a cookbook
// name and a constraint Chef accepts. Accepted shapes are ["name"],
// ["name constraint"] and ["name", "constraint"].
func NormalizeDependency(entry []string) (string, types.Constraint, error) {
	parts := make([]string, 0, len(entry))
	for _, part := range entry {
		parts = append(parts, strings.TrimSpace(part))
	}
	if len(parts) == 1 {
		parts = whitespaceRe.Split(parts[0], 2)
	}
	if len(parts) == 0 || parts[0] == "" {
		return "", types.Constraint{}, types.InvalidDependencyError("empty dependency declaration")
	}
	if len(parts) == 1 {
		parts = append(parts, types.DefaultConstraint.String())
	}
	if len(parts) > 2 {
		return "", types.Constraint{}, types.InvalidDependencyError(
			"Chef only supports a single version constraint on each dependency: %s", strings.Join(parts, ", "))
	}
	constraint, err := CleanRequirement(parts[1])
	if err != nil {
		return "", types.Constraint{}, err
	}
	return parts[0], constraint, nil
}

// ParseRequirement parses a host requirement such as "~> 1.0". A bare
// version is an exact match, as RubyGems treats it.
func ParseRequirement(raw string) (types.Constraint, error) {
	op, version, ok := shared.SplitGemRequirement(raw)
	if !ok {
		return types.Constraint{}, types.InvalidDependencyError("illformed requirement %q", raw)
	}
	return types.Constraint{Op: types.ConstraintOp(op), Version: version}, nil
}

// CleanRequirement parses a host requirement and downgrades it to the
// cookbook grammar. The operator is kept as parsed; only the version is
// rewritten.
func CleanRequirement(raw string) (types.Constraint, error) {
	constraint, err := ParseRequirement(raw)
	if err != nil {
		return types.Constraint{}, err
	}
	if !constraint.Op.CookbookSupported() {
		return types.Constraint{}, types.InvalidDependencyError(
			"Chef does not support the %q operator: %s", string(constraint.Op), strings.TrimSpace(raw))
	}
	version, err := CleanVersion(constraint.Version)
	if err != nil {
		return types.Constraint{}, err
	}
	constraint.Version = version
	return constraint, nil
}

// CleanVersion rewrites a gem version into one to three numeric segments.
// A pre-release tag is dropped only when it follows three numeric segments
// ("1.2.3.rc.1" becomes "1.2.3"); a tag in any of the first three positions
// ("1.0.a") is rejected. "1" becomes "1.0" and an all-zero version
// becomes "0".
func CleanVersion(version string) (string, error) {
	segments := shared.GemSegments(version)
	numeric := shared.NumericPrefix(version)
	if len(numeric) < 1 || len(numeric) > 3 {
		return "", types.InvalidDependencyError("Chef only supports two or three version segments: %s", version)
	}
	if len(numeric) < len(segments) && len(numeric) < 3 {
		return "", types.InvalidDependencyError("Chef does not support pre-release versions: %s", version)
	}

	values := make([]int, 0, 3)
	for _, segment := range numeric {
		n, err := strconv.Atoi(segment)
		if err != nil {
			return "", types.InvalidDependencyError("version segment out of range: %s", version)
		}
		values = append(values, n)
	}
	if len(values) == 1 {
		values = append(values, 0)
	}
	allZero := true
	for _, n := range values {
		if n != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return "0", nil
	}

	out := make([]string, len(values))
	for i, n := range values {
		out[i] = strconv.Itoa(n)
	}
	return strings.Join(out, "."), nil
}
