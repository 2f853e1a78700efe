package types

import "fmt"

// Constraint is a single "operator version" pair, e.g. "~> 1.2".
type Constraint struct {
	Op      ConstraintOp
	Version string
}

// DefaultConstraint matches every version; RubyGems uses it when a
// dependency is declared without a requirement.
var DefaultConstraint = Constraint{Op: ConstraintOpGte, Version: "0"}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s", c.Op, c.Version)
}

// IsDefault reports whether the constraint is ">= 0".
func (c Constraint) IsDefault() bool {
	return c == DefaultConstraint
}

// Dependency is a cookbook dependency extracted from a gem. Package is only
// set for dependencies discovered through the runtime dependency graph.
type Dependency struct {
	Name       string
	Constraint Constraint
	Origin     DependencyOrigin
	Package    *Package
}
