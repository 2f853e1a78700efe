package types

// DependencyOrigin records where an extracted cookbook dependency was
// declared. It is provenance only and plays no part in deduplication.
type DependencyOrigin string

const (
	DependencyOriginRequirements DependencyOrigin = "requirements"
	DependencyOriginMetadata     DependencyOrigin = "metadata"
	DependencyOriginDependencies DependencyOrigin = "dependencies"
)

// GemDependencyType mirrors the RubyGems dependency types.
type GemDependencyType string

const (
	GemDependencyRuntime     GemDependencyType = "runtime"
	GemDependencyDevelopment GemDependencyType = "development"
)

type ConstraintOp string

const (
	ConstraintOpEq          ConstraintOp = "="
	ConstraintOpNe          ConstraintOp = "!="
	ConstraintOpGt          ConstraintOp = ">"
	ConstraintOpLt          ConstraintOp = "<"
	ConstraintOpGte         ConstraintOp = ">="
	ConstraintOpLte         ConstraintOp = "<="
	ConstraintOpPessimistic ConstraintOp = "~>"
)

// CookbookSupported reports whether Chef metadata accepts the operator.
func (op ConstraintOp) CookbookSupported() bool {
	switch op {
	case ConstraintOpEq, ConstraintOpGte, ConstraintOpLte, ConstraintOpPessimistic:
		return true
	default:
		return false
	}
}
