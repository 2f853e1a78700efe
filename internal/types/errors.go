package types

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// InvalidDependencyError reports a dependency Chef cannot express.
func InvalidDependencyError(format string, args ...any) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid dependency: " + fmt.Sprintf(format, args...))
}

// UnknownEntryPointError reports that no single entry point could be
// chosen for the named gem.
func UnknownEntryPointError(gemName string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf(
			"unable to determine the entry point for %s, set %s in the gem metadata or pass --entry-point",
			gemName, MetadataEntryPoint,
		))
}

// ConversionError is the catch-all for structural and I/O failures during a
// conversion. cause may be nil.
func ConversionError(msg string, cause error) error {
	err := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
