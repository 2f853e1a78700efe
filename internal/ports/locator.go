package ports

import (
	"context"

	"gemcook/internal/types"
)

// PackageLocatorPort finds installed gems and builds their package model.
type PackageLocatorPort interface {
	// Locate returns the package a reference points at. A by-name
	// reference selects the highest installed version satisfying its
	// requirements.
	Locate(ctx context.Context, ref types.PackageRef) (types.Package, error)
}
