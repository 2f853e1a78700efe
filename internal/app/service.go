package app

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"gemcook/internal/adapters"
	"gemcook/internal/core"
	"gemcook/internal/ports"
	"gemcook/internal/types"
)

type Service struct {
	FileSystem ports.FileSystemPort
	// NewLocator builds the package locator for one request's search
	// paths.
	NewLocator func(gemPaths []string, installDir string) ports.PackageLocatorPort
}

func NewService() Service {
	return Service{
		FileSystem: adapters.NewFileSystemAdapter(),
		NewLocator: func(gemPaths []string, installDir string) ports.PackageLocatorPort {
			return adapters.NewGemLocatorAdapter(gemPaths, installDir)
		},
	}
}

// locate finds the requested gem and extracts its cookbook dependencies.
func (s Service) locate(ctx context.Context, source GemSource) (types.Package, []types.Dependency, error) {
	name := strings.TrimSpace(source.Gem)
	if name == "" {
		return types.Package{}, nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("gem name or path is required")
	}
	locator := s.NewLocator(source.GemPaths, source.InstallDir)
	pkg, err := locator.Locate(ctx, types.PackageByName{Name: name, Requirements: source.Requirements})
	if err != nil {
		return types.Package{}, nil, err
	}
	assert.NotEmpty(ctx, pkg.Name(), "located gem name must be set")
	assert.NotEmpty(ctx, pkg.Version(), "located gem version must be set")
	extractor := core.NewDependencyExtractor(locator)
	extractor.AllowMissing = source.AllowMissingDependencies
	deps, err := extractor.Extract(ctx, pkg)
	if err != nil {
		return types.Package{}, nil, err
	}
	return pkg, deps, nil
}
