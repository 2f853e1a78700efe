package app

import (
	"context"
	"path/filepath"
	"strings"
)

// Build converts the gem into <base>/pkg/<name>-<version>, emptying that
// directory first.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	base := strings.TrimSpace(req.BaseDir)
	if base == "" {
		base = "."
	}
	pkg, deps, err := s.locate(ctx, req.GemSource)
	if err != nil {
		return BuildResult{}, err
	}
	target := filepath.Join(base, "pkg", pkg.Spec.FullName())
	if err := s.FileSystem.MkdirAll(target); err != nil {
		return BuildResult{}, err
	}
	if err := s.FileSystem.RemoveContents(target); err != nil {
		return BuildResult{}, err
	}
	converted, err := s.convert(ctx, pkg, deps, target, req.EntryPoint)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{
		ConvertResult: converted,
		GemName:       pkg.Name(),
		GemVersion:    pkg.Version(),
	}, nil
}
