package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gemcook/internal/core"
	"gemcook/internal/types"
)

func (s Service) Convert(ctx context.Context, req ConvertRequest) (ConvertResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return ConvertResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	pkg, deps, err := s.locate(ctx, req.GemSource)
	if err != nil {
		return ConvertResult{}, err
	}
	return s.convert(ctx, pkg, deps, outputDir, req.EntryPoint)
}

func (s Service) convert(ctx context.Context, pkg types.Package, deps []types.Dependency, outputDir string, entryPoint string) (ConvertResult, error) {
	version, err := pkg.CookbookVersion()
	if err != nil {
		return ConvertResult{}, err
	}
	if err := core.NewConverter(s.FileSystem).Write(ctx, pkg, deps, outputDir, entryPoint); err != nil {
		return ConvertResult{}, err
	}
	result := ConvertResult{
		CookbookName:    pkg.CookbookName(),
		CookbookVersion: version,
		OutputDir:       outputDir,
		Dependencies:    deps,
	}
	for _, file := range pkg.LibraryFiles {
		result.Libraries = append(result.Libraries, core.FlattenFilename(file.RelativePath))
	}
	log.Ctx(ctx).Info().
		Str("gem", pkg.Spec.FullName()).
		Str("cookbook", result.CookbookName).
		Str("output", outputDir).
		Msg("gem converted")
	return result, nil
}
