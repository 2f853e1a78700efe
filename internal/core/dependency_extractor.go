package core

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gemcook/internal/ports"
	"gemcook/internal/types"
)

type DependencyExtractor struct {
	Locator ports.PackageLocatorPort
	// AllowMissing skips runtime dependencies the locator cannot find
	// instead of failing the extraction.
	AllowMissing bool
}

func NewDependencyExtractor(locator ports.PackageLocatorPort) DependencyExtractor {
	return DependencyExtractor{Locator: locator}
}

// Extract collects the cookbook dependencies of pkg: plain requirements
// first, then the comma separated metadata list, then runtime dependencies
// that are cookbooks themselves. Duplicates across origins are kept.
func (e DependencyExtractor) Extract(ctx context.Context, pkg types.Package) ([]types.Dependency, error) {
	var deps []types.Dependency

	requirements, err := parseEntries(pkg.Spec.Requirements, types.DependencyOriginRequirements)
	if err != nil {
		return nil, err
	}
	deps = append(deps, requirements...)

	metadata, err := parseEntries(splitMetadataList(pkg.Spec.Metadata[types.MetadataDependencies]), types.DependencyOriginMetadata)
	if err != nil {
		return nil, err
	}
	deps = append(deps, metadata...)

	runtime, err := e.extractFromDependencies(ctx, pkg)
	if err != nil {
		return nil, err
	}
	deps = append(deps, runtime...)

	log.Ctx(ctx).Debug().
		Str("gem", pkg.Name()).
		Int("deps", len(deps)).
		Msg("dependencies collected")
	return deps, nil
}

func (e DependencyExtractor) extractFromDependencies(ctx context.Context, pkg types.Package) ([]types.Dependency, error) {
	var deps []types.Dependency
	for _, gemDep := range pkg.Spec.Dependencies {
		if gemDep.Type != types.GemDependencyRuntime || gemDep.Name == types.MarkerGem {
			continue
		}
		if e.Locator == nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("no package locator configured for runtime dependencies")
		}
		depPkg, err := e.Locator.Locate(ctx, types.PackageByName{Name: gemDep.Name, Requirements: gemDep.RequirementList()})
		if err != nil {
			if e.AllowMissing && errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
				log.Ctx(ctx).Warn().Err(err).Str("dependency", gemDep.Name).Msg("skipping missing dependency")
				continue
			}
			return nil, err
		}
		if !depPkg.IsCookbook(types.MarkerGem) {
			continue
		}
		name, constraint, err := NormalizeDependency(append([]string{depPkg.CookbookName()}, gemDep.RequirementList()...))
		if err != nil {
			return nil, err
		}
		located := depPkg
		deps = append(deps, types.Dependency{
			Name:       name,
			Constraint: constraint,
			Origin:     types.DependencyOriginDependencies,
			Package:    &located,
		})
	}
	return deps, nil
}

func parseEntries(entries []string, origin types.DependencyOrigin) ([]types.Dependency, error) {
	var deps []types.Dependency
	for _, entry := range entries {
		name, constraint, err := NormalizeDependency([]string{entry})
		if err != nil {
			return nil, err
		}
		deps = append(deps, types.Dependency{
			Name:       name,
			Constraint: constraint,
			Origin:     origin,
		})
	}
	return deps, nil
}

func splitMetadataList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}
