package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemcook/internal/types"
)

type fakeLocator struct {
	packages map[string]types.Package
	calls    []string
}

func (f *fakeLocator) Locate(_ context.Context, ref types.PackageRef) (types.Package, error) {
	switch r := ref.(type) {
	case types.ResolvedPackage:
		return r.Package, nil
	case types.PackageByName:
		f.calls = append(f.calls, r.Name)
		if pkg, ok := f.packages[r.Name]; ok {
			return pkg, nil
		}
		return types.Package{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("cannot find a gem to satisfy %s", r.Name))
	default:
		return types.Package{}, fmt.Errorf("unexpected ref %T", ref)
	}
}

func fakeGem(name string, deps ...types.GemDependency) types.Package {
	return types.Package{Spec: types.GemSpec{Name: name, Version: "1.0.0", Dependencies: deps}}
}

func runtimeDep(name string, reqs ...string) types.GemDependency {
	return types.GemDependency{Name: name, Type: types.GemDependencyRuntime, Requirements: reqs}
}

func newFakeLocator() *fakeLocator {
	return &fakeLocator{packages: map[string]types.Package{
		"gem1":      fakeGem("gem1"),
		"gem2":      {Spec: types.GemSpec{Name: "gem2", Version: "1.0.0", Requirements: []string{"dep2"}}},
		"gem3":      fakeGem("gem3", runtimeDep("halite")),
		"chef-gem4": fakeGem("chef-gem4", runtimeDep("halite", "~> 1.0")),
		"gem5": {Spec: types.GemSpec{
			Name:         "gem5",
			Version:      "1.0.0",
			Metadata:     map[string]string{types.MetadataIgnore: "true"},
			Dependencies: []types.GemDependency{runtimeDep("halite")},
		}},
	}}
}

type depSummary struct {
	Name       string
	Constraint string
	Origin     types.DependencyOrigin
}

func summarize(deps []types.Dependency) []depSummary {
	out := make([]depSummary, 0, len(deps))
	for _, dep := range deps {
		out = append(out, depSummary{Name: dep.Name, Constraint: dep.Constraint.String(), Origin: dep.Origin})
	}
	return out
}

func TestDependencyExtractorOrder(t *testing.T) {
	pkg := types.Package{Spec: types.GemSpec{
		Name:         "mygem",
		Version:      "1.0.0",
		Requirements: []string{"req1", "req2 ~> 2.0"},
		Metadata:     map[string]string{types.MetadataDependencies: "meta1 >= 1.2, ,meta2"},
		Dependencies: []types.GemDependency{
			runtimeDep("halite", "~> 1.0"),
			runtimeDep("gem3"),
			runtimeDep("gem1"),
			{Name: "gem3", Type: types.GemDependencyDevelopment},
			runtimeDep("chef-gem4", "~> 4.5"),
		},
	}}

	locator := newFakeLocator()
	deps, err := NewDependencyExtractor(locator).Extract(t.Context(), pkg)
	require.NoError(t, err)

	want := []depSummary{
		{"req1", ">= 0", types.DependencyOriginRequirements},
		{"req2", "~> 2.0", types.DependencyOriginRequirements},
		{"meta1", ">= 1.2", types.DependencyOriginMetadata},
		{"meta2", ">= 0", types.DependencyOriginMetadata},
		{"gem3", ">= 0", types.DependencyOriginDependencies},
		{"gem4", "~> 4.5", types.DependencyOriginDependencies},
	}
	if diff := cmp.Diff(want, summarize(deps)); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}

	require.NotNil(t, deps[4].Package)
	assert.Equal(t, "gem3", deps[4].Package.Name())
	assert.Nil(t, deps[0].Package)
	assert.Equal(t, []string{"gem3", "gem1", "chef-gem4"}, locator.calls)
}

func TestDependencyExtractorKeepsDuplicates(t *testing.T) {
	pkg := types.Package{Spec: types.GemSpec{
		Name:         "mygem",
		Version:      "1.0.0",
		Requirements: []string{"gem3"},
		Metadata:     map[string]string{types.MetadataDependencies: "gem3"},
		Dependencies: []types.GemDependency{runtimeDep("gem3")},
	}}

	deps, err := NewDependencyExtractor(newFakeLocator()).Extract(t.Context(), pkg)
	require.NoError(t, err)

	want := []depSummary{
		{"gem3", ">= 0", types.DependencyOriginRequirements},
		{"gem3", ">= 0", types.DependencyOriginMetadata},
		{"gem3", ">= 0", types.DependencyOriginDependencies},
	}
	if diff := cmp.Diff(want, summarize(deps)); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestDependencyExtractorSkipsNonCookbooks(t *testing.T) {
	tests := []struct {
		name string
		dep  types.GemDependency
	}{
		{"development dependency", types.GemDependency{Name: "gem3", Type: types.GemDependencyDevelopment}},
		{"plain gem", runtimeDep("gem1")},
		{"ignored cookbook", runtimeDep("gem5")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg := fakeGem("mygem", tt.dep)
			deps, err := NewDependencyExtractor(newFakeLocator()).Extract(t.Context(), pkg)
			require.NoError(t, err)
			assert.Empty(t, deps)
		})
	}
}

func TestDependencyExtractorEmpty(t *testing.T) {
	deps, err := NewDependencyExtractor(nil).Extract(t.Context(), fakeGem("mygem"))
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDependencyExtractorMissingDependency(t *testing.T) {
	pkg := fakeGem("mygem", runtimeDep("nope"), runtimeDep("gem3"))

	_, err := NewDependencyExtractor(newFakeLocator()).Extract(t.Context(), pkg)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	extractor := NewDependencyExtractor(newFakeLocator())
	extractor.AllowMissing = true
	deps, err := extractor.Extract(t.Context(), pkg)
	require.NoError(t, err)
	if diff := cmp.Diff([]depSummary{{"gem3", ">= 0", types.DependencyOriginDependencies}}, summarize(deps)); diff != "" {
		t.Fatalf("unexpected dependencies (-want +got):\n%s", diff)
	}
}

func TestDependencyExtractorErrors(t *testing.T) {
	tests := []struct {
		name string
		pkg  types.Package
	}{
		{
			name: "multiple runtime requirements",
			pkg:  fakeGem("mygem", runtimeDep("gem3", ">= 1.0", "< 2.0")),
		},
		{
			name: "bad requirement",
			pkg:  types.Package{Spec: types.GemSpec{Name: "mygem", Requirements: []string{"dep 1.2.3.4"}}},
		},
		{
			name: "bad metadata entry",
			pkg: types.Package{Spec: types.GemSpec{
				Name:     "mygem",
				Metadata: map[string]string{types.MetadataDependencies: "ok,dep > 1.0"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDependencyExtractor(newFakeLocator()).Extract(t.Context(), tt.pkg)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}
