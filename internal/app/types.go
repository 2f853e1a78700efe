package app

import "gemcook/internal/types"

// GemSource names the gem a use case works on and where to look for it.
type GemSource struct {
	// Gem is a gem name, a path to a .gem archive or a source directory.
	Gem                      string
	Requirements             []string
	GemPaths                 []string
	InstallDir               string
	AllowMissingDependencies bool
}

type ConvertRequest struct {
	GemSource
	OutputDir  string
	EntryPoint string
}

type ConvertResult struct {
	CookbookName    string
	CookbookVersion string
	OutputDir       string
	Libraries       []string
	Dependencies    []types.Dependency
}

type DependenciesRequest struct {
	GemSource
}

type DependenciesResult struct {
	Gem          string
	Version      string
	CookbookName string
	Dependencies []types.Dependency
}

type BuildRequest struct {
	GemSource
	BaseDir    string
	EntryPoint string
}

type BuildResult struct {
	ConvertResult
	GemName    string
	GemVersion string
}
