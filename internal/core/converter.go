package core

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"gemcook/internal/ports"
	"gemcook/internal/types"
)

// MiscFiles are the project-level documents copied next to metadata.rb.
var MiscFiles = []string{"Readme", "License", "Copying", "Contributing"}

// Converter writes a cookbook for one gem into an output directory.
type Converter struct {
	FS ports.FileSystemPort
}

func NewConverter(fs ports.FileSystemPort) Converter {
	return Converter{FS: fs}
}

// Write converts pkg into outputDir: metadata.rb, the rewritten libraries,
// the gem's chef/ tree and its misc documents, in that order. entryPoint
// overrides the resolved entry point when non-empty. The first failure
// aborts the conversion.
func (c Converter) Write(ctx context.Context, pkg types.Package, deps []types.Dependency, outputDir string, entryPoint string) error {
	if strings.TrimSpace(outputDir) == "" {
		return types.ConversionError("output directory is empty", nil)
	}
	if err := c.FS.MkdirAll(outputDir); err != nil {
		return types.ConversionError("failed to create output directory", err)
	}
	if err := c.writeMetadata(ctx, pkg, deps, outputDir); err != nil {
		return err
	}
	if err := c.writeLibraries(ctx, pkg, deps, outputDir, entryPoint); err != nil {
		return err
	}
	if err := c.writeChefFiles(ctx, pkg, outputDir); err != nil {
		return err
	}
	if err := c.writeMisc(ctx, pkg, outputDir); err != nil {
		return err
	}
	log.Ctx(ctx).Debug().
		Str("cookbook", pkg.CookbookName()).
		Str("output", outputDir).
		Msg("cookbook written")
	return nil
}

func (c Converter) writeMetadata(ctx context.Context, pkg types.Package, deps []types.Dependency, outputDir string) error {
	metadata := CookbookMetadata{Package: pkg, Dependencies: deps}
	if readme, ok := pkg.MiscPath("Readme"); ok {
		data, err := c.FS.ReadFile(readme)
		if err != nil {
			return types.ConversionError(fmt.Sprintf("failed to read %s", readme), err)
		}
		metadata.Readme = string(data)
		metadata.HasReadme = true
	}
	content, err := metadata.Render()
	if err != nil {
		return err
	}
	if err := c.FS.WriteFile(filepath.Join(outputDir, "metadata.rb"), []byte(content)); err != nil {
		return types.ConversionError("failed to write metadata.rb", err)
	}
	log.Ctx(ctx).Debug().Int("depends", len(deps)).Msg("metadata written")
	return nil
}

func (c Converter) writeLibraries(ctx context.Context, pkg types.Package, deps []types.Dependency, outputDir string, entryPoint string) error {
	files, err := c.RewriteLibraries(ctx, pkg, deps, entryPoint)
	if err != nil {
		return err
	}
	libDir := filepath.Join(outputDir, "libraries")
	if err := c.FS.MkdirAll(libDir); err != nil {
		return types.ConversionError("failed to create libraries directory", err)
	}
	for _, file := range files {
		target := filepath.Join(libDir, file.RelativePath)
		if err := c.FS.WriteFile(target, []byte(file.Content)); err != nil {
			return types.ConversionError(fmt.Sprintf("failed to write %s", target), err)
		}
	}
	return nil
}

// RewriteLibraries reads and rewrites every library file of pkg. Returned
// paths are flattened file names under libraries/.
func (c Converter) RewriteLibraries(ctx context.Context, pkg types.Package, deps []types.Dependency, entryPoint string) ([]types.RewrittenFile, error) {
	entry, err := ResolveEntryPoint(ctx, pkg, entryPoint)
	if err != nil {
		return nil, err
	}
	assert.NotEmpty(ctx, entry, "resolved entry point must be set")
	if !strings.HasSuffix(entry, types.SourceExt) {
		entry += types.SourceExt
	}
	found := false
	for _, file := range pkg.LibraryFiles {
		if file.RelativePath == entry {
			found = true
			break
		}
	}
	if !found {
		return nil, types.ConversionError(fmt.Sprintf("entry point %s is not a library file of %s", entry, pkg.Name()), nil)
	}

	rewriter := NewSourceRewriter(pkg, deps)
	out := make([]types.RewrittenFile, 0, len(pkg.LibraryFiles))
	for _, file := range pkg.LibraryFiles {
		data, err := c.FS.ReadFile(file.SourcePath)
		if err != nil {
			return nil, types.ConversionError(fmt.Sprintf("failed to read %s", file.SourcePath), err)
		}
		isEntry := file.RelativePath == entry
		out = append(out, types.RewrittenFile{
			RelativePath: FlattenFilename(file.RelativePath),
			Content:      rewriter.Rewrite(string(data), isEntry),
		})
		log.Ctx(ctx).Debug().
			Str("file", file.RelativePath).
			Bool("entry_point", isEntry).
			Msg("library rewritten")
	}
	return out, nil
}

func (c Converter) writeChefFiles(ctx context.Context, pkg types.Package, outputDir string) error {
	files := pkg.FilesUnder("chef")
	for _, file := range files {
		target := filepath.Join(outputDir, filepath.FromSlash(file.RelativePath))
		if dir := path.Dir(file.RelativePath); dir != "." {
			if err := c.FS.MkdirAll(filepath.Join(outputDir, filepath.FromSlash(dir))); err != nil {
				return types.ConversionError(fmt.Sprintf("failed to create %s", dir), err)
			}
		}
		if err := c.FS.CopyFile(file.SourcePath, target); err != nil {
			return types.ConversionError(fmt.Sprintf("failed to copy %s", file.SourcePath), err)
		}
	}
	log.Ctx(ctx).Debug().Int("files", len(files)).Msg("chef files copied")
	return nil
}

func (c Converter) writeMisc(ctx context.Context, pkg types.Package, outputDir string) error {
	for _, name := range MiscFiles {
		source, ok := pkg.MiscPath(name)
		if !ok {
			continue
		}
		target := filepath.Join(outputDir, filepath.Base(source))
		if err := c.FS.CopyFile(source, target); err != nil {
			return types.ConversionError(fmt.Sprintf("failed to copy %s", source), err)
		}
		log.Ctx(ctx).Debug().Str("file", filepath.Base(source)).Msg("misc file copied")
	}
	return nil
}
