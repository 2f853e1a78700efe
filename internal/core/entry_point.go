package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"gemcook/internal/types"
)

// ResolveEntryPoint picks the library file loaded unconditionally. An
// explicit override wins, then the halite_entry_point metadata value, then
// the only library file sitting directly under the library root.
func ResolveEntryPoint(ctx context.Context, pkg types.Package, override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		if !strings.HasSuffix(override, types.SourceExt) {
			override += types.SourceExt
		}
		log.Ctx(ctx).Debug().Str("entry_point", override).Msg("entry point from override")
		return override, nil
	}
	if declared, ok := pkg.Spec.Metadata[types.MetadataEntryPoint]; ok && declared != "" {
		log.Ctx(ctx).Debug().Str("entry_point", declared).Msg("entry point from metadata")
		return declared, nil
	}

	var candidates []string
	for _, file := range pkg.LibraryFiles {
		if !strings.Contains(file.RelativePath, "/") {
			candidates = append(candidates, file.RelativePath)
		}
	}
	if len(candidates) != 1 {
		return "", types.UnknownEntryPointError(pkg.Name())
	}
	log.Ctx(ctx).Debug().Str("entry_point", candidates[0]).Msg("entry point from library layout")
	return candidates[0], nil
}
