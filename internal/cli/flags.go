package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gemcook/internal/adapters"
	"gemcook/internal/app"
)

// gemSourceOptions are the flags shared by every command that locates a
// gem.
type gemSourceOptions struct {
	Versions     []string
	GemPaths     []string
	InstallDir   string
	AllowMissing bool
}

func addGemSourceFlags(cmd *cobra.Command, opts *gemSourceOptions) {
	cmd.Flags().StringArrayVar(&opts.Versions, "version", nil, "Gem version requirement (repeatable)")
	cmd.Flags().StringSliceVar(&opts.GemPaths, "gem-path", nil, "Gem search directories (default GEM_PATH or GEM_HOME)")
	cmd.Flags().StringVar(&opts.InstallDir, "install-dir", "", "Directory .gem archives are unpacked into")
	cmd.Flags().BoolVar(&opts.AllowMissing, "allow-missing-dependencies", false, "Skip runtime dependencies that cannot be found")
}

// bindGemSourceFlags is called from PreRunE so that only the running
// command's flags are bound to viper keys.
func bindGemSourceFlags(cmd *cobra.Command) error {
	for key, flag := range map[string]string{
		"version":                    "version",
		"gem_path":                   "gem-path",
		"install_dir":                "install-dir",
		"allow_missing_dependencies": "allow-missing-dependencies",
	} {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func resolveGemSource(cmd *cobra.Command, gem string, opts gemSourceOptions) app.GemSource {
	gemPaths := resolveStrings(cmd, opts.GemPaths, "gem_path", "gem-path")
	if len(gemPaths) == 0 {
		gemPaths = adapters.DefaultGemPaths()
	}
	installDir := resolveString(cmd, opts.InstallDir, "install_dir", "install-dir")
	if installDir == "" {
		installDir = defaultInstallDir()
	}
	return app.GemSource{
		Gem:                      gem,
		Requirements:             resolveStrings(cmd, opts.Versions, "version", "version"),
		GemPaths:                 gemPaths,
		InstallDir:               installDir,
		AllowMissingDependencies: resolveBool(cmd, opts.AllowMissing, "allow_missing_dependencies", "allow-missing-dependencies"),
	}
}

func defaultInstallDir() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gemcook")
	}
	return filepath.Join(cache, "gemcook")
}

func newAppService() app.Service {
	return app.NewService()
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
