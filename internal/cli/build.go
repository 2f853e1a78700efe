package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gemcook/internal/app"
)

type buildOptions struct {
	gemSourceOptions
	BaseDir    string
	EntryPoint string
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build <gem>",
		Short: "Build a cookbook into <base>/pkg/<name>-<version>",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindGemSourceFlags(cmd); err != nil {
				return err
			}
			_ = viper.BindPFlag("base", cmd.Flags().Lookup("base"))
			_ = viper.BindPFlag("entry_point", cmd.Flags().Lookup("entry-point"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), cmd, args[0], opts)
		},
	}

	addGemSourceFlags(cmd, &opts.gemSourceOptions)
	cmd.Flags().StringVar(&opts.BaseDir, "base", ".", "Base directory holding pkg/")
	cmd.Flags().StringVar(&opts.EntryPoint, "entry-point", "", "Library file loaded unconditionally")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, gem string, opts buildOptions) error {
	service := newAppService()
	result, err := service.Build(ctx, app.BuildRequest{
		GemSource:  resolveGemSource(cmd, gem, opts.gemSourceOptions),
		BaseDir:    resolveString(cmd, opts.BaseDir, "base", "base"),
		EntryPoint: resolveString(cmd, opts.EntryPoint, "entry_point", "entry-point"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built %s %s into %s\n", result.GemName, result.GemVersion, result.OutputDir)
	return nil
}
