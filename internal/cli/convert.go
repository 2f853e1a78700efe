package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gemcook/internal/app"
)

type convertOptions struct {
	gemSourceOptions
	OutputDir  string
	EntryPoint string
}

func newConvertCommand() *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <gem>",
		Short: "Convert a gem into a cookbook directory",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindGemSourceFlags(cmd); err != nil {
				return err
			}
			_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
			_ = viper.BindPFlag("entry_point", cmd.Flags().Lookup("entry-point"))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd, args[0], opts)
		},
	}

	addGemSourceFlags(cmd, &opts.gemSourceOptions)
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "out", "Output directory")
	cmd.Flags().StringVar(&opts.EntryPoint, "entry-point", "", "Library file loaded unconditionally")

	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, gem string, opts convertOptions) error {
	service := newAppService()
	result, err := service.Convert(ctx, app.ConvertRequest{
		GemSource:  resolveGemSource(cmd, gem, opts.gemSourceOptions),
		OutputDir:  resolveString(cmd, opts.OutputDir, "output", "output"),
		EntryPoint: resolveString(cmd, opts.EntryPoint, "entry_point", "entry-point"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "converted %s %s into %s\n", result.CookbookName, result.CookbookVersion, result.OutputDir)
	return nil
}
