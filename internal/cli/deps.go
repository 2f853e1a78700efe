package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gemcook/internal/app"
)

type depsOptions struct {
	gemSourceOptions
}

func newDepsCommand() *cobra.Command {
	opts := depsOptions{}
	cmd := &cobra.Command{
		Use:   "deps <gem>",
		Short: "Print the cookbook dependencies of a gem",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindGemSourceFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd.Context(), cmd, args[0], opts)
		},
	}
	addGemSourceFlags(cmd, &opts.gemSourceOptions)
	return cmd
}

func runDeps(ctx context.Context, cmd *cobra.Command, gem string, opts depsOptions) error {
	service := newAppService()
	result, err := service.Dependencies(ctx, app.DependenciesRequest{
		GemSource: resolveGemSource(cmd, gem, opts.gemSourceOptions),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (cookbook %s)\n", result.Gem, result.Version, result.CookbookName)
	for _, dep := range result.Dependencies {
		fmt.Fprintf(out, "- %s %s (%s)\n", dep.Name, dep.Constraint, dep.Origin)
	}
	return nil
}
