// cmd/loanctl/artifacts.go
package main

import (
	"fmt"
	"sort"
	"strings"

	"loan-approval-workers/internal/artifacts"
	"loan-approval-workers/internal/common/config"

	"github.com/spf13/cobra"
)

func (c *cli) artifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect and publish model artifacts",
	}
	cmd.AddCommand(c.artifactsVerifyCmd())
	cmd.AddCommand(c.artifactsPublishCmd())
	return cmd
}

func (c *cli) artifactsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Load every artifact and build the pipeline (store from --backend or artifacts.backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend := c.cfg.Artifacts.Backend
			ctx := cmd.Context()

			store, closer, err := artifacts.OpenBackend(ctx, c.cfg, backend)
			if err != nil {
				return fmt.Errorf("failed to open %s store: %w", backend, err)
			}
			defer closer.Close()

			names := artifacts.NamesFromConfig(c.cfg.Artifacts.Names)
			pipeline, err := artifacts.NewLoader(store, names, c.log).LoadPipeline(ctx)
			if err != nil {
				return err
			}

			info := pipeline.Describe()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend:     %s\n", backend)
			fmt.Fprintf(out, "artifacts:   %d\n", len(names.All()))
			fmt.Fprintf(out, "classifier:  %s\n", info.ClassifierKind)
			fmt.Fprintf(out, "features:    %d\n", len(info.Columns))

			fields := make([]string, 0, len(info.Categories))
			for field := range info.Categories {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(out, "  %-14s %s\n", field, strings.Join(info.Categories[field], ", "))
			}
			return nil
		},
	}
}

func (c *cli) artifactsPublishCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "publish",
		Short:   "Copy artifacts from a directory into a shared store",
		Example: `  loanctl artifacts publish --from ./configs/artifacts --to redis`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == config.BackendFile {
				return fmt.Errorf("--to must be one of redis, postgres, elasticsearch")
			}
			ctx := cmd.Context()

			target, closer, err := artifacts.OpenBackend(ctx, c.cfg, to)
			if err != nil {
				return fmt.Errorf("failed to open %s store: %w", to, err)
			}
			defer closer.Close()

			if pg, ok := target.(*artifacts.PostgresStore); ok {
				if err := pg.EnsureSchema(ctx); err != nil {
					return err
				}
			}

			names := artifacts.NamesFromConfig(c.cfg.Artifacts.Names)
			n, err := artifacts.Publish(ctx, artifacts.NewFileStore(from), target, names)
			if err != nil {
				return err
			}

			// The copy is only useful if it builds.
			if _, err := artifacts.NewLoader(target, names, c.log).LoadPipeline(ctx); err != nil {
				return fmt.Errorf("published artifacts do not build a pipeline: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %d artifacts from %s to %s\n", n, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "./configs/artifacts", "directory holding the artifact files")
	cmd.Flags().StringVar(&to, "to", "", "target backend: redis, postgres or elasticsearch")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
