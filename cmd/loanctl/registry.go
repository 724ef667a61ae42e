// cmd/loanctl/registry.go
package main

import (
	"fmt"

	predictloanapproval "loan-approval-workers/internal/workers/loan/predict-loan-approval"
	"loan-approval-workers/pkg/registry"

	"github.com/spf13/cobra"
)

func (c *cli) registryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Work with the activity registry",
	}
	cmd.AddCommand(c.registryValidateCmd())
	return cmd
}

func (c *cli) registryValidateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry and the loan worker's declared contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = c.cfg.Registry.Path
			}
			if path == "" {
				path = "configs/activity-registry.json"
			}

			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}

			activity, ok := reg.FindByTaskType(predictloanapproval.TaskType)
			if !ok {
				return fmt.Errorf("no activity declares task type %s", predictloanapproval.TaskType)
			}
			if err := activity.RequireErrorCodes(predictloanapproval.ErrorCodes); err != nil {
				return err
			}

			timeout, _ := activity.TimeoutDuration()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			fmt.Fprintf(out, "%s: process %s, timeout %s\n", activity.TaskType, activity.Process, timeout)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to registry file (default: registry.path)")
	return cmd
}
