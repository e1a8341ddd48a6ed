package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artpar/opsdeploy/internal/core/deploy"
)

func newDeployCommand(configPath, stackName, appName *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the application to all online app-layer instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(*configPath, *stackName, *appName)
			if err != nil {
				return err
			}
			if err := rt.requireApp(); err != nil {
				return err
			}

			trigger := deploy.NewTrigger(rt.client, rt.cfg.Layers.AppRoles, rt.logger)
			job, err := trigger.Deploy(ctx, rt.stack, migrate, rt.app)
			if err != nil {
				return err
			}

			waiter := deploy.NewWaiter(rt.client, rt.cfg.Deploy.PollInterval, rt.cfg.Deploy.Timeout, os.Stderr)
			if err := waiter.WaitForSuccess(ctx, job); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(os.Stderr, "Deployed %s to stack %s (deployment %s)\n", rt.app, rt.stack, job.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run database migrations as part of the deploy")
	return cmd
}
