package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/artpar/opsdeploy/internal/core/deploy"
)

func newRunRecipeCommand(configPath, stackName, appName *string) *cobra.Command {
	var layerRole string

	cmd := &cobra.Command{
		Use:   "run-recipe RECIPE",
		Short: "Run a single Chef recipe on the online instances of a layer",
		Long:  "Runs the named recipe on the given layer role, or on the configured default application layers when --layer is not set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(*configPath, *stackName, *appName)
			if err != nil {
				return err
			}
			if err := rt.requireApp(); err != nil {
				return err
			}

			var recipe string
			if len(args) > 0 {
				recipe = args[0]
			}

			trigger := deploy.NewTrigger(rt.client, rt.cfg.Layers.AppRoles, rt.logger)
			job, err := trigger.ExecuteRecipe(ctx, rt.stack, layerRole, recipe, rt.app)
			if err != nil {
				return err
			}

			waiter := deploy.NewWaiter(rt.client, rt.cfg.Deploy.PollInterval, rt.cfg.Deploy.Timeout, os.Stderr)
			if err := waiter.WaitForSuccess(ctx, job); err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(os.Stderr, "Recipe %s finished on stack %s (deployment %s)\n", recipe, rt.stack, job.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&layerRole, "layer", "", "Layer short role name to target instead of the defaults")
	return cmd
}
