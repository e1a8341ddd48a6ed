package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/opsdeploy/internal/core/env"
)

func newEnvCommand(configPath, stackName, appName *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the resolved runtime environment for the application",
		Long:  "Resolves the application's environment from the stack's custom metadata, the app's active environment, and the memcached layer's online instance, and prints it as YAML.",
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

			resolver := env.NewResolver(rt.client, env.NewCache(), rt.logger)
			resolved, err := resolver.Resolve(ctx, rt.stack, rt.app)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(resolved)
			if err != nil {
				return fmt.Errorf("render environment: %w", err)
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
	return cmd
}
