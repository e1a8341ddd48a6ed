// opsdeploy is a command-driven deployment helper for applications hosted on
// AWS OpsWorks stacks: it resolves fleet topology by name, triggers deploy
// and recipe-execution jobs against the online instances of the selected
// layers, and polls until the job finishes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/artpar/opsdeploy/internal/shell/opsworks"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var stackName string
	var appName string

	cmd := &cobra.Command{
		Use:           "opsdeploy",
		Short:         "Deployment helper for OpsWorks-hosted applications",
		Long:          "opsdeploy resolves an OpsWorks stack by name, derives per-environment configuration from stack metadata, and runs deploy or recipe jobs against the online instances of the selected layers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (env OPSDEPLOY_* overrides apply)")
	cmd.PersistentFlags().StringVar(&stackName, "stack", "", "Stack name (required)")
	cmd.PersistentFlags().StringVar(&appName, "app", "", "Application name (defaults to the configured base name)")

	cmd.AddCommand(
		newDeployCommand(&configPath, &stackName, &appName),
		newRunRecipeCommand(&configPath, &stackName, &appName),
		newEnvCommand(&configPath, &stackName, &appName),
		newSSHCommand(&configPath, &stackName),
	)
	return cmd
}

// runtime bundles everything a subcommand needs: loaded config, logger, and
// an authenticated fleet client.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	client *opsworks.Client
	stack  string
	app    string
}

// newRuntime loads config, sets up logging with a per-invocation run id, and
// constructs the fleet client. appName may be empty for commands that do not
// address an application.
func newRuntime(configPath, stackName, appName string) (*runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if stackName == "" {
		return nil, errors.New("stack name is required (--stack)")
	}
	if appName == "" {
		appName = cfg.App.BaseName
	}

	logger := SetupLogger(cfg).With("run_id", uuid.NewString()[:8])

	client, err := opsworks.NewClient(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, cfg.AWS.Region, logger)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		client: client,
		stack:  stackName,
		app:    appName,
	}, nil
}

// requireApp errors when the command addresses an application but neither
// --app nor app.base_name supplied one.
func (rt *runtime) requireApp() error {
	if rt.app == "" {
		return errors.New("application name is required (--app or app.base_name in config)")
	}
	return nil
}
