package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/opsdeploy/internal/core/fleet"
	"github.com/artpar/opsdeploy/internal/core/sshcmd"
)

func newSSHCommand(configPath, stackName *string) *cobra.Command {
	var layerRole string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "ssh [COMMAND...]",
		Short: "Open an ssh session to the first online app-layer instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(*configPath, *stackName, "")
			if err != nil {
				return err
			}

			stack, err := fleet.GetStack(ctx, rt.client, rt.stack)
			if err != nil {
				return err
			}

			roles := rt.cfg.Layers.AppRoles
			if layerRole != "" {
				roles = []string{layerRole}
			}
			layers, err := fleet.GetLayers(ctx, rt.client, stack, roles)
			if err != nil {
				return err
			}

			var target *fleet.Instance
			for _, layer := range layers {
				online, err := fleet.OnlineInstances(ctx, rt.client, fleet.InstanceQuery{LayerID: layer.ID})
				if err != nil {
					return err
				}
				if len(online) > 0 {
					target = &online[0]
					break
				}
			}
			if target == nil {
				return fleet.NewError("ssh", "stack", rt.stack, "no online instances in target layers", fleet.ErrNoInstances)
			}

			endpoint, ok := target.Endpoint()
			if !ok {
				return fleet.NewError("ssh", "instance", target.ID, "instance has no reachable address", fleet.ErrNotFound)
			}

			opts := sshcmd.Options{KeyPath: rt.cfg.SSH.KeyPath, User: rt.cfg.SSH.User}
			remoteCommand := strings.Join(args, " ")

			if printOnly {
				fmt.Println(sshcmd.Command(endpoint, remoteCommand, opts))
				return nil
			}

			rt.logger.Debug("starting ssh session", "instance", target.ID, "endpoint", endpoint)
			ssh := exec.CommandContext(ctx, "ssh", sshcmd.Args(endpoint, remoteCommand, opts)...)
			ssh.Stdin = os.Stdin
			ssh.Stdout = os.Stdout
			ssh.Stderr = os.Stderr
			return ssh.Run()
		},
	}

	cmd.Flags().StringVar(&layerRole, "layer", "", "Layer short role name to pick the instance from")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the ssh command instead of running it")
	return cmd
}
