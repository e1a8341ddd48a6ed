// Package deploy submits deployment and recipe-execution jobs against the
// online instances of selected layers, and waits for submitted jobs to
// finish.
package deploy

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

// Trigger resolves the target instance set for a stack/app/layer selection
// and submits a named job against it. Either a job is submitted with a
// non-empty instance set or the call fails before submission.
type Trigger struct {
	api          fleet.API
	defaultRoles []string
	logger       *slog.Logger
}

// NewTrigger creates a trigger. defaultRoles is the configured list of
// application layer role names used when the caller does not pick a layer.
func NewTrigger(api fleet.API, defaultRoles []string, logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{
		api:          api,
		defaultRoles: defaultRoles,
		logger:       logger.With("component", "trigger"),
	}
}

// ExecuteRecipe submits an execute_recipes job running the named recipe on
// the given layer role, or on the default role list when layerRole is empty.
func (t *Trigger) ExecuteRecipe(ctx context.Context, stackName, layerRole, recipe, appName string) (*fleet.Deployment, error) {
	if recipe == "" {
		return nil, fleet.NewError("ExecuteRecipe", "recipe", "", "recipe name is required", fleet.ErrValidation)
	}
	roles := t.defaultRoles
	if layerRole != "" {
		roles = []string{layerRole}
	}
	return t.submit(ctx, stackName, appName, roles, fleet.Command{
		Name: fleet.CommandExecuteRecipes,
		Args: map[string][]string{"recipes": {recipe}},
	})
}

// Deploy submits a deploy job for the app across the default role list.
func (t *Trigger) Deploy(ctx context.Context, stackName string, migrate bool, appName string) (*fleet.Deployment, error) {
	return t.submit(ctx, stackName, appName, t.defaultRoles, fleet.Command{
		Name: fleet.CommandDeploy,
		Args: map[string][]string{"migrate": {strconv.FormatBool(migrate)}},
	})
}

func (t *Trigger) submit(ctx context.Context, stackName, appName string, roles []string, cmd fleet.Command) (*fleet.Deployment, error) {
	stack, err := fleet.GetStack(ctx, t.api, stackName)
	if err != nil {
		return nil, err
	}

	app, err := fleet.GetApp(ctx, t.api, stack, appName)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fleet.NewError(string(cmd.Name), "app", appName, "no app with this name in stack "+stackName, fleet.ErrNotFound)
	}

	layers, err := fleet.GetLayers(ctx, t.api, stack, roles)
	if err != nil {
		return nil, err
	}

	// Union in layer order, then per-layer instance order.
	var instanceIDs []string
	for _, layer := range layers {
		ids, err := fleet.OnlineInstanceIDs(ctx, t.api, fleet.InstanceQuery{LayerID: layer.ID})
		if err != nil {
			return nil, err
		}
		instanceIDs = append(instanceIDs, ids...)
	}
	if len(instanceIDs) == 0 {
		return nil, fleet.NewError(string(cmd.Name), "stack", stackName, "no online instances in target layers", fleet.ErrNoInstances)
	}

	deployment, err := t.api.CreateDeployment(ctx, fleet.DeploymentRequest{
		StackID:     stack.ID,
		AppID:       app.ID,
		InstanceIDs: instanceIDs,
		Command:     cmd,
	})
	if err != nil {
		return nil, fleet.NewError(string(cmd.Name), "stack", stackName, "create deployment", err)
	}

	t.logger.Info("deployment submitted",
		"deployment_id", deployment.ID,
		"command", cmd.Name,
		"stack", stackName,
		"app", appName,
		"instances", len(instanceIDs),
	)
	return deployment, nil
}
