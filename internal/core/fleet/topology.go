package fleet

import (
	"context"
)

// =============================================================================
// Name-Based Lookups
// =============================================================================

// GetStack fetches all stacks and returns the first whose name matches
// exactly. First match wins if the account somehow holds duplicates.
func GetStack(ctx context.Context, api API, name string) (*Stack, error) {
	stacks, err := api.ListStacks(ctx)
	if err != nil {
		return nil, NewError("GetStack", "stack", name, "list stacks", err)
	}
	for _, s := range stacks {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, NewError("GetStack", "stack", name, "no stack with this name", ErrNotFound)
}

// GetApp returns the first app under the stack whose name matches exactly,
// or (nil, nil) when no such app exists. Callers decide whether an absent
// app is fatal.
func GetApp(ctx context.Context, api API, stack *Stack, name string) (*App, error) {
	apps, err := api.ListApps(ctx, stack.ID)
	if err != nil {
		return nil, NewError("GetApp", "app", name, "list apps", err)
	}
	for _, a := range apps {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, nil // Not found
}

// GetLayers returns the stack's layers whose short role name is a member of
// roles, preserving the order the remote service returned them in.
func GetLayers(ctx context.Context, api API, stack *Stack, roles []string) ([]Layer, error) {
	layers, err := api.ListLayers(ctx, stack.ID)
	if err != nil {
		return nil, NewError("GetLayers", "layer", stack.Name, "list layers", err)
	}
	wanted := make(map[string]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}
	var matched []Layer
	for _, l := range layers {
		if wanted[l.Shortname] {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

// OnlineInstances fetches the instances matching the query and keeps only
// those whose status is exactly online.
func OnlineInstances(ctx context.Context, api API, query InstanceQuery) ([]Instance, error) {
	instances, err := api.ListInstances(ctx, query)
	if err != nil {
		return nil, NewError("OnlineInstances", "instance", query.LayerID, "list instances", err)
	}
	var online []Instance
	for _, i := range instances {
		if i.Status.IsOnline() {
			online = append(online, i)
		}
	}
	return online, nil
}

// OnlineInstanceIDs is OnlineInstances projected to ids.
func OnlineInstanceIDs(ctx context.Context, api API, query InstanceQuery) ([]string, error) {
	instances, err := OnlineInstances(ctx, api, query)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(instances))
	for _, i := range instances {
		ids = append(ids, i.ID)
	}
	return ids, nil
}
