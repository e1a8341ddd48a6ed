// Package env derives per-application runtime configuration from stack
// metadata: the stack's custom_env blob, the app's active environment, and
// the address of the memcached layer's online instance when one exists.
package env

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

// Keys injected into the resolved mapping.
const (
	// EnvironmentKey is always set from the app's active environment
	// attribute; the remote metadata blob never carries it natively, so a
	// value already present in custom_env is overwritten.
	EnvironmentKey = "RAILS_ENV"

	// MemcachedHostKey holds the public-reachable endpoint of the memcached
	// instance. Set only when a memcached layer has an online instance.
	MemcachedHostKey = "MEMCACHED_HOST"

	// MemcachedPrivateHostKey holds the same instance's private DNS name.
	MemcachedPrivateHostKey = "MEMCACHED_PRIVATE_HOST"
)

const memcachedRole = "memcached"

// =============================================================================
// Cache
// =============================================================================

type cacheKey struct {
	Stack string
	App   string
}

// Cache memoizes resolved environments per (stack name, app name) pair for
// the process lifetime. Never invalidated. Not safe for concurrent use.
type Cache struct {
	entries map[cacheKey]map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]map[string]string)}
}

func (c *Cache) get(key cacheKey) (map[string]string, bool) {
	env, ok := c.entries[key]
	return env, ok
}

func (c *Cache) put(key cacheKey, env map[string]string) {
	c.entries[key] = env
}

// =============================================================================
// Resolver
// =============================================================================

// Resolver builds the runtime environment mapping for an app.
type Resolver struct {
	api    fleet.API
	cache  *Cache
	logger *slog.Logger
}

// NewResolver creates a resolver. A nil cache gets a fresh one; tests inject
// their own to observe memoization.
func NewResolver(api fleet.API, cache *Cache, logger *slog.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		api:    api,
		cache:  cache,
		logger: logger.With("component", "env_resolver"),
	}
}

// Resolve returns the environment mapping for appName on stackName. A second
// call with the same pair returns the cached mapping without touching the
// remote API.
func (r *Resolver) Resolve(ctx context.Context, stackName, appName string) (map[string]string, error) {
	key := cacheKey{Stack: stackName, App: appName}
	if env, ok := r.cache.get(key); ok {
		return env, nil
	}

	stack, err := fleet.GetStack(ctx, r.api, stackName)
	if err != nil {
		return nil, err
	}

	env, err := customEnv(stack, appName)
	if err != nil {
		return nil, err
	}

	app, err := fleet.GetApp(ctx, r.api, stack, appName)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fleet.NewError("Resolve", "app", appName, "no app with this name in stack "+stackName, fleet.ErrNotFound)
	}
	env[EnvironmentKey] = app.Environment

	if err := r.addMemcached(ctx, stack, env); err != nil {
		return nil, err
	}

	r.cache.put(key, env)
	r.logger.Debug("environment resolved", "stack", stackName, "app", appName, "keys", len(env))
	return env, nil
}

// addMemcached injects the memcached address keys when the stack has a
// memcached layer with at least one online instance. Otherwise the keys are
// omitted entirely, never set to empty.
func (r *Resolver) addMemcached(ctx context.Context, stack *fleet.Stack, env map[string]string) error {
	layers, err := fleet.GetLayers(ctx, r.api, stack, []string{memcachedRole})
	if err != nil {
		return err
	}
	for _, layer := range layers {
		online, err := fleet.OnlineInstances(ctx, r.api, fleet.InstanceQuery{LayerID: layer.ID})
		if err != nil {
			return err
		}
		if len(online) == 0 {
			continue
		}
		instance := online[0]
		env[MemcachedPrivateHostKey] = instance.PrivateDNS
		if endpoint, ok := instance.Endpoint(); ok {
			env[MemcachedHostKey] = endpoint
		}
		return nil
	}
	return nil
}

// customEnv parses the stack metadata blob and extracts the per-app
// environment mapping under the custom_env namespace.
func customEnv(stack *fleet.Stack, appName string) (map[string]string, error) {
	if stack.CustomJSON == "" {
		return nil, fleet.NewError("Resolve", "stack", stack.Name, "stack has no custom metadata", fleet.ErrConfigNotFound)
	}

	var blob struct {
		CustomEnv map[string]map[string]string `json:"custom_env"`
	}
	if err := json.Unmarshal([]byte(stack.CustomJSON), &blob); err != nil {
		return nil, fleet.NewError("Resolve", "stack", stack.Name, "parse custom metadata", err)
	}

	env, ok := blob.CustomEnv[appName]
	if !ok {
		return nil, fleet.NewError("Resolve", "app", appName, "no custom_env entry in stack "+stack.Name, fleet.ErrConfigNotFound)
	}
	if env == nil {
		env = make(map[string]string)
	}
	return env, nil
}
