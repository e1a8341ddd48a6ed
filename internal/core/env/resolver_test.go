package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

type fakeAPI struct {
	stacks    []fleet.Stack
	apps      map[string][]fleet.App
	layers    map[string][]fleet.Layer
	instances map[string][]fleet.Instance

	listCalls int
}

func (f *fakeAPI) ListStacks(ctx context.Context) ([]fleet.Stack, error) {
	f.listCalls++
	return f.stacks, nil
}

func (f *fakeAPI) ListApps(ctx context.Context, stackID string) ([]fleet.App, error) {
	f.listCalls++
	return f.apps[stackID], nil
}

func (f *fakeAPI) ListLayers(ctx context.Context, stackID string) ([]fleet.Layer, error) {
	f.listCalls++
	return f.layers[stackID], nil
}

func (f *fakeAPI) ListInstances(ctx context.Context, query fleet.InstanceQuery) ([]fleet.Instance, error) {
	f.listCalls++
	return f.instances[query.LayerID], nil
}

func (f *fakeAPI) CreateDeployment(ctx context.Context, req fleet.DeploymentRequest) (*fleet.Deployment, error) {
	panic("resolver must not create deployments")
}

func (f *fakeAPI) DescribeDeployment(ctx context.Context, deploymentID string) (*fleet.Deployment, error) {
	panic("resolver must not describe deployments")
}

func productionAPI(customJSON string) *fakeAPI {
	return &fakeAPI{
		stacks: []fleet.Stack{{ID: "s-1", Name: "production", CustomJSON: customJSON}},
		apps: map[string][]fleet.App{
			"s-1": {{ID: "a-1", Name: "storefront", Environment: "production"}},
		},
		layers: map[string][]fleet.Layer{
			"s-1": {
				{ID: "l-app", Shortname: "app"},
				{ID: "l-mc", Shortname: "memcached"},
			},
		},
		instances: map[string][]fleet.Instance{
			"l-mc": {{
				ID:         "i-mc",
				Status:     fleet.InstanceStatusOnline,
				PublicDNS:  "ec2-54-1-2-3.compute.amazonaws.com",
				PrivateDNS: "ip-10-0-0-7.ec2.internal",
			}},
		},
	}
}

const storefrontJSON = `{"custom_env":{"storefront":{"DATABASE_URL":"postgres://db/storefront","RAILS_ENV":"stale-value"}}}`

func TestResolver_Resolve(t *testing.T) {
	api := productionAPI(storefrontJSON)
	r := NewResolver(api, NewCache(), nil)

	env, err := r.Resolve(context.Background(), "production", "storefront")
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/storefront", env["DATABASE_URL"])
	// The active environment always overwrites whatever the blob carried.
	assert.Equal(t, "production", env[EnvironmentKey])
	assert.Equal(t, "ip-10-0-0-7.ec2.internal", env[MemcachedPrivateHostKey])
	assert.Equal(t, "ec2-54-1-2-3.compute.amazonaws.com", env[MemcachedHostKey])
}

func TestResolver_Memoizes(t *testing.T) {
	api := productionAPI(storefrontJSON)
	r := NewResolver(api, NewCache(), nil)

	first, err := r.Resolve(context.Background(), "production", "storefront")
	require.NoError(t, err)
	callsAfterFirst := api.listCalls

	second, err := r.Resolve(context.Background(), "production", "storefront")
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, api.listCalls, "second resolve must not hit the remote API")

	// Same underlying map, not a copy.
	first["MARKER"] = "set-through-first"
	assert.Equal(t, "set-through-first", second["MARKER"])
}

func TestResolver_NoMemcachedLayer(t *testing.T) {
	api := productionAPI(storefrontJSON)
	api.layers["s-1"] = []fleet.Layer{{ID: "l-app", Shortname: "app"}}
	r := NewResolver(api, NewCache(), nil)

	env, err := r.Resolve(context.Background(), "production", "storefront")
	require.NoError(t, err)
	assert.NotContains(t, env, MemcachedHostKey)
	assert.NotContains(t, env, MemcachedPrivateHostKey)
}

func TestResolver_NoOnlineMemcachedInstance(t *testing.T) {
	api := productionAPI(storefrontJSON)
	api.instances["l-mc"] = []fleet.Instance{{ID: "i-mc", Status: fleet.InstanceStatusBooting}}
	r := NewResolver(api, NewCache(), nil)

	env, err := r.Resolve(context.Background(), "production", "storefront")
	require.NoError(t, err)
	assert.NotContains(t, env, MemcachedHostKey)
	assert.NotContains(t, env, MemcachedPrivateHostKey)
}

func TestResolver_MissingMetadata(t *testing.T) {
	t.Run("empty blob", func(t *testing.T) {
		api := productionAPI("")
		r := NewResolver(api, NewCache(), nil)
		_, err := r.Resolve(context.Background(), "production", "storefront")
		assert.ErrorIs(t, err, fleet.ErrConfigNotFound)
	})

	t.Run("app key absent", func(t *testing.T) {
		api := productionAPI(`{"custom_env":{"admin":{"A":"1"}}}`)
		r := NewResolver(api, NewCache(), nil)
		_, err := r.Resolve(context.Background(), "production", "storefront")
		assert.ErrorIs(t, err, fleet.ErrConfigNotFound)
	})
}

func TestResolver_UnknownStackAndApp(t *testing.T) {
	api := productionAPI(storefrontJSON)
	r := NewResolver(api, NewCache(), nil)

	_, err := r.Resolve(context.Background(), "qa", "storefront")
	assert.ErrorIs(t, err, fleet.ErrNotFound)

	api2 := productionAPI(`{"custom_env":{"billing":{"A":"1"}}}`)
	r2 := NewResolver(api2, NewCache(), nil)
	_, err = r2.Resolve(context.Background(), "production", "billing")
	assert.ErrorIs(t, err, fleet.ErrNotFound)
}
