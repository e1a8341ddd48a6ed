package fleet

import "context"

// =============================================================================
// Statuses
// =============================================================================

// InstanceStatus represents the lifecycle status of a fleet instance.
type InstanceStatus string

const (
	InstanceStatusOnline       InstanceStatus = "online"
	InstanceStatusBooting      InstanceStatus = "booting"
	InstanceStatusRequested    InstanceStatus = "requested"
	InstanceStatusStopped      InstanceStatus = "stopped"
	InstanceStatusShuttingDown InstanceStatus = "shutting_down"
)

// IsOnline reports whether the instance is eligible as a deployment target.
// Only the exact "online" status qualifies.
func (s InstanceStatus) IsOnline() bool {
	return s == InstanceStatusOnline
}

// DeploymentStatus represents the status of a submitted deployment job.
// Jobs transition running -> successful | failed and are polled, never pushed.
type DeploymentStatus string

const (
	DeploymentStatusRunning    DeploymentStatus = "running"
	DeploymentStatusSuccessful DeploymentStatus = "successful"
	DeploymentStatusFailed     DeploymentStatus = "failed"
)

// IsTerminal reports whether the job has left the running state.
func (s DeploymentStatus) IsTerminal() bool {
	return s != DeploymentStatusRunning
}

// =============================================================================
// Commands
// =============================================================================

// CommandName identifies the job type submitted to the fleet service.
type CommandName string

const (
	CommandDeploy         CommandName = "deploy"
	CommandExecuteRecipes CommandName = "execute_recipes"
)

// Command is the named job plus its arguments, e.g. recipes=[...] or migrate=[...].
type Command struct {
	Name CommandName
	Args map[string][]string
}

// =============================================================================
// Entities
// =============================================================================

// Stack is a named fleet of layers and instances. CustomJSON is the raw
// stack-level metadata blob; the env resolver parses it.
type Stack struct {
	ID         string
	Name       string
	Region     string
	CustomJSON string
}

// App is an application living inside exactly one stack. Environment is the
// app's active runtime environment attribute (e.g. "production").
type App struct {
	ID          string
	Name        string
	Shortname   string
	Environment string
}

// Layer groups instances under a short role name such as "app" or "memcached".
type Layer struct {
	ID        string
	Name      string
	Shortname string
}

// Instance is a single machine attached to a layer. At most one of the
// address fields is guaranteed to be present.
type Instance struct {
	ID         string
	Hostname   string
	Status     InstanceStatus
	PublicDNS  string
	ElasticIP  string
	PrivateDNS string
}

// Endpoint returns the preferred address for reaching the instance: public
// DNS, else elastic IP, else private DNS. The second return value is false
// when the instance has no address at all. Public reachability is preferred;
// private reachability is the last resort.
func (i Instance) Endpoint() (string, bool) {
	switch {
	case i.PublicDNS != "":
		return i.PublicDNS, true
	case i.ElasticIP != "":
		return i.ElasticIP, true
	case i.PrivateDNS != "":
		return i.PrivateDNS, true
	default:
		return "", false
	}
}

// Deployment is a submitted job descriptor.
type Deployment struct {
	ID      string
	Status  DeploymentStatus
	Command CommandName
}

// =============================================================================
// API
// =============================================================================

// InstanceQuery filters ListInstances. Exactly one of the fields is set per
// call; by-layer is the common case.
type InstanceQuery struct {
	StackID string
	LayerID string
}

// DeploymentRequest describes a job to submit against a stack, app, and
// instance set.
type DeploymentRequest struct {
	StackID     string
	AppID       string
	InstanceIDs []string
	Command     Command
	Comment     string
}

// API is the remote fleet-management service. List operations return
// complete, unpaginated results; every call is an independent, idempotent
// read except CreateDeployment.
type API interface {
	ListStacks(ctx context.Context) ([]Stack, error)
	ListApps(ctx context.Context, stackID string) ([]App, error)
	ListLayers(ctx context.Context, stackID string) ([]Layer, error)
	ListInstances(ctx context.Context, query InstanceQuery) ([]Instance, error)
	CreateDeployment(ctx context.Context, req DeploymentRequest) (*Deployment, error)
	DescribeDeployment(ctx context.Context, deploymentID string) (*Deployment, error)
}
