// Package opsworks adapts the AWS OpsWorks API to the fleet.API interface.
// SDK wire types never leave this package; everything is converted into
// domain structs at the boundary.
package opsworks

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsopsworks "github.com/aws/aws-sdk-go-v2/service/opsworks"
	opstypes "github.com/aws/aws-sdk-go-v2/service/opsworks/types"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

// Client implements fleet.API against AWS OpsWorks.
type Client struct {
	accessKeyID     string
	secretAccessKey string
	region          string
	logger          *slog.Logger
}

// NewClient validates the credentials and returns a handle. No network call
// is made here; the SDK client is constructed lazily per request.
func NewClient(accessKeyID, secretAccessKey, region string, logger *slog.Logger) (*Client, error) {
	if accessKeyID == "" || secretAccessKey == "" {
		return nil, fleet.NewError("NewClient", "credentials", "",
			"access key id and secret access key must both be set", fleet.ErrMissingCredentials)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		accessKeyID:     accessKeyID,
		secretAccessKey: secretAccessKey,
		region:          region,
		logger:          logger.With("component", "opsworks"),
	}, nil
}

func (c *Client) newClient() *awsopsworks.Client {
	return awsopsworks.New(awsopsworks.Options{
		Region:      c.region,
		Credentials: credentials.NewStaticCredentialsProvider(c.accessKeyID, c.secretAccessKey, ""),
	})
}

// =============================================================================
// fleet.API
// =============================================================================

// ListStacks returns every stack in the account.
func (c *Client) ListStacks(ctx context.Context) ([]fleet.Stack, error) {
	out, err := c.newClient().DescribeStacks(ctx, &awsopsworks.DescribeStacksInput{})
	if err != nil {
		return nil, err
	}
	stacks := make([]fleet.Stack, 0, len(out.Stacks))
	for _, s := range out.Stacks {
		stacks = append(stacks, toStack(s))
	}
	return stacks, nil
}

// ListApps returns the apps under a stack.
func (c *Client) ListApps(ctx context.Context, stackID string) ([]fleet.App, error) {
	out, err := c.newClient().DescribeApps(ctx, &awsopsworks.DescribeAppsInput{
		StackId: aws.String(stackID),
	})
	if err != nil {
		return nil, err
	}
	apps := make([]fleet.App, 0, len(out.Apps))
	for _, a := range out.Apps {
		apps = append(apps, toApp(a))
	}
	return apps, nil
}

// ListLayers returns the layers under a stack in remote order.
func (c *Client) ListLayers(ctx context.Context, stackID string) ([]fleet.Layer, error) {
	out, err := c.newClient().DescribeLayers(ctx, &awsopsworks.DescribeLayersInput{
		StackId: aws.String(stackID),
	})
	if err != nil {
		return nil, err
	}
	layers := make([]fleet.Layer, 0, len(out.Layers))
	for _, l := range out.Layers {
		layers = append(layers, toLayer(l))
	}
	return layers, nil
}

// ListInstances returns the instances matching the query, all statuses
// included; online filtering happens in the core.
func (c *Client) ListInstances(ctx context.Context, query fleet.InstanceQuery) ([]fleet.Instance, error) {
	input := &awsopsworks.DescribeInstancesInput{}
	if query.LayerID != "" {
		input.LayerId = aws.String(query.LayerID)
	} else {
		input.StackId = aws.String(query.StackID)
	}
	out, err := c.newClient().DescribeInstances(ctx, input)
	if err != nil {
		return nil, err
	}
	instances := make([]fleet.Instance, 0, len(out.Instances))
	for _, i := range out.Instances {
		instances = append(instances, toInstance(i))
	}
	return instances, nil
}

// CreateDeployment submits a job against the request's instance set.
func (c *Client) CreateDeployment(ctx context.Context, req fleet.DeploymentRequest) (*fleet.Deployment, error) {
	input := &awsopsworks.CreateDeploymentInput{
		StackId:     aws.String(req.StackID),
		AppId:       aws.String(req.AppID),
		InstanceIds: req.InstanceIDs,
		Command: &opstypes.DeploymentCommand{
			Name: opstypes.DeploymentCommandName(req.Command.Name),
			Args: req.Command.Args,
		},
	}
	if req.Comment != "" {
		input.Comment = aws.String(req.Comment)
	}
	out, err := c.newClient().CreateDeployment(ctx, input)
	if err != nil {
		return nil, err
	}
	c.logger.Info("deployment created",
		"deployment_id", aws.ToString(out.DeploymentId),
		"command", req.Command.Name,
	)
	return &fleet.Deployment{
		ID:      aws.ToString(out.DeploymentId),
		Status:  fleet.DeploymentStatusRunning,
		Command: req.Command.Name,
	}, nil
}

// DescribeDeployment fetches the current status of a single job.
func (c *Client) DescribeDeployment(ctx context.Context, deploymentID string) (*fleet.Deployment, error) {
	out, err := c.newClient().DescribeDeployments(ctx, &awsopsworks.DescribeDeploymentsInput{
		DeploymentIds: []string{deploymentID},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Deployments) == 0 {
		return nil, fleet.NewError("DescribeDeployment", "deployment", deploymentID,
			"no deployment with this id", fleet.ErrNotFound)
	}
	d := toDeployment(out.Deployments[0])
	return &d, nil
}

// =============================================================================
// Wire Converters
// =============================================================================

func toStack(s opstypes.Stack) fleet.Stack {
	return fleet.Stack{
		ID:         aws.ToString(s.StackId),
		Name:       aws.ToString(s.Name),
		Region:     aws.ToString(s.Region),
		CustomJSON: aws.ToString(s.CustomJson),
	}
}

func toApp(a opstypes.App) fleet.App {
	return fleet.App{
		ID:          aws.ToString(a.AppId),
		Name:        aws.ToString(a.Name),
		Shortname:   aws.ToString(a.Shortname),
		Environment: a.Attributes[string(opstypes.AppAttributesKeysRailsEnv)],
	}
}

func toLayer(l opstypes.Layer) fleet.Layer {
	return fleet.Layer{
		ID:        aws.ToString(l.LayerId),
		Name:      aws.ToString(l.Name),
		Shortname: aws.ToString(l.Shortname),
	}
}

func toInstance(i opstypes.Instance) fleet.Instance {
	return fleet.Instance{
		ID:         aws.ToString(i.InstanceId),
		Hostname:   aws.ToString(i.Hostname),
		Status:     fleet.InstanceStatus(aws.ToString(i.Status)),
		PublicDNS:  aws.ToString(i.PublicDns),
		ElasticIP:  aws.ToString(i.ElasticIp),
		PrivateDNS: aws.ToString(i.PrivateDns),
	}
}

func toDeployment(d opstypes.Deployment) fleet.Deployment {
	out := fleet.Deployment{
		ID:     aws.ToString(d.DeploymentId),
		Status: fleet.DeploymentStatus(aws.ToString(d.Status)),
	}
	if d.Command != nil {
		out.Command = fleet.CommandName(d.Command.Name)
	}
	return out
}
