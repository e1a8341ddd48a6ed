package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance_Endpoint(t *testing.T) {
	tests := []struct {
		name     string
		instance Instance
		want     string
		wantOK   bool
	}{
		{
			name: "public DNS wins over everything",
			instance: Instance{
				PublicDNS:  "ec2-1-2-3-4.compute.amazonaws.com",
				ElasticIP:  "54.1.2.3",
				PrivateDNS: "ip-10-0-0-1.ec2.internal",
			},
			want:   "ec2-1-2-3-4.compute.amazonaws.com",
			wantOK: true,
		},
		{
			name: "elastic IP when no public DNS",
			instance: Instance{
				ElasticIP:  "54.1.2.3",
				PrivateDNS: "ip-10-0-0-1.ec2.internal",
			},
			want:   "54.1.2.3",
			wantOK: true,
		},
		{
			name: "private DNS as last resort",
			instance: Instance{
				PrivateDNS: "ip-10-0-0-1.ec2.internal",
			},
			want:   "ip-10-0-0-1.ec2.internal",
			wantOK: true,
		},
		{
			name:     "no address at all",
			instance: Instance{ID: "i-1", Status: InstanceStatusOnline},
			want:     "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.instance.Endpoint()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestDeploymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, DeploymentStatusRunning.IsTerminal())
	assert.True(t, DeploymentStatusSuccessful.IsTerminal())
	assert.True(t, DeploymentStatusFailed.IsTerminal())
	// Unknown statuses from the remote service are treated as terminal.
	assert.True(t, DeploymentStatus("skipped").IsTerminal())
}

func TestInstanceStatus_IsOnline(t *testing.T) {
	assert.True(t, InstanceStatusOnline.IsOnline())
	assert.False(t, InstanceStatusBooting.IsOnline())
	assert.False(t, InstanceStatusStopped.IsOnline())
	assert.False(t, InstanceStatus("Online").IsOnline())
}
