package deploy

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

func runningDeployment() *fleet.Deployment {
	return &fleet.Deployment{ID: "d-1", Status: fleet.DeploymentStatusRunning}
}

func TestWaiter_Success(t *testing.T) {
	api := &fakeAPI{statusSeq: []fleet.DeploymentStatus{
		fleet.DeploymentStatusRunning,
		fleet.DeploymentStatusRunning,
		fleet.DeploymentStatusSuccessful,
	}}
	var progress bytes.Buffer
	w := NewWaiter(api, 20*time.Millisecond, time.Minute, &progress)

	start := time.Now()
	err := w.WaitForSuccess(context.Background(), runningDeployment())
	require.NoError(t, err)

	// Two running polls, one successful poll, one delay between each poll.
	assert.Equal(t, 3, api.describeCalls)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	out := progress.String()
	assert.Contains(t, out, "Polling deploy status...")
	assert.Contains(t, out, "..\n")
	assert.Contains(t, out, "Deployment successful.")
}

func TestWaiter_Failure(t *testing.T) {
	api := &fakeAPI{statusSeq: []fleet.DeploymentStatus{
		fleet.DeploymentStatusRunning,
		fleet.DeploymentStatusFailed,
	}}
	var progress bytes.Buffer
	w := NewWaiter(api, 10*time.Millisecond, time.Minute, &progress)

	err := w.WaitForSuccess(context.Background(), runningDeployment())
	require.Error(t, err)
	assert.ErrorIs(t, err, fleet.ErrDeploymentFailed)
	assert.Contains(t, err.Error(), `"failed"`)
}

func TestWaiter_Timeout(t *testing.T) {
	api := &fakeAPI{statusSeq: []fleet.DeploymentStatus{fleet.DeploymentStatusRunning}}
	var progress bytes.Buffer
	w := NewWaiter(api, 50*time.Millisecond, time.Second, &progress)

	start := time.Now()
	err := w.WaitForSuccess(context.Background(), runningDeployment())
	require.Error(t, err)
	assert.ErrorIs(t, err, fleet.ErrDeploymentTimeout)
	assert.Contains(t, err.Error(), "1s")
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

// A terminal status discovered past the deadline still reports as a timeout.
func TestWaiter_DeadlineBeatsLateSuccess(t *testing.T) {
	api := &fakeAPI{
		statusSeq:     []fleet.DeploymentStatus{fleet.DeploymentStatusSuccessful},
		describeDelay: 80 * time.Millisecond,
	}
	var progress bytes.Buffer
	w := NewWaiter(api, 10*time.Millisecond, 50*time.Millisecond, &progress)

	err := w.WaitForSuccess(context.Background(), runningDeployment())
	require.Error(t, err)
	assert.ErrorIs(t, err, fleet.ErrDeploymentTimeout)
	assert.Equal(t, 1, api.describeCalls, "the successful poll happened but must not count")
}

func TestWaiter_ContextCancel(t *testing.T) {
	api := &fakeAPI{statusSeq: []fleet.DeploymentStatus{fleet.DeploymentStatusRunning}}
	ctx, cancel := context.WithCancel(context.Background())

	var progress bytes.Buffer
	w := NewWaiter(api, time.Minute, time.Hour, &progress)

	done := make(chan error, 1)
	go func() { done <- w.WaitForSuccess(ctx, runningDeployment()) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not observe cancellation")
	}
}
