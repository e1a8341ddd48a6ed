package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/artpar/opsdeploy/internal/core/fleet"
)

const (
	// DefaultPollInterval is the cadence at which job status is polled.
	DefaultPollInterval = 10 * time.Second

	// DefaultTimeout is the overall deadline for a job to finish.
	DefaultTimeout = 15 * time.Minute
)

// Waiter polls a submitted job until it reaches a terminal status or the
// deadline passes. The deadline is hard: it supersedes a terminal status
// observed on the poll that crossed it.
type Waiter struct {
	api      fleet.API
	interval time.Duration
	timeout  time.Duration
	progress io.Writer
}

// NewWaiter creates a waiter. Zero interval and timeout fall back to the
// defaults; a nil progress writer writes to stderr.
func NewWaiter(api fleet.API, interval, timeout time.Duration, progress io.Writer) *Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if progress == nil {
		progress = os.Stderr
	}
	return &Waiter{
		api:      api,
		interval: interval,
		timeout:  timeout,
		progress: progress,
	}
}

// WaitForSuccess blocks until the deployment succeeds, fails, or the
// deadline passes. Progress is written to the operator-facing stream: one
// dot per poll while the job is running, then a final status line.
func (w *Waiter) WaitForSuccess(ctx context.Context, deployment *fleet.Deployment) error {
	start := time.Now()
	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()

	fmt.Fprint(w.progress, "Polling deploy status...")

	for {
		current, err := w.api.DescribeDeployment(ctx, deployment.ID)
		if err != nil {
			fmt.Fprintln(w.progress)
			return fleet.NewError("WaitForSuccess", "deployment", deployment.ID, "describe deployment", err)
		}

		// Checked before the observed status: past the deadline, even a
		// freshly seen terminal status reports as a timeout.
		if time.Since(start) > w.timeout {
			return w.timedOut(deployment.ID)
		}

		if current.Status.IsTerminal() {
			fmt.Fprintln(w.progress)
			if current.Status == fleet.DeploymentStatusSuccessful {
				fmt.Fprintln(w.progress, "Deployment successful.")
				return nil
			}
			fmt.Fprintf(w.progress, "Deployment finished with status %q.\n", current.Status)
			return fleet.NewError("WaitForSuccess", "deployment", deployment.ID,
				fmt.Sprintf("finished with status %q", current.Status), fleet.ErrDeploymentFailed)
		}

		fmt.Fprint(w.progress, ".")

		select {
		case <-ctx.Done():
			fmt.Fprintln(w.progress)
			return ctx.Err()
		case <-deadline.C:
			return w.timedOut(deployment.ID)
		case <-time.After(w.interval):
		}
	}
}

func (w *Waiter) timedOut(deploymentID string) error {
	fmt.Fprintln(w.progress)
	fmt.Fprintf(w.progress, "Deployment still running after %s, giving up.\n", w.timeout)
	return fleet.NewError("WaitForSuccess", "deployment", deploymentID,
		fmt.Sprintf("gave up after %s", w.timeout), fleet.ErrDeploymentTimeout)
}
