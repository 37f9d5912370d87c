// Package backend abstracts where circuits run. The walkthrough ships a
// local state-vector backend and a remote client for cloud devices; both
// take a circuit and a shot count and hand back measured counts.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

var (
	// ErrNotConfigured means the remote backend is missing its URL or token.
	ErrNotConfigured = errors.New("remote backend is not configured")
	// ErrJobTimeout means the job did not finish before the deadline.
	// Queue time on shared hardware counts against it.
	ErrJobTimeout = errors.New("timed out waiting for job results")
	// ErrJobFailed means the backend reported the job as failed.
	ErrJobFailed = errors.New("job failed")
	// ErrJobCancelled means the job was cancelled before completing.
	ErrJobCancelled = errors.New("job was cancelled")
)

// Status is a job's lifecycle state as reported by a backend.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the job will not change state again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// JobStatus is one poll of a submitted job.
type JobStatus struct {
	ID       string `json:"id"`
	Status   Status `json:"status"`
	Position int    `json:"position,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Capabilities describes what a backend can execute.
type Capabilities struct {
	MaxQubits int
	MaxShots  int
	Simulator bool
}

// Backend executes circuits. Run blocks until counts are available or
// the context ends; cloud implementations translate a deadline into
// ErrJobTimeout.
type Backend interface {
	Name() string
	Provider() string
	Capabilities() Capabilities
	Run(ctx context.Context, c *circuit.Circuit, shots int) (*result.Result, error)
}

// checkRun rejects work a backend cannot execute before anything is
// submitted.
func checkRun(b Backend, c *circuit.Circuit, shots int) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid circuit: %w", err)
	}
	caps := b.Capabilities()
	if c.NumQubits > caps.MaxQubits {
		return fmt.Errorf("%s supports %d qubits, circuit needs %d", b.Name(), caps.MaxQubits, c.NumQubits)
	}
	if shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", shots)
	}
	if caps.MaxShots > 0 && shots > caps.MaxShots {
		return fmt.Errorf("%s allows at most %d shots, got %d", b.Name(), caps.MaxShots, shots)
	}
	if len(c.Measurements) == 0 {
		return fmt.Errorf("circuit has no measurements")
	}
	return nil
}
