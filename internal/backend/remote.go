package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultHTTPTimeout  = 30 * time.Second
)

// RemoteConfig configures the cloud client. BaseURL and Token are
// required; the rest defaults sensibly.
type RemoteConfig struct {
	BaseURL      string
	Token        string
	Device       string
	MaxQubits    int // 0 means the provider default of 5
	MaxShots     int // 0 means the provider default of 8192
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	Logger       *zap.Logger
}

// Remote submits circuits to a hosted device over its REST API and polls
// until the job reaches a terminal state. Real devices sit behind a
// shared queue, so a Run can spend most of its life waiting; callers
// bound that wait with the context, and a missed deadline surfaces as
// ErrJobTimeout.
type Remote struct {
	cfg    RemoteConfig
	client *http.Client
	logger *zap.Logger
}

// NewRemote builds the cloud client, or ErrNotConfigured when the URL or
// token is missing.
func NewRemote(cfg RemoteConfig) (*Remote, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, ErrNotConfigured
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Device == "" {
		cfg.Device = "cloud-device"
	}
	if cfg.MaxQubits == 0 {
		cfg.MaxQubits = 5
	}
	if cfg.MaxShots == 0 {
		cfg.MaxShots = 8192
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		logger: logger,
	}, nil
}

func (r *Remote) Name() string     { return r.cfg.Device }
func (r *Remote) Provider() string { return "cloud" }

func (r *Remote) Capabilities() Capabilities {
	return Capabilities{
		MaxQubits: r.cfg.MaxQubits,
		MaxShots:  r.cfg.MaxShots,
		Simulator: false,
	}
}

// Run submits the circuit, polls until it completes, and fetches counts.
// A context deadline that expires while the job is still queued or
// running yields ErrJobTimeout; the client then tries to cancel the
// abandoned job so it does not burn device time.
func (r *Remote) Run(ctx context.Context, c *circuit.Circuit, shots int) (*result.Result, error) {
	if err := checkRun(r, c, shots); err != nil {
		return nil, err
	}
	start := time.Now()

	jobID, err := r.Submit(ctx, c, shots)
	if err != nil {
		return nil, err
	}
	r.logger.Info("job submitted",
		zap.String("job_id", jobID),
		zap.String("device", r.cfg.Device),
		zap.Int("shots", shots))

	status, err := r.await(ctx, jobID)
	if err != nil {
		return nil, err
	}
	switch status.Status {
	case StatusFailed:
		return nil, fmt.Errorf("job %s: %s: %w", jobID, status.Error, ErrJobFailed)
	case StatusCancelled:
		return nil, fmt.Errorf("job %s: %w", jobID, ErrJobCancelled)
	}

	counts, err := r.Results(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &result.Result{
		JobID:    jobID,
		Backend:  r.cfg.Device,
		Shots:    shots,
		Counts:   counts,
		Duration: time.Since(start),
	}, nil
}

// await polls the job until it is terminal or the context ends.
func (r *Remote) await(ctx context.Context, jobID string) (*JobStatus, error) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.cancelAbandoned(jobID)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("job %s on %s: %w", jobID, r.cfg.Device, ErrJobTimeout)
			}
			return nil, ctx.Err()
		case <-ticker.C:
			status, err := r.Status(ctx, jobID)
			if err != nil {
				// A deadline can land mid-request; report it as the
				// timeout it is rather than a transport error.
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
					r.cancelAbandoned(jobID)
					return nil, fmt.Errorf("job %s on %s: %w", jobID, r.cfg.Device, ErrJobTimeout)
				}
				return nil, err
			}
			r.logger.Debug("job polled",
				zap.String("job_id", jobID),
				zap.String("status", string(status.Status)),
				zap.Int("position", status.Position))
			if status.Status.Terminal() {
				return status, nil
			}
		}
	}
}

// cancelAbandoned best-effort cancels a job the caller gave up on, on a
// short fresh context since the caller's is already done.
func (r *Remote) cancelAbandoned(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Cancel(ctx, jobID); err != nil {
		r.logger.Warn("could not cancel abandoned job",
			zap.String("job_id", jobID), zap.Error(err))
	}
}

type submitRequest struct {
	QASM   string `json:"qasm"`
	Shots  int    `json:"shots"`
	Device string `json:"device"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type resultsResponse struct {
	Counts result.Counts `json:"counts"`
}

// Submit sends the circuit as OpenQASM and returns the job ID.
func (r *Remote) Submit(ctx context.Context, c *circuit.Circuit, shots int) (string, error) {
	req := submitRequest{QASM: c.QASM(), Shots: shots, Device: r.cfg.Device}
	var resp submitResponse
	if err := r.doJSON(ctx, http.MethodPost, "/jobs", req, &resp); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("submit: backend returned no job id")
	}
	return resp.ID, nil
}

// Status fetches the current lifecycle state of a job.
func (r *Remote) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	var status JobStatus
	if err := r.doJSON(ctx, http.MethodGet, "/jobs/"+jobID, nil, &status); err != nil {
		return nil, fmt.Errorf("status of job %s: %w", jobID, err)
	}
	return &status, nil
}

// Results fetches the measured counts of a completed job.
func (r *Remote) Results(ctx context.Context, jobID string) (result.Counts, error) {
	var resp resultsResponse
	if err := r.doJSON(ctx, http.MethodGet, "/jobs/"+jobID+"/results", nil, &resp); err != nil {
		return nil, fmt.Errorf("results of job %s: %w", jobID, err)
	}
	return resp.Counts, nil
}

// Cancel asks the backend to stop a job.
func (r *Remote) Cancel(ctx context.Context, jobID string) error {
	if err := r.doJSON(ctx, http.MethodPost, "/jobs/"+jobID+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("cancel job %s: %w", jobID, err)
	}
	return nil
}

// doJSON performs one authenticated request with JSON in and out.
func (r *Remote) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
