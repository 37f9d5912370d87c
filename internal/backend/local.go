package backend

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
	"github.com/strikereaper/qiskit-tutorial/internal/sim"
)

// SimulatorConfig configures the local backend. The zero value works:
// time-seeded sampling under the default name.
type SimulatorConfig struct {
	Name   string
	Seed   int64 // 0 means time-seeded
	Logger *zap.Logger
}

// Simulator runs circuits on the in-process state-vector engine. It is
// the default backend, always available and noise-free.
type Simulator struct {
	name   string
	logger *zap.Logger

	mu  sync.Mutex // guards rng, which is not safe for concurrent draws
	rng *rand.Rand
}

// NewSimulator builds the local backend.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	name := cfg.Name
	if name == "" {
		name = "statevector"
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		name:   name,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Name() string     { return s.name }
func (s *Simulator) Provider() string { return "local" }

func (s *Simulator) Capabilities() Capabilities {
	return Capabilities{
		MaxQubits: sim.MaxQubits,
		MaxShots:  1 << 20,
		Simulator: true,
	}
}

// Run simulates the circuit and samples counts. The context is honored
// between the cheap validation step and the simulation itself; a local
// run is fast enough that it is not interrupted mid-flight.
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit, shots int) (*result.Result, error) {
	if err := checkRun(s, c, shots); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	start := time.Now()
	s.logger.Debug("simulating circuit",
		zap.String("job_id", jobID),
		zap.Int("qubits", c.NumQubits),
		zap.Int("shots", shots))

	s.mu.Lock()
	counts, err := sim.Run(c, shots, s.rng)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return &result.Result{
		JobID:    jobID,
		Backend:  s.name,
		Shots:    shots,
		Counts:   counts,
		Duration: time.Since(start),
	}, nil
}
