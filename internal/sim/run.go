package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

// RunState validates the circuit and applies its gates to a fresh
// register, returning the final state vector. Measurements are left to
// the caller, so the same state can be sampled or inspected exactly.
func RunState(c *circuit.Circuit) (*State, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid circuit: %w", err)
	}
	s, err := NewState(c.NumQubits)
	if err != nil {
		return nil, err
	}
	for _, g := range c.Gates {
		if err := s.Apply(g); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Run simulates the circuit and samples its measurements shots times.
// A nil rng means a time-seeded source; pass a seeded one for
// reproducible counts.
func Run(c *circuit.Circuit, shots int, rng *rand.Rand) (result.Counts, error) {
	if shots < 1 {
		return nil, fmt.Errorf("shots must be positive, got %d", shots)
	}
	if len(c.Measurements) == 0 {
		return nil, fmt.Errorf("circuit has no measurements to sample")
	}
	s, err := RunState(c)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Sample(s, c, shots, rng), nil
}

// Sample draws shots outcomes from the state and projects each onto the
// circuit's classical register.
func Sample(s *State, c *circuit.Circuit, shots int, rng *rand.Rand) result.Counts {
	probs := s.Probabilities()
	cumulative := make([]float64, len(probs))
	total := 0.0
	for i, p := range probs {
		total += p
		cumulative[i] = total
	}

	counts := make(result.Counts)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64() * total
		idx := sort.SearchFloat64s(cumulative, r)
		if idx == len(cumulative) {
			idx--
		}
		counts[bitstring(idx, c)]++
	}
	return counts
}

// Distribution computes the exact outcome distribution over the classical
// register, marginalizing unmeasured qubits. This is what infinite shots
// would converge to.
func Distribution(c *circuit.Circuit) (map[string]float64, error) {
	if len(c.Measurements) == 0 {
		return nil, fmt.Errorf("circuit has no measurements")
	}
	s, err := RunState(c)
	if err != nil {
		return nil, err
	}
	dist := make(map[string]float64)
	for i, p := range s.Probabilities() {
		if p == 0 {
			continue
		}
		dist[bitstring(i, c)] += p
	}
	return dist, nil
}

// bitstring projects basis state idx onto the classical register:
// character cl is the bit of the qubit measured into c[cl].
func bitstring(idx int, c *circuit.Circuit) string {
	buf := make([]byte, c.NumClbits)
	for i := range buf {
		buf[i] = '0'
	}
	for _, m := range c.Measurements {
		if idx&(1<<uint(m.Qubit)) != 0 {
			buf[m.Clbit] = '1'
		}
	}
	return string(buf)
}
