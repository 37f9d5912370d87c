// Package sim is a dense state-vector simulator for the gate set the
// walkthrough uses. It exists so the tutorial runs offline with exact
// amplitudes; real devices sit behind the backend package instead.
package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
)

// MaxQubits caps the register at 2^26 amplitudes, one GiB of state.
const MaxQubits = 26

// State is a full state vector over n qubits. Amplitude index bit q is
// the value of qubit q.
type State struct {
	n    int
	amps []complex128
}

// NewState prepares |0...0>.
func NewState(n int) (*State, error) {
	if n < 1 || n > MaxQubits {
		return nil, fmt.Errorf("simulator supports 1 to %d qubits, got %d", MaxQubits, n)
	}
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &State{n: n, amps: amps}, nil
}

// NumQubits returns the register size.
func (s *State) NumQubits() int { return s.n }

// Amplitude returns the amplitude of basis state i.
func (s *State) Amplitude(i int) complex128 { return s.amps[i] }

// ApplyH applies a Hadamard on qubit q.
func (s *State) ApplyH(q int) {
	factor := complex(1/math.Sqrt2, 0)
	bit := 1 << uint(q)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			a, b := s.amps[i], s.amps[j]
			s.amps[i] = factor * (a + b)
			s.amps[j] = factor * (a - b)
		}
	}
}

// ApplyX applies a NOT on qubit q.
func (s *State) ApplyX(q int) {
	bit := 1 << uint(q)
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// ApplyZ flips the sign of every basis state with qubit q set.
func (s *State) ApplyZ(q int) {
	bit := 1 << uint(q)
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] = -s.amps[i]
		}
	}
}

// ApplyCX applies a controlled NOT on the target where the control is set.
func (s *State) ApplyCX(control, target int) {
	cbit := 1 << uint(control)
	tbit := 1 << uint(target)
	for i := range s.amps {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// Apply dispatches one gate. Barriers are a no-op.
func (s *State) Apply(g circuit.Gate) error {
	switch g.Name {
	case circuit.GateH:
		s.ApplyH(g.Qubits[0])
	case circuit.GateX:
		s.ApplyX(g.Qubits[0])
	case circuit.GateZ:
		s.ApplyZ(g.Qubits[0])
	case circuit.GateCX:
		s.ApplyCX(g.Qubits[0], g.Qubits[1])
	case circuit.GateBarrier:
	default:
		return fmt.Errorf("simulator cannot apply gate %q", g.Name)
	}
	return nil
}

// Probabilities returns |amplitude|^2 per basis state.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amps))
	for i, a := range s.amps {
		m := cmplx.Abs(a)
		probs[i] = m * m
	}
	return probs
}
