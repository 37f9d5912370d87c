// Package oracle builds the hidden functions the Deutsch-Jozsa walkthrough
// distinguishes. A constant oracle returns the same bit for every input; a
// balanced oracle returns each bit for exactly half the inputs, realized
// here as the parity of the input against a nonzero mask.
package oracle

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
)

// Kind labels the two oracle families the algorithm promises to tell apart.
type Kind string

const (
	Constant Kind = "constant"
	Balanced Kind = "balanced"
)

// MaxInputs bounds the input register so masks and classical query counts
// stay inside uint64.
const MaxInputs = 32

// ParseKind maps a user-facing string onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Constant, Balanced:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown oracle kind %q (want %q or %q)", s, Constant, Balanced)
	}
}

// Oracle is a concrete hidden function f over Inputs bits. For constant
// oracles f(x) = Output; for balanced oracles f(x) is the parity of
// x AND Mask, with Mask nonzero so both outputs occur equally often.
type Oracle struct {
	Inputs int
	Kind   Kind
	Output int
	Mask   uint64
}

// NewConstant builds the oracle with f(x) = output for every x.
func NewConstant(inputs, output int) (*Oracle, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	if output != 0 && output != 1 {
		return nil, fmt.Errorf("constant oracle output must be 0 or 1, got %d", output)
	}
	return &Oracle{Inputs: inputs, Kind: Constant, Output: output}, nil
}

// NewBalanced builds the parity oracle for the given mask. The mask must
// be nonzero and fit in the input register; a zero mask would make f
// constant and break the promise.
func NewBalanced(inputs int, mask uint64) (*Oracle, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	if mask == 0 {
		return nil, fmt.Errorf("balanced oracle mask must be nonzero")
	}
	if mask >= 1<<uint(inputs) {
		return nil, fmt.Errorf("mask %#b does not fit in %d inputs", mask, inputs)
	}
	return &Oracle{Inputs: inputs, Kind: Balanced, Mask: mask}, nil
}

// Random draws a fair coin for the kind, then uniform parameters: the
// constant output bit, or a nonzero mask over the inputs.
func Random(rng *rand.Rand, inputs int) (*Oracle, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	if rng.Intn(2) == 0 {
		return NewConstant(inputs, rng.Intn(2))
	}
	return RandomBalanced(rng, inputs)
}

// RandomBalanced draws a uniform nonzero mask over the inputs. The
// width is checked before the draw; rand.Int63n panics on a
// non-positive bound, so the guard must come first.
func RandomBalanced(rng *rand.Rand, inputs int) (*Oracle, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	mask := uint64(1 + rng.Int63n(int64(1)<<uint(inputs)-1))
	return NewBalanced(inputs, mask)
}

func checkInputs(inputs int) error {
	if inputs < 1 || inputs > MaxInputs {
		return fmt.Errorf("oracle inputs must be in [1,%d], got %d", MaxInputs, inputs)
	}
	return nil
}

// Evaluate computes f(x) classically. Inputs beyond the register width
// are ignored.
func (o *Oracle) Evaluate(x uint64) int {
	if o.Kind == Constant {
		return o.Output
	}
	return bits.OnesCount64(x&o.Mask) % 2
}

// Gates realizes the oracle as circuit gates in the standard layout:
// inputs on q[0..Inputs-1], ancilla on q[Inputs]. A constant-1 oracle is
// a single X on the ancilla, a constant-0 oracle is the identity, and a
// balanced oracle is one cx per mask bit.
func (o *Oracle) Gates() []circuit.Gate {
	ancilla := o.Inputs
	if o.Kind == Constant {
		if o.Output == 1 {
			return []circuit.Gate{{Name: circuit.GateX, Qubits: []int{ancilla}}}
		}
		return nil
	}
	var gates []circuit.Gate
	for q := 0; q < o.Inputs; q++ {
		if o.Mask&(1<<uint(q)) != 0 {
			gates = append(gates, circuit.Gate{Name: circuit.GateCX, Qubits: []int{q, ancilla}})
		}
	}
	return gates
}

// Circuit builds the full Deutsch-Jozsa circuit around this oracle:
// ancilla into |1>, Hadamards everywhere, the oracle, Hadamards on the
// inputs again, then measurement of the input register.
func (o *Oracle) Circuit() *circuit.Circuit {
	n := o.Inputs
	c := circuit.New(n+1, n)
	c.X(n)
	for q := 0; q <= n; q++ {
		c.H(q)
	}
	c.Barrier()
	c.Gates = append(c.Gates, o.Gates()...)
	c.Barrier()
	for q := 0; q < n; q++ {
		c.H(q)
	}
	for q := 0; q < n; q++ {
		c.Measure(q, q)
	}
	return c
}

// MaskBits renders the balanced mask in classical-bit order, matching
// measurement bitstrings: character i is the mask bit for input i.
func (o *Oracle) MaskBits() string {
	buf := make([]byte, o.Inputs)
	for q := 0; q < o.Inputs; q++ {
		if o.Mask&(1<<uint(q)) != 0 {
			buf[q] = '1'
		} else {
			buf[q] = '0'
		}
	}
	return string(buf)
}

func (o *Oracle) String() string {
	if o.Kind == Constant {
		return fmt.Sprintf("constant (f(x) = %d)", o.Output)
	}
	return fmt.Sprintf("balanced (mask %s)", o.MaskBits())
}
