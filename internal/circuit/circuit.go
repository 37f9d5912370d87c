// Package circuit models the small gate vocabulary the Deutsch-Jozsa
// walkthrough needs: a quantum register, an ordered gate list, and the
// final measurements. Circuits convert to and from the OpenQASM 2.0
// subset the rest of the tool understands.
package circuit

import (
	"fmt"
	"sort"
)

// GateName identifies a gate in the supported vocabulary.
type GateName string

const (
	GateH       GateName = "h"
	GateX       GateName = "x"
	GateZ       GateName = "z"
	GateCX      GateName = "cx"
	GateBarrier GateName = "barrier"
)

// Gate is a single placed gate. Qubits holds one index for single-qubit
// gates and control-then-target for cx. Barriers carry no qubits and span
// the whole register.
type Gate struct {
	Name   GateName
	Qubits []int
}

// Measurement maps a qubit onto a classical bit.
type Measurement struct {
	Qubit int
	Clbit int
}

// Circuit is an ordered gate program over a fixed-size register.
// The zero value is not usable; construct with New.
type Circuit struct {
	NumQubits    int
	NumClbits    int
	Gates        []Gate
	Measurements []Measurement
}

// New creates an empty circuit with numQubits quantum and numClbits
// classical bits.
func New(numQubits, numClbits int) *Circuit {
	return &Circuit{
		NumQubits: numQubits,
		NumClbits: numClbits,
	}
}

// H appends a Hadamard gate on qubit q.
func (c *Circuit) H(q int) *Circuit { return c.append(GateH, q) }

// X appends a Pauli-X (NOT) gate on qubit q.
func (c *Circuit) X(q int) *Circuit { return c.append(GateX, q) }

// Z appends a Pauli-Z gate on qubit q.
func (c *Circuit) Z(q int) *Circuit { return c.append(GateZ, q) }

// CX appends a controlled-X gate with the given control and target.
func (c *Circuit) CX(control, target int) *Circuit {
	c.Gates = append(c.Gates, Gate{Name: GateCX, Qubits: []int{control, target}})
	return c
}

// Barrier appends a full-width barrier. Barriers only affect drawing and
// QASM output; simulation ignores them.
func (c *Circuit) Barrier() *Circuit {
	c.Gates = append(c.Gates, Gate{Name: GateBarrier})
	return c
}

// Measure appends a measurement of qubit q into classical bit cl.
func (c *Circuit) Measure(q, cl int) *Circuit {
	c.Measurements = append(c.Measurements, Measurement{Qubit: q, Clbit: cl})
	return c
}

func (c *Circuit) append(name GateName, q int) *Circuit {
	c.Gates = append(c.Gates, Gate{Name: name, Qubits: []int{q}})
	return c
}

// Validate checks register bounds and gate arity for the whole program.
func (c *Circuit) Validate() error {
	if c.NumQubits < 1 {
		return fmt.Errorf("circuit needs at least one qubit, got %d", c.NumQubits)
	}
	for i, g := range c.Gates {
		switch g.Name {
		case GateH, GateX, GateZ:
			if len(g.Qubits) != 1 {
				return fmt.Errorf("gate %d (%s): want 1 qubit, got %d", i, g.Name, len(g.Qubits))
			}
		case GateCX:
			if len(g.Qubits) != 2 {
				return fmt.Errorf("gate %d (cx): want 2 qubits, got %d", i, len(g.Qubits))
			}
			if g.Qubits[0] == g.Qubits[1] {
				return fmt.Errorf("gate %d (cx): control and target are both q[%d]", i, g.Qubits[0])
			}
		case GateBarrier:
			if len(g.Qubits) != 0 {
				return fmt.Errorf("gate %d (barrier): barriers span the register, got %d qubits", i, len(g.Qubits))
			}
		default:
			return fmt.Errorf("gate %d: unsupported gate %q", i, g.Name)
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("gate %d (%s): qubit %d out of range [0,%d)", i, g.Name, q, c.NumQubits)
			}
		}
	}
	for i, m := range c.Measurements {
		if m.Qubit < 0 || m.Qubit >= c.NumQubits {
			return fmt.Errorf("measurement %d: qubit %d out of range [0,%d)", i, m.Qubit, c.NumQubits)
		}
		if m.Clbit < 0 || m.Clbit >= c.NumClbits {
			return fmt.Errorf("measurement %d: clbit %d out of range [0,%d)", i, m.Clbit, c.NumClbits)
		}
	}
	return nil
}

// CountOps tallies gates by name, excluding barriers.
func (c *Circuit) CountOps() map[GateName]int {
	ops := make(map[GateName]int)
	for _, g := range c.Gates {
		if g.Name == GateBarrier {
			continue
		}
		ops[g.Name]++
	}
	return ops
}

// Depth is the number of layers when gates are packed greedily left to
// right, the usual circuit-depth metric. Barriers force a new layer.
func (c *Circuit) Depth() int {
	depth := 0
	front := make([]int, c.NumQubits) // per-qubit layer index
	for _, g := range c.Gates {
		if g.Name == GateBarrier {
			for q := range front {
				front[q] = depth
			}
			continue
		}
		layer := 0
		for _, q := range g.Qubits {
			if front[q] > layer {
				layer = front[q]
			}
		}
		layer++
		for _, q := range g.Qubits {
			front[q] = layer
		}
		if layer > depth {
			depth = layer
		}
	}
	return depth
}

// MeasuredQubits returns the measured qubit indices ordered by classical
// bit, which is the order measurement bitstrings are written in.
func (c *Circuit) MeasuredQubits() []int {
	ms := make([]Measurement, len(c.Measurements))
	copy(ms, c.Measurements)
	sort.Slice(ms, func(i, j int) bool { return ms[i].Clbit < ms[j].Clbit })
	qubits := make([]int, len(ms))
	for i, m := range ms {
		qubits[i] = m.Qubit
	}
	return qubits
}

// Clone returns a deep copy.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{
		NumQubits:    c.NumQubits,
		NumClbits:    c.NumClbits,
		Gates:        make([]Gate, len(c.Gates)),
		Measurements: make([]Measurement, len(c.Measurements)),
	}
	copy(out.Measurements, c.Measurements)
	for i, g := range c.Gates {
		qs := make([]int, len(g.Qubits))
		copy(qs, g.Qubits)
		out.Gates[i] = Gate{Name: g.Name, Qubits: qs}
	}
	return out
}
