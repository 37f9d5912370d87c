package circuit

import (
	"fmt"
	"strings"
)

// QASM renders the circuit as OpenQASM 2.0 using the standard qelib1
// gate names. The output round-trips through ParseQASM.
func (c *Circuit) QASM() string {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.NumQubits)
	if c.NumClbits > 0 {
		fmt.Fprintf(&b, "creg c[%d];\n", c.NumClbits)
	}
	for _, g := range c.Gates {
		switch g.Name {
		case GateCX:
			fmt.Fprintf(&b, "cx q[%d],q[%d];\n", g.Qubits[0], g.Qubits[1])
		case GateBarrier:
			b.WriteString("barrier q;\n")
		default:
			fmt.Fprintf(&b, "%s q[%d];\n", g.Name, g.Qubits[0])
		}
	}
	for _, m := range c.Measurements {
		fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", m.Qubit, m.Clbit)
	}
	return b.String()
}
