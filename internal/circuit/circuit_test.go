package circuit

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderAppendsInOrder(t *testing.T) {
	c := New(3, 2)
	c.X(2).H(0).CX(0, 2).Barrier().Measure(0, 0).Measure(1, 1)

	require.Len(t, c.Gates, 4)
	assert.Equal(t, Gate{Name: GateX, Qubits: []int{2}}, c.Gates[0])
	assert.Equal(t, Gate{Name: GateH, Qubits: []int{0}}, c.Gates[1])
	assert.Equal(t, Gate{Name: GateCX, Qubits: []int{0, 2}}, c.Gates[2])
	assert.Equal(t, Gate{Name: GateBarrier}, c.Gates[3])
	assert.Equal(t, []Measurement{{0, 0}, {1, 1}}, c.Measurements)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Circuit
		wantErr string
	}{
		{
			name: "valid circuit",
			build: func() *Circuit {
				return New(2, 2).H(0).CX(0, 1).Measure(0, 0).Measure(1, 1)
			},
		},
		{
			name:    "no qubits",
			build:   func() *Circuit { return New(0, 0) },
			wantErr: "at least one qubit",
		},
		{
			name:    "qubit out of range",
			build:   func() *Circuit { return New(2, 0).H(2) },
			wantErr: "out of range",
		},
		{
			name:    "cx on same qubit",
			build:   func() *Circuit { return New(2, 0).CX(1, 1) },
			wantErr: "control and target",
		},
		{
			name:    "measurement clbit out of range",
			build:   func() *Circuit { return New(2, 1).Measure(1, 1) },
			wantErr: "clbit 1 out of range",
		},
		{
			name: "unsupported gate",
			build: func() *Circuit {
				c := New(1, 0)
				c.Gates = append(c.Gates, Gate{Name: "ry", Qubits: []int{0}})
				return c
			},
			wantErr: "unsupported gate",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCountOpsSkipsBarriers(t *testing.T) {
	c := New(3, 0).H(0).H(1).Barrier().X(2).CX(0, 2)
	assert.Equal(t, map[GateName]int{GateH: 2, GateX: 1, GateCX: 1}, c.CountOps())
}

func TestDepth(t *testing.T) {
	t.Run("parallel gates share a layer", func(t *testing.T) {
		c := New(3, 0).H(0).H(1).H(2)
		assert.Equal(t, 1, c.Depth())
	})
	t.Run("cx only blocks its endpoints", func(t *testing.T) {
		c := New(3, 0).H(0).CX(0, 2).H(1)
		// h q1 packs into the first layer alongside h q0.
		assert.Equal(t, 2, c.Depth())
	})
	t.Run("barrier forces a new layer", func(t *testing.T) {
		c := New(2, 0).H(0).Barrier().H(1)
		assert.Equal(t, 2, c.Depth())
	})
	t.Run("empty circuit", func(t *testing.T) {
		assert.Equal(t, 0, New(2, 0).Depth())
	})
}

func TestMeasuredQubitsOrderedByClbit(t *testing.T) {
	c := New(3, 3).Measure(2, 0).Measure(0, 2).Measure(1, 1)
	assert.Equal(t, []int{2, 1, 0}, c.MeasuredQubits())
}

func TestQASMOutput(t *testing.T) {
	c := New(2, 1).X(1).H(0).CX(0, 1).Barrier().Measure(0, 0)
	want := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[1];
x q[1];
h q[0];
cx q[0],q[1];
barrier q;
measure q[0] -> c[0];
`
	assert.Equal(t, want, c.QASM())
}

func TestParseQASMRoundTrip(t *testing.T) {
	orig := New(4, 3)
	orig.X(3)
	for q := 0; q < 4; q++ {
		orig.H(q)
	}
	orig.Barrier().CX(0, 3).CX(2, 3).Barrier()
	for q := 0; q < 3; q++ {
		orig.H(q)
	}
	for q := 0; q < 3; q++ {
		orig.Measure(q, q)
	}

	parsed, err := ParseQASM(orig.QASM())
	require.NoError(t, err)
	if diff := cmp.Diff(orig, parsed); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQASM(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		check   func(t *testing.T, c *Circuit)
		wantErr string
	}{
		{
			name: "comments and blank lines",
			src: `OPENQASM 2.0;
// Deutsch-Jozsa, constant oracle
include "qelib1.inc";

qreg q[2];
creg c[1];
h q[0]; // spread the input
measure q[0] -> c[0];
`,
			check: func(t *testing.T, c *Circuit) {
				assert.Equal(t, 2, c.NumQubits)
				assert.Equal(t, 1, c.NumClbits)
				require.Len(t, c.Gates, 1)
				assert.Equal(t, GateH, c.Gates[0].Name)
			},
		},
		{
			name: "whitespace around cx operands",
			src:  "qreg q[2];\ncx q[0] , q[1];\n",
			check: func(t *testing.T, c *Circuit) {
				require.Len(t, c.Gates, 1)
				assert.Equal(t, []int{0, 1}, c.Gates[0].Qubits)
			},
		},
		{
			name:    "missing qreg",
			src:     "OPENQASM 2.0;\nh q[0];\n",
			wantErr: "no qreg",
		},
		{
			name:    "unsupported version",
			src:     "OPENQASM 3.0;\nqreg q[1];\n",
			wantErr: "unsupported QASM version",
		},
		{
			name:    "unsupported gate names the line",
			src:     "qreg q[2];\nry q[0];\n",
			wantErr: `line 2: unsupported gate "ry"`,
		},
		{
			name:    "unsupported two-qubit gate",
			src:     "qreg q[2];\ncz q[0],q[1];\n",
			wantErr: `unsupported two-qubit gate "cz"`,
		},
		{
			name:    "garbage line",
			src:     "qreg q[1];\nif (c==1) x q[0];\n",
			wantErr: "cannot parse",
		},
		{
			name:    "gate out of register range",
			src:     "qreg q[2];\nh q[5];\n",
			wantErr: "out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseQASM(tt.src)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestDraw(t *testing.T) {
	c := New(3, 2).H(0).H(1).X(2).CX(0, 2).Measure(0, 0).Measure(1, 1)
	got := c.Draw()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], "q0: "))
	assert.Contains(t, lines[0], "[H]")
	assert.Contains(t, lines[0], "●")
	assert.Contains(t, lines[0], "[M]")
	// q1 sits inside the cx span, so it carries the connector.
	assert.Contains(t, lines[1], "│")
	assert.Contains(t, lines[2], "[X]")

	// All rows render to the same width.
	w := len([]rune(lines[0]))
	for _, line := range lines[1:] {
		assert.Equal(t, w, len([]rune(line)))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := New(2, 2).H(0).CX(0, 1).Measure(0, 0)
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Gates[1].Qubits[0] = 1
	cp.X(1)
	assert.Equal(t, 0, orig.Gates[1].Qubits[0])
	assert.Len(t, orig.Gates, 2)
}
