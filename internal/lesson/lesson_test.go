package lesson

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikereaper/qiskit-tutorial/internal/backend"
)

func testEnv() *Env {
	return &Env{
		Local:  backend.NewSimulator(backend.SimulatorConfig{Seed: 11}),
		Inputs: 3,
		Shots:  256,
		Rng:    rand.New(rand.NewSource(11)),
	}
}

func TestStepsLoadInOrder(t *testing.T) {
	steps, err := Steps()
	require.NoError(t, err)
	require.Len(t, steps, 7)

	var slugs []string
	for _, s := range steps {
		slugs = append(slugs, s.Slug)
		assert.NotEmpty(t, s.Title, "step %s needs a title", s.Slug)
		assert.NotEmpty(t, s.Markdown, "step %s needs content", s.Slug)
		assert.True(t, strings.HasPrefix(s.Markdown, "# "),
			"step %s should open with a heading", s.Slug)
		if s.Action != nil {
			assert.NotEmpty(t, s.ActionLabel, "runnable step %s needs a label", s.Slug)
		}
	}
	assert.Equal(t, []string{"intro", "classical", "circuit", "oracle", "simulate", "hardware", "recap"}, slugs)

	// The bookends read only; everything between runs.
	assert.Nil(t, steps[0].Action)
	assert.Nil(t, steps[6].Action)
	for _, s := range steps[1:6] {
		assert.NotNil(t, s.Action, "step %s should have a demo", s.Slug)
	}
}

func TestSections(t *testing.T) {
	sections, err := Sections()
	require.NoError(t, err)
	assert.Len(t, sections, 7)
	assert.Contains(t, sections, "01-intro.md")
	assert.Contains(t, sections["03-circuit.md"], "phase kickback")
}

func TestClassicalDemo(t *testing.T) {
	res, err := classicalDemo(context.Background(), testEnv())
	require.NoError(t, err)
	assert.Nil(t, res.Result)
	assert.Contains(t, res.Text, "Hidden oracle:")
	assert.Contains(t, res.Text, "f(000)")
	assert.Contains(t, res.Text, "worst case for 3 inputs: 5")
}

func TestCircuitDemo(t *testing.T) {
	res, err := circuitDemo(context.Background(), testEnv())
	require.NoError(t, err)
	assert.Contains(t, res.Text, "q0: ")
	assert.Contains(t, res.Text, "q3: ")
	assert.Contains(t, res.Text, "[M]")
	assert.Contains(t, res.Text, "depth")
}

func TestOracleDemo(t *testing.T) {
	res, err := oracleDemo(context.Background(), testEnv())
	require.NoError(t, err)
	assert.Contains(t, res.Text, "constant (f(x) = 1)")
	assert.Contains(t, res.Text, "balanced (mask 111)")
	assert.Contains(t, res.Text, "cx q[0] -> q[3]")
}

func TestSimulateDemo(t *testing.T) {
	res, err := simulateDemo(context.Background(), testEnv())
	require.NoError(t, err)
	require.NotNil(t, res.Result)
	assert.Equal(t, 256, res.Result.Shots)
	assert.Contains(t, res.Text, "verdict is:")
	// Ideal simulation always agrees with the hidden oracle.
	assert.Contains(t, res.Text, "got it right")
}

func TestHardwareDemoWithoutRemote(t *testing.T) {
	res, err := hardwareDemo(context.Background(), testEnv())
	require.NoError(t, err)
	assert.Nil(t, res.Result)
	assert.Contains(t, res.Text, "QTUTOR_API_TOKEN")
}

func TestHardwareDemoWithRemote(t *testing.T) {
	env := testEnv()
	env.Remote = backend.NewSimulator(backend.SimulatorConfig{Name: "fake-device", Seed: 3})

	res, err := hardwareDemo(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, res.Result)
	assert.Equal(t, "fake-device", res.Result.Backend)
}
