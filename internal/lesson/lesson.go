// Package lesson is the guided Deutsch-Jozsa walkthrough: embedded
// markdown sections, each optionally paired with a runnable demo.
package lesson

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/strikereaper/qiskit-tutorial/internal/backend"
	"github.com/strikereaper/qiskit-tutorial/internal/oracle"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

// Env is what step demos run against. Local is always set; Remote stays
// nil until cloud credentials are configured.
type Env struct {
	Local  backend.Backend
	Remote backend.Backend
	Inputs int
	Shots  int
	Rng    *rand.Rand
}

// StepResult is a demo's output: console text, plus counts when the
// demo executed a circuit and the caller should draw a histogram.
type StepResult struct {
	Text   string
	Result *result.Result
}

// ActionFunc runs a step's demo.
type ActionFunc func(ctx context.Context, env *Env) (*StepResult, error)

// Step is one section of the walkthrough.
type Step struct {
	Slug        string
	Title       string
	Markdown    string
	Action      ActionFunc
	ActionLabel string
}

// Steps assembles the walkthrough in teaching order.
func Steps() ([]Step, error) {
	defs := []struct {
		slug, file, title, label string
		action                   ActionFunc
	}{
		{slug: "intro", file: "01-intro.md", title: "The Problem"},
		{slug: "classical", file: "02-classical.md", title: "The Classical Cost",
			label: "classify a random oracle classically", action: classicalDemo},
		{slug: "circuit", file: "03-circuit.md", title: "The Quantum Circuit",
			label: "build and draw the circuit", action: circuitDemo},
		{slug: "oracle", file: "04-oracle.md", title: "Building Oracles",
			label: "realize both oracle kinds as gates", action: oracleDemo},
		{slug: "simulate", file: "05-simulate.md", title: "Run It",
			label: "run on the simulator", action: simulateDemo},
		{slug: "hardware", file: "06-hardware.md", title: "Real Hardware",
			label: "run on the configured device", action: hardwareDemo},
		{slug: "recap", file: "07-recap.md", title: "What Just Happened"},
	}

	steps := make([]Step, 0, len(defs))
	for _, d := range defs {
		md, err := loadSection(d.file)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{
			Slug:        d.slug,
			Title:       d.title,
			Markdown:    md,
			Action:      d.action,
			ActionLabel: d.label,
		})
	}
	return steps, nil
}

func (e *Env) inputs() int {
	if e.Inputs < 1 {
		return 3
	}
	return e.Inputs
}

func (e *Env) shots() int {
	if e.Shots < 1 {
		return 1024
	}
	return e.Shots
}

// classicalDemo draws a random oracle and classifies it the slow way,
// counting queries against the worst case.
func classicalDemo(_ context.Context, env *Env) (*StepResult, error) {
	n := env.inputs()
	o, err := oracle.Random(env.Rng, n)
	if err != nil {
		return nil, err
	}
	kind, queries := oracle.ClassifyClassically(o)

	var b strings.Builder
	fmt.Fprintf(&b, "Hidden oracle: %s\n\n", o)
	fmt.Fprintf(&b, "Querying f(x) one input at a time:\n")
	limit := queries
	if limit > 8 {
		limit = 8
	}
	for x := uint64(0); x < limit; x++ {
		fmt.Fprintf(&b, "  f(%0*b) = %d\n", n, x, o.Evaluate(x))
	}
	if queries > limit {
		fmt.Fprintf(&b, "  ... %d more queries ...\n", queries-limit)
	}
	fmt.Fprintf(&b, "\nClassical verdict: %s after %d queries (worst case for %d inputs: %d).\n",
		kind, queries, n, oracle.WorstCaseQueries(n))
	b.WriteString("The quantum circuit will need exactly one.\n")
	return &StepResult{Text: b.String()}, nil
}

// circuitDemo builds the full circuit for a sample balanced oracle and
// draws it.
func circuitDemo(_ context.Context, env *Env) (*StepResult, error) {
	n := env.inputs()
	o, err := oracle.NewBalanced(n, 1|1<<uint(n-1))
	if err != nil {
		return nil, err
	}
	c := o.Circuit()

	var b strings.Builder
	fmt.Fprintf(&b, "Circuit for a %s oracle on %d inputs (q%d is the ancilla):\n\n", o, n, n)
	b.WriteString(c.Draw())
	ops := c.CountOps()
	fmt.Fprintf(&b, "\n%d gates, depth %d: %d h, %d x, %d cx.\n",
		len(c.Gates)-2, c.Depth(), ops["h"], ops["x"], ops["cx"])
	return &StepResult{Text: b.String()}, nil
}

// oracleDemo realizes one oracle of each kind and shows the gates.
func oracleDemo(_ context.Context, env *Env) (*StepResult, error) {
	n := env.inputs()
	var b strings.Builder
	for _, build := range []func() (*oracle.Oracle, error){
		func() (*oracle.Oracle, error) { return oracle.NewConstant(n, 1) },
		func() (*oracle.Oracle, error) { return oracle.NewBalanced(n, (1<<uint(n))-1) },
	} {
		o, err := build()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%s:\n", o)
		gates := o.Gates()
		if len(gates) == 0 {
			b.WriteString("  (no gates: the ancilla is left alone)\n")
		}
		for _, g := range gates {
			if len(g.Qubits) == 2 {
				fmt.Fprintf(&b, "  %s q[%d] -> q[%d]\n", g.Name, g.Qubits[0], g.Qubits[1])
			} else {
				fmt.Fprintf(&b, "  %s q[%d]\n", g.Name, g.Qubits[0])
			}
		}
		b.WriteString("\n")
	}
	return &StepResult{Text: b.String()}, nil
}

// simulateDemo runs a random oracle on the local backend and reads the
// verdict off the counts.
func simulateDemo(ctx context.Context, env *Env) (*StepResult, error) {
	o, err := oracle.Random(env.Rng, env.inputs())
	if err != nil {
		return nil, err
	}
	res, err := env.Local.Run(ctx, o.Circuit(), env.shots())
	if err != nil {
		return nil, err
	}
	return &StepResult{
		Text:   verdictText(o, res),
		Result: res,
	}, nil
}

// hardwareDemo runs against the configured cloud device, or explains
// what is missing when none is set up.
func hardwareDemo(ctx context.Context, env *Env) (*StepResult, error) {
	if env.Remote == nil {
		return &StepResult{Text: "No cloud device is configured.\n\n" +
			"Set QTUTOR_API_URL and QTUTOR_API_TOKEN (or the remote section of\n" +
			"the config file) and rerun this step to queue a real job. Until\n" +
			"then, the simulator demo from the previous step behaves identically,\n" +
			"minus the queue and the noise.\n"}, nil
	}
	o, err := oracle.Random(env.Rng, env.inputs())
	if err != nil {
		return nil, err
	}
	res, err := env.Remote.Run(ctx, o.Circuit(), env.shots())
	if err != nil {
		return nil, err
	}
	return &StepResult{
		Text:   verdictText(o, res),
		Result: res,
	}, nil
}

func verdictText(o *oracle.Oracle, res *result.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hidden oracle: %s\n", o)
	fmt.Fprintf(&b, "Ran %d shots on %s (job %s) in %s.\n\n",
		res.Shots, res.Backend, res.JobID, res.Duration.Round(time.Millisecond))
	verdict := res.Counts.Verdict()
	fmt.Fprintf(&b, "P(all zeros) = %.3f, so the verdict is: %s.\n",
		res.Counts.ZeroProbability(), verdict)
	if string(verdict) == string(o.Kind) {
		b.WriteString("The single quantum evaluation got it right.\n")
	} else {
		b.WriteString("Noise pushed the verdict the wrong way; try more shots.\n")
	}
	return b.String()
}
