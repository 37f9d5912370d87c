package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/backend"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

var compareOn []string

// compareCmd races one oracle across several backends
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run one oracle on several backends and compare verdicts",
	Long: `Executes the same Deutsch-Jozsa circuit on every requested backend in
parallel. The ideal simulator puts the whole distribution where the
theory says; running the identical circuit on hardware shows what
queueing and noise do to it.

Examples:
  qtutor compare
  qtutor compare --on statevector --on ibmq-lima --oracle balanced --mask 101`,
	RunE: runCompare,
}

func init() {
	addOracleFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareOn, "on", nil, "Backends to run on (default: all registered)")
	rootCmd.AddCommand(compareCmd)
}

type compareRow struct {
	backend string
	res     *result.Result
	err     error
}

func runCompare(cmd *cobra.Command, args []string) error {
	rng := newRng()
	o, err := buildOracle(rng)
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	names := compareOn
	if len(names) == 0 {
		names = reg.Names()
	}
	targets := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		b, err := reg.Get(name)
		if err != nil {
			return err
		}
		targets = append(targets, b)
	}

	// Use the cloud deadline when any target sits behind a queue.
	deadline := targets[0]
	for _, b := range targets {
		if b.Provider() == "cloud" {
			deadline = b
		}
	}
	ctx, cancel := jobContext(cmd, deadline)
	defer cancel()

	c := o.Circuit()
	fmt.Printf("Comparing %s on %s (%d shots each)\n\n", o, strings.Join(names, ", "), cfg.Shots)

	// One slow backend must not hide the others' results, so failures
	// land in the row instead of aborting the group.
	rows := make([]compareRow, len(targets))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range targets {
		g.Go(func() error {
			res, err := b.Run(gctx, c.Clone(), cfg.Shots)
			mu.Lock()
			rows[i] = compareRow{backend: b.Name(), res: res, err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tbl := ui.NewTable("", "BACKEND", "VERDICT", "P(ALL ZEROS)", "TIME", "NOTE")
	for _, row := range rows {
		if row.err != nil {
			tbl.AddRow(row.backend, "-", "-", "-", row.err.Error())
			continue
		}
		tbl.AddRow(
			row.backend,
			string(row.res.Counts.Verdict()),
			fmt.Sprintf("%.3f", row.res.Counts.ZeroProbability()),
			row.res.Duration.Round(time.Millisecond).String(),
			"job "+shortID(row.res.JobID),
		)
	}
	fmt.Print(tbl.View(styles))
	fmt.Printf("\nGround truth: %s\n", o)
	return nil
}
