package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/backend"
	"github.com/strikereaper/qiskit-tutorial/internal/oracle"
	"github.com/strikereaper/qiskit-tutorial/internal/result"
	"github.com/strikereaper/qiskit-tutorial/internal/store"
)

var runSave bool

// runCmd executes the algorithm once against a chosen oracle
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Deutsch-Jozsa algorithm end to end",
	Long: `Builds the Deutsch-Jozsa circuit around the chosen oracle, executes
it, and reads the verdict off the all-zeros outcome.

If every shot lands on the all-zeros string the oracle is constant;
if none do, it is balanced. The classical worst case for n inputs is
2^(n-1)+1 evaluations, so this is the canonical first demonstration
of a quantum speedup.

Examples:
  qtutor run
  qtutor run --oracle balanced --mask 101 --shots 2048
  qtutor run --oracle constant --output 1 --backend ibmq-lima`,
	RunE: runExperiment,
}

func init() {
	addOracleFlags(runCmd)
	runCmd.Flags().BoolVar(&runSave, "save", true, "Record the run in local history")
	rootCmd.AddCommand(runCmd)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	rng := newRng()
	o, err := buildOracle(rng)
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	b, err := resolveBackend(reg)
	if err != nil {
		return err
	}

	c := o.Circuit()
	logger.Info("Submitting circuit",
		zap.String("backend", b.Name()),
		zap.String("oracle", o.String()),
		zap.Int("qubits", c.NumQubits),
		zap.Int("shots", cfg.Shots))

	ctx, cancel := jobContext(cmd, b)
	defer cancel()

	res, err := b.Run(ctx, c, cfg.Shots)
	if err != nil {
		if errors.Is(err, backend.ErrJobTimeout) {
			fmt.Println(styles.Warning.Render("The device queue outlasted the deadline. Retry with a longer --timeout, or fall back to --backend statevector."))
		}
		return fmt.Errorf("run on %s: %w", b.Name(), err)
	}

	printVerdict(o, res)

	if runSave && cfg.History.Enabled {
		if err := recordRun(o, res); err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		}
	}
	return nil
}

// printVerdict renders the histogram and compares the measured verdict
// against the oracle actually hidden in the circuit.
func printVerdict(o *oracle.Oracle, res *result.Result) {
	fmt.Println()
	fmt.Print(ui.Histogram{Title: res.Summary(), Counts: res.Counts}.View(styles))
	fmt.Println()

	verdict := res.Counts.Verdict()
	fmt.Printf("Verdict: %s (P(all zeros) = %.3f)\n", verdict, res.Counts.ZeroProbability())
	if string(verdict) == string(o.Kind) {
		fmt.Println(styles.Success.Render(fmt.Sprintf("✅ Correct: the oracle was %s.", o)))
	} else {
		fmt.Println(styles.Error.Render(fmt.Sprintf("❌ Wrong: the oracle was %s. Noise can flip the call; try more shots.", o)))
	}
}

func recordRun(o *oracle.Oracle, res *result.Result) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	verdict := res.Counts.Verdict()
	return db.SaveRun(&store.Run{
		ID:         res.JobID,
		CreatedAt:  time.Now(),
		Backend:    res.Backend,
		Oracle:     o.String(),
		OracleKind: string(o.Kind),
		Inputs:     o.Inputs,
		Shots:      res.Shots,
		Counts:     res.Counts,
		Verdict:    string(verdict),
		Correct:    string(verdict) == string(o.Kind),
		Duration:   res.Duration,
	})
}
