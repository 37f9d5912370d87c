package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/circuit"
	"github.com/strikereaper/qiskit-tutorial/internal/sim"
	"github.com/strikereaper/qiskit-tutorial/internal/watch"
)

var (
	simWatch    bool
	simDebounce time.Duration
	simExact    bool
)

// simulateCmd samples a hand-written QASM file on the local engine
var simulateCmd = &cobra.Command{
	Use:   "simulate <file.qasm>",
	Short: "Simulate an OpenQASM 2.0 file on the state-vector engine",
	Long: `Parses an OpenQASM 2.0 file (h, x, z, cx, barrier, measure) and samples
it on the local simulator.

--watch keeps the file under observation and re-simulates on every
save, which turns any editor into a live circuit playground.

Examples:
  qtutor simulate dj.qasm
  qtutor simulate dj.qasm --shots 4096 --exact
  qtutor simulate dj.qasm --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simWatch, "watch", false, "Re-simulate whenever the file changes")
	simulateCmd.Flags().DurationVar(&simDebounce, "debounce", 500*time.Millisecond, "Quiet period before a change triggers a re-run")
	simulateCmd.Flags().BoolVar(&simExact, "exact", false, "Print the exact outcome distribution instead of sampling")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path := args[0]

	if err := simulateFile(path); err != nil {
		if !simWatch {
			return err
		}
		// In watch mode a broken circuit is a draft, not a fatal error.
		fmt.Println(styles.Error.Render("Error: " + err.Error()))
	}
	if !simWatch {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	w, err := watch.New(path, simDebounce, func(p string) {
		fmt.Println()
		fmt.Println(styles.Muted.Render(fmt.Sprintf("%s changed at %s", filepath.Base(p), time.Now().Format("15:04:05"))))
		if err := simulateFile(p); err != nil {
			fmt.Println(styles.Error.Render("Error: " + err.Error()))
		}
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Println(styles.Muted.Render("Watching for changes. Ctrl+C to stop."))
	<-sigCh
	return nil
}

func simulateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	c, err := circuit.ParseQASM(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(c.Measurements) == 0 {
		return fmt.Errorf("%s measures nothing; add measure lines to sample it", path)
	}

	if simExact {
		return printDistribution(path, c)
	}

	counts, err := sim.Run(c, cfg.Shots, newRng())
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s: %d qubits, depth %d, %d shots", filepath.Base(path), c.NumQubits, c.Depth(), cfg.Shots)
	fmt.Print(ui.Histogram{Title: title, Counts: counts}.View(styles))
	return nil
}

func printDistribution(path string, c *circuit.Circuit) error {
	dist, err := sim.Distribution(c)
	if err != nil {
		return err
	}

	outcomes := make([]string, 0, len(dist))
	for bits := range dist {
		outcomes = append(outcomes, bits)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		if dist[outcomes[i]] != dist[outcomes[j]] {
			return dist[outcomes[i]] > dist[outcomes[j]]
		}
		return outcomes[i] < outcomes[j]
	})

	tbl := ui.NewTable(filepath.Base(path)+": exact distribution", "OUTCOME", "PROBABILITY")
	for _, bits := range outcomes {
		tbl.AddRow("|"+bits+">", fmt.Sprintf("%.6f", dist[bits]))
	}
	fmt.Print(tbl.View(styles))
	return nil
}
