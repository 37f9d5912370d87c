package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/store"
)

var (
	historyLimit int
	historyKeep  int
)

// historyCmd browses the local run database
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded runs",
	Long: `Every run lands in a local SQLite database, so verdicts can be compared
across oracles, backends and sessions.

Subcommands:
  list   - List recent runs
  show   - Replay one run's histogram
  stats  - Aggregate accuracy statistics
  prune  - Trim old runs`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Replay one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate accuracy statistics",
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent runs",
	RunE:  runHistoryPrune,
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to list (0 for all)")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 50, "Runs to keep")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyStatsCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Try: qtutor run")
		return nil
	}

	tbl := ui.NewTable("Run history", "ID", "WHEN", "BACKEND", "ORACLE", "VERDICT", "OK", "SHOTS")
	for _, r := range runs {
		ok := "yes"
		if !r.Correct {
			ok = "NO"
		}
		tbl.AddRow(
			shortID(r.ID),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Backend,
			r.Oracle,
			r.Verdict,
			ok,
			strconv.Itoa(r.Shots),
		)
	}
	fmt.Print(tbl.View(styles))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := db.GetRun(args[0])
	if errors.Is(err, store.ErrRunNotFound) {
		r, err = findByPrefix(db, args[0])
	}
	if err != nil {
		return err
	}

	fmt.Printf("Run %s on %s at %s\n", r.ID, r.Backend, r.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Oracle: %s  Verdict: %s  Took: %s\n\n", r.Oracle, r.Verdict, r.Duration.Round(time.Millisecond))
	fmt.Print(ui.Histogram{Counts: r.Counts}.View(styles))
	return nil
}

// findByPrefix resolves the short IDs the listing prints.
func findByPrefix(db *store.Store, prefix string) (*store.Run, error) {
	runs, err := db.ListRuns(0)
	if err != nil {
		return nil, err
	}
	var match *store.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			if match != nil {
				return nil, fmt.Errorf("run id %q is ambiguous", prefix)
			}
			match = r
		}
	}
	if match == nil {
		return nil, store.ErrRunNotFound
	}
	return match, nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := db.Stats()
	if err != nil {
		return err
	}
	if st.TotalRuns == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("Runs:     %d\n", st.TotalRuns)
	fmt.Printf("Correct:  %d (%.1f%%)\n", st.Correct, 100*float64(st.Correct)/float64(st.TotalRuns))
	fmt.Printf("Constant: %d\n", st.Constant)
	fmt.Printf("Balanced: %d\n", st.Balanced)
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	db, err := openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := db.Prune(historyKeep)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d run(s), kept the most recent %d.\n", deleted, historyKeep)
	return nil
}
