package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
)

// backendsCmd lists execution targets
var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List execution backends and their limits",
	RunE:  runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	tbl := ui.NewTable("Backends", "NAME", "PROVIDER", "QUBITS", "MAX SHOTS", "KIND")
	for _, b := range reg.All() {
		caps := b.Capabilities()
		kind := "hardware"
		if caps.Simulator {
			kind = "simulator"
		}
		tbl.AddRow(b.Name(), b.Provider(), strconv.Itoa(caps.MaxQubits), strconv.Itoa(caps.MaxShots), kind)
	}
	fmt.Print(tbl.View(styles))
	fmt.Printf("\nDefault: %s\n", cfg.Backend)

	if !cfg.Remote.Configured() {
		fmt.Println(styles.Muted.Render("No cloud device configured. Set QTUTOR_API_URL and QTUTOR_API_TOKEN to add one."))
	}
	return nil
}
