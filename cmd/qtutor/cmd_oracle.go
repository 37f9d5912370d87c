package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/oracle"
)

// Truth tables past this width stop fitting on a screen.
const maxTruthTableInputs = 5

// oracleCmd inspects an oracle before it disappears into the circuit
var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Inspect an oracle's truth table and gate decomposition",
	Long: `Shows what the chosen oracle computes: its full truth table, the gates
that implement it, and the number of queries a classical worst-case
adversary would need.

Inside the circuit the oracle is a black box. This command is the
cheat sheet for checking the algorithm's answer afterwards.

Examples:
  qtutor oracle
  qtutor oracle --oracle constant --output 1
  qtutor oracle --oracle balanced --mask 110 --inputs 3`,
	RunE: runOracleInspect,
}

func init() {
	addOracleFlags(oracleCmd)
	rootCmd.AddCommand(oracleCmd)
}

func runOracleInspect(cmd *cobra.Command, args []string) error {
	o, err := buildOracle(newRng())
	if err != nil {
		return err
	}

	fmt.Printf("Oracle: %s over %d input(s)\n", o, o.Inputs)
	fmt.Printf("Classical worst case: %d queries\n", oracle.WorstCaseQueries(o.Inputs))
	if o.Kind == oracle.Balanced {
		fmt.Printf("Measured register will spell the mask: %s\n", o.MaskBits())
	}
	fmt.Println()

	if o.Inputs <= maxTruthTableInputs {
		tbl := ui.NewTable("Truth table", "x", "f(x)")
		for x := uint64(0); x < 1<<uint(o.Inputs); x++ {
			tbl.AddRow(fmt.Sprintf("%0*b", o.Inputs, x), strconv.Itoa(o.Evaluate(x)))
		}
		fmt.Print(tbl.View(styles))
	} else {
		fmt.Printf("Truth table omitted (%d rows)\n", uint64(1)<<uint(o.Inputs))
	}
	fmt.Println()

	gates := o.Gates()
	if len(gates) == 0 {
		fmt.Println("Gate decomposition: none (f never flips the ancilla)")
	} else {
		fmt.Println("Gate decomposition:")
		for _, g := range gates {
			switch len(g.Qubits) {
			case 1:
				fmt.Printf("  %s q[%d]\n", g.Name, g.Qubits[0])
			case 2:
				fmt.Printf("  %s q[%d], q[%d]\n", g.Name, g.Qubits[0], g.Qubits[1])
			}
		}
	}

	c := o.Circuit()
	fmt.Printf("\nFull circuit: %d qubits, %d gates, depth %d\n", c.NumQubits, len(c.Gates), c.Depth())
	return nil
}
