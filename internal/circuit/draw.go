package circuit

import (
	"fmt"
	"strings"
)

const cellWidth = 5

// Draw renders the circuit as box-drawing text, one row per qubit.
// Gates are packed greedily into columns the same way Depth counts
// layers, so parallel gates share a column.
func (c *Circuit) Draw() string {
	type cell struct {
		text string // centered in the column, wire-filled when empty
	}
	var cols [][]cell
	front := make([]int, c.NumQubits)

	grow := func(col int) {
		for len(cols) <= col {
			cols = append(cols, make([]cell, c.NumQubits))
		}
	}
	place := func(col, row int, text string) {
		grow(col)
		cols[col][row].text = text
	}

	for _, g := range c.Gates {
		switch g.Name {
		case GateBarrier:
			col := 0
			for _, f := range front {
				if f > col {
					col = f
				}
			}
			for q := 0; q < c.NumQubits; q++ {
				place(col, q, "░")
				front[q] = col + 1
			}
		case GateCX:
			lo, hi := g.Qubits[0], g.Qubits[1]
			if lo > hi {
				lo, hi = hi, lo
			}
			col := 0
			for q := lo; q <= hi; q++ {
				if front[q] > col {
					col = front[q]
				}
			}
			place(col, g.Qubits[0], "●")
			place(col, g.Qubits[1], "[X]")
			for q := lo + 1; q < hi; q++ {
				place(col, q, "│")
			}
			for q := lo; q <= hi; q++ {
				front[q] = col + 1
			}
		default:
			q := g.Qubits[0]
			place(front[q], q, "["+strings.ToUpper(string(g.Name))+"]")
			front[q]++
		}
	}
	for _, m := range c.Measurements {
		place(front[m.Qubit], m.Qubit, "[M]")
		front[m.Qubit]++
	}

	var b strings.Builder
	labelWidth := len(fmt.Sprintf("q%d: ", c.NumQubits-1))
	for q := 0; q < c.NumQubits; q++ {
		label := fmt.Sprintf("q%d: ", q)
		b.WriteString(strings.Repeat(" ", labelWidth-len(label)))
		b.WriteString(label)
		for _, col := range cols {
			b.WriteString(padCell(col[q].text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// padCell centers text in a wire-filled column of cellWidth runes.
func padCell(text string) string {
	if text == "" {
		return strings.Repeat("─", cellWidth)
	}
	w := len([]rune(text))
	left := (cellWidth - w) / 2
	right := cellWidth - w - left
	return strings.Repeat("─", left) + text + strings.Repeat("─", right)
}
