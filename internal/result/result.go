// Package result holds measurement outcomes and the readings the
// walkthrough derives from them. Counts are keyed by bitstring in
// classical-bit order: character i is the bit measured into c[i].
package result

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Counts maps measured bitstrings to how many shots produced them.
type Counts map[string]int

// Shots is the total number of recorded shots.
func (c Counts) Shots() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Probabilities converts counts to relative frequencies.
func (c Counts) Probabilities() map[string]float64 {
	total := c.Shots()
	probs := make(map[string]float64, len(c))
	if total == 0 {
		return probs
	}
	for bits, n := range c {
		probs[bits] = float64(n) / float64(total)
	}
	return probs
}

// Outcome is one bitstring with its count, used for sorted rendering.
type Outcome struct {
	Bits  string
	Count int
}

// Sorted returns outcomes by descending count, ties broken by bitstring,
// so rendering is deterministic.
func (c Counts) Sorted() []Outcome {
	out := make([]Outcome, 0, len(c))
	for bits, n := range c {
		out = append(out, Outcome{Bits: bits, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Bits < out[j].Bits
	})
	return out
}

// Top returns the modal outcome, or zero values for empty counts.
func (c Counts) Top() (string, int) {
	sorted := c.Sorted()
	if len(sorted) == 0 {
		return "", 0
	}
	return sorted[0].Bits, sorted[0].Count
}

// ZeroProbability is the fraction of shots that measured the all-zeros
// bitstring, the quantity the Deutsch-Jozsa verdict reads.
func (c Counts) ZeroProbability() float64 {
	total := c.Shots()
	if total == 0 {
		return 0
	}
	for bits, n := range c {
		if strings.Count(bits, "0") == len(bits) && len(bits) > 0 {
			return float64(n) / float64(total)
		}
	}
	return 0
}

// Verdict is the algorithm's reading of a measured distribution.
type Verdict string

const (
	VerdictConstant Verdict = "constant"
	VerdictBalanced Verdict = "balanced"
)

// Verdict applies the Deutsch-Jozsa decision rule: a constant oracle puts
// every shot on the all-zeros string and a balanced oracle none, so on an
// ideal backend the zero-string probability is exactly 1 or 0. The
// midpoint threshold keeps the call stable under hardware noise.
func (c Counts) Verdict() Verdict {
	if c.ZeroProbability() > 0.5 {
		return VerdictConstant
	}
	return VerdictBalanced
}

// Result is one completed execution: where it ran, what came back, and
// how long the backend took.
type Result struct {
	JobID    string
	Backend  string
	Shots    int
	Counts   Counts
	Duration time.Duration
}

// Summary renders a one-line reading of the result.
func (r *Result) Summary() string {
	bits, n := r.Counts.Top()
	return fmt.Sprintf("%s: %d shots, top outcome %s (%d), verdict %s",
		r.Backend, r.Shots, bits, n, r.Counts.Verdict())
}
