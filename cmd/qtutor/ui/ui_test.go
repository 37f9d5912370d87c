package ui

import (
	"strings"
	"testing"

	"github.com/strikereaper/qiskit-tutorial/internal/result"
)

func TestHistogramView(t *testing.T) {
	h := Histogram{
		Title:  "1024 shots on statevector",
		Counts: result.Counts{"000": 768, "101": 256},
	}
	out := h.View(NewStyles(LightTheme()))

	if !strings.Contains(out, "1024 shots on statevector") {
		t.Error("missing title")
	}
	if !strings.Contains(out, "|000>") || !strings.Contains(out, "|101>") {
		t.Errorf("missing outcome labels:\n%s", out)
	}
	if !strings.Contains(out, "768") || !strings.Contains(out, "256") {
		t.Error("missing counts")
	}
	if !strings.Contains(out, "75.0%") || !strings.Contains(out, "25.0%") {
		t.Errorf("missing percentages:\n%s", out)
	}
	if !strings.Contains(out, "█") {
		t.Error("missing bars")
	}

	// The modal outcome comes first.
	zeroLine := strings.Index(out, "|000>")
	otherLine := strings.Index(out, "|101>")
	if zeroLine > otherLine {
		t.Error("outcomes not sorted by count")
	}
}

func TestHistogramBarsScaleToModalOutcome(t *testing.T) {
	h := Histogram{Counts: result.Counts{"11": 100, "00": 1}, BarWidth: 20}
	out := h.View(NewStyles(LightTheme()))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], strings.Repeat("█", 20)) {
		t.Error("modal bar should fill the full width")
	}
	// A nonzero outcome always gets at least one block.
	if !strings.Contains(lines[1], "█") {
		t.Error("small outcome lost its bar")
	}
}

func TestHistogramEmpty(t *testing.T) {
	out := Histogram{Counts: result.Counts{}}.View(NewStyles(LightTheme()))
	if !strings.Contains(out, "no counts") {
		t.Errorf("unexpected empty rendering: %q", out)
	}
}

func TestTableView(t *testing.T) {
	tbl := NewTable("Backends", "NAME", "PROVIDER", "QUBITS")
	tbl.AddRow("statevector", "local", "26")
	tbl.AddRow("ibmq-lima", "cloud", "5")

	out := tbl.View(NewStyles(LightTheme()))
	for _, want := range []string{"Backends", "NAME", "PROVIDER", "statevector", "ibmq-lima", "5"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTableEmptyRendersNothing(t *testing.T) {
	if out := NewTable("Empty", "A").View(NewStyles(LightTheme())); out != "" {
		t.Errorf("expected empty string, got %q", out)
	}
}

func TestThemeFromName(t *testing.T) {
	if got := ThemeFromName("dark"); !got.IsDark {
		t.Error("dark should map to the dark theme")
	}
	if got := ThemeFromName("light"); got.IsDark {
		t.Error("light should map to the light theme")
	}
}

func TestDetectThemeHonorsColorFGBG(t *testing.T) {
	t.Setenv("QTUTOR_DARK_MODE", "")

	t.Setenv("COLORFGBG", "15;0")
	if got := DetectTheme(); !got.IsDark {
		t.Error("background 0 should detect dark")
	}

	t.Setenv("COLORFGBG", "0;15")
	if got := DetectTheme(); got.IsDark {
		t.Error("background 15 should detect light")
	}
}
