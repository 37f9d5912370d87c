package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/backend"
	"github.com/strikereaper/qiskit-tutorial/internal/config"
	"github.com/strikereaper/qiskit-tutorial/internal/oracle"
)

// setupTest pins the package globals the handlers read. Tests share
// them, so nothing here may run in parallel.
func setupTest(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Shots = 256
	cfg.History.Enabled = false
	cfg.History.Path = filepath.Join(t.TempDir(), "runs.db")
	styles = ui.NewStyles(ui.LightTheme())
	seed = 7
	timeout = time.Minute
	oracleKind = "random"
	oracleMask = ""
	oracleOutput = 0
	runSave = true
	exportOut = ""
	exportDraw = false
	simWatch = false
	simExact = false
	compareOn = nil
	historyLimit = 20
	historyKeep = 50
}

func TestBuildOracleMask(t *testing.T) {
	setupTest(t)
	oracleKind = "balanced"
	oracleMask = "101"

	o, err := buildOracle(newRng())
	if err != nil {
		t.Fatalf("buildOracle returned error: %v", err)
	}
	if o.Kind != oracle.Balanced {
		t.Errorf("kind = %s, want balanced", o.Kind)
	}
	if o.Mask != 5 {
		t.Errorf("mask = %d, want 5", o.Mask)
	}
}

func TestBuildOracleRejectsBadFlags(t *testing.T) {
	setupTest(t)

	oracleKind = "balanced"
	oracleMask = "12"
	if _, err := buildOracle(newRng()); err == nil {
		t.Error("expected error for non-binary mask")
	}

	oracleKind = "constant"
	oracleMask = "1"
	if _, err := buildOracle(newRng()); err == nil {
		t.Error("expected error for mask on a constant oracle")
	}

	oracleKind = "sideways"
	oracleMask = ""
	if _, err := buildOracle(newRng()); err == nil {
		t.Error("expected error for unknown oracle kind")
	}
}

func TestBuildOracleRejectsBadWidths(t *testing.T) {
	setupTest(t)
	oracleKind = "balanced"
	oracleMask = ""

	// The maskless balanced path draws from the rng, so a bad register
	// width must surface as an error before the draw, not a panic.
	for _, inputs := range []int{0, -1, 64} {
		cfg.Inputs = inputs
		o, err := buildOracle(newRng())
		if err == nil {
			t.Errorf("inputs=%d: expected error, got oracle %v", inputs, o)
			continue
		}
		if !strings.Contains(err.Error(), "inputs must be in") {
			t.Errorf("inputs=%d: unexpected error: %v", inputs, err)
		}
	}
}

func TestRunExperimentOnSimulator(t *testing.T) {
	setupTest(t)
	oracleKind = "balanced"
	oracleMask = "11"
	runSave = false

	output := captureOutput(t, func() {
		if err := runExperiment(&cobra.Command{}, nil); err != nil {
			t.Errorf("runExperiment returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Verdict: balanced") {
		t.Errorf("expected balanced verdict, got: %s", output)
	}
	if !strings.Contains(output, "|110>") {
		t.Errorf("mask 11 should land every shot on |110>, got: %s", output)
	}
	if !strings.Contains(output, "Correct") {
		t.Errorf("expected the verdict to match the oracle, got: %s", output)
	}
}

func TestRunExperimentRecordsHistory(t *testing.T) {
	setupTest(t)
	cfg.History.Enabled = true
	oracleKind = "constant"
	oracleOutput = 1

	_ = captureOutput(t, func() {
		if err := runExperiment(&cobra.Command{}, nil); err != nil {
			t.Errorf("runExperiment returned error: %v", err)
		}
	})

	output := captureOutput(t, func() {
		if err := runHistoryList(&cobra.Command{}, nil); err != nil {
			t.Errorf("runHistoryList returned error: %v", err)
		}
	})
	if !strings.Contains(output, "statevector") || !strings.Contains(output, "constant") {
		t.Errorf("history listing missing the run: %s", output)
	}

	output = captureOutput(t, func() {
		if err := runHistoryStats(&cobra.Command{}, nil); err != nil {
			t.Errorf("runHistoryStats returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Runs:     1") {
		t.Errorf("stats should count exactly one run: %s", output)
	}

	output = captureOutput(t, func() {
		if err := runHistoryPrune(&cobra.Command{}, nil); err != nil {
			t.Errorf("runHistoryPrune returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Deleted 0 run(s)") {
		t.Errorf("prune under the keep limit should delete nothing: %s", output)
	}
}

func TestOracleInspect(t *testing.T) {
	setupTest(t)
	oracleKind = "balanced"
	oracleMask = "110"

	output := captureOutput(t, func() {
		if err := runOracleInspect(&cobra.Command{}, nil); err != nil {
			t.Errorf("runOracleInspect returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Classical worst case: 5 queries") {
		t.Errorf("missing classical cost for 3 inputs: %s", output)
	}
	if !strings.Contains(output, "spell the mask: 011") {
		t.Errorf("missing measured mask bits: %s", output)
	}
	if !strings.Contains(output, "cx q[1], q[3]") || !strings.Contains(output, "cx q[2], q[3]") {
		t.Errorf("missing gate decomposition: %s", output)
	}
	if !strings.Contains(output, "Truth table") {
		t.Errorf("missing truth table: %s", output)
	}
}

func TestBackendsListing(t *testing.T) {
	setupTest(t)

	output := captureOutput(t, func() {
		if err := runBackends(&cobra.Command{}, nil); err != nil {
			t.Errorf("runBackends returned error: %v", err)
		}
	})

	if !strings.Contains(output, "statevector") {
		t.Errorf("missing simulator row: %s", output)
	}
	if !strings.Contains(output, "No cloud device configured") {
		t.Errorf("missing configuration hint: %s", output)
	}
}

func TestExportWritesQASM(t *testing.T) {
	setupTest(t)
	oracleKind = "balanced"
	oracleMask = "1"
	exportOut = filepath.Join(t.TempDir(), "dj.qasm")

	_ = captureOutput(t, func() {
		if err := runExport(&cobra.Command{}, nil); err != nil {
			t.Errorf("runExport returned error: %v", err)
		}
	})

	data, err := os.ReadFile(exportOut)
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	if !strings.Contains(string(data), "OPENQASM 2.0;") {
		t.Errorf("output is not QASM: %s", data)
	}
	if !strings.Contains(string(data), "cx q[0],q[3];") {
		t.Errorf("oracle gate missing from QASM: %s", data)
	}
}

func TestSimulateQASMFile(t *testing.T) {
	setupTest(t)
	o, err := oracle.NewConstant(3, 0)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "dj.qasm")
	if err := os.WriteFile(path, []byte(o.Circuit().QASM()), 0644); err != nil {
		t.Fatal(err)
	}

	output := captureOutput(t, func() {
		if err := runSimulate(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runSimulate returned error: %v", err)
		}
	})
	if !strings.Contains(output, "|000>") {
		t.Errorf("constant oracle should land on |000>: %s", output)
	}

	simExact = true
	output = captureOutput(t, func() {
		if err := runSimulate(&cobra.Command{}, []string{path}); err != nil {
			t.Errorf("runSimulate --exact returned error: %v", err)
		}
	})
	if !strings.Contains(output, "1.000000") {
		t.Errorf("exact distribution should be deterministic: %s", output)
	}
}

func TestSimulateRejectsUnmeasuredCircuit(t *testing.T) {
	setupTest(t)
	path := filepath.Join(t.TempDir(), "bare.qasm")
	src := "OPENQASM 2.0;\ninclude \"qelib1.inc\";\nqreg q[2];\ncreg c[2];\nh q[0];\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	err := runSimulate(&cobra.Command{}, []string{path})
	if err == nil || !strings.Contains(err.Error(), "measures nothing") {
		t.Errorf("expected a no-measurements error, got: %v", err)
	}
}

func TestCompareSimulatorOnly(t *testing.T) {
	setupTest(t)
	oracleKind = "constant"

	output := captureOutput(t, func() {
		if err := runCompare(&cobra.Command{}, nil); err != nil {
			t.Errorf("runCompare returned error: %v", err)
		}
	})

	if !strings.Contains(output, "statevector") {
		t.Errorf("compare table missing the simulator: %s", output)
	}
	if !strings.Contains(output, "1.000") {
		t.Errorf("ideal simulator should give P(all zeros) = 1: %s", output)
	}
	if !strings.Contains(output, "Ground truth: constant") {
		t.Errorf("missing ground truth line: %s", output)
	}
}

func TestCloudTimeoutSurfaces(t *testing.T) {
	setupTest(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/cancel"):
			w.WriteHeader(http.StatusOK)
		default:
			// The job never leaves the queue.
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "job-1", "status": "queued"})
		}
	}))
	defer srv.Close()

	cfg.Backend = "testdev"
	cfg.Remote.BaseURL = srv.URL
	cfg.Remote.Token = "tok"
	cfg.Remote.Device = "testdev"
	cfg.Remote.PollInterval = "10ms"
	cfg.Remote.JobTimeout = "150ms"

	output := captureOutput(t, func() {
		err := runExperiment(&cobra.Command{}, nil)
		if err == nil {
			t.Error("expected a timeout error")
			return
		}
		if !errors.Is(err, backend.ErrJobTimeout) {
			t.Errorf("expected ErrJobTimeout, got: %v", err)
		}
	})
	if !strings.Contains(output, "queue outlasted the deadline") {
		t.Errorf("missing timeout hint: %s", output)
	}
}

func TestLessonPlainPrintsEverySection(t *testing.T) {
	setupTest(t)

	output := captureOutput(t, func() {
		if err := runLessonPlain(); err != nil {
			t.Errorf("runLessonPlain returned error: %v", err)
		}
	})

	for _, want := range []string{"Deutsch-Jozsa", "oracle", "queue"} {
		if !strings.Contains(output, want) {
			t.Errorf("lesson text missing %q", want)
		}
	}
}

func TestLessonEnvWithoutRemote(t *testing.T) {
	setupTest(t)

	env, err := lessonEnv()
	if err != nil {
		t.Fatalf("lessonEnv returned error: %v", err)
	}
	if env.Local == nil {
		t.Fatal("local backend missing from lesson env")
	}
	if env.Remote != nil {
		t.Fatal("remote backend should be absent until configured")
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
