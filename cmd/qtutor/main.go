package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/strikereaper/qiskit-tutorial/cmd/qtutor/ui"
	"github.com/strikereaper/qiskit-tutorial/internal/backend"
	"github.com/strikereaper/qiskit-tutorial/internal/config"
	"github.com/strikereaper/qiskit-tutorial/internal/oracle"
	"github.com/strikereaper/qiskit-tutorial/internal/store"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	backendName string
	shots       int
	numInputs   int
	seed        int64
	timeout     time.Duration

	// Oracle selection flags, shared by run, oracle, export and compare
	oracleKind   string
	oracleMask   string
	oracleOutput int

	// Resolved in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
	styles ui.Styles
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "qtutor",
	Short: "qtutor - learn the Deutsch-Jozsa algorithm by running it",
	Long: `qtutor is an interactive tutorial for the Deutsch-Jozsa algorithm.

A hidden function over n bits is promised to be either constant or
balanced. Classically the worst case takes 2^(n-1)+1 evaluations to
tell which; the quantum circuit answers in one. qtutor builds that
circuit around oracles you choose, executes it on the built-in
state-vector simulator or on cloud hardware, and reads the verdict
off the measurement histogram.

Run without arguments to start the interactive lesson.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if isInteractive(cmd) {
			// The lesson TUI owns the terminal; keep zap quiet there.
			logger = zap.NewNop()
		} else {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backendName
		}
		if cmd.Flags().Changed("shots") {
			cfg.Shots = shots
		}
		if cmd.Flags().Changed("inputs") {
			cfg.Inputs = numInputs
		}

		styles = ui.NewStyles(ui.ThemeFromName(cfg.Theme))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: start the interactive lesson
		return runLesson()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.qtutor/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "statevector", "Backend to execute on")
	rootCmd.PersistentFlags().IntVar(&shots, "shots", 1024, "Shots per execution")
	rootCmd.PersistentFlags().IntVarP(&numInputs, "inputs", "n", 3, "Width of the oracle input register")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Seed for oracle choice and sampling (0 for random)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Execution deadline")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// isInteractive reports whether cmd launches the full-screen TUI, which
// must not share the terminal with zap output.
func isInteractive(cmd *cobra.Command) bool {
	return cmd.Name() == "qtutor" || cmd.Name() == "lesson"
}

// addOracleFlags attaches the oracle selection flags to a command.
func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&oracleKind, "oracle", "random", "Oracle family: constant, balanced, or random")
	cmd.Flags().StringVar(&oracleMask, "mask", "", "Parity mask for a balanced oracle, in binary (e.g. 101)")
	cmd.Flags().IntVar(&oracleOutput, "output", 0, "Output bit for a constant oracle (0 or 1)")
}

// buildOracle turns the oracle flags into an oracle, drawing any
// unspecified parameters from rng.
func buildOracle(rng *rand.Rand) (*oracle.Oracle, error) {
	inputs := cfg.Inputs
	if oracleKind == "random" || oracleKind == "" {
		if oracleMask != "" {
			return nil, fmt.Errorf("--mask only applies to --oracle balanced")
		}
		return oracle.Random(rng, inputs)
	}

	kind, err := oracle.ParseKind(oracleKind)
	if err != nil {
		return nil, err
	}
	if kind == oracle.Constant {
		if oracleMask != "" {
			return nil, fmt.Errorf("--mask only applies to --oracle balanced")
		}
		return oracle.NewConstant(inputs, oracleOutput)
	}

	if oracleMask == "" {
		return oracle.RandomBalanced(rng, inputs)
	}
	mask, err := strconv.ParseUint(oracleMask, 2, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid --mask %q: expected binary digits", oracleMask)
	}
	return oracle.NewBalanced(inputs, mask)
}

// newRegistry builds the backend registry from the loaded config. The
// simulator is always present; the cloud device joins once credentials
// are configured.
func newRegistry() (*backend.Registry, error) {
	reg := backend.NewRegistry()
	local := backend.NewSimulator(backend.SimulatorConfig{Seed: seed, Logger: logger})
	if err := reg.Register(local); err != nil {
		return nil, err
	}

	if cfg.Remote.Configured() {
		remote, err := backend.NewRemote(backend.RemoteConfig{
			BaseURL:      cfg.Remote.BaseURL,
			Token:        cfg.Remote.Token,
			Device:       cfg.Remote.Device,
			MaxQubits:    cfg.Remote.MaxQubits,
			MaxShots:     cfg.Remote.MaxShots,
			PollInterval: cfg.Remote.GetPollInterval(),
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure cloud backend: %w", err)
		}
		if err := reg.Register(remote); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// resolveBackend picks the execution backend named by flags or config.
func resolveBackend(reg *backend.Registry) (backend.Backend, error) {
	name := cfg.Backend
	if name == "" {
		name = "statevector"
	}
	return reg.Get(name)
}

// jobContext bounds an execution and cancels it on Ctrl+C. Cloud runs
// default to the configured job timeout since device queues routinely
// outlast the flag default.
func jobContext(cmd *cobra.Command, b backend.Backend) (context.Context, context.CancelFunc) {
	d := timeout
	if !cmd.Flags().Changed("timeout") && b.Provider() == "cloud" {
		d = cfg.Remote.GetJobTimeout()
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func newRng() *rand.Rand {
	s := seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(s))
}

func openHistory() (*store.Store, error) {
	return store.Open(cfg.History.HistoryPath())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
