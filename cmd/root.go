package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aegis-ai/aegis-sim/sim"
	"github.com/aegis-ai/aegis-sim/sim/monitor"
)

var (
	configPath  string        // Path to YAML run configuration
	seed        int64         // Seed for sample generation
	interval    time.Duration // Time between ticks
	historySize int           // Samples retained per stream
	logLevel    string        // Log verbosity level

	// Stress toggles
	triggerDrift         bool
	triggerHallucination bool
	triggerCost          bool
	triggerSafety        bool

	ticks      int    // Number of ticks for run (0 = until interrupted)
	jsonOutput bool   // Emit JSON lines instead of text
	addr       string // Listen address for serve
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "aegis-sim",
	Short: "Synthetic ML/LLM metrics generator with governance risk scoring",
}

// runCmd ticks the monitor and prints each reading, then a summary.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the metrics simulation in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging("warn")
		cfg := mustLoadConfig(cmd)

		if ticks == 0 && cfg.Interval <= 0 {
			logrus.Fatalf("--interval must be > 0 when --ticks is 0")
		}
		if ticks < 0 {
			logrus.Fatalf("--ticks must be >= 0, got %d", ticks)
		}

		mon, err := cfg.NewMonitor()
		if err != nil {
			logrus.Fatalf("Failed to create monitor: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if err := runTicks(ctx, mon, ticks, cfg.Interval, out, jsonOutput); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		summary := mon.Summary()
		if jsonOutput {
			err = json.NewEncoder(out).Encode(summary)
		} else {
			err = summary.WriteReport(out)
		}
		if err != nil {
			logrus.Fatalf("Failed to write summary: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// tickCmd prints one stateless reading as JSON.
var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Generate a single ML/LLM sample pair as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging("warn")
		cfg := mustLoadConfig(cmd)

		reading := monitor.Sample(cfg.Seed, cfg.Flags, time.Now())
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reading); err != nil {
			logrus.Fatalf("Failed to encode reading: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging applies --log, falling back to def when unset.
func setupLogging(def string) {
	lvl := logLevel
	if lvl == "" {
		lvl = def
	}
	level, err := logrus.ParseLevel(lvl)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", lvl)
	}
	logrus.SetLevel(level)
}

// mustLoadConfig resolves the file config (if any) plus CLI overrides.
func mustLoadConfig(cmd *cobra.Command) Config {
	cfg := DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = LoadConfig(configPath); err != nil {
			logrus.Fatalf("%v", err)
		}
	}
	applyOverrides(cmd.Flags(), &cfg)
	if err := cfg.MonitorConfig().Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// runTicks ticks n times (forever when n is 0), waiting every between ticks.
// A zero every runs back-to-back. Returns nil when ctx is cancelled.
func runTicks(ctx context.Context, mon *monitor.Monitor, n int, every time.Duration, w io.Writer, asJSON bool) error {
	enc := json.NewEncoder(w)
	for i := 0; n == 0 || i < n; i++ {
		if i > 0 && every > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(every):
			}
		} else if ctx.Err() != nil {
			return nil
		}

		res := mon.Tick()
		var err error
		if asJSON {
			err = enc.Encode(res)
		} else {
			_, err = fmt.Fprintln(w, formatTick(res))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formatTick renders one tick as a single status line.
func formatTick(r monitor.TickResult) string {
	line := fmt.Sprintf("[%s] ML acc=%.1f%% f1=%.1f%% drift=%.3f %-9s | LLM %4.0fms halluc=%.1f%% tokens=%d $%.4f %-8s | risk %3d %s",
		r.ML.Timestamp.Format("15:04:05"),
		r.ML.Accuracy*100, r.ML.F1*100, r.ML.DriftScore, sim.ClassifyML(r.ML).Label,
		r.LLM.LatencyMs, r.LLM.HallucinationRate*100, r.LLM.TokenUsage, r.LLM.CostUsd, sim.ClassifyLLM(r.LLM).Label,
		r.Risk.Score, r.Risk.Tier)
	for _, a := range r.Alerts {
		line += fmt.Sprintf("\n    %-7s %s: %s", a.Severity, a.Title, a.Message)
	}
	return line
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML run configuration file")
	pf.Int64Var(&seed, "seed", 42, "Seed for sample generation")
	pf.DurationVar(&interval, "interval", monitor.DefaultInterval, "Time between ticks (0 runs back-to-back)")
	pf.IntVar(&historySize, "history-size", monitor.DefaultHistorySize, "Samples retained per stream")
	pf.StringVar(&logLevel, "log", "", "Log level (trace, debug, info, warn, error, fatal, panic); default warn, info for serve")

	pf.BoolVar(&triggerDrift, sim.FlagDrift, false, "Simulate ML data drift")
	pf.BoolVar(&triggerHallucination, sim.FlagHallucination, false, "Simulate an LLM hallucination attack")
	pf.BoolVar(&triggerCost, sim.FlagCost, false, "Simulate an LLM token cost spike")
	pf.BoolVar(&triggerSafety, sim.FlagSafety, false, "Simulate an LLM safety incident")

	runCmd.Flags().IntVar(&ticks, "ticks", 0, "Number of ticks to run (0 = until interrupted)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit one JSON object per tick and a JSON summary")

	serveCmd.Flags().StringVar(&addr, "addr", ":8000", "HTTP listen address")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(serveCmd)
}
