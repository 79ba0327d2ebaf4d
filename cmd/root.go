package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for logging
	logLevel string // Log verbosity level
	logDir   string // Directory of the log file

	// CLI flags for ingestion
	listenAddr        string // UDP listen address
	queueSize         int    // Receive queue capacity
	dispatchQueueSize int    // Dispatch queue capacity
	packetFormat      uint16 // Expected header packet format
	gameYear          uint8  // Expected header game year
	strictFormat      bool   // Drop on packet format mismatch
	strictYear        bool   // Drop on game year mismatch

	// CLI flags for recording and replay
	record         bool    // Record received datagrams
	recordDir      string  // Recording directory
	replayPath     string  // Recording to replay
	replaySpeed    float64 // Replay speed multiplier
	replayNoPacing bool    // Replay without pacing

	// CLI flags for the engine
	rulesPath    string  // Rules file
	commThrottle float64 // Comms throttle override in seconds
	noEngine     bool    // Disable the engine
	traceLevel   string  // Decision trace level
	traceMax     int     // Maximum decision records

	// CLI flags for reporting
	statsInterval  time.Duration // Stats line interval
	stateInterval  time.Duration // State line interval
	engineInterval time.Duration // Engine tick interval
	metricsAddr    string        // Prometheus listen address
	noSupervisor   bool          // Run once without restarts

	// CLI flags for inspect
	inspectEvery time.Duration // Timeline sampling interval
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ingeniero",
	Short: "Race engineer for F1 25 UDP telemetry",
}

// runCmd receives or replays telemetry and runs the race engineer
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Receive (or replay) telemetry and run the race engineer",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig()
		if err != nil {
			logrus.Fatalf("Invalid environment: %v", err)
		}
		applyRunFlags(cmd.Flags(), &cfg)

		closeLog, err := setupLogging(cfg.LogLevel, cfg.LogDir)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
		}
		defer closeLog()

		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run := func(ctx context.Context) error { return runApp(ctx, cfg, os.Stdout) }
		if cfg.NoSupervisor {
			err = run(ctx)
		} else {
			err = supervise(ctx, run, newBackoff(supervisorInitialBackoff, supervisorMaxBackoff))
		}
		if err != nil {
			logrus.Errorf("ingeniero stopped: %v", err)
			closeLog()
			os.Exit(1)
		}
		logrus.Info("ingeniero stopped")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd.Flags())

	inspectCmd.Flags().DurationVar(&inspectEvery, "every", time.Second, "Timeline sampling interval (0 disables)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
}
