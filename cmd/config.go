package cmd

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"github.com/ingeniero-f1/ingeniero/engineer/trace"
)

const (
	defaultListen         = "0.0.0.0:20777"
	defaultQueueSize      = 2048
	defaultPacketFormat   = 2025
	defaultGameYear       = 25
	defaultStatsInterval  = 2 * time.Second
	defaultStateInterval  = time.Second
	defaultEngineInterval = time.Second
	defaultReplaySpeed    = 1.0
	defaultLogDir         = "logs"
	defaultRecordDir      = "recordings"
	defaultLogLevel       = "info"
)

// AppConfig is the runtime configuration of `ingeniero run`. Values come from
// INGENIERO_* environment variables; command-line flags win when given.
type AppConfig struct {
	Listen            string `env:"INGENIERO_LISTEN"            envDefault:"0.0.0.0:20777"`
	QueueSize         int    `env:"INGENIERO_QUEUE_MAXSIZE"     envDefault:"2048"`
	DispatchQueueSize int    `env:"INGENIERO_DISPATCH_MAXSIZE"  envDefault:"2048"`

	PacketFormat uint16 `env:"INGENIERO_PACKET_FORMAT" envDefault:"2025"`
	GameYear     uint8  `env:"INGENIERO_GAME_YEAR"     envDefault:"25"`
	StrictFormat bool   `env:"INGENIERO_STRICT_FORMAT"`
	StrictYear   bool   `env:"INGENIERO_STRICT_YEAR"`

	StatsInterval  time.Duration `env:"INGENIERO_STATS_INTERVAL"  envDefault:"2s"`
	StateInterval  time.Duration `env:"INGENIERO_STATE_INTERVAL"  envDefault:"1s"`
	EngineInterval time.Duration `env:"INGENIERO_ENGINE_INTERVAL" envDefault:"1s"`

	Record    bool   `env:"INGENIERO_RECORD"`
	RecordDir string `env:"INGENIERO_RECORD_DIR" envDefault:"recordings"`

	ReplayPath     string  `env:"INGENIERO_REPLAY"`
	ReplaySpeed    float64 `env:"INGENIERO_REPLAY_SPEED"     envDefault:"1.0"`
	ReplayNoPacing bool    `env:"INGENIERO_REPLAY_NO_PACING"`

	RulesPath    string   `env:"INGENIERO_RULES"`
	CommThrottle *float64 `env:"INGENIERO_COMM_THROTTLE_S"` // nil keeps the rules value
	NoEngine     bool     `env:"INGENIERO_NO_ENGINE"`
	TraceLevel   string   `env:"INGENIERO_TRACE"       envDefault:"none"`
	TraceMax     int      `env:"INGENIERO_TRACE_MAX"`

	MetricsAddr  string `env:"INGENIERO_METRICS_ADDR"`
	NoSupervisor bool   `env:"INGENIERO_NO_SUPERVISOR"`

	LogLevel string `env:"INGENIERO_LOG_LEVEL" envDefault:"info"`
	LogDir   string `env:"INGENIERO_LOG_DIR"   envDefault:"logs"`
}

// LoadConfig reads AppConfig from the environment.
func LoadConfig() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c AppConfig) Validate() error {
	if c.Listen == "" && c.ReplayPath == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	if c.DispatchQueueSize <= 0 {
		return fmt.Errorf("dispatch queue size must be positive, got %d", c.DispatchQueueSize)
	}
	if c.ReplaySpeed <= 0 {
		return fmt.Errorf("replay speed must be positive, got %g", c.ReplaySpeed)
	}
	if c.CommThrottle != nil && *c.CommThrottle < 0 {
		return fmt.Errorf("comm throttle must be non-negative, got %g", *c.CommThrottle)
	}
	if !trace.IsValidLevel(c.TraceLevel) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", c.TraceLevel)
	}
	if c.TraceMax < 0 {
		return fmt.Errorf("trace max must be non-negative, got %d", c.TraceMax)
	}
	return nil
}

// registerRunFlags binds the run flags to the package-level flag variables.
func registerRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&logLevel, "log", defaultLogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	fs.StringVar(&logDir, "log-dir", defaultLogDir, "Directory for ingeniero.log")

	// Ingestion
	fs.StringVar(&listenAddr, "listen", defaultListen, "UDP address to receive telemetry on")
	fs.IntVar(&queueSize, "queue-size", defaultQueueSize, "Capacity of the receive queue")
	fs.IntVar(&dispatchQueueSize, "dispatch-queue-size", defaultQueueSize, "Capacity of the dispatch queue")
	fs.Uint16Var(&packetFormat, "packet-format", defaultPacketFormat, "Expected packet format")
	fs.Uint8Var(&gameYear, "game-year", defaultGameYear, "Expected game year")
	fs.BoolVar(&strictFormat, "strict-format", false, "Drop packets whose format does not match")
	fs.BoolVar(&strictYear, "strict-year", false, "Drop packets whose game year does not match")

	// Recording and replay
	fs.BoolVar(&record, "record", false, "Record received datagrams")
	fs.StringVar(&recordDir, "record-dir", defaultRecordDir, "Directory for recordings")
	fs.StringVar(&replayPath, "replay", "", "Replay a recording instead of listening on UDP")
	fs.Float64Var(&replaySpeed, "replay-speed", defaultReplaySpeed, "Replay speed multiplier")
	fs.BoolVar(&replayNoPacing, "no-pacing", false, "Replay as fast as possible")

	// Engine
	fs.StringVar(&rulesPath, "rules", "", "Rules file (YAML or JSON); built-in v1 rules when empty")
	fs.Float64Var(&commThrottle, "comm-throttle", 0, "Override the comms throttle in seconds")
	fs.BoolVar(&noEngine, "no-engine", false, "Disable the race engineer")
	fs.StringVar(&traceLevel, "trace", string(trace.LevelNone), "Decision trace level (none, decisions)")
	fs.IntVar(&traceMax, "trace-max", 0, "Maximum decision records kept (0 = unlimited)")

	// Reporting
	fs.DurationVar(&statsInterval, "stats-interval", defaultStatsInterval, "Interval between stats lines")
	fs.DurationVar(&stateInterval, "state-interval", defaultStateInterval, "Interval between state lines (0 disables)")
	fs.DurationVar(&engineInterval, "engine-interval", defaultEngineInterval, "Engine tick interval")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&noSupervisor, "no-supervisor", false, "Do not restart the app after a crash")
}

// applyRunFlags overrides cfg with every flag set explicitly on the command line.
func applyRunFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("log", func() { cfg.LogLevel = logLevel })
	set("log-dir", func() { cfg.LogDir = logDir })
	set("listen", func() { cfg.Listen = listenAddr })
	set("queue-size", func() { cfg.QueueSize = queueSize })
	set("dispatch-queue-size", func() { cfg.DispatchQueueSize = dispatchQueueSize })
	set("packet-format", func() { cfg.PacketFormat = packetFormat })
	set("game-year", func() { cfg.GameYear = gameYear })
	set("strict-format", func() { cfg.StrictFormat = strictFormat })
	set("strict-year", func() { cfg.StrictYear = strictYear })
	set("record", func() { cfg.Record = record })
	set("record-dir", func() { cfg.RecordDir = recordDir })
	set("replay", func() { cfg.ReplayPath = replayPath })
	set("replay-speed", func() { cfg.ReplaySpeed = replaySpeed })
	set("no-pacing", func() { cfg.ReplayNoPacing = replayNoPacing })
	set("rules", func() { cfg.RulesPath = rulesPath })
	set("comm-throttle", func() {
		v := commThrottle
		cfg.CommThrottle = &v
	})
	set("no-engine", func() { cfg.NoEngine = noEngine })
	set("trace", func() { cfg.TraceLevel = traceLevel })
	set("trace-max", func() { cfg.TraceMax = traceMax })
	set("stats-interval", func() { cfg.StatsInterval = statsInterval })
	set("state-interval", func() { cfg.StateInterval = stateInterval })
	set("engine-interval", func() { cfg.EngineInterval = engineInterval })
	set("metrics-addr", func() { cfg.MetricsAddr = metricsAddr })
	set("no-supervisor", func() { cfg.NoSupervisor = noSupervisor })
}
