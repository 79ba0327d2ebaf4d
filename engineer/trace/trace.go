// Package trace records the engine's per-tick arbitration decisions for
// offline analysis of replays. It stores plain data and has no dependency on
// the engine itself.
package trace

// Level controls the verbosity of decision tracing.
type Level string

const (
	// LevelNone disables tracing.
	LevelNone Level = "none"
	// LevelDecisions records every tick that produced candidate events.
	LevelDecisions Level = "decisions"
)

var validLevels = map[Level]bool{
	LevelNone:      true,
	LevelDecisions: true,
	"":             true, // empty defaults to none
}

// IsValidLevel reports whether level names a recognized trace level.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Config controls trace collection.
type Config struct {
	Level Level
	// MaxRecords bounds the retained decisions; older ones are discarded.
	// Zero keeps everything.
	MaxRecords int
}

// EngineTrace collects decision records. It is owned by the engine goroutine;
// read it only after the engine has stopped.
type EngineTrace struct {
	Config    Config
	Decisions []DecisionRecord
	// Ticks counts every processed tick, including those without candidates.
	Ticks int
	// Discarded counts decisions dropped to honor MaxRecords.
	Discarded int
}

// NewEngineTrace creates an EngineTrace ready for recording.
func NewEngineTrace(config Config) *EngineTrace {
	return &EngineTrace{
		Config:    config,
		Decisions: make([]DecisionRecord, 0),
	}
}

// Enabled reports whether decisions should be recorded.
func (et *EngineTrace) Enabled() bool {
	return et != nil && et.Config.Level == LevelDecisions
}

// RecordTick counts a processed tick.
func (et *EngineTrace) RecordTick() {
	if et != nil {
		et.Ticks++
	}
}

// RecordDecision appends a decision record.
func (et *EngineTrace) RecordDecision(record DecisionRecord) {
	if !et.Enabled() {
		return
	}
	if limit := et.Config.MaxRecords; limit > 0 && len(et.Decisions) >= limit {
		n := copy(et.Decisions, et.Decisions[1:])
		et.Decisions = et.Decisions[:n]
		et.Discarded++
	}
	et.Decisions = append(et.Decisions, record)
}
