package engineer

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/trace"
)

// MinInterval is the fastest the engine ticks, whatever interval is asked for.
const MinInterval = 200 * time.Millisecond

// SnapshotSource is read by the engine on every tick. *state.Cache satisfies it.
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace records every arbitration into et.
func WithTrace(et *trace.EngineTrace) Option {
	return func(e *Engine) { e.trace = et }
}

// Engine runs detection and arbitration on a timer and delivers winners to a
// Sink. Not safe for concurrent use; Run owns it for its lifetime.
type Engine struct {
	rules    Rules
	detector *Detector
	arbiter  *Arbiter
	sink     Sink
	trace    *trace.EngineTrace
	lastTick float64
	epoch    uint64 // state epoch the detector and arbiter memory belongs to
}

// NewEngine creates an Engine. The comms throttle is read from r once.
func NewEngine(r Rules, sink Sink, opts ...Option) *Engine {
	e := &Engine{rules: r, sink: sink}
	e.Reset()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset forgets the tick clock, the SC/VSC edge memory, cooldowns and the
// throttle, as for a new session. The trace is kept.
func (e *Engine) Reset() {
	e.detector = NewDetector(e.rules)
	e.arbiter = NewArbiter(e.rules.Throttle())
	e.lastTick = math.Inf(-1)
}

// Tick evaluates s at session time now and emits at most one event, which is
// also returned. Ticks that do not advance session time are ignored, unless
// s belongs to a newer state epoch: the engine then resets first, since the
// session clock has restarted.
func (e *Engine) Tick(s state.Snapshot, now float64) (Event, bool) {
	if s.Epoch != e.epoch {
		logrus.Infof("[engine] new session (epoch %d); resetting detector and arbiter", s.Epoch)
		e.Reset()
		e.epoch = s.Epoch
	}
	if now <= e.lastTick {
		return Event{}, false
	}
	e.lastTick = now
	e.trace.RecordTick()

	events := e.detector.Detect(s)
	if len(events) == 0 {
		return Event{}, false
	}
	ev, ok := e.arbiter.Select(events, now)
	if e.trace.Enabled() {
		e.recordDecision(events, ev, ok, now)
	}
	if !ok {
		return Event{}, false
	}
	e.sink.Emit(ev)
	e.arbiter.MarkEmitted(ev, now)
	return ev, true
}

func (e *Engine) recordDecision(ranked []Event, winner Event, ok bool, now float64) {
	rec := trace.DecisionRecord{
		SessionTime: now,
		Candidates:  make([]trace.CandidateRecord, len(ranked)),
	}
	for i, ev := range ranked {
		rec.Candidates[i] = trace.CandidateRecord{
			Key:      ev.Key,
			Priority: ev.Priority.String(),
			Score:    ev.Score,
			Urgent:   ev.Urgent,
		}
	}
	switch {
	case ok && winner.Urgent:
		rec.Winner, rec.Outcome = winner.Key, trace.OutcomeUrgent
	case ok:
		rec.Winner, rec.Outcome = winner.Key, trace.OutcomeSelected
	case e.arbiter.Throttled(now):
		rec.Outcome = trace.OutcomeThrottled
	default:
		rec.Outcome = trace.OutcomeCooldown
	}
	e.trace.RecordDecision(rec)
}

// Run ticks every interval (at least MinInterval) using the newest session
// time of each snapshot, until ctx is cancelled. Snapshots taken before any
// packet was applied are skipped.
func (e *Engine) Run(ctx context.Context, src SnapshotSource, interval time.Duration) error {
	if interval < MinInterval {
		interval = MinInterval
	}
	logrus.Infof("[engine] started (interval=%s, throttle=%.1fs)", interval, e.arbiter.throttle)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := src.Snapshot()
			if s.LatestSessionTime < 0 {
				continue
			}
			e.Tick(s, s.LatestSessionTime)
		}
	}
}
