package engineer

import (
	"math"
	"sort"
)

// Arbiter picks at most one event per tick.
//
// Candidates are ranked by priority, then score. The best urgent candidate
// whose key is out of cooldown, or whose score beats the last emitted score
// for that key, wins regardless of the global throttle. Otherwise nothing is
// emitted while the throttle runs, and after it the best non-urgent candidate
// out of cooldown wins.
type Arbiter struct {
	throttle  float64
	lastEmit  float64
	lastByKey map[string]float64
	scoreBy   map[string]float64
}

// NewArbiter creates an Arbiter with the given global throttle in seconds.
func NewArbiter(throttle float64) *Arbiter {
	return &Arbiter{
		throttle:  throttle,
		lastEmit:  math.Inf(-1),
		lastByKey: make(map[string]float64),
		scoreBy:   make(map[string]float64),
	}
}

// Rank sorts events in place, best first.
func Rank(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if c := ComparePriority(events[i].Priority, events[j].Priority); c != 0 {
			return c > 0
		}
		return events[i].Score > events[j].Score
	})
}

func (a *Arbiter) cooledDown(ev Event, now float64) bool {
	last, ok := a.lastByKey[ev.Key]
	return !ok || now-last >= ev.Cooldown
}

func (a *Arbiter) escalated(ev Event) bool {
	prev, ok := a.scoreBy[ev.Key]
	return !ok || ev.Score > prev
}

// Throttled reports whether the global throttle is still running at now.
func (a *Arbiter) Throttled(now float64) bool {
	return now-a.lastEmit < a.throttle
}

// Select returns the event to emit at session time now. events is reordered.
func (a *Arbiter) Select(events []Event, now float64) (Event, bool) {
	if len(events) == 0 {
		return Event{}, false
	}
	Rank(events)

	for _, ev := range events {
		if ev.Urgent && (a.cooledDown(ev, now) || a.escalated(ev)) {
			return ev, true
		}
	}
	if a.Throttled(now) {
		return Event{}, false
	}
	for _, ev := range events {
		if !ev.Urgent && a.cooledDown(ev, now) {
			return ev, true
		}
	}
	return Event{}, false
}

// MarkEmitted records that ev was delivered at now.
func (a *Arbiter) MarkEmitted(ev Event, now float64) {
	a.lastEmit = now
	a.lastByKey[ev.Key] = now
	a.scoreBy[ev.Key] = ev.Score
}
