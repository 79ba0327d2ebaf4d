// Package state holds the engineer's normalized view of the session: the
// latest valid value of each decoded packet category, stamped with the session
// time it was observed at.
//
// A Cache has exactly one writer (the dispatcher) calling Apply. Readers on
// other goroutines call Snapshot, which returns an immutable copy published by
// the writer after every change, so neither side ever takes a lock.
package state

import (
	"strings"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
)

// Category identifies one decoded packet category.
type Category int

const (
	CategorySession Category = iota
	CategoryLap
	CategoryStatus
	CategoryTelemetry
	CategoryDamage
)

var categoryNames = [...]string{"session", "lap", "status", "telemetry", "damage"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// CategoryOf maps a packet id to the category it feeds.
// Returns false for packet ids the cache does not track.
func CategoryOf(packetID uint8) (Category, bool) {
	switch packetID {
	case packet.IDSession:
		return CategorySession, true
	case packet.IDLapData:
		return CategoryLap, true
	case packet.IDCarStatus:
		return CategoryStatus, true
	case packet.IDCarTelemetry:
		return CategoryTelemetry, true
	case packet.IDCarDamage:
		return CategoryDamage, true
	}
	return 0, false
}

// TimedValue pairs a decoded value with the session time it was observed at.
type TimedValue[T any] struct {
	Value T
	Time  float64 // session time, seconds
	Valid bool
}

// accept stores v when t is strictly newer than the stored value (or nothing
// was stored yet). Older and duplicate observations are discarded.
func accept[T any](tv *TimedValue[T], v T, t float64) bool {
	if tv.Valid && t <= tv.Time {
		return false
	}
	*tv = TimedValue[T]{Value: v, Time: t, Valid: true}
	return true
}

func stale[T any](tv TimedValue[T], ttl, now float64) bool {
	return !tv.Valid || now-tv.Time > ttl
}

// Snapshot is an immutable copy of the engineer state.
type Snapshot struct {
	Session   TimedValue[packet.SessionInfo]
	Lap       TimedValue[packet.PlayerLap]
	Status    TimedValue[packet.PlayerStatus]
	Telemetry TimedValue[packet.PlayerTelemetry]
	Damage    TimedValue[packet.PlayerDamage]

	// LatestSessionTime is the newest session time of any accepted update,
	// or -1 before the first one.
	LatestSessionTime float64

	PlayerIndex   uint8
	PlayerTracked bool

	DecodeErrors  uint64
	IgnoredPlayer uint64 // per-car packets whose player index was not tracked

	// Epoch counts resets. Readers holding per-session memory compare it to
	// notice that session time has restarted.
	Epoch uint64
}

func emptySnapshot() Snapshot {
	return Snapshot{LatestSessionTime: -1}
}

// TTL is the maximum age, in session seconds, of each category before it is
// reported stale.
type TTL struct {
	Session   float64
	Lap       float64
	Status    float64
	Telemetry float64
	Damage    float64
}

// DefaultTTL returns the TTLs used when none are configured. Telemetry moves
// fastest and expires first.
func DefaultTTL() TTL {
	return TTL{Session: 5.0, Lap: 1.0, Status: 1.0, Telemetry: 0.5, Damage: 2.0}
}

// StaleFlags reports, per category, whether the cached value is missing or
// older than its TTL.
type StaleFlags struct {
	Session   bool
	Lap       bool
	Status    bool
	Telemetry bool
	Damage    bool
}

// Any reports whether any category is stale.
func (f StaleFlags) Any() bool {
	return f.Session || f.Lap || f.Status || f.Telemetry || f.Damage
}

// String lists the stale categories, or "-" when everything is fresh.
func (f StaleFlags) String() string {
	var names []string
	for c, s := range []bool{f.Session, f.Lap, f.Status, f.Telemetry, f.Damage} {
		if s {
			names = append(names, Category(c).String())
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// Stale computes the staleness of s at session time now.
func (s Snapshot) Stale(ttl TTL, now float64) StaleFlags {
	return StaleFlags{
		Session:   stale(s.Session, ttl.Session, now),
		Lap:       stale(s.Lap, ttl.Lap, now),
		Status:    stale(s.Status, ttl.Status, now),
		Telemetry: stale(s.Telemetry, ttl.Telemetry, now),
		Damage:    stale(s.Damage, ttl.Damage, now),
	}
}
