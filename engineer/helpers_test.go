package engineer

import (
	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
)

// fakeRules serves fixed values and falls back to the caller's default.
type fakeRules struct {
	throttle   float64
	cooldowns  map[string]float64
	thresholds map[string]float64
}

func (r fakeRules) Throttle() float64 { return r.throttle }

func (r fakeRules) Cooldown(name string, def float64) float64 {
	if v, ok := r.cooldowns[name]; ok {
		return v
	}
	return def
}

func (r fakeRules) Threshold(name string, def float64) float64 {
	if v, ok := r.thresholds[name]; ok {
		return v
	}
	return def
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Emit(ev Event) { s.events = append(s.events, ev) }

func withSession(s state.Snapshot, t float64, sc uint8) state.Snapshot {
	s.Session = state.TimedValue[packet.SessionInfo]{Value: packet.SessionInfo{SafetyCarStatus: sc}, Time: t, Valid: true}
	s.LatestSessionTime = max(s.LatestSessionTime, t)
	return s
}

func withStatus(s state.Snapshot, t float64, st packet.PlayerStatus) state.Snapshot {
	s.Status = state.TimedValue[packet.PlayerStatus]{Value: st, Time: t, Valid: true}
	s.LatestSessionTime = max(s.LatestSessionTime, t)
	return s
}

func withLap(s state.Snapshot, t float64, l packet.PlayerLap) state.Snapshot {
	s.Lap = state.TimedValue[packet.PlayerLap]{Value: l, Time: t, Valid: true}
	s.LatestSessionTime = max(s.LatestSessionTime, t)
	return s
}

func withDamage(s state.Snapshot, t float64, d packet.PlayerDamage) state.Snapshot {
	s.Damage = state.TimedValue[packet.PlayerDamage]{Value: d, Time: t, Valid: true}
	s.LatestSessionTime = max(s.LatestSessionTime, t)
	return s
}

func empty() state.Snapshot {
	return state.Snapshot{LatestSessionTime: -1}
}
