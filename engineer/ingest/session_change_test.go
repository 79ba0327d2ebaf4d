package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingeniero-f1/ingeniero/engineer"
	"github.com/ingeniero-f1/ingeniero/engineer/internal/testutil"
	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/rules"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
	"github.com/ingeniero-f1/ingeniero/engineer/stats"
)

type collectSink struct {
	events []engineer.Event
}

func (s *collectSink) Emit(ev engineer.Event) { s.events = append(s.events, ev) }

func TestSessionChange_EngineKeepsAdvising(t *testing.T) {
	// GIVEN a dispatcher feeding a cache read by the engine
	cache := state.New(state.DefaultTTL())
	d := NewDispatcher(expected, cache, stats.New())
	sink := &collectSink{}
	eng := engineer.NewEngine(rules.Default(), sink)
	tick := func() (engineer.Event, bool) {
		s := cache.Snapshot()
		return eng.Tick(s, s.LatestSessionTime)
	}

	// AND a long first session that ends under a safety car with a penalty
	const sessionA, sessionB = 0xA, 0xB
	require.True(t, d.Handle(testutil.WithSessionUID(
		testutil.SessionPacket(3000, testutil.SessionFields{TotalLaps: 50, SafetyCar: packet.SafetyCarFull}), sessionA)))
	require.True(t, d.Handle(testutil.WithSessionUID(
		testutil.LapPacket(3000, 0, testutil.LapFields{LapNum: 20, PenaltiesS: 5}), sessionA)))
	ev, ok := tick()
	require.True(t, ok)
	assert.Equal(t, engineer.KeyPenalty, ev.Key)

	// WHEN the next session starts with its clock near zero and a new penalty
	require.True(t, d.Handle(testutil.WithSessionUID(
		testutil.SessionPacket(10, testutil.SessionFields{TotalLaps: 50, SafetyCar: packet.SafetyCarNone}), sessionB)))
	require.True(t, d.Handle(testutil.WithSessionUID(
		testutil.LapPacket(10, 0, testutil.LapFields{LapNum: 1, PenaltiesS: 10}), sessionB)))
	require.Equal(t, 10.0, cache.Snapshot().LatestSessionTime)
	ev, ok = tick()

	// THEN the penalty of the new session is announced
	require.True(t, ok, "engine must not stay silent after a session change")
	assert.Equal(t, engineer.KeyPenalty, ev.Key)
	assert.Equal(t, 10.0, ev.Score)

	// AND the previous session's safety car does not produce a green-track call
	for _, ev := range sink.events {
		assert.NotContains(t, ev.Key, "cleared")
	}
}
