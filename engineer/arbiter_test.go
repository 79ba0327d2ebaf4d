package engineer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mgmt(key string, cooldown float64) Event {
	return Event{Key: key, Priority: PriorityManagement, Score: 10, Cooldown: cooldown}
}

func TestArbiter_ThrottleBlocksNonUrgent(t *testing.T) {
	// GIVEN a 10s throttle and a MANAGEMENT event emitted at t=100
	a := NewArbiter(10)
	ev, ok := a.Select([]Event{mgmt("fuel_low", 0)}, 100)
	require.True(t, ok)
	a.MarkEmitted(ev, 100)

	// WHEN another MANAGEMENT event arrives at t=105
	_, ok = a.Select([]Event{mgmt("wing_damage", 0)}, 105)

	// THEN it is throttled
	assert.False(t, ok)

	// WHEN it arrives at t=111
	ev, ok = a.Select([]Event{mgmt("wing_damage", 0)}, 111)

	// THEN it is selected
	require.True(t, ok)
	assert.Equal(t, "wing_damage", ev.Key)
}

func TestArbiter_UrgentBypassesThrottle(t *testing.T) {
	// GIVEN a 999s throttle and a non-urgent emission at t=50
	a := NewArbiter(999)
	first := mgmt("fuel_low", 0)
	a.MarkEmitted(first, 50)

	// WHEN an urgent IMMEDIATE_RISK event arrives one second later
	urgent := Event{Key: "penalty", Priority: PriorityImmediateRisk, Score: 5, Urgent: true, Cooldown: 30}
	ev, ok := a.Select([]Event{mgmt("wing_damage", 0), urgent}, 51)

	// THEN it wins despite the throttle
	require.True(t, ok)
	assert.Equal(t, "penalty", ev.Key)
}

func TestArbiter_CooldownPerKey(t *testing.T) {
	tests := []struct {
		name   string
		urgent bool
	}{
		{"non-urgent", false},
		{"urgent without escalation", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN an event with 30s cooldown emitted at t=10 and no throttle
			a := NewArbiter(0)
			ev := Event{Key: "wing_damage", Priority: PriorityManagement, Score: 30, Urgent: tc.urgent, Cooldown: 30}
			a.MarkEmitted(ev, 10)

			// THEN the same key is blocked at t=15
			_, ok := a.Select([]Event{ev}, 15)
			assert.False(t, ok)

			// AND allowed again at t=41
			_, ok = a.Select([]Event{ev}, 41)
			assert.True(t, ok)
		})
	}
}

func TestArbiter_UrgentEscalationOverridesCooldown(t *testing.T) {
	// GIVEN an urgent wing event at score 60 emitted at t=0
	a := NewArbiter(0)
	ev := Event{Key: "wing_damage", Priority: PriorityImmediateRisk, Score: 60, Urgent: true, Cooldown: 30}
	a.MarkEmitted(ev, 0)

	// WHEN the damage worsens inside the cooldown
	worse := ev
	worse.Score = 70
	got, ok := a.Select([]Event{worse}, 5)

	// THEN it re-fires
	require.True(t, ok)
	assert.Equal(t, 70.0, got.Score)
}

func TestArbiter_NonUrgentHasNoEscalation(t *testing.T) {
	a := NewArbiter(0)
	ev := Event{Key: "wing_damage", Priority: PriorityManagement, Score: 30, Cooldown: 30}
	a.MarkEmitted(ev, 0)

	ev.Score = 40
	_, ok := a.Select([]Event{ev}, 5)
	assert.False(t, ok)
}

func TestArbiter_RanksByPriorityThenScore(t *testing.T) {
	a := NewArbiter(0)
	events := []Event{
		{Key: "info", Priority: PriorityInfo, Score: 100},
		{Key: "low", Priority: PriorityManagement, Score: 10},
		{Key: "high", Priority: PriorityManagement, Score: 20},
	}
	ev, ok := a.Select(events, 1)
	require.True(t, ok)
	assert.Equal(t, "high", ev.Key)
	assert.Equal(t, []string{"high", "low", "info"}, []string{events[0].Key, events[1].Key, events[2].Key})
}

func TestArbiter_BlockedUrgentFallsBackToNonUrgent(t *testing.T) {
	// GIVEN an urgent key inside its cooldown and an idle throttle
	a := NewArbiter(5)
	urgent := Event{Key: "penalty", Priority: PriorityImmediateRisk, Score: 5, Urgent: true, Cooldown: 30}
	a.MarkEmitted(urgent, 0)

	// WHEN it is offered again with a non-urgent event after the throttle
	ev, ok := a.Select([]Event{urgent, mgmt("fuel_low", 25)}, 10)

	// THEN the non-urgent event wins
	require.True(t, ok)
	assert.Equal(t, "fuel_low", ev.Key)
}

func TestArbiter_NoCandidates(t *testing.T) {
	_, ok := NewArbiter(0).Select(nil, 1)
	assert.False(t, ok)
}
