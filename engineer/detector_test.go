package engineer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/rules"
)

func TestDetector_EmptySnapshot_NoEvents(t *testing.T) {
	d := NewDetector(rules.Default())
	assert.Empty(t, d.Detect(empty()))
}

func TestDetector_SafetyCarSequence(t *testing.T) {
	// GIVEN codes 0 → 1 → 4 → 0
	d := NewDetector(rules.Default())
	var texts, keys []string
	for i, code := range []uint8{0, 1, 4, 0} {
		for _, ev := range d.Detect(withSession(empty(), float64(i), code)) {
			texts = append(texts, ev.Text)
			keys = append(keys, ev.Key)
		}
	}

	// THEN deployed, ending and cleared fire in order, all naming the SC
	require.Len(t, texts, 3)
	assert.Contains(t, texts[0], "SC deployed")
	assert.Contains(t, texts[1], "SC ending")
	assert.Contains(t, texts[2], "SC cleared")
	assert.Equal(t, []string{KeySCDeployed, KeySCEnding, KeySCCleared}, keys)
}

func TestDetector_VirtualSafetyCarRememberedThroughEnding(t *testing.T) {
	d := NewDetector(rules.Default())
	var events []Event
	for i, code := range []uint8{2, 4, 0} {
		events = append(events, d.Detect(withSession(empty(), float64(i), code))...)
	}
	require.Len(t, events, 3)
	assert.Equal(t, KeyVSCDeployed, events[0].Key)
	assert.Equal(t, KeyVSCEnding, events[1].Key)
	assert.Equal(t, "VSC ending: prepare for the restart, tyre temperature and delta.", events[1].Text)
	assert.Equal(t, KeyVSCCleared, events[2].Key)
	assert.Equal(t, "Green track: VSC cleared.", events[2].Text)
}

func TestDetector_SafetyCarTransitions(t *testing.T) {
	tests := []struct {
		name     string
		codes    []uint8
		wantKeys []string
		wantPrio []Priority
	}{
		{
			name:     "held code emits once",
			codes:    []uint8{1, 1, 1},
			wantKeys: []string{KeySCDeployed},
			wantPrio: []Priority{PriorityStrategyOpportunity},
		},
		{
			name:     "formation then green without active type",
			codes:    []uint8{3, 0},
			wantKeys: []string{KeyFormationLap, KeySCVSCCleared},
			wantPrio: []Priority{PriorityInfo, PriorityInfo},
		},
		{
			name:     "ending without deployment",
			codes:    []uint8{4},
			wantKeys: []string{KeySCVSCEnding},
			wantPrio: []Priority{PriorityStrategyOpportunity},
		},
		{
			name:     "SC replaced by VSC",
			codes:    []uint8{1, 2, 0},
			wantKeys: []string{KeySCDeployed, KeyVSCDeployed, KeyVSCCleared},
			wantPrio: []Priority{PriorityStrategyOpportunity, PriorityStrategyOpportunity, PriorityInfo},
		},
		{
			name:     "green stays silent",
			codes:    []uint8{0, 0},
			wantKeys: nil,
		},
		{
			name:     "unknown code is ignored",
			codes:    []uint8{7, 0},
			wantKeys: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(rules.Default())
			var keys []string
			var prios []Priority
			for i, code := range tc.codes {
				for _, ev := range d.Detect(withSession(empty(), float64(i), code)) {
					keys = append(keys, ev.Key)
					prios = append(prios, ev.Priority)
				}
			}
			assert.Equal(t, tc.wantKeys, keys)
			if tc.wantPrio != nil {
				assert.Equal(t, tc.wantPrio, prios)
			}
		})
	}
}

func TestDetector_SafetyCarUrgency(t *testing.T) {
	d := NewDetector(rules.Default())
	deployed := d.Detect(withSession(empty(), 1, packet.SafetyCarFull))
	require.Len(t, deployed, 1)
	assert.True(t, deployed[0].Urgent)
	assert.Equal(t, 6.0, deployed[0].Cooldown)

	cleared := d.Detect(withSession(empty(), 2, packet.SafetyCarNone))
	require.Len(t, cleared, 1)
	assert.False(t, cleared[0].Urgent)
}

func TestDetector_PitHint(t *testing.T) {
	// GIVEN old tyres and a damaged wing when the SC comes out
	d := NewDetector(rules.Default())
	s := withSession(empty(), 1, packet.SafetyCarFull)
	s = withStatus(s, 1, packet.PlayerStatus{TyreAgeLaps: 14, FuelRemainingLaps: 10})
	s = withDamage(s, 1, packet.PlayerDamage{TyresWear: [4]float32{10, 12, 35, 20}, FrontLeftWing: 20})

	// WHEN detected
	events := d.Detect(s)

	// THEN the hint lists tyre age and wear but not the wing below its warn level
	require.Len(t, events, 1)
	assert.Equal(t, "SC deployed. Consider boxing: tyres 14 laps old, wear 35%.", events[0].Text)
}

func TestDetector_PitHint_VSCThresholdsAreHigher(t *testing.T) {
	d := NewDetector(rules.Default())
	s := withSession(empty(), 1, packet.SafetyCarVirtual)
	s = withStatus(s, 1, packet.PlayerStatus{TyreAgeLaps: 11, FuelRemainingLaps: 10})

	events := d.Detect(s)
	require.Len(t, events, 1)
	assert.Equal(t, "VSC deployed. Box if you are near your window; a stop under VSC is cheap.", events[0].Text)
}

func TestDetector_Fuel(t *testing.T) {
	tests := []struct {
		name       string
		laps       float32
		want       bool
		wantPrio   Priority
		wantUrgent bool
		wantScore  float64
	}{
		{"critical", 0.8, true, PriorityImmediateRisk, true, 100},
		{"critical boundary", 1.0, true, PriorityImmediateRisk, true, 100},
		{"low", 1.5, true, PriorityManagement, false, 50},
		{"low boundary", 2.0, true, PriorityManagement, false, 50},
		{"enough", 3.2, false, Priority{}, false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(rules.Default())
			events := d.Detect(withStatus(empty(), 1, packet.PlayerStatus{FuelRemainingLaps: tc.laps}))
			if !tc.want {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			ev := events[0]
			assert.Equal(t, KeyFuelLow, ev.Key)
			assert.Equal(t, tc.wantPrio, ev.Priority)
			assert.Equal(t, tc.wantUrgent, ev.Urgent)
			assert.Equal(t, tc.wantScore, ev.Score)
			assert.Equal(t, 25.0, ev.Cooldown)
		})
	}
}

func TestDetector_Penalty(t *testing.T) {
	d := NewDetector(rules.Default())
	assert.Empty(t, d.Detect(withLap(empty(), 1, packet.PlayerLap{PenaltiesS: 0})))

	events := d.Detect(withLap(empty(), 2, packet.PlayerLap{PenaltiesS: 5}))
	require.Len(t, events, 1)
	assert.Equal(t, KeyPenalty, events[0].Key)
	assert.Equal(t, PriorityImmediateRisk, events[0].Priority)
	assert.True(t, events[0].Urgent)
	assert.Equal(t, 5.0, events[0].Score)
	assert.Equal(t, "Penalty: 5 seconds.", events[0].Text)
}

func TestDetector_WingDamage(t *testing.T) {
	tests := []struct {
		name       string
		fl, fr     uint8
		want       bool
		wantPrio   Priority
		wantUrgent bool
		wantScore  float64
	}{
		{"clean", 5, 10, false, Priority{}, false, 0},
		{"warn from right", 10, 37, true, PriorityManagement, false, 30},
		{"warn boundary", 25, 0, true, PriorityManagement, false, 20},
		{"critical", 65, 40, true, PriorityImmediateRisk, true, 60},
		{"critical heavy", 88, 77, true, PriorityImmediateRisk, true, 80},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(rules.Default())
			events := d.Detect(withDamage(empty(), 1, packet.PlayerDamage{FrontLeftWing: tc.fl, FrontRightWing: tc.fr}))
			if !tc.want {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, KeyWingDamage, events[0].Key)
			assert.Equal(t, tc.wantPrio, events[0].Priority)
			assert.Equal(t, tc.wantUrgent, events[0].Urgent)
			assert.Equal(t, tc.wantScore, events[0].Score)
		})
	}
}

func TestDetector_UsesConfiguredThresholds(t *testing.T) {
	r := fakeRules{
		thresholds: map[string]float64{"wing_damage_warn_pct": 5, "wing_damage_critical_pct": 15},
		cooldowns:  map[string]float64{KeyWingDamage: 3},
	}
	d := NewDetector(r)
	events := d.Detect(withDamage(empty(), 1, packet.PlayerDamage{FrontLeftWing: 16}))
	require.Len(t, events, 1)
	assert.True(t, events[0].Urgent)
	assert.Equal(t, 3.0, events[0].Cooldown)
}
