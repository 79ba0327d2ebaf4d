package engineer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ingeniero-f1/ingeniero/engineer/packet"
	"github.com/ingeniero-f1/ingeniero/engineer/state"
)

// Rules supplies detector thresholds, per-key cooldowns and the comms
// throttle. *rules.Config satisfies it.
type Rules interface {
	Threshold(name string, def float64) float64
	Cooldown(name string, def float64) float64
	Throttle() float64
}

// Event keys.
const (
	KeyFuelLow      = "fuel_low"
	KeyPenalty      = "penalty"
	KeyWingDamage   = "wing_damage"
	KeyFormationLap = "formation_lap"
	KeySCDeployed   = "sc_deployed"
	KeyVSCDeployed  = "vsc_deployed"
	KeySCEnding     = "sc_ending"
	KeyVSCEnding    = "vsc_ending"
	KeySCVSCEnding  = "sc_vsc_ending"
	KeySCCleared    = "sc_cleared"
	KeyVSCCleared   = "vsc_cleared"
	KeySCVSCCleared = "sc_vsc_cleared"
)

const (
	scoreFuelCrit = 100
	scoreFuelLow  = 50
)

// Detector evaluates rules against snapshots. It carries the safety car edge
// state between calls, so one Detector must see snapshots in time order.
type Detector struct {
	rules Rules

	lastSC     uint8 // last observed safety car code
	lastActive uint8 // last SC type seen deployed: full or virtual, 0 if none
}

// NewDetector creates a Detector reading thresholds from r.
func NewDetector(r Rules) *Detector {
	return &Detector{rules: r}
}

// Detect returns the candidate events for s. Each rule only looks at the
// categories it needs and stays silent while they are missing.
func (d *Detector) Detect(s state.Snapshot) []Event {
	var events []Event
	if ev, ok := d.fuel(s); ok {
		events = append(events, ev)
	}
	if ev, ok := d.penalty(s); ok {
		events = append(events, ev)
	}
	if ev, ok := d.wing(s); ok {
		events = append(events, ev)
	}
	if ev, ok := d.safetyCar(s); ok {
		events = append(events, ev)
	}
	return events
}

func (d *Detector) fuel(s state.Snapshot) (Event, bool) {
	if !s.Status.Valid {
		return Event{}, false
	}
	rem := float64(s.Status.Value.FuelRemainingLaps)
	cooldown := d.rules.Cooldown(KeyFuelLow, 25)
	data := map[string]any{"fuel_laps": rem}
	switch {
	case rem <= d.rules.Threshold("fuel_rem_laps_critical", 1.0):
		return Event{
			Key:      KeyFuelLow,
			Priority: PriorityImmediateRisk,
			Score:    scoreFuelCrit,
			Urgent:   true,
			Cooldown: cooldown,
			Text:     fmt.Sprintf("Fuel critical: %.2f laps remaining.", rem),
			Data:     data,
		}, true
	case rem <= d.rules.Threshold("fuel_rem_laps_low", 2.0):
		return Event{
			Key:      KeyFuelLow,
			Priority: PriorityManagement,
			Score:    scoreFuelLow,
			Cooldown: cooldown,
			Text:     fmt.Sprintf("Fuel low: %.2f laps remaining. Lift and coast.", rem),
			Data:     data,
		}, true
	}
	return Event{}, false
}

func (d *Detector) penalty(s state.Snapshot) (Event, bool) {
	if !s.Lap.Valid || s.Lap.Value.PenaltiesS == 0 {
		return Event{}, false
	}
	pen := s.Lap.Value.PenaltiesS
	return Event{
		Key:      KeyPenalty,
		Priority: PriorityImmediateRisk,
		Score:    float64(pen),
		Urgent:   true,
		Cooldown: d.rules.Cooldown(KeyPenalty, 30),
		Text:     fmt.Sprintf("Penalty: %d seconds.", pen),
		Data:     map[string]any{"penalty_s": int(pen)},
	}, true
}

func (d *Detector) wing(s state.Snapshot) (Event, bool) {
	if !s.Damage.Valid {
		return Event{}, false
	}
	wing := float64(s.Damage.Value.MaxFrontWing())
	ev := Event{
		Key: KeyWingDamage,
		// Quantized so the same damage does not escalate on every tick.
		Score:    math.Floor(wing/10) * 10,
		Cooldown: d.rules.Cooldown(KeyWingDamage, 30),
		Data:     map[string]any{"wing_pct": wing},
	}
	switch {
	case wing >= d.rules.Threshold("wing_damage_critical_pct", 60):
		ev.Priority = PriorityImmediateRisk
		ev.Urgent = true
		ev.Text = fmt.Sprintf("Front wing badly damaged: %.0f%%. Box this lap.", wing)
	case wing >= d.rules.Threshold("wing_damage_warn_pct", 25):
		ev.Priority = PriorityManagement
		ev.Text = fmt.Sprintf("Front wing damaged: %.0f%%.", wing)
	default:
		return Event{}, false
	}
	return ev, true
}

func scKind(code uint8) string {
	switch code {
	case packet.SafetyCarFull:
		return "SC"
	case packet.SafetyCarVirtual:
		return "VSC"
	}
	return "SC/VSC"
}

func scKey(kind, suffix string) string {
	return strings.ReplaceAll(strings.ToLower(kind), "/", "_") + "_" + suffix
}

// safetyCar emits on safety car code transitions only.
func (d *Detector) safetyCar(s state.Snapshot) (Event, bool) {
	if !s.Session.Valid {
		return Event{}, false
	}
	code := s.Session.Value.SafetyCarStatus
	if code == d.lastSC {
		return Event{}, false
	}
	prev := d.lastSC
	d.lastSC = code

	switch code {
	case packet.SafetyCarFull, packet.SafetyCarVirtual:
		d.lastActive = code
		kind := scKind(code)
		return Event{
			Key:      scKey(kind, "deployed"),
			Priority: PriorityStrategyOpportunity,
			Urgent:   true,
			Cooldown: d.rules.Cooldown("sc_vsc_deployed", 6),
			Text:     fmt.Sprintf("%s deployed. %s", kind, d.pitHint(s, code)),
			Data:     map[string]any{"sc_code": int(code)},
		}, true
	case packet.SafetyCarEnding:
		kind := scKind(d.lastActive)
		return Event{
			Key:      scKey(kind, "ending"),
			Priority: PriorityStrategyOpportunity,
			Urgent:   true,
			Cooldown: d.rules.Cooldown("sc_vsc_ending", 4),
			Text:     fmt.Sprintf("%s ending: prepare for the restart, tyre temperature and delta.", kind),
			Data:     map[string]any{"sc_code": int(code)},
		}, true
	case packet.SafetyCarFormation:
		return Event{
			Key:      KeyFormationLap,
			Priority: PriorityInfo,
			Cooldown: d.rules.Cooldown(KeyFormationLap, 30),
			Text:     "Formation lap.",
		}, true
	case packet.SafetyCarNone:
		if prev < packet.SafetyCarFull || prev > packet.SafetyCarEnding {
			return Event{}, false
		}
		kind := scKind(d.lastActive)
		return Event{
			Key:      scKey(kind, "cleared"),
			Priority: PriorityInfo,
			Cooldown: d.rules.Cooldown("sc_vsc_cleared", 6),
			Text:     fmt.Sprintf("Green track: %s cleared.", kind),
		}, true
	}
	return Event{}, false
}

// pitHint suggests whether a stop under the safety car is worth it, from tyre
// age, tyre wear and front wing damage.
func (d *Detector) pitHint(s state.Snapshot, code uint8) string {
	sc := code == packet.SafetyCarFull
	ageKey, ageDef, wearKey, wearDef := "pit_tyres_age_vsc", 12.0, "pit_wear_vsc", 40.0
	if sc {
		ageKey, ageDef, wearKey, wearDef = "pit_tyres_age_sc", 10.0, "pit_wear_sc", 30.0
	}

	var reasons []string
	if s.Status.Valid {
		age := s.Status.Value.TyreAgeLaps
		if float64(age) >= d.rules.Threshold(ageKey, ageDef) {
			reasons = append(reasons, fmt.Sprintf("tyres %d laps old", age))
		}
	}
	if s.Damage.Valid {
		dm := s.Damage.Value
		if wear := float64(dm.MaxWear()); wear >= d.rules.Threshold(wearKey, wearDef) {
			reasons = append(reasons, fmt.Sprintf("wear %.0f%%", wear))
		}
		if wing := float64(dm.MaxFrontWing()); wing >= d.rules.Threshold("wing_damage_warn_pct", 25) {
			reasons = append(reasons, fmt.Sprintf("front wing %.0f%%", wing))
		}
	}
	if len(reasons) > 0 {
		return "Consider boxing: " + strings.Join(reasons, ", ") + "."
	}
	return fmt.Sprintf("Box if you are near your window; a stop under %s is cheap.", scKind(code))
}
