package engineer

import "fmt"

// Priority ranks events. Compare priorities with ComparePriority; the
// underlying ordering is not part of the API.
type Priority struct {
	rank uint8
}

var (
	PriorityInfo                = Priority{1}
	PriorityContext             = Priority{2}
	PriorityManagement          = Priority{3}
	PriorityStrategyOpportunity = Priority{4}
	PriorityImmediateRisk       = Priority{5}
)

var priorityNames = map[Priority]string{
	PriorityInfo:                "INFO",
	PriorityContext:             "CONTEXT",
	PriorityManagement:          "MANAGEMENT",
	PriorityStrategyOpportunity: "STRATEGY_OPPORTUNITY",
	PriorityImmediateRisk:       "IMMEDIATE_RISK",
}

// ComparePriority returns -1 if a ranks below b, +1 if above, 0 if equal.
func ComparePriority(a, b Priority) int {
	switch {
	case a.rank < b.rank:
		return -1
	case a.rank > b.rank:
		return 1
	}
	return 0
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", p.rank)
}

// Event is one advisory candidate produced by the Detector.
type Event struct {
	// Key identifies the rule. Cooldowns and escalation are tracked per key.
	Key      string
	Priority Priority
	// Score breaks ties within a priority; for urgent events a higher score
	// than the last emitted one re-fires inside the cooldown.
	Score float64
	// Urgent events bypass the global throttle.
	Urgent   bool
	Cooldown float64 // seconds
	Text     string
	Data     map[string]any
}
