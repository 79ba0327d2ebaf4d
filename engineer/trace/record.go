package trace

// Outcome names why a tick did or did not emit.
type Outcome string

const (
	OutcomeUrgent    Outcome = "urgent"    // urgent event bypassed the throttle
	OutcomeSelected  Outcome = "selected"  // non-urgent event emitted
	OutcomeThrottled Outcome = "throttled" // global throttle still running
	OutcomeCooldown  Outcome = "cooldown"  // every candidate inside its cooldown
)

// CandidateRecord captures one event offered to the arbiter.
type CandidateRecord struct {
	Key      string
	Priority string
	Score    float64
	Urgent   bool
}

// DecisionRecord captures one arbitration. Candidates are in ranked order.
type DecisionRecord struct {
	SessionTime float64
	Candidates  []CandidateRecord
	Winner      string // key of the emitted event, empty when none
	Outcome     Outcome
}
