package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	s := Summarize(NewEngineTrace(Config{Level: LevelDecisions}))
	assert.Zero(t, s.Ticks)
	assert.Zero(t, s.Emitted)
	assert.Empty(t, s.EmittedByKey)

	assert.NotNil(t, Summarize(nil).EmittedByKey)
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with emitted and suppressed decisions
	et := NewEngineTrace(Config{Level: LevelDecisions})
	for i := 0; i < 5; i++ {
		et.RecordTick()
	}
	et.RecordDecision(DecisionRecord{
		Candidates: []CandidateRecord{{Key: "penalty", Urgent: true}, {Key: "fuel_low"}},
		Winner:     "penalty",
		Outcome:    OutcomeUrgent,
	})
	et.RecordDecision(DecisionRecord{
		Candidates: []CandidateRecord{{Key: "fuel_low"}},
		Outcome:    OutcomeThrottled,
	})
	et.RecordDecision(DecisionRecord{
		Candidates: []CandidateRecord{{Key: "fuel_low"}},
		Winner:     "fuel_low",
		Outcome:    OutcomeSelected,
	})

	// WHEN summarized
	s := Summarize(et)

	// THEN counts match
	assert.Equal(t, 5, s.Ticks)
	assert.Equal(t, 3, s.Decisions)
	assert.Equal(t, 4, s.Candidates)
	assert.Equal(t, 2, s.Emitted)
	assert.Equal(t, 1, s.Urgent)
	assert.Equal(t, 1, s.Throttled)
	assert.Equal(t, map[string]int{"penalty": 1, "fuel_low": 1}, s.EmittedByKey)
	assert.Equal(t, 3, s.CandidateByKey["fuel_low"])
}

func TestSummary_YAML(t *testing.T) {
	et := NewEngineTrace(Config{Level: LevelDecisions})
	et.RecordDecision(DecisionRecord{Candidates: []CandidateRecord{{Key: "penalty"}}, Winner: "penalty", Outcome: OutcomeUrgent})

	out, err := Summarize(et).YAML()
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, 1, back["emitted"])
	assert.NotContains(t, back, "discarded")
}
