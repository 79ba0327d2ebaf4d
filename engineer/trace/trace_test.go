package trace

import "testing"

func TestEngineTrace_RecordDecision_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	et := NewEngineTrace(Config{Level: LevelDecisions})

	// WHEN a decision is recorded
	et.RecordDecision(DecisionRecord{
		SessionTime: 12.5,
		Candidates:  []CandidateRecord{{Key: "fuel_low", Priority: "MANAGEMENT", Score: 50}},
		Winner:      "fuel_low",
		Outcome:     OutcomeSelected,
	})

	// THEN the trace holds it unchanged
	if len(et.Decisions) != 1 {
		t.Fatalf("expected 1 decision, got %d", len(et.Decisions))
	}
	d := et.Decisions[0]
	if d.SessionTime != 12.5 || d.Winner != "fuel_low" || d.Outcome != OutcomeSelected {
		t.Errorf("unexpected record %+v", d)
	}
}

func TestEngineTrace_LevelNone_RecordsNothing(t *testing.T) {
	et := NewEngineTrace(Config{Level: LevelNone})
	et.RecordDecision(DecisionRecord{Winner: "penalty"})
	et.RecordTick()
	if len(et.Decisions) != 0 {
		t.Errorf("expected no decisions, got %d", len(et.Decisions))
	}
	if et.Ticks != 1 {
		t.Errorf("ticks are counted at every level, got %d", et.Ticks)
	}
}

func TestEngineTrace_NilIsSafe(t *testing.T) {
	var et *EngineTrace
	et.RecordTick()
	et.RecordDecision(DecisionRecord{Winner: "penalty"})
	if et.Enabled() {
		t.Error("nil trace must report disabled")
	}
}

func TestEngineTrace_MaxRecords_KeepsNewest(t *testing.T) {
	// GIVEN a trace bounded to 2 records
	et := NewEngineTrace(Config{Level: LevelDecisions, MaxRecords: 2})

	// WHEN 3 decisions are recorded
	for _, tm := range []float64{1, 2, 3} {
		et.RecordDecision(DecisionRecord{SessionTime: tm})
	}

	// THEN the oldest is discarded
	if len(et.Decisions) != 2 || et.Decisions[0].SessionTime != 2 || et.Decisions[1].SessionTime != 3 {
		t.Errorf("unexpected decisions %+v", et.Decisions)
	}
	if et.Discarded != 1 {
		t.Errorf("expected 1 discarded, got %d", et.Discarded)
	}
}

func TestIsValidLevel(t *testing.T) {
	for _, lvl := range []string{"", "none", "decisions"} {
		if !IsValidLevel(lvl) {
			t.Errorf("expected %q to be valid", lvl)
		}
	}
	if IsValidLevel("verbose") {
		t.Error("expected \"verbose\" to be invalid")
	}
}
