package trace

import "gopkg.in/yaml.v3"

// Summary aggregates statistics from an EngineTrace.
type Summary struct {
	Ticks          int            `yaml:"ticks"`
	Decisions      int            `yaml:"decisions"`
	Candidates     int            `yaml:"candidates"`
	Emitted        int            `yaml:"emitted"`
	Urgent         int            `yaml:"urgent"`
	Throttled      int            `yaml:"throttled"`
	Cooldown       int            `yaml:"cooldown"`
	Discarded      int            `yaml:"discarded,omitempty"`
	EmittedByKey   map[string]int `yaml:"emitted_by_key"`
	CandidateByKey map[string]int `yaml:"candidates_by_key"`
}

// Summarize computes aggregate statistics from an EngineTrace.
// Safe for nil or empty traces.
func Summarize(et *EngineTrace) *Summary {
	s := &Summary{
		EmittedByKey:   make(map[string]int),
		CandidateByKey: make(map[string]int),
	}
	if et == nil {
		return s
	}
	s.Ticks = et.Ticks
	s.Discarded = et.Discarded
	s.Decisions = len(et.Decisions)
	for _, d := range et.Decisions {
		s.Candidates += len(d.Candidates)
		for _, c := range d.Candidates {
			s.CandidateByKey[c.Key]++
		}
		switch d.Outcome {
		case OutcomeUrgent:
			s.Urgent++
		case OutcomeThrottled:
			s.Throttled++
		case OutcomeCooldown:
			s.Cooldown++
		}
		if d.Winner != "" {
			s.Emitted++
			s.EmittedByKey[d.Winner]++
		}
	}
	return s
}

// YAML renders the summary for the end-of-run report.
func (s *Summary) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
