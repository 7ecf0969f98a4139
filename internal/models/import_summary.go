package models

import "time"

// Outcome is the fate of a single source row during an import.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeSkipped          // already recorded in the ledger by an earlier run
	OutcomeRejected         // the row did not parse into a link
	OutcomeFailed           // the database refused the write
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImportSummary reports what an import run did with every row it read.
type ImportSummary struct {
	RunID    string        `json:"runId"`
	Source   string        `json:"source"`
	Table    string        `json:"table"`
	Driver   string        `json:"driver"`
	Mode     WriteMode     `json:"mode"`
	DryRun   bool          `json:"dryRun"`
	Read     int           `json:"read"`
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"`
	Rejected int           `json:"rejected"`
	Failed   int           `json:"failed"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Record counts one row under the given outcome.
func (s *ImportSummary) Record(o Outcome) {
	switch o {
	case OutcomeInserted:
		s.Inserted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeFailed:
		s.Failed++
	}
}

// Errors returns the number of rows that were rejected or failed.
func (s *ImportSummary) Errors() int {
	return s.Rejected + s.Failed
}

// ErrorRatio returns the share of rows read so far that were rejected or failed.
func (s *ImportSummary) ErrorRatio() float64 {
	if s.Read == 0 {
		return 0
	}
	return float64(s.Errors()) / float64(s.Read)
}

// Clean reports whether every row read was either written or skipped.
func (s *ImportSummary) Clean() bool {
	return s.Errors() == 0
}
