package models

// Mismatch describes a movie whose stored identifiers differ from the source file.
type Mismatch struct {
	Line   int  `json:"line"`
	Source Link `json:"source"`
	Stored Link `json:"stored"`
}

// VerifyReport compares a links file with the destination table.
type VerifyReport struct {
	Checked    int        `json:"checked"`
	Matched    int        `json:"matched"`
	Invalid    int        `json:"invalid"`
	Missing    []Link     `json:"missing,omitempty"`
	Mismatched []Mismatch `json:"mismatched,omitempty"`
}

// OK reports whether every valid source row is present with identical values.
func (r *VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0
}
