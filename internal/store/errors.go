package store

import (
	"fmt"
	"strings"
)

// WriteFailure describes one rejected record within a bulk call.
type WriteFailure struct {
	Index     int    // position of the record within the submitted batch
	PatientID string // upsert key of the rejected record
	Code      int    // store error code (11000 is a duplicate key violation)
	Message   string
}

// BulkError aggregates per-record failures from a single bulk write. The
// store applies batches with unordered semantics, so some records in the
// failing batch may have been applied; the counts for that batch are not
// reported because the run halts.
type BulkError struct {
	Failures []WriteFailure
}

// Error summarizes the failure and lists the first few rejected keys so a
// terminating run prints actionable detail.
func (e *BulkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bulk write rejected %d record(s)", len(e.Failures))

	max := len(e.Failures)
	if max > 3 {
		max = 3
	}
	for i := 0; i < max; i++ {
		f := e.Failures[i]
		fmt.Fprintf(&b, "; [%d] patient_id=%s code=%d: %s", f.Index, f.PatientID, f.Code, f.Message)
	}
	if len(e.Failures) > max {
		fmt.Fprintf(&b, "; and %d more", len(e.Failures)-max)
	}
	return b.String()
}
