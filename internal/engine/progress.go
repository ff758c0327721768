package engine

import (
	"sync"
	"time"
)

// RunPhase indicates the current stage of a migration run.
type RunPhase string

const (
	PhaseIdle      RunPhase = "idle"
	PhaseUpserting RunPhase = "upserting"
	PhaseComplete  RunPhase = "complete"
	PhaseFailed    RunPhase = "failed"
)

// Progress is a point-in-time snapshot of a run, safe to serve over the
// status endpoint while the run is in flight.
type Progress struct {
	RunID        string    `json:"run_id"`
	Phase        RunPhase  `json:"phase"`
	TotalRecords int       `json:"total_records"`
	TotalBatches int       `json:"total_batches"`
	BatchesDone  int       `json:"batches_done"`
	Submitted    int64     `json:"submitted"`
	Matched      int64     `json:"matched"`
	Modified     int64     `json:"modified"`
	Upserted     int64     `json:"upserted"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
}

// Tracker holds the live progress of the current run. All methods are safe
// for concurrent use; the engine writes while the status server reads.
// A nil Tracker is valid and records nothing.
type Tracker struct {
	mu   sync.Mutex
	snap Progress
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{snap: Progress{Phase: PhaseIdle}}
}

// Snapshot returns a copy of the current progress.
func (t *Tracker) Snapshot() Progress {
	if t == nil {
		return Progress{Phase: PhaseIdle}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

func (t *Tracker) start(runID string, records, batches int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Progress{
		RunID:        runID,
		Phase:        PhaseUpserting,
		TotalRecords: records,
		TotalBatches: batches,
		StartedAt:    time.Now().UTC(),
	}
}

func (t *Tracker) advance(res BatchResult) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.BatchesDone++
	t.snap.Submitted += res.Submitted
	t.snap.Matched += res.Matched
	t.snap.Modified += res.Modified
	t.snap.Upserted += res.Upserted
}

func (t *Tracker) complete() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Phase = PhaseComplete
}

func (t *Tracker) fail(err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Phase = PhaseFailed
	if err != nil {
		t.snap.Error = err.Error()
	}
}
