// Package engine implements the batched, idempotent upsert pipeline.
//
// Mapped documents are partitioned into fixed-size batches and applied one
// batch at a time through an Upserter. Each batch is submitted as a single
// unordered bulk call: one record's failure does not prevent the others in
// the batch from being applied, but any batch-level failure halts the run
// (fail-fast), since silently loading part of a dataset is worse than
// stopping. Re-running the engine over an unchanged dataset inserts
// nothing new; every document is matched by its stable patient_id.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carelake/patientload/internal/patient"
	"github.com/google/uuid"
)

// DefaultBatchSize is used when no batch size is configured.
const DefaultBatchSize = 1000

// BatchResult reports the store outcome of one bulk upsert call.
type BatchResult struct {
	Submitted int64 `json:"submitted"`
	Matched   int64 `json:"matched"`
	Modified  int64 `json:"modified"`
	Upserted  int64 `json:"upserted"`
}

// RunSummary aggregates outcomes across all batches of a run.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Skipped   int           `json:"skipped"`
	Batches   int           `json:"batches"`
	Submitted int64         `json:"submitted"`
	Matched   int64         `json:"matched"`
	Modified  int64         `json:"modified"`
	Upserted  int64         `json:"upserted"`
	Duration  time.Duration `json:"duration"`
}

// Upserter applies one batch of documents as a single unordered bulk call,
// inserting documents whose key is absent and overwriting all fields except
// created_at for documents whose key already exists.
type Upserter interface {
	BulkUpsert(ctx context.Context, docs []*patient.Document) (BatchResult, error)
}

// Engine drives the sequential batch upsert of a mapped dataset.
type Engine struct {
	store     Upserter
	batchSize int
	log       *slog.Logger
	tracker   *Tracker
}

// New creates an Engine. A nil tracker disables progress snapshots; a
// non-positive batch size falls back to DefaultBatchSize.
func New(store Upserter, batchSize int, log *slog.Logger, tracker *Tracker) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:     store,
		batchSize: batchSize,
		log:       log,
		tracker:   tracker,
	}
}

// Run partitions docs into batches and applies them strictly sequentially.
//
// Documents with an empty patient_id are skipped, not submitted. A store
// failure stops the run immediately; batches applied before the failure
// stay committed (there is no cross-batch transaction). Cancellation is
// honored between batches only: a submitted batch runs to completion.
// The returned summary covers everything applied before any error.
func (e *Engine) Run(ctx context.Context, docs []*patient.Document) (*RunSummary, error) {
	start := time.Now()
	summary := &RunSummary{
		RunID: uuid.NewString(),
		Total: len(docs),
	}

	log := e.log.With("run_id", summary.RunID)
	batches := Partition(docs, e.batchSize)
	e.tracker.start(summary.RunID, len(docs), len(batches))

	log.Info("run starting",
		"records", len(docs),
		"batches", len(batches),
		"batch_size", e.batchSize,
	)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			e.tracker.fail(err)
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("run cancelled before batch %d/%d: %w", i+1, len(batches), err)
		}

		submit := make([]*patient.Document, 0, len(batch))
		for _, doc := range batch {
			// An empty key would make the upsert filter match arbitrary
			// documents.
			if doc.PatientID == "" {
				summary.Skipped++
				continue
			}
			submit = append(submit, doc)
		}

		if len(submit) == 0 {
			continue
		}

		batchStart := time.Now()
		res, err := e.store.BulkUpsert(ctx, submit)
		if err != nil {
			e.tracker.fail(err)
			summary.Duration = time.Since(start)
			return summary, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}

		summary.Batches++
		summary.Submitted += res.Submitted
		summary.Matched += res.Matched
		summary.Modified += res.Modified
		summary.Upserted += res.Upserted
		e.tracker.advance(res)

		log.Info("batch applied",
			"batch", i+1,
			"of", len(batches),
			"ops", res.Submitted,
			"matched", res.Matched,
			"modified", res.Modified,
			"upserted", res.Upserted,
			"duration_ms", time.Since(batchStart).Milliseconds(),
		)
	}

	summary.Duration = time.Since(start)
	e.tracker.complete()

	log.Info("run complete",
		"processed", summary.Submitted,
		"of", summary.Total,
		"skipped", summary.Skipped,
		"upserted", summary.Upserted,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return summary, nil
}
