package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carelake/patientload/internal/config"
	"github.com/carelake/patientload/internal/csvfile"
	"github.com/carelake/patientload/internal/engine"
	"github.com/carelake/patientload/internal/logging"
	"github.com/carelake/patientload/internal/patient"
	"github.com/carelake/patientload/internal/store"
	"github.com/carelake/patientload/internal/web"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"dataset", cfg.Dataset.Path,
		"database", cfg.Mongo.Database,
		"collection", cfg.Mongo.Collection,
		"batch_size", cfg.Load.BatchSize,
		"status_enabled", cfg.Status.Enabled,
	)

	// Cancel between batches on SIGINT/SIGTERM; an in-flight batch
	// still runs to completion.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the document store
	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			slog.Warn("store close error", "error", err)
		}
	}()

	slog.Info("connected to store",
		"database", cfg.Mongo.Database,
		"collection", cfg.Mongo.Collection,
	)

	if err := st.EnsureIndexes(ctx); err != nil {
		slog.Error("failed to ensure indexes", "error", err)
		return 1
	}

	// Read and map the dataset before touching the collection, so a
	// malformed file fails the run without any partial writes.
	records, err := csvfile.Read(cfg.Dataset.Path)
	if err != nil {
		slog.Error("failed to read dataset", "error", err)
		return 1
	}
	slog.Info("dataset read", "records", len(records))

	now := time.Now().UTC()
	docs := make([]*patient.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, patient.MapRecord(rec, now))
	}

	tracker := engine.NewTracker()

	// Optional status server for the duration of the run
	if cfg.Status.Enabled {
		server := web.NewServer(cfg.Status, tracker, st)
		go func() {
			slog.Info("status server starting", "addr", cfg.Status.Addr())
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Warn("status server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Status.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Warn("status server shutdown error", "error", err)
			}
		}()
	}

	runLog := logging.WithFields(ctx,
		"database", cfg.Mongo.Database,
		"collection", cfg.Mongo.Collection,
	)
	eng := engine.New(st, cfg.Load.BatchSize, runLog, tracker)
	summary, err := eng.Run(ctx, docs)
	if err != nil {
		var bulkErr *store.BulkError
		if errors.As(err, &bulkErr) {
			for _, f := range bulkErr.Failures {
				slog.Error("write failure",
					"patient_id", f.PatientID,
					"code", f.Code,
					"message", f.Message,
				)
			}
		}
		slog.Error("run failed",
			"run_id", summary.RunID,
			"batches_applied", summary.Batches,
			"upserted", summary.Upserted,
			"error", err,
		)
		return 1
	}

	slog.Info("migration complete",
		"run_id", summary.RunID,
		"records", summary.Total,
		"skipped", summary.Skipped,
		"batches", summary.Batches,
		"matched", summary.Matched,
		"modified", summary.Modified,
		"upserted", summary.Upserted,
		"duration", summary.Duration.Round(time.Millisecond).String(),
	)
	return 0
}
