// Command waitstore blocks until the document store is ready: a
// successful ping, and optionally a minimum number of documents in the
// destination collection. Intended as a container healthcheck or a
// depends-on gate before the migration runs.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/carelake/patientload/internal/config"
	"github.com/carelake/patientload/internal/logging"
	"github.com/carelake/patientload/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Flags override the environment-derived defaults.
	timeout := flag.Duration("timeout", cfg.Wait.Timeout, "total time to wait for readiness")
	interval := flag.Duration("interval", cfg.Wait.Interval, "delay between probe attempts")
	checkData := flag.Bool("check-data", false, "also wait for a minimum document count")
	minDocs := flag.Int64("min-docs", cfg.Wait.MinDocs, "minimum document count for -check-data")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		// Connect itself can fail while the server is still starting,
		// so retry the whole acquisition until the deadline.
		st, err = reconnect(ctx, cfg.Mongo, *interval)
		if err != nil {
			slog.Error("store not reachable", "timeout", timeout.String(), "error", err)
			return 1
		}
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = st.Close(closeCtx)
	}()

	if err := st.WaitForPing(ctx, *timeout, *interval); err != nil {
		slog.Error("store not ready", "error", err)
		return 1
	}
	slog.Info("store reachable", "database", cfg.Mongo.Database)

	if *checkData {
		n, err := st.WaitForCount(ctx, *minDocs, *timeout, *interval)
		if err != nil {
			slog.Error("data not ready", "count", n, "min", *minDocs, "error", err)
			return 1
		}
		slog.Info("data ready", "collection", cfg.Mongo.Collection, "count", n)
	}

	return 0
}

// reconnect retries store acquisition until ctx expires.
func reconnect(ctx context.Context, cfg config.MongoConfig, interval time.Duration) (*store.Store, error) {
	for {
		st, err := store.Connect(ctx, cfg)
		if err == nil {
			return st, nil
		}
		slog.Debug("connect attempt failed", "error", err)

		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(interval):
		}
	}
}
