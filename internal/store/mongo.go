// Package store wraps the MongoDB client for the patient collection: scoped
// connection acquisition, readiness probing, index bookkeeping, and the
// bulk upsert primitive the engine writes through.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carelake/patientload/internal/config"
)

// Store is a handle on the destination collection. Acquire it once with
// Connect and release it with Close on every exit path.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect establishes a client against the configured database and returns
// a Store bound to the destination collection. Server selection is bounded
// by the configured timeout; the connection is verified with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URIString()).
		SetServerSelectionTimeout(cfg.SelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.D{})
}

// WaitForPing polls the server until a ping succeeds or the timeout
// elapses. Returns the last ping error on timeout.
func (s *Store) WaitForPing(ctx context.Context, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error

	for time.Now().Before(deadline) {
		if err := s.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("store not ready after %s: %w", timeout, lastErr)
}

// WaitForCount polls the collection until it holds at least min documents
// or the timeout elapses. Returns the observed count.
func (s *Store) WaitForCount(ctx context.Context, min int64, timeout, interval time.Duration) (int64, error) {
	deadline := time.Now().Add(timeout)
	var last int64

	for time.Now().Before(deadline) {
		n, err := s.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count documents: %w", err)
		}
		if n >= min {
			return n, nil
		}
		last = n

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}

	return last, fmt.Errorf("collection has %d document(s), expected >= %d after %s", last, min, timeout)
}

// EnsureIndexes creates the unique key index and the secondary lookup
// indexes. Index creation is idempotent on the server side, so calling
// this before every run is safe.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "patient_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "name.normalized", Value: 1}}},
		{Keys: bson.D{{Key: "medical_condition", Value: 1}}},
		{Keys: bson.D{{Key: "admission.date", Value: 1}}},
	}

	if _, err := s.coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}
