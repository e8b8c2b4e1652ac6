// Reelguard - LLM-Powered Parental Content Advisory Reports
// Copyright 2026 Reelguard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelguard/reelguard

// Package report drives the end-to-end advisory pipeline and owns the
// validated report cache.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/reelguard/reelguard/internal/config"
	"github.com/reelguard/reelguard/internal/models"
)

// reportKeyPrefix namespaces report records in BadgerDB.
const reportKeyPrefix = "report:"

// ErrStoreMiss is returned by Get when no report exists for the key.
var ErrStoreMiss = errors.New("report not in store")

// Store is the validated report cache, keyed by IMDb ID. Get and Set
// are atomic per key. The orchestrator swallows store failures: a Get
// error degrades to a miss and a Set error to a no-op.
type Store interface {
	Get(ctx context.Context, imdbID string) (*models.Report, error)
	Set(ctx context.Context, imdbID string, report *models.Report) error
	Close() error
}

// BadgerStore implements Store on BadgerDB for durable caching across
// restarts.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the report database.
func NewBadgerStore(cfg config.StoreConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the cached report for an IMDb ID.
func (s *BadgerStore) Get(_ context.Context, imdbID string) (*models.Report, error) {
	var report models.Report

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(reportKeyPrefix + imdbID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStoreMiss
		}
		if err != nil {
			return fmt.Errorf("get report: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

// Set writes the report for an IMDb ID, replacing any previous record.
func (s *BadgerStore) Set(_ context.Context, imdbID string, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(reportKeyPrefix+imdbID), data)
	})
}

// Ping verifies the database still answers reads. Health probes use
// it for readiness; a missing probe key is a healthy answer.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("report store closed")
	}
	return s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(reportKeyPrefix + "ping"))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
