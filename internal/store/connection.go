// Package store wraps badgerhold/badger as the document-store collaborator
// for the versioned data manager: one physical database holding every
// resource type's metadata documents, each type bucketed automatically by
// badgerhold on its Go type name (the "single logical collection,
// discriminated by resource_type" design of spec.md §6.1, realized as
// badgerhold's own type-keyed buckets instead of a manual scan field).
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// Config configures the on-disk location of the metadata document store.
type Config struct {
	Path           string
	ResetOnStartup bool
}

// DB owns the badgerhold connection backing the metadata document store.
type DB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// Open opens (creating if needed) the badgerhold-backed metadata store.
func Open(logger arbor.ILogger, cfg Config) (*DB, error) {
	if cfg.ResetOnStartup {
		if _, err := os.Stat(cfg.Path); err == nil {
			logger.Debug().Str("path", cfg.Path).Msg("deleting existing metadata store (reset_on_startup=true)")
			if err := os.RemoveAll(cfg.Path); err != nil {
				logger.Warn().Err(err).Str("path", cfg.Path).Msg("failed to delete metadata store directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	bh, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("store: open badgerhold: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("metadata document store opened")
	return &DB{store: bh, logger: logger}, nil
}

// Raw exposes the underlying badgerhold store for package-internal
// typed-store wrappers (store.Of[T]).
func (d *DB) Raw() *badgerhold.Store { return d.store }

// Close closes the underlying database connection.
func (d *DB) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}
