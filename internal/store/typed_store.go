package store

import (
	"errors"
	"fmt"

	"github.com/timshannon/badgerhold/v4"

	"github.com/mkbabb/words-sub000/internal/coreerrors"
)

// Of is a compile-time-typed view over one resource type's bucket in the
// shared badgerhold store. It is the generics-based realization of the
// "sum type over seven resource types with a shared envelope" called for
// in Design Notes: each resource type gets its own Of[T] instead of the
// orchestrator branching on resource_type at the storage layer.
type Of[T any] struct {
	db *DB
}

// Typed returns a typed store view for resource document type T.
func Typed[T any](db *DB) Of[T] {
	return Of[T]{db: db}
}

// Upsert inserts or replaces the document under key.
func (o Of[T]) Upsert(key string, doc *T) error {
	if err := o.db.Raw().Upsert(key, doc); err != nil {
		return fmt.Errorf("store: upsert: %w: %v", coreerrors.ErrBackend, err)
	}
	return nil
}

// Get fetches the document stored under key.
func (o Of[T]) Get(key string) (*T, error) {
	var doc T
	err := o.db.Raw().Get(key, &doc)
	if err == nil {
		return &doc, nil
	}
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, coreerrors.ErrNotFound
	}
	return nil, fmt.Errorf("store: get: %w: %v", coreerrors.ErrBackend, err)
}

// Find runs a badgerhold query against this resource type's bucket.
func (o Of[T]) Find(query *badgerhold.Query) ([]T, error) {
	var docs []T
	if err := o.db.Raw().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("store: find: %w: %v", coreerrors.ErrBackend, err)
	}
	return docs, nil
}

// FindOne returns the first match for query, or coreerrors.ErrNotFound.
func (o Of[T]) FindOne(query *badgerhold.Query) (*T, error) {
	docs, err := o.Find(query.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, coreerrors.ErrNotFound
	}
	return &docs[0], nil
}

// Delete removes the document stored under key. A missing key is not an
// error: deletion is idempotent.
func (o Of[T]) Delete(key string) error {
	var zero T
	err := o.db.Raw().Delete(key, &zero)
	if err == nil || errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("store: delete: %w: %v", coreerrors.ErrBackend, err)
}

// DeleteMatching removes every document matching query and returns the
// count removed.
func (o Of[T]) DeleteMatching(query *badgerhold.Query) (int, error) {
	docs, err := o.Find(query)
	if err != nil {
		return 0, err
	}
	var zero T
	if err := o.db.Raw().DeleteMatching(&zero, query); err != nil {
		return 0, fmt.Errorf("store: delete matching: %w: %v", coreerrors.ErrBackend, err)
	}
	return len(docs), nil
}
