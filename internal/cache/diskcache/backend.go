// Package diskcache implements the bounded, LRU, TTL-aware disk-backed
// blob store described in spec.md §4.3: the L2 tier of the global cache
// manager. It is backed directly by github.com/dgraph-io/badger/v4 (not
// badgerhold — this tier stores opaque content-addressed bytes, not
// queryable documents). Badger's own SetWithTTL and value-log GC cover the
// TTL-aware and bounded-size requirements; an in-memory access-time index
// (acceptable under the single-writer-process assumption spec.md §1 and
// §5 make explicit) tracks recency for LRU eviction beyond the byte
// budget.
package diskcache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/coreerrors"
)

// Config configures the disk cache's on-disk location and byte budget.
type Config struct {
	Path           string
	MaxBytes       int64 // e.g. 10 GiB; 0 disables the budget check
	ResetOnStartup bool
}

type entryMeta struct {
	size       int64
	lastAccess time.Time
}

// Backend is the bounded-size LRU disk cache.
type Backend struct {
	db       *badger.DB
	logger   arbor.ILogger
	maxBytes int64

	mu         sync.Mutex
	meta       map[string]entryMeta
	totalBytes int64
}

// Open opens (creating if needed) the disk cache's Badger database.
func Open(logger arbor.ILogger, cfg Config) (*Backend, error) {
	if cfg.ResetOnStartup {
		_ = os.RemoveAll(cfg.Path)
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("diskcache: create directory: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("diskcache: open: %w", err)
	}

	return &Backend{
		db:       db,
		logger:   logger,
		maxBytes: cfg.MaxBytes,
		meta:     make(map[string]entryMeta),
	}, nil
}

// Close closes the underlying Badger database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Get returns the blob stored under key, or coreerrors.ErrNotFound if
// absent or expired. An I/O failure distinct from an ordinary miss is
// returned as coreerrors.ErrBackendMiss, per spec.md §4.3.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if err == nil {
		b.touch(key, int64(len(value)))
		return value, nil
	}
	if err == badger.ErrKeyNotFound {
		return nil, coreerrors.ErrNotFound
	}
	return nil, fmt.Errorf("diskcache: get %q: %w: %v", key, coreerrors.ErrBackendMiss, err)
}

// Set writes value under key with an optional TTL (zero means no expiry).
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("diskcache: set %q: %w: %v", key, coreerrors.ErrBackend, err)
	}

	b.mu.Lock()
	if old, ok := b.meta[key]; ok {
		b.totalBytes -= old.size
	}
	b.meta[key] = entryMeta{size: int64(len(value)), lastAccess: time.Now()}
	b.totalBytes += int64(len(value))
	b.mu.Unlock()

	return b.enforceByteBudget(ctx)
}

// Delete removes key from the cache. A missing key is not an error.
func (b *Backend) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && err != badger.ErrKeyNotFound {
		return fmt.Errorf("diskcache: delete %q: %w: %v", key, coreerrors.ErrBackend, err)
	}
	b.mu.Lock()
	if old, ok := b.meta[key]; ok {
		b.totalBytes -= old.size
		delete(b.meta, key)
	}
	b.mu.Unlock()
	return nil
}

// ClearNamespace removes every key whose content-addressed prefix belongs
// to namespace ns (keys are formatted "ns/...").
func (b *Backend) ClearNamespace(ctx context.Context, ns string) error {
	prefix := []byte(ns + "/")
	var keys [][]byte

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().KeyCopy(nil)
			keys = append(keys, k)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("diskcache: scan namespace %q: %w: %v", ns, coreerrors.ErrBackend, err)
	}

	for _, k := range keys {
		if err := b.Delete(ctx, string(k)); err != nil {
			return err
		}
	}
	return nil
}

// SizeBytes returns the total tracked size of cached entries.
func (b *Backend) SizeBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalBytes
}

// Count returns the number of tracked entries.
func (b *Backend) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.meta)
}

func (b *Backend) touch(key string, size int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	meta, ok := b.meta[key]
	if !ok {
		meta = entryMeta{size: size}
		b.totalBytes += size
	}
	meta.lastAccess = time.Now()
	b.meta[key] = meta
}

// enforceByteBudget evicts least-recently-accessed entries until the
// tracked total is under the configured budget.
func (b *Backend) enforceByteBudget(ctx context.Context) error {
	if b.maxBytes <= 0 {
		return nil
	}

	for {
		b.mu.Lock()
		if b.totalBytes <= b.maxBytes || len(b.meta) == 0 {
			b.mu.Unlock()
			return nil
		}
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, m := range b.meta {
			if first || m.lastAccess.Before(oldestTime) {
				oldestKey = k
				oldestTime = m.lastAccess
				first = false
			}
		}
		b.mu.Unlock()

		if oldestKey == "" {
			return nil
		}
		if err := b.Delete(ctx, oldestKey); err != nil {
			return err
		}
		if b.logger != nil {
			b.logger.Debug().Str("key", oldestKey).Msg("diskcache: evicted entry over byte budget")
		}
	}
}

// RunValueLogGC triggers Badger's background value-log garbage
// collection, reclaiming space from deleted/expired entries. It is safe
// to call on a schedule; badger.ErrNoRewrite (nothing to collect) is not
// treated as an error.
func (b *Backend) RunValueLogGC(discardRatio float64) error {
	err := b.db.RunValueLogGC(discardRatio)
	if err != nil && err != badger.ErrNoRewrite {
		return fmt.Errorf("diskcache: value log gc: %w: %v", coreerrors.ErrBackend, err)
	}
	return nil
}
