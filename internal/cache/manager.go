package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/coreerrors"
	"github.com/mkbabb/words-sub000/internal/workers"
)

// Stats is an immutable snapshot of one namespace's cache health, matching
// spec.md §4.4's required {hits, misses, evictions} triple. A Stats value
// is built fresh from the tier's atomic counters on every Health call
// rather than handed out as a pointer into live, mutating state.
type Stats struct {
	Namespace       string
	MemoryItems     int
	MemoryHits      int64
	MemoryMisses    int64
	MemoryEvictions int64
	DiskHits        int64
	DiskMisses      int64
	DiskSizeBytes   int64
}

type namespaceTier struct {
	policy NamespacePolicy
	memory *lru.LRU[string, []byte]

	hitsMemory   atomic.Int64
	hitsDisk     atomic.Int64
	missesMemory atomic.Int64
	missesDisk   atomic.Int64
	evictions    atomic.Int64
}

// Manager is the two-tier cache: an L1 per namespace backed by a shared L2
// disk cache, satisfying every read/write/invalidate path in spec.md §4.3.
type Manager struct {
	disk     *diskcache.Backend
	pool     *workers.Pool
	logger   arbor.ILogger
	policies map[string]NamespacePolicy

	mu   sync.Mutex
	tier map[string]*namespaceTier
}

// NewManager constructs a two-tier cache manager over an already-open disk
// backend, using policies (or DefaultPolicies if nil) to size each
// namespace's L1 tier. pool, when non-nil, offloads every L2 disk call
// onto the worker pool's goroutines via workers.Call, per spec.md §4.3's
// "async wrappers that offload to a dedicated thread"; a nil pool runs
// disk I/O inline on the caller's goroutine, which test helpers that don't
// need a live pool rely on.
func NewManager(disk *diskcache.Backend, pool *workers.Pool, logger arbor.ILogger, policies map[string]NamespacePolicy) *Manager {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Manager{
		disk:     disk,
		pool:     pool,
		logger:   logger,
		policies: policies,
		tier:     make(map[string]*namespaceTier),
	}
}

// diskGet reads fullKey from the disk backend, offloading through the
// worker pool when one is configured.
func (m *Manager) diskGet(ctx context.Context, fullKey string) ([]byte, error) {
	if m.pool == nil {
		return m.disk.Get(ctx, fullKey)
	}
	return workers.Call(ctx, m.pool, func(ctx context.Context) ([]byte, error) {
		return m.disk.Get(ctx, fullKey)
	})
}

// diskSet writes value under fullKey on the disk backend, offloading
// through the worker pool when one is configured.
func (m *Manager) diskSet(ctx context.Context, fullKey string, value []byte, ttl time.Duration) error {
	if m.pool == nil {
		return m.disk.Set(ctx, fullKey, value, ttl)
	}
	_, err := workers.Call(ctx, m.pool, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.disk.Set(ctx, fullKey, value, ttl)
	})
	return err
}

func (m *Manager) tierFor(namespace string) *namespaceTier {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tier[namespace]; ok {
		return t
	}

	policy, ok := m.policies[namespace]
	if !ok {
		policy = NamespacePolicy{Namespace: namespace, MemoryItems: 128, MemoryTTL: 10 * time.Minute, WriteThrough: true}
	}

	ttl := policy.MemoryTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	t := &namespaceTier{policy: policy}
	t.memory = lru.NewLRU[string, []byte](policy.MemoryItems, func(string, []byte) {
		t.evictions.Add(1)
	}, ttl)
	m.tier[namespace] = t
	return t
}

// Get reads key from namespace, checking L1 then falling back to L2 and
// repopulating L1 on a disk hit. coreerrors.ErrNotFound is returned when
// neither tier has the key.
func (m *Manager) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	t := m.tierFor(namespace)
	fullKey := namespace + "/" + key

	if v, ok := t.memory.Get(key); ok {
		t.hitsMemory.Add(1)
		return v, nil
	}
	t.missesMemory.Add(1)

	v, err := m.diskGet(ctx, fullKey)
	if err == nil {
		t.hitsDisk.Add(1)
		t.memory.Add(key, v)
		return v, nil
	}
	t.missesDisk.Add(1)

	if err == coreerrors.ErrNotFound {
		return nil, coreerrors.ErrNotFound
	}
	return nil, err
}

// Set writes key into L1 and, for write-through namespaces, L2 as well.
func (m *Manager) Set(ctx context.Context, namespace, key string, value []byte) error {
	t := m.tierFor(namespace)
	t.memory.Add(key, value)

	if !t.policy.WriteThrough {
		return nil
	}
	fullKey := namespace + "/" + key
	if err := m.diskSet(ctx, fullKey, value, t.policy.DiskTTL); err != nil {
		return fmt.Errorf("cache: write-through to disk: %w", err)
	}
	return nil
}

// Invalidate removes key from both tiers.
func (m *Manager) Invalidate(ctx context.Context, namespace, key string) error {
	t := m.tierFor(namespace)
	t.memory.Remove(key)
	return m.disk.Delete(ctx, namespace+"/"+key)
}

// InvalidateNamespace clears a namespace's L1 and L2 entirely.
func (m *Manager) InvalidateNamespace(ctx context.Context, namespace string) error {
	t := m.tierFor(namespace)
	t.memory.Purge()
	return m.disk.ClearNamespace(ctx, namespace)
}

// Health returns a snapshot of every namespace touched so far.
func (m *Manager) Health() []Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Stats, 0, len(m.tier))
	for ns, t := range m.tier {
		out = append(out, Stats{
			Namespace:       ns,
			MemoryItems:     t.memory.Len(),
			MemoryHits:      t.hitsMemory.Load(),
			MemoryMisses:    t.missesMemory.Load(),
			MemoryEvictions: t.evictions.Load(),
			DiskHits:        t.hitsDisk.Load(),
			DiskMisses:      t.missesDisk.Load(),
			DiskSizeBytes:   m.disk.SizeBytes(),
		})
	}
	return out
}
