package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/coreerrors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "diskcache")
	disk, err := diskcache.Open(nil, diskcache.Config{Path: dir})
	if err != nil {
		t.Fatalf("open disk backend: %v", err)
	}
	t.Cleanup(func() { _ = disk.Close() })
	return NewManager(disk, nil, nil, nil)
}

func TestManagerSetThenGetHitsMemory(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.Set(ctx, "corpus_content", "k1", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get(ctx, "corpus_content", "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q, want v1", got)
	}

	stats := m.Health()
	found := false
	for _, s := range stats {
		if s.Namespace == "corpus_content" {
			found = true
			if s.MemoryHits != 1 {
				t.Fatalf("memory hits = %d, want 1", s.MemoryHits)
			}
		}
	}
	if !found {
		t.Fatalf("expected corpus_content stats")
	}
}

func TestManagerFallsBackToDiskAfterMemoryEviction(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if err := m.Set(ctx, "corpus_content", "k1", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Simulate the L1 entry disappearing (eviction/restart) while L2 keeps it.
	m.tierFor("corpus_content").memory.Remove("k1")

	got, err := m.Get(ctx, "corpus_content", "k1")
	if err != nil {
		t.Fatalf("get after memory eviction: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("got %q, want v1", got)
	}
}

func TestManagerGetMissing(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get(context.Background(), "corpus_content", "missing")
	if err != coreerrors.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestManagerInvalidateRemovesBothTiers(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_ = m.Set(ctx, "corpus_content", "k1", []byte("v1"))

	if err := m.Invalidate(ctx, "corpus_content", "k1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := m.Get(ctx, "corpus_content", "k1"); err != coreerrors.ErrNotFound {
		t.Fatalf("expected not found after invalidate, got %v", err)
	}
}

func TestManagerInvalidateNamespace(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	_ = m.Set(ctx, "corpus_content", "a", []byte("1"))
	_ = m.Set(ctx, "corpus_content", "b", []byte("2"))

	if err := m.InvalidateNamespace(ctx, "corpus_content"); err != nil {
		t.Fatalf("invalidate namespace: %v", err)
	}
	if _, err := m.Get(ctx, "corpus_content", "a"); err != coreerrors.ErrNotFound {
		t.Fatalf("expected not found after namespace invalidate")
	}
}
