package diskcache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkbabb/words-sub000/internal/coreerrors"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "diskcache")
	b, err := Open(nil, Config{Path: dir})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackendSetGetRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Set(ctx, "ns/a", []byte("hello"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := b.Get(ctx, "ns/a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestBackendGetMissing(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.Get(context.Background(), "ns/missing")
	if err != coreerrors.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBackendDeleteIsIdempotent(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if err := b.Set(ctx, "ns/a", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Delete(ctx, "ns/a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.Delete(ctx, "ns/a"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := b.Get(ctx, "ns/a"); err != coreerrors.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestBackendClearNamespace(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	_ = b.Set(ctx, "ns1/a", []byte("1"), 0)
	_ = b.Set(ctx, "ns1/b", []byte("2"), 0)
	_ = b.Set(ctx, "ns2/a", []byte("3"), 0)

	if err := b.ClearNamespace(ctx, "ns1"); err != nil {
		t.Fatalf("clear namespace: %v", err)
	}
	if _, err := b.Get(ctx, "ns1/a"); err != coreerrors.ErrNotFound {
		t.Fatalf("ns1/a should be gone")
	}
	if _, err := b.Get(ctx, "ns2/a"); err != nil {
		t.Fatalf("ns2/a should survive: %v", err)
	}
}

func TestBackendEvictsOverBudget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diskcache")
	b, err := Open(nil, Config{Path: dir, MaxBytes: 10})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer b.Close()
	ctx := context.Background()

	_ = b.Set(ctx, "ns/a", []byte("0123456789"), 0)
	time.Sleep(time.Millisecond)
	_ = b.Set(ctx, "ns/b", []byte("0123456789"), 0)

	if b.SizeBytes() > 10 {
		t.Fatalf("size %d exceeds budget", b.SizeBytes())
	}
	if _, err := b.Get(ctx, "ns/a"); err != coreerrors.ErrNotFound {
		t.Fatalf("oldest entry should have been evicted")
	}
}

func TestBackendTTLExpiry(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	if err := b.Set(ctx, "ns/a", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := b.Get(ctx, "ns/a"); err != coreerrors.ErrNotFound {
		t.Fatalf("expired entry should read as not found, got %v", err)
	}
}
