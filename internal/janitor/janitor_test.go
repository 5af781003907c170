package janitor

import (
	"testing"
	"time"

	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/common"
	"github.com/mkbabb/words-sub000/internal/workers"
)

func newTestJanitor(t *testing.T) (*Janitor, *diskcache.Backend) {
	t.Helper()
	logger := common.GetLogger()

	disk, err := diskcache.Open(logger, diskcache.Config{Path: t.TempDir() + "/disk"})
	if err != nil {
		t.Fatalf("open disk cache: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	pool := workers.NewPool(2, logger)
	pool.Start()
	t.Cleanup(pool.Shutdown)

	return New(disk, pool, logger), disk
}

func TestStartRejectsMalformedSchedule(t *testing.T) {
	j, _ := newTestJanitor(t)
	if err := j.Start("not a valid cron expression"); err == nil {
		t.Fatal("expected error starting janitor with a malformed schedule")
	}
}

func TestStartAcceptsDefaultSchedule(t *testing.T) {
	j, _ := newTestJanitor(t)
	if err := j.Start(""); err != nil {
		t.Fatalf("start with default schedule: %v", err)
	}
	j.Stop()
}

func TestRunNowTriggersSweepWithoutBlocking(t *testing.T) {
	j, _ := newTestJanitor(t)
	start := time.Now()
	j.RunNow()
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("RunNow should return immediately, not block on the sweep")
	}
}
