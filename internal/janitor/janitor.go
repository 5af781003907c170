// Package janitor drives the periodic disk-cache garbage-collection sweep,
// adapted from the teacher's internal/services/processing scheduler
// (itself a thin github.com/robfig/cron/v3 wrapper) into the one piece of
// background scheduling the core needs per spec.md §5.
package janitor

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/workers"
)

// DefaultSchedule runs the sweep every 6 hours, matching the teacher's own
// default document-processing cadence.
const DefaultSchedule = "0 0 */6 * * *"

// DefaultDiscardRatio is badger's recommended value-log GC threshold: only
// reclaim a log file once at least this fraction of it is garbage.
const DefaultDiscardRatio = 0.5

// Janitor periodically runs the disk cache's value-log GC on a bounded
// worker pool so the sweep never blocks the cron goroutine.
type Janitor struct {
	disk   *diskcache.Backend
	pool   *workers.Pool
	cron   *cron.Cron
	logger arbor.ILogger
}

// New constructs a Janitor over disk, offloading sweeps onto pool.
func New(disk *diskcache.Backend, pool *workers.Pool, logger arbor.ILogger) *Janitor {
	return &Janitor{
		disk:   disk,
		pool:   pool,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// Start schedules the sweep. An empty schedule falls back to DefaultSchedule.
func (j *Janitor) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	_, err := j.cron.AddFunc(schedule, func() {
		j.runSweep()
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().Str("schedule", schedule).Msg("janitor: disk cache sweep scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for any running sweep submission to
// return; a GC already handed to the worker pool is not waited for.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info().Msg("janitor: disk cache sweep scheduler stopped")
}

// RunNow triggers an immediate out-of-band sweep.
func (j *Janitor) RunNow() {
	j.logger.Info().Msg("janitor: triggering immediate sweep")
	go j.runSweep()
}

func (j *Janitor) runSweep() {
	err := j.pool.Submit(func(ctx context.Context) error {
		return j.disk.RunValueLogGC(DefaultDiscardRatio)
	})
	if err != nil {
		j.logger.Error().Err(err).Msg("janitor: failed to submit sweep")
		return
	}

	j.logger.Debug().
		Int64("size_bytes", j.disk.SizeBytes()).
		Int("count", j.disk.Count()).
		Time("ran_at", time.Now()).
		Msg("janitor: disk cache sweep submitted")
}
