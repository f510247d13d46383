package core

// janitor.go periodically removes spool directories left behind by jobs
// that never reached their cleanup, e.g. after a crash mid-analysis.
//
// A directory is swept once it is older than the configured age, unless its
// job is still in the store and not yet terminal.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor sweeps stale spool directories on a cron schedule.
type Janitor struct {
	spool  *Spool
	store  JobStore
	maxAge time.Duration
	now    func() time.Time

	cron *cron.Cron
}

// NewJanitor schedules sweeps of the service's spool. schedule accepts
// standard cron expressions and descriptors such as "@every 15m".
func NewJanitor(s *Service, schedule string, maxAge time.Duration) (*Janitor, error) {
	j := &Janitor{
		spool:  s.spool,
		store:  s.store,
		maxAge: maxAge,
		now:    time.Now,
		cron:   cron.New(),
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.Sweep() }); err != nil {
		return nil, fmt.Errorf("janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the schedule in the background.
func (j *Janitor) Start() {
	slog.Info("spool janitor started", "root", j.spool.Root(), "max_age", j.maxAge)
	j.cron.Start()
}

// Stop halts the schedule and waits for a running sweep, bounded by ctx.
func (j *Janitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
		slog.Info("spool janitor stopped")
	case <-ctx.Done():
		slog.Warn("spool janitor stop timed out")
	}
}

// Sweep performs one pass and returns how many directories were removed.
func (j *Janitor) Sweep() int {
	start := time.Now()

	entries, err := j.spool.Entries()
	if err != nil {
		slog.Error("spool sweep failed", "error", err)
		return 0
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if e.ModTime.After(cutoff) {
			continue
		}
		rec, err := j.store.Get(e.JobID)
		if err == nil && !rec.Status.Terminal() {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			continue
		}
		if err := j.spool.Release(e.JobID); err != nil {
			slog.Warn("spool sweep release failed", "job_id", e.JobID, "error", err)
			continue
		}
		removed++
	}

	slog.Info("spool sweep completed",
		"removed", removed,
		"scanned", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return removed
}
