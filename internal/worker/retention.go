package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mybbstuff/alerts-engine/internal/repository"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
	"github.com/mybbstuff/alerts-engine/pkg/metrics"
)

// DefaultHorizon is how long read alerts are kept before being purged.
const DefaultHorizon = 7 * 24 * time.Hour

// DefaultSchedule runs the purge at the top of every hour.
const DefaultSchedule = "0 * * * *"

// RetentionTask deletes read alerts older than the horizon. Deleting is the
// only mutation, so an interrupted run leaves consistent state and a repeat
// run deletes nothing new.
type RetentionTask struct {
	repo     repository.AlertRepository
	horizon  time.Duration
	schedule string
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewRetentionTask(repo repository.AlertRepository, horizon time.Duration, schedule string, log *logger.Logger, m *metrics.Metrics) *RetentionTask {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &RetentionTask{
		repo:     repo,
		horizon:  horizon,
		schedule: schedule,
		logger:   log,
		metrics:  m,
	}
}

// Run purges once relative to now and reports the count removed. Unread
// alerts are never touched regardless of age. On storage failure nothing is
// recorded as deleted and the error is reported to the caller.
func (t *RetentionTask) Run(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	cutoff := now.Add(-t.horizon)

	deleted, err := t.repo.PurgeReadOlderThan(ctx, cutoff)
	if err != nil {
		t.observe("failure", start, 0)
		return 0, fmt.Errorf("failed to purge read alerts: %w", err)
	}

	t.observe("success", start, deleted)
	t.logger.Info(t.Summary(deleted, cutoff))
	return deleted, nil
}

// Summary renders the human-readable line reported to the host task log.
func (t *RetentionTask) Summary(deleted int64, cutoff time.Time) string {
	return fmt.Sprintf("alert retention: removed %d read alerts older than %s", deleted, cutoff.Format(time.RFC3339))
}

// Start registers the task with a cron scheduler and blocks until ctx is
// cancelled. A run already in flight is allowed to finish.
func (t *RetentionTask) Start(ctx context.Context) error {
	c := cron.New()

	_, err := c.AddFunc(t.schedule, func() {
		if _, err := t.Run(ctx, time.Now()); err != nil {
			t.logger.Error(err, "retention run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention task: %w", err)
	}

	t.logger.Info("retention task scheduled", "schedule", t.schedule, "horizon", t.horizon.String())
	c.Start()

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}

func (t *RetentionTask) observe(status string, start time.Time, deleted int64) {
	if t.metrics == nil {
		return
	}
	t.metrics.PurgeRuns.WithLabelValues(status).Inc()
	t.metrics.PurgeDuration.Observe(time.Since(start).Seconds())
	if deleted > 0 {
		t.metrics.AlertsPurged.Add(float64(deleted))
	}
}
