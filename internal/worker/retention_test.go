package worker_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository/memory"
	"github.com/mybbstuff/alerts-engine/internal/worker"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
)

func discardLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func seedAlert(repo *memory.AlertRepository, uid int64, createdAt time.Time, readAt *time.Time) {
	repo.Seed(&model.Alert{
		UID:         uid,
		AlertTypeID: 1,
		ObjectType:  "rep",
		ObjectID:    uid,
		CreatedAt:   createdAt,
		ReadAt:      readAt,
	})
}

func TestRetentionPurgesReadAlertsPastHorizon(t *testing.T) {
	repo := memory.NewAlertRepository()
	now := time.Now()

	oldRead := now.Add(-10 * 24 * time.Hour)
	recentRead := now.Add(-time.Hour)
	seedAlert(repo, 1, now.Add(-11*24*time.Hour), &oldRead)
	seedAlert(repo, 2, now.Add(-2*time.Hour), &recentRead)
	seedAlert(repo, 3, now.Add(-30*24*time.Hour), nil)

	task := worker.NewRetentionTask(repo, 7*24*time.Hour, "", discardLogger(), nil)

	deleted, err := task.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining := repo.All()
	require.Len(t, remaining, 2)
	for _, a := range remaining {
		assert.NotEqual(t, int64(1), a.UID)
	}
}

func TestRetentionNeverTouchesUnreadAlerts(t *testing.T) {
	repo := memory.NewAlertRepository()
	now := time.Now()

	seedAlert(repo, 1, now.Add(-90*24*time.Hour), nil)

	task := worker.NewRetentionTask(repo, 7*24*time.Hour, "", discardLogger(), nil)

	deleted, err := task.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Len(t, repo.All(), 1)
}

func TestRetentionUsesReadTimeNotCreationTime(t *testing.T) {
	repo := memory.NewAlertRepository()
	now := time.Now()

	// Created nine days ago but only just read: the horizon counts from the
	// read timestamp, so the row survives.
	justRead := now.Add(-time.Minute)
	seedAlert(repo, 1, now.Add(-9*24*time.Hour), &justRead)

	task := worker.NewRetentionTask(repo, 7*24*time.Hour, "", discardLogger(), nil)

	deleted, err := task.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Len(t, repo.All(), 1)
}

func TestRetentionRepeatRunDeletesNothingNew(t *testing.T) {
	repo := memory.NewAlertRepository()
	now := time.Now()

	oldRead := now.Add(-10 * 24 * time.Hour)
	seedAlert(repo, 1, now.Add(-11*24*time.Hour), &oldRead)

	task := worker.NewRetentionTask(repo, 7*24*time.Hour, "", discardLogger(), nil)
	ctx := context.Background()

	deleted, err := task.Run(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	deleted, err = task.Run(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestRetentionReportsStorageFailure(t *testing.T) {
	repo := memory.NewAlertRepository()
	repo.Err = errors.New("connection refused")

	task := worker.NewRetentionTask(repo, 7*24*time.Hour, "", discardLogger(), nil)

	deleted, err := task.Run(context.Background(), time.Now())
	assert.Zero(t, deleted)
	assert.ErrorContains(t, err, "failed to purge read alerts")
}

func TestRetentionSummary(t *testing.T) {
	task := worker.NewRetentionTask(memory.NewAlertRepository(), 0, "", discardLogger(), nil)

	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	summary := task.Summary(3, cutoff)
	assert.Equal(t, "alert retention: removed 3 read alerts older than 2026-03-01T12:00:00Z", summary)
}

func TestRetentionStartRejectsBadSchedule(t *testing.T) {
	task := worker.NewRetentionTask(memory.NewAlertRepository(), 0, "not a schedule", discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := task.Start(ctx)
	assert.ErrorContains(t, err, "failed to schedule retention task")
}

func TestRetentionStartStopsOnCancel(t *testing.T) {
	task := worker.NewRetentionTask(memory.NewAlertRepository(), 0, "", discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- task.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("retention task did not stop after cancellation")
	}
}
