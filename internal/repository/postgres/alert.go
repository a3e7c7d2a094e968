package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

type alertRepository struct {
	BaseRepository
}

func NewAlertRepository(base BaseRepository) repository.AlertRepository {
	return &alertRepository{base}
}

// Insert relies on the partial unique index over (uid, object_type,
// object_id) for unread non-forced rows; a conflict there means another
// writer beat us to the same triple and the insert is reported as
// suppressed, not as an error.
func (r *alertRepository) Insert(ctx context.Context, alert *model.Alert) (bool, error) {
	query := `
		INSERT INTO alerts (
			uid, alert_type_id, from_uid, object_type, object_id,
			forced, extra_details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (uid, object_type, object_id)
			WHERE forced = FALSE AND read_at IS NULL
			DO NOTHING
		RETURNING id
	`

	alert.CreatedAt = time.Now()
	alert.ReadAt = nil

	err := r.GetDB().QueryRowContext(ctx, query,
		alert.UID,
		alert.AlertTypeID,
		alert.FromUID,
		alert.ObjectType,
		alert.ObjectID,
		alert.Forced,
		alert.ExtraDetails,
		alert.CreatedAt,
	).Scan(&alert.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert alert: %w", err)
	}

	return true, nil
}

func (r *alertRepository) CountMatching(ctx context.Context, uid int64, objectType string, objectID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE uid = $1 AND object_type = $2 AND object_id = $3
	`

	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, uid, objectType, objectID); err != nil {
		return 0, fmt.Errorf("failed to count matching alerts: %w", err)
	}

	return count, nil
}

func (r *alertRepository) MarkReadMatching(ctx context.Context, filter model.ReadFilter, readAt time.Time) (int64, error) {
	query := `
		UPDATE alerts SET read_at = $1
		WHERE uid = $2 AND object_type = $3 AND read_at IS NULL
	`
	args := []interface{}{readAt, filter.UID, filter.ObjectType}

	if filter.ObjectID != nil {
		query += fmt.Sprintf(" AND object_id = $%d", len(args)+1)
		args = append(args, *filter.ObjectID)
	}

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark alerts read: %w", err)
	}

	return result.RowsAffected()
}

func (r *alertRepository) DeleteMatching(ctx context.Context, filter model.RetractFilter) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE alert_type_id = $1 AND uid = $2 AND from_uid = $3 AND read_at IS NULL
	`

	result, err := r.GetDB().ExecContext(ctx, query, filter.AlertTypeID, filter.UID, filter.FromUID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matching alerts: %w", err)
	}

	return result.RowsAffected()
}

func (r *alertRepository) DeleteForUser(ctx context.Context, uid int64) (int64, error) {
	query := `DELETE FROM alerts WHERE uid = $1`

	result, err := r.GetDB().ExecContext(ctx, query, uid)
	if err != nil {
		return 0, fmt.Errorf("failed to delete alerts for user: %w", err)
	}

	return result.RowsAffected()
}

func (r *alertRepository) PurgeReadOlderThan(ctx context.Context, horizon time.Time) (int64, error) {
	query := `
		DELETE FROM alerts
		WHERE read_at IS NOT NULL AND read_at < $1
	`

	result, err := r.GetDB().ExecContext(ctx, query, horizon)
	if err != nil {
		return 0, fmt.Errorf("failed to purge read alerts: %w", err)
	}

	return result.RowsAffected()
}

func (r *alertRepository) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE uid = $1
	`
	args := []interface{}{filters.UID}

	if filters.UnreadOnly {
		query += " AND read_at IS NULL"
	}

	query += " ORDER BY id DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filters.Limit, filters.Offset)
	}

	var alerts []*model.Alert
	if err := r.GetDB().SelectContext(ctx, &alerts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) CountUnread(ctx context.Context, uid int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM alerts
		WHERE uid = $1 AND read_at IS NULL
	`

	var count int
	if err := r.GetDB().GetContext(ctx, &count, query, uid); err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}

	return count, nil
}
