package repository

import (
	"context"
	"time"

	"github.com/mybbstuff/alerts-engine/internal/model"
)

// All repository interfaces in one file
type (
	// AlertRepository is the persistence boundary for alert rows.
	AlertRepository interface {
		// Insert persists a new alert, stamping CreatedAt and leaving ReadAt
		// null. It returns false when the row was suppressed by the partial
		// uniqueness rule on unread non-forced alerts.
		Insert(ctx context.Context, alert *model.Alert) (bool, error)
		// CountMatching counts rows sharing the (uid, objectType, objectID)
		// triple regardless of read state.
		CountMatching(ctx context.Context, uid int64, objectType string, objectID int64) (int, error)
		// MarkReadMatching stamps readAt on unread rows matching the filter.
		// Rows already read are left untouched.
		MarkReadMatching(ctx context.Context, filter model.ReadFilter, readAt time.Time) (int64, error)
		// DeleteMatching hard-deletes unread rows matching the filter.
		DeleteMatching(ctx context.Context, filter model.RetractFilter) (int64, error)
		// DeleteForUser hard-deletes every alert addressed to uid.
		DeleteForUser(ctx context.Context, uid int64) (int64, error)
		// PurgeReadOlderThan removes read rows consumed before horizon and
		// returns how many were removed. Unread rows are never touched.
		PurgeReadOlderThan(ctx context.Context, horizon time.Time) (int64, error)
		List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error)
		CountUnread(ctx context.Context, uid int64) (int, error)
	}

	// AlertTypeRepository handles the alert type catalog. Types can be added
	// and toggled but never deleted.
	AlertTypeRepository interface {
		Create(ctx context.Context, alertType *model.AlertType) error
		GetByCode(ctx context.Context, code string) (*model.AlertType, error)
		List(ctx context.Context) ([]*model.AlertType, error)
		SetEnabled(ctx context.Context, code string, enabled bool) error
	}

	// UserPreferenceRepository reads and writes the per-user disabled-type
	// list stored on the user record.
	UserPreferenceRepository interface {
		Get(ctx context.Context, uid int64) (*model.UserPreference, error)
		Set(ctx context.Context, uid int64, codes model.DisabledCodes) error
	}
)
