package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

type userPreferenceRepository struct {
	BaseRepository
}

func NewUserPreferenceRepository(base BaseRepository) repository.UserPreferenceRepository {
	return &userPreferenceRepository{base}
}

// Get returns the disabled-type list stored on the user row. A user without
// a stored list (or an unknown uid) gets an implicit empty set; an entry for
// a missing user is inert since nothing is ever created from this path.
func (r *userPreferenceRepository) Get(ctx context.Context, uid int64) (*model.UserPreference, error) {
	query := `
		SELECT uid, disabled_alert_types FROM users
		WHERE uid = $1
	`

	var pref model.UserPreference
	err := r.GetDB().GetContext(ctx, &pref, query, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.UserPreference{UID: uid, DisabledTypes: model.DisabledCodes{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}

	return &pref, nil
}

func (r *userPreferenceRepository) Set(ctx context.Context, uid int64, codes model.DisabledCodes) error {
	query := `
		UPDATE users
		SET disabled_alert_types = $1
		WHERE uid = $2
	`

	result, err := r.GetDB().ExecContext(ctx, query, codes, uid)
	if err != nil {
		return fmt.Errorf("failed to set user preferences: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
