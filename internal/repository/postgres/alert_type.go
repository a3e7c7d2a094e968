package postgres

import (
	"context"
	"fmt"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

type alertTypeRepository struct {
	BaseRepository
}

func NewAlertTypeRepository(base BaseRepository) repository.AlertTypeRepository {
	return &alertTypeRepository{base}
}

func (r *alertTypeRepository) Create(ctx context.Context, alertType *model.AlertType) error {
	query := `
		INSERT INTO alert_types (code, enabled)
		VALUES ($1, $2)
		RETURNING id
	`

	if err := r.GetDB().QueryRowContext(ctx, query, alertType.Code, alertType.Enabled).Scan(&alertType.ID); err != nil {
		return fmt.Errorf("failed to create alert type: %w", err)
	}

	return nil
}

func (r *alertTypeRepository) GetByCode(ctx context.Context, code string) (*model.AlertType, error) {
	query := `
		SELECT * FROM alert_types
		WHERE code = $1
	`

	var alertType model.AlertType
	if err := r.GetDB().GetContext(ctx, &alertType, query, code); err != nil {
		return nil, fmt.Errorf("failed to get alert type: %w", err)
	}

	return &alertType, nil
}

func (r *alertTypeRepository) List(ctx context.Context) ([]*model.AlertType, error) {
	query := `
		SELECT * FROM alert_types
		ORDER BY id
	`

	var types []*model.AlertType
	if err := r.GetDB().SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list alert types: %w", err)
	}

	return types, nil
}

func (r *alertTypeRepository) SetEnabled(ctx context.Context, code string, enabled bool) error {
	query := `
		UPDATE alert_types
		SET enabled = $1
		WHERE code = $2
	`

	result, err := r.GetDB().ExecContext(ctx, query, enabled, code)
	if err != nil {
		return fmt.Errorf("failed to update alert type: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert type not found")
	}

	return nil
}
