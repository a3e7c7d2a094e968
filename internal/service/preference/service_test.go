package preference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository/memory"
	"github.com/mybbstuff/alerts-engine/internal/service/preference"
	apperrors "github.com/mybbstuff/alerts-engine/pkg/errors"
)

func TestGetDefaultsToEmptyList(t *testing.T) {
	svc := preference.NewService(memory.NewUserPreferenceRepository())

	pref, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pref.UID)
	assert.Empty(t, pref.DisabledTypes)
}

func TestUpdateReplacesList(t *testing.T) {
	svc := preference.NewService(memory.NewUserPreferenceRepository())
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, 1, []string{model.AlertTypeRep, model.AlertTypePM}))
	require.NoError(t, svc.Update(ctx, 1, []string{model.AlertTypeBuddylist}))

	pref, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DisabledCodes{model.AlertTypeBuddylist}, pref.DisabledTypes)
}

func TestUpdateDedupsCodes(t *testing.T) {
	svc := preference.NewService(memory.NewUserPreferenceRepository())
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, 1, []string{model.AlertTypeRep, model.AlertTypeRep}))

	pref, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DisabledCodes{model.AlertTypeRep}, pref.DisabledTypes)
}

func TestUpdateAcceptsUnknownCodes(t *testing.T) {
	// Codes missing from the catalog are stored as-is; they are inert at
	// display time and start working if the type is installed later.
	svc := preference.NewService(memory.NewUserPreferenceRepository())

	assert.NoError(t, svc.Update(context.Background(), 1, []string{"future_type"}))
}

func TestUpdateRejectsEmptyCode(t *testing.T) {
	svc := preference.NewService(memory.NewUserPreferenceRepository())

	err := svc.Update(context.Background(), 1, []string{""})
	assert.True(t, apperrors.IsValidation(err))
}

func TestValidationRequiresPositiveUID(t *testing.T) {
	svc := preference.NewService(memory.NewUserPreferenceRepository())
	ctx := context.Background()

	_, err := svc.Get(ctx, 0)
	assert.True(t, apperrors.IsValidation(err))

	err = svc.Update(ctx, -1, nil)
	assert.True(t, apperrors.IsValidation(err))
}
