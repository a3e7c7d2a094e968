package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybbstuff/alerts-engine/internal/model"
)

func TestExtraDetailsEmptyStoresNull(t *testing.T) {
	var details model.ExtraDetails

	v, err := details.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = model.ExtraDetails{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestExtraDetailsRoundTrip(t *testing.T) {
	v, err := model.ExtraDetails{"subject": "hello"}.Value()
	require.NoError(t, err)

	var scanned model.ExtraDetails
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, "hello", scanned["subject"])
}

func TestExtraDetailsScanNull(t *testing.T) {
	var scanned model.ExtraDetails
	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
}

func TestDisabledCodesContains(t *testing.T) {
	codes := model.DisabledCodes{model.AlertTypeRep, model.AlertTypePM}

	assert.True(t, codes.Contains(model.AlertTypePM))
	assert.False(t, codes.Contains(model.AlertTypeBuddylist))
}

func TestAlertRead(t *testing.T) {
	a := &model.Alert{}
	assert.False(t, a.Read())

	now := time.Now()
	a.ReadAt = &now
	assert.True(t, a.Read())
}
