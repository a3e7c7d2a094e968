package event

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/repository/memory"
	"github.com/mybbstuff/alerts-engine/internal/service/alert"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
)

type adapterFixture struct {
	repo     *memory.AlertRepository
	typeRepo *memory.AlertTypeRepository
	loader   *registry.Loader
	adapters *Adapters
}

func newAdapterFixture(t *testing.T, types ...*model.AlertType) *adapterFixture {
	t.Helper()

	if len(types) == 0 {
		types = []*model.AlertType{
			{Code: model.AlertTypeRep, Enabled: true},
			{Code: model.AlertTypePM, Enabled: true},
			{Code: model.AlertTypeBuddylist, Enabled: true},
		}
	}

	repo := memory.NewAlertRepository()
	typeRepo := memory.NewAlertTypeRepository(types...)
	loader := registry.NewLoader(typeRepo, time.Minute)
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	engine := alert.NewService(repo, memory.NewUserPreferenceRepository(), loader, log, nil)

	return &adapterFixture{
		repo:     repo,
		typeRepo: typeRepo,
		loader:   loader,
		adapters: NewAdapters(engine, loader, log),
	}
}

func TestHandleReputationAdded(t *testing.T) {
	f := newAdapterFixture(t)

	err := f.adapters.HandleReputationAdded(context.Background(), &ReputationAdded{
		UID:          1,
		FromUID:      2,
		ReputationID: 50,
		Comment:      "nice post",
	})
	require.NoError(t, err)

	alerts := f.repo.All()
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(1), alerts[0].UID)
	assert.Equal(t, ObjectTypeRep, alerts[0].ObjectType)
	assert.Equal(t, int64(50), alerts[0].ObjectID)
	assert.Equal(t, "nice post", alerts[0].ExtraDetails["comment"])
}

func TestHandleReputationAddedDisabledType(t *testing.T) {
	f := newAdapterFixture(t, &model.AlertType{Code: model.AlertTypeRep, Enabled: false})

	err := f.adapters.HandleReputationAdded(context.Background(), &ReputationAdded{
		UID:          1,
		FromUID:      2,
		ReputationID: 50,
	})
	require.NoError(t, err)
	assert.Empty(t, f.repo.All())
}

func TestDisablingTypeKeepsExistingAlerts(t *testing.T) {
	f := newAdapterFixture(t)
	ctx := context.Background()

	ev := &ReputationAdded{UID: 1, FromUID: 2, ReputationID: 50}
	require.NoError(t, f.adapters.HandleReputationAdded(ctx, ev))
	require.Len(t, f.repo.All(), 1)

	require.NoError(t, f.typeRepo.SetEnabled(ctx, model.AlertTypeRep, false))
	f.loader.Invalidate()

	ev.ReputationID = 51
	require.NoError(t, f.adapters.HandleReputationAdded(ctx, ev))

	// The existing alert stays visible; only new creation stops.
	assert.Len(t, f.repo.All(), 1)
}

func TestHandleReputationViewedMarksAllRepAlertsRead(t *testing.T) {
	f := newAdapterFixture(t)
	ctx := context.Background()

	for _, id := range []int64{50, 51} {
		require.NoError(t, f.adapters.HandleReputationAdded(ctx, &ReputationAdded{
			UID: 1, FromUID: 2, ReputationID: id,
		}))
	}

	require.NoError(t, f.adapters.HandleReputationViewed(ctx, &ReputationViewed{UID: 1}))

	for _, a := range f.repo.All() {
		assert.NotNil(t, a.ReadAt)
	}
}

func TestHandlePMDeliveredFansOutPerRecipient(t *testing.T) {
	f := newAdapterFixture(t)

	err := f.adapters.HandlePMDelivered(context.Background(), &PMDelivered{
		RecipientUIDs: []int64{2, 3, 5},
		FromUID:       5,
		PMID:          9,
		Subject:       "hello",
		SenderName:    "sender",
	})
	require.NoError(t, err)

	alerts := f.repo.All()
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		// The sender never alerts themselves.
		assert.NotEqual(t, int64(5), a.UID)
		assert.Equal(t, ObjectTypePM, a.ObjectType)
		assert.Equal(t, int64(9), a.ObjectID)
		assert.Equal(t, "hello", a.ExtraDetails["subject"])
	}
}

func TestHandlePMReadMarksThatMessageOnly(t *testing.T) {
	f := newAdapterFixture(t)
	ctx := context.Background()

	for _, pmid := range []int64{9, 10} {
		require.NoError(t, f.adapters.HandlePMDelivered(ctx, &PMDelivered{
			RecipientUIDs: []int64{2},
			FromUID:       5,
			PMID:          pmid,
		}))
	}

	require.NoError(t, f.adapters.HandlePMRead(ctx, &PMRead{UID: 2, PMID: 9}))

	for _, a := range f.repo.All() {
		if a.ObjectID == 9 {
			assert.NotNil(t, a.ReadAt)
		} else {
			assert.Nil(t, a.ReadAt)
		}
	}
}

func TestHandleBuddyAddedFansOutAndSkipsSelf(t *testing.T) {
	f := newAdapterFixture(t)

	err := f.adapters.HandleBuddyAdded(context.Background(), &BuddyAdded{
		UID:       1,
		AddedUIDs: []int64{1, 2, 3},
		Username:  "owner",
	})
	require.NoError(t, err)

	alerts := f.repo.All()
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.NotEqual(t, int64(1), a.UID)
		assert.Equal(t, ObjectTypeBuddy, a.ObjectType)
		assert.Equal(t, int64(1), a.ObjectID)
		assert.Equal(t, "owner", a.ExtraDetails["username"])
	}
}

func TestHandleBuddyRequestCancelledRetractsUnread(t *testing.T) {
	f := newAdapterFixture(t)
	ctx := context.Background()

	require.NoError(t, f.adapters.HandleBuddyAdded(ctx, &BuddyAdded{
		UID:       1,
		AddedUIDs: []int64{2},
	}))
	require.Len(t, f.repo.All(), 1)

	require.NoError(t, f.adapters.HandleBuddyRequestCancelled(ctx, &BuddyRequestCancelled{
		UID:     2,
		FromUID: 1,
	}))
	assert.Empty(t, f.repo.All())
}

func TestHandleUserDeletedRemovesAlerts(t *testing.T) {
	f := newAdapterFixture(t)
	ctx := context.Background()

	require.NoError(t, f.adapters.HandleReputationAdded(ctx, &ReputationAdded{
		UID: 1, FromUID: 2, ReputationID: 50,
	}))
	require.NoError(t, f.adapters.HandleReputationAdded(ctx, &ReputationAdded{
		UID: 4, FromUID: 2, ReputationID: 51,
	}))

	require.NoError(t, f.adapters.HandleUserDeleted(ctx, &UserDeleted{UID: 1}))

	alerts := f.repo.All()
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(4), alerts[0].UID)
}

func envelope(t *testing.T, typ Type, payload interface{}) []byte {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(&Envelope{
		ID:         "evt-1",
		Type:       typ,
		Payload:    body,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	return raw
}

func TestDispatchRoutesToAdapter(t *testing.T) {
	f := newAdapterFixture(t)
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	consumer := NewConsumer(nil, f.adapters, log)

	raw := envelope(t, TypeReputationAdded, &ReputationAdded{UID: 1, FromUID: 2, ReputationID: 50})
	require.NoError(t, consumer.dispatch(context.Background(), raw))

	assert.Len(t, f.repo.All(), 1)
}

func TestDispatchIgnoresUnknownType(t *testing.T) {
	f := newAdapterFixture(t)
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	consumer := NewConsumer(nil, f.adapters, log)

	raw := envelope(t, Type("thread.subscribed"), map[string]int64{"uid": 1})
	assert.NoError(t, consumer.dispatch(context.Background(), raw))
	assert.Empty(t, f.repo.All())
}

func TestDispatchRejectsMalformedEnvelope(t *testing.T) {
	f := newAdapterFixture(t)
	log := logger.New(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	consumer := NewConsumer(nil, f.adapters, log)

	err := consumer.dispatch(context.Background(), []byte("not json"))
	assert.ErrorContains(t, err, "failed to decode event envelope")
}
