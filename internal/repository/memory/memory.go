// Package memory holds in-memory repository implementations mirroring the
// postgres semantics, including the unread non-forced uniqueness rule. They
// back the engine and worker tests and are usable as a storage stand-in in
// development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/repository"
)

// AlertRepository is an in-memory repository.AlertRepository. Setting Err
// makes every operation fail with it, simulating a storage outage.
type AlertRepository struct {
	mu     sync.Mutex
	nextID int64
	alerts []*model.Alert

	Err error
}

var _ repository.AlertRepository = (*AlertRepository)(nil)

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{nextID: 1}
}

func (r *AlertRepository) Insert(_ context.Context, alert *model.Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}

	if !alert.Forced {
		for _, a := range r.alerts {
			if !a.Forced && a.ReadAt == nil &&
				a.UID == alert.UID && a.ObjectType == alert.ObjectType && a.ObjectID == alert.ObjectID {
				return false, nil
			}
		}
	}

	alert.ID = r.nextID
	r.nextID++
	alert.CreatedAt = time.Now()
	alert.ReadAt = nil

	stored := *alert
	r.alerts = append(r.alerts, &stored)
	return true, nil
}

func (r *AlertRepository) CountMatching(_ context.Context, uid int64, objectType string, objectID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	count := 0
	for _, a := range r.alerts {
		if a.UID == uid && a.ObjectType == objectType && a.ObjectID == objectID {
			count++
		}
	}
	return count, nil
}

func (r *AlertRepository) MarkReadMatching(_ context.Context, filter model.ReadFilter, readAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	var marked int64
	for _, a := range r.alerts {
		if a.ReadAt != nil || a.UID != filter.UID || a.ObjectType != filter.ObjectType {
			continue
		}
		if filter.ObjectID != nil && a.ObjectID != *filter.ObjectID {
			continue
		}
		at := readAt
		a.ReadAt = &at
		marked++
	}
	return marked, nil
}

func (r *AlertRepository) DeleteMatching(_ context.Context, filter model.RetractFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	return r.deleteWhere(func(a *model.Alert) bool {
		return a.ReadAt == nil &&
			a.AlertTypeID == filter.AlertTypeID &&
			a.UID == filter.UID &&
			a.FromUID == filter.FromUID
	}), nil
}

func (r *AlertRepository) DeleteForUser(_ context.Context, uid int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	return r.deleteWhere(func(a *model.Alert) bool {
		return a.UID == uid
	}), nil
}

func (r *AlertRepository) PurgeReadOlderThan(_ context.Context, horizon time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	return r.deleteWhere(func(a *model.Alert) bool {
		return a.ReadAt != nil && a.ReadAt.Before(horizon)
	}), nil
}

func (r *AlertRepository) List(_ context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var out []*model.Alert
	for i := len(r.alerts) - 1; i >= 0; i-- {
		a := r.alerts[i]
		if a.UID != filters.UID {
			continue
		}
		if filters.UnreadOnly && a.ReadAt != nil {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *AlertRepository) CountUnread(_ context.Context, uid int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	count := 0
	for _, a := range r.alerts {
		if a.UID == uid && a.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

// All returns a copy of every stored alert, for assertions.
func (r *AlertRepository) All() []*model.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		copied := *a
		out = append(out, &copied)
	}
	return out
}

// Seed stores an alert verbatim, bypassing Insert's rules.
func (r *AlertRepository) Seed(alert *model.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alert.ID == 0 {
		alert.ID = r.nextID
		r.nextID++
	} else if alert.ID >= r.nextID {
		r.nextID = alert.ID + 1
	}
	stored := *alert
	r.alerts = append(r.alerts, &stored)
}

func (r *AlertRepository) deleteWhere(match func(*model.Alert) bool) int64 {
	var kept []*model.Alert
	var deleted int64
	for _, a := range r.alerts {
		if match(a) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.alerts = kept
	return deleted
}

// AlertTypeRepository is an in-memory repository.AlertTypeRepository.
// ListCalls counts catalog loads for cache assertions.
type AlertTypeRepository struct {
	mu     sync.Mutex
	nextID int64
	types  []*model.AlertType

	Err       error
	ListCalls int
}

var _ repository.AlertTypeRepository = (*AlertTypeRepository)(nil)

func NewAlertTypeRepository(types ...*model.AlertType) *AlertTypeRepository {
	repo := &AlertTypeRepository{nextID: 1}
	for _, t := range types {
		copied := *t
		if copied.ID == 0 {
			copied.ID = repo.nextID
		}
		if copied.ID >= repo.nextID {
			repo.nextID = copied.ID + 1
		}
		repo.types = append(repo.types, &copied)
	}
	return repo
}

func (r *AlertTypeRepository) Create(_ context.Context, alertType *model.AlertType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	for _, t := range r.types {
		if t.Code == alertType.Code {
			return fmt.Errorf("alert type %q already exists", alertType.Code)
		}
	}

	alertType.ID = r.nextID
	r.nextID++
	copied := *alertType
	r.types = append(r.types, &copied)
	return nil
}

func (r *AlertTypeRepository) GetByCode(_ context.Context, code string) (*model.AlertType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	for _, t := range r.types {
		if t.Code == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("alert type %q not found", code)
}

func (r *AlertTypeRepository) List(_ context.Context) ([]*model.AlertType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ListCalls++
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]*model.AlertType, 0, len(r.types))
	for _, t := range r.types {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *AlertTypeRepository) SetEnabled(_ context.Context, code string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	for _, t := range r.types {
		if t.Code == code {
			t.Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("alert type %q not found", code)
}

// UserPreferenceRepository is an in-memory repository.UserPreferenceRepository.
type UserPreferenceRepository struct {
	mu    sync.Mutex
	prefs map[int64]model.DisabledCodes

	Err error
}

var _ repository.UserPreferenceRepository = (*UserPreferenceRepository)(nil)

func NewUserPreferenceRepository() *UserPreferenceRepository {
	return &UserPreferenceRepository{prefs: make(map[int64]model.DisabledCodes)}
}

func (r *UserPreferenceRepository) Get(_ context.Context, uid int64) (*model.UserPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	codes, ok := r.prefs[uid]
	if !ok {
		codes = model.DisabledCodes{}
	}
	out := make(model.DisabledCodes, len(codes))
	copy(out, codes)
	return &model.UserPreference{UID: uid, DisabledTypes: out}, nil
}

func (r *UserPreferenceRepository) Set(_ context.Context, uid int64, codes model.DisabledCodes) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	stored := make(model.DisabledCodes, len(codes))
	copy(stored, codes)
	r.prefs[uid] = stored
	return nil
}
