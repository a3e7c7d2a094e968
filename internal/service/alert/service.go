package alert

import (
	"context"
	"time"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/repository"
	"github.com/mybbstuff/alerts-engine/pkg/errors"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
	"github.com/mybbstuff/alerts-engine/pkg/metrics"
)

// AddAlertParams carries everything an event adapter extracts from a host
// domain event.
type AddAlertParams struct {
	UID          int64
	Code         string
	FromUID      int64
	ObjectType   string
	ObjectID     int64
	ExtraDetails model.ExtraDetails
	Forced       bool
}

// Service is the alert engine. Creation dedups non-forced alerts against the
// same (uid, objectType, objectID) triple; disabling a type is the adapters'
// concern and never retroactively hides existing rows.
type Service interface {
	AddAlert(ctx context.Context, params AddAlertParams) (bool, error)
	MarkRead(ctx context.Context, uid int64, objectType string, objectID *int64) error
	RetractUnread(ctx context.Context, code string, uid, fromUID int64) error
	OnUserDeleted(ctx context.Context, uid int64) error
	ListForUser(ctx context.Context, uid int64, query *model.ListAlertsQuery) ([]*model.Alert, error)
	UnreadCount(ctx context.Context, uid int64) (int, error)
}

type service struct {
	repo    repository.AlertRepository
	prefs   repository.UserPreferenceRepository
	loader  *registry.Loader
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(
	repo repository.AlertRepository,
	prefs repository.UserPreferenceRepository,
	loader *registry.Loader,
	log *logger.Logger,
	m *metrics.Metrics,
) Service {
	return &service{
		repo:    repo,
		prefs:   prefs,
		loader:  loader,
		logger:  log,
		metrics: m,
	}
}

// AddAlert resolves the type code, applies duplicate suppression unless
// forced, and inserts the row. An unknown code is a silent no-op: the host
// may reference types that are not installed.
func (s *service) AddAlert(ctx context.Context, params AddAlertParams) (bool, error) {
	if err := s.validateParams(&params); err != nil {
		return false, err
	}

	reg, err := s.loader.Load(ctx)
	if err != nil {
		return false, err
	}

	typeID, ok := reg.ResolveID(params.Code)
	if !ok {
		s.logger.Debug("alert type not in catalog, skipping", "code", params.Code)
		s.suppressed("unknown_type")
		return false, nil
	}

	if !params.Forced {
		count, err := s.repo.CountMatching(ctx, params.UID, params.ObjectType, params.ObjectID)
		if err != nil {
			return false, err
		}
		// Any prior alert for the triple suppresses a new non-forced one,
		// read or not; repeated identical actions must not storm the user.
		if count > 0 {
			s.suppressed("duplicate")
			return false, nil
		}
	}

	alert := &model.Alert{
		UID:          params.UID,
		AlertTypeID:  typeID,
		FromUID:      params.FromUID,
		ObjectType:   params.ObjectType,
		ObjectID:     params.ObjectID,
		Forced:       params.Forced,
		ExtraDetails: params.ExtraDetails,
	}

	created, err := s.repo.Insert(ctx, alert)
	if err != nil {
		return false, err
	}
	if !created {
		// Lost the check-then-insert race; the store's uniqueness rule
		// already holds the invariant, so report suppressed.
		s.suppressed("conflict")
		return false, nil
	}

	if s.metrics != nil {
		s.metrics.AlertsCreated.WithLabelValues(params.Code).Inc()
	}
	s.logger.Debug("alert created",
		"uid", params.UID, "code", params.Code, "object_type", params.ObjectType, "object_id", params.ObjectID)

	return true, nil
}

// MarkRead stamps the current time on the user's unread alerts for the
// object. Calling it with no matching rows is a no-op, and rows already
// read are never touched again.
func (s *service) MarkRead(ctx context.Context, uid int64, objectType string, objectID *int64) error {
	if uid <= 0 {
		return errors.NewValidation("uid must be positive")
	}
	if objectType == "" {
		return errors.NewValidation("object type is required")
	}

	marked, err := s.repo.MarkReadMatching(ctx, model.ReadFilter{
		UID:        uid,
		ObjectType: objectType,
		ObjectID:   objectID,
	}, time.Now())
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.AlertsMarkedRead.Add(float64(marked))
	}
	return nil
}

// RetractUnread removes unread alerts of the given type from one specific
// actor, used when the triggering relationship is cancelled before being
// seen. An unresolved code is a no-op.
func (s *service) RetractUnread(ctx context.Context, code string, uid, fromUID int64) error {
	if uid <= 0 {
		return errors.NewValidation("uid must be positive")
	}

	reg, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}

	typeID, ok := reg.ResolveID(code)
	if !ok {
		return nil
	}

	deleted, err := s.repo.DeleteMatching(ctx, model.RetractFilter{
		AlertTypeID: typeID,
		UID:         uid,
		FromUID:     fromUID,
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.AlertsRetracted.Add(float64(deleted))
	}
	return nil
}

// OnUserDeleted hard-deletes every alert addressed to the user.
func (s *service) OnUserDeleted(ctx context.Context, uid int64) error {
	if uid <= 0 {
		return errors.NewValidation("uid must be positive")
	}

	deleted, err := s.repo.DeleteForUser(ctx, uid)
	if err != nil {
		return err
	}

	s.logger.Info("deleted alerts for removed user", "uid", uid, "count", deleted)
	return nil
}

// ListForUser returns the user's alerts, newest first, with types the user
// disabled filtered out. Per-user filtering belongs to this display path
// only; it never gates creation.
func (s *service) ListForUser(ctx context.Context, uid int64, query *model.ListAlertsQuery) ([]*model.Alert, error) {
	if uid <= 0 {
		return nil, errors.NewValidation("uid must be positive")
	}

	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	alerts, err := s.repo.List(ctx, &model.AlertFilters{
		UID:        uid,
		UnreadOnly: query.UnreadOnly,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	disabled, err := s.disabledTypeIDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(disabled) == 0 {
		return alerts, nil
	}

	filtered := make([]*model.Alert, 0, len(alerts))
	for _, a := range alerts {
		if _, ok := disabled[a.AlertTypeID]; ok {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered, nil
}

func (s *service) UnreadCount(ctx context.Context, uid int64) (int, error) {
	if uid <= 0 {
		return 0, errors.NewValidation("uid must be positive")
	}
	return s.repo.CountUnread(ctx, uid)
}

// disabledTypeIDs maps the user's disabled codes to catalog ids. Codes no
// longer in the catalog are inert.
func (s *service) disabledTypeIDs(ctx context.Context, uid int64) (map[int64]struct{}, error) {
	pref, err := s.prefs.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(pref.DisabledTypes) == 0 {
		return nil, nil
	}

	reg, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]struct{}, len(pref.DisabledTypes))
	for _, code := range pref.DisabledTypes {
		if id, ok := reg.ResolveID(code); ok {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

func (s *service) validateParams(params *AddAlertParams) error {
	if params.UID <= 0 {
		return errors.NewValidation("uid must be positive")
	}
	if params.FromUID < 0 {
		return errors.NewValidation("from uid must not be negative")
	}
	if params.Code == "" {
		return errors.NewValidation("alert type code is required")
	}
	if params.ObjectType == "" {
		return errors.NewValidation("object type is required")
	}
	return nil
}

func (s *service) suppressed(reason string) {
	if s.metrics != nil {
		s.metrics.AlertsSuppressed.WithLabelValues(reason).Inc()
	}
}
