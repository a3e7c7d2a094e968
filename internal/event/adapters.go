package event

import (
	"context"

	"github.com/mybbstuff/alerts-engine/internal/model"
	"github.com/mybbstuff/alerts-engine/internal/registry"
	"github.com/mybbstuff/alerts-engine/internal/service/alert"
	"github.com/mybbstuff/alerts-engine/pkg/logger"
)

// Object type namespaces referenced by alerts.
const (
	ObjectTypeRep   = "rep"
	ObjectTypePM    = "pm"
	ObjectTypeBuddy = "buddy"
)

// Adapters maps host domain events onto engine calls. Every creating adapter
// checks the global enable flag before calling AddAlert; disabling a type
// stops new alerts without touching existing ones. Fan-out events issue one
// AddAlert call per target so each target dedups independently.
type Adapters struct {
	engine alert.Service
	loader *registry.Loader
	logger *logger.Logger
}

func NewAdapters(engine alert.Service, loader *registry.Loader, log *logger.Logger) *Adapters {
	return &Adapters{
		engine: engine,
		loader: loader,
		logger: log,
	}
}

func (a *Adapters) HandleReputationAdded(ctx context.Context, ev *ReputationAdded) error {
	enabled, err := a.typeEnabled(ctx, model.AlertTypeRep)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	details := model.ExtraDetails{}
	if ev.Comment != "" {
		details["comment"] = ev.Comment
	}

	_, err = a.engine.AddAlert(ctx, alert.AddAlertParams{
		UID:          ev.UID,
		Code:         model.AlertTypeRep,
		FromUID:      ev.FromUID,
		ObjectType:   ObjectTypeRep,
		ObjectID:     ev.ReputationID,
		ExtraDetails: details,
	})
	return err
}

// HandleReputationViewed marks the user's reputation alerts read across
// every object of the type.
func (a *Adapters) HandleReputationViewed(ctx context.Context, ev *ReputationViewed) error {
	return a.engine.MarkRead(ctx, ev.UID, ObjectTypeRep, nil)
}

func (a *Adapters) HandlePMDelivered(ctx context.Context, ev *PMDelivered) error {
	enabled, err := a.typeEnabled(ctx, model.AlertTypePM)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	details := model.ExtraDetails{}
	if ev.Subject != "" {
		details["subject"] = ev.Subject
	}
	if ev.SenderName != "" {
		details["sender_name"] = ev.SenderName
	}

	for _, uid := range ev.RecipientUIDs {
		if uid == ev.FromUID {
			continue
		}
		if _, err := a.engine.AddAlert(ctx, alert.AddAlertParams{
			UID:          uid,
			Code:         model.AlertTypePM,
			FromUID:      ev.FromUID,
			ObjectType:   ObjectTypePM,
			ObjectID:     ev.PMID,
			ExtraDetails: details,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapters) HandlePMRead(ctx context.Context, ev *PMRead) error {
	return a.engine.MarkRead(ctx, ev.UID, ObjectTypePM, &ev.PMID)
}

// HandleBuddyAdded alerts each added user. The referenced object is the
// buddy relationship, identified by the owner's uid within the buddy
// namespace, so a re-add by the same owner dedups while adds by different
// owners do not.
func (a *Adapters) HandleBuddyAdded(ctx context.Context, ev *BuddyAdded) error {
	enabled, err := a.typeEnabled(ctx, model.AlertTypeBuddylist)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	details := model.ExtraDetails{}
	if ev.Username != "" {
		details["username"] = ev.Username
	}

	for _, uid := range ev.AddedUIDs {
		if uid == ev.UID {
			continue
		}
		if _, err := a.engine.AddAlert(ctx, alert.AddAlertParams{
			UID:          uid,
			Code:         model.AlertTypeBuddylist,
			FromUID:      ev.UID,
			ObjectType:   ObjectTypeBuddy,
			ObjectID:     ev.UID,
			ExtraDetails: details,
		}); err != nil {
			return err
		}
	}
	return nil
}

// HandleBuddyRequestCancelled retracts the unread "added you" alert from
// that specific actor only; alerts already read stay.
func (a *Adapters) HandleBuddyRequestCancelled(ctx context.Context, ev *BuddyRequestCancelled) error {
	return a.engine.RetractUnread(ctx, model.AlertTypeBuddylist, ev.UID, ev.FromUID)
}

func (a *Adapters) HandleUserDeleted(ctx context.Context, ev *UserDeleted) error {
	return a.engine.OnUserDeleted(ctx, ev.UID)
}

func (a *Adapters) typeEnabled(ctx context.Context, code string) (bool, error) {
	reg, err := a.loader.Load(ctx)
	if err != nil {
		return false, err
	}
	if !reg.IsEnabled(code) {
		a.logger.Debug("alert type disabled, skipping event", "code", code)
		return false, nil
	}
	return true, nil
}
