package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mybbstuff/alerts-engine/pkg/logger"
	"github.com/mybbstuff/alerts-engine/pkg/messaging"
)

// Consumer subscribes to the host forum's event channel and dispatches each
// envelope to its adapter. Errors are surfaced to the log and the loop moves
// on; whether to retry the triggering action is the host's decision.
type Consumer struct {
	broker   messaging.Broker
	adapters *Adapters
	logger   *logger.Logger
}

func NewConsumer(broker messaging.Broker, adapters *Adapters, log *logger.Logger) *Consumer {
	return &Consumer{
		broker:   broker,
		adapters: adapters,
		logger:   log,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.broker.Subscribe(ctx, Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	c.logger.Info("event consumer started", "channel", Channel)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("event consumer shutting down")
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.dispatch(ctx, raw); err != nil {
				c.logger.Error(err, "failed to handle event")
			}
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode event envelope: %w", err)
	}

	switch env.Type {
	case TypeReputationAdded:
		var ev ReputationAdded
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandleReputationAdded(ctx, &ev)
	case TypeReputationViewed:
		var ev ReputationViewed
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandleReputationViewed(ctx, &ev)
	case TypePMDelivered:
		var ev PMDelivered
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandlePMDelivered(ctx, &ev)
	case TypePMRead:
		var ev PMRead
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandlePMRead(ctx, &ev)
	case TypeBuddyAdded:
		var ev BuddyAdded
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandleBuddyAdded(ctx, &ev)
	case TypeBuddyRequestCancelled:
		var ev BuddyRequestCancelled
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandleBuddyRequestCancelled(ctx, &ev)
	case TypeUserDeleted:
		var ev UserDeleted
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
		}
		return c.adapters.HandleUserDeleted(ctx, &ev)
	default:
		// Unknown events are other plugins' business.
		c.logger.Debug("ignoring event", "type", string(env.Type), "id", env.ID)
		return nil
	}
}
