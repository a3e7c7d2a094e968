package event

import (
	"encoding/json"
	"time"
)

// Channel is the broker channel the host forum publishes domain events on.
const Channel = "forum.events"

// Type identifies a host domain event.
type Type string

const (
	TypeReputationAdded       Type = "reputation.added"
	TypeReputationViewed      Type = "reputation.viewed"
	TypePMDelivered           Type = "pm.delivered"
	TypePMRead                Type = "pm.read"
	TypeBuddyAdded            Type = "buddy.added"
	TypeBuddyRequestCancelled Type = "buddy.request_cancelled"
	TypeUserDeleted           Type = "user.deleted"
)

// Envelope wraps every event on the wire.
type Envelope struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// ReputationAdded fires when a user grants reputation to another.
type ReputationAdded struct {
	UID          int64  `json:"uid"`
	FromUID      int64  `json:"from_uid"`
	ReputationID int64  `json:"reputation_id"`
	Comment      string `json:"comment,omitempty"`
}

// ReputationViewed fires when the recipient opens their reputation page.
type ReputationViewed struct {
	UID int64 `json:"uid"`
}

// PMDelivered fires once per private message, listing every recipient.
type PMDelivered struct {
	RecipientUIDs []int64 `json:"recipient_uids"`
	FromUID       int64   `json:"from_uid"`
	PMID          int64   `json:"pm_id"`
	Subject       string  `json:"subject,omitempty"`
	SenderName    string  `json:"sender_name,omitempty"`
}

// PMRead fires when a recipient opens a private message.
type PMRead struct {
	UID  int64 `json:"uid"`
	PMID int64 `json:"pm_id"`
}

// BuddyAdded fires when a user adds others to their buddy list.
type BuddyAdded struct {
	UID       int64   `json:"uid"`
	AddedUIDs []int64 `json:"added_uids"`
	Username  string  `json:"username,omitempty"`
}

// BuddyRequestCancelled fires when a buddy addition is revoked.
type BuddyRequestCancelled struct {
	UID     int64 `json:"uid"`
	FromUID int64 `json:"from_uid"`
}

// UserDeleted fires when an account is removed by an administrator.
type UserDeleted struct {
	UID int64 `json:"uid"`
}
