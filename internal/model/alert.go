package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Default alert type codes seeded at install time.
const (
	AlertTypeRep               = "rep"
	AlertTypePM                = "pm"
	AlertTypeBuddylist         = "buddylist"
	AlertTypeQuoted            = "quoted"
	AlertTypePostThreadAuthor  = "post_threadauthor"
	AlertTypeSubscribedThread  = "subscribed_thread"
	AlertTypeRatedThreadAuthor = "rated_threadauthor"
	AlertTypeVotedThreadAuthor = "voted_threadauthor"
)

// DefaultAlertTypeCodes is the install-time catalog, all enabled.
var DefaultAlertTypeCodes = []string{
	AlertTypeRep,
	AlertTypePM,
	AlertTypeBuddylist,
	AlertTypeQuoted,
	AlertTypePostThreadAuthor,
	AlertTypeSubscribedThread,
	AlertTypeRatedThreadAuthor,
	AlertTypeVotedThreadAuthor,
}

// AlertType is a named notification category with a global enable flag.
// Codes are immutable once created; types are never deleted, only disabled.
type AlertType struct {
	ID      int64  `json:"id" db:"id"`
	Code    string `json:"code" db:"code"`
	Enabled bool   `json:"enabled" db:"enabled"`
}

// ExtraDetails is the opaque structured payload attached to an alert,
// e.g. message subject or sender display name. Stored as JSONB; an empty
// payload is stored as NULL, not as an empty-object sentinel.
type ExtraDetails map[string]string

func (d ExtraDetails) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *ExtraDetails) Scan(src interface{}) error {
	if src == nil {
		*d = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for extra details: %T", src)
	}
	return json.Unmarshal(data, d)
}

// Alert is a single per-user notification row.
type Alert struct {
	ID           int64        `json:"id" db:"id"`
	UID          int64        `json:"uid" db:"uid"`
	AlertTypeID  int64        `json:"alert_type_id" db:"alert_type_id"`
	FromUID      int64        `json:"from_uid" db:"from_uid"`
	ObjectType   string       `json:"object_type" db:"object_type"`
	ObjectID     int64        `json:"object_id" db:"object_id"`
	Forced       bool         `json:"forced" db:"forced"`
	ExtraDetails ExtraDetails `json:"extra_details,omitempty" db:"extra_details"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	ReadAt       *time.Time   `json:"read_at,omitempty" db:"read_at"`
}

// Read reports whether the alert has been consumed.
func (a *Alert) Read() bool {
	return a.ReadAt != nil
}

// ReadFilter selects alerts by recipient and referenced object. ObjectID nil
// matches every object of that type for the user.
type ReadFilter struct {
	UID        int64
	ObjectType string
	ObjectID   *int64
}

// RetractFilter selects unread alerts by type, recipient and actor. Used to
// undo an alert whose triggering action was cancelled before being seen.
type RetractFilter struct {
	AlertTypeID int64
	UID         int64
	FromUID     int64
}

// AlertFilters narrows per-user listings.
type AlertFilters struct {
	UID        int64
	UnreadOnly bool
	Limit      int
	Offset     int
}
