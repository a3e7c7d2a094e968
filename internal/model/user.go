package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DisabledCodes is the per-user set of alert type codes the user opted out
// of, kept as a serialized JSON list on the user record. Entries referencing
// a since-removed code are inert; the list is never validated against the
// catalog.
type DisabledCodes []string

func (c DisabledCodes) Value() (driver.Value, error) {
	if c == nil {
		c = DisabledCodes{}
	}
	return json.Marshal(c)
}

func (c *DisabledCodes) Scan(src interface{}) error {
	if src == nil {
		*c = DisabledCodes{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for disabled codes: %T", src)
	}
	if len(data) == 0 {
		*c = DisabledCodes{}
		return nil
	}
	return json.Unmarshal(data, c)
}

// Contains reports whether code is in the set.
func (c DisabledCodes) Contains(code string) bool {
	for _, v := range c {
		if v == code {
			return true
		}
	}
	return false
}

// UserPreference is the display-path opt-out record for one user. It gates
// what the user sees, never what gets created.
type UserPreference struct {
	UID           int64         `json:"uid" db:"uid"`
	DisabledTypes DisabledCodes `json:"disabled_alert_types" db:"disabled_alert_types"`
}
