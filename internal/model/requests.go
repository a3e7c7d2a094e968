package model

// MarkReadRequest marks a user's alerts for an object (or a whole object
// type) as read.
type MarkReadRequest struct {
	ObjectType string `json:"object_type" binding:"required,alertcode"`
	ObjectID   *int64 `json:"object_id,omitempty"`
}

// CreateAlertTypeRequest registers a new alert type code.
type CreateAlertTypeRequest struct {
	Code    string `json:"code" binding:"required,alertcode"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// UpdateAlertTypeRequest toggles the global enable flag for a type.
type UpdateAlertTypeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UpdatePreferencesRequest replaces a user's disabled-type list.
type UpdatePreferencesRequest struct {
	DisabledTypes []string `json:"disabled_alert_types" binding:"required,dive,alertcode"`
}

// ListAlertsQuery carries listing pagination.
type ListAlertsQuery struct {
	Page       int  `form:"page,default=1" binding:"min=1"`
	PageSize   int  `form:"page_size,default=10" binding:"min=1,max=100"`
	UnreadOnly bool `form:"unread_only"`
}
