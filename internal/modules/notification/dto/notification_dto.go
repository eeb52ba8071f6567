package dto

// GenerateRequest is the admin/trigger entry point body for the pipeline.
type GenerateRequest struct {
	Kind    string                 `json:"kind" binding:"required"`
	UserID  string                 `json:"user_id" binding:"required,uuid"`
	Context map[string]interface{} `json:"context"`
}

// UpdatePreferencesRequest is a partial update; omitted fields are untouched.
type UpdatePreferencesRequest struct {
	EmailEnabled    *bool           `json:"email_enabled"`
	PushEnabled     *bool           `json:"push_enabled"`
	DesktopEnabled  *bool           `json:"desktop_enabled"`
	Categories      map[string]bool `json:"categories"`
	Frequency       *string         `json:"frequency" binding:"omitempty,oneof=immediate hourly daily"`
	QuietHoursStart *string         `json:"quiet_hours_start"`
	QuietHoursEnd   *string         `json:"quiet_hours_end"`
}
