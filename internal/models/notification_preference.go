package models

import (
	"gorm.io/datatypes"
)

// NotificationPreference stores one user's delivery settings: global
// channel toggles, an optional quiet-hours window (HH:MM, may wrap
// midnight) and a per-notification-type map of enablement plus ordered
// channel lists. Created lazily with defaults on first read.
type NotificationPreference struct {
	BaseModel

	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	EnablePush  bool `gorm:"default:true" json:"enable_push"`
	EnableSMS   bool `gorm:"default:true" json:"enable_sms"`
	EnableEmail bool `gorm:"default:true" json:"enable_email"`

	QuietHoursStart *string `gorm:"type:varchar(5)" json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   *string `gorm:"type:varchar(5)" json:"quiet_hours_end,omitempty"`
	Timezone        string  `gorm:"type:varchar(64)" json:"timezone,omitempty"`

	// Types holds the per-notification-type settings as JSON:
	// {"load_assigned": {"enabled": true, "channels": ["push","email"]}, ...}
	Types datatypes.JSON `json:"types"`
}
