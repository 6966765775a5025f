package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationDelivery is an append-mostly audit row for one channel
// delivery attempt. Rows are created in the sending state and updated
// exactly once to a terminal status; they are never deleted except by
// retention maintenance.
type NotificationDelivery struct {
	BaseModel

	UserID  string `gorm:"type:uuid;index" json:"user_id"`
	Type    string `gorm:"type:varchar(64);not null" json:"type"`
	Channel string `gorm:"type:varchar(16);not null" json:"channel"`
	Status  string `gorm:"type:varchar(16);index;not null" json:"status"`

	Payload datatypes.JSON `json:"payload"`
	Error   string         `gorm:"type:text" json:"error,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
