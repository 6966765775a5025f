package models

// PushSubscription stores one browser/device web-push registration.
// A user may hold several; expired subscriptions are pruned when the
// push service reports them gone.
type PushSubscription struct {
	BaseModel

	UserID     string `gorm:"type:uuid;index;not null" json:"user_id"`
	Endpoint   string `gorm:"type:text;not null" json:"endpoint"`
	P256dhKey  string `gorm:"type:varchar(255);not null" json:"p256dh_key"`
	AuthKey    string `gorm:"type:varchar(255);not null" json:"auth_key"`
	DeviceName string `gorm:"type:varchar(128)" json:"device_name"`
}
