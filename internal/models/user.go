package models

// Stakeholder roles recognised by recipient resolution.
const (
	RoleAdmin        = "admin"
	RoleDriver       = "driver"
	RoleCarrierAdmin = "carrier_admin"
	RoleShipperAdmin = "shipper_admin"
)

// User is the contact read model consumed by the delivery adapters and
// recipient resolution. Account management lives upstream; this service
// only reads these rows.
type User struct {
	BaseModel

	Username string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(255)" json:"email"`
	Phone    string `gorm:"type:varchar(32)" json:"phone"`
	Role     string `gorm:"type:varchar(32);index;not null" json:"role"`

	// CompanyID links carrier and shipper staff to their organisation.
	CompanyID *string `gorm:"type:uuid;index" json:"company_id,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}
