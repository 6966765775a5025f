package models

// Load is the freight read model used to resolve stakeholders and to
// denormalise display fields into notification payloads.
type Load struct {
	BaseModel

	LoadNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"load_number"`
	Status     string `gorm:"type:varchar(32);index" json:"status"`

	DriverID  *string `gorm:"type:uuid;index" json:"driver_id,omitempty"`
	CarrierID *string `gorm:"type:uuid;index" json:"carrier_id,omitempty"`
	ShipperID *string `gorm:"type:uuid;index" json:"shipper_id,omitempty"`

	PickupLocation   string `gorm:"type:varchar(255)" json:"pickup_location"`
	DeliveryLocation string `gorm:"type:varchar(255)" json:"delivery_location"`
}
