package models

import "github.com/google/uuid"

// Vehicle belongs to an organization. IsAvailable mirrors whether the
// vehicle currently has a live trip scheduled.
type Vehicle struct {
	Base
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	RegNo          string    `gorm:"uniqueIndex" json:"reg_no"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	CategoryCode   string    `json:"category_code"`
	Capacity       int       `json:"capacity"`
	CapacityUnit   string    `json:"capacity_unit"`
	ModelYear      int       `json:"model_year"`
	RCValidity     string    `json:"rc_validity"`
	Ownership      string    `json:"ownership"`
	OwnerName      string    `json:"owner_name"`
	City           string    `json:"city"`
	IsAvailable    bool      `gorm:"default:false" json:"is_available"`

	Images []VehicleImage `gorm:"foreignKey:VehicleID" json:"images,omitempty"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

type VehicleImage struct {
	Base
	VehicleID uuid.UUID `gorm:"type:uuid;index;not null" json:"vehicle_id"`
	Image     string    `json:"image"`
}

func (VehicleImage) TableName() string {
	return "vehicle_images"
}
