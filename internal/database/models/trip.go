package models

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a vehicle-availability window posted by a driver. At most one
// live trip whose ToDate is today or later may exist per vehicle; the trips
// service enforces that at creation time.
type Trip struct {
	Base
	FromLocation   string    `gorm:"not null" json:"from_location"`
	ToLocation     string    `gorm:"not null" json:"to_location"`
	DriverID       uuid.UUID `gorm:"type:uuid;index;not null" json:"driver_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organization_id"`
	VehicleID      uuid.UUID `gorm:"type:uuid;index;not null" json:"vehicle_id"`
	FromDate       time.Time `json:"from_date"`
	ToDate         time.Time `json:"to_date"`
	Price          float64   `json:"price"`
	Status         bool      `gorm:"default:true" json:"status"`

	Driver       *User         `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Vehicle      *Vehicle      `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (Trip) TableName() string {
	return "trips"
}
