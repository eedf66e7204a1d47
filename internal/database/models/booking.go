package models

import "github.com/google/uuid"

type Booking struct {
	Base
	TripID     uuid.UUID `gorm:"type:uuid;index;not null" json:"trip_id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	Seats      int       `gorm:"default:1" json:"seats"`

	Trip     *Trip `gorm:"foreignKey:TripID" json:"trip,omitempty"`
	Customer *User `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}
