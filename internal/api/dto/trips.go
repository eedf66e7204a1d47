package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/trips"
)

type AvailabilityRequest struct {
	FromDate     string  `json:"fromDate"`
	ToDate       string  `json:"toDate"`
	FromLocation string  `json:"fromLocation"`
	ToLocation   string  `json:"toLocation"`
	UserID       string  `json:"userId"`
	VehicleID    string  `json:"vehicleId"`
	OrgID        string  `json:"orgId"`
	Price        float64 `json:"price"`
}

// Validate requires all eight fields. A price of zero counts as missing;
// callers have always been rejected for it and existing clients rely on the
// message.
func (r AvailabilityRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.FromDate == "" {
		errors["fromDate"] = "From date is required"
	}
	if r.ToDate == "" {
		errors["toDate"] = "To date is required"
	}
	if r.FromLocation == "" {
		errors["fromLocation"] = "From location is required"
	}
	if r.ToLocation == "" {
		errors["toLocation"] = "To location is required"
	}
	if r.UserID == "" {
		errors["userId"] = "User id is required"
	}
	if r.VehicleID == "" {
		errors["vehicleId"] = "Vehicle id is required"
	}
	if r.OrgID == "" {
		errors["orgId"] = "Org id is required"
	}
	if r.Price == 0 {
		errors["price"] = "Price is required"
	}

	return errors
}

// Input parses the request into service identifiers and dates.
func (r AvailabilityRequest) Input() (trips.AvailabilityInput, error) {
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return trips.AvailabilityInput{}, fmt.Errorf("invalid user id: %w", err)
	}
	vehicleID, err := uuid.Parse(r.VehicleID)
	if err != nil {
		return trips.AvailabilityInput{}, fmt.Errorf("invalid vehicle id: %w", err)
	}
	orgID, err := uuid.Parse(r.OrgID)
	if err != nil {
		return trips.AvailabilityInput{}, fmt.Errorf("invalid org id: %w", err)
	}
	fromDate, err := ParseDate(r.FromDate)
	if err != nil {
		return trips.AvailabilityInput{}, fmt.Errorf("invalid from date: %w", err)
	}
	toDate, err := ParseDate(r.ToDate)
	if err != nil {
		return trips.AvailabilityInput{}, fmt.Errorf("invalid to date: %w", err)
	}

	return trips.AvailabilityInput{
		FromDate:     fromDate,
		ToDate:       toDate,
		FromLocation: r.FromLocation,
		ToLocation:   r.ToLocation,
		UserID:       userID,
		VehicleID:    vehicleID,
		OrgID:        orgID,
		Price:        r.Price,
	}, nil
}

// ParseDate accepts a plain date or a full RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type RemoveAvailabilityRequest struct {
	VehicleID string `json:"vehicleId"`
	OrgID     string `json:"orgId"`
}

type SpecificTripRequest struct {
	VehicleID string `json:"vehicleId"`
	UserID    string `json:"userId"`
}

// VehicleResponse is returned by the availability mutations. Vehicles stays
// an empty list when the org/vehicle pair resolves to nothing; that case is
// a 200, not an error.
type VehicleResponse struct {
	VehicleDetails *models.Vehicle  `json:"vehicleDetails,omitempty"`
	Vehicles       []models.Vehicle `json:"vehicles,omitempty"`
	Message        string           `json:"message"`
}

type TripResponse struct {
	Trip *models.Trip `json:"trip"`
}

type TripDetailResponse struct {
	Trip     *models.Trip `json:"trip"`
	IsBooked bool         `json:"isBooked"`
}
