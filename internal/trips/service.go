package trips

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrVehicleNotOwned means the organization has no live vehicle with the
	// given id. The API reports this as an empty result, not a failure.
	ErrVehicleNotOwned = errors.New("this profile does not contain this vehicle")
	ErrTripNotFound    = errors.New("trip does not exist")
	// ErrTripExists enforces the one-live-trip-per-vehicle rule: a vehicle
	// with a trip ending today or later cannot take another.
	ErrTripExists          = errors.New("this trip already exists")
	ErrTripOrgMismatch     = errors.New("this trip is not created by this user")
	ErrTripVehicleMismatch = errors.New("this trip is not created with this vehicle")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type AvailabilityInput struct {
	FromDate     time.Time
	ToDate       time.Time
	FromLocation string
	ToLocation   string
	UserID       uuid.UUID
	VehicleID    uuid.UUID
	OrgID        uuid.UUID
	Price        float64
}

// TripView is the wide detail assembled for a single trip: driver, vehicle
// with images, organization, and whether the requesting customer booked it.
type TripView struct {
	Trip     *models.Trip
	IsBooked bool
}

// AddAvailability creates a trip for the vehicle and marks it available.
// Trip insert and vehicle flag update run in one transaction so a failure
// midway leaves no half-applied state.
func (s *Service) AddAvailability(ctx context.Context, input AvailabilityInput) (*models.Vehicle, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	vehicle, err := s.ownedVehicle(ctx, input.OrgID, input.VehicleID)
	if err != nil {
		return nil, err
	}

	var existing []models.Trip
	if err := s.db.WithContext(ctx).Where("vehicle_id = ?", input.VehicleID).Find(&existing).Error; err != nil {
		return nil, err
	}
	today := truncateToDay(time.Now())
	for _, trip := range existing {
		if !truncateToDay(trip.ToDate).Before(today) {
			return nil, ErrTripExists
		}
	}

	trip := models.Trip{
		FromLocation:   input.FromLocation,
		ToLocation:     input.ToLocation,
		DriverID:       input.UserID,
		OrganizationID: input.OrgID,
		VehicleID:      input.VehicleID,
		FromDate:       input.FromDate,
		ToDate:         input.ToDate,
		Price:          input.Price,
		Status:         true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}
		return tx.Model(vehicle).Update("is_available", true).Error
	})
	if err != nil {
		return nil, err
	}

	vehicle.IsAvailable = true
	return vehicle, nil
}

// RemoveAvailability soft-deletes the trip and marks the vehicle
// unavailable, after checking the trip belongs to the given org and vehicle.
// Nothing mutates when an ownership check fails.
func (s *Service) RemoveAvailability(ctx context.Context, tripID, vehicleID, orgID uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.ownedVehicle(ctx, orgID, vehicleID)
	if err != nil {
		return nil, err
	}

	var trip models.Trip
	if err := s.db.WithContext(ctx).First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if trip.OrganizationID != orgID {
		return nil, ErrTripOrgMismatch
	}
	if trip.VehicleID != vehicleID {
		return nil, ErrTripVehicleMismatch
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&trip).Error; err != nil {
			return err
		}
		return tx.Model(vehicle).Update("is_available", false).Error
	})
	if err != nil {
		return nil, err
	}

	vehicle.IsAvailable = false
	return vehicle, nil
}

// TripForVehicle returns the first live trip for the vehicle, or nil when
// none exists. Absence is not an error here.
func (s *Service) TripForVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID).Order("created_at").First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// EditTrip updates the live trip scheduled on the vehicle. The update is
// keyed by the located trip's primary key, so other trips sharing the
// vehicle's history are never touched.
func (s *Service) EditTrip(ctx context.Context, input AvailabilityInput) (*models.Trip, error) {
	trip, err := s.TripForVehicle(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	updates := map[string]interface{}{
		"from_location":   input.FromLocation,
		"to_location":     input.ToLocation,
		"driver_id":       input.UserID,
		"organization_id": input.OrgID,
		"vehicle_id":      input.VehicleID,
		"from_date":       input.FromDate,
		"to_date":         input.ToDate,
		"price":           input.Price,
	}
	if err := s.db.WithContext(ctx).Model(&models.Trip{}).Where("id = ?", trip.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	var updated models.Trip
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", trip.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// TripDetails assembles the wide trip view for a vehicle, including whether
// the requesting customer already booked it.
func (s *Service) TripDetails(ctx context.Context, vehicleID, customerID uuid.UUID) (*TripView, error) {
	var trip models.Trip
	err := s.db.WithContext(ctx).
		Preload("Driver").
		Preload("Vehicle").
		Preload("Vehicle.Images").
		Preload("Organization").
		Where("vehicle_id = ?", vehicleID).
		Order("created_at").
		First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	var bookings int64
	err = s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("trip_id = ? AND customer_id = ?", trip.ID, customerID).
		Count(&bookings).Error
	if err != nil {
		return nil, err
	}

	return &TripView{Trip: &trip, IsBooked: bookings > 0}, nil
}

func (s *Service) ownedVehicle(ctx context.Context, orgID, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.WithContext(ctx).
		Preload("Images").
		Where("organization_id = ? AND id = ?", orgID, vehicleID).
		First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotOwned
		}
		return nil, err
	}
	return &vehicle, nil
}

// truncateToDay drops the time of day; trip expiry compares whole dates.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
