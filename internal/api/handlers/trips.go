package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/api/dto"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/trips"
)

type TripHandler struct {
	tripService *trips.Service
}

func NewTripHandler(tripService *trips.Service) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// AddAvailability schedules a trip on a vehicle. A vehicle the org does not
// own yields a 200 with an empty vehicle list, not an error.
func (h *TripHandler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Insufficient data", Details: errs})
		return
	}

	input, err := req.Input()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	vehicle, err := h.tripService.AddAvailability(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrUserNotFound):
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "User not found"})
		case errors.Is(err, trips.ErrVehicleNotOwned):
			writeJSON(w, http.StatusOK, dto.VehicleResponse{
				Message:  "This profile does not contain any vehicles",
				Vehicles: []models.Vehicle{},
			})
		case errors.Is(err, trips.ErrTripExists):
			writeJSON(w, http.StatusBadRequest, dto.VehicleResponse{
				Message:  "This trip already exists",
				Vehicles: []models.Vehicle{},
			})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.VehicleResponse{
		VehicleDetails: vehicle,
		Message:        "You have successfully added availability to the vehicle",
	})
}

func (h *TripHandler) RemoveAvailability(w http.ResponseWriter, r *http.Request) {
	tripID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Insufficient data"})
		return
	}

	var req dto.RemoveAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Insufficient data"})
		return
	}
	vehicleID, okV := parseID(req.VehicleID)
	orgID, okO := parseID(req.OrgID)
	if !okV || !okO {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Insufficient data"})
		return
	}

	vehicle, err := h.tripService.RemoveAvailability(r.Context(), tripID, vehicleID, orgID)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrVehicleNotOwned):
			writeJSON(w, http.StatusOK, dto.VehicleResponse{
				Message:  "This profile does not possess this vehicle",
				Vehicles: []models.Vehicle{},
			})
		case errors.Is(err, trips.ErrTripNotFound):
			writeJSON(w, http.StatusOK, dto.VehicleResponse{
				Message:  "This trip does not exist",
				Vehicles: []models.Vehicle{},
			})
		case errors.Is(err, trips.ErrTripOrgMismatch):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Message: "This trip is not created by this user"})
		case errors.Is(err, trips.ErrTripVehicleMismatch):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Message: "This trip is not created with this vehicle"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.VehicleResponse{
		VehicleDetails: vehicle,
		Message:        "The trip has been successfully removed",
	})
}

// GetTripDetails returns the vehicle's live trip; absence is an empty
// result, not an error.
func (h *TripHandler) GetTripDetails(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Insufficient data"})
		return
	}

	trip, err := h.tripService.TripForVehicle(r.Context(), vehicleID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.TripResponse{Trip: trip})
}

func (h *TripHandler) EditTripDetails(w http.ResponseWriter, r *http.Request) {
	var req dto.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Insufficient data", Details: errs})
		return
	}

	input, err := req.Input()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	trip, err := h.tripService.EditTrip(r.Context(), input)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Trip does not exist"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.TripResponse{Trip: trip})
}

// GetSpecificTripDetails returns the wide trip view plus whether the
// requesting customer already booked it.
func (h *TripHandler) GetSpecificTripDetails(w http.ResponseWriter, r *http.Request) {
	var req dto.SpecificTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	vehicleID, ok := parseID(req.VehicleID)
	if !ok {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Insufficient data"})
		return
	}
	// The customer id is optional; without it the booking check simply
	// matches nothing.
	customerID, _ := parseID(req.UserID)

	view, err := h.tripService.TripDetails(r.Context(), vehicleID, customerID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Message: "Trip not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.TripDetailResponse{
		Trip:     view.Trip,
		IsBooked: view.IsBooked,
	})
}

func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
