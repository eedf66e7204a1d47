// Package testutil wires an in-memory stack for handler and service tests:
// a sqlite database migrated with the real models, real token and crypto
// services, and a recording fake for the verification queue.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/trips"
	"github.com/peerprog/peerride/pkg/crypto"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestAccessSecret  = "test-access-secret"
	TestRefreshSecret = "test-refresh-secret"
	TestPassword      = "password123"
)

// FakeEnqueuer records verification requests instead of touching Redis.
type FakeEnqueuer struct {
	mu    sync.Mutex
	Calls []VerificationCall
	Err   error
}

type VerificationCall struct {
	UserID uuid.UUID
	Email  string
}

func (f *FakeEnqueuer) EnqueueEmailVerification(ctx context.Context, userID uuid.UUID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, VerificationCall{UserID: userID, Email: email})
	return nil
}

type TestContext struct {
	T           *testing.T
	DB          *gorm.DB
	JWT         *auth.JWTService
	Encryptor   *crypto.Encryptor
	Enqueuer    *FakeEnqueuer
	AuthService *auth.Service
	TripService *trips.Service
}

func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	jwt := auth.NewJWTService(TestAccessSecret, TestRefreshSecret, 15*time.Minute)

	encryptor, err := crypto.NewEncryptor("")
	require.NoError(t, err)

	enqueuer := &FakeEnqueuer{}

	tc := &TestContext{
		T:           t,
		DB:          db,
		JWT:         jwt,
		Encryptor:   encryptor,
		Enqueuer:    enqueuer,
		AuthService: auth.NewService(db, jwt, encryptor, enqueuer),
		TripService: trips.NewService(db),
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return tc
}

func (tc *TestContext) CreateOrg(name string) *models.Organization {
	tc.T.Helper()
	org := &models.Organization{Name: name, Slug: name + "-" + uuid.NewString()[:8]}
	require.NoError(tc.T, tc.DB.Create(org).Error)
	return org
}

// CreateUser persists a user with TestPassword and an encrypted e-sign.
func (tc *TestContext) CreateUser(email string, orgID *uuid.UUID) *models.User {
	tc.T.Helper()

	hash, err := auth.HashPassword(TestPassword)
	require.NoError(tc.T, err)
	eSign, err := tc.Encryptor.EncryptString("signed:" + email)
	require.NoError(tc.T, err)

	user := &models.User{
		Name:           "Test User",
		Email:          email,
		PasswordHash:   hash,
		OrganizationID: orgID,
		Role:           models.RoleNameIncompleteProfile,
		RoleCode:       models.RoleCodeIncompleteProfile,
		ESign:          eSign,
		CurrentStep:    1,
	}
	require.NoError(tc.T, tc.DB.Create(user).Error)
	return user
}

func (tc *TestContext) CreateVehicle(orgID uuid.UUID, regNo string) *models.Vehicle {
	tc.T.Helper()
	vehicle := &models.Vehicle{
		OrganizationID: orgID,
		RegNo:          regNo,
		Name:           "Test Vehicle",
		Type:           "van",
		Capacity:       4,
		CapacityUnit:   "seats",
		City:           "Testville",
	}
	require.NoError(tc.T, tc.DB.Create(vehicle).Error)
	return vehicle
}

// CreateTrip schedules a live trip ending tomorrow and flags the vehicle
// available, mirroring what AddAvailability produces.
func (tc *TestContext) CreateTrip(driverID, orgID, vehicleID uuid.UUID) *models.Trip {
	tc.T.Helper()
	trip := &models.Trip{
		FromLocation:   "Alpha",
		ToLocation:     "Beta",
		DriverID:       driverID,
		OrganizationID: orgID,
		VehicleID:      vehicleID,
		FromDate:       time.Now(),
		ToDate:         time.Now().Add(24 * time.Hour),
		Price:          250,
		Status:         true,
	}
	require.NoError(tc.T, tc.DB.Create(trip).Error)
	require.NoError(tc.T, tc.DB.Model(&models.Vehicle{}).Where("id = ?", vehicleID).Update("is_available", true).Error)
	return trip
}

func (tc *TestContext) CreateBooking(tripID, customerID uuid.UUID) *models.Booking {
	tc.T.Helper()
	booking := &models.Booking{TripID: tripID, CustomerID: customerID, Seats: 1}
	require.NoError(tc.T, tc.DB.Create(booking).Error)
	return booking
}

// DoJSON sends a JSON request through the handler and returns the recorder.
func DoJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, modify ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range modify {
		m(req)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// WithCookie attaches a cookie to the outgoing request.
func WithCookie(name, value string) func(*http.Request) {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// WithBearer sets the Authorization header.
func WithBearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

// ParseJSON decodes the recorded response body into v.
func ParseJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ResponseCookie returns the named Set-Cookie from the recorded response.
func ResponseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
