package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/pkg/config"
	"github.com/peerprog/peerride/pkg/util"
	"gorm.io/gorm"
)

// Seeds a development database with an organization, a driver with two
// vehicles, and a rider account. Safe to re-run: existing rows are reused.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	org := seedOrg(db, logger)
	driver := seedUser(db, logger, "Dev Driver", "driver@peerride.local", &org.ID)
	seedUser(db, logger, "Dev Rider", "rider@peerride.local", nil)

	vehicles := []models.Vehicle{
		{
			OrganizationID: org.ID,
			RegNo:          "KA01AB1234",
			Name:           "Tata Ace",
			Type:           "mini truck",
			CategoryCode:   "V1",
			Capacity:       750,
			CapacityUnit:   "kg",
			ModelYear:      2021,
			Ownership:      "owned",
			OwnerName:      driver.Name,
			City:           "Bengaluru",
		},
		{
			OrganizationID: org.ID,
			RegNo:          "KA01CD5678",
			Name:           "Maruti Eeco",
			Type:           "van",
			CategoryCode:   "V2",
			Capacity:       7,
			CapacityUnit:   "seats",
			ModelYear:      2023,
			Ownership:      "leased",
			OwnerName:      driver.Name,
			City:           "Bengaluru",
		},
	}
	for i := range vehicles {
		v := &vehicles[i]
		err := db.Where("reg_no = ?", v.RegNo).First(v).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			logger.Error("looking up vehicle", "reg_no", v.RegNo, "error", err)
			os.Exit(1)
		}
		if err := db.Create(v).Error; err != nil {
			logger.Error("creating vehicle", "reg_no", v.RegNo, "error", err)
			os.Exit(1)
		}
		image := models.VehicleImage{VehicleID: v.ID, Image: "https://picsum.photos/seed/" + v.RegNo + "/640/480"}
		if err := db.Create(&image).Error; err != nil {
			logger.Error("creating vehicle image", "reg_no", v.RegNo, "error", err)
			os.Exit(1)
		}
		logger.Info("created vehicle", "reg_no", v.RegNo)
	}

	logger.Info("seed complete", "org", org.Slug, "vehicles", len(vehicles), "completed_at", time.Now().Format(time.RFC3339))
}

func seedOrg(db *gorm.DB, logger *slog.Logger) *models.Organization {
	org := models.Organization{Name: "PeerRide Dev Fleet", Slug: "peerride-dev"}
	err := db.Where("slug = ?", org.Slug).First(&org).Error
	if err == gorm.ErrRecordNotFound {
		if err := db.Create(&org).Error; err != nil {
			logger.Error("creating organization", "error", err)
			os.Exit(1)
		}
		logger.Info("created organization", "slug", org.Slug)
	} else if err != nil {
		logger.Error("looking up organization", "error", err)
		os.Exit(1)
	}
	return &org
}

func seedUser(db *gorm.DB, logger *slog.Logger, name, email string, orgID *uuid.UUID) *models.User {
	user := models.User{}
	err := db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user
	}
	if err != gorm.ErrRecordNotFound {
		logger.Error("looking up user", "email", email, "error", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		logger.Error("hashing password", "error", err)
		os.Exit(1)
	}

	user = models.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		OrganizationID: orgID,
		Role:           models.RoleNameIncompleteProfile,
		RoleCode:       models.RoleCodeIncompleteProfile,
		Verified:       true,
		CurrentStep:    2,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("creating user", "email", email, "error", err)
		os.Exit(1)
	}
	logger.Info("created user", "email", email)
	return &user
}
