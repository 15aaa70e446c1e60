// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error

	gormConfig := &gorm.Config{
		// Surface unique violations as gorm.ErrDuplicatedKey so the adoption
		// store can translate them to business errors.
		TranslateError: true,
	}
	if cfg.LogLevel == "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.User{},
		&models.Breed{},
		&models.Dog{},
		&models.Vaccination{},
		&models.AdoptionRequest{},
		&models.PixCharge{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Partial unique indexes backing the adoption invariants: one active
	// request per (user, dog) and at most one approved active request per
	// dog. The service layer checks the same rules inside transactions; these
	// hold the line against any caller that bypasses them.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_adoption_request_user_dog_active
		 ON adoption_requests (user_id, dog_id)
		 WHERE active AND deleted_at IS NULL`,
	).Error; err != nil {
		return fmt.Errorf("failed to create user/dog uniqueness index: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_adoption_request_dog_approved
		 ON adoption_requests (dog_id)
		 WHERE status = 'approved' AND active AND deleted_at IS NULL`,
	).Error; err != nil {
		return fmt.Errorf("failed to create approved-per-dog uniqueness index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}
