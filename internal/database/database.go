package database

import (
	"context"
	"fmt"
	"time"

	"github.com/vekst-crm/crm-api/internal/config"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := cfg.ConnectionString()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// HealthCheck verifies the database connection is alive
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// AutoMigrate runs automatic migrations (for development only).
// Production schema changes go through the goose migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Workspace{},
		&domain.User{},
		&domain.Tag{},
		&domain.Business{},
		&domain.Contact{},
		&domain.Activity{},
		&domain.Offer{},
		&domain.OfferItem{},
		&domain.JobApplication{},
		&domain.JobApplicationSkill{},
		&domain.Ticket{},
		&domain.TicketComment{},
		&domain.File{},
		&domain.EmailProvider{},
		&domain.Account{},
		&domain.SmsMessage{},
	)
}
