package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/addisbingo/bingo-backend/models"
)

var DB *gorm.DB

// SetupDatabase connects to the database and runs migrations. TranslateError
// is on so unique-index violations surface as gorm.ErrDuplicatedKey; the
// ledger's idempotency guard depends on that.
func SetupDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Transaction{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	DB = db
	return db, nil
}
