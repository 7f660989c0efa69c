package database

import (
	"log"
	"strings"

	"clinicbook/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	// Registers the CGO-free "sqlite" database/sql driver the sqlite branch
	// of Connect names.
	_ "modernc.org/sqlite"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate keeps the schema in step with the domain models. Safe to run on
// every boot; gorm only applies the diff.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Service{},
		&domain.AvailabilitySlot{},
		&domain.Customer{},
		&domain.Booking{},
		&domain.PaymentRequest{},
		&domain.Notification{},
		&domain.AdminUser{},
		&domain.IdempotencyKey{},
	)
}
