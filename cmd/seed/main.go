package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"clinicbook/internal/database"
	"clinicbook/internal/domain"
)

// Seeds a development database: one admin account, the treatment catalog and
// a two-week rolling slot window. Wipes existing rows first, so never point
// it at production data.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "clinicbook.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM idempotency_keys")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM payment_requests")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM customers")
	db.Exec("DELETE FROM availability_slots")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM admin_users")

	// ================== ADMIN ==================
	log.Println("Creating admin user...")
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	db.Create(&domain.AdminUser{
		Email:        "admin@khtherapy.ie",
		PasswordHash: string(adminHash),
		Name:         "Clinic Admin",
		Role:         "admin",
	})

	// ================== SERVICES ==================
	log.Println("Creating treatment catalog...")
	services := []domain.Service{
		{
			Name:           "Basic Wellness",
			Category:       "Packages",
			Description:    "General treatment session covering assessment and hands-on therapy.",
			PricingKind:    domain.PricingTimeDependent,
			InHourPrice:    65,
			OutOfHourPrice: 80,
			IsActive:       true,
		},
		{
			Name:           "Deep Tissue Massage",
			Category:       "Massage",
			Description:    "Focused deep tissue work for chronic tension and recovery.",
			PricingKind:    domain.PricingTimeDependent,
			InHourPrice:    50,
			OutOfHourPrice: 60,
			IsActive:       true,
		},
		{
			Name:           "Sports Massage",
			Category:       "Massage",
			Description:    "Pre- and post-event muscle work for active clients.",
			PricingKind:    domain.PricingTimeDependent,
			InHourPrice:    70,
			OutOfHourPrice: 85,
			IsActive:       true,
		},
		{
			Name:           "Physiotherapy Assessment",
			Category:       "Physiotherapy",
			Description:    "Initial consultation with movement screening and treatment plan.",
			PricingKind:    domain.PricingTimeDependent,
			InHourPrice:    60,
			OutOfHourPrice: 75,
			IsActive:       true,
		},
		{
			Name:        "Ultimate Health",
			Category:    "Packages",
			Description: "Extended programme combining physiotherapy and massage sessions.",
			PricingKind: domain.PricingStandard,
			Price:       150,
			IsActive:    true,
		},
		{
			Name:        "Dry Needling Session",
			Category:    "Physiotherapy",
			Description: "Trigger point dry needling add-on session.",
			PricingKind: domain.PricingStandard,
			Price:       45,
			IsActive:    true,
		},
		{
			// Quoted per engagement; bookings for it skip the payment request.
			Name:        "Corporate Wellness",
			Category:    "Packages",
			Description: "Workplace events and on-site clinics. Contact for quote.",
			PricingKind: domain.PricingStandard,
			Price:       0,
			IsActive:    true,
		},
	}
	for i := range services {
		db.Create(&services[i])
	}

	// ================== AVAILABILITY ==================
	log.Println("Creating availability slots...")
	var slotCount int
	today := time.Now()
	for d := 1; d <= 14; d++ {
		day := today.AddDate(0, 0, d)
		date := day.Format(domain.DateFormat)

		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			// Weekend mornings run as out-of-hour.
			for h := 10; h <= 12; h++ {
				db.Create(&domain.AvailabilitySlot{
					Date:        date,
					StartTime:   fmt.Sprintf("%02d:00", h),
					EndTime:     fmt.Sprintf("%02d:00", h+1),
					SlotType:    domain.SlotOutOfHour,
					IsAvailable: true,
				})
				slotCount++
			}
		default:
			for h := 9; h <= 16; h++ {
				db.Create(&domain.AvailabilitySlot{
					Date:        date,
					StartTime:   fmt.Sprintf("%02d:00", h),
					EndTime:     fmt.Sprintf("%02d:00", h+1),
					SlotType:    domain.SlotInHour,
					IsAvailable: true,
				})
				slotCount++
			}
			for h := 17; h <= 19; h++ {
				db.Create(&domain.AvailabilitySlot{
					Date:        date,
					StartTime:   fmt.Sprintf("%02d:00", h),
					EndTime:     fmt.Sprintf("%02d:00", h+1),
					SlotType:    domain.SlotOutOfHour,
					IsAvailable: true,
				})
				slotCount++
			}
		}
	}

	log.Printf("Seed completed: %d services, %d slots", len(services), slotCount)
	log.Println("Admin login: admin@khtherapy.ie / admin123")
}
