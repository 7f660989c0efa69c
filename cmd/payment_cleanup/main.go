package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"clinicbook/internal/database"
	"clinicbook/internal/repository"
)

// Expires overdue payment requests and prunes spent idempotency keys. Meant
// to run from cron; the API also expires requests lazily on read, so this
// only sweeps rows nobody has looked at.
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	expired, err := repository.NewPaymentRequestRepository(db).ExpireDue(ctx, now)
	if err != nil {
		log.Fatal("expire payment requests:", err)
	}

	pruned, err := repository.NewIdempotencyRepository(db).DeleteExpired(ctx, now)
	if err != nil {
		log.Fatal("prune idempotency keys:", err)
	}

	log.Printf("cleanup done: %d payment requests expired, %d idempotency keys pruned", expired, pruned)
}
