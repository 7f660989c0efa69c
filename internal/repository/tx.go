package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRunner is the transactional boundary services orchestrate multi-repo
// writes through, kept as an interface so unit tests can substitute a fake
// that just invokes the closure.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
