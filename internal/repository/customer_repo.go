package repository

import (
	"context"
	"errors"
	"strings"

	"clinicbook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertByEmailTx finds or creates the customer for the email and leaves the
// row's id on c. An existing row is refreshed with the submitted name and
// phone. A concurrent insert of the same email loses the unique index race;
// that case re-reads the winner's row.
func (r *CustomerRepository) UpsertByEmailTx(tx *gorm.DB, c *domain.Customer) error {
	var existing domain.Customer
	err := tx.Where("email = ?", c.Email).First(&existing).Error
	switch {
	case err == nil:
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		updates := map[string]interface{}{}
		if c.FirstName != "" && c.FirstName != existing.FirstName {
			updates["first_name"] = c.FirstName
		}
		if c.LastName != "" && c.LastName != existing.LastName {
			updates["last_name"] = c.LastName
		}
		if c.Phone != "" && c.Phone != existing.Phone {
			updates["phone"] = c.Phone
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&domain.Customer{}).Where("id = ?", existing.ID).Updates(updates).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		createErr := tx.Create(c).Error
		if createErr == nil {
			return nil
		}
		if isUniqueViolation(createErr) {
			var winner domain.Customer
			if err := tx.Where("email = ?", c.Email).First(&winner).Error; err != nil {
				return err
			}
			c.ID = winner.ID
			c.CreatedAt = winner.CreatedAt
			return nil
		}
		return createErr

	default:
		return err
	}
}

// isUniqueViolation recognizes a unique index conflict from either backing
// store (postgres SQLSTATE 23505, sqlite constraint message).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
