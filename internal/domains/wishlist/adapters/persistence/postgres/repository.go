package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/wishlist/domain"
	"github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists wishlist entries in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the tables owned by this adapter.
func Models() []any {
	return []any{&entryRecord{}}
}

type entryRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;size:36"`
	ProductID string    `gorm:"primaryKey;column:product_id;size:36"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (entryRecord) TableName() string { return "wishlist_items" }

func (r *Repository) Add(ctx context.Context, entry domain.Entry) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	rec := entryRecord{UserID: entry.UserID, ProductID: entry.ProductID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func (r *Repository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	if err := r.ensureDB(); err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).Delete(&entryRecord{}, "user_id = ? AND product_id = ?", userID, productID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]domain.Entry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []entryRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("product_id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.Entry{UserID: rec.UserID, ProductID: rec.ProductID, CreatedAt: rec.CreatedAt})
	}
	return entries, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres wishlist repository not configured")
	}
	return nil
}
