package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/checkout/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists processed-payment keys in PostgreSQL.
type IdempotencyStore struct {
	db *gorm.DB
}

// NewIdempotencyStore wires a PostgreSQL-backed idempotency store.
func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// WithTx returns a store bound to an open transaction.
func (s *IdempotencyStore) WithTx(tx *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: tx}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.ProcessedPayment, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record processedPaymentRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toPortRecord(&record), nil
}

// Claim inserts the key if absent and reports whether this call owns it. A concurrent
// claimer blocks on the unique key until the owner's transaction finishes.
func (s *IdempotencyStore) Claim(ctx context.Context, record ports.ProcessedPayment) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	dbRecord := toDBRecord(record)
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&dbRecord)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

// Models lists the tables owned by this adapter.
func Models() []any {
	return []any{&processedPaymentRecord{}}
}

type processedPaymentRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     string    `gorm:"column:order_id;size:36;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (processedPaymentRecord) TableName() string { return "processed_payments" }

func toDBRecord(rec ports.ProcessedPayment) processedPaymentRecord {
	return processedPaymentRecord{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toPortRecord(rec *processedPaymentRecord) *ports.ProcessedPayment {
	if rec == nil {
		return nil
	}
	return &ports.ProcessedPayment{
		Key:         rec.Key,
		RequestHash: rec.RequestHash,
		OrderID:     rec.OrderID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
