package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Models lists the tables owned by this adapter.
func Models() []any {
	return []any{&orderRecord{}, &orderItemRecord{}}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID               string              `gorm:"primaryKey;column:id;size:36"`
	UserID           string              `gorm:"column:user_id;size:36;not null;index:idx_orders_user_created"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Currency         string              `gorm:"column:currency;size:3;not null"`
	Status           string              `gorm:"column:status;type:varchar(32);not null"`
	PaymentProvider  string              `gorm:"column:payment_provider;size:32"`
	PaymentIntentID  string              `gorm:"column:payment_intent_id;size:255"`
	GatewaySessionID string              `gorm:"column:gateway_session_id;size:255;index"`
	ShippingAddress  *domain.Address     `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	ChargedAmount    decimal.NullDecimal `gorm:"column:charged_amount;type:numeric(14,2)"`
	ChargedCurrency  string              `gorm:"column:charged_currency;size:3"`
	CreatedAt        time.Time           `gorm:"column:created_at;index:idx_orders_user_created"`
	UpdatedAt        time.Time           `gorm:"column:updated_at"`
	Items            []orderItemRecord   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID        string          `gorm:"primaryKey;column:id;size:36"`
	OrderID   string          `gorm:"column:order_id;size:36;not null;index"`
	ProductID string          `gorm:"column:product_id;size:36;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Position  int             `gorm:"column:position;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Create inserts the order and its items.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes status and payment backfill columns only.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&orderRecord{ID: order.ID}).
		Select("status", "payment_provider", "payment_intent_id", "gateway_session_id",
			"shipping_address", "charged_amount", "charged_currency", "updated_at").
		Omit("Items").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, order.ID)
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.withItems(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListByUser returns the user's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.withItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// FindBySession looks up the order materialized for a gateway session.
func (r *Repository) FindBySession(ctx context.Context, userID, sessionID string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.withItems(ctx).
		Where("user_id = ? AND gateway_session_id = ?", userID, sessionID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.position ASC")
	})
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:               order.ID,
		UserID:           order.UserID,
		Total:            order.Total,
		Currency:         order.Currency,
		Status:           string(order.Status),
		PaymentProvider:  order.PaymentProvider,
		PaymentIntentID:  order.PaymentIntentID,
		GatewaySessionID: order.GatewaySessionID,
		ShippingAddress:  order.ShippingAddress,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	if order.Charged != nil {
		rec.ChargedAmount = decimal.NewNullDecimal(order.Charged.Amount)
		rec.ChargedCurrency = order.Charged.Currency
	}
	for i, item := range order.Items {
		rec.Items = append(rec.Items, orderItemRecord{
			ID:        item.ID,
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Position:  i,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:               r.ID,
		UserID:           r.UserID,
		Total:            r.Total,
		Currency:         r.Currency,
		Status:           domain.Status(r.Status),
		PaymentProvider:  r.PaymentProvider,
		PaymentIntentID:  r.PaymentIntentID,
		GatewaySessionID: r.GatewaySessionID,
		ShippingAddress:  r.ShippingAddress,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Items:            make([]domain.Item, 0, len(r.Items)),
	}
	if r.ChargedAmount.Valid {
		order.Charged = &domain.Charge{Amount: r.ChargedAmount.Decimal, Currency: r.ChargedCurrency}
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return order
}
