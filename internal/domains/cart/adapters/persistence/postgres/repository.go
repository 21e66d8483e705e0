package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
	"github.com/Apurer/storefront-api/internal/domains/cart/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists carts in PostgreSQL using GORM.
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
	return []any{&cartRecord{}, &cartItemRecord{}}
}

type cartRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	UserID    string    `gorm:"column:user_id;size:36;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartRecord) TableName() string { return "carts" }

// (cart_id, product_id) is unique so concurrent adds merge through the upsert.
type cartItemRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	CartID    string    `gorm:"column:cart_id;size:36;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID string    `gorm:"column:product_id;size:36;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int       `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity BETWEEN 1 AND 999"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

// GetOrCreate loads the user's cart, inserting it when absent.
func (r *Repository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.load(ctx, userID, false)
}

// LockItems loads the user's cart and row-locks its items for the enclosing transaction.
func (r *Repository) LockItems(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.load(ctx, userID, true)
}

func (r *Repository) load(ctx context.Context, userID string, forUpdate bool) (*domain.Cart, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	candidate := cartRecord{ID: uuid.NewString(), UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&candidate).Error; err != nil {
		return nil, err
	}
	var cart cartRecord
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Where("cart_id = ?", cart.ID).Order("created_at ASC, id ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var items []cartItemRecord
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	result := cart.toDomain()
	for i := range items {
		result.Items = append(result.Items, items[i].toDomain())
	}
	return result, nil
}

// AddQuantity inserts the line or increments it in a single statement. The
// conflict update is skipped when the merged quantity would pass MaxQuantity.
func (r *Repository) AddQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := cartItemRecord{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": gorm.Expr("NOW()"),
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity + excluded.quantity <= ?", domain.MaxQuantity),
			}},
		}).Create(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domain.ErrQuantityLimit
	}
	var stored cartItemRecord
	if err := r.db.WithContext(ctx).
		First(&stored, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		return nil, err
	}
	return stored.toDomain(), nil
}

// SetQuantity updates an item only if it belongs to the user's cart.
func (r *Repository) SetQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.Item, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&cartItemRecord{}).
		Where("id = ? AND cart_id IN (?)", itemID, r.userCarts(ctx, userID)).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	var stored cartItemRecord
	if err := r.db.WithContext(ctx).First(&stored, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return stored.toDomain(), nil
}

// DeleteItem removes an item only if it belongs to the user's cart.
func (r *Repository) DeleteItem(ctx context.Context, userID, itemID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", itemID, r.userCarts(ctx, userID)).
		Delete(&cartItemRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Clear deletes every item in the user's cart.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id IN (?)", r.userCarts(ctx, userID)).
		Delete(&cartItemRecord{}).Error
}

func (r *Repository) userCarts(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&cartRecord{}).Select("id").Where("user_id = ?", userID)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres cart repository not configured")
	}
	return nil
}

func (c cartRecord) toDomain() *domain.Cart {
	return &domain.Cart{
		ID:        c.ID,
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (i cartItemRecord) toDomain() *domain.Item {
	return &domain.Item{
		ID:        i.ID,
		CartID:    i.CartID,
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
