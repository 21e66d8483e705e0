package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	"github.com/Apurer/storefront-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists catalog products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the tables owned by this adapter.
func Models() []any {
	return []any{&productRecord{}}
}

type productRecord struct {
	ID          string          `gorm:"primaryKey;column:id;size:36"`
	Slug        string          `gorm:"column:slug;size:255;index"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description"`
	Category    string          `gorm:"column:category;size:128;index"`
	Brand       string          `gorm:"column:brand;size:128;index"`
	Sizes       pq.StringArray  `gorm:"column:sizes;type:text[]"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;index"`
	Image       string          `gorm:"column:image"`
	RatingRate  *float64        `gorm:"column:rating_rate"`
	RatingCount *int            `gorm:"column:rating_count"`
	Status      string          `gorm:"column:status;size:64"`
	CreatedAt   time.Time       `gorm:"column:created_at;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Save inserts or updates a product.
func (r *Repository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	record := toRecord(product)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"slug":         record.Slug,
				"title":        record.Title,
				"description":  record.Description,
				"category":     record.Category,
				"brand":        record.Brand,
				"sizes":        record.Sizes,
				"price":        record.Price,
				"image":        record.Image,
				"rating_rate":  record.RatingRate,
				"rating_count": record.RatingCount,
				"status":       record.Status,
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetMany fetches the existing products among ids.
func (r *Repository) GetMany(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		result[records[i].ID] = records[i].toDomain()
	}
	return result, nil
}

// Search applies filters, ordering and pagination in SQL.
func (r *Repository) Search(ctx context.Context, query ports.Query) ([]*domain.Product, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []productRecord
	if err := r.filtered(ctx, query).
		Order(orderClause(query.Sort)).
		Offset(query.Offset).
		Limit(query.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products, total, nil
}

func (r *Repository) filtered(ctx context.Context, query ports.Query) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&productRecord{})
	if query.Search != "" {
		pattern := "%" + escapeLike(query.Search) + "%"
		tx = tx.Where("title ILIKE ? OR description ILIKE ? OR category ILIKE ?", pattern, pattern, pattern)
	}
	if query.Category != "" {
		tx = tx.Where("LOWER(category) = LOWER(?)", query.Category)
	}
	if query.Brand != "" {
		tx = tx.Where("LOWER(brand) = LOWER(?)", query.Brand)
	}
	if query.Size != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM unnest(sizes) AS s WHERE LOWER(s) = LOWER(?))", query.Size)
	}
	if query.MinPrice != nil {
		tx = tx.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		tx = tx.Where("price <= ?", *query.MaxPrice)
	}
	return tx
}

// ReplaceAll deletes every product and inserts the given set in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, products []*domain.Product) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	records := make([]productRecord, 0, len(products))
	for _, product := range products {
		records = append(records, toRecord(product))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&productRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, 100).Error
	})
}

func orderClause(sort ports.SortOrder) string {
	switch sort {
	case ports.SortPriceLow:
		return "price ASC, created_at DESC, id ASC"
	case ports.SortPriceHigh:
		return "price DESC, created_at DESC, id ASC"
	case ports.SortBestselling:
		return "COALESCE(rating_count, 0) DESC, created_at DESC, id ASC"
	case ports.SortRating:
		return "COALESCE(rating_rate, 0) DESC, created_at DESC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func toRecord(product *domain.Product) productRecord {
	rec := productRecord{
		ID:          product.ID,
		Slug:        product.Slug,
		Title:       product.Title,
		Description: product.Description,
		Category:    product.Category,
		Brand:       product.Brand,
		Sizes:       pq.StringArray(product.Sizes),
		Price:       product.Price,
		Image:       product.Image,
		Status:      product.Status,
		CreatedAt:   product.CreatedAt,
	}
	if product.Rating != nil {
		rate, count := product.Rating.Rate, product.Rating.Count
		rec.RatingRate = &rate
		rec.RatingCount = &count
	}
	return rec
}

func (r productRecord) toDomain() *domain.Product {
	product := &domain.Product{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Brand:       r.Brand,
		Price:       r.Price,
		Image:       r.Image,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
	if len(r.Sizes) > 0 {
		product.Sizes = []string(r.Sizes)
	}
	if r.RatingRate != nil || r.RatingCount != nil {
		product.Rating = &domain.Rating{}
		if r.RatingRate != nil {
			product.Rating.Rate = *r.RatingRate
		}
		if r.RatingCount != nil {
			product.Rating.Count = *r.RatingCount
		}
	}
	return product
}
