package migrations

import (
	"gorm.io/gorm"

	cartpg "github.com/Apurer/storefront-api/internal/domains/cart/adapters/persistence/postgres"
	catalogpg "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	checkoutpg "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/persistence/postgres"
	orderspg "github.com/Apurer/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	userspg "github.com/Apurer/storefront-api/internal/domains/users/adapters/persistence/postgres"
	wishlistpg "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/persistence/postgres"
)

// Models returns every table owned by the bounded contexts, in dependency order.
func Models() []any {
	var models []any
	for _, set := range [][]any{
		userspg.Models(),
		catalogpg.Models(),
		cartpg.Models(),
		orderspg.Models(),
		checkoutpg.Models(),
		wishlistpg.Models(),
	} {
		models = append(models, set...)
	}
	return models
}

// Run applies the schema for the bounded contexts. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(Models()...)
}
