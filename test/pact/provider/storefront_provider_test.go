//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	pacttest "github.com/Apurer/storefront-api/test/pact"

	storefrontserver "github.com/Apurer/storefront-api/go"
	cartmemory "github.com/Apurer/storefront-api/internal/domains/cart/adapters/memory"
	cartapp "github.com/Apurer/storefront-api/internal/domains/cart/application"
	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/storefront-api/internal/domains/catalog/domain"
	checkoutmemory "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/memory"
	checkoutworkflows "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/storefront-api/internal/domains/orders/application"
	usermemory "github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/storefront-api/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	wishlistmemory "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/memory"
	wishlistapp "github.com/Apurer/storefront-api/internal/domains/wishlist/application"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestStorefrontProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateCatalogBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetCatalog(t)
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.resetCatalog(t)
			return nil, nil
		},
		pacttest.StateShopperSignedIn: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			if setup {
				app.ensureShopper(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.resetCatalog(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractProviderApp struct {
	catalog *catalogmemory.Repository
	users   userports.Service
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()

	catalogRepo := catalogmemory.NewRepository()
	cartRepo := cartmemory.NewRepository()
	orderRepo := ordersmemory.NewRepository()
	userRepo := usermemory.NewRepository()
	ledger := checkoutmemory.NewLedger(cartRepo, orderRepo, checkoutmemory.NewIdempotencyStore())

	catalogService := catalogobs.New(catalogapp.NewService(catalogRepo))
	cartService := cartapp.NewService(cartRepo, catalogRepo)
	orderService := ordersapp.NewService(orderRepo, catalogRepo)
	userService := userobs.New(userapp.NewService(userRepo, usermemory.NewSessionStore(), userapp.NewTokenManager("pact-secret")))
	materializer := checkoutworkflows.NewInlineOrderMaterializer(checkoutapp.NewRecorder(ledger))
	checkoutService := checkoutapp.NewService(ledger, cartService, catalogRepo, materializer)
	wishlistService := wishlistapp.NewService(wishlistmemory.NewRepository(), userRepo, catalogRepo)

	responder := storefrontserver.NewErrorResponder(nil)
	handlers := storefrontserver.ApiHandleFunctions{
		AuthAPI:     storefrontserver.NewAuthAPI(userService, storefrontserver.CookieOptions{}, responder),
		CartAPI:     storefrontserver.NewCartAPI(cartService, responder),
		CheckoutAPI: storefrontserver.NewCheckoutAPI(checkoutService, responder),
		OrderAPI:    storefrontserver.NewOrderAPI(orderService, responder),
		ProductAPI:  storefrontserver.NewProductAPI(catalogService, responder),
		WishlistAPI: storefrontserver.NewWishlistAPI(wishlistService, responder),
		CurrencyAPI: storefrontserver.NewCurrencyAPI(),
		AdminAPI:    storefrontserver.NewAdminAPI(catalogService, orderService, responder),
		Guard:       storefrontserver.NewGuard(userService, "", responder),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router = storefrontserver.NewRouterWithGinEngine(router, handlers)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &contractProviderApp{
		catalog: catalogRepo,
		users:   userService,
		server:  server,
	}
}

func (a *contractProviderApp) resetCatalog(t testing.TB) {
	t.Helper()
	backpack, err := catalogdomain.NewProduct(pacttest.ExistingProductID, "Black Roll-Top Backpack", decimal.RequireFromString(pacttest.ExistingPrice))
	require.NoError(t, err)
	backpack.Category = "Bags"
	plush, err := catalogdomain.NewProduct("p-plush", "Yellow Dinosaur Plush", decimal.RequireFromString("29.99"))
	require.NoError(t, err)
	plush.Category = "Toys"
	require.NoError(t, a.catalog.ReplaceAll(context.Background(), []*catalogdomain.Product{backpack, plush}))
}

func (a *contractProviderApp) ensureShopper(t testing.TB) {
	t.Helper()
	_, err := a.users.Register(context.Background(), userports.RegisterInput{
		Name:     "Pact Shopper",
		Email:    pacttest.ShopperEmail,
		Password: pacttest.ShopperPassword,
	})
	if errors.Is(err, userports.ErrEmailTaken) {
		return
	}
	require.NoError(t, err)
}
