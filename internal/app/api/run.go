package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	storefrontserver "github.com/Apurer/storefront-api/go"

	cartmemory "github.com/Apurer/storefront-api/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/storefront-api/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/storefront-api/internal/domains/cart/adapters/persistence/postgres"
	cartapp "github.com/Apurer/storefront-api/internal/domains/cart/application"
	cartports "github.com/Apurer/storefront-api/internal/domains/cart/ports"
	catalogmemory "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	midtransgateway "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/gateways/midtrans"
	razorpaygateway "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/gateways/razorpay"
	stripegateway "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/gateways/stripe"
	checkoutmemory "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutworkflows "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersmemory "github.com/Apurer/storefront-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/storefront-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/storefront-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/storefront-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	usermemory "github.com/Apurer/storefront-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/storefront-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/storefront-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	wishlistmemory "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/memory"
	wishlistobs "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/observability"
	wishlistpostgres "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/persistence/postgres"
	wishlistapp "github.com/Apurer/storefront-api/internal/domains/wishlist/application"
	wishlistports "github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	"github.com/Apurer/storefront-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/storefront-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

const serviceName = "storefront-api"

// stores groups one persistence backend for every bounded context.
type stores struct {
	users    userports.Repository
	sessions userports.SessionStore
	catalog  catalogports.Repository
	carts    cartports.Repository
	orders   ordersports.Repository
	wishlist wishlistports.Repository
	ledger   checkoutports.Ledger
	// inMemory marks the development fallback, which seeds the catalog on boot.
	inMemory bool
}

// Run boots the storefront HTTP API with observability, repositories, gateways, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	st, cleanupStores := buildStores(ctx, cfg, logger)
	defer cleanupStores()

	materializer, closeMaterializer := orderMaterializer(cfg, st, logger, func() (client.Client, error) {
		return connectTemporalClient(cfg, instruments)
	})
	defer closeMaterializer()

	handlers, err := buildHandlers(ctx, cfg, st, materializer, instruments)
	if err != nil {
		return err
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(serviceName), cors.New(corsConfig(cfg)))
	router := storefrontserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Storefront API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Storefront API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down Storefront API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildHandlers(ctx context.Context, cfg Config, st stores, materializer checkoutports.OrderMaterializer, instruments *platformobservability.Instruments) (storefrontserver.ApiHandleFunctions, error) {
	logger := instruments.Logger

	catalogService := catalogobs.New(
		catalogapp.NewService(st.catalog),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	if st.inMemory {
		if _, err := catalogService.Seed(ctx); err != nil {
			return storefrontserver.ApiHandleFunctions{}, fmt.Errorf("failed to seed in-memory catalog: %w", err)
		}
	}
	cartService := cartobs.New(
		cartapp.NewService(st.carts, st.catalog),
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	)
	orderService := ordersobs.New(
		ordersapp.NewService(st.orders, st.catalog),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	userService := userobs.New(
		userapp.NewService(st.users, st.sessions, userapp.NewTokenManager(cfg.JWTSecret), userapp.WithSessionTTL(cfg.SessionTTL)),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	wishlistService := wishlistobs.New(
		wishlistapp.NewService(st.wishlist, st.users, st.catalog),
		wishlistobs.WithLogger(logger),
		wishlistobs.WithTracer(instruments.Tracer("internal.wishlist.application")),
		wishlistobs.WithMeter(instruments.Meter("internal.wishlist.application")),
	)

	checkoutOptions := append(gatewayOptions(cfg, logger), checkoutapp.WithDefaultStrategy(cfg.DefaultCheckoutProvider))
	checkoutService := checkoutobs.New(
		checkoutapp.NewService(st.ledger, cartService, st.catalog, materializer, checkoutOptions...),
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	responder := storefrontserver.NewErrorResponder(logger)
	cookie := storefrontserver.CookieOptions{Secure: cfg.Production()}
	return storefrontserver.ApiHandleFunctions{
		AuthAPI:     storefrontserver.NewAuthAPI(userService, cookie, responder),
		CartAPI:     storefrontserver.NewCartAPI(cartService, responder),
		CheckoutAPI: storefrontserver.NewCheckoutAPI(checkoutService, responder),
		OrderAPI:    storefrontserver.NewOrderAPI(orderService, responder),
		ProductAPI:  storefrontserver.NewProductAPI(catalogService, responder),
		WishlistAPI: storefrontserver.NewWishlistAPI(wishlistService, responder),
		CurrencyAPI: storefrontserver.NewCurrencyAPI(),
		AdminAPI:    storefrontserver.NewAdminAPI(catalogService, orderService, responder),
		Guard:       storefrontserver.NewGuard(userService, cfg.AdminAPIKey, responder),
	}, nil
}

// gatewayOptions registers each payment provider whose credentials are configured.
func gatewayOptions(cfg Config, logger *slog.Logger) []checkoutapp.Option {
	var opts []checkoutapp.Option
	if cfg.StripeSecretKey != "" {
		opts = append(opts, checkoutapp.WithGateway(stripegateway.New(stripegateway.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			AppURL:        cfg.AppURL,
		})))
		logger.Info("payment gateway enabled", slog.String("provider", stripegateway.Provider))
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		opts = append(opts, checkoutapp.WithGateway(razorpaygateway.New(razorpaygateway.Config{
			KeyID:         cfg.RazorpayKeyID,
			KeySecret:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
		})))
		logger.Info("payment gateway enabled", slog.String("provider", razorpaygateway.Provider))
	}
	if cfg.MidtransServerKey != "" {
		gateway := midtransgateway.New(midtransgateway.Config{
			ServerKey:  cfg.MidtransServerKey,
			Production: cfg.MidtransProduction,
			FinishURL:  cfg.AppURL + "/checkout/success",
		})
		opts = append(opts, checkoutapp.WithGateway(gateway))
		logger.Info("payment gateway enabled", slog.String("provider", gateway.Provider()))
	}
	return opts
}

func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (stores, func()) {
	if cfg.Postgres.DSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryStores(), func() {}
	}
	pg := cfg.Postgres
	pg.Logger = logger
	db, err := platformpostgres.Connect(ctx, pg)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryStores(), func() {}
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		logger.Warn("failed to migrate postgres schema, falling back to memory", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return memoryStores(), func() {}
	}
	logger.Info("repositories configured with postgres")
	return postgresStores(db), func() { _ = sqlDB.Close() }
}

func postgresStores(db *gorm.DB) stores {
	return stores{
		users:    userpostgres.NewRepository(db),
		sessions: userpostgres.NewSessionStore(db),
		catalog:  catalogpostgres.NewRepository(db),
		carts:    cartpostgres.NewRepository(db),
		orders:   orderspostgres.NewRepository(db),
		wishlist: wishlistpostgres.NewRepository(db),
		ledger:   checkoutpostgres.NewLedger(db),
	}
}

func memoryStores() stores {
	carts := cartmemory.NewRepository()
	orders := ordersmemory.NewRepository()
	return stores{
		users:    usermemory.NewRepository(),
		sessions: usermemory.NewSessionStore(),
		catalog:  catalogmemory.NewRepository(),
		carts:    carts,
		orders:   orders,
		wishlist: wishlistmemory.NewRepository(),
		ledger:   checkoutmemory.NewLedger(carts, orders, checkoutmemory.NewIdempotencyStore()),
		inMemory: true,
	}
}

func corsConfig(cfg Config) cors.Config {
	return cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", storefrontserver.AdminKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// orderMaterializer picks how verified payments become orders. The worker writes to
// Postgres, so memory-backed processes always materialize inline.
func orderMaterializer(cfg Config, st stores, logger *slog.Logger, dial func() (client.Client, error)) (checkoutports.OrderMaterializer, func()) {
	inline := checkoutworkflows.NewInlineOrderMaterializer(checkoutapp.NewRecorder(st.ledger))
	if st.inMemory {
		logger.Info("in-memory stores active, materializing orders inline")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, materializing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return checkoutworkflows.NewTemporalOrderMaterializer(temporalClient,
		checkoutworkflows.WithWaitTimeout(cfg.MaterializationTimeout)), temporalClient.Close
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
