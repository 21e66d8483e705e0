package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access names the guard a route runs behind.
type Access int

const (
	Public Access = iota
	Authenticated
	Admin
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	Access      Access
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{}
		switch route.Access {
		case Authenticated:
			handlers = append(handlers, handleFunctions.Guard.RequireUser())
		case Admin:
			handlers = append(handlers, handleFunctions.Guard.RequireAdmin())
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes without a bound handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	AuthAPI     AuthAPI
	CartAPI     CartAPI
	CheckoutAPI CheckoutAPI
	OrderAPI    OrderAPI
	ProductAPI  ProductAPI
	WishlistAPI WishlistAPI
	CurrencyAPI CurrencyAPI
	AdminAPI    AdminAPI
	HealthAPI   HealthAPI
	Guard       Guard
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Register", http.MethodPost, "/auth/register", handleFunctions.AuthAPI.Register, Public},
		{"Login", http.MethodPost, "/auth/login", handleFunctions.AuthAPI.Login, Public},
		{"Logout", http.MethodPost, "/auth/logout", handleFunctions.AuthAPI.Logout, Authenticated},
		{"Me", http.MethodGet, "/auth/me", handleFunctions.AuthAPI.Me, Authenticated},

		{"GetCart", http.MethodGet, "/cart", handleFunctions.CartAPI.GetCart, Authenticated},
		{"AddCartItem", http.MethodPost, "/cart", handleFunctions.CartAPI.AddItem, Authenticated},
		{"ClearCart", http.MethodPost, "/cart/clear", handleFunctions.CartAPI.Clear, Authenticated},
		{"UpdateCartItem", http.MethodPatch, "/cart/:itemId", handleFunctions.CartAPI.UpdateItem, Authenticated},
		{"RemoveCartItem", http.MethodDelete, "/cart/:itemId", handleFunctions.CartAPI.RemoveItem, Authenticated},

		{"Checkout", http.MethodPost, "/checkout", handleFunctions.CheckoutAPI.Checkout, Authenticated},
		{"CreateGatewaySession", http.MethodPost, "/checkout/gateway-session", handleFunctions.CheckoutAPI.CreateGatewaySession, Authenticated},
		{"PaymentWebhook", http.MethodPost, "/webhook/payment", handleFunctions.CheckoutAPI.Webhook, Public},
		{"ProviderPaymentWebhook", http.MethodPost, "/webhook/payment/:provider", handleFunctions.CheckoutAPI.Webhook, Public},

		{"ListOrders", http.MethodGet, "/orders", handleFunctions.OrderAPI.ListOrders, Authenticated},
		{"GetOrder", http.MethodGet, "/orders/:orderId", handleFunctions.OrderAPI.GetOrder, Authenticated},

		{"ListProducts", http.MethodGet, "/products", handleFunctions.ProductAPI.ListProducts, Public},
		{"GetProduct", http.MethodGet, "/products/:productId", handleFunctions.ProductAPI.GetProduct, Public},

		{"GetWishlist", http.MethodGet, "/wishlist", handleFunctions.WishlistAPI.GetWishlist, Authenticated},
		{"ToggleWishlist", http.MethodPost, "/wishlist", handleFunctions.WishlistAPI.Toggle, Authenticated},

		{"ListCurrencies", http.MethodGet, "/currencies", handleFunctions.CurrencyAPI.ListCurrencies, Public},

		{"SeedProducts", http.MethodPost, "/admin/products/seed", handleFunctions.AdminAPI.SeedProducts, Admin},
		{"UpdateProductPrice", http.MethodPatch, "/admin/products/:productId/price", handleFunctions.AdminAPI.UpdateProductPrice, Admin},
		{"UpdateOrderStatus", http.MethodPatch, "/admin/orders/:orderId/status", handleFunctions.AdminAPI.UpdateOrderStatus, Admin},

		{"Healthz", http.MethodGet, "/healthz", handleFunctions.HealthAPI.Healthz, Public},
	}
}
