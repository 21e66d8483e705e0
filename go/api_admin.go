package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	cataloghttpmapper "github.com/Apurer/storefront-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	ordershttpmapper "github.com/Apurer/storefront-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// AdminAPI groups the X-API-KEY protected maintenance endpoints.
type AdminAPI struct {
	catalog   catalogports.Service
	orders    ordersports.Service
	responder *apierrors.ChainedResponder
}

func NewAdminAPI(catalog catalogports.Service, orders ordersports.Service, responder *apierrors.ChainedResponder) AdminAPI {
	return AdminAPI{catalog: catalog, orders: orders, responder: responder}
}

// Post /admin/products/seed
// Replaces the catalog with the bundled product set.
func (api *AdminAPI) SeedProducts(c *gin.Context) {
	count, err := api.catalog.Seed(c.Request.Context())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Patch /admin/products/:productId/price
func (api *AdminAPI) UpdateProductPrice(c *gin.Context) {
	var payload cataloghttpmapper.PriceUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	price, err := decimal.NewFromString(*payload.Price)
	if err != nil {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"price": "must be a decimal number"}))
		return
	}
	product, err := api.catalog.UpdatePrice(c.Request.Context(), c.Param("productId"), price)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

// Patch /admin/orders/:orderId/status
func (api *AdminAPI) UpdateOrderStatus(c *gin.Context) {
	var payload ordershttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	order, err := api.orders.UpdateStatus(c.Request.Context(), c.Param("orderId"), payload.Status)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order))
}
