package storefrontserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ordershttpmapper "github.com/Apurer/storefront-api/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// OrderAPI serves the signed-in user's order history.
type OrderAPI struct {
	service   ordersports.Service
	responder *apierrors.ChainedResponder
}

func NewOrderAPI(service ordersports.Service, responder *apierrors.ChainedResponder) OrderAPI {
	return OrderAPI{service: service, responder: responder}
}

// Get /orders
// With ?sessionId the single order for that payment session is returned, or 404 until
// its webhook has been processed.
func (api *OrderAPI) ListOrders(c *gin.Context) {
	userID := currentUserID(c)
	if sessionID := strings.TrimSpace(c.Query("sessionId")); sessionID != "" {
		order, err := api.service.FindBySession(c.Request.Context(), userID, sessionID)
		if err != nil {
			api.responder.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order))
		return
	}
	orders, err := api.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrders(orders))
}

// Get /orders/:orderId
func (api *OrderAPI) GetOrder(c *gin.Context) {
	order, err := api.service.GetForUser(c.Request.Context(), currentUserID(c), c.Param("orderId"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordershttpmapper.FromDomainOrder(order))
}
