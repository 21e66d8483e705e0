package storefrontserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/storefront-api/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/storefront-api/internal/domains/cart/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// CartAPI exposes the signed-in user's cart.
type CartAPI struct {
	service   cartports.Service
	responder *apierrors.ChainedResponder
}

func NewCartAPI(service cartports.Service, responder *apierrors.ChainedResponder) CartAPI {
	return CartAPI{service: service, responder: responder}
}

// Get /cart
func (api *CartAPI) GetCart(c *gin.Context) {
	cart, err := api.service.GetCart(c.Request.Context(), currentUserID(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Post /cart
func (api *CartAPI) AddItem(c *gin.Context) {
	var payload carthttpmapper.AddItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	if strings.TrimSpace(payload.ProductID) == "" {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"productId": "is required"}))
		return
	}
	item, err := api.service.AddItem(c.Request.Context(), currentUserID(c), payload.ProductID, payload.EffectiveQuantity())
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainItem(item))
}

// Patch /cart/:itemId
func (api *CartAPI) UpdateItem(c *gin.Context) {
	var payload carthttpmapper.UpdateItem
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	if payload.Quantity == nil || *payload.Quantity < 1 {
		api.responder.Respond(c, apierrors.NewValidationProblem(map[string]string{"quantity": "must be at least 1"}))
		return
	}
	item, err := api.service.UpdateItemQuantity(c.Request.Context(), currentUserID(c), c.Param("itemId"), *payload.Quantity)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainItem(item))
}

// Delete /cart/:itemId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	if err := api.service.RemoveItem(c.Request.Context(), currentUserID(c), c.Param("itemId")); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Post /cart/clear
func (api *CartAPI) Clear(c *gin.Context) {
	if err := api.service.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
