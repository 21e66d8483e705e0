package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	wishlisthttpmapper "github.com/Apurer/storefront-api/internal/domains/wishlist/adapters/http/mapper"
	wishlistports "github.com/Apurer/storefront-api/internal/domains/wishlist/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// WishlistAPI manages saved products.
type WishlistAPI struct {
	service   wishlistports.Service
	responder *apierrors.ChainedResponder
}

func NewWishlistAPI(service wishlistports.Service, responder *apierrors.ChainedResponder) WishlistAPI {
	return WishlistAPI{service: service, responder: responder}
}

// Get /wishlist
func (api *WishlistAPI) GetWishlist(c *gin.Context) {
	products, err := api.service.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": wishlisthttpmapper.FromDomainProducts(products)})
}

// Post /wishlist
// Adds the product when absent, removes it otherwise.
func (api *WishlistAPI) Toggle(c *gin.Context) {
	var payload wishlisthttpmapper.Toggle
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	outcome, err := api.service.Toggle(c.Request.Context(), currentUserID(c), payload.ProductID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wishlisthttpmapper.FromOutcome(outcome))
}
