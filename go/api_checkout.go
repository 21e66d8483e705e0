package storefrontserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	checkouthttpmapper "github.com/Apurer/storefront-api/internal/domains/checkout/adapters/http/mapper"
	checkoutports "github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// MaxWebhookBytes caps webhook bodies read for signature verification.
const MaxWebhookBytes = 1 << 20

// CheckoutAPI exposes both checkout paths and the gateway webhooks.
type CheckoutAPI struct {
	service   checkoutports.Service
	responder *apierrors.ChainedResponder
}

func NewCheckoutAPI(service checkoutports.Service, responder *apierrors.ChainedResponder) CheckoutAPI {
	return CheckoutAPI{service: service, responder: responder}
}

// Post /checkout
// An empty body runs the default strategy against the server cart.
func (api *CheckoutAPI) Checkout(c *gin.Context) {
	var payload checkouthttpmapper.Checkout
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, api.responder, err.Error())
			return
		}
	}
	result, err := api.service.Checkout(c.Request.Context(), checkoutports.CheckoutInput{
		UserID:   currentUserID(c),
		Strategy: payload.Provider,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromResult(result))
}

// Post /checkout/gateway-session
func (api *CheckoutAPI) CreateGatewaySession(c *gin.Context) {
	var payload checkouthttpmapper.GatewaySession
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, api.responder, err.Error())
		return
	}
	session, err := api.service.OpenSession(c.Request.Context(), payload.ToInput(currentUserID(c)))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.FromSession(session))
}

// Post /webhook/payment and /webhook/payment/:provider
// The raw body is passed through untouched; signatures are computed over it.
func (api *CheckoutAPI) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBytes))
	if err != nil {
		badRequest(c, api.responder, "unable to read webhook body")
		return
	}
	_, err = api.service.HandleWebhook(c.Request.Context(), checkoutports.WebhookInput{
		Provider: c.Param("provider"),
		Payload:  payload,
		Header:   c.Request.Header,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkouthttpmapper.WebhookAck{Received: true})
}
