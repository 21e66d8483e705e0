package storefrontserver

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	cartapp "github.com/Apurer/storefront-api/internal/domains/cart/application"
	cartports "github.com/Apurer/storefront-api/internal/domains/cart/ports"
	catalogapp "github.com/Apurer/storefront-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/storefront-api/internal/domains/catalog/ports"
	checkoutapp "github.com/Apurer/storefront-api/internal/domains/checkout/application"
	checkoutdomain "github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/storefront-api/internal/domains/checkout/ports"
	ordersapp "github.com/Apurer/storefront-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/storefront-api/internal/domains/orders/ports"
	userapp "github.com/Apurer/storefront-api/internal/domains/users/application"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
	wishlistapp "github.com/Apurer/storefront-api/internal/domains/wishlist/application"
	apierrors "github.com/Apurer/storefront-api/internal/shared/errors"
)

// NewErrorResponder maps every bounded context's errors to problem details.
// Anything unmapped becomes a logged, generic 500.
func NewErrorResponder(logger *slog.Logger) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", logger,
		userProblem,
		cartProblem,
		catalogProblem,
		orderProblem,
		checkoutProblem,
		wishlistProblem,
	)
}

func badRequest(c *gin.Context, responder *apierrors.ChainedResponder, detail string) {
	responder.Respond(c, apierrors.ErrBadRequest.WithDetail(detail))
}

func userProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail("invalid credentials"), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrEmailTaken):
		return apierrors.ErrConflict.WithDetail("email already registered"), true
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.NewNotFoundProblem("user", "current"), true
	}
	return apierrors.ProblemDetail{}, false
}

func cartProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, cartapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, cartapp.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail("product not found"), true
	case errors.Is(err, cartports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("cart item not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func catalogProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, catalogports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("product not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func orderProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersdomain.ErrIllegalTransition), errors.Is(err, ordersdomain.ErrInvalidStatus):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("order not found"), true
	}
	return apierrors.ProblemDetail{}, false
}

func checkoutProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, checkoutports.ErrMissingSignature):
		return apierrors.ErrInvalidSignature.WithDetail("signature header is missing"), true
	case errors.Is(err, checkoutports.ErrInvalidSignature):
		return apierrors.ErrInvalidSignature.WithDetail("signature verification failed"), true
	case errors.Is(err, checkoutdomain.ErrEmptyCart):
		return apierrors.ErrEmptyCart, true
	case errors.Is(err, checkoutapp.ErrUnknownProvider):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, checkoutports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail("payment was already recorded with different contents"), true
	case errors.Is(err, checkoutports.ErrGateway):
		return apierrors.ErrPaymentGateway, true
	}
	return apierrors.ProblemDetail{}, false
}

func wishlistProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, wishlistapp.ErrUserNotFound):
		return apierrors.NewNotFoundProblem("user", "current"), true
	case errors.Is(err, wishlistapp.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail("product not found"), true
	case errors.Is(err, wishlistapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
