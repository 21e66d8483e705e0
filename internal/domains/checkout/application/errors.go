package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/storefront-api/internal/domains/checkout/domain"
	ordersdomain "github.com/Apurer/storefront-api/internal/domains/orders/domain"
	"github.com/Apurer/storefront-api/internal/shared/money"
)

var (
	// ErrInvalidInput signals the request violated a checkout invariant.
	ErrInvalidInput = errors.New("invalid checkout input")
	// ErrUnknownProvider means no strategy or gateway is registered under the requested name.
	ErrUnknownProvider = errors.New("unknown payment provider")
)

func mapError(err error) error {
	if err == nil || errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, domain.ErrEmptyCart) ||
		errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrEmptyProductID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrUnknownProduct) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrSnapshotTooLarge) ||
		errors.Is(err, domain.ErrMalformedEvent) ||
		errors.Is(err, money.ErrUnsupportedCurrency) ||
		errors.Is(err, ordersdomain.ErrEmptyUserID) ||
		errors.Is(err, ordersdomain.ErrNoItems) ||
		errors.Is(err, ordersdomain.ErrInvalidQuantity) ||
		errors.Is(err, ordersdomain.ErrNegativePrice) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
