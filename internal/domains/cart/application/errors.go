package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/storefront-api/internal/domains/cart/domain"
)

var (
	// ErrInvalidInput signals the request violated a cart invariant.
	ErrInvalidInput = errors.New("invalid cart input")
	// ErrProductNotFound is returned when adding a product the catalog does not know.
	ErrProductNotFound = errors.New("product not found")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyUserID) ||
		errors.Is(err, domain.ErrEmptyProductID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrQuantityLimit) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
