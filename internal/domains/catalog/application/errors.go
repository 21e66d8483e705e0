package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/storefront-api/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a catalog invariant or query rule.
	ErrInvalidInput = errors.New("invalid catalog input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrInvalidRating) ||
		errors.Is(err, domain.ErrNegativeRating) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
