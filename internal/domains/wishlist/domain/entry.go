package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyUserID    = errors.New("user id is required")
	ErrEmptyProductID = errors.New("product id is required")
)

// Entry marks one product saved by one user; (UserID, ProductID) is unique.
type Entry struct {
	UserID    string
	ProductID string
	CreatedAt time.Time
}

func NewEntry(userID, productID string) (Entry, error) {
	entry := Entry{UserID: strings.TrimSpace(userID), ProductID: strings.TrimSpace(productID)}
	if err := entry.Validate(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (e Entry) Validate() error {
	if e.UserID == "" {
		return ErrEmptyUserID
	}
	if e.ProductID == "" {
		return ErrEmptyProductID
	}
	return nil
}

// Outcome reports which way a toggle went.
type Outcome string

const (
	Added   Outcome = "added"
	Removed Outcome = "removed"
)
