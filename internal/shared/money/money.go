// Package money holds the currency table used for display and gateway charges.
// Catalog prices are stored in the base currency (USD).
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	INR Currency = "INR"
	// IDR is only charged through Midtrans and is not offered for display.
	IDR Currency = "IDR"
)

// Base is the currency catalog prices are stored in.
const Base = USD

var ErrUnsupportedCurrency = errors.New("unsupported currency")

type currencyInfo struct {
	rate     decimal.Decimal
	exponent int32
	symbol   string
	display  bool
}

var table = map[Currency]currencyInfo{
	USD: {rate: decimal.NewFromInt(1), exponent: 2, symbol: "$", display: true},
	EUR: {rate: decimal.RequireFromString("0.91"), exponent: 2, symbol: "€", display: true},
	GBP: {rate: decimal.RequireFromString("0.79"), exponent: 2, symbol: "£", display: true},
	INR: {rate: decimal.RequireFromString("82.50"), exponent: 2, symbol: "₹", display: true},
	IDR: {rate: decimal.NewFromInt(15600), exponent: 0, symbol: "Rp", display: false},
}

// Supported lists the display currencies in a stable order.
func Supported() []Currency {
	return []Currency{USD, EUR, GBP, INR}
}

// Parse normalizes a currency code. Empty input yields the base currency.
func Parse(raw string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if code == "" {
		return Base, nil
	}
	if _, ok := table[code]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, raw)
	}
	return code, nil
}

// Rate returns the conversion factor from the base currency.
func (c Currency) Rate() decimal.Decimal {
	return table[c].rate
}

// Exponent is the number of minor-unit digits (2 for cents, 0 for rupiah).
func (c Currency) Exponent() int32 {
	return table[c].exponent
}

// Lower is the lowercase code some gateways expect.
func (c Currency) Lower() string {
	return strings.ToLower(string(c))
}

// Convert turns a base-currency amount into c, rounded to c's minor unit.
func Convert(amount decimal.Decimal, c Currency) decimal.Decimal {
	info, ok := table[c]
	if !ok {
		return amount
	}
	return amount.Mul(info.rate).Round(info.exponent)
}

// ToMinorUnits converts a base-currency amount into integer minor units of c.
func ToMinorUnits(amount decimal.Decimal, c Currency) int64 {
	converted := Convert(amount, c)
	return converted.Shift(c.Exponent()).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits within c (no base conversion).
func FromMinorUnits(minor int64, c Currency) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-c.Exponent())
}

// MajorToMinorUnits converts an amount already expressed in c into minor units.
func MajorToMinorUnits(amount decimal.Decimal, c Currency) int64 {
	return amount.Shift(c.Exponent()).Round(0).IntPart()
}

// Format renders amount (already in c) with symbol and thousands separators.
func Format(amount decimal.Decimal, c Currency) string {
	info, ok := table[c]
	if !ok {
		return amount.StringFixed(2) + " " + string(c)
	}
	fixed := amount.Abs().StringFixed(info.exponent)
	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(info.symbol)
	b.WriteString(groupThousands(whole))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
