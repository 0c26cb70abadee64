package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Price bounds. Decimals outside them are refused before any arithmetic,
// since rescaling a value like 1e20000000 allocates a huge big.Int.
const (
	maxPriceLen      = 32
	minPriceExponent = -10
	maxPriceExponent = 12
)

var ErrInvalidPrice = errors.New("invalid price")

// ParsePrice accepts a non-negative decimal of bounded size and scale.
func ParsePrice(s string) (decimal.Decimal, error) {
	if s == "" || len(s) > maxPriceLen {
		return decimal.Zero, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !PriceInRange(d) || d.IsNegative() {
		return decimal.Zero, ErrInvalidPrice
	}
	return d, nil
}

// PriceInRange reports whether d's exponent is small enough to format and
// compare cheaply.
func PriceInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= minPriceExponent && exp <= maxPriceExponent
}
