package parlay

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ParseAmerican parses a user-entered American odds string.
// Blank, non-numeric and zero input all report ok=false; a leading '+'
// is accepted (e.g. "+150").
func ParseAmerican(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.TrimPrefix(s, "+")
	odds, err := decimal.NewFromString(s)
	if err != nil || odds.IsZero() {
		return decimal.Zero, false
	}
	return odds, true
}

// AmericanToDecimal converts American odds to decimal odds.
// Example: -110 -> 1.9090..., +150 -> 2.50
// The result is always > 1 for valid input.
func AmericanToDecimal(odds decimal.Decimal) (decimal.Decimal, bool) {
	if odds.IsZero() {
		return decimal.Zero, false
	}
	if odds.IsPositive() {
		return one.Add(odds.Div(hundred)), true
	}
	return one.Add(hundred.Div(odds.Abs())), true
}

// AmericanToImplied converts American odds to the implied probability of
// that side, including the bookmaker's margin when taken from a real market.
// Example: -110 -> 0.5238 (52.38%), +150 -> 0.40
// The result is strictly within (0,1) for valid input.
func AmericanToImplied(odds decimal.Decimal) (decimal.Decimal, bool) {
	if odds.IsZero() {
		return decimal.Zero, false
	}
	if odds.IsPositive() {
		return hundred.Div(odds.Add(hundred)), true
	}
	abs := odds.Abs()
	return abs.Div(abs.Add(hundred)), true
}
