// Package validate holds the pure input validators for the guided flows.
package validate

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountMin = decimal.NewFromInt(1)
	amountMax = decimal.NewFromInt(50000)
)

// Amount parses s and accepts values in [1, 50000] with at most two decimal
// places. The parsed amount is returned so callers don't re-parse.
func Amount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	if d.Exponent() < -2 {
		return decimal.Zero, false
	}
	if d.LessThan(amountMin) || d.GreaterThan(amountMax) {
		return decimal.Zero, false
	}
	return d, true
}

// Phone accepts E.164-like numbers: an optional leading +, then 2 to 15
// digits with a nonzero first digit.
func Phone(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	if len(s) < 2 || len(s) > 15 {
		return false
	}
	if s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// BusinessName accepts any text whose trimmed length is between 2 and 100.
func BusinessName(s string) bool {
	n := len([]rune(strings.TrimSpace(s)))
	return n >= 2 && n <= 100
}
