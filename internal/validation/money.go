package validation

import (
	"math/big"
	"regexp"
	"strings"
)

const (
	numberMsg   = "A valid number is required."
	negativeMsg = "Ensure this value is greater than or equal to 0."
	tooLargeMsg = "Ensure that there are no more than 10 digits before the decimal point."
)

// plain decimals only: no NaN/Inf, fractions or base prefixes; exponent kept short
var moneyRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d{1,3})?$`)

// columns are numeric(12,2)
var moneyLimit = new(big.Rat).SetInt64(10_000_000_000)

// Money parses a non-negative decimal amount and rounds it to two places.
// It returns the normalized value or a field message.
func Money(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	if !moneyRe.MatchString(raw) {
		return "", numberMsg
	}
	r, ok := new(big.Rat).SetString(raw)
	if !ok {
		return "", numberMsg
	}
	if r.Sign() < 0 {
		return "", negativeMsg
	}
	s := r.FloatString(2)
	rounded, _ := new(big.Rat).SetString(s)
	if rounded.Cmp(moneyLimit) >= 0 {
		return "", tooLargeMsg
	}
	return s, ""
}
