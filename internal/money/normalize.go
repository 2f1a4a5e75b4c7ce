package money

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRef    = errors.New("invalid external reference")
	ErrInvalidAmount = errors.New("invalid amount")
)

const maxExternalRefLen = 64

var externalRefRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NormalizeExternalRef trims surrounding whitespace and validates the
// reference against the allowed charset before it reaches persistence.
func NormalizeExternalRef(input string) (string, error) {
	ref := strings.TrimSpace(input)
	if ref == "" || len(ref) > maxExternalRefLen {
		return "", ErrInvalidRef
	}
	if !externalRefRe.MatchString(ref) {
		return "", ErrInvalidRef
	}
	return ref, nil
}

// NormalizeAmount validates a monetary amount and canonicalizes it to two
// fractional digits, the precision the provider's terminal API requires.
// Sub-cent amounts round to 0.00 and are rejected: the provider cannot
// charge less than one cent.
func NormalizeAmount(input float64) (decimal.Decimal, error) {
	if math.IsNaN(input) || math.IsInf(input, 0) || input <= 0 {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount := decimal.NewFromFloat(input).Round(2)
	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

// ParseAmount is NormalizeAmount for string input, accepted from callers
// that send amounts as decimal strings.
func ParseAmount(input string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return rounded, nil
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
