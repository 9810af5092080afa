package balance

import "github.com/shopspring/decimal"

var epsilon = decimal.New(1, -2)

// Epsilon returns the settlement tolerance: one cent.
func Epsilon() decimal.Decimal {
	return epsilon
}

// IsSettled reports whether d lies within [-Epsilon, Epsilon].
func IsSettled(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(epsilon)
}

// RoundCents rounds d to two decimal places, half away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
