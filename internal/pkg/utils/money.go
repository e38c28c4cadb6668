package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// IsFiniteAmount rejects NaN and infinities, which decimal cannot represent.
func IsFiniteAmount(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func Money(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}

// Percent returns amount × pct / 100.
func Percent(amount decimal.Decimal, pct float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(pct)).Div(hundred)
}

// RoundMoney rounds to two decimal places and converts back for storage.
func RoundMoney(value decimal.Decimal) float64 {
	return value.Round(2).InexactFloat64()
}

// ToMinorUnits converts a major-unit amount to the gateway's integer unit.
func ToMinorUnits(amount float64, minorUnitsPerMajor int64) int64 {
	return Money(amount).Mul(decimal.NewFromInt(minorUnitsPerMajor)).Round(0).IntPart()
}

func FromMinorUnits(amount int64, minorUnitsPerMajor int64) float64 {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(minorUnitsPerMajor)).Round(2).InexactFloat64()
}
