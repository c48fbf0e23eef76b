// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// StoragePlaces is the number of fractional digits money is persisted with.
const StoragePlaces int32 = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock quantity. Fractional for weighed goods.
type Quantity = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// OrZero dereferences a nullable amount. Missing amounts on source rows
// count as zero rather than failing the aggregation.
func OrZero(m *Money) Money {
	if m == nil {
		return decimal.Zero
	}
	return *m
}

// Sum adds all values without intermediate rounding.
func Sum(values ...Money) Money {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// RoundForStorage rounds half away from zero to StoragePlaces.
// Call it exactly once, at the persistence boundary.
func RoundForStorage(m Money) Money {
	return m.Round(StoragePlaces)
}

// EqualCents reports whether two amounts are equal once rounded to cents.
func EqualCents(a, b Money) bool {
	return RoundForStorage(a).Equal(RoundForStorage(b))
}
