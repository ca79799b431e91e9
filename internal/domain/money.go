package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// Mul returns the money multiplied by a quantity.
func (m Money) Mul(quantity int32) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt32(quantity)),
		Currency: m.Currency,
	}
}

// Add sums two amounts. Both operands are expected to share a currency;
// the catalog is single-currency so this is not re-checked here.
func (m Money) Add(other Money) Money {
	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}
}
