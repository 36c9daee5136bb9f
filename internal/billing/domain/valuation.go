package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Valuation is the derived pricing of a single line item.
type Valuation struct {
	Amount decimal.Decimal `json:"amount"`
	Tax    decimal.Decimal `json:"tax"`
	Total  decimal.Decimal `json:"total"`
}

// Valuate prices a line item. Pure: amount = quantity*rate,
// tax = amount*taxRate/100, total = amount+tax.
func Valuate(item LineItem) (Valuation, error) {
	if strings.TrimSpace(item.Name) == "" {
		return Valuation{}, fmt.Errorf("%w: name is required", ErrInvalidLineItem)
	}
	if !item.Quantity.IsPositive() {
		return Valuation{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidLineItem)
	}
	if item.Rate.IsNegative() {
		return Valuation{}, fmt.Errorf("%w: rate must not be negative", ErrInvalidLineItem)
	}
	if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(oneHundred) {
		return Valuation{}, fmt.Errorf("%w: tax rate must be between 0 and 100", ErrInvalidLineItem)
	}

	amount := item.Quantity.Mul(item.Rate)
	tax := amount.Mul(item.TaxRate).Div(oneHundred)
	return Valuation{
		Amount: amount,
		Tax:    tax,
		Total:  amount.Add(tax),
	}, nil
}
