package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Totals aggregates line items into the payable amount of a document.
type Totals struct {
	SubTotal   decimal.Decimal `json:"sub_total"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Discount   decimal.Decimal `json:"discount"`
	TDSAmount  decimal.Decimal `json:"tds_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// ComputeTotals derives document totals from its line items. Pure and
// deterministic: identical inputs always produce identical totals.
//
// The discount is clamped to [0, sub_total]; the grand total never goes
// below zero.
func ComputeTotals(
	items []LineItem,
	discountType DiscountType,
	discountValue decimal.Decimal,
	tdsApplicable bool,
	tdsRate decimal.Decimal,
) (Totals, error) {
	if tdsApplicable && (tdsRate.IsNegative() || tdsRate.GreaterThan(oneHundred)) {
		return Totals{}, fmt.Errorf("%w: rate must be between 0 and 100", ErrInvalidTDSRate)
	}

	subTotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, item := range items {
		valuation, err := Valuate(item)
		if err != nil {
			return Totals{}, err
		}
		subTotal = subTotal.Add(valuation.Amount)
		taxTotal = taxTotal.Add(valuation.Tax)
	}

	var discount decimal.Decimal
	switch discountType {
	case DiscountTypePercentage:
		discount = subTotal.Mul(discountValue).Div(oneHundred)
	case DiscountTypeFlat, "":
		discount = discountValue
	default:
		return Totals{}, fmt.Errorf("%w: unknown discount type %q", ErrInvalidDiscount, discountType)
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subTotal) {
		discount = subTotal
	}

	preTDS := subTotal.Sub(discount).Add(taxTotal)

	tds := decimal.Zero
	if tdsApplicable {
		tds = preTDS.Mul(tdsRate).Div(oneHundred)
	}

	grand := preTDS.Sub(tds)
	if grand.IsNegative() {
		grand = decimal.Zero
	}

	return Totals{
		SubTotal:   subTotal,
		TaxTotal:   taxTotal,
		Discount:   discount,
		TDSAmount:  tds,
		GrandTotal: grand,
	}, nil
}
