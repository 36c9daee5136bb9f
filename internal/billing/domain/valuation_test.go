package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValuate(t *testing.T) {
	tests := []struct {
		name       string
		item       LineItem
		wantAmount string
		wantTax    string
		wantTotal  string
	}{
		{
			name:       "standard gst line",
			item:       LineItem{Name: "Engine oil", Quantity: dec("2"), Rate: dec("100"), TaxRate: dec("18")},
			wantAmount: "200",
			wantTax:    "36",
			wantTotal:  "236",
		},
		{
			name:       "fractional quantity",
			item:       LineItem{Name: "Brake fluid", Quantity: dec("1.5"), Rate: dec("240"), TaxRate: dec("12")},
			wantAmount: "360",
			wantTax:    "43.2",
			wantTotal:  "403.2",
		},
		{
			name:       "zero tax",
			item:       LineItem{Name: "Labour", Quantity: dec("3"), Rate: dec("500"), TaxRate: decimal.Zero},
			wantAmount: "1500",
			wantTax:    "0",
			wantTotal:  "1500",
		},
		{
			name:       "zero rate is allowed",
			item:       LineItem{Name: "Complimentary wash", Quantity: dec("1"), Rate: decimal.Zero, TaxRate: dec("18")},
			wantAmount: "0",
			wantTax:    "0",
			wantTotal:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Valuate(tt.item)
			if err != nil {
				t.Fatalf("Valuate() error = %v", err)
			}
			if !got.Amount.Equal(dec(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", got.Amount, tt.wantAmount)
			}
			if !got.Tax.Equal(dec(tt.wantTax)) {
				t.Errorf("Tax = %s, want %s", got.Tax, tt.wantTax)
			}
			if !got.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", got.Total, tt.wantTotal)
			}
		})
	}
}

func TestValuateRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
	}{
		{name: "empty name", item: LineItem{Quantity: dec("1"), Rate: dec("10"), TaxRate: dec("18")}},
		{name: "zero quantity", item: LineItem{Name: "Oil", Quantity: decimal.Zero, Rate: dec("10")}},
		{name: "negative quantity", item: LineItem{Name: "Oil", Quantity: dec("-1"), Rate: dec("10")}},
		{name: "negative rate", item: LineItem{Name: "Oil", Quantity: dec("1"), Rate: dec("-10")}},
		{name: "tax rate above 100", item: LineItem{Name: "Oil", Quantity: dec("1"), Rate: dec("10"), TaxRate: dec("101")}},
		{name: "negative tax rate", item: LineItem{Name: "Oil", Quantity: dec("1"), Rate: dec("10"), TaxRate: dec("-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Valuate(tt.item); !errors.Is(err, ErrInvalidLineItem) {
				t.Fatalf("Valuate() error = %v, want ErrInvalidLineItem", err)
			}
		})
	}
}
