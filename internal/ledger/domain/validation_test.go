package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func amt(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestValidateBalancedAccepted(t *testing.T) {
	lines := []EntryLine{
		{Direction: EntryDirectionDebit, Amount: amt("200.00")},
		{Direction: EntryDirectionDebit, Amount: amt("36.00")},
		{Direction: EntryDirectionCredit, Amount: amt("236.00")},
	}
	if err := ValidateBalanced(lines); err != nil {
		t.Fatalf("expected balanced entry, got %v", err)
	}
}

func TestValidateBalancedRejections(t *testing.T) {
	cases := []struct {
		name  string
		lines []EntryLine
		want  error
	}{
		{
			name:  "single line",
			lines: []EntryLine{{Direction: EntryDirectionDebit, Amount: amt("10")}},
			want:  ErrInvalidEntryLines,
		},
		{
			name: "negative amount",
			lines: []EntryLine{
				{Direction: EntryDirectionDebit, Amount: amt("-10")},
				{Direction: EntryDirectionCredit, Amount: amt("-10")},
			},
			want: ErrInvalidLineAmount,
		},
		{
			name: "unknown direction",
			lines: []EntryLine{
				{Direction: "sideways", Amount: amt("10")},
				{Direction: EntryDirectionCredit, Amount: amt("10")},
			},
			want: ErrInvalidLineDirection,
		},
		{
			name: "unbalanced",
			lines: []EntryLine{
				{Direction: EntryDirectionDebit, Amount: amt("10")},
				{Direction: EntryDirectionCredit, Amount: amt("9.99")},
			},
			want: ErrUnbalancedEntry,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateBalanced(tc.lines); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
