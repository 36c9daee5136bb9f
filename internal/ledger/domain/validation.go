package domain

import "github.com/shopspring/decimal"

// ValidateBalanced ensures ledger lines sum to a balanced double-entry posting.
func ValidateBalanced(lines []EntryLine) error {
	if len(lines) < 2 {
		return ErrInvalidEntryLines
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for _, line := range lines {
		if line.Amount.IsNegative() {
			return ErrInvalidLineAmount
		}
		switch line.Direction {
		case EntryDirectionDebit:
			debitTotal = debitTotal.Add(line.Amount)
		case EntryDirectionCredit:
			creditTotal = creditTotal.Add(line.Amount)
		default:
			return ErrInvalidLineDirection
		}
	}

	if !debitTotal.Equal(creditTotal) {
		return ErrUnbalancedEntry
	}
	return nil
}
