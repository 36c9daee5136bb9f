package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aging buckets an outstanding balance by days past due.
type Aging struct {
	Current decimal.Decimal `json:"current"`
	Days1   decimal.Decimal `json:"1_30"`
	Days31  decimal.Decimal `json:"31_60"`
	Days61  decimal.Decimal `json:"61_90"`
	Over90  decimal.Decimal `json:"over_90"`
}

// Add merges another aging set into this one.
func (a Aging) Add(other Aging) Aging {
	return Aging{
		Current: a.Current.Add(other.Current),
		Days1:   a.Days1.Add(other.Days1),
		Days31:  a.Days31.Add(other.Days31),
		Days61:  a.Days61.Add(other.Days61),
		Over90:  a.Over90.Add(other.Over90),
	}
}

// Total is the sum across all buckets.
func (a Aging) Total() decimal.Decimal {
	return a.Current.Add(a.Days1).Add(a.Days31).Add(a.Days61).Add(a.Over90)
}

// ComputeAging places a document's balance into a single bucket by days
// since its due date. Paid and void documents contribute nothing.
func ComputeAging(doc Document, asOf time.Time) Aging {
	var aging Aging
	if doc.Status == StatusPaid || doc.Status == StatusVoid {
		return aging
	}
	balance := doc.BalanceDue()
	if !balance.IsPositive() {
		return aging
	}

	due := doc.IssueDate
	if doc.DueDate != nil {
		due = *doc.DueDate
	}
	days := daysBetween(due, asOf)
	switch {
	case days <= 0:
		aging.Current = balance
	case days <= 30:
		aging.Days1 = balance
	case days <= 60:
		aging.Days31 = balance
	case days <= 90:
		aging.Days61 = balance
	default:
		aging.Over90 = balance
	}
	return aging
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
