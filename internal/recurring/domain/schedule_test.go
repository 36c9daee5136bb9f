package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOccurrenceDateMonthlyClampsToMonthEnd(t *testing.T) {
	start := day(2024, time.January, 31)

	tests := []struct {
		n    int64
		want time.Time
	}{
		{0, day(2024, time.January, 31)},
		{1, day(2024, time.February, 29)}, // leap year
		{2, day(2024, time.March, 31)},    // back to the anchor day
		{3, day(2024, time.April, 30)},
		{4, day(2024, time.May, 31)},
		{13, day(2025, time.February, 28)},
	}
	for _, tt := range tests {
		got := OccurrenceDate(start, FrequencyMonthly, 1, tt.n)
		if !got.Equal(tt.want) {
			t.Errorf("occurrence %d = %s, want %s", tt.n, got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
		}
	}
}

func TestOccurrenceDateWeekly(t *testing.T) {
	start := day(2026, time.March, 2)

	if got := OccurrenceDate(start, FrequencyWeekly, 1, 3); !got.Equal(day(2026, time.March, 23)) {
		t.Errorf("weekly n=3 = %s", got.Format("2006-01-02"))
	}
	if got := OccurrenceDate(start, FrequencyWeekly, 2, 2); !got.Equal(day(2026, time.March, 30)) {
		t.Errorf("biweekly n=2 = %s", got.Format("2006-01-02"))
	}
}

func TestOccurrenceDateYearly(t *testing.T) {
	start := day(2024, time.February, 29)

	if got := OccurrenceDate(start, FrequencyYearly, 1, 1); !got.Equal(day(2025, time.February, 28)) {
		t.Errorf("yearly n=1 = %s", got.Format("2006-01-02"))
	}
	if got := OccurrenceDate(start, FrequencyYearly, 1, 4); !got.Equal(day(2028, time.February, 29)) {
		t.Errorf("yearly n=4 = %s", got.Format("2006-01-02"))
	}
}

func TestOccurrenceDateRepeatEvery(t *testing.T) {
	start := day(2026, time.January, 31)

	if got := OccurrenceDate(start, FrequencyMonthly, 3, 1); !got.Equal(day(2026, time.April, 30)) {
		t.Errorf("quarterly n=1 = %s", got.Format("2006-01-02"))
	}
	if got := OccurrenceDate(start, FrequencyMonthly, 3, 2); !got.Equal(day(2026, time.July, 31)) {
		t.Errorf("quarterly n=2 = %s", got.Format("2006-01-02"))
	}
}

func TestOccurrenceDateDropsTimeOfDay(t *testing.T) {
	start := time.Date(2026, time.May, 10, 17, 30, 0, 0, time.UTC)

	if got := OccurrenceDate(start, FrequencyMonthly, 1, 1); !got.Equal(day(2026, time.June, 10)) {
		t.Errorf("n=1 = %s", got)
	}
}

func TestProfileExpired(t *testing.T) {
	end := day(2026, time.June, 30)
	profile := Profile{EndDate: &end}

	if profile.Expired(day(2026, time.June, 30)) {
		t.Error("occurrence on end date should not expire")
	}
	if !profile.Expired(day(2026, time.July, 1)) {
		t.Error("occurrence past end date should expire")
	}

	profile.NeverExpires = true
	if profile.Expired(day(2030, time.January, 1)) {
		t.Error("never-expiring profile reported expired")
	}
}
