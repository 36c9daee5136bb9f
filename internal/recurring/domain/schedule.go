package domain

import "time"

// OccurrenceDate returns the date of occurrence n (0 = the start date).
// Monthly and yearly schedules stay anchored to the start day-of-month:
// a profile started on the 31st bills on the 29th in February of a leap
// year and returns to the 31st in March, it never drifts to shorter days.
func OccurrenceDate(start time.Time, freq Frequency, repeatEvery int, n int64) time.Time {
	if repeatEvery < 1 {
		repeatEvery = 1
	}
	start = truncateDay(start)
	if n <= 0 {
		return start
	}
	steps := int(n) * repeatEvery

	switch freq {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7*steps)
	case FrequencyYearly:
		return addMonthsClamped(start, 12*steps)
	default:
		return addMonthsClamped(start, steps)
	}
}

// NextBillDateAfter returns the date of the occurrence following the given
// count of already generated bills.
func (p Profile) NextBillDateAfter(generated int64) time.Time {
	return OccurrenceDate(p.StartDate, p.Frequency, p.RepeatEvery, generated)
}

// Expired reports whether the next occurrence falls past the end date.
func (p Profile) Expired(next time.Time) bool {
	if p.NeverExpires || p.EndDate == nil {
		return false
	}
	return next.After(truncateDay(*p.EndDate))
}

// addMonthsClamped advances by whole months, clamping the day to the
// target month's last day instead of letting time.AddDate spill over.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(firstOfTarget); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidFrequency reports whether the frequency is one of the supported
// cadences.
func ValidFrequency(freq Frequency) bool {
	switch freq {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}
