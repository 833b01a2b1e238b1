package billing

import "time"

const (
	// financialYearStartMonth is the month every financial year starts in
	financialYearStartMonth = time.April

	// FirstSrocFinancialYearEnding is the first financial year billed under SROC
	FirstSrocFinancialYearEnding = 2023
)

// SrocStartDate is the date the SROC charging scheme came into force
var SrocStartDate = time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC)

// FinancialYear is a 1 April to 31 March window
type FinancialYear struct {
	StartDate time.Time
	EndDate   time.Time
}

// Ending returns the financial year ending of the window
func (fy FinancialYear) Ending() int {
	return fy.EndDate.Year()
}

// Contains returns true if the date falls inside the window
func (fy FinancialYear) Contains(t time.Time) bool {
	return !t.Before(fy.StartDate) && !t.After(fy.EndDate)
}

// FinancialYearEnding returns the financial year ending for a date.
// Dates in April or later belong to the year ending the following March.
func FinancialYearEnding(t time.Time) int {
	if t.Month() >= financialYearStartMonth {
		return t.Year() + 1
	}
	return t.Year()
}

// FinancialYearFor returns the financial year window containing the date
func FinancialYearFor(t time.Time) FinancialYear {
	ending := FinancialYearEnding(t)
	return FinancialYear{
		StartDate: time.Date(ending-1, financialYearStartMonth, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(ending, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

// CurrentFinancialYear returns the financial year window containing now
func CurrentFinancialYear(now time.Time) FinancialYear {
	return FinancialYearFor(now)
}

// StartsAfterCurrentFinancialYear reports whether a change starting at start is
// too far in the future to flag yet
func StartsAfterCurrentFinancialYear(start, now time.Time) bool {
	return truncateToDate(start).After(CurrentFinancialYear(now).EndDate)
}

// YearsBetween returns every financial year ending touched by the range.
// A nil end is treated as open ended. The range is capped at the current
// financial year. Returns nil when the range does not describe a valid span.
func YearsBetween(start time.Time, end *time.Time, now time.Time) []int {
	current := CurrentFinancialYear(now)
	if start.IsZero() || truncateToDate(start).After(current.EndDate) {
		return nil
	}

	rangeEnd := current.EndDate
	if end != nil && !end.IsZero() {
		if end.Before(start) {
			return nil
		}
		if end.Before(rangeEnd) {
			rangeEnd = *end
		}
	}

	first := FinancialYearEnding(start)
	last := FinancialYearEnding(rangeEnd)
	if last < first {
		return nil
	}

	years := make([]int, 0, last-first+1)
	for year := first; year <= last; year++ {
		years = append(years, year)
	}
	return years
}

// TwoPartTariffYears returns the years in the range that can be two-part tariff
// billed. Only SROC years qualify.
func TwoPartTariffYears(start time.Time, end *time.Time, now time.Time) []int {
	var years []int
	for _, year := range YearsBetween(start, end, now) {
		if year >= FirstSrocFinancialYearEnding {
			years = append(years, year)
		}
	}
	return years
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
