package util

import "time"

// FinancialYearFor returns the Indian financial year a date belongs to,
// identified by the calendar year it starts in. The financial year runs
// April 1 through March 31, so January–March dates belong to the previous
// calendar year's financial year.
func FinancialYearFor(date time.Time) int {
	if date.Month() < time.April {
		return date.Year() - 1
	}
	return date.Year()
}

// CurrentFinancialYear returns the financial year containing now.
func CurrentFinancialYear(now time.Time) int {
	return FinancialYearFor(now)
}

// FinancialYearBounds returns the inclusive start and end of a financial
// year: April 1 00:00:00 through March 31 23:59:59.999999999 of the
// following calendar year.
func FinancialYearBounds(financialYear int) (time.Time, time.Time) {
	start := time.Date(financialYear, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(financialYear+1, time.March, 31, 23, 59, 59, 999999999, time.UTC)
	return start, end
}
