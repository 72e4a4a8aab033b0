package domain

import "time"

// FiscalYearStartMonth is the first month of the government fiscal year.
const FiscalYearStartMonth = time.April

// FiscalYear returns the fiscal year t falls in. Dates before April belong to
// the fiscal year equal to the calendar year; from April on, to the next one.
func FiscalYear(t time.Time) int {
	if t.Month() < FiscalYearStartMonth {
		return t.Year()
	}
	return t.Year() + 1
}

