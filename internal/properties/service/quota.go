package service

import (
	"time"

	"qota/pkg/config"
)

// perFractionDays is the stay-day allowance one fraction grants per year.
// The annual total always uses 365 regardless of leap years.
func perFractionDays(totalFractions int) float64 {
	return float64(config.DaysPerYear) / float64(totalFractions)
}

func annualTotalDays(totalFractions int) float64 {
	return float64(totalFractions) * perFractionDays(totalFractions)
}

func daysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysRemainingInclusive counts today through December 31 of now's year.
func daysRemainingInclusive(now time.Time) int {
	endOfYear := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(endOfYear.Sub(today).Hours()/24) + 1
}

// proRataBalance seeds the current-year pool with the share of the annual
// total proportional to the days left in the year, today included.
func proRataBalance(now time.Time, annualTotal float64) float64 {
	return annualTotal * float64(daysRemainingInclusive(now)) / float64(daysInYear(now.Year()))
}
