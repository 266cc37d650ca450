// Package billing computes parking fees. The calculator is a pure function
// so the preview and close paths quote identical figures for the same instant.
package billing

import (
	"math"
	"time"
)

// Quote computes the elapsed duration and the amount owed for a stay that
// began at entryTime, priced at hourlyRate per hour, evaluated at now.
//
// The first hour is always charged in full regardless of actual elapsed time;
// beyond one hour billing is by exact fractional hour. Elapsed time is clamped
// at zero so a skewed clock can never produce a negative duration. Both
// return values are rounded to 2 decimal places.
func Quote(entryTime time.Time, hourlyRate float64, now time.Time) (durationHours, amount float64) {
	elapsed := now.Sub(entryTime).Hours()
	if elapsed < 0 {
		elapsed = 0
	}

	billable := elapsed
	if billable < 1 {
		billable = 1
	}

	return Round2(elapsed), Round2(billable * hourlyRate)
}

// Round2 rounds a monetary or duration figure to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
