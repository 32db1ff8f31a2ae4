package utils

import "math"

// Round snaps a money amount to cents. All derived totals go through here so
// repeated float arithmetic cannot accumulate drift.
func Round(value float64) float64 {
	return math.Round(value*100) / 100
}

// Cents converts a money amount to integer cents, as payment gateways expect.
func Cents(value float64) int64 {
	return int64(math.Round(value * 100))
}
