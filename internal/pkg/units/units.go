// Package units formats route metrics for display.
package units

import (
	"fmt"
	"math"
)

// Km formats meters as kilometers with one decimal, e.g. "12.3 km".
func Km(meters float64) string {
	return fmt.Sprintf("%.1f km", meters/1000)
}

// Mins formats seconds as whole minutes, e.g. "42 min".
func Mins(seconds float64) string {
	return fmt.Sprintf("%d min", int(math.Round(seconds/60)))
}

// Meters formats an elevation gain, e.g. "310 m".
func Meters(m float64) string {
	return fmt.Sprintf("%.0f m", m)
}

// Ratio formats a [0,1] ratio as a percentage with one decimal, e.g. "37.5%".
func Ratio(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}

// Percent formats a [0,1] slider value as a whole percentage, e.g. "70%".
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

// Score formats a ranking score with three decimals.
func Score(s float64) string {
	return fmt.Sprintf("%.3f", s)
}
