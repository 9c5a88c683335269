package utils

import (
	"math"
	"strconv"
)

// FormatNumber renders up to four decimals without trailing zeros ("0.####")
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}

	rounded := math.Round(v*1e4) / 1e4
	if rounded == 0 {
		// Avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// FormatPlural renders "<n> <noun>" with an "s" unless n is 1
func FormatPlural(n float64, noun string) string {
	if ApproxEqual(n, 1, 1e-5) {
		return FormatNumber(n) + " " + noun
	}
	return FormatNumber(n) + " " + noun + "s"
}

var energyPrefixes = []string{"", "k", "M", "G"}

// FormatEnergy renders watts in engineering notation with up to two
// decimals: 150000 -> "150kW", 1234567 -> "1.23MW"
func FormatEnergy(watts float64) string {
	if !IsFinite(watts) {
		return FormatNumber(watts) + "W"
	}

	exponent := 0
	if abs := math.Abs(watts); abs >= 1 {
		exponent = int(math.Floor(math.Log10(abs) / 3))
	}
	if exponent >= len(energyPrefixes) {
		exponent = len(energyPrefixes) - 1
	}

	mantissa := math.Round(watts/math.Pow(1000, float64(exponent))*100) / 100
	if math.Abs(mantissa) >= 1000 && exponent < len(energyPrefixes)-1 {
		exponent++
		mantissa = math.Round(watts/math.Pow(1000, float64(exponent))*100) / 100
	}
	if mantissa == 0 {
		// Normalize -0
		mantissa = 0
	}

	return strconv.FormatFloat(mantissa, 'f', -1, 64) + energyPrefixes[exponent] + "W"
}
