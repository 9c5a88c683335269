package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

var energyMultipliers = map[byte]float64{
	'k': 1e3,
	'K': 1e3,
	'M': 1e6,
	'G': 1e9,
	'T': 1e12,
}

// ParseEnergy converts a game energy string ("150kW", "4MJ", "90000") to
// watts or joules. The trailing unit letter (W or J) is optional.
func ParseEnergy(value string) (float64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty energy value")
	}

	s = strings.TrimRight(s, "WJ")
	multiplier := 1.0
	if n := len(s); n > 0 {
		if m, ok := energyMultipliers[s[n-1]]; ok {
			multiplier = m
			s = s[:n-1]
		}
	}

	number, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid energy value %q: %w", value, err)
	}
	if number < 0 {
		return 0, fmt.Errorf("energy value %q cannot be negative", value)
	}
	return number * multiplier, nil
}
