package dataimporter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts "HH:MM[:SS]" to minutes since midnight. Hours may go
// past 24 for services running after midnight.
func ParseClock(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", value)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", value)
	}

	return float64(fields[0]*60+fields[1]) + float64(fields[2])/60, nil
}
