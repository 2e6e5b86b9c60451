package model

import (
	"fmt"
	"strings"
	"time"
)

// DayNames lists English weekday names indexed by ISO day of week
// (Monday = 0 ... Sunday = 6).
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayOfWeek returns the ISO day index of t in its own location.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DayName returns the English weekday name of t in its own location.
func DayName(t time.Time) string {
	return DayNames[DayOfWeek(t)]
}

// ParseDay resolves a weekday name (case insensitive) to its ISO index.
func ParseDay(name string) (int, error) {
	for i, n := range DayNames {
		if strings.EqualFold(name, n) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid day %q: use Monday through Sunday", name)
}
