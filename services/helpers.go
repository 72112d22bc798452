package services

import (
	"math"
	"strings"
	"time"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validMeasure reports whether v is present, finite and not negative.
func validMeasure(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v >= 0
}

func hasDuplicates(ids []int) bool {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
