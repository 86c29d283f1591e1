package interval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedTime = errors.New("malformed time value")

// ParseTime accepts "H:MM:SS", "MM:SS" or plain decimal seconds.
func ParseTime(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedTime)
	}

	if !strings.Contains(value, ":") {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
		}
		return seconds, nil
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	seconds, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
	}

	total := seconds
	multiplier := 60
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, value)
		}
		total += float64(n * multiplier)
		multiplier *= 60
	}

	return total, nil
}

// FormatTime renders whole seconds as H:MM:SS, or MM:SS under one hour.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	s = s % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// wholeSecond is the precision a formatted bound retains.
func wholeSecond(seconds float64) float64 {
	if seconds < 0 {
		return 0
	}
	return float64(int(seconds))
}
