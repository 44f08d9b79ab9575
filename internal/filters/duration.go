package filters

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned for duration literals no rule can parse
var ErrInvalidDuration = errors.New("invalid duration")

// DurationWindow is an inclusive [LowMs, HighMs] range
type DurationWindow struct {
	LowMs  int64
	HighMs int64
}

// Contains reports whether durationMs lies inside the window, bounds included
func (w DurationWindow) Contains(durationMs int64) bool {
	return w.LowMs <= durationMs && durationMs <= w.HighMs
}

// ParseDuration converts "500ms", "2s", "1.5m", "1h" or a bare integer into milliseconds.
// "ms" and bare values must be integers; s, m and h accept fractions and are rounded.
func ParseDuration(literal string) (int64, error) {
	switch {
	case strings.HasSuffix(literal, "ms"):
		return parseIntMillis(literal, strings.TrimSuffix(literal, "ms"))
	case strings.HasSuffix(literal, "s"):
		return parseScaled(literal, strings.TrimSuffix(literal, "s"), 1000)
	case strings.HasSuffix(literal, "m"):
		return parseScaled(literal, strings.TrimSuffix(literal, "m"), 60*1000)
	case strings.HasSuffix(literal, "h"):
		return parseScaled(literal, strings.TrimSuffix(literal, "h"), 60*60*1000)
	default:
		return parseIntMillis(literal, literal)
	}
}

// ParseDurationWindow parses "<low>-<high>", e.g. "300ms-2s"
func ParseDurationWindow(expr string) (DurationWindow, error) {
	parts := strings.Split(expr, "-")
	if len(parts) != 2 {
		return DurationWindow{}, fmt.Errorf("%w: %q must have the form <low>-<high>", ErrInvalidDuration, expr)
	}

	low, err := ParseDuration(parts[0])
	if err != nil {
		return DurationWindow{}, err
	}
	high, err := ParseDuration(parts[1])
	if err != nil {
		return DurationWindow{}, err
	}

	return DurationWindow{LowMs: low, HighMs: high}, nil
}

func parseIntMillis(literal, number string) (int64, error) {
	value, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidDuration, literal, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidDuration, literal)
	}
	return value, nil
}

func parseScaled(literal, number string, factor float64) (int64, error) {
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidDuration, literal, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, fmt.Errorf("%w: %q is not a finite non-negative number", ErrInvalidDuration, literal)
	}

	millis := math.Round(value * factor)
	if millis >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, literal)
	}
	return int64(millis), nil
}
