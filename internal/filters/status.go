package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidStatusClass is returned for class tokens like "axx"
var ErrInvalidStatusClass = errors.New("invalid status class")

// StatusCodeSet holds exact status code strings; an empty set disables status filtering
type StatusCodeSet map[string]struct{}

// Contains reports whether code is in the set
func (s StatusCodeSet) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

// ExpandStatusCodes turns "200,302,4xx" into a set of codes.
// A class token "<d>xx" expands arithmetically to d00..d99 without checking HTTP semantics.
func ExpandStatusCodes(expr string) (StatusCodeSet, error) {
	codes := make(StatusCodeSet)
	if expr == "" {
		return codes, nil
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.HasSuffix(part, "xx") {
			codes[part] = struct{}{}
			continue
		}

		digit, err := strconv.Atoi(part[:1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatusClass, part)
		}
		base := digit * 100
		for i := 0; i < 100; i++ {
			codes[strconv.Itoa(base+i)] = struct{}{}
		}
	}

	return codes, nil
}
