// Package fieldval normalizes raw form-style field values before they are
// written to the gradebook tables. Every function returns a typed value or
// an error; bad input is never a panic.
package fieldval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var ErrInvalid = errors.New("invalid value")

const dateLayout = "2006-01-02"

// sanitizer strips all HTML from free-text comments.
var sanitizer = bluemonday.StrictPolicy()

// Title trims whitespace and rejects titles that are empty after trimming.
func Title(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", fmt.Errorf("title must not be empty: %w", ErrInvalid)
	}
	return title, nil
}

// Date parses a strict YYYY-MM-DD date. An empty (or whitespace-only) input
// means "no date" and returns nil without error. Semantically impossible
// dates like 2021-02-30 are rejected by the round-trip check below, since
// time.Parse is lenient about digit padding and day overflow.
func Date(raw string) (*string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalid)
	}
	if t.Format(dateLayout) != trimmed {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalid)
	}

	canonical := t.Format(dateLayout)
	return &canonical, nil
}

// Float parses a finite floating-point number.
func Float(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("number required: %w", ErrInvalid)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", ErrInvalid)
	}
	// ParseFloat accepts "Inf" and "NaN"; scores and values must be finite.
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %w", ErrInvalid)
	}
	return f, nil
}

// Int parses a base-10 integer.
func Int(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("number required: %w", ErrInvalid)
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %w", ErrInvalid)
	}
	return n, nil
}

// Bool interprets checkbox-style values. An absent (empty) field means
// false, because HTML forms omit unchecked boxes entirely.
func Bool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return false, nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %w", ErrInvalid)
}

// Comment strips any HTML markup from a free-text comment and trims it.
// Comments are optional, so an empty result is fine.
func Comment(raw string) string {
	return strings.TrimSpace(sanitizer.Sanitize(raw))
}
