package shared

import (
	"errors"
	"regexp"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ErrInvalidMonth indicates a malformed YYYY-MM reference.
var ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")

// ParseMonth parses a YYYY-MM reference into the first instant of that
// calendar month in the given location. An empty input resolves to the
// current month.
func ParseMonth(s string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if s == "" {
		if now == nil {
			now = time.Now
		}
		t := now().In(loc)
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	if !monthPattern.MatchString(s) {
		return time.Time{}, ErrInvalidMonth
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}
