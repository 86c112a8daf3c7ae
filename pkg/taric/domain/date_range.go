package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date format used by TARIC.
const DateLayout = "2006-01-02"

// DateRange is a validity period. Upper is nil for open-ended ranges.
type DateRange struct {
	Lower time.Time
	Upper *time.Time
}

// String renders "lower/upper", leaving upper empty when open.
func (r DateRange) String() string {
	if r.Upper == nil {
		return r.Lower.Format(DateLayout) + "/"
	}
	return r.Lower.Format(DateLayout) + "/" + r.Upper.Format(DateLayout)
}

// ParseDateRange is the inverse of String.
func ParseDateRange(s string) (DateRange, error) {
	lower, upper, ok := strings.Cut(s, "/")
	if !ok {
		return DateRange{}, fmt.Errorf("date range %q has no separator", s)
	}
	lo, err := time.Parse(DateLayout, lower)
	if err != nil {
		return DateRange{}, err
	}
	r := DateRange{Lower: lo}
	if upper != "" {
		up, err := time.Parse(DateLayout, upper)
		if err != nil {
			return DateRange{}, err
		}
		r.Upper = &up
	}
	return r, nil
}

// Contains reports whether day falls inside the range, inclusive.
func (r DateRange) Contains(day time.Time) bool {
	if day.Before(r.Lower) {
		return false
	}
	return r.Upper == nil || !day.After(*r.Upper)
}
