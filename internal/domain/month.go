package domain

import (
	"fmt"
	"time"
)

// Month is a calendar month bucket. It is comparable and safe to use as a
// map key, which is what the ledger aggregation relies on.
type Month struct {
	Year int
	Mon  time.Month
}

// MonthOf buckets a timestamp into its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Mon: t.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Time returns the first day of the month at midnight UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Mon, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return m.Time().Format("2006-01")
}

// IsZero reports whether the month is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Mon == 0
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return MonthOf(m.Time().AddDate(0, 1, 0))
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Mon < o.Mon
}

// After reports whether m is strictly later than o.
func (m Month) After(o Month) bool {
	return o.Before(m)
}

// MonthRange returns every month from start through end inclusive.
// An inverted range yields nil.
func MonthRange(start, end Month) []Month {
	if end.Before(start) {
		return nil
	}
	var months []Month
	for m := start; !end.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}
