package expenses

import (
	"strconv"
	"strings"
	"time"
)

// MonthKeyLayout formats a month key such as "2024-03".
const MonthKeyLayout = "2006-01"

// MonthRange is a calendar month as a half-open UTC interval [Start, End).
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// Key returns the YYYY-MM key of the month.
func (r MonthRange) Key() string {
	return r.Start.Format(MonthKeyLayout)
}

// Contains reports whether t falls inside the month.
func (r MonthRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// MonthOf returns the calendar month containing t, taken in UTC.
func MonthOf(t time.Time) MonthRange {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return MonthRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// MonthKey formats the month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return MonthOf(t).Key()
}

// ParseMonth turns a YYYY-MM string into its UTC month range. The end is the
// first day of the following month.
func ParseMonth(s string) (MonthRange, error) {
	yearPart, monthPart, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return MonthRange{}, invalid("month", "month must be in YYYY-MM format")
	}
	if !isDigits(yearPart, 4) || !isDigits(monthPart, 2) {
		return MonthRange{}, invalid("month", "month must be in YYYY-MM format")
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year <= 0 {
		return MonthRange{}, invalid("month", "month has an invalid year")
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil || month < 1 || month > 12 {
		return MonthRange{}, invalid("month", "month must be between 01 and 12")
	}
	return MonthOf(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)), nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
