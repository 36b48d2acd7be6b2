package expenses

import (
	"time"

	"github.com/shopspring/decimal"

	"fleet_expenses/internal/models"
)

// MaxSeriesMonths caps the month walk so that corrupt dates cannot make it
// run unbounded.
const MaxSeriesMonths = 600

// SeriesPoint is one month of the monthly series.
type SeriesPoint struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// MonthKeys lists the YYYY-MM keys from the month of first to the month of
// last, inclusive, stopping after MaxSeriesMonths entries.
func MonthKeys(first, last time.Time) []string {
	keys := []string{}
	end := MonthOf(last).Start
	for cur := MonthOf(first).Start; !cur.After(end) && len(keys) < MaxSeriesMonths; cur = cur.AddDate(0, 1, 0) {
		keys = append(keys, cur.Format(MonthKeyLayout))
	}
	return keys
}

// BuildMonthlySeries totals the records per month over every month between
// first and last, inclusive. Months without records get a zero total and
// records outside the window are ignored.
func BuildMonthlySeries(first, last time.Time, records []models.Expense) []SeriesPoint {
	keys := MonthKeys(first, last)
	if len(keys) == 0 {
		return []SeriesPoint{}
	}
	from := MonthOf(first).Start
	to := MonthOf(last).End

	totals := make(map[string]decimal.Decimal, len(keys))
	for _, r := range records {
		if r.Date.Before(from) || !r.Date.Before(to) {
			continue
		}
		key := MonthKey(r.Date.Time)
		totals[key] = totals[key].Add(r.Amount)
	}

	series := make([]SeriesPoint, 0, len(keys))
	for _, key := range keys {
		total, ok := totals[key]
		if !ok {
			total = decimal.Zero
		}
		series = append(series, SeriesPoint{Month: key, Total: total})
	}
	return series
}

// DateBounds returns the earliest and latest record dates. ok is false when
// records is empty.
func DateBounds(records []models.Expense) (first, last time.Time, ok bool) {
	for i, r := range records {
		if i == 0 || r.Date.Before(first) {
			first = r.Date.Time
		}
		if i == 0 || r.Date.After(last) {
			last = r.Date.Time
		}
	}
	return first, last, len(records) > 0
}

// MonthlySeries is BuildMonthlySeries over the span of the records
// themselves. No records yields an empty series.
func MonthlySeries(records []models.Expense) []SeriesPoint {
	first, last, ok := DateBounds(records)
	if !ok {
		return []SeriesPoint{}
	}
	return BuildMonthlySeries(first, last, records)
}
