package expenses

import (
	"sort"

	"github.com/shopspring/decimal"

	"fleet_expenses/internal/models"
)

// CategoryTotal aggregates one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// TruckSummary aggregates the expenses of one truck.
type TruckSummary struct {
	TruckPlate  string          `json:"truckPlate"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
	Fuel        decimal.Decimal `json:"fuel"`
	Maintenance decimal.Decimal `json:"maintenance"`
	Liters      decimal.Decimal `json:"liters"`
	KmDriven    decimal.Decimal `json:"kmDriven"`

	minKm, maxKm decimal.Decimal
	hasKm        bool
}

// Summary feeds the dashboard cards and tables.
type Summary struct {
	Count            int                 `json:"count"`
	Total            decimal.Decimal     `json:"total"`
	Liters           decimal.Decimal     `json:"liters"`
	AvgPricePerLiter decimal.NullDecimal `json:"avgPricePerLiter"`
	ByCategory       []CategoryTotal     `json:"byCategory"`
	ByTruck          []TruckSummary      `json:"byTruck"`
}

// Summarize reduces records into totals per category and per truck.
// Average price per liter only counts fuel records that carry liters.
func Summarize(records []models.Expense) Summary {
	s := Summary{
		Total:   decimal.Zero,
		Liters:  decimal.Zero,
		ByTruck: []TruckSummary{},
	}

	byCategory := make(map[models.Category]*CategoryTotal)
	for _, c := range models.Categories() {
		ct := &CategoryTotal{Category: c, Total: decimal.Zero}
		byCategory[c] = ct
	}
	byTruck := make(map[string]*TruckSummary)
	pricedFuel := decimal.Zero

	for _, r := range records {
		s.Count++
		s.Total = s.Total.Add(r.Amount)

		if ct, ok := byCategory[r.Category]; ok {
			ct.Count++
			ct.Total = ct.Total.Add(r.Amount)
		}

		ts, ok := byTruck[r.TruckPlate]
		if !ok {
			ts = &TruckSummary{
				TruckPlate:  r.TruckPlate,
				Total:       decimal.Zero,
				Fuel:        decimal.Zero,
				Maintenance: decimal.Zero,
				Liters:      decimal.Zero,
				KmDriven:    decimal.Zero,
			}
			byTruck[r.TruckPlate] = ts
		}
		ts.Count++
		ts.Total = ts.Total.Add(r.Amount)
		switch r.Category {
		case models.CategoryFuel:
			ts.Fuel = ts.Fuel.Add(r.Amount)
		case models.CategoryMaintenance:
			ts.Maintenance = ts.Maintenance.Add(r.Amount)
		}
		if r.Km.IsPositive() {
			if !ts.hasKm || r.Km.LessThan(ts.minKm) {
				ts.minKm = r.Km
			}
			if !ts.hasKm || r.Km.GreaterThan(ts.maxKm) {
				ts.maxKm = r.Km
			}
			ts.hasKm = true
		}

		if r.IsFuel() && r.Liters.Valid {
			s.Liters = s.Liters.Add(r.Liters.Decimal)
			ts.Liters = ts.Liters.Add(r.Liters.Decimal)
			pricedFuel = pricedFuel.Add(r.Amount)
		}
	}

	if s.Liters.IsPositive() {
		s.AvgPricePerLiter = decimal.NewNullDecimal(pricedFuel.DivRound(s.Liters, 3))
	}

	for _, c := range models.Categories() {
		s.ByCategory = append(s.ByCategory, *byCategory[c])
	}

	for _, ts := range byTruck {
		if ts.hasKm {
			ts.KmDriven = ts.maxKm.Sub(ts.minKm)
		}
		s.ByTruck = append(s.ByTruck, *ts)
	}
	sort.Slice(s.ByTruck, func(i, j int) bool {
		a, b := s.ByTruck[i], s.ByTruck[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.TruckPlate < b.TruckPlate
	})

	return s
}
