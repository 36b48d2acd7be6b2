package models

import "strings"

// Category classifies an expense.
type Category string

const (
	CategoryFuel        Category = "fuel"
	CategoryMaintenance Category = "maintenance"
)

// Categories lists every accepted category in display order.
func Categories() []Category {
	return []Category{CategoryFuel, CategoryMaintenance}
}

// ParseCategory normalises case and whitespace and reports whether the
// result is a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryFuel, CategoryMaintenance:
		return c, true
	default:
		return "", false
	}
}
