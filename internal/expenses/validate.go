package expenses

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleet_expenses/internal/models"
)

// Storage precision: amount and km are numeric(12,2), liters numeric(12,3).
const (
	moneyPlaces  = 2
	litersPlaces = 3
)

var (
	maxMoney  = decimal.New(1, 12-moneyPlaces)
	maxLiters = decimal.New(1, 12-litersPlaces)
)

// fits reports whether d has at most places decimal digits and stays below
// limit in magnitude.
func fits(d decimal.Decimal, places int32, limit decimal.Decimal) bool {
	return d.Equal(d.Truncate(places)) && d.Abs().LessThan(limit)
}

// ExpenseInput is the client representation of an expense, used by both
// create and update.
type ExpenseInput struct {
	FleetCode     string  `json:"fleetCode"`
	Date          string  `json:"date"`
	TruckPlate    string  `json:"truckPlate"`
	Km            Number  `json:"km"`
	Category      string  `json:"category"`
	Amount        Number  `json:"amount"`
	Liters        Number  `json:"liters"`
	InvoiceNumber *string `json:"invoiceNumber"`
	Note          *string `json:"note"`
}

// NormalizeFleetCode trims the code and rejects an empty one.
func NormalizeFleetCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrMissingFleetCode
	}
	return code, nil
}

// NormalizePlate trims and upper-cases a truck plate so that "abc1d23" and
// "ABC1D23 " name the same truck.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ParseID validates a record id.
func ParseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, invalid("id", "id must be a valid UUID")
	}
	return parsed, nil
}

// ValidateExpense checks an input and returns the normalised record it
// describes. The returned record has no id or creation time.
func ValidateExpense(in ExpenseInput) (models.Expense, error) {
	fleetCode, err := NormalizeFleetCode(in.FleetCode)
	if err != nil {
		return models.Expense{}, err
	}

	rawDate := strings.TrimSpace(in.Date)
	if rawDate == "" {
		return models.Expense{}, invalid("date", "date is required")
	}
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return models.Expense{}, invalid("date", "date must be a valid YYYY-MM-DD calendar date")
	}

	plate := NormalizePlate(in.TruckPlate)
	if plate == "" {
		return models.Expense{}, invalid("truckPlate", "truck plate is required")
	}

	category, ok := models.ParseCategory(in.Category)
	if !ok {
		return models.Expense{}, invalid("category", "category must be fuel or maintenance")
	}

	if !in.Amount.Present() {
		return models.Expense{}, invalid("amount", "amount is required")
	}
	amount, err := in.Amount.Decimal()
	if err != nil {
		return models.Expense{}, invalid("amount", "amount must be a number")
	}
	if !amount.IsPositive() {
		return models.Expense{}, invalid("amount", "amount must be greater than zero")
	}
	if !fits(amount, moneyPlaces, maxMoney) {
		return models.Expense{}, invalid("amount", "amount must be below 10000000000 with at most 2 decimal places")
	}

	km := decimal.Zero
	if in.Km.Present() {
		km, err = in.Km.Decimal()
		if err != nil {
			return models.Expense{}, invalid("km", "km must be a number")
		}
		if km.IsNegative() {
			return models.Expense{}, invalid("km", "km must not be negative")
		}
		if !fits(km, moneyPlaces, maxMoney) {
			return models.Expense{}, invalid("km", "km must be below 10000000000 with at most 2 decimal places")
		}
	}

	// Liters only mean something for fuel; for any other category the value
	// is dropped without being looked at.
	var liters decimal.NullDecimal
	if category == models.CategoryFuel && in.Liters.Present() {
		l, err := in.Liters.Decimal()
		if err != nil {
			return models.Expense{}, invalid("liters", "liters must be a number")
		}
		if !l.IsPositive() {
			return models.Expense{}, invalid("liters", "liters must be greater than zero")
		}
		if !fits(l, litersPlaces, maxLiters) {
			return models.Expense{}, invalid("liters", "liters must be below 1000000000 with at most 3 decimal places")
		}
		liters = decimal.NewNullDecimal(l)
	}

	return models.Expense{
		FleetCode:     fleetCode,
		Date:          date,
		TruckPlate:    plate,
		Km:            km,
		Category:      category,
		Amount:        amount,
		Liters:        liters,
		InvoiceNumber: optionalText(in.InvoiceNumber),
		Note:          optionalText(in.Note),
	}, nil
}

func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
