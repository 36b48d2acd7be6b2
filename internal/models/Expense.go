package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Expense is a single fuel or maintenance cost recorded against a truck.
// Every expense belongs to exactly one fleet, identified by FleetCode.
type Expense struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	FleetCode     string              `gorm:"not null;index" json:"fleetCode"`
	Date          Date                `gorm:"type:date;not null" json:"date"`
	TruckPlate    string              `gorm:"not null" json:"truckPlate"`
	Km            decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0" json:"km"`
	Category      Category            `gorm:"type:text;not null" json:"category"`
	Amount        decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	Liters        decimal.NullDecimal `gorm:"type:numeric(12,3)" json:"liters"`
	InvoiceNumber *string             `json:"invoiceNumber"`
	Note          *string             `json:"note"`
	CreatedAt     time.Time           `gorm:"autoCreateTime;<-:create" json:"createdAt"`
}

func (Expense) TableName() string {
	return "expenses"
}

// BeforeCreate assigns a fresh id when the caller did not set one.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsFuel reports whether the expense is a fuel purchase.
func (e Expense) IsFuel() bool {
	return e.Category == CategoryFuel
}
