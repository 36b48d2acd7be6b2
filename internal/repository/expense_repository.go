package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet_expenses/internal/models"
)

// ErrExpenseNotFound is returned by Update when no record matches the id and
// fleet code pair. A record owned by another fleet is reported the same way
// as one that does not exist.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseFilter scopes a listing. FleetCode is mandatory; an empty TruckPlate
// or zero From/To means no constraint.
type ExpenseFilter struct {
	FleetCode  string
	TruckPlate string
	From       time.Time // inclusive
	To         time.Time // exclusive
}

// ExpenseRepository stores expenses in Postgres through GORM.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) scoped(ctx context.Context, f ExpenseFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Expense{}).Where("fleet_code = ?", f.FleetCode)
	if f.TruckPlate != "" {
		q = q.Where("truck_plate = ?", f.TruckPlate)
	}
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From.Format(models.DateLayout))
	}
	if !f.To.IsZero() {
		q = q.Where("date < ?", f.To.Format(models.DateLayout))
	}
	return q
}

// List returns matching expenses, most recent first.
func (r *ExpenseRepository) List(ctx context.Context, f ExpenseFilter) ([]models.Expense, error) {
	expenses := []models.Expense{}
	err := r.scoped(ctx, f).
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error
	return expenses, err
}

// DateBounds returns the earliest and latest expense dates matching the
// filter in a single query. ok is false when nothing matches.
func (r *ExpenseRepository) DateBounds(ctx context.Context, f ExpenseFilter) (first, last time.Time, ok bool, err error) {
	var bounds struct {
		FirstDate sql.NullTime
		LastDate  sql.NullTime
	}
	err = r.scoped(ctx, f).
		Select("MIN(date) AS first_date, MAX(date) AS last_date").
		Scan(&bounds).Error
	if err != nil || !bounds.FirstDate.Valid || !bounds.LastDate.Valid {
		return time.Time{}, time.Time{}, false, err
	}
	return bounds.FirstDate.Time.UTC(), bounds.LastDate.Time.UTC(), true, nil
}

// KnownMonths lists the distinct YYYY-MM months that have expenses for the
// fleet, newest first.
func (r *ExpenseRepository) KnownMonths(ctx context.Context, fleetCode string) ([]string, error) {
	months := []string{}
	err := r.scoped(ctx, ExpenseFilter{FleetCode: fleetCode}).
		Distinct().
		Order("month DESC").
		Pluck("to_char(date, 'YYYY-MM') AS month", &months).Error
	return months, err
}

// Trucks lists the distinct plates recorded for the fleet.
func (r *ExpenseRepository) Trucks(ctx context.Context, fleetCode string) ([]string, error) {
	plates := []string{}
	err := r.scoped(ctx, ExpenseFilter{FleetCode: fleetCode}).
		Distinct().
		Order("truck_plate ASC").
		Pluck("truck_plate", &plates).Error
	return plates, err
}

// Create inserts the expense and fills in its id and creation time.
func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// Update replaces every mutable field of the expense identified by e.ID and
// e.FleetCode, then reloads it. Id, fleet code and creation time never change.
func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	res := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ? AND fleet_code = ?", e.ID, e.FleetCode).
		Select("date", "truck_plate", "km", "category", "amount", "liters", "invoice_number", "note").
		Updates(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return r.db.WithContext(ctx).
		Where("id = ? AND fleet_code = ?", e.ID, e.FleetCode).
		First(e).Error
}

// Delete removes the expense only if it belongs to fleetCode. Whether a row
// was removed is deliberately not reported.
func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID, fleetCode string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND fleet_code = ?", id, fleetCode).
		Delete(&models.Expense{}).Error
}

// Ping checks the database connection.
func (r *ExpenseRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
