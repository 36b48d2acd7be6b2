package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"fleet_expenses/internal/expenses"
	"fleet_expenses/internal/models"
	"fleet_expenses/internal/repository"
)

// ExpenseStore is the persistence the service needs. It is implemented by
// repository.ExpenseRepository.
type ExpenseStore interface {
	List(ctx context.Context, f repository.ExpenseFilter) ([]models.Expense, error)
	DateBounds(ctx context.Context, f repository.ExpenseFilter) (first, last time.Time, ok bool, err error)
	KnownMonths(ctx context.Context, fleetCode string) ([]string, error)
	Trucks(ctx context.Context, fleetCode string) ([]string, error)
	Create(ctx context.Context, e *models.Expense) error
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID, fleetCode string) error
}

// ListQuery is the raw listing request: fleet code, optional truck plate and
// optional YYYY-MM month.
type ListQuery struct {
	FleetCode  string
	TruckPlate string
	Month      string
}

// ExpenseService validates requests and runs them against the store.
// Validation always completes before the store is called.
type ExpenseService struct {
	store ExpenseStore
}

func NewExpenseService(store ExpenseStore) *ExpenseService {
	return &ExpenseService{store: store}
}

func (s *ExpenseService) filter(q ListQuery) (repository.ExpenseFilter, error) {
	fleetCode, err := expenses.NormalizeFleetCode(q.FleetCode)
	if err != nil {
		return repository.ExpenseFilter{}, err
	}
	f := repository.ExpenseFilter{
		FleetCode:  fleetCode,
		TruckPlate: expenses.NormalizePlate(q.TruckPlate),
	}
	if q.Month != "" {
		month, err := expenses.ParseMonth(q.Month)
		if err != nil {
			return repository.ExpenseFilter{}, err
		}
		f.From, f.To = month.Start, month.End
	}
	return f, nil
}

// List returns the fleet's expenses matching the query, most recent first.
func (s *ExpenseService) List(ctx context.Context, q ListQuery) ([]models.Expense, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	records, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return records, nil
}

// Summary aggregates the expenses matching the query.
func (s *ExpenseService) Summary(ctx context.Context, q ListQuery) (expenses.Summary, error) {
	records, err := s.List(ctx, q)
	if err != nil {
		return expenses.Summary{}, err
	}
	return expenses.Summarize(records), nil
}

// MonthlySeries returns one total per month from the fleet's first to its
// last recorded month, optionally for a single truck. The span comes from a
// single min/max query; the records inside it are then fetched and reduced.
func (s *ExpenseService) MonthlySeries(ctx context.Context, fleetCode, truckPlate string) ([]expenses.SeriesPoint, error) {
	f, err := s.filter(ListQuery{FleetCode: fleetCode, TruckPlate: truckPlate})
	if err != nil {
		return nil, err
	}

	first, last, ok, err := s.store.DateBounds(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read expense date range: %w", err)
	}
	if !ok {
		return []expenses.SeriesPoint{}, nil
	}

	f.From = expenses.MonthOf(first).Start
	f.To = expenses.MonthOf(last).End
	records, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list expenses for series: %w", err)
	}

	series := expenses.BuildMonthlySeries(first, last, records)
	logrus.WithFields(logrus.Fields{
		"fleet_code": f.FleetCode,
		"truck":      f.TruckPlate,
		"months":     len(series),
		"records":    len(records),
	}).Debug("monthly series built")
	return series, nil
}

// KnownMonths lists the months with at least one expense, newest first.
func (s *ExpenseService) KnownMonths(ctx context.Context, fleetCode string) ([]string, error) {
	code, err := expenses.NormalizeFleetCode(fleetCode)
	if err != nil {
		return nil, err
	}
	months, err := s.store.KnownMonths(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("list known months: %w", err)
	}
	return months, nil
}

// Trucks lists the plates that have expenses in the fleet.
func (s *ExpenseService) Trucks(ctx context.Context, fleetCode string) ([]string, error) {
	code, err := expenses.NormalizeFleetCode(fleetCode)
	if err != nil {
		return nil, err
	}
	plates, err := s.store.Trucks(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("list trucks: %w", err)
	}
	return plates, nil
}

// Create validates and stores a new expense.
func (s *ExpenseService) Create(ctx context.Context, in expenses.ExpenseInput) (models.Expense, error) {
	e, err := expenses.ValidateExpense(in)
	if err != nil {
		return models.Expense{}, err
	}
	if err := s.store.Create(ctx, &e); err != nil {
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"fleet_code": e.FleetCode,
		"expense_id": e.ID,
		"category":   e.Category,
	}).Info("expense created")
	return e, nil
}

// Update replaces the expense identified by id within the input's fleet.
// repository.ErrExpenseNotFound is returned, wrapped, when the pair does
// not match a stored record.
func (s *ExpenseService) Update(ctx context.Context, id string, in expenses.ExpenseInput) (models.Expense, error) {
	expenseID, err := expenses.ParseID(id)
	if err != nil {
		return models.Expense{}, err
	}
	e, err := expenses.ValidateExpense(in)
	if err != nil {
		return models.Expense{}, err
	}
	e.ID = expenseID
	if err := s.store.Update(ctx, &e); err != nil {
		return models.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"fleet_code": e.FleetCode,
		"expense_id": e.ID,
	}).Info("expense updated")
	return e, nil
}

// Delete removes the expense if it belongs to the fleet. Deleting another
// fleet's record or an unknown id succeeds without effect.
func (s *ExpenseService) Delete(ctx context.Context, id, fleetCode string) error {
	code, err := expenses.NormalizeFleetCode(fleetCode)
	if err != nil {
		return err
	}
	expenseID, err := expenses.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, expenseID, code); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"fleet_code": code,
		"expense_id": expenseID,
	}).Info("expense delete requested")
	return nil
}
