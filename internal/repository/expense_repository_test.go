package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet_expenses/internal/config"
	"fleet_expenses/internal/expenses"
	"fleet_expenses/internal/logger"
	"fleet_expenses/internal/models"
	"fleet_expenses/internal/repository"
	"fleet_expenses/internal/storage"
)

// Integration test (requires running Postgres)
func newRepo(t *testing.T) *repository.ExpenseRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	require.NoError(t, storage.RunMigrations(dsn))

	db, err := config.InitDB(&config.Config{DatabaseURL: dsn}, logger.GormLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewExpenseRepository(db)
}

func seed(t *testing.T, repo *repository.ExpenseRepository, fleet, date, plate, amount string) models.Expense {
	t.Helper()
	e, err := expenses.ValidateExpense(expenses.ExpenseInput{
		FleetCode:  fleet,
		Date:       date,
		TruckPlate: plate,
		Category:   "fuel",
		Amount:     expenses.NumberOf(amount),
		Liters:     expenses.NumberOf("10"),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &e))
	return e
}

func TestExpenseRepository_Integration(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	fleet := "it-" + uuid.NewString()
	other := "it-" + uuid.NewString()

	jan := seed(t, repo, fleet, "2024-01-15", "AAA1111", "100")
	seed(t, repo, fleet, "2024-03-10", "AAA1111", "50")
	seed(t, repo, fleet, "2024-03-20", "BBB2222", "25.5")
	foreign := seed(t, repo, other, "2024-02-01", "AAA1111", "999")

	assert.NotEqual(t, uuid.Nil, jan.ID)
	assert.False(t, jan.CreatedAt.IsZero())

	all, err := repo.List(ctx, repository.ExpenseFilter{FleetCode: fleet})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-03-20", all[0].Date.String())
	assert.Equal(t, "2024-01-15", all[2].Date.String())

	march := expenses.MonthOf(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	inMarch, err := repo.List(ctx, repository.ExpenseFilter{FleetCode: fleet, TruckPlate: "AAA1111", From: march.Start, To: march.End})
	require.NoError(t, err)
	require.Len(t, inMarch, 1)
	assert.Equal(t, "50", inMarch[0].Amount.String())

	first, last, ok, err := repo.DateBounds(ctx, repository.ExpenseFilter{FleetCode: fleet})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-01-15", first.Format(models.DateLayout))
	assert.Equal(t, "2024-03-20", last.Format(models.DateLayout))

	_, _, ok, err = repo.DateBounds(ctx, repository.ExpenseFilter{FleetCode: "it-empty-" + uuid.NewString()})
	require.NoError(t, err)
	assert.False(t, ok)

	months, err := repo.KnownMonths(ctx, fleet)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03", "2024-01"}, months)

	trucks, err := repo.Trucks(ctx, fleet)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA1111", "BBB2222"}, trucks)

	// Full update, including clearing liters by switching category.
	jan.Category = models.CategoryMaintenance
	jan.Liters = decimal.NullDecimal{}
	jan.Amount = decimal.RequireFromString("120")
	require.NoError(t, repo.Update(ctx, &jan))
	assert.Equal(t, "120", jan.Amount.String())
	assert.False(t, jan.Liters.Valid)

	// Cross-tenant update is indistinguishable from a missing id.
	hijack := foreign
	hijack.FleetCode = fleet
	assert.True(t, errors.Is(repo.Update(ctx, &hijack), repository.ErrExpenseNotFound))
	missing := jan
	missing.ID = uuid.New()
	assert.True(t, errors.Is(repo.Update(ctx, &missing), repository.ErrExpenseNotFound))

	// Cross-tenant delete leaves the row in place.
	require.NoError(t, repo.Delete(ctx, foreign.ID, fleet))
	still, err := repo.List(ctx, repository.ExpenseFilter{FleetCode: other})
	require.NoError(t, err)
	assert.Len(t, still, 1)

	require.NoError(t, repo.Delete(ctx, foreign.ID, other))
	gone, err := repo.List(ctx, repository.ExpenseFilter{FleetCode: other})
	require.NoError(t, err)
	assert.Empty(t, gone)

	for _, e := range all {
		require.NoError(t, repo.Delete(ctx, e.ID, fleet))
	}
	assert.NoError(t, repo.Ping(ctx))
}
