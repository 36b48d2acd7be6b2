package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet_expenses/internal/expenses"
	"fleet_expenses/internal/models"
	"fleet_expenses/internal/services"
)

// ExpenseService is what the expense handlers need from the service layer.
type ExpenseService interface {
	List(ctx context.Context, q services.ListQuery) ([]models.Expense, error)
	Summary(ctx context.Context, q services.ListQuery) (expenses.Summary, error)
	MonthlySeries(ctx context.Context, fleetCode, truckPlate string) ([]expenses.SeriesPoint, error)
	KnownMonths(ctx context.Context, fleetCode string) ([]string, error)
	Trucks(ctx context.Context, fleetCode string) ([]string, error)
	Create(ctx context.Context, in expenses.ExpenseInput) (models.Expense, error)
	Update(ctx context.Context, id string, in expenses.ExpenseInput) (models.Expense, error)
	Delete(ctx context.Context, id, fleetCode string) error
}

type ExpenseController struct {
	svc ExpenseService
}

func NewExpenseController(svc ExpenseService) *ExpenseController {
	return &ExpenseController{svc: svc}
}

type updateExpenseInput struct {
	ID string `json:"id"`
	expenses.ExpenseInput
}

type deleteExpenseInput struct {
	ID        string `json:"id"`
	FleetCode string `json:"fleetCode"`
}

// ListExpenses serves GET /expenses. By default it returns the fleet's
// records; mode=summary returns the aggregated tables and group=month the
// gap-filled monthly series. The fleet's known months always come along.
func (ec *ExpenseController) ListExpenses(c *gin.Context) {
	group := c.Query("group")
	if group != "" && group != "month" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group must be month", "field": "group"})
		return
	}
	mode := c.DefaultQuery("mode", "list")
	if mode != "list" && mode != "summary" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be list or summary", "field": "mode"})
		return
	}

	fleetCode, ok := resolveFleetCode(c, c.Query("fleetCode"))
	if !ok {
		return
	}
	ctx := c.Request.Context()
	truck := c.Query("truck")

	if group == "month" {
		series, err := ec.svc.MonthlySeries(ctx, fleetCode, truck)
		if err != nil {
			respondError(c, "build monthly series", err)
			return
		}
		months, err := ec.svc.KnownMonths(ctx, fleetCode)
		if err != nil {
			respondError(c, "list months", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": series, "months": months})
		return
	}

	q := services.ListQuery{FleetCode: fleetCode, TruckPlate: truck, Month: c.Query("month")}
	var data interface{}
	var err error
	if mode == "summary" {
		data, err = ec.svc.Summary(ctx, q)
	} else {
		data, err = ec.svc.List(ctx, q)
	}
	if err != nil {
		respondError(c, "list expenses", err)
		return
	}

	months, err := ec.svc.KnownMonths(ctx, fleetCode)
	if err != nil {
		respondError(c, "list months", err)
		return
	}
	trucks, err := ec.svc.Trucks(ctx, fleetCode)
	if err != nil {
		respondError(c, "list trucks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data, "months": months, "trucks": trucks})
}

// CreateExpense serves POST /expenses.
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	var input expenses.ExpenseInput
	if !bindJSON(c, "expense", &input) {
		return
	}

	fleetCode, ok := resolveFleetCode(c, input.FleetCode)
	if !ok {
		return
	}
	input.FleetCode = fleetCode

	expense, err := ec.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, "create expense", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": expense})
}

// UpdateExpense serves PUT /expenses, a full replacement of the record
// identified by id within the fleet.
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	var input updateExpenseInput
	if !bindJSON(c, "expense", &input) {
		return
	}

	fleetCode, ok := resolveFleetCode(c, input.FleetCode)
	if !ok {
		return
	}
	input.FleetCode = fleetCode

	expense, err := ec.svc.Update(c.Request.Context(), input.ID, input.ExpenseInput)
	if err != nil {
		respondError(c, "update expense", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": expense})
}

// DeleteExpense serves DELETE /expenses. The response is the same whether or
// not a record was removed.
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	var input deleteExpenseInput
	if !bindJSON(c, "delete", &input) {
		return
	}

	fleetCode, ok := resolveFleetCode(c, input.FleetCode)
	if !ok {
		return
	}

	if err := ec.svc.Delete(c.Request.Context(), input.ID, fleetCode); err != nil {
		respondError(c, "delete expense", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
