package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fleet_expenses/internal/expenses"
	"fleet_expenses/internal/middleware"
	"fleet_expenses/internal/models"
	"fleet_expenses/internal/repository"
	"fleet_expenses/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockExpenseService is a mock implementation of ExpenseService
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) List(ctx context.Context, q services.ListQuery) ([]models.Expense, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Expense), args.Error(1)
}

func (m *MockExpenseService) Summary(ctx context.Context, q services.ListQuery) (expenses.Summary, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(expenses.Summary), args.Error(1)
}

func (m *MockExpenseService) MonthlySeries(ctx context.Context, fleetCode, truckPlate string) ([]expenses.SeriesPoint, error) {
	args := m.Called(ctx, fleetCode, truckPlate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expenses.SeriesPoint), args.Error(1)
}

func (m *MockExpenseService) KnownMonths(ctx context.Context, fleetCode string) ([]string, error) {
	args := m.Called(ctx, fleetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExpenseService) Trucks(ctx context.Context, fleetCode string) ([]string, error) {
	args := m.Called(ctx, fleetCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExpenseService) Create(ctx context.Context, in expenses.ExpenseInput) (models.Expense, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Expense), args.Error(1)
}

func (m *MockExpenseService) Update(ctx context.Context, id string, in expenses.ExpenseInput) (models.Expense, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(models.Expense), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, id, fleetCode string) error {
	args := m.Called(ctx, id, fleetCode)
	return args.Error(0)
}

var testSessions = middleware.NewSessions("0123456789abcdef", time.Hour)

func newRouter(svc ExpenseService) *gin.Engine {
	r := gin.New()
	ec := NewExpenseController(svc)
	g := r.Group("/expenses", middleware.LimitBody(middleware.MaxBodyBytes), testSessions.FleetScope())
	g.GET("", ec.ListExpenses)
	g.POST("", ec.CreateExpense)
	g.PUT("", ec.UpdateExpense)
	g.DELETE("", ec.DeleteExpense)
	return r
}

func do(r http.Handler, method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestListExpenses_Default(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	rec := models.Expense{
		ID:         uuid.New(),
		FleetCode:  "ACME",
		Date:       models.NewDate(2024, time.January, 15),
		TruckPlate: "ABC1D23",
		Category:   models.CategoryFuel,
		Amount:     decimal.RequireFromString("100"),
	}
	q := services.ListQuery{FleetCode: "ACME", TruckPlate: "abc1d23", Month: "2024-01"}
	svc.On("List", mock.Anything, q).Return([]models.Expense{rec}, nil)
	svc.On("KnownMonths", mock.Anything, "ACME").Return([]string{"2024-01"}, nil)
	svc.On("Trucks", mock.Anything, "ACME").Return([]string{"ABC1D23"}, nil)

	w := do(r, http.MethodGet, "/expenses?fleetCode=ACME&truck=abc1d23&month=2024-01", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	data := out["data"].([]interface{})
	require.Len(t, data, 1)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "2024-01-15", first["date"])
	assert.Equal(t, 100.0, first["amount"])
	assert.Equal(t, []interface{}{"2024-01"}, out["months"])
	assert.Equal(t, []interface{}{"ABC1D23"}, out["trucks"])
	svc.AssertExpectations(t)
}

func TestListExpenses_GroupByMonth(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	series := []expenses.SeriesPoint{
		{Month: "2024-01", Total: decimal.RequireFromString("100")},
		{Month: "2024-02", Total: decimal.Zero},
		{Month: "2024-03", Total: decimal.RequireFromString("50")},
	}
	svc.On("MonthlySeries", mock.Anything, "ACME", "ABC1D23").Return(series, nil)
	svc.On("KnownMonths", mock.Anything, "ACME").Return([]string{"2024-03", "2024-01"}, nil)

	w := do(r, http.MethodGet, "/expenses?fleetCode=ACME&truck=ABC1D23&group=month&month=2023-01", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"data": [
			{"month": "2024-01", "total": 100},
			{"month": "2024-02", "total": 0},
			{"month": "2024-03", "total": 50}
		],
		"months": ["2024-03", "2024-01"]
	}`, w.Body.String())
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListExpenses_Summary(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	q := services.ListQuery{FleetCode: "ACME"}
	svc.On("Summary", mock.Anything, q).Return(expenses.Summarize(nil), nil)
	svc.On("KnownMonths", mock.Anything, "ACME").Return([]string{}, nil)
	svc.On("Trucks", mock.Anything, "ACME").Return([]string{}, nil)

	w := do(r, http.MethodGet, "/expenses?fleetCode=ACME&mode=summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 0.0, data["count"])
	assert.Nil(t, data["avgPricePerLiter"])
}

func TestListExpenses_BadParams(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	w := do(r, http.MethodGet, "/expenses?fleetCode=ACME&mode=chart", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "mode", decode(t, w)["field"])

	w = do(r, http.MethodGet, "/expenses?fleetCode=ACME&group=year", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "group", decode(t, w)["field"])

	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListExpenses_ValidationAndStorageErrors(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	svc.On("List", mock.Anything, services.ListQuery{FleetCode: ""}).Return(nil, expenses.ErrMissingFleetCode)
	w := do(r, http.MethodGet, "/expenses", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fleetCode", decode(t, w)["field"])

	svc.On("List", mock.Anything, services.ListQuery{FleetCode: "BROKEN"}).Return(nil, errors.New("list expenses: connection reset"))
	w = do(r, http.MethodGet, "/expenses?fleetCode=BROKEN", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to list expenses: list expenses: connection reset", decode(t, w)["error"])
}

func TestListExpenses_SessionScope(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)
	token, _, err := testSessions.GenerateToken("ACME")
	require.NoError(t, err)

	svc.On("List", mock.Anything, services.ListQuery{FleetCode: "ACME"}).Return([]models.Expense{}, nil)
	svc.On("KnownMonths", mock.Anything, "ACME").Return([]string{}, nil)
	svc.On("Trucks", mock.Anything, "ACME").Return([]string{}, nil)

	w := do(r, http.MethodGet, "/expenses", nil, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/expenses?fleetCode=OTHER", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/expenses?fleetCode=ACME", nil, "tampered")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateExpense(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	want := expenses.ExpenseInput{
		FleetCode:  "ACME",
		Date:       "2024-01-15",
		TruckPlate: "ABC1D23",
		Category:   "maintenance",
		Amount:     expenses.NumberOf("10,5"),
		Liters:     expenses.NumberOf("12"),
	}
	stored := models.Expense{
		ID:         uuid.New(),
		FleetCode:  "ACME",
		Date:       models.NewDate(2024, time.January, 15),
		TruckPlate: "ABC1D23",
		Category:   models.CategoryMaintenance,
		Amount:     decimal.RequireFromString("10.5"),
	}
	svc.On("Create", mock.Anything, want).Return(stored, nil)

	body := `{"fleetCode":"ACME","date":"2024-01-15","truckPlate":"ABC1D23","category":"maintenance","amount":"10,5","liters":12}`
	w := do(r, http.MethodPost, "/expenses", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, stored.ID.String(), data["id"])
	assert.Equal(t, 10.5, data["amount"])
	assert.Nil(t, data["liters"])
}

func TestCreateExpense_Rejected(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/expenses", `{"fleetCode":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Create", mock.Anything, mock.Anything).
		Return(models.Expense{}, &expenses.ValidationError{Field: "amount", Message: "amount must be greater than zero"})
	w = do(r, http.MethodPost, "/expenses", `{"fleetCode":"ACME","amount":0}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, "amount", out["field"])
	assert.Equal(t, "amount must be greater than zero", out["error"])
}

func TestCreateExpense_UsesSessionFleet(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)
	token, _, err := testSessions.GenerateToken("ACME")
	require.NoError(t, err)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in expenses.ExpenseInput) bool {
		return in.FleetCode == "ACME"
	})).Return(models.Expense{FleetCode: "ACME"}, nil)

	w := do(r, http.MethodPost, "/expenses", `{"date":"2024-01-15","truckPlate":"X","category":"fuel","amount":1}`, token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestUpdateExpense(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)
	id := uuid.NewString()

	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(in expenses.ExpenseInput) bool {
		return in.FleetCode == "ACME" && in.Amount.String() == "99.9"
	})).Return(models.Expense{FleetCode: "ACME"}, nil)

	body := `{"id":"` + id + `","fleetCode":"ACME","date":"2024-01-15","truckPlate":"ABC1D23","category":"fuel","amount":99.9}`
	w := do(r, http.MethodPut, "/expenses", body, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	svc.AssertExpectations(t)
}

func TestUpdateExpense_NotFound(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	svc.On("Update", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Expense{}, errors.Join(errors.New("update expense"), repository.ErrExpenseNotFound))

	w := do(r, http.MethodPut, "/expenses", `{"id":"`+uuid.NewString()+`","fleetCode":"OTHER"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Expense not found", decode(t, w)["error"])
}

func TestDeleteExpense(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)
	id := uuid.NewString()

	svc.On("Delete", mock.Anything, id, "ACME").Return(nil)
	svc.On("Delete", mock.Anything, id, "OTHER").Return(nil)

	own := do(r, http.MethodDelete, "/expenses", map[string]string{"id": id, "fleetCode": "ACME"}, "")
	foreign := do(r, http.MethodDelete, "/expenses", map[string]string{"id": id, "fleetCode": "OTHER"}, "")

	assert.Equal(t, http.StatusOK, own.Code)
	assert.Equal(t, own.Code, foreign.Code)
	assert.Equal(t, own.Body.String(), foreign.Body.String())
	assert.JSONEq(t, `{"ok": true}`, own.Body.String())
}

func TestCreateExpense_BodyTooLarge(t *testing.T) {
	svc := new(MockExpenseService)
	r := newRouter(svc)

	note := string(bytes.Repeat([]byte("x"), middleware.MaxBodyBytes))
	body := `{"fleetCode":"ACME","date":"2024-01-15","truckPlate":"ABC1D23","category":"fuel","amount":1,"note":"` + note + `"}`
	w := do(r, http.MethodPost, "/expenses", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decode(t, w)["error"])

	w = do(r, http.MethodPut, "/expenses", body, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
