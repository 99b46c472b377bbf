package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/clinica/clinica-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExpense_Success(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	handler := NewExpenseHandler(f.expenseService)

	c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/expenses", ExpenseRequest{
		Description: "Aluguel",
		Amount:      "2500.5",
		Category:    "rent",
		Date:        "2030-03-05",
	})
	require.NoError(t, handler.CreateExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2500.50", resp.Amount)
	assert.Equal(t, "2030-03-05", resp.Date)
	assert.False(t, resp.HasReceipt)

	c, rec = newJSONRequest(e, http.MethodGet, "/api/v1/expenses/2030/3", nil)
	c.SetParamNames("year", "month")
	c.SetParamValues("2030", "3")
	require.NoError(t, handler.GetExpenses(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Aluguel", list[0].Description)
}

func TestCreateExpense_InvalidBody(t *testing.T) {
	e := echo.New()
	handler := NewExpenseHandler(newFixture(10).expenseService)

	c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/expenses", ExpenseRequest{
		Description: "Luvas",
		Amount:      "doze",
		Date:        "05/03/2030",
	})
	require.NoError(t, handler.CreateExpense(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	problem := decodeProblem(rec)
	fields := make([]string, 0, len(problem.Errors))
	for _, v := range problem.Errors {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"amount", "date"}, fields)
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	e := echo.New()
	handler := NewExpenseHandler(newFixture(10).expenseService)

	c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/expenses", ExpenseRequest{
		Description: "Viagem",
		Amount:      "10",
		Category:    "travel",
		Date:        "2030-03-05",
	})
	require.NoError(t, handler.CreateExpense(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaterializeRecurring(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	day := 31
	f.expenses.AddExpense(&domain.Expense{
		ID:           1,
		ClinicID:     testClinicID,
		Description:  "Aluguel",
		Amount:       decimal.NewFromInt(2000),
		Category:     domain.ExpenseCategoryRent,
		ExpenseDate:  time.Date(2030, 1, 31, 0, 0, 0, 0, time.UTC),
		RecurringDay: &day,
	})
	handler := NewExpenseHandler(f.expenseService)

	c, rec := newJSONRequest(e, http.MethodPost, "/api/v1/expenses/2030/2/materialize", nil)
	c.SetParamNames("year", "month")
	c.SetParamValues("2030", "2")
	require.NoError(t, handler.MaterializeRecurring(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var created []ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created, 1)
	assert.Equal(t, "2030-02-28", created[0].Date)
	require.NotNil(t, created[0].TemplateID)
	assert.Equal(t, int32(1), *created[0].TemplateID)

	// a second run copies nothing
	c, rec = newJSONRequest(e, http.MethodPost, "/api/v1/expenses/2030/2/materialize", nil)
	c.SetParamNames("year", "month")
	c.SetParamValues("2030", "2")
	require.NoError(t, handler.MaterializeRecurring(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Empty(t, created)
}

func TestTogglePaidAndDelete(t *testing.T) {
	e := echo.New()
	f := newFixture(10)
	f.expenses.AddExpense(&domain.Expense{
		ID:          5,
		ClinicID:    testClinicID,
		Description: "Luz",
		Amount:      decimal.NewFromInt(300),
		Category:    domain.ExpenseCategoryUtility,
		ExpenseDate: time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	handler := NewExpenseHandler(f.expenseService)

	c, rec := newJSONRequest(e, http.MethodPatch, "/api/v1/expenses/5/toggle-paid", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, handler.TogglePaid(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsPaid)

	c, rec = newJSONRequest(e, http.MethodDelete, "/api/v1/expenses/5", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, handler.DeleteExpense(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newJSONRequest(e, http.MethodDelete, "/api/v1/expenses/5", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, handler.DeleteExpense(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
