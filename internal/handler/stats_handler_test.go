package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/service"
	"github.com/trubalance/trubalance-backend/internal/testutil"
)

func newStatsHandler() (*StatsHandler, *testutil.MockIncomeRepository, *testutil.MockExpenseRepository) {
	incomeRepo := testutil.NewMockIncomeRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	statsService := service.NewStatsService(incomeRepo, expenseRepo)
	return NewStatsHandler(statsService), incomeRepo, expenseRepo
}

func TestGetOverview(t *testing.T) {
	e := echo.New()
	h, incomeRepo, expenseRepo := newStatsHandler()
	userID := uuid.New()

	if _, err := incomeRepo.Create(&domain.Income{
		UserID:   userID,
		Title:    "Salary",
		Amount:   decimal.NewFromInt(50000),
		Category: domain.IncomeCategorySalary,
		Date:     time.Now(),
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := expenseRepo.Create(&domain.Expense{
		UserID:   userID,
		Title:    "Rent",
		Amount:   decimal.NewFromInt(20000),
		Category: domain.ExpenseCategoryRent,
		Date:     time.Now(),
	}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/overview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.GetOverview(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response OverviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalIncome != "50000.00" {
		t.Errorf("Expected total income 50000.00, got %s", response.TotalIncome)
	}
	if response.TotalExpenses != "20000.00" {
		t.Errorf("Expected total expenses 20000.00, got %s", response.TotalExpenses)
	}
	if response.Balance != "30000.00" {
		t.Errorf("Expected balance 30000.00, got %s", response.Balance)
	}
	if response.SavingsRate != "60.00" {
		t.Errorf("Expected savings rate 60.00, got %s", response.SavingsRate)
	}
	if response.IncomeCount != 1 || response.ExpenseCount != 1 {
		t.Errorf("Expected 1 income and 1 expense, got %d/%d", response.IncomeCount, response.ExpenseCount)
	}
}

func TestGetOverview_Empty(t *testing.T) {
	e := echo.New()
	h, _, _ := newStatsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/overview", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := h.GetOverview(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response OverviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	// Zero income must not blow up the savings rate division
	if response.SavingsRate != "0.00" {
		t.Errorf("Expected savings rate 0.00 with no income, got %s", response.SavingsRate)
	}
}

func TestGetExpensesByCategory(t *testing.T) {
	e := echo.New()
	h, _, expenseRepo := newStatsHandler()
	userID := uuid.New()

	seeds := []struct {
		title    string
		amount   int64
		category domain.ExpenseCategory
	}{
		{"Groceries", 4000, domain.ExpenseCategoryFood},
		{"Dinner out", 1500, domain.ExpenseCategoryFood},
		{"Metro card", 800, domain.ExpenseCategoryTransport},
	}
	for _, seed := range seeds {
		if _, err := expenseRepo.Create(&domain.Expense{
			UserID:   userID,
			Title:    seed.title,
			Amount:   decimal.NewFromInt(seed.amount),
			Category: seed.category,
			Date:     time.Now(),
		}); err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/expenses-by-category", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.GetExpensesByCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []CategorySummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(response))
	}
	// Sorted by total, heaviest first
	if response[0].Category != "Food" || response[0].Total != "5500.00" || response[0].Count != 2 {
		t.Errorf("Unexpected top category: %+v", response[0])
	}
	if response[1].Category != "Transport" || response[1].Total != "800.00" {
		t.Errorf("Unexpected second category: %+v", response[1])
	}
}

func TestGetMonthlyTrends(t *testing.T) {
	e := echo.New()
	h, incomeRepo, expenseRepo := newStatsHandler()
	userID := uuid.New()

	lastMonth := time.Now().AddDate(0, -1, 0)
	if _, err := incomeRepo.Create(&domain.Income{
		UserID:   userID,
		Title:    "Salary",
		Amount:   decimal.NewFromInt(40000),
		Category: domain.IncomeCategorySalary,
		Date:     lastMonth,
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := expenseRepo.Create(&domain.Expense{
		UserID:   userID,
		Title:    "Rent",
		Amount:   decimal.NewFromInt(15000),
		Category: domain.ExpenseCategoryRent,
		Date:     lastMonth,
	}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/trends", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.GetMonthlyTrends(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []MonthlyTrendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) == 0 {
		t.Fatal("Expected at least one trend row")
	}

	found := false
	for _, trend := range response {
		if trend.Year == lastMonth.Year() && trend.Month == int(lastMonth.Month()) {
			found = true
			if trend.Income != "40000.00" {
				t.Errorf("Expected income 40000.00, got %s", trend.Income)
			}
			if trend.Expenses != "15000.00" {
				t.Errorf("Expected expenses 15000.00, got %s", trend.Expenses)
			}
			if trend.Net != "25000.00" {
				t.Errorf("Expected net 25000.00, got %s", trend.Net)
			}
		}
	}
	if !found {
		t.Errorf("Expected a row for %d-%d", lastMonth.Year(), int(lastMonth.Month()))
	}
}
