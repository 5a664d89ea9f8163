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

type insightsFixture struct {
	handler     *InsightsHandler
	incomeRepo  *testutil.MockIncomeRepository
	expenseRepo *testutil.MockExpenseRepository
	budgetRepo  *testutil.MockBudgetRepository
}

func newInsightsHandler() *insightsFixture {
	incomeRepo := testutil.NewMockIncomeRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	insightsService := service.NewInsightsService(incomeRepo, expenseRepo, budgetRepo, service.NewBudgetOptimizerService())
	return &insightsFixture{
		handler:     NewInsightsHandler(insightsService),
		incomeRepo:  incomeRepo,
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
	}
}

// lastWeekday walks back from now to the most recent day matching want.
func lastWeekday(now time.Time, want func(time.Weekday) bool) time.Time {
	day := now.AddDate(0, 0, -1)
	for !want(day.Weekday()) {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

func TestGetSpendingPatterns_Empty(t *testing.T) {
	e := echo.New()
	f := newInsightsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/patterns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := f.handler.GetSpendingPatterns(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response SpendingPatternsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.WeekendTotal != "0.00" || response.WeekdayTotal != "0.00" {
		t.Errorf("Expected zero totals, got %s/%s", response.WeekendTotal, response.WeekdayTotal)
	}
	if len(response.Insights) != 0 {
		t.Errorf("Expected no insights, got %d", len(response.Insights))
	}
}

func TestGetSpendingPatterns_WeekendHabit(t *testing.T) {
	e := echo.New()
	f := newInsightsHandler()
	userID := uuid.New()

	now := time.Now()
	weekend := lastWeekday(now, func(d time.Weekday) bool { return d == time.Saturday || d == time.Sunday })
	weekday := lastWeekday(now, func(d time.Weekday) bool { return d != time.Saturday && d != time.Sunday })

	seeds := []struct {
		amount int64
		date   time.Time
	}{
		{1000, weekend},
		{100, weekday},
	}
	for _, seed := range seeds {
		if _, err := f.expenseRepo.Create(&domain.Expense{
			UserID:   userID,
			Title:    "Dining",
			Amount:   decimal.NewFromInt(seed.amount),
			Category: domain.ExpenseCategoryFood,
			Date:     seed.date,
		}); err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/patterns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := f.handler.GetSpendingPatterns(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response SpendingPatternsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.WeekendTotal != "1000.00" {
		t.Errorf("Expected weekend total 1000.00, got %s", response.WeekendTotal)
	}
	if response.WeekdayTotal != "100.00" {
		t.Errorf("Expected weekday total 100.00, got %s", response.WeekdayTotal)
	}

	found := false
	for _, insight := range response.Insights {
		if insight.Type == "weekend_weekday" && insight.Category == "Food" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a weekend_weekday insight for Food, got %+v", response.Insights)
	}
}

func TestGetAdvice_HealthyMonth(t *testing.T) {
	e := echo.New()
	f := newInsightsHandler()
	userID := uuid.New()

	if _, err := f.incomeRepo.Create(&domain.Income{
		UserID:   userID,
		Title:    "Salary",
		Amount:   decimal.NewFromInt(50000),
		Category: domain.IncomeCategorySalary,
		Date:     time.Now(),
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := f.expenseRepo.Create(&domain.Expense{
		UserID:   userID,
		Title:    "Rent",
		Amount:   decimal.NewFromInt(10000),
		Category: domain.ExpenseCategoryRent,
		Date:     time.Now(),
	}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/advice", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := f.handler.GetAdvice(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response FinancialAdviceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.SavingsRate != "80.00" {
		t.Errorf("Expected savings rate 80.00, got %s", response.SavingsRate)
	}
	if response.HealthScore != 90 {
		t.Errorf("Expected health score 90, got %d", response.HealthScore)
	}
	if response.EmergencyTarget != "60000.00" {
		t.Errorf("Expected emergency target 60000.00, got %s", response.EmergencyTarget)
	}
	if len(response.Advice) == 0 || response.Advice[0].Type != "success" {
		t.Errorf("Expected a success advice entry first, got %+v", response.Advice)
	}
}

func TestGetMonthlyReport(t *testing.T) {
	e := echo.New()
	f := newInsightsHandler()
	userID := uuid.New()

	date, _ := time.Parse("2006-01-02", "2026-07-10")
	if _, err := f.incomeRepo.Create(&domain.Income{
		UserID:   userID,
		Title:    "Salary",
		Amount:   decimal.NewFromInt(50000),
		Category: domain.IncomeCategorySalary,
		Date:     date,
	}); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	for _, seed := range []struct {
		title    string
		amount   int64
		category domain.ExpenseCategory
	}{
		{"Rent", 20000, domain.ExpenseCategoryRent},
		{"Groceries", 5000, domain.ExpenseCategoryFood},
	} {
		if _, err := f.expenseRepo.Create(&domain.Expense{
			UserID:   userID,
			Title:    seed.title,
			Amount:   decimal.NewFromInt(seed.amount),
			Category: seed.category,
			Date:     date,
		}); err != nil {
			t.Fatalf("seed expense: %v", err)
		}
	}
	if _, err := f.budgetRepo.Upsert(&domain.Budget{
		UserID:   userID,
		Category: domain.ExpenseCategoryFood,
		Amount:   decimal.NewFromInt(4000),
		Month:    "2026-07",
	}); err != nil {
		t.Fatalf("seed budget: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/report/2026-07", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("month")
	c.SetParamValues("2026-07")
	setupUserContext(c, userID)

	if err := f.handler.GetMonthlyReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response MonthlyReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Month != "2026-07" {
		t.Errorf("Expected month 2026-07, got %s", response.Month)
	}
	if response.TotalIncome != "50000.00" || response.TotalExpenses != "25000.00" {
		t.Errorf("Unexpected totals: %s/%s", response.TotalIncome, response.TotalExpenses)
	}
	if response.SavingsRate != "50.00" {
		t.Errorf("Expected savings rate 50.00, got %s", response.SavingsRate)
	}
	if len(response.TopSpending) == 0 || response.TopSpending[0].Category != "Rent" {
		t.Errorf("Expected Rent as top spending, got %+v", response.TopSpending)
	}
	if response.ExpenseByCategory["Food"] != "5000.00" {
		t.Errorf("Expected Food 5000.00, got %s", response.ExpenseByCategory["Food"])
	}
	if len(response.BudgetPerformance) != 1 || response.BudgetPerformance[0].Status != "exceeded" {
		t.Errorf("Expected the Food budget to be exceeded, got %+v", response.BudgetPerformance)
	}
	if response.IncomeCount != 1 || response.ExpenseCount != 2 {
		t.Errorf("Expected counts 1/2, got %d/%d", response.IncomeCount, response.ExpenseCount)
	}
}

func TestGetMonthlyReport_InvalidMonth(t *testing.T) {
	e := echo.New()
	f := newInsightsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/report/July", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("month")
	c.SetParamValues("July")
	setupUserContext(c, uuid.New())

	if err := f.handler.GetMonthlyReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
