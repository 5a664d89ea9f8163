package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// InsightsHandler handles spending insight HTTP requests
type InsightsHandler struct {
	insightsService *service.InsightsService
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(insightsService *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// InsightResponse represents one spending observation
type InsightResponse struct {
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// SpendingPatternsResponse represents the pattern analysis result
type SpendingPatternsResponse struct {
	WeekendTotal string            `json:"weekendTotal"`
	WeekdayTotal string            `json:"weekdayTotal"`
	Insights     []InsightResponse `json:"insights"`
}

// AdviceResponse represents one recommendation
type AdviceResponse struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// FinancialAdviceResponse represents the month's health check
type FinancialAdviceResponse struct {
	TotalIncome     string           `json:"totalIncome"`
	TotalExpenses   string           `json:"totalExpenses"`
	Savings         string           `json:"savings"`
	SavingsRate     string           `json:"savingsRate"`
	HealthScore     int              `json:"healthScore"`
	EmergencyTarget string           `json:"emergencyTarget"`
	Advice          []AdviceResponse `json:"advice"`
}

// CategoryAmountResponse pairs a category with a money total
type CategoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// MonthlyReportResponse represents the month-end summary
type MonthlyReportResponse struct {
	Month             string                      `json:"month"`
	TotalIncome       string                      `json:"totalIncome"`
	TotalExpenses     string                      `json:"totalExpenses"`
	Savings           string                      `json:"savings"`
	SavingsRate       string                      `json:"savingsRate"`
	ExpenseByCategory map[string]string           `json:"expenseByCategory"`
	IncomeByCategory  map[string]string           `json:"incomeByCategory"`
	TopSpending       []CategoryAmountResponse    `json:"topSpending"`
	BudgetPerformance []BudgetPerformanceResponse `json:"budgetPerformance"`
	Highlights        []string                    `json:"highlights"`
	IncomeCount       int                         `json:"incomeCount"`
	ExpenseCount      int                         `json:"expenseCount"`
}

// GetSpendingPatterns godoc
// @Summary Spending patterns
// @Description Weekend vs weekday habits, category trends and outliers over the last 30 days
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SpendingPatternsResponse
// @Failure 401 {object} ProblemDetails
// @Router /insights/patterns [get]
func (h *InsightsHandler) GetSpendingPatterns(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	patterns, err := h.insightsService.SpendingPatterns(userID, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to analyze spending patterns")
		return NewInternalError(c, "Failed to analyze spending patterns")
	}

	insights := make([]InsightResponse, 0, len(patterns.Insights))
	for _, insight := range patterns.Insights {
		insights = append(insights, InsightResponse{
			Type:     insight.Type,
			Category: string(insight.Category),
			Message:  insight.Message,
		})
	}
	return c.JSON(http.StatusOK, SpendingPatternsResponse{
		WeekendTotal: patterns.WeekendTotal.StringFixed(2),
		WeekdayTotal: patterns.WeekdayTotal.StringFixed(2),
		Insights:     insights,
	})
}

// GetAdvice godoc
// @Summary Financial advice
// @Description Savings rate, health score and recommendations for the last 30 days
// @Tags insights
// @Produce json
// @Security BearerAuth
// @Success 200 {object} FinancialAdviceResponse
// @Failure 401 {object} ProblemDetails
// @Router /insights/advice [get]
func (h *InsightsHandler) GetAdvice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	advice, err := h.insightsService.Advise(userID, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to produce financial advice")
		return NewInternalError(c, "Failed to produce financial advice")
	}

	items := make([]AdviceResponse, 0, len(advice.Advice))
	for _, item := range advice.Advice {
		items = append(items, AdviceResponse{
			Type:     item.Type,
			Title:    item.Title,
			Message:  item.Message,
			Priority: item.Priority,
		})
	}
	return c.JSON(http.StatusOK, FinancialAdviceResponse{
		TotalIncome:     advice.TotalIncome.StringFixed(2),
		TotalExpenses:   advice.TotalExpenses.StringFixed(2),
		Savings:         advice.Savings.StringFixed(2),
		SavingsRate:     advice.SavingsRate.StringFixed(2),
		HealthScore:     advice.HealthScore,
		EmergencyTarget: advice.EmergencyTarget.StringFixed(2),
		Advice:          items,
	})
}

// GetMonthlyReport handles GET /insights/report/:month
func (h *InsightsHandler) GetMonthlyReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	report, err := h.insightsService.Report(userID, c.Param("month"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBudgetMonth) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "month", Message: "Must be in YYYY-MM format"},
			})
		}
		log.Error().Err(err).Msg("Failed to build monthly report")
		return NewInternalError(c, "Failed to build monthly report")
	}

	expenseByCategory := make(map[string]string, len(report.ExpenseByCategory))
	for category, amount := range report.ExpenseByCategory {
		expenseByCategory[category] = amount.StringFixed(2)
	}
	incomeByCategory := make(map[string]string, len(report.IncomeByCategory))
	for category, amount := range report.IncomeByCategory {
		incomeByCategory[category] = amount.StringFixed(2)
	}

	topSpending := make([]CategoryAmountResponse, 0, len(report.TopSpending))
	for _, entry := range report.TopSpending {
		topSpending = append(topSpending, CategoryAmountResponse{
			Category: string(entry.Category),
			Amount:   entry.Amount.StringFixed(2),
		})
	}

	performance := make([]BudgetPerformanceResponse, 0, len(report.BudgetPerformance))
	for _, p := range report.BudgetPerformance {
		performance = append(performance, BudgetPerformanceResponse{
			Category:    string(p.Category),
			Budgeted:    p.Budgeted.StringFixed(2),
			Spent:       p.Spent.StringFixed(2),
			Remaining:   p.Remaining.StringFixed(2),
			PercentUsed: p.PercentUsed.StringFixed(2),
			Status:      p.Status,
		})
	}

	return c.JSON(http.StatusOK, MonthlyReportResponse{
		Month:             report.Month,
		TotalIncome:       report.TotalIncome.StringFixed(2),
		TotalExpenses:     report.TotalExpenses.StringFixed(2),
		Savings:           report.Savings.StringFixed(2),
		SavingsRate:       report.SavingsRate.StringFixed(2),
		ExpenseByCategory: expenseByCategory,
		IncomeByCategory:  incomeByCategory,
		TopSpending:       topSpending,
		BudgetPerformance: performance,
		Highlights:        report.Highlights,
		IncomeCount:       report.IncomeCount,
		ExpenseCount:      report.ExpenseCount,
	})
}
