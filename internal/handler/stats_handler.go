package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// StatsHandler handles dashboard statistics HTTP requests
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// OverviewResponse represents the top-level dashboard summary
type OverviewResponse struct {
	TotalIncome   string `json:"totalIncome"`
	TotalExpenses string `json:"totalExpenses"`
	Balance       string `json:"balance"`
	IncomeCount   int64  `json:"incomeCount"`
	ExpenseCount  int64  `json:"expenseCount"`
	SavingsRate   string `json:"savingsRate"`
}

// CategorySummaryResponse represents a per-category aggregate
type CategorySummaryResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

// MonthlyTrendResponse pairs income and expenses for one month
type MonthlyTrendResponse struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// GetOverview godoc
// @Summary Dashboard overview
// @Description Lifetime totals, balance and savings rate
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} OverviewResponse
// @Failure 401 {object} ProblemDetails
// @Router /stats/overview [get]
func (h *StatsHandler) GetOverview(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	overview, err := h.statsService.GetOverview(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load overview")
		return NewInternalError(c, "Failed to load overview")
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		TotalIncome:   overview.TotalIncome.StringFixed(2),
		TotalExpenses: overview.TotalExpenses.StringFixed(2),
		Balance:       overview.Balance.StringFixed(2),
		IncomeCount:   overview.IncomeCount,
		ExpenseCount:  overview.ExpenseCount,
		SavingsRate:   overview.SavingsRate.StringFixed(2),
	})
}

// GetIncomeByCategory handles GET /stats/income-by-category
func (h *StatsHandler) GetIncomeByCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summaries, err := h.statsService.IncomeByCategory(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load income summary")
		return NewInternalError(c, "Failed to load income summary")
	}
	return c.JSON(http.StatusOK, toCategorySummaryResponses(summaries))
}

// GetExpensesByCategory handles GET /stats/expenses-by-category
func (h *StatsHandler) GetExpensesByCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summaries, err := h.statsService.ExpensesByCategory(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load expense summary")
		return NewInternalError(c, "Failed to load expense summary")
	}
	return c.JSON(http.StatusOK, toCategorySummaryResponses(summaries))
}

// GetMonthlyTrends handles GET /stats/trends
func (h *StatsHandler) GetMonthlyTrends(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	trends, err := h.statsService.MonthlyTrends(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load monthly trends")
		return NewInternalError(c, "Failed to load monthly trends")
	}

	responses := make([]MonthlyTrendResponse, 0, len(trends))
	for _, trend := range trends {
		responses = append(responses, MonthlyTrendResponse{
			Year:     trend.Year,
			Month:    trend.Month,
			Income:   trend.Income.StringFixed(2),
			Expenses: trend.Expenses.StringFixed(2),
			Net:      trend.Net.StringFixed(2),
		})
	}
	return c.JSON(http.StatusOK, responses)
}

func toCategorySummaryResponses(summaries []*domain.CategorySummary) []CategorySummaryResponse {
	responses := make([]CategorySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, CategorySummaryResponse{
			Category: summary.Category,
			Total:    summary.Total.StringFixed(2),
			Count:    summary.Count,
		})
	}
	return responses
}
