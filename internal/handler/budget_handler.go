package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// BudgetHandler handles monthly budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the set budget request body
type BudgetRequest struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Month    string `json:"month"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID        int32  `json:"id"`
	Category  string `json:"category"`
	Amount    string `json:"amount"`
	Month     string `json:"month"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// SuggestBudgetRequest represents the budget suggestion request body
type SuggestBudgetRequest struct {
	MonthlyIncome *string `json:"monthlyIncome,omitempty"`
}

// BudgetSuggestionResponse represents a 50/30/20 allocation
type BudgetSuggestionResponse struct {
	Allocations map[string]string `json:"allocations"`
	Savings     string            `json:"savings"`
	Methodology string            `json:"methodology"`
}

// BudgetPerformanceResponse represents one category's budget tracking
type BudgetPerformanceResponse struct {
	Category    string `json:"category"`
	Budgeted    string `json:"budgeted"`
	Spent       string `json:"spent"`
	Remaining   string `json:"remaining"`
	PercentUsed string `json:"percentUsed"`
	Status      string `json:"status"`
}

// SetBudget godoc
// @Summary Set a budget
// @Description Create or replace the budget for a category and month
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "Budget request"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budgets [put]
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.SetBudget(userID, service.BudgetInput{
		Category: domain.ExpenseCategory(req.Category),
		Amount:   amount,
		Month:    req.Month,
	})
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("category", string(budget.Category)).
		Str("month", budget.Month).
		Msg("Budget set")

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetBudgets godoc
// @Summary List budgets
// @Description List the user's budgets, optionally for a single month
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month filter (YYYY-MM)"
// @Success 200 {array} BudgetResponse
// @Failure 401 {object} ProblemDetails
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(userID, c.QueryParam("month"))
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	responses := make([]BudgetResponse, 0, len(budgets))
	for _, budget := range budgets {
		responses = append(responses, toBudgetResponse(budget))
	}
	return c.JSON(http.StatusOK, responses)
}

// DeleteBudget handles DELETE /budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, int32(id)); err != nil {
		return budgetErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SuggestBudget godoc
// @Summary Suggest a budget
// @Description Produce a 50/30/20 allocation; income defaults to the 3-month average
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SuggestBudgetRequest true "Suggestion request"
// @Success 200 {object} BudgetSuggestionResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets/suggest [post]
func (h *BudgetHandler) SuggestBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SuggestBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	monthlyIncome := decimal.Zero
	if req.MonthlyIncome != nil && *req.MonthlyIncome != "" {
		parsed, err := decimal.NewFromString(*req.MonthlyIncome)
		if err != nil {
			return NewValidationError(c, "Invalid monthly income", []ValidationError{
				{Field: "monthlyIncome", Message: "Must be a valid decimal number"},
			})
		}
		monthlyIncome = parsed
	}

	suggestion, err := h.budgetService.SuggestBudget(userID, monthlyIncome)
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	allocations := make(map[string]string, len(suggestion.Allocations))
	for category, amount := range suggestion.Allocations {
		allocations[string(category)] = amount.StringFixed(2)
	}
	return c.JSON(http.StatusOK, BudgetSuggestionResponse{
		Allocations: allocations,
		Savings:     suggestion.Savings.StringFixed(2),
		Methodology: suggestion.Methodology,
	})
}

// SuggestFromHistory handles GET /budgets/suggest/history
func (h *BudgetHandler) SuggestFromHistory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	suggestions, err := h.budgetService.SuggestFromHistory(userID)
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	response := make(map[string]string, len(suggestions))
	for category, amount := range suggestions {
		response[string(category)] = amount.StringFixed(2)
	}
	return c.JSON(http.StatusOK, response)
}

// GetPerformance handles GET /budgets/performance/:month
func (h *BudgetHandler) GetPerformance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	performance, err := h.budgetService.Performance(userID, c.Param("month"))
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	responses := make([]BudgetPerformanceResponse, 0, len(performance))
	for _, p := range performance {
		responses = append(responses, BudgetPerformanceResponse{
			Category:    string(p.Category),
			Budgeted:    p.Budgeted.StringFixed(2),
			Spent:       p.Spent.StringFixed(2),
			Remaining:   p.Remaining.StringFixed(2),
			PercentUsed: p.PercentUsed.StringFixed(2),
			Status:      p.Status,
		})
	}
	return c.JSON(http.StatusOK, responses)
}

// GetEmergencyFund handles GET /budgets/emergency-fund
func (h *BudgetHandler) GetEmergencyFund(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	targets, err := h.budgetService.EmergencyFund(userID)
	if err != nil {
		return budgetErrorResponse(c, err)
	}

	response := make(map[string]string, len(targets))
	for horizon, amount := range targets {
		response[horizon] = amount.StringFixed(2)
	}
	return c.JSON(http.StatusOK, response)
}

// budgetErrorResponse maps budget domain errors to problem responses
func budgetErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Category cannot carry a monthly budget"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		})
	case errors.Is(err, domain.ErrInvalidBudgetMonth):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "month", Message: "Must be in YYYY-MM format"},
		})
	case errors.Is(err, domain.ErrInvalidIncome):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "monthlyIncome", Message: "No income history; provide a monthly income"},
		})
	default:
		log.Error().Err(err).Msg("Budget operation failed")
		return NewInternalError(c, "Budget operation failed")
	}
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        budget.ID,
		Category:  string(budget.Category),
		Amount:    budget.Amount.StringFixed(2),
		Month:     budget.Month,
		CreatedAt: budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt: budget.UpdatedAt.Format(time.RFC3339),
	}
}
