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

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// IncomeRequest represents the create/update income request body
type IncomeRequest struct {
	Title    string  `json:"title"`
	Amount   string  `json:"amount"`
	Category string  `json:"category,omitempty"`
	Date     *string `json:"date,omitempty"`
	Icon     string  `json:"icon,omitempty"`
}

// IncomeResponse represents an income entry in API responses
type IncomeResponse struct {
	ID        int32  `json:"id"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CategorySuggestionResponse represents a categorizer suggestion
type CategorySuggestionResponse struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
}

// parseIncomeRequest validates the shared request fields
func parseIncomeRequest(c echo.Context, req *IncomeRequest) (service.IncomeInput, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.IncomeInput{}, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return service.IncomeInput{}, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	return service.IncomeInput{
		Title:    req.Title,
		Amount:   amount,
		Category: domain.IncomeCategory(req.Category),
		Date:     date,
		Icon:     req.Icon,
	}, nil
}

// CreateIncome godoc
// @Summary Create an income entry
// @Description Create a new income entry; a missing category is auto-suggested
// @Tags incomes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IncomeRequest true "Income creation request"
// @Success 201 {object} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /incomes [post]
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseIncomeRequest(c, &req)
	if err != nil {
		return err
	}

	income, err := h.incomeService.CreateIncome(userID, input)
	if err != nil {
		return incomeErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("income_id", income.ID).
		Str("category", string(income.Category)).
		Msg("Income created")

	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// GetIncomes godoc
// @Summary List income entries
// @Description List the user's income within an optional date range
// @Tags incomes
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} IncomeResponse
// @Failure 401 {object} ProblemDetails
// @Router /incomes [get]
func (h *IncomeHandler) GetIncomes(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	incomes, err := h.incomeService.GetIncomes(userID, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list incomes")
		return NewInternalError(c, "Failed to list incomes")
	}

	responses := make([]IncomeResponse, 0, len(incomes))
	for _, income := range incomes {
		responses = append(responses, toIncomeResponse(income))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetIncome handles GET /incomes/:id
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	income, err := h.incomeService.GetIncomeByID(userID, int32(id))
	if err != nil {
		return incomeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateIncome handles PUT /incomes/:id
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseIncomeRequest(c, &req)
	if err != nil {
		return err
	}

	income, err := h.incomeService.UpdateIncome(userID, int32(id), input)
	if err != nil {
		return incomeErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// DeleteIncome handles DELETE /incomes/:id
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.incomeService.DeleteIncome(userID, int32(id)); err != nil {
		return incomeErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SuggestCategory handles GET /incomes/suggest-category
func (h *IncomeHandler) SuggestCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	title := c.QueryParam("title")
	if title == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		})
	}

	suggestion := h.incomeService.SuggestCategory(title)
	return c.JSON(http.StatusOK, CategorySuggestionResponse{
		Category:   suggestion.Category,
		Confidence: suggestion.Confidence,
	})
}

// parseDateRange reads optional startDate/endDate query parameters
func parseDateRange(c echo.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.QueryParam("startDate"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		from = &parsed
	}
	if s := c.QueryParam("endDate"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		// Include the whole end day
		end := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

// incomeErrorResponse maps income domain errors to problem responses
func incomeErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrIncomeNotFound):
		return NewNotFoundError(c, "Income not found")
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		})
	case errors.Is(err, domain.ErrTitleTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is too long"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		})
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Unknown income category"},
		})
	default:
		log.Error().Err(err).Msg("Income operation failed")
		return NewInternalError(c, "Income operation failed")
	}
}

func toIncomeResponse(income *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:        income.ID,
		Title:     income.Title,
		Amount:    income.Amount.StringFixed(2),
		Category:  string(income.Category),
		Date:      income.Date.Format("2006-01-02"),
		Icon:      income.Icon,
		CreatedAt: income.CreatedAt.Format(time.RFC3339),
		UpdatedAt: income.UpdatedAt.Format(time.RFC3339),
	}
}
