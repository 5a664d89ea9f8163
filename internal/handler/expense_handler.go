package handler

import (
	"errors"
	"io"
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

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	receiptService *service.ReceiptService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService, receiptService *service.ReceiptService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		receiptService: receiptService,
	}
}

// ExpenseRequest represents the create/update expense request body
type ExpenseRequest struct {
	Title        string  `json:"title"`
	Amount       string  `json:"amount"`
	Category     string  `json:"category,omitempty"`
	Vendor       *string `json:"vendor,omitempty"`
	GSTAmount    *string `json:"gstAmount,omitempty"`
	IsGSTExpense bool    `json:"isGstExpense"`
	Date         *string `json:"date,omitempty"`
	Icon         string  `json:"icon,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID                int32   `json:"id"`
	Title             string  `json:"title"`
	Amount            string  `json:"amount"`
	Category          string  `json:"category"`
	Vendor            *string `json:"vendor,omitempty"`
	HasReceipt        bool    `json:"hasReceipt"`
	GSTAmount         string  `json:"gstAmount"`
	IsGSTExpense      bool    `json:"isGstExpense"`
	SuggestedCategory *string `json:"suggestedCategory,omitempty"`
	Date              string  `json:"date"`
	Icon              string  `json:"icon,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// ReceiptURLResponse carries a short-lived download URL for a receipt
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

// parseExpenseRequest validates the shared request fields
func parseExpenseRequest(c echo.Context, req *ExpenseRequest) (service.ExpenseInput, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.ExpenseInput{}, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	gstAmount := decimal.Zero
	if req.GSTAmount != nil && *req.GSTAmount != "" {
		gstAmount, err = decimal.NewFromString(*req.GSTAmount)
		if err != nil {
			return service.ExpenseInput{}, NewValidationError(c, "Invalid GST amount", []ValidationError{
				{Field: "gstAmount", Message: "Must be a valid decimal number"},
			})
		}
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return service.ExpenseInput{}, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	return service.ExpenseInput{
		Title:        req.Title,
		Amount:       amount,
		Category:     domain.ExpenseCategory(req.Category),
		Vendor:       req.Vendor,
		GSTAmount:    gstAmount,
		IsGSTExpense: req.IsGSTExpense,
		Date:         date,
		Icon:         req.Icon,
	}, nil
}

// CreateExpense godoc
// @Summary Create an expense
// @Description Create a new expense; the categorizer records a suggestion
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "Expense creation request"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseExpenseRequest(c, &req)
	if err != nil {
		return err
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		return expenseErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("expense_id", expense.ID).
		Str("category", string(expense.Category)).
		Msg("Expense created")

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses godoc
// @Summary List expenses
// @Description List the user's expenses within an optional date range
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {array} ExpenseResponse
// @Failure 401 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}

	expenses, err := h.expenseService.GetExpenses(userID, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to list expenses")
	}

	responses := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		responses = append(responses, toExpenseResponse(expense))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetExpense handles GET /expenses/:id
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.GetExpenseByID(userID, int32(id))
	if err != nil {
		return expenseErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense handles PUT /expenses/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseExpenseRequest(c, &req)
	if err != nil {
		return err
	}

	expense, err := h.expenseService.UpdateExpense(userID, int32(id), input)
	if err != nil {
		return expenseErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(userID, int32(id)); err != nil {
		return expenseErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SuggestCategory handles GET /expenses/suggest-category
func (h *ExpenseHandler) SuggestCategory(c echo.Context) error {
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

	suggestion := h.expenseService.SuggestCategory(title)
	return c.JSON(http.StatusOK, CategorySuggestionResponse{
		Category:   suggestion.Category,
		Confidence: suggestion.Confidence,
	})
}

// UploadReceipt handles POST /expenses/:id/receipt
func (h *ExpenseHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "File uploads are disabled (storage not configured)")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	// Ownership check before touching storage
	if _, err := h.expenseService.GetExpenseByID(userID, int32(id)); err != nil {
		return expenseErrorResponse(c, err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	receiptPath, err := h.receiptService.UploadReceipt(c.Request().Context(), userID, int32(id), data, file.Filename)
	if err != nil {
		return uploadErrorResponse(c, err)
	}

	expense, err := h.expenseService.SetReceipt(userID, int32(id), receiptPath)
	if err != nil {
		return expenseErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("expense_id", expense.ID).
		Str("receipt_path", receiptPath).
		Msg("Receipt uploaded")

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// GetReceiptURL handles GET /expenses/:id/receipt
func (h *ExpenseHandler) GetReceiptURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "File downloads are disabled (storage not configured)")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.GetExpenseByID(userID, int32(id))
	if err != nil {
		return expenseErrorResponse(c, err)
	}
	if expense.ReceiptPath == nil {
		return NewNotFoundError(c, "Expense has no receipt")
	}

	url, err := h.receiptService.PresignedURL(c.Request().Context(), userID, *expense.ReceiptPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to presign receipt URL")
		return NewInternalError(c, "Failed to generate download URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}

// expenseErrorResponse maps expense domain errors to problem responses
func expenseErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		})
	case errors.Is(err, domain.ErrTitleTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is too long"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "vendor", Message: "Vendor name is too long"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be greater than zero"},
		})
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Unknown expense category"},
		})
	default:
		log.Error().Err(err).Msg("Expense operation failed")
		return NewInternalError(c, "Expense operation failed")
	}
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:                expense.ID,
		Title:             expense.Title,
		Amount:            expense.Amount.StringFixed(2),
		Category:          string(expense.Category),
		Vendor:            expense.Vendor,
		HasReceipt:        expense.ReceiptPath != nil,
		GSTAmount:         expense.GSTAmount.StringFixed(2),
		IsGSTExpense:      expense.IsGSTExpense,
		SuggestedCategory: expense.SuggestedCategory,
		Date:              expense.Date.Format("2006-01-02"),
		Icon:              expense.Icon,
		CreatedAt:         expense.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         expense.UpdatedAt.Format(time.RFC3339),
	}
}
