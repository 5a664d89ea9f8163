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

// InvoiceHandler handles GST invoice HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// LineItemRequest represents one billable row in an invoice request
type LineItemRequest struct {
	ItemName      string  `json:"itemName"`
	Description   *string `json:"description,omitempty"`
	Quantity      int32   `json:"quantity"`
	Rate          string  `json:"rate"`
	Discount      *string `json:"discount,omitempty"`
	GSTPercentage int32   `json:"gstPercentage"`
}

// InvoiceRequest represents the create/update invoice request body
type InvoiceRequest struct {
	ClientID           int32             `json:"clientId"`
	InvoiceDate        *string           `json:"invoiceDate,omitempty"`
	DueDate            *string           `json:"dueDate,omitempty"`
	Status             *string           `json:"status,omitempty"`
	LineItems          []LineItemRequest `json:"lineItems"`
	Notes              *string           `json:"notes,omitempty"`
	TermsAndConditions *string           `json:"termsAndConditions,omitempty"`
}

// MarkPaidRequest represents the mark-paid request body
type MarkPaidRequest struct {
	PaymentDate      *string `json:"paymentDate,omitempty"`
	PaymentMethod    *string `json:"paymentMethod,omitempty"`
	PaymentReference *string `json:"paymentReference,omitempty"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID            int32   `json:"id"`
	ItemName      string  `json:"itemName"`
	Description   *string `json:"description,omitempty"`
	Quantity      int32   `json:"quantity"`
	Rate          string  `json:"rate"`
	Discount      string  `json:"discount"`
	GSTPercentage int32   `json:"gstPercentage"`
	ItemTotal     string  `json:"itemTotal"`
	TaxAmount     string  `json:"taxAmount"`
}

// TaxBreakupResponse represents the CGST/SGST/IGST split
type TaxBreakupResponse struct {
	CGST string `json:"cgst"`
	SGST string `json:"sgst"`
	IGST string `json:"igst"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 int32              `json:"id"`
	InvoiceNumber      string             `json:"invoiceNumber"`
	ClientID           int32              `json:"clientId"`
	InvoiceDate        string             `json:"invoiceDate"`
	DueDate            string             `json:"dueDate"`
	Status             string             `json:"status"`
	LineItems          []LineItemResponse `json:"lineItems,omitempty"`
	Subtotal           string             `json:"subtotal"`
	TaxAmount          string             `json:"taxAmount"`
	TotalAmount        string             `json:"totalAmount"`
	TaxBreakup         TaxBreakupResponse `json:"taxBreakup"`
	Notes              *string            `json:"notes,omitempty"`
	TermsAndConditions *string            `json:"termsAndConditions,omitempty"`
	PaymentDate        *string            `json:"paymentDate,omitempty"`
	PaymentMethod      *string            `json:"paymentMethod,omitempty"`
	PaymentReference   *string            `json:"paymentReference,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

// PaginatedInvoicesResponse wraps an invoice page
type PaginatedInvoicesResponse struct {
	Data       []InvoiceResponse `json:"data"`
	Page       int32             `json:"page"`
	PageSize   int32             `json:"pageSize"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int32             `json:"totalPages"`
}

// InvoiceStatsResponse represents the invoice dashboard summary
type InvoiceStatsResponse struct {
	TotalInvoices   int64  `json:"totalInvoices"`
	DraftInvoices   int64  `json:"draftInvoices"`
	SentInvoices    int64  `json:"sentInvoices"`
	PaidInvoices    int64  `json:"paidInvoices"`
	OverdueInvoices int64  `json:"overdueInvoices"`
	TotalRevenue    string `json:"totalRevenue"`
	PendingAmount   string `json:"pendingAmount"`
}

// parseInvoiceRequest validates the shared request fields
func parseInvoiceRequest(c echo.Context, req *InvoiceRequest) (service.InvoiceInput, error) {
	if req.ClientID <= 0 {
		return service.InvoiceInput{}, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "clientId", Message: "Client ID is required"},
		})
	}

	var invoiceDate, dueDate *time.Time
	if req.InvoiceDate != nil && *req.InvoiceDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.InvoiceDate)
		if err != nil {
			return service.InvoiceInput{}, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "invoiceDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		invoiceDate = &parsed
	}
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return service.InvoiceInput{}, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dueDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		dueDate = &parsed
	}

	var status *domain.InvoiceStatus
	if req.Status != nil && *req.Status != "" {
		s := domain.InvoiceStatus(*req.Status)
		status = &s
	}

	items := make([]service.LineItemInput, 0, len(req.LineItems))
	for i, item := range req.LineItems {
		rate, err := decimal.NewFromString(item.Rate)
		if err != nil {
			return service.InvoiceInput{}, NewValidationError(c, "Invalid rate", []ValidationError{
				{Field: "lineItems[" + strconv.Itoa(i) + "].rate", Message: "Must be a valid decimal number"},
			})
		}
		discount := decimal.Zero
		if item.Discount != nil && *item.Discount != "" {
			discount, err = decimal.NewFromString(*item.Discount)
			if err != nil {
				return service.InvoiceInput{}, NewValidationError(c, "Invalid discount", []ValidationError{
					{Field: "lineItems[" + strconv.Itoa(i) + "].discount", Message: "Must be a valid decimal number"},
				})
			}
		}
		items = append(items, service.LineItemInput{
			ItemName:      item.ItemName,
			Description:   item.Description,
			Quantity:      item.Quantity,
			Rate:          rate,
			Discount:      discount,
			GSTPercentage: item.GSTPercentage,
		})
	}

	return service.InvoiceInput{
		ClientID:           req.ClientID,
		InvoiceDate:        invoiceDate,
		DueDate:            dueDate,
		Status:             status,
		LineItems:          items,
		Notes:              req.Notes,
		TermsAndConditions: req.TermsAndConditions,
	}, nil
}

// CreateInvoice godoc
// @Summary Create an invoice
// @Description Create a GST invoice; the number is assigned per financial year
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InvoiceRequest true "Invoice creation request"
// @Success 201 {object} InvoiceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseInvoiceRequest(c, &req)
	if err != nil {
		return err
	}

	invoice, err := h.invoiceService.CreateInvoice(userID, input)
	if err != nil {
		return invoiceErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Str("total", invoice.TotalAmount.StringFixed(2)).
		Msg("Invoice created")

	return c.JSON(http.StatusCreated, toInvoiceResponse(invoice))
}

// GetInvoices godoc
// @Summary List invoices
// @Description List invoices with filtering, sorting and pagination
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param clientId query int false "Client filter"
// @Param startDate query string false "Invoice date from (YYYY-MM-DD)"
// @Param endDate query string false "Invoice date to (YYYY-MM-DD)"
// @Param search query string false "Search by invoice number"
// @Param sortBy query string false "Sort column (invoiceDate, dueDate, totalAmount, createdAt)"
// @Param order query string false "asc or desc"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} PaginatedInvoicesResponse
// @Failure 401 {object} ProblemDetails
// @Router /invoices [get]
func (h *InvoiceHandler) GetInvoices(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.InvoiceFilters{
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sortBy"),
		SortDesc: c.QueryParam("order") == "desc",
	}

	if s := c.QueryParam("status"); s != "" {
		status := domain.InvoiceStatus(s)
		filters.Status = &status
	}
	if err := parseIntParam(c, "clientId", &filters.ClientID); err != nil {
		return NewValidationError(c, "Invalid client ID", []ValidationError{
			{Field: "clientId", Message: "Must be an integer"},
		})
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		return err
	}
	filters.StartDate = from
	filters.EndDate = to

	var page, pageSize *int32
	if err := parseIntParam(c, "page", &page); err != nil {
		return NewValidationError(c, "Invalid page", []ValidationError{
			{Field: "page", Message: "Must be an integer"},
		})
	}
	if err := parseIntParam(c, "pageSize", &pageSize); err != nil {
		return NewValidationError(c, "Invalid page size", []ValidationError{
			{Field: "pageSize", Message: "Must be an integer"},
		})
	}
	if page != nil {
		filters.Page = *page
	}
	if pageSize != nil {
		filters.PageSize = *pageSize
	}

	result, err := h.invoiceService.GetInvoices(userID, filters)
	if err != nil {
		return invoiceErrorResponse(c, err)
	}

	responses := make([]InvoiceResponse, 0, len(result.Data))
	for _, invoice := range result.Data {
		responses = append(responses, toInvoiceResponse(invoice))
	}
	return c.JSON(http.StatusOK, PaginatedInvoicesResponse{
		Data:       responses,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetStats handles GET /invoices/stats
func (h *InvoiceHandler) GetStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	stats, err := h.invoiceService.GetStats(userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load invoice stats")
		return NewInternalError(c, "Failed to load invoice stats")
	}

	return c.JSON(http.StatusOK, InvoiceStatsResponse{
		TotalInvoices:   stats.TotalInvoices,
		DraftInvoices:   stats.DraftInvoices,
		SentInvoices:    stats.SentInvoices,
		PaidInvoices:    stats.PaidInvoices,
		OverdueInvoices: stats.OverdueInvoices,
		TotalRevenue:    stats.TotalRevenue.StringFixed(2),
		PendingAmount:   stats.PendingAmount.StringFixed(2),
	})
}

// GetInvoice handles GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	invoice, err := h.invoiceService.GetInvoiceByID(userID, int32(id))
	if err != nil {
		return invoiceErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// UpdateInvoice godoc
// @Summary Update an invoice
// @Description Replace an invoice's content; the invoice number never changes
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param request body InvoiceRequest true "Invoice update request"
// @Success 200 {object} InvoiceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := parseInvoiceRequest(c, &req)
	if err != nil {
		return err
	}

	invoice, err := h.invoiceService.UpdateInvoice(userID, int32(id), input)
	if err != nil {
		return invoiceErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// DeleteInvoice handles DELETE /invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	if err := h.invoiceService.DeleteInvoice(userID, int32(id)); err != nil {
		return invoiceErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("invoice_id", int32(id)).
		Msg("Invoice deleted")

	return c.NoContent(http.StatusNoContent)
}

// MarkPaid godoc
// @Summary Mark an invoice as paid
// @Description Settle an invoice and record how it was paid
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param request body MarkPaidRequest true "Payment details"
// @Success 200 {object} InvoiceResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /invoices/{id}/mark-paid [patch]
func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	var req MarkPaidRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		paymentDate = &parsed
	}

	var paymentMethod *domain.PaymentMethod
	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		m := domain.PaymentMethod(*req.PaymentMethod)
		paymentMethod = &m
	}

	invoice, err := h.invoiceService.MarkPaid(userID, int32(id), service.MarkPaidInput{
		PaymentDate:      paymentDate,
		PaymentMethod:    paymentMethod,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		return invoiceErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("invoice_id", invoice.ID).
		Str("invoice_number", invoice.InvoiceNumber).
		Msg("Invoice marked paid")

	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// parseIntParam parses an optional integer query parameter into out.
// A missing parameter leaves out nil.
func parseIntParam(c echo.Context, name string, out **int32) error {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return err
	}
	value := int32(parsed)
	*out = &value
	return nil
}

// invoiceErrorResponse maps invoice domain errors to problem responses
func invoiceErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return NewNotFoundError(c, "Invoice not found")
	case errors.Is(err, domain.ErrClientNotFound):
		return NewNotFoundError(c, "Client not found")
	case errors.Is(err, domain.ErrBusinessProfileRequired):
		return NewValidationError(c, "Business profile must be set up before invoicing", nil)
	case errors.Is(err, domain.ErrInvoicePaid):
		return NewConflictError(c, "Paid invoices cannot be modified or deleted")
	case errors.Is(err, domain.ErrDuplicateInvoiceNumber):
		return NewConflictError(c, "Invoice number already exists")
	case errors.Is(err, domain.ErrInvoiceNoLineItems):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lineItems", Message: "At least one line item is required"},
		})
	case errors.Is(err, domain.ErrInvalidLineItem):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lineItems", Message: "Invalid line item"},
		})
	case errors.Is(err, domain.ErrInvalidGSTRate):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "lineItems", Message: "GST rate must be 0%, 5%, 12%, 18%, or 28%"},
		})
	case errors.Is(err, domain.ErrInvalidInvoiceStatus):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "status", Message: "Unknown invoice status"},
		})
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "paymentMethod", Message: "Unknown payment method"},
		})
	case errors.Is(err, domain.ErrInvalidInvoiceDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "dueDate", Message: "Due date cannot be before invoice date"},
		})
	case errors.Is(err, domain.ErrStateRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "address.state", Message: "Seller and buyer states are required"},
		})
	case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrNameTooLong), errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("Invoice operation failed")
		return NewInternalError(c, "Invoice operation failed")
	}
}

func toLineItemResponse(item *domain.InvoiceLineItem) LineItemResponse {
	return LineItemResponse{
		ID:            item.ID,
		ItemName:      item.ItemName,
		Description:   item.Description,
		Quantity:      item.Quantity,
		Rate:          item.Rate.StringFixed(2),
		Discount:      item.Discount.StringFixed(2),
		GSTPercentage: item.GSTPercentage,
		ItemTotal:     item.ItemTotal.StringFixed(2),
		TaxAmount:     item.TaxAmount.StringFixed(2),
	}
}

func toInvoiceResponse(invoice *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		ClientID:      invoice.ClientID,
		InvoiceDate:   invoice.InvoiceDate.Format("2006-01-02"),
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		Status:        string(invoice.Status),
		Subtotal:      invoice.Subtotal.StringFixed(2),
		TaxAmount:     invoice.TaxAmount.StringFixed(2),
		TotalAmount:   invoice.TotalAmount.StringFixed(2),
		TaxBreakup: TaxBreakupResponse{
			CGST: invoice.TaxBreakup.CGST.StringFixed(2),
			SGST: invoice.TaxBreakup.SGST.StringFixed(2),
			IGST: invoice.TaxBreakup.IGST.StringFixed(2),
		},
		Notes:              invoice.Notes,
		TermsAndConditions: invoice.TermsAndConditions,
		PaymentReference:   invoice.PaymentReference,
		CreatedAt:          invoice.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          invoice.UpdatedAt.Format(time.RFC3339),
	}

	if len(invoice.LineItems) > 0 {
		resp.LineItems = make([]LineItemResponse, 0, len(invoice.LineItems))
		for _, item := range invoice.LineItems {
			resp.LineItems = append(resp.LineItems, toLineItemResponse(item))
		}
	}
	if invoice.PaymentDate != nil {
		date := invoice.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &date
	}
	if invoice.PaymentMethod != nil {
		method := string(*invoice.PaymentMethod)
		resp.PaymentMethod = &method
	}
	return resp
}
