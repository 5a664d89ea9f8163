package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// GSTHandler handles GST calculation and identifier validation requests
type GSTHandler struct {
	gstService *service.GSTService
}

// NewGSTHandler creates a new GSTHandler
func NewGSTHandler(gstService *service.GSTService) *GSTHandler {
	return &GSTHandler{gstService: gstService}
}

// CalculateGSTRequest represents the GST calculation request body
type CalculateGSTRequest struct {
	SellerState string `json:"sellerState"`
	BuyerState  string `json:"buyerState"`
	Amount      string `json:"amount"`
	GSTRate     int32  `json:"gstRate"`
}

// CalculateGSTResponse represents the computed tax split
type CalculateGSTResponse struct {
	CGST     string `json:"cgst"`
	SGST     string `json:"sgst"`
	IGST     string `json:"igst"`
	TotalTax string `json:"totalTax"`
}

// ValidateGSTINResponse represents a GSTIN validation result
type ValidateGSTINResponse struct {
	Valid     bool   `json:"valid"`
	StateCode string `json:"stateCode,omitempty"`
	StateName string `json:"stateName,omitempty"`
}

// ValidatePANResponse represents a PAN validation result
type ValidatePANResponse struct {
	Valid bool `json:"valid"`
}

// CalculateGST godoc
// @Summary Calculate GST
// @Description Split tax into CGST/SGST (intra-state) or IGST (inter-state)
// @Tags gst
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CalculateGSTRequest true "Calculation request"
// @Success 200 {object} CalculateGSTResponse
// @Failure 400 {object} ProblemDetails
// @Router /gst/calculate [post]
func (h *GSTHandler) CalculateGST(c echo.Context) error {
	var req CalculateGSTRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	result, err := h.gstService.CalculateGST(req.SellerState, req.BuyerState, amount, req.GSTRate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStateRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "sellerState", Message: "Seller and buyer states are required"},
			})
		case errors.Is(err, domain.ErrNegativeTaxableAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount cannot be negative"},
			})
		case errors.Is(err, domain.ErrInvalidGSTRate):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "gstRate", Message: "Must be 0, 5, 12, 18, or 28"},
			})
		default:
			log.Error().Err(err).Msg("GST calculation failed")
			return NewInternalError(c, "GST calculation failed")
		}
	}

	return c.JSON(http.StatusOK, CalculateGSTResponse{
		CGST:     result.CGST.StringFixed(2),
		SGST:     result.SGST.StringFixed(2),
		IGST:     result.IGST.StringFixed(2),
		TotalTax: result.TotalTax.StringFixed(2),
	})
}

// ValidateGSTIN handles GET /gst/validate-gstin
func (h *GSTHandler) ValidateGSTIN(c echo.Context) error {
	gstin := c.QueryParam("gstin")
	if gstin == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "gstin", Message: "GSTIN is required"},
		})
	}

	resp := ValidateGSTINResponse{Valid: h.gstService.ValidateGSTIN(gstin)}
	if resp.Valid {
		if code, err := h.gstService.ExtractStateCode(gstin); err == nil {
			resp.StateCode = code
			resp.StateName = h.gstService.StateNameFromCode(code)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ValidatePAN handles GET /gst/validate-pan
func (h *GSTHandler) ValidatePAN(c echo.Context) error {
	pan := c.QueryParam("pan")
	if pan == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "pan", Message: "PAN is required"},
		})
	}

	return c.JSON(http.StatusOK, ValidatePANResponse{Valid: h.gstService.ValidatePAN(pan)})
}
