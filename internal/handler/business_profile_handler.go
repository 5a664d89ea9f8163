package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// BusinessProfileHandler handles business profile HTTP requests
type BusinessProfileHandler struct {
	profileService *service.BusinessProfileService
	receiptService *service.ReceiptService
}

// NewBusinessProfileHandler creates a new BusinessProfileHandler
func NewBusinessProfileHandler(profileService *service.BusinessProfileService, receiptService *service.ReceiptService) *BusinessProfileHandler {
	return &BusinessProfileHandler{
		profileService: profileService,
		receiptService: receiptService,
	}
}

// BusinessProfileRequest represents the upsert profile request body
type BusinessProfileRequest struct {
	BusinessName       string              `json:"businessName"`
	BusinessType       string              `json:"businessType"`
	GSTIN              *string             `json:"gstin,omitempty"`
	PAN                *string             `json:"pan,omitempty"`
	Address            AddressRequest      `json:"address"`
	Phone              *string             `json:"phone,omitempty"`
	Email              *string             `json:"email,omitempty"`
	BankDetails        *domain.BankDetails `json:"bankDetails,omitempty"`
	Website            *string             `json:"website,omitempty"`
	TermsAndConditions *string             `json:"termsAndConditions,omitempty"`
}

// BusinessProfileResponse represents a business profile in API responses
type BusinessProfileResponse struct {
	ID                 int32               `json:"id"`
	BusinessName       string              `json:"businessName"`
	BusinessType       string              `json:"businessType"`
	GSTIN              *string             `json:"gstin,omitempty"`
	PAN                *string             `json:"pan,omitempty"`
	Address            domain.Address      `json:"address"`
	Phone              *string             `json:"phone,omitempty"`
	Email              *string             `json:"email,omitempty"`
	LogoURL            *string             `json:"logoUrl,omitempty"`
	BankDetails        *domain.BankDetails `json:"bankDetails,omitempty"`
	Website            *string             `json:"website,omitempty"`
	TermsAndConditions string              `json:"termsAndConditions"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
}

// GetProfile godoc
// @Summary Get business profile
// @Description Get the user's business profile used on invoices
// @Tags business-profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BusinessProfileResponse
// @Failure 404 {object} ProblemDetails
// @Router /business-profile [get]
func (h *BusinessProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessProfileNotFound) {
			return NewNotFoundError(c, "Business profile not set up yet")
		}
		log.Error().Err(err).Msg("Failed to load business profile")
		return NewInternalError(c, "Failed to load business profile")
	}

	return c.JSON(http.StatusOK, h.toProfileResponse(c, userID, profile))
}

// UpsertProfile godoc
// @Summary Create or replace the business profile
// @Description Each user has exactly one profile; repeated saves overwrite it
// @Tags business-profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BusinessProfileRequest true "Business profile request"
// @Success 200 {object} BusinessProfileResponse
// @Failure 400 {object} ProblemDetails
// @Router /business-profile [put]
func (h *BusinessProfileHandler) UpsertProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BusinessProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	profile, err := h.profileService.UpsertProfile(userID, service.BusinessProfileInput{
		BusinessName: req.BusinessName,
		BusinessType: domain.BusinessType(req.BusinessType),
		GSTIN:        req.GSTIN,
		PAN:          req.PAN,
		Address: domain.Address{
			Street:  req.Address.Street,
			City:    req.Address.City,
			State:   req.Address.State,
			Pincode: req.Address.Pincode,
		},
		Phone:              req.Phone,
		Email:              req.Email,
		BankDetails:        req.BankDetails,
		Website:            req.Website,
		TermsAndConditions: req.TermsAndConditions,
	})
	if err != nil {
		return profileErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("business_name", profile.BusinessName).
		Msg("Business profile saved")

	return c.JSON(http.StatusOK, h.toProfileResponse(c, userID, profile))
}

// UploadLogo handles POST /business-profile/logo
func (h *BusinessProfileHandler) UploadLogo(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "File uploads are disabled (storage not configured)")
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

	logoPath, err := h.receiptService.UploadLogo(c.Request().Context(), userID, data, file.Filename)
	if err != nil {
		return uploadErrorResponse(c, err)
	}

	profile, err := h.profileService.SetLogo(userID, logoPath)
	if err != nil {
		if errors.Is(err, domain.ErrBusinessProfileNotFound) {
			return NewNotFoundError(c, "Business profile not set up yet")
		}
		log.Error().Err(err).Msg("Failed to save logo path")
		return NewInternalError(c, "Failed to save logo")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("logo_path", logoPath).
		Msg("Business logo uploaded")

	return c.JSON(http.StatusOK, h.toProfileResponse(c, userID, profile))
}

// uploadErrorResponse maps file upload errors to problem responses
func uploadErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrReceiptTooLarge):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 10MB"},
		})
	case errors.Is(err, service.ErrLogoTooLarge):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 2MB"},
		})
	case errors.Is(err, service.ErrInvalidReceiptFormat):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP, PDF"},
		})
	case errors.Is(err, service.ErrInvalidLogoFormat):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
		})
	case errors.Is(err, service.ErrImageTooSmall):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
		})
	case errors.Is(err, service.ErrInvalidImageData):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Invalid image data"},
		})
	case errors.Is(err, service.ErrObjectStorageNotConfigured):
		return NewServiceUnavailableError(c, "File uploads are disabled (storage not configured)")
	default:
		log.Error().Err(err).Msg("Failed to upload file")
		return NewInternalError(c, "Failed to upload file")
	}
}

func profileErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "businessName", Message: "Business name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "businessName", Message: "Business name is too long"},
		})
	case errors.Is(err, domain.ErrInvalidBusinessType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "businessType", Message: "Must be Freelancer or SME"},
		})
	case errors.Is(err, domain.ErrStateRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "address.state", Message: "State is required for GST calculation"},
		})
	case errors.Is(err, domain.ErrInvalidGSTIN):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "gstin", Message: "Invalid GSTIN format"},
		})
	case errors.Is(err, domain.ErrInvalidPAN):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "pan", Message: "Invalid PAN format"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "termsAndConditions", Message: "Terms and conditions are too long"},
		})
	default:
		log.Error().Err(err).Msg("Failed to save business profile")
		return NewInternalError(c, "Failed to save business profile")
	}
}

// toProfileResponse converts a profile, resolving the stored logo path
// to a short-lived presigned URL when storage is configured.
func (h *BusinessProfileHandler) toProfileResponse(c echo.Context, userID uuid.UUID, profile *domain.BusinessProfile) BusinessProfileResponse {
	resp := BusinessProfileResponse{
		ID:                 profile.ID,
		BusinessName:       profile.BusinessName,
		BusinessType:       string(profile.BusinessType),
		GSTIN:              profile.GSTIN,
		PAN:                profile.PAN,
		Address:            profile.Address,
		Phone:              profile.Phone,
		Email:              profile.Email,
		BankDetails:        profile.BankDetails,
		Website:            profile.Website,
		TermsAndConditions: profile.TermsAndConditions,
		CreatedAt:          profile.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          profile.UpdatedAt.Format(time.RFC3339),
	}

	if profile.LogoPath != nil && h.receiptService != nil && h.receiptService.IsEnabled() {
		url, err := h.receiptService.PresignedURL(c.Request().Context(), userID, *profile.LogoPath)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to presign logo URL")
		} else {
			resp.LogoURL = &url
		}
	}
	return resp
}
