package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/service"
	"github.com/trubalance/trubalance-backend/internal/testutil"
)

func newBusinessProfileHandler() (*BusinessProfileHandler, *testutil.MockBusinessProfileRepository) {
	profileRepo := testutil.NewMockBusinessProfileRepository()
	profileService := service.NewBusinessProfileService(profileRepo, service.NewGSTService())
	receiptService := service.NewReceiptService(nil)
	return NewBusinessProfileHandler(profileService, receiptService), profileRepo
}

func TestGetProfile_NotSetUp(t *testing.T) {
	e := echo.New()
	h, _ := newBusinessProfileHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/business-profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := h.GetProfile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpsertProfile_Success(t *testing.T) {
	e := echo.New()
	h, _ := newBusinessProfileHandler()
	userID := uuid.New()

	reqBody := `{
		"businessName": "Sharma Consulting",
		"businessType": "Freelancer",
		"gstin": "27AAPFU0939F1ZV",
		"pan": "AAPFU0939F",
		"address": {"street": "12 MG Road", "city": "Mumbai", "state": "Maharashtra", "pincode": "400001"}
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/business-profile", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.UpsertProfile(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BusinessProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.BusinessName != "Sharma Consulting" {
		t.Errorf("Expected business name Sharma Consulting, got %s", response.BusinessName)
	}
	if response.Address.State != "Maharashtra" {
		t.Errorf("Expected state Maharashtra, got %s", response.Address.State)
	}
	// Default terms apply when none are provided
	if response.TermsAndConditions != domain.DefaultTerms {
		t.Errorf("Expected default terms, got %q", response.TermsAndConditions)
	}
	if response.LogoURL != nil {
		t.Error("Expected no logo URL before a logo is uploaded")
	}
}

func TestUpsertProfile_ReplacesExisting(t *testing.T) {
	e := echo.New()
	h, profileRepo := newBusinessProfileHandler()
	userID := uuid.New()

	for _, name := range []string{"Old Name", "New Name"} {
		reqBody := `{"businessName": "` + name + `", "businessType": "SME", "address": {"state": "Karnataka"}}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/business-profile", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		setupUserContext(c, userID)

		if err := h.UpsertProfile(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	profile, err := profileRepo.GetByUser(userID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if profile.BusinessName != "New Name" {
		t.Errorf("Expected profile to be replaced, got %s", profile.BusinessName)
	}
}

func TestUpsertProfile_Validation(t *testing.T) {
	e := echo.New()
	h, _ := newBusinessProfileHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"businessType": "Freelancer", "address": {"state": "Goa"}}`},
		{"missing state", `{"businessName": "X", "businessType": "Freelancer"}`},
		{"bad business type", `{"businessName": "X", "businessType": "Partnership", "address": {"state": "Goa"}}`},
		{"bad gstin", `{"businessName": "X", "businessType": "SME", "gstin": "NOPE", "address": {"state": "Goa"}}`},
		{"bad pan", `{"businessName": "X", "businessType": "SME", "pan": "123", "address": {"state": "Goa"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/business-profile", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupUserContext(c, uuid.New())

			if err := h.UpsertProfile(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestUploadLogo_StorageDisabled(t *testing.T) {
	e := echo.New()
	h, _ := newBusinessProfileHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/business-profile/logo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := h.UploadLogo(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}
