package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/trubalance/trubalance-backend/internal/service"
)

func newGSTHandler() *GSTHandler {
	return NewGSTHandler(service.NewGSTService())
}

func TestCalculateGST_IntraState(t *testing.T) {
	e := echo.New()
	h := newGSTHandler()

	reqBody := `{"sellerState": "Maharashtra", "buyerState": "Maharashtra", "amount": "10000", "gstRate": 18}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/calculate", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CalculateGST(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CalculateGSTResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.CGST != "900.00" {
		t.Errorf("Expected CGST 900.00, got %s", response.CGST)
	}
	if response.SGST != "900.00" {
		t.Errorf("Expected SGST 900.00, got %s", response.SGST)
	}
	if response.IGST != "0.00" {
		t.Errorf("Expected IGST 0.00, got %s", response.IGST)
	}
	if response.TotalTax != "1800.00" {
		t.Errorf("Expected total tax 1800.00, got %s", response.TotalTax)
	}
}

func TestCalculateGST_InterState(t *testing.T) {
	e := echo.New()
	h := newGSTHandler()

	reqBody := `{"sellerState": "Maharashtra", "buyerState": "Karnataka", "amount": "10000", "gstRate": 18}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/calculate", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CalculateGST(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CalculateGSTResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.IGST != "1800.00" {
		t.Errorf("Expected IGST 1800.00, got %s", response.IGST)
	}
	if response.CGST != "0.00" || response.SGST != "0.00" {
		t.Errorf("Expected CGST/SGST 0.00, got %s/%s", response.CGST, response.SGST)
	}
}

func TestCalculateGST_Validation(t *testing.T) {
	e := echo.New()
	h := newGSTHandler()

	tests := []struct {
		name string
		body string
	}{
		{"bad amount", `{"sellerState": "Goa", "buyerState": "Goa", "amount": "x", "gstRate": 18}`},
		{"negative amount", `{"sellerState": "Goa", "buyerState": "Goa", "amount": "-100", "gstRate": 18}`},
		{"missing states", `{"amount": "100", "gstRate": 18}`},
		{"invalid rate", `{"sellerState": "Goa", "buyerState": "Goa", "amount": "100", "gstRate": 15}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/gst/calculate", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.CalculateGST(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestValidateGSTIN(t *testing.T) {
	e := echo.New()
	h := newGSTHandler()

	tests := []struct {
		name      string
		gstin     string
		valid     bool
		stateName string
	}{
		{"valid maharashtra gstin", "27AAPFU0939F1ZV", true, "Maharashtra"},
		{"wrong length", "27AAPFU0939F1Z", false, ""},
		{"bad structure", "XXAAPFU0939F1ZV", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/gst/validate-gstin?gstin="+tt.gstin, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.ValidateGSTIN(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rec.Code)
			}

			var response ValidateGSTINResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, response.Valid)
			}
			if response.StateName != tt.stateName {
				t.Errorf("Expected state name %q, got %q", tt.stateName, response.StateName)
			}
		})
	}
}

func TestValidatePAN(t *testing.T) {
	e := echo.New()
	h := newGSTHandler()

	tests := []struct {
		name  string
		pan   string
		valid bool
	}{
		{"valid pan", "AAPFU0939F", true},
		{"lowercase pan normalized", "aapfu0939f", true},
		{"wrong shape", "1234567890", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/gst/validate-pan?pan="+tt.pan, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.ValidatePAN(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rec.Code)
			}

			var response ValidatePANResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response.Valid != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, response.Valid)
			}
		})
	}
}
