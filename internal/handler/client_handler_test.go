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

func newClientHandler() (*ClientHandler, *testutil.MockClientRepository) {
	clientRepo := testutil.NewMockClientRepository()
	clientService := service.NewClientService(clientRepo, service.NewGSTService())
	return NewClientHandler(clientService), clientRepo
}

func TestCreateClient_Success(t *testing.T) {
	e := echo.New()
	h, _ := newClientHandler()
	userID := uuid.New()

	reqBody := `{"clientName": "Acme Traders", "gstin": "27AAPFU0939F1ZV", "address": {"city": "Mumbai", "state": "Maharashtra"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.CreateClient(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ClientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ClientName != "Acme Traders" {
		t.Errorf("Expected client name Acme Traders, got %s", response.ClientName)
	}
	if response.Address.State != "Maharashtra" {
		t.Errorf("Expected state Maharashtra, got %s", response.Address.State)
	}
	if response.GSTIN == nil || *response.GSTIN != "27AAPFU0939F1ZV" {
		t.Errorf("Expected GSTIN to round-trip, got %v", response.GSTIN)
	}
}

func TestCreateClient_Validation(t *testing.T) {
	e := echo.New()
	h, _ := newClientHandler()
	userID := uuid.New()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"address": {"state": "Karnataka"}}`},
		{"missing state", `{"clientName": "Acme"}`},
		{"bad gstin", `{"clientName": "Acme", "gstin": "NOTAGSTIN", "address": {"state": "Karnataka"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupUserContext(c, userID)

			if err := h.CreateClient(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetClients_SearchAndIsolation(t *testing.T) {
	e := echo.New()
	h, clientRepo := newClientHandler()
	userID := uuid.New()
	otherID := uuid.New()

	for _, seed := range []struct {
		owner uuid.UUID
		name  string
	}{
		{userID, "Acme Traders"},
		{userID, "Bharat Supplies"},
		{otherID, "Acme Exports"},
	} {
		if _, err := clientRepo.Create(&domain.Client{
			UserID:     seed.owner,
			ClientName: seed.name,
			Address:    domain.Address{State: "Karnataka"},
		}); err != nil {
			t.Fatalf("seed client: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients?search=acme", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := h.GetClients(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []ClientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 client, got %d", len(response))
	}
	if response[0].ClientName != "Acme Traders" {
		t.Errorf("Expected Acme Traders, got %s", response[0].ClientName)
	}
}

func TestUpdateClient_NotFound(t *testing.T) {
	e := echo.New()
	h, _ := newClientHandler()

	reqBody := `{"clientName": "Acme", "address": {"state": "Karnataka"}}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/clients/99", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")
	setupUserContext(c, uuid.New())

	if err := h.UpdateClient(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteClient_Success(t *testing.T) {
	e := echo.New()
	h, clientRepo := newClientHandler()
	userID := uuid.New()

	client, err := clientRepo.Create(&domain.Client{
		UserID:     userID,
		ClientName: "Acme",
		Address:    domain.Address{State: "Karnataka"},
	})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/clients/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupUserContext(c, userID)

	if err := h.DeleteClient(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, err := clientRepo.GetByID(userID, client.ID); err == nil {
		t.Error("Expected client to be deleted")
	}
}
