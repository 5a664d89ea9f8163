package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
	"github.com/trubalance/trubalance-backend/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

// setupUserContext injects an authenticated user ID into the request context
func setupUserContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func newAuthHandler() (*AuthHandler, *testutil.MockUserRepository) {
	userRepo := testutil.NewMockUserRepository()
	authService := service.NewAuthService(userRepo, "test-secret-key-that-is-long-enough", time.Hour, bcrypt.MinCost)
	return NewAuthHandler(authService), userRepo
}

func TestRegister_Success(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	reqBody := `{"name": "Priya Sharma", "email": "priya@example.com", "password": "correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected a token in the response")
	}
	if response.User.Email != "priya@example.com" {
		t.Errorf("Expected email priya@example.com, got %s", response.User.Email)
	}
	if response.User.Name != "Priya Sharma" {
		t.Errorf("Expected name Priya Sharma, got %s", response.User.Name)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	reqBody := `{"name": "Priya", "email": "priya@example.com", "password": "correct-horse"}`
	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(reqBody))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.Register(c); err != nil {
			t.Fatalf("Attempt %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != wantStatus {
			t.Errorf("Attempt %d: expected status %d, got %d", i+1, wantStatus, rec.Code)
		}
	}
}

func TestRegister_Validation(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email": "a@example.com", "password": "correct-horse"}`},
		{"bad email", `{"name": "A", "email": "not-an-email", "password": "correct-horse"}`},
		{"short password", `{"name": "A", "email": "a@example.com", "password": "short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.Register(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	register := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		strings.NewReader(`{"name": "Priya", "email": "priya@example.com", "password": "correct-horse"}`))
	register.Header.Set("Content-Type", "application/json")
	if err := h.Register(e.NewContext(register, httptest.NewRecorder())); err != nil {
		t.Fatalf("register: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email": "Priya@Example.com", "password": "correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected a token in the response")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email": "nobody@example.com", "password": "whatever-it-is"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestMe_Success(t *testing.T) {
	e := echo.New()
	h, userRepo := newAuthHandler()

	user, err := userRepo.Create(&domain.User{Name: "Priya", Email: "priya@example.com", PasswordHash: "irrelevant"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, user.ID)

	if err := h.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != user.ID.String() {
		t.Errorf("Expected user ID %s, got %s", user.ID, response.ID)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
