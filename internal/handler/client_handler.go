package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/middleware"
	"github.com/trubalance/trubalance-backend/internal/service"
)

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// AddressRequest represents a postal address in request bodies
type AddressRequest struct {
	Street  *string `json:"street,omitempty"`
	City    *string `json:"city,omitempty"`
	State   string  `json:"state"`
	Pincode *string `json:"pincode,omitempty"`
}

// ClientRequest represents the create/update client request body
type ClientRequest struct {
	ClientName    string         `json:"clientName"`
	ContactPerson *string        `json:"contactPerson,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	GSTIN         *string        `json:"gstin,omitempty"`
	Address       AddressRequest `json:"address"`
	Notes         *string        `json:"notes,omitempty"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID            int32          `json:"id"`
	ClientName    string         `json:"clientName"`
	ContactPerson *string        `json:"contactPerson,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	GSTIN         *string        `json:"gstin,omitempty"`
	Address       domain.Address `json:"address"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedAt     string         `json:"createdAt"`
	UpdatedAt     string         `json:"updatedAt"`
}

func (r ClientRequest) toInput() service.ClientInput {
	return service.ClientInput{
		ClientName:    r.ClientName,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		GSTIN:         r.GSTIN,
		Address: domain.Address{
			Street:  r.Address.Street,
			City:    r.Address.City,
			State:   r.Address.State,
			Pincode: r.Address.Pincode,
		},
		Notes: r.Notes,
	}
}

// CreateClient godoc
// @Summary Create a client
// @Description Create a new client for invoicing
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClientRequest true "Client creation request"
// @Success 201 {object} ClientResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.CreateClient(userID, req.toInput())
	if err != nil {
		return clientErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("client_id", client.ID).
		Msg("Client created")

	return c.JSON(http.StatusCreated, toClientResponse(client))
}

// GetClients godoc
// @Summary List clients
// @Description List the user's clients, optionally filtered by a search term
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by client name or contact person"
// @Success 200 {array} ClientResponse
// @Failure 401 {object} ProblemDetails
// @Router /clients [get]
func (h *ClientHandler) GetClients(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	clients, err := h.clientService.GetClients(userID, c.QueryParam("search"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list clients")
		return NewInternalError(c, "Failed to list clients")
	}

	responses := make([]ClientResponse, 0, len(clients))
	for _, client := range clients {
		responses = append(responses, toClientResponse(client))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetClient handles GET /clients/:id
func (h *ClientHandler) GetClient(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	client, err := h.clientService.GetClientByID(userID, int32(id))
	if err != nil {
		return clientErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toClientResponse(client))
}

// UpdateClient godoc
// @Summary Update a client
// @Description Update an existing client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Client ID"
// @Param request body ClientRequest true "Client update request"
// @Success 200 {object} ClientResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	client, err := h.clientService.UpdateClient(userID, int32(id), req.toInput())
	if err != nil {
		return clientErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, toClientResponse(client))
}

// DeleteClient handles DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid client ID", nil)
	}

	if err := h.clientService.DeleteClient(userID, int32(id)); err != nil {
		return clientErrorResponse(c, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("client_id", int32(id)).
		Msg("Client deleted")

	return c.NoContent(http.StatusNoContent)
}

// clientErrorResponse maps client domain errors to problem responses
func clientErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return NewNotFoundError(c, "Client not found")
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "clientName", Message: "Client name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "clientName", Message: "Client name is too long"},
		})
	case errors.Is(err, domain.ErrClientStateRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "address.state", Message: "State is required for GST calculation"},
		})
	case errors.Is(err, domain.ErrInvalidGSTIN):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "gstin", Message: "Invalid GSTIN format"},
		})
	case errors.Is(err, domain.ErrNotesTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes are too long"},
		})
	default:
		log.Error().Err(err).Msg("Client operation failed")
		return NewInternalError(c, "Client operation failed")
	}
}

func toClientResponse(client *domain.Client) ClientResponse {
	return ClientResponse{
		ID:            client.ID,
		ClientName:    client.ClientName,
		ContactPerson: client.ContactPerson,
		Email:         client.Email,
		Phone:         client.Phone,
		GSTIN:         client.GSTIN,
		Address:       client.Address,
		Notes:         client.Notes,
		CreatedAt:     client.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     client.UpdatedAt.Format(time.RFC3339),
	}
}
