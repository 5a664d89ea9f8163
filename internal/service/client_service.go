package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

// ClientService handles client (customer) business logic
type ClientService struct {
	clientRepo     domain.ClientRepository
	gstService     *GSTService
	eventPublisher websocket.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo domain.ClientRepository, gstService *GSTService) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		gstService: gstService,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ClientService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ClientService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// ClientInput holds the input for creating or updating a client
type ClientInput struct {
	ClientName    string
	ContactPerson *string
	Email         *string
	Phone         *string
	GSTIN         *string
	Address       domain.Address
	Notes         *string
}

func (s *ClientService) validate(input *ClientInput) error {
	input.ClientName = strings.TrimSpace(input.ClientName)
	if input.ClientName == "" {
		return domain.ErrNameRequired
	}
	if len(input.ClientName) > domain.MaxClientNameLength {
		return domain.ErrNameTooLong
	}

	// State drives the CGST/SGST vs IGST decision on every invoice for
	// this client, so it is the one mandatory address field.
	input.Address.State = strings.TrimSpace(input.Address.State)
	if input.Address.State == "" {
		return domain.ErrClientStateRequired
	}

	if input.GSTIN != nil {
		trimmed := strings.ToUpper(strings.TrimSpace(*input.GSTIN))
		if trimmed == "" {
			input.GSTIN = nil
		} else {
			if !s.gstService.ValidateGSTIN(trimmed) {
				return domain.ErrInvalidGSTIN
			}
			input.GSTIN = &trimmed
		}
	}

	if input.Notes != nil && len(*input.Notes) > domain.MaxClientNotesLength {
		return domain.ErrNotesTooLong
	}
	return nil
}

// CreateClient creates a new client with validation
func (s *ClientService) CreateClient(userID uuid.UUID, input ClientInput) (*domain.Client, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.Create(&domain.Client{
		UserID:        userID,
		ClientName:    input.ClientName,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		GSTIN:         input.GSTIN,
		Address:       input.Address,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ClientCreated(client))
	return client, nil
}

// GetClients lists the user's clients, optionally filtered by a search term
func (s *ClientService) GetClients(userID uuid.UUID, search string) ([]*domain.Client, error) {
	return s.clientRepo.GetByUser(userID, strings.TrimSpace(search))
}

// GetClientByID retrieves a single client
func (s *ClientService) GetClientByID(userID uuid.UUID, id int32) (*domain.Client, error) {
	return s.clientRepo.GetByID(userID, id)
}

// UpdateClient updates an existing client with validation
func (s *ClientService) UpdateClient(userID uuid.UUID, id int32, input ClientInput) (*domain.Client, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.Update(userID, id, &domain.Client{
		ClientName:    input.ClientName,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		GSTIN:         input.GSTIN,
		Address:       input.Address,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ClientUpdated(client))
	return client, nil
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(userID uuid.UUID, id int32) error {
	if err := s.clientRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.ClientDeleted(map[string]int32{"id": id}))
	return nil
}
