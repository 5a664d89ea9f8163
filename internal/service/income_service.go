package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

// IncomeService handles income tracking business logic
type IncomeService struct {
	incomeRepo     domain.IncomeRepository
	categorizer    *CategorizerService
	eventPublisher websocket.EventPublisher
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(incomeRepo domain.IncomeRepository, categorizer *CategorizerService) *IncomeService {
	return &IncomeService{
		incomeRepo:  incomeRepo,
		categorizer: categorizer,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *IncomeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *IncomeService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// IncomeInput holds the input for creating or updating an income entry
type IncomeInput struct {
	Title    string
	Amount   decimal.Decimal
	Category domain.IncomeCategory
	Date     *time.Time
	Icon     string
}

func (s *IncomeService) validate(input *IncomeInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return domain.ErrNameRequired
	}
	if len(input.Title) > domain.MaxTitleLength {
		return domain.ErrTitleTooLong
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if input.Category != "" && !domain.ValidIncomeCategory(input.Category) {
		return domain.ErrInvalidCategory
	}
	return nil
}

// CreateIncome creates a new income entry. A missing category falls back
// to the keyword categorizer's suggestion.
func (s *IncomeService) CreateIncome(userID uuid.UUID, input IncomeInput) (*domain.Income, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	category := input.Category
	if category == "" {
		suggested := s.categorizer.Categorize(input.Title, TransactionKindIncome)
		category = domain.IncomeCategory(suggested.Category)
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	income, err := s.incomeRepo.Create(&domain.Income{
		UserID:   userID,
		Title:    input.Title,
		Amount:   input.Amount,
		Category: category,
		Date:     date,
		Icon:     input.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.IncomeCreated(income))
	return income, nil
}

// GetIncomes lists the user's income within an optional date range
func (s *IncomeService) GetIncomes(userID uuid.UUID, from, to *time.Time) ([]*domain.Income, error) {
	return s.incomeRepo.GetByUser(userID, from, to)
}

// GetIncomeByID retrieves a single income entry
func (s *IncomeService) GetIncomeByID(userID uuid.UUID, id int32) (*domain.Income, error) {
	return s.incomeRepo.GetByID(userID, id)
}

// UpdateIncome updates an existing income entry
func (s *IncomeService) UpdateIncome(userID uuid.UUID, id int32, input IncomeInput) (*domain.Income, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	if input.Category == "" {
		return nil, domain.ErrInvalidCategory
	}

	existing, err := s.incomeRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	date := existing.Date
	if input.Date != nil {
		date = *input.Date
	}

	income, err := s.incomeRepo.Update(userID, id, &domain.Income{
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
		Date:     date,
		Icon:     input.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.IncomeUpdated(income))
	return income, nil
}

// DeleteIncome removes an income entry
func (s *IncomeService) DeleteIncome(userID uuid.UUID, id int32) error {
	if err := s.incomeRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.IncomeDeleted(map[string]int32{"id": id}))
	return nil
}

// SuggestCategory runs the keyword categorizer over a title
func (s *IncomeService) SuggestCategory(title string) Categorization {
	return s.categorizer.Categorize(title, TransactionKindIncome)
}
