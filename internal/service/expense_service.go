package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

// ExpenseService handles expense tracking business logic
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	categorizer    *CategorizerService
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, categorizer *CategorizerService) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		categorizer: categorizer,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// ExpenseInput holds the input for creating or updating an expense
type ExpenseInput struct {
	Title        string
	Amount       decimal.Decimal
	Category     domain.ExpenseCategory
	Vendor       *string
	GSTAmount    decimal.Decimal
	IsGSTExpense bool
	Date         *time.Time
	Icon         string
}

func (s *ExpenseService) validate(input *ExpenseInput) error {
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
	if input.Category != "" && !domain.ValidExpenseCategory(input.Category) {
		return domain.ErrInvalidCategory
	}
	if input.GSTAmount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if input.Vendor != nil && len(*input.Vendor) > domain.MaxVendorLength {
		return domain.ErrNameTooLong
	}
	return nil
}

// CreateExpense creates a new expense. The categorizer's suggestion is
// always recorded; it also fills the category when the caller omits one.
func (s *ExpenseService) CreateExpense(userID uuid.UUID, input ExpenseInput) (*domain.Expense, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	suggested := s.categorizer.Categorize(input.Title, TransactionKindExpense)
	category := input.Category
	if category == "" {
		category = domain.ExpenseCategory(suggested.Category)
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	expense, err := s.expenseRepo.Create(&domain.Expense{
		UserID:            userID,
		Title:             input.Title,
		Amount:            input.Amount,
		Category:          category,
		Vendor:            input.Vendor,
		GSTAmount:         input.GSTAmount,
		IsGSTExpense:      input.IsGSTExpense,
		SuggestedCategory: &suggested.Category,
		Date:              date,
		Icon:              input.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseCreated(expense))
	return expense, nil
}

// GetExpenses lists the user's expenses within an optional date range
func (s *ExpenseService) GetExpenses(userID uuid.UUID, from, to *time.Time) ([]*domain.Expense, error) {
	return s.expenseRepo.GetByUser(userID, from, to)
}

// GetExpenseByID retrieves a single expense
func (s *ExpenseService) GetExpenseByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(userID, id)
}

// UpdateExpense updates an existing expense. A category change away from
// the original suggestion feeds the categorizer's correction log.
func (s *ExpenseService) UpdateExpense(userID uuid.UUID, id int32, input ExpenseInput) (*domain.Expense, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	if input.Category == "" {
		return nil, domain.ErrInvalidCategory
	}

	existing, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if existing.SuggestedCategory != nil && *existing.SuggestedCategory != string(input.Category) {
		s.categorizer.LearnFromCorrection(userID, input.Title, string(input.Category), TransactionKindExpense)
	}

	date := existing.Date
	if input.Date != nil {
		date = *input.Date
	}

	expense, err := s.expenseRepo.Update(userID, id, &domain.Expense{
		Title:             input.Title,
		Amount:            input.Amount,
		Category:          input.Category,
		Vendor:            input.Vendor,
		ReceiptPath:       existing.ReceiptPath,
		GSTAmount:         input.GSTAmount,
		IsGSTExpense:      input.IsGSTExpense,
		SuggestedCategory: existing.SuggestedCategory,
		Date:              date,
		Icon:              input.Icon,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseUpdated(expense))
	return expense, nil
}

// DeleteExpense removes an expense
func (s *ExpenseService) DeleteExpense(userID uuid.UUID, id int32) error {
	if err := s.expenseRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.ExpenseDeleted(map[string]int32{"id": id}))
	return nil
}

// SetReceipt stores the uploaded receipt path on an expense
func (s *ExpenseService) SetReceipt(userID uuid.UUID, id int32, receiptPath string) (*domain.Expense, error) {
	existing, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	existing.ReceiptPath = &receiptPath
	return s.expenseRepo.Update(userID, id, existing)
}

// SuggestCategory runs the keyword categorizer over a title
func (s *ExpenseService) SuggestCategory(title string) Categorization {
	return s.categorizer.Categorize(title, TransactionKindExpense)
}
