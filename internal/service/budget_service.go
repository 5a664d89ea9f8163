package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/util"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

// BudgetService handles monthly budget business logic
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	expenseRepo    domain.ExpenseRepository
	incomeRepo     domain.IncomeRepository
	optimizer      *BudgetOptimizerService
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, expenseRepo domain.ExpenseRepository, incomeRepo domain.IncomeRepository, optimizer *BudgetOptimizerService) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
		incomeRepo:  incomeRepo,
		optimizer:   optimizer,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetInput holds the input for setting a budget
type BudgetInput struct {
	Category domain.ExpenseCategory
	Amount   decimal.Decimal
	Month    string
}

// SetBudget creates or replaces the budget for (category, month)
func (s *BudgetService) SetBudget(userID uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	if !domain.ValidBudgetCategory(input.Category) {
		return nil, domain.ErrInvalidCategory
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidBudgetMonth(input.Month) {
		return nil, domain.ErrInvalidBudgetMonth
	}

	budget, err := s.budgetRepo.Upsert(&domain.Budget{
		UserID:   userID,
		Category: input.Category,
		Amount:   input.Amount,
		Month:    input.Month,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(budget))
	return budget, nil
}

// GetBudgets lists the user's budgets, optionally for a single month
func (s *BudgetService) GetBudgets(userID uuid.UUID, month string) ([]*domain.Budget, error) {
	if month != "" && !domain.ValidBudgetMonth(month) {
		return nil, domain.ErrInvalidBudgetMonth
	}
	return s.budgetRepo.GetByUser(userID, month)
}

// DeleteBudget removes a budget
func (s *BudgetService) DeleteBudget(userID uuid.UUID, id int32) error {
	if err := s.budgetRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.BudgetDeleted(map[string]int32{"id": id}))
	return nil
}

// SuggestBudget produces a 50/30/20 allocation for the user. When
// monthlyIncome is zero it is derived from the user's average income
// over the last three months. Spending history from the same window
// weights the split inside each bucket.
func (s *BudgetService) SuggestBudget(userID uuid.UUID, monthlyIncome decimal.Decimal) (*BudgetSuggestion, error) {
	if monthlyIncome.Sign() <= 0 {
		derived, err := s.averageMonthlyIncome(userID)
		if err != nil {
			return nil, err
		}
		monthlyIncome = derived
	}

	history, err := s.spendingHistory(userID)
	if err != nil {
		return nil, err
	}
	return s.optimizer.Suggest(monthlyIncome, history)
}

// SuggestFromHistory produces a per-category budget from the last three
// months of spending with a growth buffer.
func (s *BudgetService) SuggestFromHistory(userID uuid.UUID) (map[domain.ExpenseCategory]decimal.Decimal, error) {
	history, err := s.spendingHistory(userID)
	if err != nil {
		return nil, err
	}
	return s.optimizer.ThreeMonthAverage(history), nil
}

// Performance compares the month's budgets against actual spending
func (s *BudgetService) Performance(userID uuid.UUID, month string) ([]BudgetPerformance, error) {
	if !domain.ValidBudgetMonth(month) {
		return nil, domain.ErrInvalidBudgetMonth
	}

	budgets, err := s.budgetRepo.GetByUser(userID, month)
	if err != nil {
		return nil, err
	}

	start, end, err := util.MonthBounds(month)
	if err != nil {
		return nil, domain.ErrInvalidBudgetMonth
	}
	expenses, err := s.expenseRepo.GetByUser(userID, &start, &end)
	if err != nil {
		return nil, err
	}

	budgeted := make(map[domain.ExpenseCategory]decimal.Decimal, len(budgets))
	for _, budget := range budgets {
		budgeted[budget.Category] = budget.Amount
	}
	spent := make(map[domain.ExpenseCategory]decimal.Decimal)
	for _, expense := range expenses {
		spent[expense.Category] = spent[expense.Category].Add(expense.Amount)
	}

	return s.optimizer.AnalyzePerformance(budgeted, spent), nil
}

// EmergencyFund returns 3/6/12 month emergency fund targets from the
// user's average monthly spending over the last three months.
func (s *BudgetService) EmergencyFund(userID uuid.UUID) (map[string]decimal.Decimal, error) {
	history, err := s.spendingHistory(userID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, h := range history {
		total = total.Add(h.Total)
	}
	monthly := total.Div(decimal.NewFromInt(3)).Round(2)
	return s.optimizer.EmergencyFundTargets(monthly), nil
}

func (s *BudgetService) spendingHistory(userID uuid.UUID) ([]CategorySpend, error) {
	from := time.Now().AddDate(0, -3, 0)
	expenses, err := s.expenseRepo.GetByUser(userID, &from, nil)
	if err != nil {
		return nil, err
	}

	totals := make(map[domain.ExpenseCategory]decimal.Decimal)
	for _, expense := range expenses {
		totals[expense.Category] = totals[expense.Category].Add(expense.Amount)
	}

	history := make([]CategorySpend, 0, len(totals))
	for category, total := range totals {
		history = append(history, CategorySpend{Category: category, Total: total})
	}
	return history, nil
}

func (s *BudgetService) averageMonthlyIncome(userID uuid.UUID) (decimal.Decimal, error) {
	from := time.Now().AddDate(0, -3, 0)
	incomes, err := s.incomeRepo.GetByUser(userID, &from, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if len(incomes) == 0 {
		return decimal.Zero, domain.ErrInvalidIncome
	}

	total := decimal.Zero
	for _, income := range incomes {
		total = total.Add(income.Amount)
	}
	return total.Div(decimal.NewFromInt(3)).Round(2), nil
}
