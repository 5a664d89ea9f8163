package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// StatsService aggregates dashboard figures across income and expenses
type StatsService struct {
	incomeRepo  domain.IncomeRepository
	expenseRepo domain.ExpenseRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(incomeRepo domain.IncomeRepository, expenseRepo domain.ExpenseRepository) *StatsService {
	return &StatsService{
		incomeRepo:  incomeRepo,
		expenseRepo: expenseRepo,
	}
}

// Overview is the top-level dashboard summary
type Overview struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Balance       decimal.Decimal `json:"balance"`
	IncomeCount   int64           `json:"incomeCount"`
	ExpenseCount  int64           `json:"expenseCount"`
	SavingsRate   decimal.Decimal `json:"savingsRate"`
}

// MonthlyTrend pairs income and expense totals for one month
type MonthlyTrend struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// GetOverview returns lifetime totals and the savings rate
// (percentage of income not spent, 0 when there is no income).
func (s *StatsService) GetOverview(userID uuid.UUID) (*Overview, error) {
	totalIncome, err := s.incomeRepo.TotalAmount(userID)
	if err != nil {
		return nil, err
	}
	totalExpenses, err := s.expenseRepo.TotalAmount(userID)
	if err != nil {
		return nil, err
	}
	incomeCount, err := s.incomeRepo.Count(userID)
	if err != nil {
		return nil, err
	}
	expenseCount, err := s.expenseRepo.Count(userID)
	if err != nil {
		return nil, err
	}

	savingsRate := decimal.Zero
	if totalIncome.Sign() > 0 {
		savingsRate = totalIncome.Sub(totalExpenses).Div(totalIncome).Mul(hundred).Round(2)
	}

	return &Overview{
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Balance:       totalIncome.Sub(totalExpenses),
		IncomeCount:   incomeCount,
		ExpenseCount:  expenseCount,
		SavingsRate:   savingsRate,
	}, nil
}

// IncomeByCategory returns income totals per category, largest first
func (s *StatsService) IncomeByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	return s.incomeRepo.SummaryByCategory(userID)
}

// ExpensesByCategory returns expense totals per category, largest first
func (s *StatsService) ExpensesByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	return s.expenseRepo.SummaryByCategory(userID)
}

// MonthlyTrends returns income vs expenses for the last six months,
// oldest first. Months with no activity on either side are omitted.
func (s *StatsService) MonthlyTrends(userID uuid.UUID) ([]*MonthlyTrend, error) {
	since := time.Now().AddDate(0, -6, 0)

	incomeTotals, err := s.incomeRepo.MonthlyTotals(userID, since)
	if err != nil {
		return nil, err
	}
	expenseTotals, err := s.expenseRepo.MonthlyTotals(userID, since)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[[2]int]*MonthlyTrend)
	for _, total := range incomeTotals {
		key := [2]int{total.Year, total.Month}
		byMonth[key] = &MonthlyTrend{Year: total.Year, Month: total.Month, Income: total.Total}
	}
	for _, total := range expenseTotals {
		key := [2]int{total.Year, total.Month}
		if trend, ok := byMonth[key]; ok {
			trend.Expenses = total.Total
		} else {
			byMonth[key] = &MonthlyTrend{Year: total.Year, Month: total.Month, Expenses: total.Total}
		}
	}

	trends := make([]*MonthlyTrend, 0, len(byMonth))
	for _, trend := range byMonth {
		trend.Net = trend.Income.Sub(trend.Expenses)
		trends = append(trends, trend)
	}
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})
	return trends, nil
}
