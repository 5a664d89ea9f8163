package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/util"
)

// Insight thresholds. Differences below these are noise, not stories.
var (
	weekendDiffThreshold = decimal.NewFromInt(20)
	trendThreshold       = decimal.NewFromInt(15)
)

// Insight is one observation about the user's spending
type Insight struct {
	Type     string                 `json:"type"`
	Category domain.ExpenseCategory `json:"category"`
	Message  string                 `json:"message"`
}

// SpendingPatterns is the weekend/weekday split plus detected insights
type SpendingPatterns struct {
	WeekendTotal decimal.Decimal `json:"weekendTotal"`
	WeekdayTotal decimal.Decimal `json:"weekdayTotal"`
	Insights     []Insight       `json:"insights"`
}

// Advice is one actionable recommendation
type Advice struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// FinancialAdvice bundles the month's health check
type FinancialAdvice struct {
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpenses   decimal.Decimal `json:"totalExpenses"`
	Savings         decimal.Decimal `json:"savings"`
	SavingsRate     decimal.Decimal `json:"savingsRate"`
	HealthScore     int             `json:"healthScore"`
	EmergencyTarget decimal.Decimal `json:"emergencyTarget"`
	Advice          []Advice        `json:"advice"`
}

// CategoryAmount is a category paired with a money total
type CategoryAmount struct {
	Category domain.ExpenseCategory `json:"category"`
	Amount   decimal.Decimal        `json:"amount"`
}

// MonthlyReport is the full month-end summary
type MonthlyReport struct {
	Month             string                     `json:"month"`
	TotalIncome       decimal.Decimal            `json:"totalIncome"`
	TotalExpenses     decimal.Decimal            `json:"totalExpenses"`
	Savings           decimal.Decimal            `json:"savings"`
	SavingsRate       decimal.Decimal            `json:"savingsRate"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expenseByCategory"`
	IncomeByCategory  map[string]decimal.Decimal `json:"incomeByCategory"`
	TopSpending       []CategoryAmount           `json:"topSpending"`
	BudgetPerformance []BudgetPerformance        `json:"budgetPerformance"`
	Highlights        []string                   `json:"highlights"`
	IncomeCount       int                        `json:"incomeCount"`
	ExpenseCount      int                        `json:"expenseCount"`
}

// InsightsService detects spending patterns and produces advice
type InsightsService struct {
	incomeRepo  domain.IncomeRepository
	expenseRepo domain.ExpenseRepository
	budgetRepo  domain.BudgetRepository
	optimizer   *BudgetOptimizerService
}

// NewInsightsService creates a new InsightsService
func NewInsightsService(incomeRepo domain.IncomeRepository, expenseRepo domain.ExpenseRepository, budgetRepo domain.BudgetRepository, optimizer *BudgetOptimizerService) *InsightsService {
	return &InsightsService{
		incomeRepo:  incomeRepo,
		expenseRepo: expenseRepo,
		budgetRepo:  budgetRepo,
		optimizer:   optimizer,
	}
}

// SpendingPatterns analyzes the last 30 days for weekend vs weekday
// habits, month-over-month category trends and outlier expenses. At
// most 10 insights are returned.
func (s *InsightsService) SpendingPatterns(userID uuid.UUID, now time.Time) (*SpendingPatterns, error) {
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	sixtyDaysAgo := now.AddDate(0, 0, -60)

	current, err := s.expenseRepo.GetByUser(userID, &thirtyDaysAgo, nil)
	if err != nil {
		return nil, err
	}
	previous, err := s.expenseRepo.GetByUser(userID, &sixtyDaysAgo, &thirtyDaysAgo)
	if err != nil {
		return nil, err
	}

	patterns := &SpendingPatterns{
		WeekendTotal: decimal.Zero,
		WeekdayTotal: decimal.Zero,
	}

	weekendByCategory := make(map[domain.ExpenseCategory]decimal.Decimal)
	weekdayByCategory := make(map[domain.ExpenseCategory]decimal.Decimal)
	for _, expense := range current {
		day := expense.Date.Weekday()
		if day == time.Saturday || day == time.Sunday {
			patterns.WeekendTotal = patterns.WeekendTotal.Add(expense.Amount)
			weekendByCategory[expense.Category] = weekendByCategory[expense.Category].Add(expense.Amount)
		} else {
			patterns.WeekdayTotal = patterns.WeekdayTotal.Add(expense.Amount)
			weekdayByCategory[expense.Category] = weekdayByCategory[expense.Category].Add(expense.Amount)
		}
	}

	// A 30-day window holds roughly 8 weekend days and 22 weekdays.
	eight := decimal.NewFromInt(8)
	twentyTwo := decimal.NewFromInt(22)
	var insights []Insight
	for _, category := range categoriesOf(weekendByCategory, weekdayByCategory) {
		weekendAvg := weekendByCategory[category].Div(eight)
		weekdayAvg := weekdayByCategory[category].Div(twentyTwo)
		if weekendAvg.Sign() <= 0 || weekdayAvg.Sign() <= 0 {
			continue
		}
		diff := weekendAvg.Sub(weekdayAvg).Div(weekdayAvg).Mul(hundred)
		if diff.Abs().GreaterThan(weekendDiffThreshold) {
			direction := "more"
			if diff.Sign() < 0 {
				direction = "less"
			}
			insights = append(insights, Insight{
				Type:     "weekend_weekday",
				Category: category,
				Message:  fmt.Sprintf("You spend %s%% %s on %s during weekends", diff.Abs().Round(0), direction, category),
			})
		}
	}

	currentByCategory := sumByCategory(current)
	previousByCategory := sumByCategory(previous)
	for _, category := range categoriesOf(currentByCategory, nil) {
		prev := previousByCategory[category]
		if prev.Sign() <= 0 {
			continue
		}
		change := currentByCategory[category].Sub(prev).Div(prev).Mul(hundred)
		if change.Abs().GreaterThan(trendThreshold) {
			direction := "increased"
			if change.Sign() < 0 {
				direction = "decreased"
			}
			insights = append(insights, Insight{
				Type:     "trend",
				Category: category,
				Message:  fmt.Sprintf("Your %s spending %s by %s%% this month", category, direction, change.Abs().Round(0)),
			})
		}
	}

	insights = append(insights, detectOutliers(current)...)

	if len(insights) > 10 {
		insights = insights[:10]
	}
	patterns.Insights = insights
	return patterns, nil
}

// detectOutliers flags expenses more than two standard deviations above
// their category mean. Categories need at least three data points.
func detectOutliers(expenses []*domain.Expense) []Insight {
	byCategory := make(map[domain.ExpenseCategory][]decimal.Decimal)
	for _, expense := range expenses {
		byCategory[expense.Category] = append(byCategory[expense.Category], expense.Amount)
	}

	categories := make([]domain.ExpenseCategory, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	var insights []Insight
	for _, category := range categories {
		amounts := byCategory[category]
		if len(amounts) < 3 {
			continue
		}

		n := decimal.NewFromInt(int64(len(amounts)))
		sum := decimal.Zero
		for _, amount := range amounts {
			sum = sum.Add(amount)
		}
		mean := sum.Div(n)

		variance := decimal.Zero
		for _, amount := range amounts {
			d := amount.Sub(mean)
			variance = variance.Add(d.Mul(d))
		}
		variance = variance.Div(n)

		stdDev := decimalSqrt(variance)
		threshold := mean.Add(stdDev.Mul(two))
		for _, amount := range amounts {
			if amount.GreaterThan(threshold) {
				insights = append(insights, Insight{
					Type:     "outlier",
					Category: category,
					Message:  fmt.Sprintf("Unusual %s %s expense detected", amount.Round(0), category),
				})
			}
		}
	}
	return insights
}

// Advise reviews the calendar month containing now and produces ranked
// advice plus a health score.
func (s *InsightsService) Advise(userID uuid.UUID, now time.Time) (*FinancialAdvice, error) {
	month := util.FormatMonth(now)
	start, end, err := util.MonthBounds(month)
	if err != nil {
		return nil, err
	}

	incomes, err := s.incomeRepo.GetByUser(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.GetByUser(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByUser(userID, month)
	if err != nil {
		return nil, err
	}

	totalIncome := decimal.Zero
	for _, income := range incomes {
		totalIncome = totalIncome.Add(income.Amount)
	}
	totalExpenses := decimal.Zero
	for _, expense := range expenses {
		totalExpenses = totalExpenses.Add(expense.Amount)
	}
	savings := totalIncome.Sub(totalExpenses)

	savingsRate := decimal.Zero
	if totalIncome.Sign() > 0 {
		savingsRate = savings.Div(totalIncome).Mul(hundred)
	}

	var advice []Advice
	switch {
	case savingsRate.LessThan(decimal.NewFromInt(10)):
		advice = append(advice, Advice{
			Type:     "warning",
			Title:    "Low Savings Rate",
			Message:  fmt.Sprintf("Your savings rate is %s%%. Aim for at least 20%% to build financial security.", savingsRate.Round(0)),
			Priority: "high",
		})
	case savingsRate.GreaterThanOrEqual(decimal.NewFromInt(30)):
		advice = append(advice, Advice{
			Type:     "success",
			Title:    "Excellent Savings",
			Message:  fmt.Sprintf("You're saving %s%% of your income. Keep it up.", savingsRate.Round(0)),
			Priority: "low",
		})
	default:
		advice = append(advice, Advice{
			Type:     "info",
			Title:    "Good Savings Rate",
			Message:  fmt.Sprintf("You're saving %s%% of your income. Try to push it toward 25-30%%.", savingsRate.Round(0)),
			Priority: "medium",
		})
	}

	spending := sumByCategory(expenses)
	if totalIncome.Sign() > 0 {
		foodPercent := spending[domain.ExpenseCategoryFood].Div(totalIncome).Mul(hundred)
		if foodPercent.GreaterThan(decimal.NewFromInt(15)) {
			advice = append(advice, Advice{
				Type:     "tip",
				Title:    "Food Expenses High",
				Message:  fmt.Sprintf("Food is %s%% of your income (average is 12%%). Try meal planning to save 10-15%%.", foodPercent.Round(0)),
				Priority: "medium",
			})
		}
		entertainmentPercent := spending[domain.ExpenseCategoryEntertainment].Div(totalIncome).Mul(hundred)
		if entertainmentPercent.GreaterThan(decimal.NewFromInt(8)) {
			advice = append(advice, Advice{
				Type:     "tip",
				Title:    "Entertainment Costs",
				Message:  fmt.Sprintf("Entertainment is %s%% of your income. Consider free or low-cost activities.", entertainmentPercent.Round(0)),
				Priority: "low",
			})
		}
	}

	for _, budget := range budgets {
		spent := spending[budget.Category]
		if spent.GreaterThan(budget.Amount) {
			advice = append(advice, Advice{
				Type:     "warning",
				Title:    fmt.Sprintf("%s Budget Exceeded", budget.Category),
				Message:  fmt.Sprintf("You've exceeded your %s budget by %s.", budget.Category, spent.Sub(budget.Amount).Round(0)),
				Priority: "high",
			})
		}
	}

	score := 60
	if savingsRate.GreaterThanOrEqual(decimal.NewFromInt(20)) {
		score += 20
	} else if savingsRate.GreaterThanOrEqual(decimal.NewFromInt(10)) {
		score += 10
	}
	if totalExpenses.LessThan(totalIncome) {
		score += 10
	}

	if len(advice) > 8 {
		advice = advice[:8]
	}

	return &FinancialAdvice{
		TotalIncome:     totalIncome,
		TotalExpenses:   totalExpenses,
		Savings:         savings,
		SavingsRate:     savingsRate.Round(2),
		HealthScore:     score,
		EmergencyTarget: totalExpenses.Mul(decimal.NewFromInt(6)),
		Advice:          advice,
	}, nil
}

// Report builds the month-end summary for a YYYY-MM month
func (s *InsightsService) Report(userID uuid.UUID, month string) (*MonthlyReport, error) {
	if !domain.ValidBudgetMonth(month) {
		return nil, domain.ErrInvalidBudgetMonth
	}
	start, end, err := util.MonthBounds(month)
	if err != nil {
		return nil, domain.ErrInvalidBudgetMonth
	}

	incomes, err := s.incomeRepo.GetByUser(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.GetByUser(userID, &start, &end)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetByUser(userID, month)
	if err != nil {
		return nil, err
	}

	totalIncome := decimal.Zero
	incomeByCategory := make(map[string]decimal.Decimal)
	for _, income := range incomes {
		totalIncome = totalIncome.Add(income.Amount)
		key := string(income.Category)
		incomeByCategory[key] = incomeByCategory[key].Add(income.Amount)
	}

	totalExpenses := decimal.Zero
	spending := sumByCategory(expenses)
	expenseByCategory := make(map[string]decimal.Decimal, len(spending))
	for category, amount := range spending {
		totalExpenses = totalExpenses.Add(amount)
		expenseByCategory[string(category)] = amount
	}

	savings := totalIncome.Sub(totalExpenses)
	savingsRate := decimal.Zero
	if totalIncome.Sign() > 0 {
		savingsRate = savings.Div(totalIncome).Mul(hundred)
	}

	topSpending := make([]CategoryAmount, 0, len(spending))
	for category, amount := range spending {
		topSpending = append(topSpending, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(topSpending, func(i, j int) bool { return topSpending[i].Amount.GreaterThan(topSpending[j].Amount) })
	if len(topSpending) > 5 {
		topSpending = topSpending[:5]
	}

	budgeted := make(map[domain.ExpenseCategory]decimal.Decimal, len(budgets))
	for _, budget := range budgets {
		budgeted[budget.Category] = budget.Amount
	}

	var highlights []string
	if savingsRate.GreaterThanOrEqual(decimal.NewFromInt(20)) {
		highlights = append(highlights, fmt.Sprintf("Great job! You saved %s%% this month.", savingsRate.Round(0)))
	} else {
		highlights = append(highlights, fmt.Sprintf("Savings rate is low at %s%%. Try to reduce expenses.", savingsRate.Round(0)))
	}
	if totalExpenses.GreaterThan(totalIncome) {
		highlights = append(highlights, fmt.Sprintf("You spent %s more than you earned.", totalExpenses.Sub(totalIncome).Round(0)))
	}
	if len(topSpending) > 0 {
		highlights = append(highlights, fmt.Sprintf("%s was your biggest expense at %s.", topSpending[0].Category, topSpending[0].Amount.Round(0)))
	}

	return &MonthlyReport{
		Month:             month,
		TotalIncome:       totalIncome,
		TotalExpenses:     totalExpenses,
		Savings:           savings,
		SavingsRate:       savingsRate.Round(2),
		ExpenseByCategory: expenseByCategory,
		IncomeByCategory:  incomeByCategory,
		TopSpending:       topSpending,
		BudgetPerformance: s.optimizer.AnalyzePerformance(budgeted, spending),
		Highlights:        highlights,
		IncomeCount:       len(incomes),
		ExpenseCount:      len(expenses),
	}, nil
}

func sumByCategory(expenses []*domain.Expense) map[domain.ExpenseCategory]decimal.Decimal {
	totals := make(map[domain.ExpenseCategory]decimal.Decimal)
	for _, expense := range expenses {
		totals[expense.Category] = totals[expense.Category].Add(expense.Amount)
	}
	return totals
}

// categoriesOf returns the union of keys from both maps in stable order
func categoriesOf(a, b map[domain.ExpenseCategory]decimal.Decimal) []domain.ExpenseCategory {
	seen := make(map[domain.ExpenseCategory]bool)
	var categories []domain.ExpenseCategory
	for category := range a {
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	for category := range b {
		if !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}

// decimalSqrt approximates the square root with Newton's method, which
// is plenty for outlier thresholds.
func decimalSqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	guess := d.Div(two)
	if guess.Sign() == 0 {
		guess = d
	}
	for i := 0; i < 20; i++ {
		guess = guess.Add(d.DivRound(guess, 16)).Div(two)
	}
	return guess
}
