package service

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// BudgetMethodology describes the allocation rule applied by the optimizer.
const BudgetMethodology = "50/30/20 Rule (50% Needs, 30% Wants, 20% Savings)"

// Category buckets for the 50/30/20 rule. "Other" absorbs whatever income
// remains after the named categories and savings.
var (
	needsCategories = []domain.ExpenseCategory{
		domain.ExpenseCategoryFood,
		domain.ExpenseCategoryTransport,
		domain.ExpenseCategoryBills,
		domain.ExpenseCategoryHealth,
	}
	wantsCategories = []domain.ExpenseCategory{
		domain.ExpenseCategoryShopping,
		domain.ExpenseCategoryEntertainment,
		domain.ExpenseCategoryEducation,
	}
)

var (
	needsShare   = decimal.RequireFromString("0.50")
	wantsShare   = decimal.RequireFromString("0.30")
	savingsShare = decimal.RequireFromString("0.20")
	growthBuffer = decimal.RequireFromString("1.10")
	ten          = decimal.NewFromInt(10)
)

// BudgetSuggestion is a recommended monthly allocation across expense
// categories plus a savings target.
type BudgetSuggestion struct {
	Allocations map[domain.ExpenseCategory]decimal.Decimal `json:"allocations"`
	Savings     decimal.Decimal                            `json:"savings"`
	Methodology string                                     `json:"methodology"`
}

// CategorySpend is one category's historical spending total.
type CategorySpend struct {
	Category domain.ExpenseCategory
	Total    decimal.Decimal
}

// BudgetPerformance reports how a single category budget is tracking
// against actual spending.
type BudgetPerformance struct {
	Category    domain.ExpenseCategory `json:"category"`
	Budgeted    decimal.Decimal        `json:"budgeted"`
	Spent       decimal.Decimal        `json:"spent"`
	Remaining   decimal.Decimal        `json:"remaining"`
	PercentUsed decimal.Decimal        `json:"percentUsed"`
	Status      string                 `json:"status"`
}

// BudgetOptimizerService produces budget suggestions from income and
// spending history.
type BudgetOptimizerService struct{}

// NewBudgetOptimizerService creates a new BudgetOptimizerService
func NewBudgetOptimizerService() *BudgetOptimizerService {
	return &BudgetOptimizerService{}
}

// Suggest allocates monthlyIncome using the 50/30/20 rule. Within the
// needs and wants buckets the split follows historical spending
// proportions when history exists for that bucket, otherwise the bucket
// is divided evenly. Every figure is rounded to the nearest 10 and the
// Other category absorbs the rounding remainder so allocations plus
// savings never exceed income.
func (s *BudgetOptimizerService) Suggest(monthlyIncome decimal.Decimal, history []CategorySpend) (*BudgetSuggestion, error) {
	if monthlyIncome.Sign() <= 0 {
		return nil, domain.ErrInvalidIncome
	}

	spent := make(map[domain.ExpenseCategory]decimal.Decimal, len(history))
	for _, h := range history {
		spent[h.Category] = spent[h.Category].Add(h.Total)
	}

	allocations := make(map[domain.ExpenseCategory]decimal.Decimal)
	distributeBucket(allocations, needsCategories, monthlyIncome.Mul(needsShare), spent)
	distributeBucket(allocations, wantsCategories, monthlyIncome.Mul(wantsShare), spent)

	savings := roundToNearestTen(monthlyIncome.Mul(savingsShare))

	allocated := savings
	for _, amount := range allocations {
		allocated = allocated.Add(amount)
	}
	other := roundToNearestTen(monthlyIncome.Sub(allocated))
	if other.Sign() < 0 {
		other = decimal.Zero
	}
	allocations[domain.ExpenseCategoryOther] = other

	return &BudgetSuggestion{
		Allocations: allocations,
		Savings:     savings,
		Methodology: BudgetMethodology,
	}, nil
}

// ThreeMonthAverage suggests a per-category budget from the last three
// months of spending: the monthly average per category plus a 10% buffer,
// rounded to the nearest 10. Categories without history are omitted.
func (s *BudgetOptimizerService) ThreeMonthAverage(history []CategorySpend) map[domain.ExpenseCategory]decimal.Decimal {
	totals := make(map[domain.ExpenseCategory]decimal.Decimal, len(history))
	for _, h := range history {
		totals[h.Category] = totals[h.Category].Add(h.Total)
	}

	three := decimal.NewFromInt(3)
	suggestions := make(map[domain.ExpenseCategory]decimal.Decimal, len(totals))
	for category, total := range totals {
		if total.Sign() <= 0 {
			continue
		}
		suggestions[category] = roundToNearestTen(total.Div(three).Mul(growthBuffer))
	}
	return suggestions
}

// EmergencyFundTargets returns the standard 3, 6 and 12 month emergency
// fund targets for a given average monthly expense total.
func (s *BudgetOptimizerService) EmergencyFundTargets(monthlyExpenses decimal.Decimal) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"threeMonths":  monthlyExpenses.Mul(decimal.NewFromInt(3)),
		"sixMonths":    monthlyExpenses.Mul(decimal.NewFromInt(6)),
		"twelveMonths": monthlyExpenses.Mul(decimal.NewFromInt(12)),
	}
}

// AnalyzePerformance compares budgets against actual spending and grades
// each category: exceeded at 100%+, warning at 80%+, moderate at 50%+
// and good below that. Results come back sorted by percent used,
// heaviest first.
func (s *BudgetOptimizerService) AnalyzePerformance(budgets map[domain.ExpenseCategory]decimal.Decimal, spent map[domain.ExpenseCategory]decimal.Decimal) []BudgetPerformance {
	results := make([]BudgetPerformance, 0, len(budgets))
	for category, budgeted := range budgets {
		if budgeted.Sign() <= 0 {
			continue
		}
		used := spent[category]
		percent := used.Div(budgeted).Mul(hundred).Round(2)
		results = append(results, BudgetPerformance{
			Category:    category,
			Budgeted:    budgeted,
			Spent:       used,
			Remaining:   budgeted.Sub(used),
			PercentUsed: percent,
			Status:      performanceStatus(percent),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PercentUsed.GreaterThan(results[j].PercentUsed)
	})
	return results
}

func performanceStatus(percentUsed decimal.Decimal) string {
	switch {
	case percentUsed.GreaterThanOrEqual(hundred):
		return "exceeded"
	case percentUsed.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return "warning"
	case percentUsed.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return "moderate"
	default:
		return "good"
	}
}

// distributeBucket splits bucketAmount across categories in proportion to
// their historical spending, or evenly when the bucket has no history.
func distributeBucket(out map[domain.ExpenseCategory]decimal.Decimal, categories []domain.ExpenseCategory, bucketAmount decimal.Decimal, spent map[domain.ExpenseCategory]decimal.Decimal) {
	bucketTotal := decimal.Zero
	for _, category := range categories {
		bucketTotal = bucketTotal.Add(spent[category])
	}

	if bucketTotal.Sign() > 0 {
		for _, category := range categories {
			share := spent[category].Div(bucketTotal)
			out[category] = roundToNearestTen(bucketAmount.Mul(share))
		}
		return
	}

	even := bucketAmount.Div(decimal.NewFromInt(int64(len(categories))))
	for _, category := range categories {
		out[category] = roundToNearestTen(even)
	}
}

// roundToNearestTen rounds to the nearest multiple of 10, halves away
// from zero.
func roundToNearestTen(d decimal.Decimal) decimal.Decimal {
	return d.Div(ten).Round(0).Mul(ten)
}
