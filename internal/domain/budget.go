package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetCategories is the closed set of categories a monthly budget can
// target. It is the consumer-facing subset of the expense categories.
var BudgetCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryTransport,
	ExpenseCategoryShopping,
	ExpenseCategoryBills,
	ExpenseCategoryEntertainment,
	ExpenseCategoryHealth,
	ExpenseCategoryEducation,
	ExpenseCategoryOther,
}

// ValidBudgetCategory reports whether c can carry a monthly budget.
func ValidBudgetCategory(c ExpenseCategory) bool {
	for _, known := range BudgetCategories {
		if c == known {
			return true
		}
	}
	return false
}

var budgetMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidBudgetMonth reports whether month is in YYYY-MM form.
func ValidBudgetMonth(month string) bool {
	return budgetMonthPattern.MatchString(month)
}

// Budget is a per-category spending cap for one calendar month.
// Unique per (user, category, month).
type Budget struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Category  ExpenseCategory `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Month     string          `json:"month"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type BudgetRepository interface {
	Upsert(budget *Budget) (*Budget, error)
	GetByUser(userID uuid.UUID, month string) ([]*Budget, error)
	GetByCategoryMonth(userID uuid.UUID, category ExpenseCategory, month string) (*Budget, error)
	Delete(userID uuid.UUID, id int32) error
}
