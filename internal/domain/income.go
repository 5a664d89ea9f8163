package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IncomeCategory string

const (
	IncomeCategorySalary      IncomeCategory = "Salary"
	IncomeCategoryFreelance   IncomeCategory = "Freelance"
	IncomeCategoryInvestments IncomeCategory = "Investments"
	IncomeCategoryBusiness    IncomeCategory = "Business"
	IncomeCategoryGifts       IncomeCategory = "Gifts"
	IncomeCategoryOther       IncomeCategory = "Other"
)

// IncomeCategories is the closed set of income categories.
var IncomeCategories = []IncomeCategory{
	IncomeCategorySalary,
	IncomeCategoryFreelance,
	IncomeCategoryInvestments,
	IncomeCategoryBusiness,
	IncomeCategoryGifts,
	IncomeCategoryOther,
}

// ValidIncomeCategory reports whether c is a known income category.
func ValidIncomeCategory(c IncomeCategory) bool {
	for _, known := range IncomeCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Income struct {
	ID        int32           `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  IncomeCategory  `json:"category"`
	Date      time.Time       `json:"date"`
	Icon      string          `json:"icon"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CategorySummary aggregates amounts per category.
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// MonthlyTotal is an aggregate for one calendar month.
type MonthlyTotal struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type IncomeRepository interface {
	Create(income *Income) (*Income, error)
	GetByID(userID uuid.UUID, id int32) (*Income, error)
	GetByUser(userID uuid.UUID, from, to *time.Time) ([]*Income, error)
	Update(userID uuid.UUID, id int32, income *Income) (*Income, error)
	Delete(userID uuid.UUID, id int32) error
	SummaryByCategory(userID uuid.UUID) ([]*CategorySummary, error)
	MonthlyTotals(userID uuid.UUID, since time.Time) ([]*MonthlyTotal, error)
	TotalAmount(userID uuid.UUID) (decimal.Decimal, error)
	Count(userID uuid.UUID) (int64, error)
}
