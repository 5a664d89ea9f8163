package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseCategoryFood             ExpenseCategory = "Food"
	ExpenseCategoryTravel           ExpenseCategory = "Travel"
	ExpenseCategoryTransport        ExpenseCategory = "Transport"
	ExpenseCategoryRent             ExpenseCategory = "Rent"
	ExpenseCategoryUtilities        ExpenseCategory = "Utilities"
	ExpenseCategoryOfficeSupplies   ExpenseCategory = "Office Supplies"
	ExpenseCategoryMarketing        ExpenseCategory = "Marketing"
	ExpenseCategoryProfessionalFees ExpenseCategory = "Professional Fees"
	ExpenseCategorySalaries         ExpenseCategory = "Salaries"
	ExpenseCategoryTaxes            ExpenseCategory = "Taxes"
	ExpenseCategoryInsurance        ExpenseCategory = "Insurance"
	ExpenseCategoryMaintenance      ExpenseCategory = "Maintenance"
	ExpenseCategoryShopping         ExpenseCategory = "Shopping"
	ExpenseCategoryBills            ExpenseCategory = "Bills"
	ExpenseCategoryEntertainment    ExpenseCategory = "Entertainment"
	ExpenseCategoryHealth           ExpenseCategory = "Health"
	ExpenseCategoryEducation        ExpenseCategory = "Education"
	ExpenseCategoryOther            ExpenseCategory = "Other"
)

// ExpenseCategories is the closed set of expense categories.
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryTravel,
	ExpenseCategoryTransport,
	ExpenseCategoryRent,
	ExpenseCategoryUtilities,
	ExpenseCategoryOfficeSupplies,
	ExpenseCategoryMarketing,
	ExpenseCategoryProfessionalFees,
	ExpenseCategorySalaries,
	ExpenseCategoryTaxes,
	ExpenseCategoryInsurance,
	ExpenseCategoryMaintenance,
	ExpenseCategoryShopping,
	ExpenseCategoryBills,
	ExpenseCategoryEntertainment,
	ExpenseCategoryHealth,
	ExpenseCategoryEducation,
	ExpenseCategoryOther,
}

// ValidExpenseCategory reports whether c is a known expense category.
func ValidExpenseCategory(c ExpenseCategory) bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID                int32           `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	Title             string          `json:"title"`
	Amount            decimal.Decimal `json:"amount"`
	Category          ExpenseCategory `json:"category"`
	Vendor            *string         `json:"vendor,omitempty"`
	ReceiptPath       *string         `json:"receiptPath,omitempty"`
	GSTAmount         decimal.Decimal `json:"gstAmount"`
	IsGSTExpense      bool            `json:"isGstExpense"`
	SuggestedCategory *string         `json:"suggestedCategory,omitempty"`
	Date              time.Time       `json:"date"`
	Icon              string          `json:"icon"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	GetByID(userID uuid.UUID, id int32) (*Expense, error)
	GetByUser(userID uuid.UUID, from, to *time.Time) ([]*Expense, error)
	Update(userID uuid.UUID, id int32, expense *Expense) (*Expense, error)
	Delete(userID uuid.UUID, id int32) error
	SummaryByCategory(userID uuid.UUID) ([]*CategorySummary, error)
	MonthlyTotals(userID uuid.UUID, since time.Time) ([]*MonthlyTotal, error)
	TotalAmount(userID uuid.UUID) (decimal.Decimal, error)
	Count(userID uuid.UUID) (int64, error)
}
