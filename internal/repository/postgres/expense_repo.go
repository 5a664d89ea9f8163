package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, title, amount, category, vendor, receipt_path,
	gst_amount, is_gst_expense, suggested_category, date, icon, created_at, updated_at`

// Create creates a new expense
func (r *ExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}
	gstAmount, err := decimalToPgNumeric(expense.GSTAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO expenses (user_id, title, amount, category, vendor, receipt_path,
			gst_amount, is_gst_expense, suggested_category, date, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+expenseColumns,
		expense.UserID, expense.Title, amount, string(expense.Category),
		stringPtrToPgText(expense.Vendor), stringPtrToPgText(expense.ReceiptPath),
		gstAmount, expense.IsGSTExpense, stringPtrToPgText(expense.SuggestedCategory),
		expense.Date, expense.Icon)

	return scanExpense(row)
}

// GetByID retrieves an expense owned by the user
func (r *ExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1 AND id = $2`, userID, id)

	expense, err := scanExpense(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

// GetByUser lists the user's expenses, newest first, optionally bounded
// by a date range.
func (r *ExpenseRepository) GetByUser(userID uuid.UUID, from, to *time.Time) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Update updates an existing expense
func (r *ExpenseRepository) Update(userID uuid.UUID, id int32, expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}
	gstAmount, err := decimalToPgNumeric(expense.GSTAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE expenses SET
			title = $3, amount = $4, category = $5, vendor = $6, receipt_path = $7,
			gst_amount = $8, is_gst_expense = $9, suggested_category = $10,
			date = $11, icon = $12, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+expenseColumns,
		userID, id, expense.Title, amount, string(expense.Category),
		stringPtrToPgText(expense.Vendor), stringPtrToPgText(expense.ReceiptPath),
		gstAmount, expense.IsGSTExpense, stringPtrToPgText(expense.SuggestedCategory),
		expense.Date, expense.Icon)

	updated, err := scanExpense(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SummaryByCategory returns expense totals per category, largest first
func (r *ExpenseRepository) SummaryByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
		FROM expenses WHERE user_id = $1
		GROUP BY category
		ORDER BY SUM(amount) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCategorySummaries(rows)
}

// MonthlyTotals returns expense totals per calendar month since the
// given time, oldest first.
func (r *ExpenseRepository) MonthlyTotals(userID uuid.UUID, since time.Time) ([]*domain.MonthlyTotal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT EXTRACT(YEAR FROM date)::int, EXTRACT(MONTH FROM date)::int, COALESCE(SUM(amount), 0)
		FROM expenses WHERE user_id = $1 AND date >= $2
		GROUP BY 1, 2
		ORDER BY 1, 2`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMonthlyTotals(rows)
}

// TotalAmount sums all expenses for the user
func (r *ExpenseRepository) TotalAmount(userID uuid.UUID) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// Count counts the user's expenses
func (r *ExpenseRepository) Count(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM expenses WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense  domain.Expense
		category string

		amount, gstAmount                   pgtype.Numeric
		vendor, receiptPath, suggestedCateg pgtype.Text
	)
	err := row.Scan(&expense.ID, &expense.UserID, &expense.Title, &amount, &category,
		&vendor, &receiptPath, &gstAmount, &expense.IsGSTExpense, &suggestedCateg,
		&expense.Date, &expense.Icon, &expense.CreatedAt, &expense.UpdatedAt)
	if err != nil {
		return nil, err
	}
	expense.Amount = pgNumericToDecimal(amount)
	expense.GSTAmount = pgNumericToDecimal(gstAmount)
	expense.Category = domain.ExpenseCategory(category)
	expense.Vendor = pgTextToStringPtr(vendor)
	expense.ReceiptPath = pgTextToStringPtr(receiptPath)
	expense.SuggestedCategory = pgTextToStringPtr(suggestedCateg)
	return &expense, nil
}
