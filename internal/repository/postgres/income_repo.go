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

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

const incomeColumns = `id, user_id, title, amount, category, date, icon, created_at, updated_at`

// Create creates a new income entry
func (r *IncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO incomes (user_id, title, amount, category, date, icon)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+incomeColumns,
		income.UserID, income.Title, amount, string(income.Category), income.Date, income.Icon)

	return scanIncome(row)
}

// GetByID retrieves an income entry owned by the user
func (r *IncomeRepository) GetByID(userID uuid.UUID, id int32) (*domain.Income, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+incomeColumns+` FROM incomes
		WHERE user_id = $1 AND id = $2`, userID, id)

	income, err := scanIncome(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	return income, nil
}

// GetByUser lists the user's income entries, newest first, optionally
// bounded by a date range.
func (r *IncomeRepository) GetByUser(userID uuid.UUID, from, to *time.Time) ([]*domain.Income, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+incomeColumns+` FROM incomes
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []*domain.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}

// Update updates an existing income entry
func (r *IncomeRepository) Update(userID uuid.UUID, id int32, income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		UPDATE incomes SET
			title = $3, amount = $4, category = $5, date = $6, icon = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+incomeColumns,
		userID, id, income.Title, amount, string(income.Category), income.Date, income.Icon)

	updated, err := scanIncome(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an income entry
func (r *IncomeRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM incomes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

// SummaryByCategory returns income totals per category, largest first
func (r *IncomeRepository) SummaryByCategory(userID uuid.UUID) ([]*domain.CategorySummary, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT category, COALESCE(SUM(amount), 0), COUNT(*)
		FROM incomes WHERE user_id = $1
		GROUP BY category
		ORDER BY SUM(amount) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCategorySummaries(rows)
}

// MonthlyTotals returns income totals per calendar month since the
// given time, oldest first.
func (r *IncomeRepository) MonthlyTotals(userID uuid.UUID, since time.Time) ([]*domain.MonthlyTotal, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT EXTRACT(YEAR FROM date)::int, EXTRACT(MONTH FROM date)::int, COALESCE(SUM(amount), 0)
		FROM incomes WHERE user_id = $1 AND date >= $2
		GROUP BY 1, 2
		ORDER BY 1, 2`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMonthlyTotals(rows)
}

// TotalAmount sums all income for the user
func (r *IncomeRepository) TotalAmount(userID uuid.UUID) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// Count counts the user's income entries
func (r *IncomeRepository) Count(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM incomes WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		income   domain.Income
		amount   pgtype.Numeric
		category string
	)
	err := row.Scan(&income.ID, &income.UserID, &income.Title, &amount, &category,
		&income.Date, &income.Icon, &income.CreatedAt, &income.UpdatedAt)
	if err != nil {
		return nil, err
	}
	income.Amount = pgNumericToDecimal(amount)
	income.Category = domain.IncomeCategory(category)
	return &income, nil
}

func scanCategorySummaries(rows pgx.Rows) ([]*domain.CategorySummary, error) {
	var summaries []*domain.CategorySummary
	for rows.Next() {
		var (
			summary domain.CategorySummary
			total   pgtype.Numeric
		)
		if err := rows.Scan(&summary.Category, &total, &summary.Count); err != nil {
			return nil, err
		}
		summary.Total = pgNumericToDecimal(total)
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

func scanMonthlyTotals(rows pgx.Rows) ([]*domain.MonthlyTotal, error) {
	var totals []*domain.MonthlyTotal
	for rows.Next() {
		var (
			monthly domain.MonthlyTotal
			total   pgtype.Numeric
		)
		if err := rows.Scan(&monthly.Year, &monthly.Month, &total); err != nil {
			return nil, err
		}
		monthly.Total = pgNumericToDecimal(total)
		totals = append(totals, &monthly)
	}
	return totals, rows.Err()
}
