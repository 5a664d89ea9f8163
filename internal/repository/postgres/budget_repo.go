package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, category, amount, month, created_at, updated_at`

// Upsert creates or replaces the budget for (user, category, month)
func (r *BudgetRepository) Upsert(budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (user_id, category, amount, month)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, category, month) DO UPDATE SET
			amount = EXCLUDED.amount,
			updated_at = now()
		RETURNING `+budgetColumns,
		budget.UserID, string(budget.Category), amount, budget.Month)

	return scanBudget(row)
}

// GetByUser lists the user's budgets, optionally for a single month
func (r *BudgetRepository) GetByUser(userID uuid.UUID, month string) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND ($2 = '' OR month = $2)
		ORDER BY month DESC, category`, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// GetByCategoryMonth retrieves one budget by its natural key
func (r *BudgetRepository) GetByCategoryMonth(userID uuid.UUID, category domain.ExpenseCategory, month string) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = $1 AND category = $2 AND month = $3`,
		userID, string(category), month)

	budget, err := scanBudget(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM budgets WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		budget   domain.Budget
		category string
		amount   pgtype.Numeric
	)
	err := row.Scan(&budget.ID, &budget.UserID, &category, &amount,
		&budget.Month, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return nil, err
	}
	budget.Category = domain.ExpenseCategory(category)
	budget.Amount = pgNumericToDecimal(amount)
	return &budget, nil
}
