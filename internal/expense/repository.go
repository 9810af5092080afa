package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// Repository handles expense and participant data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const expenseColumns = `id, group_id, paid_by, amount, description, category, split_type,
		expense_date, notes, is_settlement, created_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*Expense, error) {
	e := &Expense{}
	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.PaidBy,
		&e.Amount,
		&e.Description,
		&e.Category,
		&e.SplitType,
		&e.ExpenseDate,
		&e.Notes,
		&e.IsSettlement,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

// Create inserts an expense with its participant shares
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO expenses (id, group_id, paid_by, amount, description, category, split_type,
			expense_date, notes, is_settlement, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`,
		e.ID,
		e.GroupID,
		e.PaidBy,
		e.Amount,
		e.Description,
		e.Category,
		e.SplitType,
		e.ExpenseDate,
		e.Notes,
		e.IsSettlement,
		e.CreatedBy,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	for i, p := range e.Participants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_participants (expense_id, user_id, amount, position)
			VALUES ($1, $2, $3, $4)
		`, e.ID, p.UserID, p.Amount, i)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense and its participants
func (r *Repository) GetByID(ctx context.Context, id string) (*Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.attachParticipants(ctx, []*Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByGroupID retrieves a page of a group's expenses, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID string, p Period, limit, offset int) ([]*Expense, int, error) {
	where, args := periodFilter(groupID, p)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM expenses WHERE %s
		ORDER BY expense_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, expenseColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	expenses, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// ForBalance returns every expense of a group inside [from, to] in
// calculator form. Zero bounds are open.
func (r *Repository) ForBalance(ctx context.Context, groupID string, from, to time.Time) ([]balance.Expense, error) {
	where, args := periodFilter(groupID, Period{From: from, To: to})
	expenses, err := r.query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE `+where+`
		ORDER BY expense_date, created_at`, args...)
	if err != nil {
		return nil, err
	}

	out := make([]balance.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToBalance()
	}
	return out, nil
}

// Update modifies the descriptive fields of an expense
func (r *Repository) Update(ctx context.Context, id string, req *UpdateExpenseRequest) (*Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE expenses
		SET description = COALESCE($2, description),
			category = COALESCE($3, category),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+expenseColumns,
		id, req.Description, req.Category, req.Notes)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	if err := r.attachParticipants(ctx, []*Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an expense; participants cascade
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := r.attachParticipants(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// attachParticipants loads the shares of all given expenses in one query
func (r *Repository) attachParticipants(ctx context.Context, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	ids := make([]string, len(expenses))
	byID := make(map[string]*Expense, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		e.Participants = []balance.Participant{}
		byID[e.ID] = e
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT expense_id, user_id, amount
		FROM expense_participants
		WHERE expense_id = ANY($1::uuid[])
		ORDER BY expense_id, position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID, userID string
		var amount decimal.Decimal
		if err := rows.Scan(&expenseID, &userID, &amount); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Participants = append(e.Participants, balance.Participant{UserID: userID, Amount: amount})
		}
	}
	return rows.Err()
}

func periodFilter(groupID string, p Period) (string, []any) {
	clauses := []string{"group_id = $1"}
	args := []any{groupID}
	if !p.From.IsZero() {
		args = append(args, p.From)
		clauses = append(clauses, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if !p.To.IsZero() {
		args = append(args, p.To)
		clauses = append(clauses, fmt.Sprintf("expense_date <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
