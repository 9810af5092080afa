package recurring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key
const uniqueViolation = "23505"

// Repository handles recurring expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new recurring expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const templateColumns = `id, group_id, description, default_amount, category, split_type,
		paid_by, created_by, is_active, created_at, updated_at`

func scanTemplate(row interface{ Scan(dest ...any) error }) (*Template, error) {
	t := &Template{}
	err := row.Scan(
		&t.ID,
		&t.GroupID,
		&t.Description,
		&t.DefaultAmount,
		&t.Category,
		&t.SplitType,
		&t.PaidBy,
		&t.CreatedBy,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// CreateTemplate inserts a recurring expense with its participants
func (r *Repository) CreateTemplate(ctx context.Context, t *Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO recurring_expenses (id, group_id, description, default_amount, category,
			split_type, paid_by, created_by, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`,
		t.ID,
		t.GroupID,
		t.Description,
		t.DefaultAmount,
		t.Category,
		t.SplitType,
		t.PaidBy,
		t.CreatedBy,
		t.IsActive,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recurring expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recurring expense: %w", err)
	}
	return nil
}

// GetTemplate retrieves a recurring expense, active or not
func (r *Repository) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM recurring_expenses WHERE id = $1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recurring expense: %w", err)
	}

	if err := r.attachParticipants(ctx, []*Template{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTemplates retrieves the active recurring expenses of a group, oldest first
func (r *Repository) ListTemplates(ctx context.Context, groupID string) ([]*Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+templateColumns+` FROM recurring_expenses
		WHERE group_id = $1 AND is_active
		ORDER BY created_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}
	defer rows.Close()

	templates := []*Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring expense: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring expenses: %w", err)
	}

	if err := r.attachParticipants(ctx, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// UpdateTemplate overwrites a recurring expense and replaces its participants
func (r *Repository) UpdateTemplate(ctx context.Context, t *Template) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE recurring_expenses
		SET description = $2, default_amount = $3, category = $4, split_type = $5,
			paid_by = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, t.ID, t.Description, t.DefaultAmount, t.Category, t.SplitType, t.PaidBy).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to update recurring expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recurring_participants WHERE recurring_id = $1`, t.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, t); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recurring expense: %w", err)
	}
	return nil
}

// DeactivateTemplate hides a recurring expense from future months
func (r *Repository) DeactivateTemplate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE recurring_expenses SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate recurring expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// CreateConfirmation inserts a confirmation. A second confirmation of the
// same template and month fails with ErrAlreadyConfirmed.
func (r *Repository) CreateConfirmation(ctx context.Context, c *Confirmation) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO recurring_confirmations (id, group_id, recurring_id, month, amount, expense_id, confirmed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING confirmed_at
	`, c.ID, c.GroupID, c.TemplateID, c.Month, c.Amount, c.ExpenseID, c.ConfirmedBy).Scan(&c.ConfirmedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrAlreadyConfirmed
		}
		return fmt.Errorf("failed to create confirmation: %w", err)
	}
	return nil
}

const confirmationColumns = `id, group_id, recurring_id, month, amount, expense_id, confirmed_by, confirmed_at`

func scanConfirmation(row interface{ Scan(dest ...any) error }) (*Confirmation, error) {
	c := &Confirmation{}
	err := row.Scan(
		&c.ID,
		&c.GroupID,
		&c.TemplateID,
		&c.Month,
		&c.Amount,
		&c.ExpenseID,
		&c.ConfirmedBy,
		&c.ConfirmedAt,
	)
	return c, err
}

// GetConfirmation retrieves a confirmation by its ID
func (r *Repository) GetConfirmation(ctx context.Context, id string) (*Confirmation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+confirmationColumns+` FROM recurring_confirmations WHERE id = $1`, id)
	c, err := scanConfirmation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return c, nil
}

// ListConfirmations retrieves a group's confirmations for one month
func (r *Repository) ListConfirmations(ctx context.Context, groupID, month string) ([]*Confirmation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+confirmationColumns+` FROM recurring_confirmations
		WHERE group_id = $1 AND month = $2
		ORDER BY confirmed_at
	`, groupID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations: %w", err)
	}
	defer rows.Close()

	var confirmations []*Confirmation
	for rows.Next() {
		c, err := scanConfirmation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan confirmation: %w", err)
		}
		confirmations = append(confirmations, c)
	}
	return confirmations, rows.Err()
}

// DeleteConfirmation removes a confirmation. Deleting the expense behind
// it already cascades, so a missing row is not an error.
func (r *Repository) DeleteConfirmation(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recurring_confirmations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete confirmation: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, t *Template) error {
	for i, p := range t.Participants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recurring_participants (recurring_id, user_id, percentage, amount, position)
			VALUES ($1, $2, $3, $4, $5)
		`, t.ID, p.UserID, nullDecimal(p.Percentage), nullDecimal(p.Amount), i)
		if err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
	}
	return nil
}

// attachParticipants loads the participants of all given templates in one query
func (r *Repository) attachParticipants(ctx context.Context, templates []*Template) error {
	if len(templates) == 0 {
		return nil
	}

	ids := make([]string, len(templates))
	byID := make(map[string]*Template, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
		t.Participants = []*expense.SplitParticipant{}
		byID[t.ID] = t
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT recurring_id, user_id, percentage, amount
		FROM recurring_participants
		WHERE recurring_id = ANY($1::uuid[])
		ORDER BY recurring_id, position
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recurringID string
		var p expense.SplitParticipant
		var percentage, amount decimal.NullDecimal
		if err := rows.Scan(&recurringID, &p.UserID, &percentage, &amount); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if percentage.Valid {
			p.Percentage = &percentage.Decimal
		}
		if amount.Valid {
			p.Amount = &amount.Decimal
		}
		if t, ok := byID[recurringID]; ok {
			t.Participants = append(t.Participants, &p)
		}
	}
	return rows.Err()
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
