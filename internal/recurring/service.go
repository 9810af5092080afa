package recurring

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/internal/group"
)

// Common errors
var (
	ErrTemplateNotFound     = errors.New("recurring expense not found")
	ErrConfirmationNotFound = errors.New("confirmation not found")
	ErrAlreadyConfirmed     = errors.New("recurring expense is already confirmed for this month")
	ErrInvalidMonth         = errors.New("month must be YYYY-MM")
	ErrNoItems              = errors.New("at least one item is required")
)

// Store is the persistence the recurring service needs
type Store interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, groupID string) ([]*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	DeactivateTemplate(ctx context.Context, id string) error
	CreateConfirmation(ctx context.Context, c *Confirmation) error
	GetConfirmation(ctx context.Context, id string) (*Confirmation, error)
	ListConfirmations(ctx context.Context, groupID, month string) ([]*Confirmation, error)
	DeleteConfirmation(ctx context.Context, id string) error
}

// MemberSource resolves group membership
type MemberSource interface {
	RequireMember(ctx context.Context, groupID, userID string) (*group.GroupMember, error)
}

// Expenses records the expense behind each confirmation
type Expenses interface {
	Preview(ctx context.Context, groupID, actorID string, req *expense.CreateExpenseRequest) (*expense.Expense, error)
	Create(ctx context.Context, groupID, actorID string, req *expense.CreateExpenseRequest) (*expense.Expense, error)
	Delete(ctx context.Context, groupID, id, actorID string) error
}

// Service handles recurring expense business logic
type Service struct {
	repo     Store
	members  MemberSource
	expenses Expenses
	now      func() time.Time
}

// NewService creates a new recurring expense service
func NewService(repo Store, members MemberSource, expenses Expenses) *Service {
	return &Service{repo: repo, members: members, expenses: expenses, now: time.Now}
}

// CreateTemplate stores a recurring expense. It is checked exactly as an
// expense of its default amount would be.
func (s *Service) CreateTemplate(ctx context.Context, groupID, actorID string, req *CreateTemplateRequest) (*Template, error) {
	t := &Template{
		ID:            uuid.NewString(),
		GroupID:       groupID,
		Description:   req.Description,
		DefaultAmount: req.DefaultAmount,
		Category:      req.Category,
		SplitType:     split.SplitType(req.SplitType),
		PaidBy:        req.PaidBy,
		CreatedBy:     actorID,
		IsActive:      true,
		Participants:  req.Participants,
	}
	if err := s.normalize(ctx, actorID, t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate retrieves an active recurring expense
func (s *Service) GetTemplate(ctx context.Context, groupID, id, actorID string) (*Template, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.template(ctx, groupID, id)
}

// ListTemplates retrieves the active recurring expenses of a group
func (s *Service) ListTemplates(ctx context.Context, groupID, actorID string) ([]*Template, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.repo.ListTemplates(ctx, groupID)
}

// UpdateTemplate changes a recurring expense. Months already confirmed keep
// their expenses.
func (s *Service) UpdateTemplate(ctx context.Context, groupID, id, actorID string, req *UpdateTemplateRequest) (*Template, error) {
	t, err := s.GetTemplate(ctx, groupID, id, actorID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.DefaultAmount != nil {
		t.DefaultAmount = *req.DefaultAmount
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.SplitType != nil {
		t.SplitType = split.SplitType(*req.SplitType)
	}
	if req.PaidBy != nil {
		t.PaidBy = *req.PaidBy
	}
	if req.Participants != nil {
		t.Participants = req.Participants
	}
	if err := s.normalize(ctx, actorID, t); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate deactivates a recurring expense. Past confirmations and
// their expenses are kept.
func (s *Service) DeleteTemplate(ctx context.Context, groupID, id, actorID string) error {
	if _, err := s.GetTemplate(ctx, groupID, id, actorID); err != nil {
		return err
	}
	return s.repo.DeactivateTemplate(ctx, id)
}

// Month reports which active templates are confirmed for month (YYYY-MM,
// empty for the current month) and how much of the fixed total is paid
func (s *Service) Month(ctx context.Context, groupID, actorID, month string) (*MonthStatus, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	month, err := s.month(month)
	if err != nil {
		return nil, err
	}

	templates, err := s.repo.ListTemplates(ctx, groupID)
	if err != nil {
		return nil, err
	}
	confirmations, err := s.confirmations(ctx, groupID, month)
	if err != nil {
		return nil, err
	}

	status := &MonthStatus{
		Month:      month,
		Items:      make([]*Item, 0, len(templates)),
		TotalFixed: decimal.Zero,
		PaidSoFar:  decimal.Zero,
	}
	for _, t := range templates {
		c := confirmations[t.ID]
		status.Items = append(status.Items, &Item{Template: t, Confirmation: c})
		status.TotalFixed = status.TotalFixed.Add(t.DefaultAmount)
		if c != nil {
			status.PaidSoFar = status.PaidSoFar.Add(c.Amount)
		}
	}
	status.Remaining = status.TotalFixed.Sub(status.PaidSoFar)
	return status, nil
}

// Confirm records the expense of a template for one month. Each template
// is confirmed at most once per month.
func (s *Service) Confirm(ctx context.Context, groupID, templateID, actorID string, req *ConfirmRequest) (*Confirmation, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	month, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}

	t, err := s.template(ctx, groupID, templateID)
	if err != nil {
		return nil, err
	}
	confirmations, err := s.confirmations(ctx, groupID, month)
	if err != nil {
		return nil, err
	}
	if confirmations[t.ID] != nil {
		return nil, ErrAlreadyConfirmed
	}

	return s.confirm(ctx, t, actorID, month, req.Amount)
}

// BulkConfirm confirms several templates for the same month. Every item
// is checked before any expense is recorded; on a later failure the
// confirmations made so far are returned with the error.
func (s *Service) BulkConfirm(ctx context.Context, groupID, actorID string, req *BulkConfirmRequest) ([]*Confirmation, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}
	month, err := s.month(req.Month)
	if err != nil {
		return nil, err
	}

	confirmations, err := s.confirmations(ctx, groupID, month)
	if err != nil {
		return nil, err
	}
	templates := make([]*Template, len(req.Items))
	seen := make(map[string]bool, len(req.Items))
	for i, item := range req.Items {
		t, err := s.template(ctx, groupID, item.TemplateID)
		if err != nil {
			return nil, err
		}
		if confirmations[t.ID] != nil || seen[t.ID] {
			return nil, ErrAlreadyConfirmed
		}
		if _, err := s.expenses.Preview(ctx, groupID, actorID, t.expenseRequest(amountOr(t, item.Amount), s.expenseDate(month))); err != nil {
			return nil, err
		}
		seen[t.ID] = true
		templates[i] = t
	}

	out := make([]*Confirmation, 0, len(templates))
	for i, t := range templates {
		c, err := s.confirm(ctx, t, actorID, month, req.Items[i].Amount)
		if err != nil {
			s.rollback(ctx, groupID, actorID, out)
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// rollback undoes confirmations recorded earlier in a failed bulk confirm
func (s *Service) rollback(ctx context.Context, groupID, actorID string, done []*Confirmation) {
	for _, c := range done {
		if err := s.expenses.Delete(ctx, groupID, c.ExpenseID, actorID); err != nil {
			log.Printf("failed to remove expense %s during bulk confirm rollback: %v", c.ExpenseID, err)
		}
		if err := s.repo.DeleteConfirmation(ctx, c.ID); err != nil {
			log.Printf("failed to remove confirmation %s during bulk confirm rollback: %v", c.ID, err)
		}
	}
}

// Undo removes a confirmation together with the expense it recorded
func (s *Service) Undo(ctx context.Context, groupID, confirmationID, actorID string) error {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return err
	}

	c, err := s.repo.GetConfirmation(ctx, confirmationID)
	if err != nil {
		return err
	}
	if c == nil || c.GroupID != groupID {
		return ErrConfirmationNotFound
	}

	if err := s.expenses.Delete(ctx, groupID, c.ExpenseID, actorID); err != nil && !errors.Is(err, expense.ErrExpenseNotFound) {
		return err
	}
	return s.repo.DeleteConfirmation(ctx, c.ID)
}

func (s *Service) confirm(ctx context.Context, t *Template, actorID, month string, amount *decimal.Decimal) (*Confirmation, error) {
	e, err := s.expenses.Create(ctx, t.GroupID, actorID, t.expenseRequest(amountOr(t, amount), s.expenseDate(month)))
	if err != nil {
		return nil, err
	}

	c := &Confirmation{
		ID:          uuid.NewString(),
		GroupID:     t.GroupID,
		TemplateID:  t.ID,
		Month:       month,
		Amount:      e.Amount,
		ExpenseID:   e.ID,
		ConfirmedBy: actorID,
	}
	if err := s.repo.CreateConfirmation(ctx, c); err != nil {
		if derr := s.expenses.Delete(ctx, t.GroupID, e.ID, actorID); derr != nil {
			log.Printf("failed to remove expense %s after failed confirmation: %v", e.ID, derr)
		}
		return nil, err
	}
	return c, nil
}

func amountOr(t *Template, amount *decimal.Decimal) decimal.Decimal {
	if amount != nil {
		return *amount
	}
	return t.DefaultAmount
}

// normalize checks t as an expense and copies back the cleaned fields
func (s *Service) normalize(ctx context.Context, actorID string, t *Template) error {
	e, err := s.expenses.Preview(ctx, t.GroupID, actorID, t.expenseRequest(t.DefaultAmount, ""))
	if err != nil {
		return err
	}
	t.Description = e.Description
	t.Category = e.Category
	t.SplitType = e.SplitType
	t.PaidBy = e.PaidBy
	return nil
}

func (s *Service) template(ctx context.Context, groupID, id string) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || t.GroupID != groupID || !t.IsActive {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// confirmations indexes a month's confirmations by template
func (s *Service) confirmations(ctx context.Context, groupID, month string) (map[string]*Confirmation, error) {
	list, err := s.repo.ListConfirmations(ctx, groupID, month)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Confirmation, len(list))
	for _, c := range list {
		out[c.TemplateID] = c
	}
	return out, nil
}

func (s *Service) month(month string) (string, error) {
	if month == "" {
		return s.now().UTC().Format(MonthLayout), nil
	}
	m, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", ErrInvalidMonth
	}
	return m.Format(MonthLayout), nil
}

// expenseDate is today inside the current month, otherwise the first day
// of month
func (s *Service) expenseDate(month string) string {
	today := s.now().UTC()
	if today.Format(MonthLayout) == month {
		return today.Format(expense.DateLayout)
	}
	return month + "-01"
}
