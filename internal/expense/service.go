package expense

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/internal/group"
)

// Common errors
var (
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrNotPayer            = errors.New("only the payer can modify this expense")
	ErrUnknownUser         = errors.New("user is not a member of this group")
	ErrSettlementImmutable = errors.New("settlements cannot be edited")
)

// Store is the persistence the expense service needs
type Store interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	ListByGroupID(ctx context.Context, groupID string, p Period, limit, offset int) ([]*Expense, int, error)
	Update(ctx context.Context, id string, req *UpdateExpenseRequest) (*Expense, error)
	Delete(ctx context.Context, id string) error
}

// MemberSource resolves group membership
type MemberSource interface {
	RequireMember(ctx context.Context, groupID, userID string) (*group.GroupMember, error)
	Roster(ctx context.Context, groupID string) ([]balance.Member, error)
}

// Notifier is told about every stored expense
type Notifier interface {
	ExpenseAdded(ctx context.Context, e *Expense) error
}

// Service handles expense business logic
type Service struct {
	repo         Store
	members      MemberSource
	notifier     Notifier
	splitFactory *split.Factory
	now          func() time.Time
}

// NewService creates a new expense service
func NewService(repo Store, members MemberSource) *Service {
	return &Service{
		repo:         repo,
		members:      members,
		splitFactory: split.NewSplitStrategyFactory(),
		now:          time.Now,
	}
}

// SetNotifier registers n to hear about new expenses and settlements
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Create validates a request, derives the participant shares and stores
// the expense. Every referenced user must belong to the group.
func (s *Service) Create(ctx context.Context, groupID, actorID string, req *CreateExpenseRequest) (*Expense, error) {
	e, err := s.Preview(ctx, groupID, actorID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.notify(ctx, e)
	return e, nil
}

// Preview runs every check Create does and returns the expense that would
// be stored, without storing it.
func (s *Service) Preview(ctx context.Context, groupID, actorID string, req *CreateExpenseRequest) (*Expense, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	description, err := normalizeDescription(req.Description)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(req.Category, description)
	if err != nil {
		return nil, err
	}
	if !validNotes(req.Notes) {
		return nil, ErrInvalidNotes
	}
	date, err := ParseDate(req.ExpenseDate, s.now())
	if err != nil {
		return nil, err
	}

	payerID := strings.TrimSpace(req.PaidBy)
	if payerID == "" {
		payerID = actorID
	}

	strategy, err := s.splitFactory.CreateFromString(req.SplitType)
	if err != nil {
		return nil, err
	}
	inputs := make([]split.SplitInput, len(req.Participants))
	for i, p := range req.Participants {
		inputs[i] = p.ToSplitInput()
	}
	shares, err := strategy.Calculate(req.Amount, payerID, inputs)
	if err != nil {
		return nil, err
	}

	e := &Expense{
		ID:           uuid.NewString(),
		GroupID:      groupID,
		PaidBy:       payerID,
		Amount:       req.Amount,
		Description:  description,
		Category:     category,
		SplitType:    strategy.Type(),
		ExpenseDate:  date,
		Notes:        req.Notes,
		CreatedBy:    actorID,
		Participants: shares,
	}
	if err := s.checkMembers(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Record stores a prepared expense such as a settlement. Shares are taken
// as given; membership of every referenced user is still enforced.
func (s *Service) Record(ctx context.Context, e *Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = today(s.now())
	}
	if err := s.checkMembers(ctx, e); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	s.notify(ctx, e)
	return nil
}

// GetByID retrieves an expense of a group the caller belongs to
func (s *Service) GetByID(ctx context.Context, groupID, id, actorID string) (*Expense, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.get(ctx, groupID, id)
}

// ListByGroupID retrieves a page of a group's expenses
func (s *Service) ListByGroupID(ctx context.Context, groupID, actorID string, p Period, page, perPage int) ([]*Expense, int, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, p, perPage, offset)
}

// Update changes the description, category or notes of an expense
// (payer only)
func (s *Service) Update(ctx context.Context, groupID, id, actorID string, req *UpdateExpenseRequest) (*Expense, error) {
	e, err := s.GetByID(ctx, groupID, id, actorID)
	if err != nil {
		return nil, err
	}
	if e.PaidBy != actorID {
		return nil, ErrNotPayer
	}
	if e.IsSettlement {
		return nil, ErrSettlementImmutable
	}

	if req.Description != nil {
		description, err := normalizeDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		req.Description = &description
	}
	if req.Category != nil {
		description := e.Description
		if req.Description != nil {
			description = *req.Description
		}
		category, err := normalizeCategory(*req.Category, description)
		if err != nil {
			return nil, err
		}
		req.Category = &category
	}
	if !validNotes(req.Notes) {
		return nil, ErrInvalidNotes
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}
	return updated, nil
}

// Delete removes an expense. The payer or whoever recorded it may delete it.
func (s *Service) Delete(ctx context.Context, groupID, id, actorID string) error {
	e, err := s.GetByID(ctx, groupID, id, actorID)
	if err != nil {
		return err
	}
	if e.PaidBy != actorID && e.CreatedBy != actorID {
		return ErrNotPayer
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) get(ctx context.Context, groupID, id string) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.GroupID != groupID {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// notify is best effort; the expense is already stored
func (s *Service) notify(ctx context.Context, e *Expense) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ExpenseAdded(ctx, e); err != nil {
		log.Printf("failed to send notifications for expense %s: %v", e.ID, err)
	}
}

func (s *Service) checkMembers(ctx context.Context, e *Expense) error {
	roster, err := s.members.Roster(ctx, e.GroupID)
	if err != nil {
		return err
	}
	if unknown := balance.UnknownUsers([]balance.Expense{e.ToBalance()}, roster); len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownUser, strings.Join(unknown, ", "))
	}
	return nil
}
