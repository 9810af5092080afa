package settlement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/expense/split"
	"github.com/fkhayef/groupsplit/internal/group"
)

// Common errors
var (
	ErrCannotSettleSelf = errors.New("cannot record a settlement with yourself")
	ErrNotInGroup       = errors.New("both people must be members of this group")
	ErrInvalidAmount    = errors.New("settlement amount must be greater than 0 and at most 10000000")
	ErrInvalidNotes     = errors.New("notes must be at most 500 characters")
)

// MemberSource resolves group membership
type MemberSource interface {
	RequireMember(ctx context.Context, groupID, userID string) (*group.GroupMember, error)
	Roster(ctx context.Context, groupID string) ([]balance.Member, error)
}

// ExpenseSource supplies a group's expenses in calculator form.
// Zero from/to mean unbounded.
type ExpenseSource interface {
	ForBalance(ctx context.Context, groupID string, from, to time.Time) ([]balance.Expense, error)
}

// Recorder persists a settlement as a group expense
type Recorder interface {
	Record(ctx context.Context, e *expense.Expense) error
}

// Service computes balances and records settlements. Nothing is cached:
// every call recomputes from the group's expenses.
type Service struct {
	members  MemberSource
	expenses ExpenseSource
	recorder Recorder
	currency string
	now      func() time.Time
}

// NewService creates a new settlement service
func NewService(members MemberSource, expenses ExpenseSource, recorder Recorder, currency string) *Service {
	return &Service{
		members:  members,
		expenses: expenses,
		recorder: recorder,
		currency: currency,
		now:      time.Now,
	}
}

// Currency returns the display currency code
func (s *Service) Currency() string {
	return s.currency
}

// load fetches the roster and expenses of a group the caller belongs to
func (s *Service) load(ctx context.Context, groupID, actorID string, p expense.Period) ([]balance.Member, []balance.Expense, error) {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, nil, err
	}
	roster, err := s.members.Roster(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.expenses.ForBalance(ctx, groupID, p.From, p.To)
	if err != nil {
		return nil, nil, err
	}
	return roster, expenses, nil
}

// Balances returns every member's net balance over the period
func (s *Service) Balances(ctx context.Context, groupID, actorID string, p expense.Period) (*GroupBalances, error) {
	roster, expenses, err := s.load(ctx, groupID, actorID, p)
	if err != nil {
		return nil, err
	}

	balances := balance.CalculateNetBalances(expenses, roster)
	names := balance.NamesOf(roster)

	result := &GroupBalances{
		GroupID:   groupID,
		Currency:  s.currency,
		Members:   make([]*MemberBalance, 0, len(balances)),
		TotalOwed: decimal.Zero,
	}
	for _, id := range orderedIDs(roster, balances) {
		mb := s.memberBalance(id, names[id], balances[id])
		if mb.Status == BalanceStatusOwed {
			result.TotalOwed = result.TotalOwed.Add(mb.Balance)
		}
		result.Members = append(result.Members, mb)
	}
	return result, nil
}

// UserBalance returns one member's balance over all time, with the
// suggested payments that involve them
func (s *Service) UserBalance(ctx context.Context, groupID, actorID, userID string) (*MyBalance, error) {
	roster, expenses, err := s.load(ctx, groupID, actorID, expense.Period{})
	if err != nil {
		return nil, err
	}
	if !inRoster(roster, userID) {
		return nil, group.ErrMemberNotFound
	}

	names := balance.NamesOf(roster)
	result := &MyBalance{
		MemberBalance: s.memberBalance(userID, names[userID], balance.UserBalance(expenses, roster, userID)),
		Currency:      s.currency,
		Pay:           []balance.SimplifiedDebt{},
		Receive:       []balance.SimplifiedDebt{},
	}
	for _, debt := range balance.SettlementSuggestions(expenses, roster) {
		switch userID {
		case debt.From:
			result.Pay = append(result.Pay, debt)
		case debt.To:
			result.Receive = append(result.Receive, debt)
		}
	}
	return result, nil
}

// Suggestions returns the simplified set of payments that settles the group
func (s *Service) Suggestions(ctx context.Context, groupID, actorID string, p expense.Period) ([]balance.SimplifiedDebt, error) {
	roster, expenses, err := s.load(ctx, groupID, actorID, p)
	if err != nil {
		return nil, err
	}
	return balance.SettlementSuggestions(expenses, roster), nil
}

// Summary totals the group's spending over the period
func (s *Service) Summary(ctx context.Context, groupID, actorID string, p expense.Period) (*SummaryResponse, error) {
	_, expenses, err := s.load(ctx, groupID, actorID, p)
	if err != nil {
		return nil, err
	}

	summary := balance.Summarize(expenses)
	resp := &SummaryResponse{
		Currency:     s.currency,
		TotalSpent:   summary.TotalSpent,
		ExpenseCount: summary.Count,
		PaidBy:       summary.PaidBy,
	}
	if !p.From.IsZero() {
		resp.From = p.From.Format(expense.DateLayout)
	}
	if !p.To.IsZero() {
		resp.To = p.To.Format(expense.DateLayout)
	}
	return resp, nil
}

// Record stores a payment from req.From to req.To. It is kept as a
// settlement expense paid by From in which To owes the whole amount, so
// the payer's balance rises and the receiver's falls by the amount.
func (s *Service) Record(ctx context.Context, groupID, recorderID string, req *RecordSettlementRequest) (*Settlement, error) {
	if _, err := s.members.RequireMember(ctx, groupID, recorderID); err != nil {
		return nil, err
	}

	from := strings.TrimSpace(req.From)
	to := strings.TrimSpace(req.To)
	if from == to {
		return nil, ErrCannotSettleSelf
	}
	if !req.Amount.IsPositive() || req.Amount.GreaterThan(expense.MaxAmount) || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, ErrInvalidAmount
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > 500 {
		return nil, ErrInvalidNotes
	}
	date, err := expense.ParseDate(req.SettledOn, s.now())
	if err != nil {
		return nil, err
	}

	roster, err := s.members.Roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !inRoster(roster, from) || !inRoster(roster, to) {
		return nil, ErrNotInGroup
	}
	names := balance.NamesOf(roster)

	e := &expense.Expense{
		GroupID:      groupID,
		PaidBy:       from,
		Amount:       req.Amount,
		Description:  fmt.Sprintf("%s paid %s", balance.DisplayName(names, from), balance.DisplayName(names, to)),
		Category:     expense.SettlementCategory,
		SplitType:    split.SplitTypeCustom,
		ExpenseDate:  date,
		Notes:        req.Notes,
		IsSettlement: true,
		CreatedBy:    recorderID,
		Participants: []balance.Participant{
			{UserID: from, Amount: decimal.Zero},
			{UserID: to, Amount: req.Amount},
		},
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		return nil, err
	}

	return &Settlement{
		ID:         e.ID,
		GroupID:    groupID,
		From:       from,
		To:         to,
		Amount:     e.Amount,
		Notes:      e.Notes,
		SettledOn:  e.ExpenseDate,
		RecordedBy: recorderID,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func (s *Service) memberBalance(userID, name string, amount decimal.Decimal) *MemberBalance {
	if name == "" {
		name = userID
	}
	amount = balance.RoundCents(amount)

	mb := &MemberBalance{UserID: userID, UserName: name, Balance: amount}
	switch {
	case balance.IsSettled(amount):
		mb.Status = BalanceStatusSettled
		mb.Message = fmt.Sprintf("%s is settled up", name)
	case amount.IsPositive():
		mb.Status = BalanceStatusOwed
		mb.Message = fmt.Sprintf("%s is owed %s %s", name, s.currency, amount.StringFixed(2))
	default:
		mb.Status = BalanceStatusOwes
		mb.Message = fmt.Sprintf("%s owes %s %s", name, s.currency, amount.Neg().StringFixed(2))
	}
	return mb
}

// orderedIDs lists roster members first, then any other user ids found in
// the balances in ascending order
func orderedIDs(roster []balance.Member, balances balance.Balances) []string {
	ids := make([]string, 0, len(balances))
	seen := make(map[string]struct{}, len(roster))
	for _, m := range roster {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		ids = append(ids, m.UserID)
	}

	var extra []string
	for id := range balances {
		if _, ok := seen[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(ids, extra...)
}

func inRoster(roster []balance.Member, userID string) bool {
	for _, m := range roster {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
