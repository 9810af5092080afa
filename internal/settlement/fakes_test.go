package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/group"
)

// fakeMembers is a fixed roster per group
type fakeMembers map[string][]balance.Member

func (f fakeMembers) RequireMember(ctx context.Context, groupID, userID string) (*group.GroupMember, error) {
	members, ok := f[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	for _, m := range members {
		if m.UserID == userID {
			return &group.GroupMember{GroupID: groupID, UserID: m.UserID, UserName: m.UserName}, nil
		}
	}
	return nil, group.ErrNotMember
}

func (f fakeMembers) Roster(ctx context.Context, groupID string) ([]balance.Member, error) {
	members, ok := f[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	return members, nil
}

// ledger stores expenses in memory and serves them back for balances
type ledger struct {
	mu       sync.Mutex
	expenses []*expense.Expense
}

func (l *ledger) add(e *expense.Expense) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expenses = append(l.expenses, e)
}

func (l *ledger) Record(ctx context.Context, e *expense.Expense) error {
	if e.ID == "" {
		e.ID = "s-" + e.PaidBy + "-" + e.Participants[len(e.Participants)-1].UserID
	}
	e.CreatedAt = time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	l.add(e)
	return nil
}

func (l *ledger) ForBalance(ctx context.Context, groupID string, from, to time.Time) ([]balance.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := expense.Period{From: from, To: to}
	var out []balance.Expense
	for _, e := range l.expenses {
		if e.GroupID == groupID && p.Contains(e.ExpenseDate) {
			out = append(out, e.ToBalance())
		}
	}
	return out, nil
}
