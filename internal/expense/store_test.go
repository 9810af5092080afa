package expense

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/group"
)

// memStore is an in-memory Store for tests
type memStore struct {
	mu       sync.Mutex
	expenses map[string]*Expense
	now      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		expenses: make(map[string]*Expense),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func clone(e *Expense) *Expense {
	cp := *e
	cp.Participants = append([]balance.Participant(nil), e.Participants...)
	return &cp
}

func (m *memStore) Create(ctx context.Context, e *Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(time.Minute)
	e.CreatedAt = m.now
	e.UpdatedAt = m.now
	m.expenses[e.ID] = clone(e)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	return clone(e), nil
}

func (m *memStore) ListByGroupID(ctx context.Context, groupID string, p Period, limit, offset int) ([]*Expense, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Expense
	for _, e := range m.expenses {
		if e.GroupID == groupID && p.Contains(e.ExpenseDate) {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpenseDate.Equal(out[j].ExpenseDate) {
			return out[i].ExpenseDate.After(out[j].ExpenseDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) Update(ctx context.Context, id string, req *UpdateExpenseRequest) (*Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	return clone(e), nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

// fakeMembers is a fixed roster per group
type fakeMembers map[string][]balance.Member

func (f fakeMembers) RequireMember(ctx context.Context, groupID, userID string) (*group.GroupMember, error) {
	members, ok := f[groupID]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	for _, m := range members {
		if m.UserID == userID {
			return &group.GroupMember{GroupID: groupID, UserID: m.UserID, UserName: m.UserName, Role: group.MemberRoleMember}, nil
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
