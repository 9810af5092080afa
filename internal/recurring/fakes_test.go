package recurring

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/group"
)

// memStore is an in-memory Store for tests
var errStoreDown = errors.New("store unavailable")

func (m *memStore) confirmationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.confirmations)
}

type memStore struct {
	mu            sync.Mutex
	templates     map[string]*Template
	confirmations map[string]*Confirmation
	now           time.Time

	// failTemplate makes CreateConfirmation fail for that template
	failTemplate string
}

func newMemStore() *memStore {
	return &memStore{
		templates:     make(map[string]*Template),
		confirmations: make(map[string]*Confirmation),
		now:           time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func cloneTemplate(t *Template) *Template {
	cp := *t
	cp.Participants = append([]*expense.SplitParticipant(nil), t.Participants...)
	return &cp
}

func (m *memStore) CreateTemplate(ctx context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = m.tick()
	t.UpdatedAt = t.CreatedAt
	m.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (m *memStore) GetTemplate(ctx context.Context, id string) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	return cloneTemplate(t), nil
}

func (m *memStore) ListTemplates(ctx context.Context, groupID string) ([]*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Template{}
	for _, t := range m.templates {
		if t.GroupID == groupID && t.IsActive {
			out = append(out, cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateTemplate(ctx context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; !ok {
		return ErrTemplateNotFound
	}
	t.UpdatedAt = m.tick()
	m.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (m *memStore) DeactivateTemplate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return ErrTemplateNotFound
	}
	t.IsActive = false
	return nil
}

func (m *memStore) CreateConfirmation(ctx context.Context, c *Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.TemplateID != "" && c.TemplateID == m.failTemplate {
		return errStoreDown
	}
	for _, existing := range m.confirmations {
		if existing.TemplateID == c.TemplateID && existing.Month == c.Month {
			return ErrAlreadyConfirmed
		}
	}
	c.ConfirmedAt = m.tick()
	cp := *c
	m.confirmations[c.ID] = &cp
	return nil
}

func (m *memStore) GetConfirmation(ctx context.Context, id string) (*Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.confirmations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListConfirmations(ctx context.Context, groupID, month string) ([]*Confirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Confirmation
	for _, c := range m.confirmations {
		if c.GroupID == groupID && c.Month == month {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) DeleteConfirmation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.confirmations, id)
	return nil
}

// expenseStore is a minimal expense.Store
type expenseStore struct {
	mu       sync.Mutex
	expenses map[string]*expense.Expense
}

func newExpenseStore() *expenseStore {
	return &expenseStore{expenses: make(map[string]*expense.Expense)}
}

func (s *expenseStore) Create(ctx context.Context, e *expense.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.expenses[e.ID] = &cp
	return nil
}

func (s *expenseStore) GetByID(ctx context.Context, id string) (*expense.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *expenseStore) ListByGroupID(ctx context.Context, groupID string, p expense.Period, limit, offset int) ([]*expense.Expense, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*expense.Expense
	for _, e := range s.expenses {
		if e.GroupID == groupID && p.Contains(e.ExpenseDate) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (s *expenseStore) Update(ctx context.Context, id string, req *expense.UpdateExpenseRequest) (*expense.Expense, error) {
	return s.GetByID(ctx, id)
}

func (s *expenseStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return expense.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *expenseStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
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
