package group

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// memStore is an in-memory Store for tests
type memStore struct {
	mu      sync.Mutex
	groups  map[string]*Group
	members map[string][]*GroupMember
	now     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		groups:  make(map[string]*Group),
		members: make(map[string][]*GroupMember),
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.now = m.now.Add(time.Minute)
	return m.now
}

func (m *memStore) Create(ctx context.Context, g *Group, creator *GroupMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.CreatedAt = m.tick()
	creator.JoinedAt = g.CreatedAt
	cp := *g
	m.groups[g.ID] = &cp
	mc := *creator
	m.members[g.ID] = []*GroupMember{&mc}
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Group, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Group
	for id, members := range m.members {
		for _, mem := range members {
			if mem.UserID == userID {
				cp := *m.groups[id]
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
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

func (m *memStore) Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.groups[id]; !ok {
		return ErrGroupNotFound
	}
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *memStore) AddMember(ctx context.Context, mem *GroupMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem.JoinedAt = m.tick()
	cp := *mem
	m.members[mem.GroupID] = append(m.members[mem.GroupID], &cp)
	return nil
}

func (m *memStore) GetMembers(ctx context.Context, groupID string) ([]*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*GroupMember, 0, len(m.members[groupID]))
	for _, mem := range m.members[groupID] {
		cp := *mem
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members[groupID] {
		if mem.UserID == userID {
			cp := *mem
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateMemberName(ctx context.Context, groupID, userID, userName string) (*GroupMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members[groupID] {
		if mem.UserID == userID {
			mem.UserName = userName
			cp := *mem
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := m.members[groupID]
	for i, mem := range members {
		if mem.UserID == userID {
			m.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

// fixedExpenses returns the same expenses for every group
type fixedExpenses []balance.Expense

func (f fixedExpenses) ForBalance(ctx context.Context, groupID string, from, to time.Time) ([]balance.Expense, error) {
	return f, nil
}
