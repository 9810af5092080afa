package group

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// Common errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotMember           = errors.New("you are not a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrMemberHasBalance    = errors.New("member still has an unsettled balance")
	ErrLastAdmin           = errors.New("cannot remove the last admin of a group")
	ErrInvalidGroupName    = errors.New("group name must be 1-100 characters")
	ErrInvalidDisplayName  = errors.New("display name must be 1-50 characters")
	ErrInvalidUserID       = errors.New("user_id is required")
	ErrInvalidRole         = errors.New("role must be ADMIN or MEMBER")
)

// Store is the persistence the group service needs
type Store interface {
	Create(ctx context.Context, g *Group, creator *GroupMember) error
	GetByID(ctx context.Context, id string) (*Group, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id string, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, m *GroupMember) error
	GetMembers(ctx context.Context, groupID string) ([]*GroupMember, error)
	GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error)
	UpdateMemberName(ctx context.Context, groupID, userID, userName string) (*GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// ExpenseSource supplies a group's expenses for balance checks.
// Zero from/to mean unbounded.
type ExpenseSource interface {
	ForBalance(ctx context.Context, groupID string, from, to time.Time) ([]balance.Expense, error)
}

// Service handles group business logic
type Service struct {
	repo     Store
	expenses ExpenseSource
}

// NewService creates a new group service
func NewService(repo Store, expenses ExpenseSource) *Service {
	return &Service{repo: repo, expenses: expenses}
}

// Create creates a new group and adds the creator as admin
func (s *Service) Create(ctx context.Context, creatorID string, req *CreateGroupRequest) (*Group, []*GroupMember, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	group := &Group{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   creatorID,
	}
	creator := &GroupMember{
		GroupID:  group.ID,
		UserID:   creatorID,
		UserName: strings.TrimSpace(req.CreatorName),
		Role:     MemberRoleAdmin,
	}

	if err := s.repo.Create(ctx, group, creator); err != nil {
		return nil, nil, err
	}

	return group, []*GroupMember{creator}, nil
}

// GetByID retrieves a group with all its members; the caller must belong to it
func (s *Service) GetByID(ctx context.Context, id, userID string) (*Group, []*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, ErrGroupNotFound
	}

	members, err := s.repo.GetMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if findMember(members, userID) == nil {
		return nil, nil, ErrNotMember
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByUserID(ctx, userID, perPage, offset)
}

// Update modifies an existing group (admins only)
func (s *Service) Update(ctx context.Context, id, actorID string, req *UpdateGroupRequest) (*Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireAdmin(ctx, id, actorID); err != nil {
		return nil, err
	}

	group, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// Delete removes a group (admins only)
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.requireAdmin(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddMember adds a user to a group. Any member may add members; only
// admins may add another admin.
func (s *Service) AddMember(ctx context.Context, groupID, actorID string, req *AddMemberRequest) (*GroupMember, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, err := s.RequireMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if req.Role == MemberRoleAdmin && actor.Role != MemberRoleAdmin {
		return nil, ErrNotAuthorized
	}

	// Check if user is already a member
	existing, err := s.repo.GetMember(ctx, groupID, req.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	member := &GroupMember{
		GroupID:  groupID,
		UserID:   strings.TrimSpace(req.UserID),
		UserName: strings.TrimSpace(req.UserName),
		Role:     req.Role,
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, groupID, actorID string) ([]*GroupMember, error) {
	_, members, err := s.GetByID(ctx, groupID, actorID)
	return members, err
}

// UpdateMemberName changes the caller's own display name
func (s *Service) UpdateMemberName(ctx context.Context, groupID, actorID string, req *UpdateMemberRequest) (*GroupMember, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.RequireMember(ctx, groupID, actorID); err != nil {
		return nil, err
	}

	member, err := s.repo.UpdateMemberName(ctx, groupID, actorID, strings.TrimSpace(req.UserName))
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// RemoveMember removes a user from a group. Members may leave themselves;
// admins may remove anyone. A member whose balance is not settled cannot
// be removed.
func (s *Service) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	members, err := s.roster(ctx, groupID)
	if err != nil {
		return err
	}

	actor := findMember(members, actorID)
	if actor == nil {
		return ErrNotMember
	}
	target := findMember(members, userID)
	if target == nil {
		return ErrMemberNotFound
	}
	if actorID != userID && actor.Role != MemberRoleAdmin {
		return ErrNotAuthorized
	}
	if target.Role == MemberRoleAdmin && countAdmins(members) == 1 {
		return ErrLastAdmin
	}

	expenses, err := s.expenses.ForBalance(ctx, groupID, time.Time{}, time.Time{})
	if err != nil {
		return err
	}
	if !balance.IsSettled(balance.UserBalance(expenses, toBalanceMembers(members), userID)) {
		return ErrMemberHasBalance
	}

	return s.repo.RemoveMember(ctx, groupID, userID)
}

// Roster returns the group's members in calculator form
func (s *Service) Roster(ctx context.Context, groupID string) ([]balance.Member, error) {
	members, err := s.roster(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return toBalanceMembers(members), nil
}

// RequireMember returns the caller's membership or ErrNotMember
func (s *Service) RequireMember(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	member, err := s.repo.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotMember
	}
	return member, nil
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	member, err := s.RequireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != MemberRoleAdmin {
		return nil, ErrNotAuthorized
	}
	return member, nil
}

func (s *Service) roster(ctx context.Context, groupID string) ([]*GroupMember, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return s.repo.GetMembers(ctx, groupID)
}

func findMember(members []*GroupMember, userID string) *GroupMember {
	for _, m := range members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

func countAdmins(members []*GroupMember) int {
	n := 0
	for _, m := range members {
		if m.Role == MemberRoleAdmin {
			n++
		}
	}
	return n
}

func toBalanceMembers(members []*GroupMember) []balance.Member {
	out := make([]balance.Member, len(members))
	for i, m := range members {
		out[i] = m.ToBalanceMember()
	}
	return out
}
