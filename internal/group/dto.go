package group

import (
	"strings"
	"unicode/utf8"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	CreatorName string  `json:"creator_name" validate:"required,min=1,max=50"` // display name inside the group
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID   string     `json:"user_id" validate:"required"`
	UserName string     `json:"user_name" validate:"required,min=1,max=50"`
	Role     MemberRole `json:"role"`
}

// UpdateMemberRequest changes the caller's display name in the group
type UpdateMemberRequest struct {
	UserName string `json:"user_name" validate:"required,min=1,max=50"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	UserID   string     `json:"user_id"`
	UserName string     `json:"user_name"`
	Role     MemberRole `json:"role"`
	JoinedAt string     `json:"joined_at"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		UserID:   m.UserID,
		UserName: m.UserName,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func validName(s string, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 1 && n <= max
}

// Validate checks field bounds
func (r *CreateGroupRequest) Validate() error {
	if !validName(r.Name, 100) {
		return ErrInvalidGroupName
	}
	if !validName(r.CreatorName, 50) {
		return ErrInvalidDisplayName
	}
	return nil
}

// Validate checks field bounds
func (r *UpdateGroupRequest) Validate() error {
	if r.Name != nil && !validName(*r.Name, 100) {
		return ErrInvalidGroupName
	}
	return nil
}

// Validate checks field bounds and defaults the role
func (r *AddMemberRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidUserID
	}
	if !validName(r.UserName, 50) {
		return ErrInvalidDisplayName
	}
	switch r.Role {
	case "":
		r.Role = MemberRoleMember
	case MemberRoleAdmin, MemberRoleMember:
	default:
		return ErrInvalidRole
	}
	return nil
}

// Validate checks field bounds
func (r *UpdateMemberRequest) Validate() error {
	if !validName(r.UserName, 50) {
		return ErrInvalidDisplayName
	}
	return nil
}
