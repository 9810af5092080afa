package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store is the persistence the notification service needs
type Store interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
}

// RosterSource supplies display names for a group's members
type RosterSource interface {
	Roster(ctx context.Context, groupID string) ([]balance.Member, error)
}

// Service handles notification business logic
type Service struct {
	repo     Store
	members  RosterSource
	currency string
}

// NewService creates a new notification service
func NewService(repo Store, members RosterSource, currency string) *Service {
	return &Service{repo: repo, members: members, currency: currency}
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// ExpenseAdded notifies everyone who owes a positive share of e, except
// whoever recorded it
func (s *Service) ExpenseAdded(ctx context.Context, e *expense.Expense) error {
	roster, err := s.members.Roster(ctx, e.GroupID)
	if err != nil {
		return err
	}
	names := balance.NamesOf(roster)
	name := func(id string) string { return balance.DisplayName(names, id) }

	for _, p := range e.Participants {
		if p.UserID == e.CreatedBy || p.UserID == e.PaidBy || !p.Amount.IsPositive() {
			continue
		}

		n := &Notification{
			ID:          uuid.NewString(),
			RecipientID: p.UserID,
			GroupID:     e.GroupID,
			Type:        NotificationTypeExpenseAdded,
			ExpenseID:   &e.ID,
		}
		amount := p.Amount.StringFixed(2)
		if e.IsSettlement {
			n.Type = NotificationTypeSettlement
			n.Message = fmt.Sprintf("%s paid you %s %s", name(e.PaidBy), s.currency, amount)
		} else {
			n.Message = fmt.Sprintf("%s added %q: your share is %s %s", name(e.PaidBy), e.Description, s.currency, amount)
		}

		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
