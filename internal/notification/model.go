package notification

import "time"

// Notification tells a member about activity in one of their groups
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	GroupID     string           `json:"group_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	IsRead      bool             `json:"is_read"`
	ExpenseID   *string          `json:"expense_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeExpenseAdded NotificationType = "EXPENSE_ADDED"
	NotificationTypeSettlement   NotificationType = "SETTLEMENT"
)

// NotificationResponse represents the response for a notification
type NotificationResponse struct {
	ID        string           `json:"id"`
	GroupID   string           `json:"group_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	ExpenseID *string          `json:"expense_id,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// ToResponse converts a Notification to a NotificationResponse
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		GroupID:   n.GroupID,
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ExpenseID: n.ExpenseID,
		CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
