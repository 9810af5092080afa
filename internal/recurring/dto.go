package recurring

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense"
)

// CreateTemplateRequest represents the request to create a recurring expense.
// PaidBy defaults to the caller.
type CreateTemplateRequest struct {
	Description   string                      `json:"description" validate:"required,min=1,max=200"`
	DefaultAmount decimal.Decimal             `json:"default_amount" validate:"required,gt=0"`
	Category      string                      `json:"category,omitempty"`
	SplitType     string                      `json:"split_type" validate:"oneof=equal custom one_owes_all percentage"`
	PaidBy        string                      `json:"paid_by,omitempty"`
	Participants  []*expense.SplitParticipant `json:"participants" validate:"required,min=1"`
}

// UpdateTemplateRequest represents the request to update a recurring expense.
// Omitted fields keep their value.
type UpdateTemplateRequest struct {
	Description   *string                     `json:"description,omitempty"`
	DefaultAmount *decimal.Decimal            `json:"default_amount,omitempty"`
	Category      *string                     `json:"category,omitempty"`
	SplitType     *string                     `json:"split_type,omitempty"`
	PaidBy        *string                     `json:"paid_by,omitempty"`
	Participants  []*expense.SplitParticipant `json:"participants,omitempty"`
}

// ConfirmRequest confirms one template for a month. Month defaults to the
// current month and Amount to the template's default amount.
type ConfirmRequest struct {
	Month  string           `json:"month,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// BulkConfirmItem is one template in a bulk confirmation
type BulkConfirmItem struct {
	TemplateID string           `json:"template_id" validate:"required"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// BulkConfirmRequest confirms several templates for the same month
type BulkConfirmRequest struct {
	Month string             `json:"month,omitempty"`
	Items []*BulkConfirmItem `json:"items" validate:"required,min=1"`
}

// TemplateResponse represents the response for a recurring expense
type TemplateResponse struct {
	ID            string                      `json:"id"`
	GroupID       string                      `json:"group_id"`
	Description   string                      `json:"description"`
	DefaultAmount decimal.Decimal             `json:"default_amount"`
	Category      string                      `json:"category"`
	SplitType     string                      `json:"split_type"`
	PaidBy        string                      `json:"paid_by"`
	CreatedBy     string                      `json:"created_by"`
	CreatedAt     string                      `json:"created_at"`
	Participants  []*expense.SplitParticipant `json:"participants"`
}

// ToResponse converts a Template model to a TemplateResponse DTO
func (t *Template) ToResponse() *TemplateResponse {
	return &TemplateResponse{
		ID:            t.ID,
		GroupID:       t.GroupID,
		Description:   t.Description,
		DefaultAmount: t.DefaultAmount,
		Category:      t.Category,
		SplitType:     string(t.SplitType),
		PaidBy:        t.PaidBy,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Participants:  t.Participants,
	}
}

// ConfirmationResponse represents the response for a confirmation
type ConfirmationResponse struct {
	ID          string          `json:"id"`
	TemplateID  string          `json:"template_id"`
	Month       string          `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseID   string          `json:"expense_id"`
	ConfirmedBy string          `json:"confirmed_by"`
	ConfirmedAt string          `json:"confirmed_at"`
}

// ToResponse converts a Confirmation model to a ConfirmationResponse DTO
func (c *Confirmation) ToResponse() *ConfirmationResponse {
	return &ConfirmationResponse{
		ID:          c.ID,
		TemplateID:  c.TemplateID,
		Month:       c.Month,
		Amount:      c.Amount,
		ExpenseID:   c.ExpenseID,
		ConfirmedBy: c.ConfirmedBy,
		ConfirmedAt: c.ConfirmedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ItemResponse is one template's status for the month
type ItemResponse struct {
	Template     *TemplateResponse     `json:"template"`
	Confirmed    bool                  `json:"confirmed"`
	Confirmation *ConfirmationResponse `json:"confirmation,omitempty"`
}

// MonthResponse represents the response for a month's recurring expenses
type MonthResponse struct {
	Month      string          `json:"month"`
	Items      []*ItemResponse `json:"items"`
	TotalFixed decimal.Decimal `json:"total_fixed"`
	PaidSoFar  decimal.Decimal `json:"paid_so_far"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// ToResponse converts a MonthStatus to a MonthResponse DTO
func (m *MonthStatus) ToResponse() *MonthResponse {
	items := make([]*ItemResponse, len(m.Items))
	for i, it := range m.Items {
		items[i] = &ItemResponse{Template: it.Template.ToResponse(), Confirmed: it.Confirmation != nil}
		if it.Confirmation != nil {
			items[i].Confirmation = it.Confirmation.ToResponse()
		}
	}
	return &MonthResponse{
		Month:      m.Month,
		Items:      items,
		TotalFixed: m.TotalFixed,
		PaidSoFar:  m.PaidSoFar,
		Remaining:  m.Remaining,
	}
}
