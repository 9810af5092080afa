package expense

import "github.com/shopspring/decimal"

// CreateExpenseRequest represents the request to create an expense.
// PaidBy defaults to the caller; ExpenseDate (YYYY-MM-DD) defaults to today.
type CreateExpenseRequest struct {
	PaidBy       string              `json:"paid_by,omitempty"`
	Amount       decimal.Decimal     `json:"amount" validate:"required,gt=0"`
	Description  string              `json:"description" validate:"required,min=1,max=200"`
	Category     string              `json:"category,omitempty"`
	SplitType    string              `json:"split_type" validate:"oneof=equal custom one_owes_all percentage"`
	ExpenseDate  string              `json:"expense_date,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest represents the request to update an expense.
// Amount, payer and shares are fixed once recorded.
type UpdateExpenseRequest struct {
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=200"`
	Category    *string `json:"category,omitempty"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ParticipantResponse is one share in an expense response
type ParticipantResponse struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID           string                 `json:"id"`
	GroupID      string                 `json:"group_id"`
	PaidBy       string                 `json:"paid_by"`
	Amount       decimal.Decimal        `json:"amount"`
	Description  string                 `json:"description"`
	Category     string                 `json:"category"`
	SplitType    string                 `json:"split_type"`
	ExpenseDate  string                 `json:"expense_date"`
	Notes        *string                `json:"notes,omitempty"`
	IsSettlement bool                   `json:"is_settlement"`
	CreatedBy    string                 `json:"created_by"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
	Participants []*ParticipantResponse `json:"participants"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	participants := make([]*ParticipantResponse, len(e.Participants))
	for i, p := range e.Participants {
		participants[i] = &ParticipantResponse{UserID: p.UserID, Amount: p.Amount}
	}

	return &ExpenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		PaidBy:       e.PaidBy,
		Amount:       e.Amount,
		Description:  e.Description,
		Category:     e.Category,
		SplitType:    string(e.SplitType),
		ExpenseDate:  e.ExpenseDate.Format(DateLayout),
		Notes:        e.Notes,
		IsSettlement: e.IsSettlement,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    e.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		Participants: participants,
	}
}
