package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// RecordSettlementRequest represents a payment made outside the app.
// SettledOn (YYYY-MM-DD) defaults to today.
type RecordSettlementRequest struct {
	From      string          `json:"from" validate:"required"`
	To        string          `json:"to" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Notes     *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
	SettledOn string          `json:"settled_on,omitempty"`
}

// SettlementResponse represents the response for a recorded settlement
type SettlementResponse struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Notes      *string         `json:"notes,omitempty"`
	SettledOn  string          `json:"settled_on"`
	RecordedBy string          `json:"recorded_by"`
	CreatedAt  string          `json:"created_at"`
}

// SuggestionsResponse lists the payments that settle a group
type SuggestionsResponse struct {
	Currency    string                   `json:"currency"`
	Suggestions []balance.SimplifiedDebt `json:"suggestions"`
}

// SummaryResponse reports spending over a period
type SummaryResponse struct {
	Currency     string                     `json:"currency"`
	From         string                     `json:"from,omitempty"`
	To           string                     `json:"to,omitempty"`
	TotalSpent   decimal.Decimal            `json:"total_spent"`
	ExpenseCount int                        `json:"expense_count"`
	PaidBy       map[string]decimal.Decimal `json:"paid_by"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse(currency string) *SettlementResponse {
	return &SettlementResponse{
		ID:         s.ID,
		GroupID:    s.GroupID,
		From:       s.From,
		To:         s.To,
		Amount:     s.Amount,
		Currency:   currency,
		Notes:      s.Notes,
		SettledOn:  s.SettledOn.Format("2006-01-02"),
		RecordedBy: s.RecordedBy,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
