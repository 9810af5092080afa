package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
	"github.com/fkhayef/groupsplit/internal/expense/split"
)

// Expense represents an expense or a recorded settlement in a group
type Expense struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id"`
	PaidBy       string          `json:"paid_by"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	SplitType    split.SplitType `json:"split_type"`
	ExpenseDate  time.Time       `json:"expense_date"`
	Notes        *string         `json:"notes,omitempty"`
	IsSettlement bool            `json:"is_settlement"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Participants []balance.Participant `json:"participants"`
}

// ToBalance returns the calculator's view of the expense
func (e *Expense) ToBalance() balance.Expense {
	participants := make([]balance.Participant, len(e.Participants))
	copy(participants, e.Participants)
	return balance.Expense{
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: participants,
		IsSettlement: e.IsSettlement,
	}
}

// Period restricts a query to expense dates in [From, To], both inclusive.
// A zero bound is open.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether date falls inside the period
func (p Period) Contains(date time.Time) bool {
	if !p.From.IsZero() && date.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && date.After(p.To) {
		return false
	}
	return true
}

// SplitParticipant is used when creating an expense with splits
type SplitParticipant struct {
	UserID     string           `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For percentage split
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For custom split
}

// ToSplitInput converts to the split package's input type
func (p *SplitParticipant) ToSplitInput() split.SplitInput {
	return split.SplitInput{
		UserID:     p.UserID,
		Percentage: p.Percentage,
		Amount:     p.Amount,
	}
}
