package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// BalanceStatus describes which side of the ledger a member is on
type BalanceStatus string

const (
	BalanceStatusOwed    BalanceStatus = "owed"    // others owe the member
	BalanceStatusOwes    BalanceStatus = "owes"    // the member owes others
	BalanceStatusSettled BalanceStatus = "settled" // within a cent of zero
)

// MemberBalance is one member's net position in a group
type MemberBalance struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Balance  decimal.Decimal `json:"balance"` // Positive = owed money, negative = owes money
	Status   BalanceStatus   `json:"status"`
	Message  string          `json:"message"` // e.g., "Bob owes INR 16.67"
}

// GroupBalances is the balance sheet of a group over a period
type GroupBalances struct {
	GroupID   string           `json:"group_id"`
	Currency  string           `json:"currency"`
	Members   []*MemberBalance `json:"members"`
	TotalOwed decimal.Decimal  `json:"total_owed"` // Sum of positive balances
}

// MyBalance is the caller's balance plus the payments that involve them
type MyBalance struct {
	*MemberBalance
	Currency string                   `json:"currency"`
	Pay      []balance.SimplifiedDebt `json:"pay"`     // Payments the caller should make
	Receive  []balance.SimplifiedDebt `json:"receive"` // Payments the caller should receive
}

// Settlement is a recorded payment from one member to another
type Settlement struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      *string         `json:"notes,omitempty"`
	SettledOn  time.Time       `json:"settled_on"`
	RecordedBy string          `json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
