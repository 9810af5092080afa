// Package balance computes per-member net balances from a group's expense
// history and reduces them to a short list of settling payments.
//
// Everything in this package is pure: no I/O, no package-level mutable
// state, and caller-supplied slices and maps are never modified.
package balance

import "github.com/shopspring/decimal"

// Member is one entry of a group's roster.
type Member struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Participant is one person's owed share of an expense.
type Participant struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// Expense is the view of an expense the calculator needs.
// Amount is informational only; balances are derived from participant shares.
type Expense struct {
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paid_by"`
	Participants []Participant   `json:"participants"`
	IsSettlement bool            `json:"is_settlement"`
}

// Balances maps a user ID to a signed net balance.
// Positive = owed money, Negative = owes money.
type Balances map[string]decimal.Decimal

// SimplifiedDebt is one suggested payment from a debtor to a creditor.
type SimplifiedDebt struct {
	From     string          `json:"from"`
	FromName string          `json:"from_name"`
	To       string          `json:"to"`
	ToName   string          `json:"to_name"`
	Amount   decimal.Decimal `json:"amount"`
}

// Total returns the sum of all balances. It is zero for any output of
// CalculateNetBalances.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b {
		total = total.Add(v)
	}
	return total
}

// Get returns the balance for userID, or zero when absent.
func (b Balances) Get(userID string) decimal.Decimal {
	if v, ok := b[userID]; ok {
		return v
	}
	return decimal.Zero
}
