package recurring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/expense"
	"github.com/fkhayef/groupsplit/internal/expense/split"
)

// MonthLayout is the format of a month key
const MonthLayout = "2006-01"

// Template is a fixed monthly cost such as rent, confirmed once per month
type Template struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"group_id"`
	Description   string          `json:"description"`
	DefaultAmount decimal.Decimal `json:"default_amount"`
	Category      string          `json:"category"`
	SplitType     split.SplitType `json:"split_type"`
	PaidBy        string          `json:"paid_by"`
	CreatedBy     string          `json:"created_by"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Participants []*expense.SplitParticipant `json:"participants"`
}

// expenseRequest builds the expense a confirmation of t records
func (t *Template) expenseRequest(amount decimal.Decimal, date string) *expense.CreateExpenseRequest {
	notes := "Recurring: " + t.Description
	return &expense.CreateExpenseRequest{
		PaidBy:       t.PaidBy,
		Amount:       amount,
		Description:  t.Description,
		Category:     t.Category,
		SplitType:    string(t.SplitType),
		ExpenseDate:  date,
		Notes:        &notes,
		Participants: t.Participants,
	}
}

// Confirmation records that a template was paid for one month
type Confirmation struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	TemplateID  string          `json:"template_id"`
	Month       string          `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseID   string          `json:"expense_id"`
	ConfirmedBy string          `json:"confirmed_by"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// Item is a template with its confirmation for one month, if any
type Item struct {
	Template     *Template
	Confirmation *Confirmation
}

// MonthStatus lists the active templates of a group for one month
type MonthStatus struct {
	Month      string
	Items      []*Item
	TotalFixed decimal.Decimal
	PaidSoFar  decimal.Decimal
	Remaining  decimal.Decimal
}
