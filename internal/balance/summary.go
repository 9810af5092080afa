package balance

import "github.com/shopspring/decimal"

// Summary is the spending overview for a set of expenses.
type Summary struct {
	TotalSpent decimal.Decimal            `json:"total_spent"`
	PaidBy     map[string]decimal.Decimal `json:"paid_by"`
	Count      int                        `json:"count"`
}

// Summarize totals the stated amounts of non-settlement expenses, overall
// and per payer. Recorded settlements move money but are not spending.
func Summarize(expenses []Expense) Summary {
	s := Summary{
		TotalSpent: decimal.Zero,
		PaidBy:     make(map[string]decimal.Decimal),
	}

	for _, e := range expenses {
		if e.IsSettlement {
			continue
		}
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		if prev, ok := s.PaidBy[e.PaidBy]; ok {
			s.PaidBy[e.PaidBy] = prev.Add(e.Amount)
		} else {
			s.PaidBy[e.PaidBy] = e.Amount
		}
		s.Count++
	}

	return s
}
