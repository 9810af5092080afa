package balance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// position is a creditor or debtor with the amount still to be settled.
type position struct {
	userID    string
	remaining decimal.Decimal
}

// SimplifyDebts turns net balances into a list of payments that settles
// every balance, using a greedy largest-first sweep.
//
// Balances within Epsilon of zero are treated as settled and never appear
// in the output. Creditors and debtors are each ordered by amount
// descending, then by user ID ascending, so identical input always yields
// identical output. Emitted amounts are rounded to cents. Names missing
// from names fall back to the user ID.
func SimplifyDebts(balances Balances, names map[string]string) []SimplifiedDebt {
	var creditors, debtors []*position

	for userID, b := range balances {
		switch {
		case b.GreaterThan(epsilon):
			creditors = append(creditors, &position{userID: userID, remaining: b})
		case b.LessThan(epsilon.Neg()):
			debtors = append(debtors, &position{userID: userID, remaining: b.Neg()})
		}
	}

	sortPositions(creditors)
	sortPositions(debtors)

	debts := make([]SimplifiedDebt, 0)
	ci, di := 0, 0

	for ci < len(creditors) && di < len(debtors) {
		creditor := creditors[ci]
		debtor := debtors[di]
		settle := decimal.Min(creditor.remaining, debtor.remaining)

		if settle.GreaterThan(epsilon) {
			debts = append(debts, SimplifiedDebt{
				From:     debtor.userID,
				FromName: DisplayName(names, debtor.userID),
				To:       creditor.userID,
				ToName:   DisplayName(names, creditor.userID),
				Amount:   RoundCents(settle),
			})
		}

		creditor.remaining = creditor.remaining.Sub(settle)
		debtor.remaining = debtor.remaining.Sub(settle)

		if creditor.remaining.LessThan(epsilon) {
			ci++
		}
		if debtor.remaining.LessThan(epsilon) {
			di++
		}
	}

	return debts
}

// SettlementSuggestions computes balances for the group and simplifies them.
func SettlementSuggestions(expenses []Expense, members []Member) []SimplifiedDebt {
	balances := CalculateNetBalances(expenses, members)
	return SimplifyDebts(balances, NamesOf(members))
}

// NamesOf builds a userID -> display name lookup from a roster.
func NamesOf(members []Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.UserName
	}
	return names
}

func sortPositions(ps []*position) {
	sort.Slice(ps, func(i, j int) bool {
		if c := ps[i].remaining.Cmp(ps[j].remaining); c != 0 {
			return c > 0
		}
		return ps[i].userID < ps[j].userID
	})
}

// DisplayName returns the name for userID, or the user ID itself when the
// name is missing or empty.
func DisplayName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return userID
}
