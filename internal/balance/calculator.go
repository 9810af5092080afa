package balance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CalculateNetBalances reduces expenses into a net balance per user.
//
// Every member has a key, starting at zero. For each expense the payer is credited the sum of the
// participant shares and each participant is debited their own share.
// User IDs not present in members are accumulated rather than rejected.
// Settlement expenses go through the same accounting.
func CalculateNetBalances(expenses []Expense, members []Member) Balances {
	balances := make(Balances, len(members))
	for _, m := range members {
		balances[m.UserID] = decimal.Zero
	}

	for _, e := range expenses {
		total := decimal.Zero
		for _, p := range e.Participants {
			total = total.Add(p.Amount)
		}

		balances[e.PaidBy] = balances.Get(e.PaidBy).Add(total)

		for _, p := range e.Participants {
			balances[p.UserID] = balances.Get(p.UserID).Sub(p.Amount)
		}
	}

	return balances
}

// UserBalance returns a single user's net balance within the group.
func UserBalance(expenses []Expense, members []Member, userID string) decimal.Decimal {
	return CalculateNetBalances(expenses, members).Get(userID)
}

// UnknownUsers lists, sorted and without duplicates, every user ID that an
// expense references as payer or participant but that is not in members.
func UnknownUsers(expenses []Expense, members []Member) []string {
	known := make(map[string]struct{}, len(members))
	for _, m := range members {
		known[m.UserID] = struct{}{}
	}

	seen := make(map[string]struct{})
	check := func(id string) {
		if _, ok := known[id]; ok {
			return
		}
		seen[id] = struct{}{}
	}

	for _, e := range expenses {
		check(e.PaidBy)
		for _, p := range e.Participants {
			check(p.UserID)
		}
	}

	unknown := make([]string, 0, len(seen))
	for id := range seen {
		unknown = append(unknown, id)
	}
	sort.Strings(unknown)
	return unknown
}
