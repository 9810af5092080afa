package balance

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func assertDebt(t *testing.T, got SimplifiedDebt, from, to, amount string) {
	t.Helper()
	if got.From != from || got.To != to || !got.Amount.Equal(d(amount)) {
		t.Errorf("debt = %s->%s %s, want %s->%s %s", got.From, got.To, got.Amount, from, to, amount)
	}
}

func TestSimplifyDebts_TwoMembers(t *testing.T) {
	expenses := []Expense{{
		Amount:       d("100"),
		PaidBy:       "alice",
		Participants: []Participant{share("alice", "50"), share("bob", "50")},
	}}

	debts := SettlementSuggestions(expenses, trio[:2])

	if len(debts) != 1 {
		t.Fatalf("len(debts) = %d, want 1", len(debts))
	}
	assertDebt(t, debts[0], "bob", "alice", "50")
	if debts[0].FromName != "Bob" || debts[0].ToName != "Alice" {
		t.Errorf("names = %q -> %q, want Bob -> Alice", debts[0].FromName, debts[0].ToName)
	}
}

func TestSimplifyDebts_ThreeWaySplitTieBreaksByUserID(t *testing.T) {
	expenses := []Expense{{
		Amount:       d("90"),
		PaidBy:       "alice",
		Participants: []Participant{share("alice", "30"), share("carol", "30"), share("bob", "30")},
	}}

	debts := SettlementSuggestions(expenses, trio)

	if len(debts) != 2 {
		t.Fatalf("len(debts) = %d, want 2", len(debts))
	}
	assertDebt(t, debts[0], "bob", "alice", "30")
	assertDebt(t, debts[1], "carol", "alice", "30")
}

func TestSimplifyDebts_FullySettledGroup(t *testing.T) {
	expenses := []Expense{
		{Amount: d("50"), PaidBy: "alice", Participants: []Participant{share("bob", "50")}},
		{Amount: d("50"), PaidBy: "bob", Participants: []Participant{share("alice", "50")}, IsSettlement: true},
	}

	debts := SettlementSuggestions(expenses, trio[:2])

	if debts == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(debts) != 0 {
		t.Errorf("len(debts) = %d, want 0: %v", len(debts), debts)
	}
}

func TestSimplifyDebts_ThreeWayNetProducesTwoPayments(t *testing.T) {
	balances := Balances{
		"a": d("-100"),
		"b": d("60"),
		"c": d("40"),
		"d": d("0"),
	}

	debts := SimplifyDebts(balances, nil)

	if len(debts) != 2 {
		t.Fatalf("len(debts) = %d, want 2: %v", len(debts), debts)
	}
	assertDebt(t, debts[0], "a", "b", "60")
	assertDebt(t, debts[1], "a", "c", "40")
}

func TestSimplifyDebts_LargestFirstOrdering(t *testing.T) {
	balances := Balances{
		"a": d("70"),
		"b": d("30"),
		"c": d("-20"),
		"d": d("-80"),
	}

	debts := SimplifyDebts(balances, nil)

	if len(debts) != 3 {
		t.Fatalf("len(debts) = %d, want 3: %v", len(debts), debts)
	}
	assertDebt(t, debts[0], "d", "a", "70")
	assertDebt(t, debts[1], "d", "b", "10")
	assertDebt(t, debts[2], "c", "b", "20")
}

func TestSimplifyDebts_ExcludesNearZeroBalances(t *testing.T) {
	balances := Balances{
		"a": d("10.01"),
		"b": d("-0.01"),
		"c": d("0.01"),
		"d": d("-10.01"),
	}

	debts := SimplifyDebts(balances, nil)

	if len(debts) != 1 {
		t.Fatalf("len(debts) = %d, want 1: %v", len(debts), debts)
	}
	assertDebt(t, debts[0], "d", "a", "10.01")
}

func TestSimplifyDebts_RoundsToCents(t *testing.T) {
	third := decimal.NewFromInt(100).Div(decimal.NewFromInt(3))
	expenses := []Expense{{
		Amount: d("100"),
		PaidBy: "alice",
		Participants: []Participant{
			{UserID: "alice", Amount: third},
			{UserID: "bob", Amount: third},
			{UserID: "carol", Amount: third},
		},
	}}

	debts := SettlementSuggestions(expenses, trio)

	if len(debts) != 2 {
		t.Fatalf("len(debts) = %d, want 2: %v", len(debts), debts)
	}
	assertDebt(t, debts[0], "bob", "alice", "33.33")
	assertDebt(t, debts[1], "carol", "alice", "33.33")
}

func TestSimplifyDebts_NameFallsBackToUserID(t *testing.T) {
	balances := Balances{"x": d("5"), "y": d("-5")}

	debts := SimplifyDebts(balances, map[string]string{"x": "Xavier", "y": ""})

	if len(debts) != 1 {
		t.Fatalf("len(debts) = %d, want 1", len(debts))
	}
	if debts[0].FromName != "y" {
		t.Errorf("FromName = %q, want fallback %q", debts[0].FromName, "y")
	}
	if debts[0].ToName != "Xavier" {
		t.Errorf("ToName = %q, want %q", debts[0].ToName, "Xavier")
	}
}

func TestSimplifyDebts_DoesNotMutateBalances(t *testing.T) {
	balances := Balances{"a": d("25"), "b": d("-25")}

	SimplifyDebts(balances, nil)

	if !balances["a"].Equal(d("25")) || !balances["b"].Equal(d("-25")) {
		t.Errorf("balances mutated: %v", balances)
	}
}

func TestSimplifyDebts_Deterministic(t *testing.T) {
	balances := Balances{
		"m": d("15"), "n": d("15"), "o": d("15"),
		"p": d("-15"), "q": d("-15"), "r": d("-15"),
	}

	first := SimplifyDebts(balances, nil)
	for i := 0; i < 20; i++ {
		again := SimplifyDebts(balances, nil)
		if len(again) != len(first) {
			t.Fatalf("run %d: len = %d, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].From != first[j].From || again[j].To != first[j].To || !again[j].Amount.Equal(first[j].Amount) {
				t.Fatalf("run %d: debt %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
	assertDebt(t, first[0], "p", "m", "15")
	assertDebt(t, first[1], "q", "n", "15")
	assertDebt(t, first[2], "r", "o", "15")
}

// randomNickelBalances returns balances that sum to zero, with every value
// a multiple of five cents.
func randomNickelBalances(r *rand.Rand, n int) Balances {
	b := make(Balances, n)
	total := decimal.Zero
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = string(rune('a' + i))
	}
	for _, id := range ids[:n-1] {
		v := decimal.New(int64(r.Intn(4001)-2000)*5, -2)
		b[id] = v
		total = total.Add(v)
	}
	b[ids[n-1]] = total.Neg()
	return b
}

func TestSimplifyDebts_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		balances := randomNickelBalances(r, 2+r.Intn(9))
		debts := SimplifyDebts(balances, nil)

		after := make(Balances, len(balances))
		for id, v := range balances {
			after[id] = v
		}

		for _, debt := range debts {
			if debt.From == debt.To {
				t.Fatalf("iteration %d: self payment %v", i, debt)
			}
			if !debt.Amount.IsPositive() {
				t.Fatalf("iteration %d: non-positive amount %v", i, debt)
			}
			if IsSettled(balances[debt.From]) || IsSettled(balances[debt.To]) {
				t.Fatalf("iteration %d: settled member appears in %v", i, debt)
			}
			after[debt.From] = after[debt.From].Add(debt.Amount)
			after[debt.To] = after[debt.To].Sub(debt.Amount)
		}

		for id, v := range after {
			if !IsSettled(v) {
				t.Fatalf("iteration %d: %s left with %s after settling %v", i, id, v, balances)
			}
		}

		nonZero := 0
		for _, v := range balances {
			if !IsSettled(v) {
				nonZero++
			}
		}
		if nonZero > 0 && len(debts) > nonZero-1 {
			t.Fatalf("iteration %d: %d debts for %d unsettled members", i, len(debts), nonZero)
		}
	}
}

func TestSimplifyDebts_SubCentDriftWithinTolerance(t *testing.T) {
	third := decimal.NewFromInt(10).Div(decimal.NewFromInt(3))
	balances := Balances{
		"a": third.Mul(decimal.NewFromInt(2)),
		"b": third.Neg(),
		"c": third.Neg(),
	}

	debts := SimplifyDebts(balances, nil)

	after := Balances{"a": balances["a"], "b": balances["b"], "c": balances["c"]}
	for _, debt := range debts {
		after[debt.From] = after[debt.From].Add(debt.Amount)
		after[debt.To] = after[debt.To].Sub(debt.Amount)
	}
	for id, v := range after {
		if !IsSettled(v) {
			t.Errorf("%s left with %s", id, v)
		}
	}
}

func TestDisplayName(t *testing.T) {
	names := map[string]string{"u1": "Alice", "u2": ""}

	if got := DisplayName(names, "u1"); got != "Alice" {
		t.Errorf("u1 = %q, want Alice", got)
	}
	if got := DisplayName(names, "u2"); got != "u2" {
		t.Errorf("empty name = %q, want u2", got)
	}
	if got := DisplayName(nil, "u3"); got != "u3" {
		t.Errorf("missing = %q, want u3", got)
	}
}

func TestEpsilon_IsOneCent(t *testing.T) {
	if !Epsilon().Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Epsilon() = %s, want 0.01", Epsilon())
	}
	if !IsSettled(decimal.RequireFromString("-0.01")) || IsSettled(decimal.RequireFromString("0.011")) {
		t.Error("IsSettled should accept exactly one cent and reject more")
	}
}
