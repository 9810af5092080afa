package split

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func sumShares(shares []balance.Participant) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}

func TestFactory_Create(t *testing.T) {
	f := NewSplitStrategyFactory()

	for _, st := range []SplitType{SplitTypeEqual, SplitTypeCustom, SplitTypeOneOwesAll, SplitTypePercentage} {
		s, err := f.Create(st)
		if err != nil {
			t.Fatalf("Create(%s) error: %v", st, err)
		}
		if s.Type() != st {
			t.Errorf("Create(%s).Type() = %s", st, s.Type())
		}
	}

	if _, err := f.CreateFromString("thirds"); err == nil {
		t.Error("expected error for unknown split type")
	}

	s, err := f.CreateFromString("")
	if err != nil || s.Type() != SplitTypeEqual {
		t.Errorf("CreateFromString(\"\") = %v, %v; want equal strategy", s, err)
	}
}

func TestEqualStrategy_Calculate(t *testing.T) {
	tests := []struct {
		name   string
		total  string
		users  []string
		shares []string
	}{
		{"even", "90", []string{"a", "b", "c"}, []string{"30", "30", "30"}},
		{"remainder to first", "100", []string{"a", "b", "c"}, []string{"33.34", "33.33", "33.33"}},
		{"single", "12.5", []string{"a"}, []string{"12.5"}},
		{"cents", "0.05", []string{"a", "b"}, []string{"0.02", "0.03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([]SplitInput, len(tt.users))
			for i, u := range tt.users {
				inputs[i] = SplitInput{UserID: u}
			}

			shares, err := (&EqualStrategy{}).Calculate(decimal.RequireFromString(tt.total), "a", inputs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, want := range tt.shares {
				if shares[i].UserID != tt.users[i] || !shares[i].Amount.Equal(decimal.RequireFromString(want)) {
					t.Errorf("share[%d] = %s %s, want %s %s", i, shares[i].UserID, shares[i].Amount, tt.users[i], want)
				}
			}
			if !sumShares(shares).Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("shares sum to %s, want %s", sumShares(shares), tt.total)
			}
		})
	}
}

func TestEqualStrategy_Validate(t *testing.T) {
	s := &EqualStrategy{}

	if err := s.Validate(decimal.NewFromInt(10), "a", nil); !errors.Is(err, ErrNoParticipants) {
		t.Errorf("empty participants: got %v, want ErrNoParticipants", err)
	}
	if err := s.Validate(decimal.NewFromInt(-1), "a", []SplitInput{{UserID: "a"}}); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("negative total: got %v, want ErrNegativeAmount", err)
	}
	if err := s.Validate(decimal.NewFromInt(10), "a", []SplitInput{{UserID: "b"}, {UserID: "b"}}); !errors.Is(err, ErrDuplicateParticipant) {
		t.Errorf("duplicate: got %v, want ErrDuplicateParticipant", err)
	}
}

func TestCustomStrategy(t *testing.T) {
	s := &CustomStrategy{}
	total := decimal.NewFromInt(100)

	shares, err := s.Calculate(total, "a", []SplitInput{
		{UserID: "a", Amount: dec("25")},
		{UserID: "b", Amount: dec("74.999")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares[1].Amount.Equal(decimal.RequireFromString("75")) {
		t.Errorf("share[1] = %s, want 75", shares[1].Amount)
	}

	tests := []struct {
		name   string
		inputs []SplitInput
		want   error
	}{
		{"missing amount", []SplitInput{{UserID: "a"}}, ErrMissingCustomAmount},
		{"negative", []SplitInput{{UserID: "a", Amount: dec("-1")}, {UserID: "b", Amount: dec("101")}}, ErrNegativeAmount},
		{"short", []SplitInput{{UserID: "a", Amount: dec("50")}, {UserID: "b", Amount: dec("49")}}, ErrInvalidCustomAmounts},
	}
	for _, tt := range tests {
		if err := s.Validate(total, "a", tt.inputs); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestOneOwesAllStrategy(t *testing.T) {
	s := &OneOwesAllStrategy{}
	total := decimal.RequireFromString("42.10")

	shares, err := s.Calculate(total, "a", []SplitInput{{UserID: "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shares) != 1 || shares[0].UserID != "b" || !shares[0].Amount.Equal(total) {
		t.Errorf("shares = %v, want [b 42.10]", shares)
	}

	if _, err := s.Calculate(total, "a", []SplitInput{{UserID: "a"}}); !errors.Is(err, ErrOneOwesAllPayerOwes) {
		t.Errorf("payer owes: got %v, want ErrOneOwesAllPayerOwes", err)
	}
	if _, err := s.Calculate(total, "a", []SplitInput{{UserID: "b"}, {UserID: "c"}}); !errors.Is(err, ErrOneOwesAllArity) {
		t.Errorf("two participants: got %v, want ErrOneOwesAllArity", err)
	}
}

func TestPercentageStrategy(t *testing.T) {
	s := &PercentageStrategy{}
	total := decimal.NewFromInt(100)

	shares, err := s.Calculate(total, "a", []SplitInput{
		{UserID: "a", Percentage: dec("33.33")},
		{UserID: "b", Percentage: dec("33.33")},
		{UserID: "c", Percentage: dec("33.34")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sumShares(shares).Equal(total) {
		t.Errorf("shares sum to %s, want 100", sumShares(shares))
	}
	if !shares[2].Amount.Equal(decimal.RequireFromString("33.34")) {
		t.Errorf("share[2] = %s, want 33.34", shares[2].Amount)
	}

	if err := s.Validate(total, "a", []SplitInput{{UserID: "a", Percentage: dec("60")}, {UserID: "b", Percentage: dec("30")}}); !errors.Is(err, ErrInvalidPercentages) {
		t.Errorf("sum 90: got %v, want ErrInvalidPercentages", err)
	}
	if err := s.Validate(total, "a", []SplitInput{{UserID: "a", Percentage: dec("120")}}); !errors.Is(err, ErrPercentageOutOfRange) {
		t.Errorf("120%%: got %v, want ErrPercentageOutOfRange", err)
	}
	if err := s.Validate(total, "a", []SplitInput{{UserID: "a"}}); !errors.Is(err, ErrMissingPercentage) {
		t.Errorf("missing: got %v, want ErrMissingPercentage", err)
	}
}

func TestPercentageStrategy_RemainderNeverGoesNegative(t *testing.T) {
	s := &PercentageStrategy{}
	total := decimal.NewFromInt(100)

	shares, err := s.Calculate(total, "a", []SplitInput{
		{UserID: "a", Percentage: dec("50.01")},
		{UserID: "b", Percentage: dec("50")},
		{UserID: "c", Percentage: dec("0")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sumShares(shares).Equal(total) {
		t.Errorf("shares sum to %s, want 100", sumShares(shares))
	}
	want := []string{"50", "50", "0"}
	for i, w := range want {
		if !shares[i].Amount.Equal(decimal.RequireFromString(w)) {
			t.Errorf("share[%d] = %s, want %s", i, shares[i].Amount, w)
		}
		if shares[i].Amount.IsNegative() {
			t.Errorf("share[%d] is negative: %s", i, shares[i].Amount)
		}
	}
}

func TestStrategies_FeedBalanceCalculator(t *testing.T) {
	shares, err := (&EqualStrategy{}).Calculate(decimal.NewFromInt(90), "alice", []SplitInput{
		{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := balance.CalculateNetBalances([]balance.Expense{{
		Amount:       decimal.NewFromInt(90),
		PaidBy:       "alice",
		Participants: shares,
	}}, nil)

	if !b.Get("alice").Equal(decimal.NewFromInt(60)) {
		t.Errorf("alice = %s, want 60", b.Get("alice"))
	}
}
