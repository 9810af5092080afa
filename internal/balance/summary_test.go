package balance

import "testing"

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		{Amount: d("90"), PaidBy: "alice"},
		{Amount: d("10.50"), PaidBy: "bob"},
		{Amount: d("20"), PaidBy: "alice"},
		{Amount: d("45"), PaidBy: "bob", IsSettlement: true},
	}

	s := Summarize(expenses)

	if !s.TotalSpent.Equal(d("120.50")) {
		t.Errorf("TotalSpent = %s, want 120.50", s.TotalSpent)
	}
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if !s.PaidBy["alice"].Equal(d("110")) {
		t.Errorf("PaidBy[alice] = %s, want 110", s.PaidBy["alice"])
	}
	if !s.PaidBy["bob"].Equal(d("10.50")) {
		t.Errorf("PaidBy[bob] = %s, want 10.50", s.PaidBy["bob"])
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if !s.TotalSpent.IsZero() || s.Count != 0 || len(s.PaidBy) != 0 {
		t.Errorf("Summarize(nil) = %+v, want zero value", s)
	}
}

func TestIsSettledAndRoundCents(t *testing.T) {
	tests := []struct {
		in      string
		settled bool
		rounded string
	}{
		{"0", true, "0"},
		{"0.01", true, "0.01"},
		{"-0.01", true, "-0.01"},
		{"0.011", false, "0.01"},
		{"-0.015", false, "-0.02"},
		{"12.345", false, "12.35"},
	}

	for _, tt := range tests {
		if got := IsSettled(d(tt.in)); got != tt.settled {
			t.Errorf("IsSettled(%s) = %v, want %v", tt.in, got, tt.settled)
		}
		if got := RoundCents(d(tt.in)); !got.Equal(d(tt.rounded)) {
			t.Errorf("RoundCents(%s) = %s, want %s", tt.in, got, tt.rounded)
		}
	}
}
