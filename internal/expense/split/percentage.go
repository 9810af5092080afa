package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// PercentageStrategy divides the expense based on each participant's percentage
type PercentageStrategy struct{}

// Type returns the split type identifier
func (s *PercentageStrategy) Type() SplitType {
	return SplitTypePercentage
}

// Validate checks if the inputs are valid for a percentage split
func (s *PercentageStrategy) Validate(total decimal.Decimal, payerID string, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Percentage == nil {
			return ErrMissingPercentage
		}
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return ErrPercentageOutOfRange
		}
		sum = sum.Add(*p.Percentage)
	}

	// Allow for small rounding in client input (99.99 to 100.01)
	if sum.Sub(hundred).Abs().GreaterThan(balance.Epsilon()) {
		return ErrInvalidPercentages
	}

	return nil
}

// Calculate gives each participant their percentage of the total, rounded
// to cents. The largest share absorbs the rounding difference; a split
// that would still leave a share negative is rejected.
func (s *PercentageStrategy) Calculate(total decimal.Decimal, payerID string, participants []SplitInput) ([]balance.Participant, error) {
	if err := s.Validate(total, payerID, participants); err != nil {
		return nil, err
	}

	shares := make([]balance.Participant, len(participants))
	for i, p := range participants {
		amount := balance.RoundCents(total.Mul(*p.Percentage).Div(hundred))
		shares[i] = balance.Participant{UserID: p.UserID, Amount: amount}
	}
	absorbRemainder(total, shares, largestShare(shares))
	for _, sh := range shares {
		if sh.Amount.IsNegative() {
			return nil, ErrInvalidPercentages
		}
	}

	return shares, nil
}
