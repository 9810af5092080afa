package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// CustomStrategy uses an explicit amount per participant (must sum to total)
type CustomStrategy struct{}

// Type returns the split type identifier
func (s *CustomStrategy) Type() SplitType {
	return SplitTypeCustom
}

// Validate checks if the inputs are valid for a custom split
func (s *CustomStrategy) Validate(total decimal.Decimal, payerID string, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}

	sum := decimal.Zero
	for _, p := range participants {
		if p.Amount == nil {
			return ErrMissingCustomAmount
		}
		if p.Amount.IsNegative() {
			return ErrNegativeAmount
		}
		sum = sum.Add(*p.Amount)
	}

	// Allow a cent of slack, same as the settlement tolerance
	if sum.Sub(total).Abs().GreaterThan(balance.Epsilon()) {
		return ErrInvalidCustomAmounts
	}

	return nil
}

// Calculate returns the specified amounts, rounded to cents
func (s *CustomStrategy) Calculate(total decimal.Decimal, payerID string, participants []SplitInput) ([]balance.Participant, error) {
	if err := s.Validate(total, payerID, participants); err != nil {
		return nil, err
	}

	shares := make([]balance.Participant, len(participants))
	for i, p := range participants {
		shares[i] = balance.Participant{UserID: p.UserID, Amount: balance.RoundCents(*p.Amount)}
	}

	return shares, nil
}
