package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// OneOwesAllStrategy puts the whole amount on a single non-payer participant
type OneOwesAllStrategy struct{}

// Type returns the split type identifier
func (s *OneOwesAllStrategy) Type() SplitType {
	return SplitTypeOneOwesAll
}

// Validate checks if the inputs are valid for a one_owes_all split
func (s *OneOwesAllStrategy) Validate(total decimal.Decimal, payerID string, participants []SplitInput) error {
	if err := validateCommon(total, participants); err != nil {
		return err
	}
	if len(participants) != 1 {
		return ErrOneOwesAllArity
	}
	if participants[0].UserID == payerID {
		return ErrOneOwesAllPayerOwes
	}
	return nil
}

// Calculate assigns the full total to the only participant
func (s *OneOwesAllStrategy) Calculate(total decimal.Decimal, payerID string, participants []SplitInput) ([]balance.Participant, error) {
	if err := s.Validate(total, payerID, participants); err != nil {
		return nil, err
	}

	return []balance.Participant{{
		UserID: participants[0].UserID,
		Amount: balance.RoundCents(total),
	}}, nil
}
