package split

import (
	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// EqualStrategy divides the expense equally among all participants
type EqualStrategy struct{}

// Type returns the split type identifier
func (s *EqualStrategy) Type() SplitType {
	return SplitTypeEqual
}

// Validate checks if the inputs are valid for an equal split
func (s *EqualStrategy) Validate(total decimal.Decimal, payerID string, participants []SplitInput) error {
	return validateCommon(total, participants)
}

// Calculate gives each participant total/n rounded to cents.
// Leftover cents go to the first participant.
func (s *EqualStrategy) Calculate(total decimal.Decimal, payerID string, participants []SplitInput) ([]balance.Participant, error) {
	if err := s.Validate(total, payerID, participants); err != nil {
		return nil, err
	}

	per := balance.RoundCents(total.Div(decimal.NewFromInt(int64(len(participants)))))

	shares := make([]balance.Participant, len(participants))
	for i, p := range participants {
		shares[i] = balance.Participant{UserID: p.UserID, Amount: per}
	}
	absorbRemainder(total, shares, 0)

	return shares, nil
}
