package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// SplitType defines the type of split strategy
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeCustom     SplitType = "custom"
	SplitTypeOneOwesAll SplitType = "one_owes_all"
	SplitTypePercentage SplitType = "percentage"
)

// SplitInput represents a participant in a split with optional values
type SplitInput struct {
	UserID     string           `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"` // For percentage split
	Amount     *decimal.Decimal `json:"amount,omitempty"`     // For custom split
}

// Strategy is the interface that all split strategies must implement
type Strategy interface {
	// Calculate derives every participant's owed share.
	// Shares sum to the total; the payer keeps their own share if listed.
	Calculate(total decimal.Decimal, payerID string, participants []SplitInput) ([]balance.Participant, error)

	// Type returns the type identifier for this strategy
	Type() SplitType

	// Validate checks if the inputs are valid for this strategy
	Validate(total decimal.Decimal, payerID string, participants []SplitInput) error
}

// Factory creates split strategies based on the requested type
type Factory struct{}

// NewSplitStrategyFactory creates a new factory instance
func NewSplitStrategyFactory() *Factory {
	return &Factory{}
}

// Create returns the appropriate strategy implementation based on the type
func (f *Factory) Create(splitType SplitType) (Strategy, error) {
	switch splitType {
	case SplitTypeEqual:
		return &EqualStrategy{}, nil
	case SplitTypeCustom:
		return &CustomStrategy{}, nil
	case SplitTypeOneOwesAll:
		return &OneOwesAllStrategy{}, nil
	case SplitTypePercentage:
		return &PercentageStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSplitType, splitType)
	}
}

// CreateFromString creates a strategy from a string type (useful for API requests).
// An empty string selects the equal split.
func (f *Factory) CreateFromString(splitType string) (Strategy, error) {
	if splitType == "" {
		return f.Create(SplitTypeEqual)
	}
	return f.Create(SplitType(splitType))
}

var (
	ErrUnknownSplitType     = errors.New("unknown split type")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrInvalidPercentages   = errors.New("percentages must sum to 100")
	ErrInvalidCustomAmounts = errors.New("custom amounts must sum to total amount")
	ErrNegativeAmount       = errors.New("amounts cannot be negative")
	ErrMissingPercentage    = errors.New("percentage value required for all participants")
	ErrMissingCustomAmount  = errors.New("custom amount required for all participants")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 100")
	ErrOneOwesAllArity      = errors.New("one_owes_all requires exactly one participant")
	ErrOneOwesAllPayerOwes  = errors.New("one_owes_all participant cannot be the payer")
)

var hundred = decimal.NewFromInt(100)

// validateCommon checks the rules every strategy shares.
func validateCommon(total decimal.Decimal, participants []SplitInput) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if total.IsNegative() {
		return ErrNegativeAmount
	}

	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if _, ok := seen[p.UserID]; ok {
			return ErrDuplicateParticipant
		}
		seen[p.UserID] = struct{}{}
	}
	return nil
}

// largestShare returns the index of the largest share, the last one on ties
func largestShare(shares []balance.Participant) int {
	idx := 0
	for i, s := range shares {
		if s.Amount.GreaterThanOrEqual(shares[idx].Amount) {
			idx = i
		}
	}
	return idx
}

// absorbRemainder adds whatever the rounded shares are short of total to
// shares[idx], so the shares sum to the total exactly.
func absorbRemainder(total decimal.Decimal, shares []balance.Participant, idx int) {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Amount)
	}
	if diff := total.Sub(sum); !diff.IsZero() {
		shares[idx].Amount = shares[idx].Amount.Add(diff)
	}
}
