package expense

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of expense dates
const DateLayout = "2006-01-02"

const (
	maxDescriptionLen = 200
	maxNotesLen       = 500
)

// MaxAmount is the largest amount a single expense may carry
var MaxAmount = decimal.NewFromInt(10_000_000)

// Validation errors
var (
	ErrInvalidAmount      = errors.New("amount must be greater than 0 and at most 10000000 with at most 2 decimal places")
	ErrInvalidDescription = errors.New("description must be 1-200 characters")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrInvalidNotes       = errors.New("notes must be at most 500 characters")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidPeriod      = errors.New("invalid date range")
)

// Categories lists the accepted expense categories
var Categories = []string{
	"rent",
	"utilities",
	"groceries",
	"household_supplies",
	"shared_meals",
	"purchases",
	"other",
}

// DefaultCategory is used when a request names none
const DefaultCategory = "other"

// SettlementCategory marks recorded settlements
const SettlementCategory = "settlement"

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() &&
		amount.LessThanOrEqual(MaxAmount) &&
		amount.Equal(amount.Round(2))
}

func normalizeDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n == 0 || n > maxDescriptionLen {
		return "", ErrInvalidDescription
	}
	return s, nil
}

func normalizeCategory(s, description string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return DefaultCategory, nil
	case AutoCategory:
		return Categorize(description), nil
	}
	for _, c := range Categories {
		if c == s {
			return s, nil
		}
	}
	return "", ErrInvalidCategory
}

func validNotes(notes *string) bool {
	return notes == nil || utf8.RuneCountInString(*notes) <= maxNotesLen
}

// ParseDate parses an expense date. An empty string yields today in UTC.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return today(now), nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// today is the UTC calendar date of now, at midnight
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParsePeriod reads "month" (YYYY-MM) or "from"/"to" (YYYY-MM-DD) from
// query values. With no parameters the period is unbounded.
func ParsePeriod(q url.Values) (Period, error) {
	var p Period

	if month := q.Get("month"); month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return Period{}, ErrInvalidPeriod
		}
		p.From = start
		p.To = start.AddDate(0, 1, -1)
		return p, nil
	}

	if from := q.Get("from"); from != "" {
		t, err := time.Parse(DateLayout, from)
		if err != nil {
			return Period{}, ErrInvalidPeriod
		}
		p.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(DateLayout, to)
		if err != nil {
			return Period{}, ErrInvalidPeriod
		}
		p.To = t
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}
