package expense

import (
	"context"
	"encoding/csv"
	"io"
	"math"

	"github.com/fkhayef/groupsplit/internal/balance"
)

var csvHeader = []string{
	"Date",
	"Description",
	"Category",
	"Amount",
	"Paid By",
	"Split Type",
	"Is Settlement",
	"Notes",
}

// ExportCSV writes every expense of the group inside p as CSV, newest first
func (s *Service) ExportCSV(ctx context.Context, groupID, actorID string, p Period, w io.Writer) error {
	if _, err := s.members.RequireMember(ctx, groupID, actorID); err != nil {
		return err
	}
	roster, err := s.members.Roster(ctx, groupID)
	if err != nil {
		return err
	}
	expenses, _, err := s.repo.ListByGroupID(ctx, groupID, p, math.MaxInt32, 0)
	if err != nil {
		return err
	}

	names := balance.NamesOf(roster)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		payer := names[e.PaidBy]
		if payer == "" {
			payer = e.PaidBy
		}
		settlement := "No"
		if e.IsSettlement {
			settlement = "Yes"
		}
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}

		record := []string{
			e.ExpenseDate.Format(DateLayout),
			e.Description,
			e.Category,
			e.Amount.StringFixed(2),
			payer,
			string(e.SplitType),
			settlement,
			notes,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
