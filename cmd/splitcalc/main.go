// Command splitcalc computes net balances and settlement suggestions for a
// group described in a JSON file, without a database.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fkhayef/groupsplit/internal/balance"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// ledger is the input file layout
type ledger struct {
	Members  []balance.Member  `json:"members"`
	Expenses []balance.Expense `json:"expenses"`
}

type outputFlags struct {
	format string
	strict bool
}

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "splitcalc",
		Short:   "Compute group balances and who should pay whom",
		Version: version,
	}

	var flags outputFlags
	root.PersistentFlags().StringVar(&flags.format, "format", "text", "Output format: text or json")
	root.PersistentFlags().BoolVar(&flags.strict, "strict", false, "Fail when expenses reference users missing from members")

	root.AddCommand(&cobra.Command{
		Use:   "balances <ledger.json>",
		Short: "Print every member's net balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load(args[0], flags)
			if err != nil {
				return err
			}
			return printBalances(cmd.OutOrStdout(), l, flags.format)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "settle <ledger.json>",
		Short: "Print the simplified payments that settle the group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load(args[0], flags)
			if err != nil {
				return err
			}
			return printSettlements(cmd.OutOrStdout(), l, flags.format)
		},
	})

	return root
}

func load(path string, flags outputFlags) (*ledger, error) {
	if flags.format != "text" && flags.format != "json" {
		return nil, codeError(2, "invalid --format %q: must be text or json", flags.format)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, codeError(2, "reading ledger: %s", err)
	}

	var l ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, codeError(2, "parsing ledger: %s", err)
	}

	if flags.strict {
		if unknown := balance.UnknownUsers(l.Expenses, l.Members); len(unknown) > 0 {
			return nil, codeError(3, "unknown users in expenses: %v", unknown)
		}
	}
	return &l, nil
}

type balanceLine struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Balance  decimal.Decimal `json:"balance"`
}

func printBalances(w io.Writer, l *ledger, format string) error {
	balances := balance.CalculateNetBalances(l.Expenses, l.Members)
	names := balance.NamesOf(l.Members)

	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]balanceLine, len(ids))
	for i, id := range ids {
		name := names[id]
		if name == "" {
			name = id
		}
		lines[i] = balanceLine{UserID: id, UserName: name, Balance: balance.RoundCents(balances[id])}
	}

	if format == "json" {
		return writeJSON(w, lines)
	}
	for _, line := range lines {
		fmt.Fprintf(w, "%-20s %12s\n", line.UserName, line.Balance.StringFixed(2))
	}
	return nil
}

func printSettlements(w io.Writer, l *ledger, format string) error {
	debts := balance.SettlementSuggestions(l.Expenses, l.Members)

	if format == "json" {
		return writeJSON(w, debts)
	}
	if len(debts) == 0 {
		fmt.Fprintln(w, "Everyone is settled up.")
		return nil
	}
	for _, debt := range debts {
		fmt.Fprintf(w, "%s pays %s %s\n", debt.FromName, debt.ToName, debt.Amount.StringFixed(2))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
