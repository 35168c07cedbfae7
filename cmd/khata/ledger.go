package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/ledger"
	"github.com/khata-app/khata/internal/model"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger <cash|bank>",
		Short: "Show a one-day ledger with opening and closing balances",
		Long: `Derive one physical ledger for a single date: the opening balance from
all prior transactions, the day's entries in insertion order with a
running balance, and the closing balance. Nothing is stored; rerunning
the command recomputes the same report.`,
		Args: cobra.ExactArgs(1),
		RunE: runLedger,
	}

	cmd.Flags().String("date", "", "ledger date (YYYY-MM-DD, default today)")

	return cmd
}

func runLedger(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var kind model.LedgerKind
	switch args[0] {
	case "cash":
		kind = model.LedgerCash
	case "bank":
		kind = model.LedgerBank
	default:
		return fmt.Errorf("unknown ledger %q: expected cash or bank", args[0])
	}

	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := ledger.New(store).GetLedger(ctx, kind, date)
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderLedger(report))
	return nil
}
