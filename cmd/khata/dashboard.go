package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/ledger"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/position"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show cash, bank, receivable and payable totals",
		RunE:  runDashboard,
	}

	cmd.Flags().String("date", "", "as-of date (YYYY-MM-DD, default today)")

	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ledgers := ledger.New(store)
	positions := position.New(store, positionOptions())

	cash, err := ledgers.GetLedger(ctx, model.LedgerCash, date)
	if err != nil {
		return err
	}
	bank, err := ledgers.GetLedger(ctx, model.LedgerBank, date)
	if err != nil {
		return err
	}
	receivable, err := positions.TotalReceivable(ctx)
	if err != nil {
		return err
	}
	payable, err := positions.TotalPayable(ctx)
	if err != nil {
		return err
	}

	dash := &model.Dashboard{
		Date:            date,
		CashBalance:     cash.Closing,
		BankBalance:     bank.Closing,
		TotalReceivable: receivable,
		TotalPayable:    payable,
	}
	dash.Warnings = append(dash.Warnings, cash.Warnings...)
	dash.Warnings = append(dash.Warnings, bank.Warnings...)

	fmt.Print(cli.RenderDashboard(dash))
	return nil
}
