package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/taxonomy"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and inspect transactions",
	}

	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txDeleteCmd())
	cmd.AddCommand(txTypesCmd())

	return cmd
}

func txAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record a single signed transaction. The --type and --mode pair must be
a known entry type; run "khata tx types" to list them.`,
		RunE: runTxAdd,
	}

	cmd.Flags().String("type", "", "entry type, e.g. sale_to_customer")
	cmd.Flags().String("mode", "", "payment mode (cash, bank, credit); omit for modeless entries")
	cmd.Flags().String("amount", "", "amount, e.g. 1500 or 250.50; the entry type sets the stored sign")
	cmd.Flags().String("date", "", "transaction date (YYYY-MM-DD, default today)")
	cmd.Flags().String("desc", "", "free-form description")
	cmd.Flags().Int64("customer", 0, "customer party ID")
	cmd.Flags().Int64("supplier", 0, "supplier party ID")
	cmd.Flags().Int64("agreement", 0, "agreement ID for loan/chit entries")
	cmd.Flags().StringArray("item", nil, "stock line as productID:qty[:unitPrice], repeatable")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	base, _ := cmd.Flags().GetString("type")
	mode, _ := cmd.Flags().GetString("mode")
	rawAmount, _ := cmd.Flags().GetString("amount")
	desc, _ := cmd.Flags().GetString("desc")
	customerID, _ := cmd.Flags().GetInt64("customer")
	supplierID, _ := cmd.Flags().GetInt64("supplier")
	agreementID, _ := cmd.Flags().GetInt64("agreement")
	rawItems, _ := cmd.Flags().GetStringArray("item")

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid --amount %q: %w", rawAmount, err)
	}
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}

	txn := &model.Transaction{
		Date:        date,
		BaseAction:  model.BaseAction(base),
		PaymentMode: model.PaymentMode(mode),
		Amount:      amount,
		Description: desc,
	}
	if mode == "" {
		txn.PaymentMode = model.ModeNone
	}
	def, err := taxonomy.Lookup(txn.BaseAction, txn.PaymentMode)
	if err != nil {
		return err
	}
	txn.Amount = def.StoredAmount(amount)
	if customerID > 0 {
		txn.UserID = &customerID
	}
	if supplierID > 0 {
		txn.LenderID = &supplierID
	}
	if agreementID > 0 {
		txn.AgreementID = &agreementID
	}

	for _, raw := range rawItems {
		item, perr := parseItemFlag(raw)
		if perr != nil {
			return perr
		}
		txn.Items = append(txn.Items, item)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Stock lines on a transaction are applied here; invoices go through
	// the materializer instead.
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := tx.SaveTransaction(ctx, txn)
	if err != nil {
		return err
	}
	for _, item := range txn.Items {
		if err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	label := taxonomy.Label(txn.BaseAction, txn.PaymentMode)
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded #%d: %s %s", id, label, cli.Amount(txn.Amount))))
	return nil
}

func parseItemFlag(raw string) (model.TransactionItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return model.TransactionItem{}, fmt.Errorf("invalid --item %q: expected productID:qty[:unitPrice]", raw)
	}
	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || productID <= 0 {
		return model.TransactionItem{}, fmt.Errorf("invalid product ID in --item %q", raw)
	}
	qty, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || qty == 0 {
		return model.TransactionItem{}, fmt.Errorf("invalid quantity in --item %q", raw)
	}
	price := decimal.Zero
	if len(parts) == 3 {
		price, err = decimal.NewFromString(parts[2])
		if err != nil {
			return model.TransactionItem{}, fmt.Errorf("invalid unit price in --item %q", raw)
		}
	}
	return model.TransactionItem{ProductID: productID, Quantity: qty, UnitPrice: price}, nil
}

func txListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE:  runTxList,
	}

	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().Int64("customer", 0, "filter by customer party ID")
	cmd.Flags().Int64("supplier", 0, "filter by supplier party ID")

	return cmd
}

func runTxList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var filter service.TransactionFilter
	if raw, _ := cmd.Flags().GetString("from"); raw != "" {
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		filter.StartDate = &from
	}
	if raw, _ := cmd.Flags().GetString("to"); raw != "" {
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}
		filter.EndDate = &to
	}
	if id, _ := cmd.Flags().GetInt64("customer"); id > 0 {
		filter.UserID = &id
	}
	if id, _ := cmd.Flags().GetInt64("supplier"); id > 0 {
		filter.LenderID = &id
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return err
	}

	labels := make([]string, len(txns))
	for i, txn := range txns {
		labels[i] = taxonomy.Label(txn.BaseAction, txn.PaymentMode)
	}
	fmt.Print(cli.RenderTransactions(txns, labels))
	return nil
}

func txDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "transaction")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Reverse stock lines before removing the transaction.
			tx, err := store.BeginTx(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback() }()

			txn, err := tx.GetTransactionByID(ctx, id)
			if err != nil {
				return err
			}
			for _, item := range txn.Items {
				if err := tx.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
					return err
				}
			}
			if err := tx.DeleteTransaction(ctx, id); err != nil {
				return err
			}
			if err := tx.Commit(); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction #%d", id)))
			return nil
		},
	}
}

func txTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List all valid entry types",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(cli.FormatTitle("Entry Types"))
			for _, opt := range taxonomy.EntryOptions() {
				mode := string(opt.Mode)
				if opt.Mode == model.ModeNone {
					mode = "-"
				}
				fmt.Printf("  %-32s %-8s %s\n", opt.Base, mode, opt.Label)
			}
			return nil
		},
	}
}
