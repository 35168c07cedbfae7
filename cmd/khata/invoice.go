package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/invoice"
	"github.com/khata-app/khata/internal/model"
)

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, update and delete invoices",
		Long: `Invoices materialize into transactions and stock movements. Creating a
sale invoice books the total against the customer's receivable, decrements
stock, and records any payment separately; editing or deleting reverses
those effects first.`,
	}

	cmd.AddCommand(invoiceCreateCmd())
	cmd.AddCommand(invoiceUpdateCmd())
	cmd.AddCommand(invoiceDeleteCmd())
	cmd.AddCommand(invoiceShowCmd())

	return cmd
}

func invoiceDraftFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("customer", 0, "customer party ID")
	cmd.Flags().String("kind", string(model.KindSale), "invoice kind (sale, sales_return)")
	cmd.Flags().String("date", "", "invoice date (YYYY-MM-DD, default today)")
	cmd.Flags().String("tax", "0", "tax percentage applied to the subtotal")
	cmd.Flags().StringArray("item", nil, "line item as productID:qty:unitPrice, repeatable")
	cmd.Flags().String("paid", "", "payment amount received (sale) or refunded (return)")
	cmd.Flags().String("paid-mode", "", "payment mode (cash, bank); required when --paid is set")
	cmd.Flags().String("notes", "", "free-form notes")
}

func invoiceDraft(cmd *cobra.Command) (invoice.Draft, error) {
	var draft invoice.Draft

	customerID, _ := cmd.Flags().GetInt64("customer")
	kind, _ := cmd.Flags().GetString("kind")
	rawTax, _ := cmd.Flags().GetString("tax")
	rawItems, _ := cmd.Flags().GetStringArray("item")
	rawPaid, _ := cmd.Flags().GetString("paid")
	rawPaidMode, _ := cmd.Flags().GetString("paid-mode")
	notes, _ := cmd.Flags().GetString("notes")

	date, err := dateFlag(cmd, "date")
	if err != nil {
		return draft, err
	}
	tax, err := decimal.NewFromString(rawTax)
	if err != nil {
		return draft, fmt.Errorf("invalid --tax %q: %w", rawTax, err)
	}

	draft.UserID = customerID
	draft.Kind = model.InvoiceKind(kind)
	draft.Date = date
	draft.TaxPercent = tax
	draft.Notes = notes
	draft.PaymentAmount = decimal.Zero

	if rawPaid != "" {
		draft.PaymentAmount, err = decimal.NewFromString(rawPaid)
		if err != nil {
			return draft, fmt.Errorf("invalid --paid %q: %w", rawPaid, err)
		}
	}
	if rawPaidMode != "" {
		mode := model.PaymentMode(rawPaidMode)
		draft.PaymentMode = &mode
	}

	for _, raw := range rawItems {
		item, perr := parseInvoiceItemFlag(raw)
		if perr != nil {
			return draft, perr
		}
		draft.Items = append(draft.Items, item)
	}

	return draft, nil
}

func parseInvoiceItemFlag(raw string) (invoice.DraftItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return invoice.DraftItem{}, fmt.Errorf("invalid --item %q: expected productID:qty:unitPrice", raw)
	}
	productID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return invoice.DraftItem{}, fmt.Errorf("invalid product ID in --item %q", raw)
	}
	qty, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return invoice.DraftItem{}, fmt.Errorf("invalid quantity in --item %q", raw)
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return invoice.DraftItem{}, fmt.Errorf("invalid unit price in --item %q", raw)
	}
	return invoice.DraftItem{ProductID: productID, Quantity: qty, UnitPrice: price}, nil
}

func invoiceCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice and materialize its effects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			draft, err := invoiceDraft(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := invoice.New(store).Create(ctx, draft)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created invoice #%d, total %s",
				result.Invoice.ID, cli.Amount(result.Invoice.TotalAmount))))
			for _, alert := range result.LowStockAlerts {
				fmt.Println(cli.FormatWarning(alert))
			}
			return nil
		},
	}

	invoiceDraftFlags(cmd)
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func invoiceUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rewrite an invoice, reversing its previous effects first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "invoice")
			if err != nil {
				return err
			}

			draft, err := invoiceDraft(cmd)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := invoice.New(store).Update(ctx, id, draft)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated invoice #%d, total %s",
				id, cli.Amount(result.Invoice.TotalAmount))))
			for _, alert := range result.LowStockAlerts {
				fmt.Println(cli.FormatWarning(alert))
			}
			return nil
		},
	}

	invoiceDraftFlags(cmd)
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

func invoiceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice and reverse its effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "invoice")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := invoice.New(store).Delete(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted invoice #%d", id)))
			return nil
		},
	}
}

func invoiceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an invoice with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "invoice")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			inv, err := store.GetInvoiceByID(ctx, id)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Invoice #%d (%s) - %s",
				inv.ID, inv.Kind, inv.InvoiceDate.Format(dateFlagLayout))))
			for _, item := range inv.Items {
				line := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
				fmt.Printf("  product %-6d x%-5d @ %10s = %10s\n",
					item.ProductID, item.Quantity, cli.Amount(item.UnitPrice), cli.Amount(line))
			}
			fmt.Printf("  %-24s %12s\n", "Subtotal", cli.Amount(inv.Subtotal()))
			fmt.Printf("  %-24s %12s%%\n", "Tax", inv.TaxPercent.String())
			fmt.Printf("  %-24s %12s\n", "Total", cli.Amount(inv.TotalAmount))
			fmt.Printf("  %-24s %12s\n", "Paid", cli.Amount(inv.PaidAmount))
			if inv.Notes != "" {
				fmt.Printf("  %s\n", inv.Notes)
			}
			return nil
		},
	}
}
