package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/model"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog and view stock levels",
	}

	cmd.AddCommand(productsAddCmd())
	cmd.AddCommand(productsListCmd())

	return cmd
}

func productsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a product",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsAdd,
	}

	cmd.Flags().String("sale-price", "0", "selling price per unit")
	cmd.Flags().String("purchase-price", "0", "cost price per unit")
	cmd.Flags().Int64("stock", 0, "opening stock count")
	cmd.Flags().Int64("low-stock", 0, "alert when stock falls to this level (0 disables)")
	cmd.Flags().Int64("supplier", 0, "preferred supplier party ID")

	return cmd
}

func runProductsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rawSale, _ := cmd.Flags().GetString("sale-price")
	rawPurchase, _ := cmd.Flags().GetString("purchase-price")
	stock, _ := cmd.Flags().GetInt64("stock")
	lowStock, _ := cmd.Flags().GetInt64("low-stock")
	supplierID, _ := cmd.Flags().GetInt64("supplier")

	salePrice, err := decimal.NewFromString(rawSale)
	if err != nil {
		return fmt.Errorf("invalid --sale-price %q: %w", rawSale, err)
	}
	purchasePrice, err := decimal.NewFromString(rawPurchase)
	if err != nil {
		return fmt.Errorf("invalid --purchase-price %q: %w", rawPurchase, err)
	}

	product := &model.Product{
		Name:              args[0],
		SalePrice:         salePrice,
		PurchasePrice:     purchasePrice,
		CurrentStock:      stock,
		LowStockThreshold: lowStock,
	}
	if supplierID > 0 {
		product.PreferredSupplierID = &supplierID
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id, err := store.CreateProduct(ctx, product)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added product #%d: %s", id, product.Name)))
	return nil
}

func productsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products with current stock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			products, err := store.ListProducts(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Products"))
			fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-4s %-28s %10s %10s %8s",
				"ID", "Name", "Sale", "Cost", "Stock")))
			for _, p := range products {
				stock := fmt.Sprintf("%d", p.CurrentStock)
				if p.LowStockThreshold > 0 && p.CurrentStock <= p.LowStockThreshold {
					stock = cli.WarningStyle.Render(stock)
				}
				fmt.Printf("%-4d %-28s %10s %10s %8s\n",
					p.ID, p.Name, cli.Amount(p.SalePrice), cli.Amount(p.PurchasePrice), stock)
			}
			return nil
		},
	}
}
