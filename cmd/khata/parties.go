package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/position"
)

func customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers and view their balances",
	}

	cmd.AddCommand(partyAddCmd(model.RoleCustomer))
	cmd.AddCommand(customerListCmd())
	cmd.AddCommand(customerShowCmd())

	return cmd
}

func supplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Manage suppliers and view what you owe them",
	}

	cmd.AddCommand(partyAddCmd(model.RoleSupplier))
	cmd.AddCommand(supplierListCmd())
	cmd.AddCommand(supplierShowCmd())

	return cmd
}

func partyAddCmd(role model.PartyRole) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a %s", role),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			phone, _ := cmd.Flags().GetString("phone")
			rawBalance, _ := cmd.Flags().GetString("opening-balance")
			balance := decimal.Zero
			if rawBalance != "" {
				var err error
				balance, err = decimal.NewFromString(rawBalance)
				if err != nil {
					return fmt.Errorf("invalid --opening-balance %q: %w", rawBalance, err)
				}
			}

			party := &model.Party{Name: args[0], Phone: phone, Role: role}
			if role == model.RoleCustomer {
				party.InitialBalance = balance
			} else {
				party.InitialPayableBalance = balance
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := store.CreateParty(ctx, party)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s #%d: %s", role, id, party.Name)))
			return nil
		},
	}

	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().String("opening-balance", "", "balance carried in from before bookkeeping started")

	return cmd
}

func customerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers with their current balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summaries, err := position.New(store, positionOptions()).ListCustomerPositions(ctx)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderCustomerList(summaries))
			return nil
		},
	}
}

func customerShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one customer's derived position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "customer")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			party, err := store.GetPartyByID(ctx, id)
			if err != nil {
				return err
			}
			pos, err := position.New(store, positionOptions()).GetCustomerPosition(ctx, id)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderCustomerPosition(party, pos))
			return nil
		},
	}
}

func supplierListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suppliers with their current payables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summaries, err := position.New(store, positionOptions()).ListSupplierPositions(ctx)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderSupplierList(summaries))
			return nil
		},
	}
}

func supplierShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one supplier's derived position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "supplier")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			party, err := store.GetPartyByID(ctx, id)
			if err != nil {
				return err
			}
			pos, err := position.New(store, positionOptions()).GetSupplierPosition(ctx, id)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderSupplierPosition(party, pos))
			return nil
		},
	}
}
