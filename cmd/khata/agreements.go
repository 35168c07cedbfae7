package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
	"github.com/khata-app/khata/internal/loan"
	"github.com/khata-app/khata/internal/model"
)

func agreementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agreements",
		Short: "Manage loan and chit agreements",
	}

	cmd.AddCommand(agreementsAddCmd())
	cmd.AddCommand(agreementsListCmd())
	cmd.AddCommand(agreementsShowCmd())

	return cmd
}

func agreementsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new agreement",
		RunE:  runAgreementsAdd,
	}

	cmd.Flags().String("type", "", "agreement type (loan_taken_by_biz, loan_given_by_biz, chit_subscription)")
	cmd.Flags().Int64("party", 0, "lender or borrower party ID")
	cmd.Flags().String("principal", "", "principal amount")
	cmd.Flags().String("rate", "0", "interest rate percentage")
	cmd.Flags().String("rate-basis", string(model.RateAnnual), "rate basis (annual, monthly)")
	cmd.Flags().String("start", "", "start date (YYYY-MM-DD, default today)")
	cmd.Flags().String("details", "", "free-form notes")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("principal")

	return cmd
}

func runAgreementsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	agreementType, _ := cmd.Flags().GetString("type")
	partyID, _ := cmd.Flags().GetInt64("party")
	rawPrincipal, _ := cmd.Flags().GetString("principal")
	rawRate, _ := cmd.Flags().GetString("rate")
	rateBasis, _ := cmd.Flags().GetString("rate-basis")
	details, _ := cmd.Flags().GetString("details")

	principal, err := decimal.NewFromString(rawPrincipal)
	if err != nil {
		return fmt.Errorf("invalid --principal %q: %w", rawPrincipal, err)
	}
	rate, err := decimal.NewFromString(rawRate)
	if err != nil {
		return fmt.Errorf("invalid --rate %q: %w", rawRate, err)
	}
	start, err := dateFlag(cmd, "start")
	if err != nil {
		return err
	}

	agreement := &model.Agreement{
		Type:         model.AgreementType(agreementType),
		LenderID:     partyID,
		Principal:    principal,
		InterestRate: rate,
		RateBasis:    model.RateBasis(rateBasis),
		StartDate:    start,
		Details:      details,
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id, err := store.CreateAgreement(ctx, agreement)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created agreement #%d (%s, principal %s)",
		id, agreementType, cli.Amount(principal))))
	return nil
}

func agreementsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loan agreements with outstanding amounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			asOf, err := dateFlag(cmd, "as-of")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			summaries, err := loan.New(store).ListBreakdowns(ctx, asOf)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderAgreementList(summaries))
			return nil
		},
	}

	cmd.Flags().String("as-of", "", "accrue interest up to this date (YYYY-MM-DD, default today)")

	return cmd
}

func agreementsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one agreement's amortization breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "agreement")
			if err != nil {
				return err
			}
			asOf, err := dateFlag(cmd, "as-of")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			agreement, err := store.GetAgreementByID(ctx, id)
			if err != nil {
				return err
			}
			breakdown, err := loan.New(store).GetAgreementBreakdown(ctx, id, asOf)
			if err != nil {
				return err
			}

			fmt.Print(cli.RenderAgreementBreakdown(agreement, breakdown))
			return nil
		},
	}

	cmd.Flags().String("as-of", "", "accrue interest up to this date (YYYY-MM-DD, default today)")

	return cmd
}
