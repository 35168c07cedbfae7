package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/cli"
)

func notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "View and acknowledge alerts",
	}

	cmd.AddCommand(notificationsListCmd())
	cmd.AddCommand(notificationsReadCmd())

	return cmd
}

func notificationsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			all, _ := cmd.Flags().GetBool("all")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			notifications, err := store.ListNotifications(ctx, !all)
			if err != nil {
				return err
			}

			if len(notifications) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No notifications."))
				return nil
			}
			for _, n := range notifications {
				marker := cli.WarningStyle.Render("●")
				if n.Read {
					marker = cli.SubtleStyle.Render("○")
				}
				fmt.Printf("%s #%-4d %s  %s\n", marker, n.ID,
					n.CreatedAt.Format(dateFlagLayout), n.Message)
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "include notifications already marked read")

	return cmd
}

func notificationsReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := idArg(args, "notification")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.MarkNotificationRead(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked notification #%d read", id)))
			return nil
		},
	}
}
