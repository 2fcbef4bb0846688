package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes", "n"},
		Short:   "Show and dismiss reminders derived from jobs and payments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show active notifications",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				items, err := a.notifications.Active(cmd.Context(), a.now())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonOut {
					return a.printJSON(out, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "Nothing needs attention.")
					return nil
				}
				for _, n := range items {
					fmt.Fprintf(out, "[%s] %s (%s)\n    %s\n", n.Type, n.Title, n.ID, n.Message)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "dismiss <id>",
			Short: "Hide a notification for the rest of today",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.notifications.Dismiss(cmd.Context(), args[0], a.now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dismissed %s until tomorrow\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Hide every active notification for the rest of today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.notifications.ClearAll(cmd.Context(), a.now()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all notifications until tomorrow")
				return nil
			},
		},
	)
	return cmd
}
