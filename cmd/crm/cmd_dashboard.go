package main

import (
	"fmt"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Today's jobs, outstanding balance and this week's earnings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref := domain.DateOf(a.now())
			if date != "" {
				d, err := domain.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				ref = d
			}
			stats, err := a.prov.Store.DashboardStats(cmd.Context(), ref)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonOut {
				return a.printJSON(out, stats)
			}
			fmt.Fprintf(out, "Day:                %s\n", ref)
			fmt.Fprintf(out, "Unpaid:             %s across %d jobs\n", domain.FormatMoney(stats.TotalUnpaid), stats.UnpaidJobsCount)
			fmt.Fprintf(out, "Earned this week:   %s\n", domain.FormatMoney(stats.ThisWeekEarnings))
			fmt.Fprintf(out, "Jobs today:         %d\n", len(stats.TodaysJobs))
			if len(stats.TodaysJobs) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			return a.printJobs(out, stats.TodaysJobs)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Reference day (YYYY-MM-DD, default today)")
	return cmd
}
