package main

import (
	"fmt"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job", "j"},
		Short:   "Schedule, complete and track payment for jobs",
	}
	cmd.AddCommand(
		newJobsListCmd(a),
		newJobsAddCmd(a),
		newJobsUpdateCmd(a),
		newJobsCompleteCmd(a),
		newJobsPaidCmd(a),
		newJobsRemoveCmd(a),
	)
	return cmd
}

func newJobsListCmd(a *app) *cobra.Command {
	var f struct {
		date, start, end, customer string
		today, unpaid              bool
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally by day, date range, customer or unpaid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store := a.prov.Store
			var (
				jobs []domain.Job
				err  error
			)
			switch {
			case f.today:
				jobs, err = store.JobsByDate(ctx, domain.DateOf(a.now()))
			case f.date != "":
				var d domain.Date
				if d, err = domain.ParseDate(f.date); err == nil {
					jobs, err = store.JobsByDate(ctx, d)
				}
			case f.start != "" || f.end != "":
				var start, end domain.Date
				if start, err = domain.ParseDate(f.start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				if end, err = domain.ParseDate(f.end); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
				jobs, err = store.JobsByDateRange(ctx, start, end)
			case f.customer != "":
				jobs, err = store.JobsByCustomer(ctx, f.customer)
			case f.unpaid:
				jobs, err = store.UnpaidJobs(ctx)
			default:
				jobs, err = store.ListJobs(ctx)
			}
			if err != nil {
				return err
			}
			return a.printJobs(cmd.OutOrStdout(), jobs)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&f.today, "today", false, "Only today's jobs")
	fs.StringVar(&f.date, "date", "", "Only jobs on this day (YYYY-MM-DD)")
	fs.StringVar(&f.start, "start", "", "Range start, inclusive (YYYY-MM-DD)")
	fs.StringVar(&f.end, "end", "", "Range end, inclusive (YYYY-MM-DD)")
	fs.StringVar(&f.customer, "customer", "", "Only jobs for this customer id")
	fs.BoolVar(&f.unpaid, "unpaid", false, "Only unpaid jobs")
	cmd.MarkFlagsMutuallyExclusive("today", "date", "start", "customer", "unpaid")
	cmd.MarkFlagsRequiredTogether("start", "end")
	return cmd
}

type jobFlags struct {
	customer, service, date, price, status, payment, notes string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.customer, "customer", "", "Customer id")
	fs.StringVar(&f.service, "service", "", "Service type (defaults to the customer's)")
	fs.StringVar(&f.date, "date", "", "Scheduled day, YYYY-MM-DD (defaults to today)")
	fs.StringVar(&f.price, "price", "", "Price, e.g. 75.50")
	fs.StringVar(&f.status, "status", "", "scheduled, in-progress or completed")
	fs.StringVar(&f.payment, "payment", "", "unpaid or paid")
	fs.StringVar(&f.notes, "notes", "", "Free-form notes")
}

func newJobsAddCmd(a *app) *cobra.Command {
	var f jobFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Schedule a job for a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := domain.JobInput{
				CustomerID:    f.customer,
				ServiceType:   f.service,
				Status:        domain.JobStatus(f.status),
				PaymentStatus: domain.PaymentStatus(f.payment),
				Notes:         f.notes,
			}
			if f.date != "" {
				d, err := domain.ParseDate(f.date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				in.ScheduledDate = d
			}
			if f.price != "" {
				p, err := decimal.NewFromString(f.price)
				if err != nil {
					return fmt.Errorf("--price: %w", err)
				}
				in.Price = p
			}
			j, err := a.prov.Store.CreateJob(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.flags.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), j)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s for %s on %s (%s)\n",
				j.ServiceType, j.CustomerName, j.ScheduledDate, j.ID)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("customer")
	return cmd
}

func newJobsUpdateCmd(a *app) *cobra.Command {
	var f jobFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.patch(cmd)
			if err != nil {
				return err
			}
			return a.updateJob(cmd, args[0], p)
		},
	}
	f.register(cmd)
	return cmd
}

func (f *jobFlags) patch(cmd *cobra.Command) (domain.JobPatch, error) {
	var p domain.JobPatch
	fs := cmd.Flags()
	if fs.Changed("customer") {
		p.CustomerID = &f.customer
	}
	if fs.Changed("service") {
		p.ServiceType = &f.service
	}
	if fs.Changed("date") {
		d, err := domain.ParseDate(f.date)
		if err != nil {
			return p, fmt.Errorf("--date: %w", err)
		}
		p.ScheduledDate = &d
	}
	if fs.Changed("price") {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return p, fmt.Errorf("--price: %w", err)
		}
		p.Price = &price
	}
	if fs.Changed("status") {
		s := domain.JobStatus(f.status)
		p.Status = &s
	}
	if fs.Changed("payment") {
		s := domain.PaymentStatus(f.payment)
		p.PaymentStatus = &s
	}
	if fs.Changed("notes") {
		p.Notes = &f.notes
	}
	return p, nil
}

func newJobsCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a job completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.JobCompleted
			return a.updateJob(cmd, args[0], domain.JobPatch{Status: &s})
		},
	}
}

func newJobsPaidCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark a job paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.PaymentPaid
			return a.updateJob(cmd, args[0], domain.JobPatch{PaymentStatus: &s})
		},
	}
}

func (a *app) updateJob(cmd *cobra.Command, id string, p domain.JobPatch) error {
	j, err := a.prov.Store.UpdateJob(cmd.Context(), id, p)
	if err != nil {
		return err
	}
	if a.flags.jsonOut {
		return a.printJSON(cmd.OutOrStdout(), j)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated job %s: %s, %s\n", j.ID, j.Status, j.PaymentStatus)
	return nil
}

func newJobsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a job",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prov.Store.DeleteJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", args[0])
			return nil
		},
	}
}
