package main

import (
	"fmt"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/spf13/cobra"
)

func newCustomersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "c"},
		Short:   "List, add, edit and remove customers",
	}
	cmd.AddCommand(
		newCustomersListCmd(a),
		newCustomersShowCmd(a),
		newCustomersAddCmd(a),
		newCustomersUpdateCmd(a),
		newCustomersRemoveCmd(a),
	)
	return cmd
}

func newCustomersListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers, optionally filtered by name, phone or address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				cs  []domain.Customer
				err error
			)
			if query != "" {
				cs, err = a.prov.Store.SearchCustomers(cmd.Context(), query)
			} else {
				cs, err = a.prov.Store.ListCustomers(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.printCustomers(cmd.OutOrStdout(), cs)
		},
	}
	cmd.Flags().StringVarP(&query, "q", "q", "", "Search text")
	return cmd
}

func newCustomersShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a customer and their jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.prov.Store.GetCustomer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			jobs, err := a.prov.Store.JobsByCustomer(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonOut {
				return a.printJSON(out, struct {
					*domain.Customer
					Jobs []domain.Job `json:"jobs"`
				}{c, jobs})
			}
			fmt.Fprintf(out, "Name:     %s\n", c.Name)
			fmt.Fprintf(out, "Phone:    %s\n", c.Phone)
			fmt.Fprintf(out, "Address:  %s\n", c.Address)
			fmt.Fprintf(out, "Service:  %s\n", c.ServiceType)
			fmt.Fprintf(out, "Unpaid:   %s\n", domain.FormatMoney(c.TotalUnpaid))
			fmt.Fprintf(out, "Since:    %s\n\n", domain.DateOf(c.CreatedDate))
			return a.printJobs(out, jobs)
		},
	}
}

type customerFlags struct {
	name, phone, address, service string
}

func (f *customerFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "Customer name")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.address, "address", "", "Street address")
	fs.StringVar(&f.service, "service", "", "Default service type, copied onto new jobs")
}

func newCustomersAddCmd(a *app) *cobra.Command {
	var f customerFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.prov.Store.CreateCustomer(cmd.Context(), domain.CustomerInput{
				Name:        f.name,
				Phone:       f.phone,
				Address:     f.address,
				ServiceType: f.service,
			})
			if err != nil {
				return err
			}
			if a.flags.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added customer %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCustomersUpdateCmd(a *app) *cobra.Command {
	var f customerFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p domain.CustomerPatch
			fs := cmd.Flags()
			if fs.Changed("name") {
				p.Name = &f.name
			}
			if fs.Changed("phone") {
				p.Phone = &f.phone
			}
			if fs.Changed("address") {
				p.Address = &f.address
			}
			if fs.Changed("service") {
				p.ServiceType = &f.service
			}
			c, err := a.prov.Store.UpdateCustomer(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			if a.flags.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), c)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated customer %s\n", c.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newCustomersRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a customer and all of their jobs",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prov.Store.DeleteCustomer(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed customer %s\n", args[0])
			return nil
		},
	}
}
