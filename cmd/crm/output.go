package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-crm-nosql/internal/domain"
)

func (a *app) printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printCustomers(w io.Writer, cs []domain.Customer) error {
	if a.flags.jsonOut {
		return a.printJSON(w, cs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tSERVICE\tUNPAID")
	for _, c := range cs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.ServiceType, domain.FormatMoney(c.TotalUnpaid))
	}
	return tw.Flush()
}

func (a *app) printJobs(w io.Writer, js []domain.Job) error {
	if a.flags.jsonOut {
		return a.printJSON(w, js)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCUSTOMER\tSERVICE\tPRICE\tSTATUS\tPAYMENT")
	for _, j := range js {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, j.ScheduledDate, j.CustomerName, j.ServiceType, domain.FormatMoney(j.Price), j.Status, j.PaymentStatus)
	}
	return tw.Flush()
}
