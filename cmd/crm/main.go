// crm is the terminal client for the job-tracking CRM. It runs against the
// backend selected by DATA_PROVIDER (local SQLite, DynamoDB or the remote
// API), the same way the HTTP server does.
//
// Usage:
//
//	crm customers list [--q=<text>]
//	crm jobs add --customer=<id> --price=<amount> [--date=YYYY-MM-DD]
//	crm dashboard [--date=YYYY-MM-DD]
//	crm notifications list
//	crm qr customer <id> -o code.png
//	crm export -o backup.yaml
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
