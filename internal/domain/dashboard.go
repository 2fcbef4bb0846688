package domain

import "github.com/shopspring/decimal"

// DashboardStats is computed from the job collection on demand and never stored.
type DashboardStats struct {
	TodaysJobs       []Job           `json:"todaysJobs"`
	TotalUnpaid      decimal.Decimal `json:"totalUnpaid"`
	UnpaidJobsCount  int             `json:"unpaidJobsCount"`
	ThisWeekEarnings decimal.Decimal `json:"thisWeekEarnings"`
}
