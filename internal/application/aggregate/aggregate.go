// Package aggregate derives balances and dashboard figures from the job
// collection. Every function is pure: the same inputs give the same output
// and nothing is persisted.
package aggregate

import (
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
)

// UnpaidTotal sums the price of customerID's unpaid jobs.
func UnpaidTotal(customerID string, jobs []domain.Job) decimal.Decimal {
	total := decimal.Zero
	for _, j := range jobs {
		if j.CustomerID == customerID && j.IsUnpaid() {
			total = total.Add(j.Price)
		}
	}
	return total
}

// RecomputeCustomerTotals returns a copy of customers with TotalUnpaid set
// from jobs. Previous TotalUnpaid values are ignored.
func RecomputeCustomerTotals(customers []domain.Customer, jobs []domain.Job) []domain.Customer {
	sums := make(map[string]decimal.Decimal, len(customers))
	for _, j := range jobs {
		if j.IsUnpaid() {
			sums[j.CustomerID] = sums[j.CustomerID].Add(j.Price)
		}
	}
	out := make([]domain.Customer, len(customers))
	for i, c := range customers {
		c.TotalUnpaid = decimal.Zero
		if s, ok := sums[c.ID]; ok {
			c.TotalUnpaid = s
		}
		out[i] = c
	}
	return out
}

// WeekBounds returns the Sunday-to-Saturday week containing ref.
func WeekBounds(ref domain.Date) (start, end domain.Date) {
	start = ref.AddDays(-int(ref.Weekday() - time.Sunday))
	return start, start.AddDays(6)
}

// DashboardStats computes the dashboard figures for the calendar day ref.
// Unpaid totals cover every unpaid job whatever its status.
func DashboardStats(jobs []domain.Job, ref domain.Date) domain.DashboardStats {
	weekStart, weekEnd := WeekBounds(ref)
	stats := domain.DashboardStats{
		TodaysJobs:       []domain.Job{},
		TotalUnpaid:      decimal.Zero,
		ThisWeekEarnings: decimal.Zero,
	}
	for _, j := range jobs {
		if j.ScheduledDate.Equal(ref) {
			stats.TodaysJobs = append(stats.TodaysJobs, j)
		}
		if j.IsUnpaid() {
			stats.UnpaidJobsCount++
			stats.TotalUnpaid = stats.TotalUnpaid.Add(j.Price)
		}
		if j.Status == domain.JobCompleted && j.ScheduledDate.Within(weekStart, weekEnd) {
			stats.ThisWeekEarnings = stats.ThisWeekEarnings.Add(j.Price)
		}
	}
	return stats
}
