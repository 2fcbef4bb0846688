package aggregate

import (
	"testing"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-10-15 is a Thursday; its week runs 2026-10-11 (Sun) to 2026-10-17 (Sat).
var ref = domain.NewDate(2026, time.October, 15)

func job(id, customerID string, day domain.Date, price string, status domain.JobStatus, pay domain.PaymentStatus) domain.Job {
	return domain.Job{
		ID:            id,
		CustomerID:    customerID,
		ScheduledDate: day,
		Price:         decimal.RequireFromString(price),
		Status:        status,
		PaymentStatus: pay,
	}
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(ref)
	assert.Equal(t, "2026-10-11", start.String())
	assert.Equal(t, "2026-10-17", end.String())

	start, end = WeekBounds(domain.NewDate(2026, time.October, 11))
	assert.Equal(t, "2026-10-11", start.String())
	assert.Equal(t, "2026-10-17", end.String())

	start, _ = WeekBounds(domain.NewDate(2026, time.October, 17))
	assert.Equal(t, "2026-10-11", start.String())
}

func TestUnpaidTotal(t *testing.T) {
	jobs := []domain.Job{
		job("j1", "c1", ref, "100", domain.JobCompleted, domain.PaymentUnpaid),
		job("j2", "c1", ref, "40.50", domain.JobScheduled, domain.PaymentUnpaid),
		job("j3", "c1", ref, "70", domain.JobCompleted, domain.PaymentPaid),
		job("j4", "c2", ref, "999", domain.JobCompleted, domain.PaymentUnpaid),
	}
	assert.True(t, decimal.RequireFromString("140.50").Equal(UnpaidTotal("c1", jobs)))
	assert.True(t, UnpaidTotal("c3", jobs).IsZero())
}

func TestRecomputeCustomerTotals_IgnoresStaleValues(t *testing.T) {
	customers := []domain.Customer{
		{ID: "c1", TotalUnpaid: decimal.NewFromInt(12345)},
		{ID: "c2", TotalUnpaid: decimal.NewFromInt(7)},
	}
	jobs := []domain.Job{job("j1", "c1", ref, "25", domain.JobCompleted, domain.PaymentUnpaid)}

	got := RecomputeCustomerTotals(customers, jobs)

	require.Len(t, got, 2)
	assert.True(t, decimal.NewFromInt(25).Equal(got[0].TotalUnpaid))
	assert.True(t, got[1].TotalUnpaid.IsZero())
	// input untouched
	assert.True(t, decimal.NewFromInt(12345).Equal(customers[0].TotalUnpaid))

	again := RecomputeCustomerTotals(got, jobs)
	assert.Equal(t, got, again)
}

func TestRecomputeCustomerTotals_NoDrift(t *testing.T) {
	customers := []domain.Customer{{ID: "c1"}}
	var jobs []domain.Job
	for i := 0; i < 1000; i++ {
		jobs = append(jobs, job("j", "c1", ref, "0.10", domain.JobCompleted, domain.PaymentUnpaid))
	}
	got := RecomputeCustomerTotals(customers, jobs)
	assert.Equal(t, "100.00", got[0].TotalUnpaid.StringFixed(2))
	assert.True(t, decimal.NewFromInt(100).Equal(got[0].TotalUnpaid))
}

func TestDashboardStats(t *testing.T) {
	jobs := []domain.Job{
		job("today-open", "c1", ref, "80", domain.JobScheduled, domain.PaymentUnpaid),
		job("today-done", "c1", ref, "120", domain.JobCompleted, domain.PaymentPaid),
		job("sunday-done", "c2", ref.AddDays(-4), "50", domain.JobCompleted, domain.PaymentUnpaid),
		job("last-week", "c2", ref.AddDays(-5), "500", domain.JobCompleted, domain.PaymentPaid),
		job("saturday-done", "c2", ref.AddDays(2), "30", domain.JobCompleted, domain.PaymentPaid),
		job("next-week", "c2", ref.AddDays(3), "60", domain.JobCompleted, domain.PaymentPaid),
	}

	stats := DashboardStats(jobs, ref)

	require.Len(t, stats.TodaysJobs, 2)
	assert.Equal(t, "today-open", stats.TodaysJobs[0].ID)
	assert.Equal(t, "today-done", stats.TodaysJobs[1].ID)
	assert.Equal(t, 2, stats.UnpaidJobsCount)
	assert.True(t, decimal.NewFromInt(130).Equal(stats.TotalUnpaid))
	assert.True(t, decimal.NewFromInt(200).Equal(stats.ThisWeekEarnings))
}

func TestDashboardStats_Idempotent(t *testing.T) {
	jobs := []domain.Job{
		job("a", "c1", ref, "10", domain.JobCompleted, domain.PaymentUnpaid),
		job("b", "c1", ref.AddDays(1), "15", domain.JobInProgress, domain.PaymentUnpaid),
	}
	assert.Equal(t, DashboardStats(jobs, ref), DashboardStats(jobs, ref))
}

func TestDashboardStats_Empty(t *testing.T) {
	stats := DashboardStats(nil, ref)
	assert.NotNil(t, stats.TodaysJobs)
	assert.Empty(t, stats.TodaysJobs)
	assert.Zero(t, stats.UnpaidJobsCount)
	assert.True(t, stats.TotalUnpaid.IsZero())
	assert.True(t, stats.ThisWeekEarnings.IsZero())
}
