package notification

import (
	"fmt"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/shopspring/decimal"
)

// Notification kinds. Each doubles as the NotificationItem ID, so a
// dismissal applies to the kind rather than a particular instance.
const (
	KindOverduePayments   = "overdue-payments"
	KindTodaysJobs        = "todays-jobs"
	KindTomorrowsJobs     = "tomorrows-jobs"
	KindLargeUnpaid       = "large-unpaid"
	KindInactiveCustomers = "inactive-customers"
	KindTodaysCompletions = "todays-completions"
)

const (
	overdueAfterDays  = 7
	inactiveAfterDays = 30
)

var largeUnpaidThreshold = decimal.NewFromInt(500)

// Generate derives the advisory notifications for now from the current
// customers and jobs. Each rule yields at most one notification. It never
// fails: empty input gives an empty (non-nil) slice.
func Generate(customers []domain.Customer, jobs []domain.Job, now time.Time) []domain.NotificationItem {
	today := domain.DateOf(now)
	tomorrow := today.AddDays(1)
	overdueCutoff := today.AddDays(-overdueAfterDays)

	var (
		overdueCount, todayCount, tomorrowCount, unpaidCount, doneCount int
		overdueSum, unpaidSum, doneSum                                  = decimal.Zero, decimal.Zero, decimal.Zero
	)
	for _, j := range jobs {
		completedUnpaid := j.Status == domain.JobCompleted && j.IsUnpaid()
		if completedUnpaid {
			unpaidCount++
			unpaidSum = unpaidSum.Add(j.Price)
			if !j.ScheduledDate.IsZero() && !j.ScheduledDate.After(overdueCutoff) {
				overdueCount++
				overdueSum = overdueSum.Add(j.Price)
			}
		}
		if j.Status == domain.JobScheduled {
			switch {
			case j.ScheduledDate.Equal(today):
				todayCount++
			case j.ScheduledDate.Equal(tomorrow):
				tomorrowCount++
			}
		}
		if j.Status == domain.JobCompleted && j.CompletedDate != nil &&
			domain.DateOf(j.CompletedDate.In(now.Location())).Equal(today) {
			doneCount++
			doneSum = doneSum.Add(j.Price)
		}
	}

	out := []domain.NotificationItem{}
	item := func(id string, typ domain.NotificationType, title, msg string, action *domain.NotificationAction) {
		out = append(out, domain.NotificationItem{
			ID:          id,
			Type:        typ,
			Title:       title,
			Message:     msg,
			Action:      action,
			Timestamp:   now,
			Dismissible: true,
		})
	}

	if overdueCount > 0 {
		item(KindOverduePayments, domain.NotificationUrgent, "Overdue Payments",
			fmt.Sprintf("%s completed more than %d days ago %s still unpaid (%s outstanding)",
				plural(overdueCount, "job"), overdueAfterDays, verb(overdueCount), domain.FormatMoney(overdueSum)),
			&domain.NotificationAction{Label: "View Unpaid Jobs", Target: "/jobs?filter=unpaid"})
	}
	if todayCount > 0 {
		item(KindTodaysJobs, domain.NotificationInfo, "Today's Schedule",
			fmt.Sprintf("You have %s scheduled for today", plural(todayCount, "job")),
			&domain.NotificationAction{Label: "View Today's Jobs", Target: "/jobs?filter=today"})
	}
	if tomorrowCount > 0 {
		item(KindTomorrowsJobs, domain.NotificationInfo, "Tomorrow's Schedule",
			fmt.Sprintf("You have %s scheduled for tomorrow", plural(tomorrowCount, "job")),
			&domain.NotificationAction{Label: "View Schedule", Target: "/jobs?filter=upcoming"})
	}
	if unpaidSum.GreaterThan(largeUnpaidThreshold) {
		item(KindLargeUnpaid, domain.NotificationWarning, "Large Outstanding Balance",
			fmt.Sprintf("%s outstanding across %s", domain.FormatMoney(unpaidSum), plural(unpaidCount, "completed job")),
			&domain.NotificationAction{Label: "Review Payments", Target: "/jobs?filter=unpaid"})
	}
	if n := inactiveCustomers(customers, jobs, today.AddDays(-inactiveAfterDays)); n > 0 {
		item(KindInactiveCustomers, domain.NotificationWarning, "Inactive Customers",
			fmt.Sprintf("%s had no job in over %d days", plural(n, "customer"), inactiveAfterDays),
			&domain.NotificationAction{Label: "View Customers", Target: "/customers"})
	}
	if doneCount > 0 {
		item(KindTodaysCompletions, domain.NotificationSuccess, "Great Work Today",
			fmt.Sprintf("You completed %s today worth %s", plural(doneCount, "job"), domain.FormatMoney(doneSum)),
			nil)
	}
	return out
}

// inactiveCustomers counts customers with at least one job whose most recent
// scheduled date is on or before cutoff.
func inactiveCustomers(customers []domain.Customer, jobs []domain.Job, cutoff domain.Date) int {
	latest := make(map[string]domain.Date, len(customers))
	for _, j := range jobs {
		if last, ok := latest[j.CustomerID]; !ok || j.ScheduledDate.After(last) {
			latest[j.CustomerID] = j.ScheduledDate
		}
	}
	n := 0
	for _, c := range customers {
		if last, ok := latest[c.ID]; ok && !last.After(cutoff) {
			n++
		}
	}
	return n
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func verb(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}
