package crm

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/domain"
)

// normalizeSnapshot checks an import document and fills the fields the
// store derives itself. Nothing is written until the whole snapshot passes.
// A document carrying neither collection is rejected; an explicitly empty
// one ({"customers": [], "jobs": []}) empties the store.
func normalizeSnapshot(snap domain.Snapshot, now time.Time) ([]domain.Customer, []domain.Job, error) {
	if snap.Customers == nil && snap.Jobs == nil {
		return nil, nil, fmt.Errorf("invalid snapshot: no customers or jobs collection: %w", domain.ErrValidation)
	}
	var problems []string
	fail := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	customers := make([]domain.Customer, 0, len(snap.Customers))
	byID := make(map[string]domain.Customer, len(snap.Customers))
	for i, c := range snap.Customers {
		switch {
		case strings.TrimSpace(c.ID) == "":
			fail("customers[%d]: id is required", i)
			continue
		case strings.TrimSpace(c.Name) == "":
			fail("customer %s: name is required", c.ID)
		}
		if _, dup := byID[c.ID]; dup {
			fail("customer %s: duplicate id", c.ID)
			continue
		}
		if c.CreatedDate.IsZero() {
			c.CreatedDate = now.UTC()
		}
		c.QRCodeURL = domain.CustomerQRCodeURL(c.ID)
		byID[c.ID] = c
		customers = append(customers, c)
	}

	jobs := make([]domain.Job, 0, len(snap.Jobs))
	seen := make(map[string]bool, len(snap.Jobs))
	for i, j := range snap.Jobs {
		if strings.TrimSpace(j.ID) == "" {
			fail("jobs[%d]: id is required", i)
			continue
		}
		if seen[j.ID] {
			fail("job %s: duplicate id", j.ID)
			continue
		}
		seen[j.ID] = true

		owner, ok := byID[j.CustomerID]
		if !ok {
			fail("job %s: unknown customer %q", j.ID, j.CustomerID)
		}
		if j.ScheduledDate.IsZero() {
			fail("job %s: scheduledDate is required", j.ID)
		}
		if j.Price.IsNegative() {
			fail("job %s: negative price", j.ID)
		}
		if j.Status == "" {
			j.Status = domain.JobScheduled
		} else if !j.Status.Valid() {
			fail("job %s: invalid status %q", j.ID, j.Status)
		}
		if j.PaymentStatus == "" {
			j.PaymentStatus = domain.PaymentUnpaid
		} else if !j.PaymentStatus.Valid() {
			fail("job %s: invalid payment status %q", j.ID, j.PaymentStatus)
		}
		if j.CustomerName == "" {
			j.CustomerName = owner.Name
		}
		j.QRCodeURL = domain.JobQRCodeURL(j.ID)
		jobs = append(jobs, j)
	}

	if len(problems) > 0 {
		return nil, nil, fmt.Errorf("invalid snapshot: %s: %w", strings.Join(problems, "; "), domain.ErrValidation)
	}
	return customers, jobs, nil
}
