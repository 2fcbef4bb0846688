package local

import (
	"context"
	"fmt"

	"github.com/go-crm-nosql/internal/domain"
)

// JobRepo has no secondary indexes; lookups other than by id filter a full
// scan of the job keys.
type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo { return &JobRepo{db: db} }

func (r *JobRepo) ListJobs(ctx context.Context) ([]domain.Job, error) {
	return scanPrefix[domain.Job](ctx, r.db.db, prefixJob)
}

func (r *JobRepo) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var j domain.Job
	if err := getJSON(ctx, r.db.db, prefixJob+id, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobRepo) JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error) {
	return r.filter(ctx, func(j domain.Job) bool { return j.CustomerID == customerID })
}

func (r *JobRepo) JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error) {
	return r.filter(ctx, func(j domain.Job) bool { return j.ScheduledDate.Equal(d) })
}

func (r *JobRepo) JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error) {
	return r.filter(ctx, func(j domain.Job) bool { return j.ScheduledDate.Within(start, end) })
}

// WriteJob stores or deletes the job and rewrites the listed customer
// totals in one transaction.
func (r *JobRepo) WriteJob(ctx context.Context, w domain.JobWrite) error {
	return r.db.withTx(ctx, func(q queryer) error {
		if w.Put != nil {
			if err := putJSON(ctx, q, prefixJob+w.Put.ID, w.Put); err != nil {
				return err
			}
		}
		if w.DeleteID != "" {
			if err := deleteKey(ctx, q, prefixJob+w.DeleteID); err != nil {
				return err
			}
		}
		for id, total := range w.Totals {
			var c domain.Customer
			if err := getJSON(ctx, q, prefixCustomer+id, &c); err != nil {
				return fmt.Errorf("customer %s: %w", id, err)
			}
			c.TotalUnpaid = total
			if err := putJSON(ctx, q, prefixCustomer+id, &c); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteJobsByCustomer removes all of a customer's jobs in one transaction.
func (r *JobRepo) DeleteJobsByCustomer(ctx context.Context, customerID string) error {
	return r.db.withTx(ctx, func(q queryer) error {
		jobs, err := scanPrefix[domain.Job](ctx, q, prefixJob)
		if err != nil {
			return err
		}
		for _, j := range jobs {
			if j.CustomerID != customerID {
				continue
			}
			if err := deleteKey(ctx, q, prefixJob+j.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *JobRepo) filter(ctx context.Context, keep func(domain.Job) bool) ([]domain.Job, error) {
	all, err := r.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Job{}
	for _, j := range all {
		if keep(j) {
			out = append(out, j)
		}
	}
	return out, nil
}
