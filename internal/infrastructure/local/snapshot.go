package local

import (
	"context"

	"github.com/go-crm-nosql/internal/domain"
)

// SnapshotRepo swaps the whole customer and job collections atomically.
type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo { return &SnapshotRepo{db: db} }

func (r *SnapshotRepo) Replace(ctx context.Context, customers []domain.Customer, jobs []domain.Job) error {
	return r.db.withTx(ctx, func(q queryer) error {
		if err := clearEntities(ctx, q); err != nil {
			return err
		}
		for i := range customers {
			if err := putJSON(ctx, q, prefixCustomer+customers[i].ID, &customers[i]); err != nil {
				return err
			}
		}
		for i := range jobs {
			if err := putJSON(ctx, q, prefixJob+jobs[i].ID, &jobs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear wipes customers and jobs. Users and the dismissal log are kept.
func (r *SnapshotRepo) Clear(ctx context.Context) error {
	return r.db.withTx(ctx, func(q queryer) error { return clearEntities(ctx, q) })
}

func clearEntities(ctx context.Context, q queryer) error {
	if err := deletePrefix(ctx, q, prefixJob); err != nil {
		return err
	}
	return deletePrefix(ctx, q, prefixCustomer)
}
