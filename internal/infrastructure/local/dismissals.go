package local

import (
	"context"
	"errors"

	"github.com/go-crm-nosql/internal/domain"
)

// DismissalRepo keeps the notification dismissal log as one JSON array.
type DismissalRepo struct {
	db *DB
}

func NewDismissalRepo(db *DB) *DismissalRepo { return &DismissalRepo{db: db} }

func (r *DismissalRepo) ListDismissals(ctx context.Context) ([]domain.Dismissal, error) {
	return readDismissals(ctx, r.db.db)
}

func (r *DismissalRepo) AddDismissals(ctx context.Context, ds []domain.Dismissal) error {
	return r.db.withTx(ctx, func(q queryer) error {
		log, err := readDismissals(ctx, q)
		if err != nil {
			return err
		}
		return putJSON(ctx, q, keyDismissals, append(log, ds...))
	})
}

func (r *DismissalRepo) PruneDismissals(ctx context.Context, cutoff domain.Date) error {
	return r.db.withTx(ctx, func(q queryer) error {
		log, err := readDismissals(ctx, q)
		if err != nil {
			return err
		}
		kept := log[:0]
		for _, d := range log {
			if !d.Date.Before(cutoff) {
				kept = append(kept, d)
			}
		}
		if len(kept) == len(log) {
			return nil
		}
		return putJSON(ctx, q, keyDismissals, kept)
	})
}

func readDismissals(ctx context.Context, q queryer) ([]domain.Dismissal, error) {
	log := []domain.Dismissal{}
	err := getJSON(ctx, q, keyDismissals, &log)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Dismissal{}, nil
	}
	return log, err
}
