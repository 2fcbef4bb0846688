package local

import (
	"context"

	"github.com/go-crm-nosql/internal/domain"
)

type CustomerRepo struct {
	db *DB
}

func NewCustomerRepo(db *DB) *CustomerRepo { return &CustomerRepo{db: db} }

func (r *CustomerRepo) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return scanPrefix[domain.Customer](ctx, r.db.db, prefixCustomer)
}

func (r *CustomerRepo) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	if err := getJSON(ctx, r.db.db, prefixCustomer+id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) PutCustomer(ctx context.Context, c *domain.Customer) error {
	return putJSON(ctx, r.db.db, prefixCustomer+c.ID, c)
}

func (r *CustomerRepo) DeleteCustomer(ctx context.Context, id string) error {
	return deleteKey(ctx, r.db.db, prefixCustomer+id)
}
