package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-crm-nosql/internal/domain"
)

// SnapshotRepo replaces or wipes the customers and jobs tables.
//
// DynamoDB has no multi-table transaction large enough for a full import, so
// Replace is not atomic: a failure part way leaves a partial data set that the
// next successful Replace overwrites.
type SnapshotRepo struct {
	customers *CustomerRepo
	jobs      *JobRepo
}

func NewSnapshotRepo(customers *CustomerRepo, jobs *JobRepo) *SnapshotRepo {
	return &SnapshotRepo{customers: customers, jobs: jobs}
}

func (r *SnapshotRepo) Replace(ctx context.Context, customers []domain.Customer, jobs []domain.Job) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	reqs := make([]types.WriteRequest, 0, len(customers))
	for i := range customers {
		item, err := attributevalue.MarshalMap(toCustomerItem(&customers[i]))
		if err != nil {
			return fmt.Errorf("marshal customer %s: %w", customers[i].ID, err)
		}
		reqs = append(reqs, putRequest(item))
	}
	if err := batchWrite(ctx, r.customers.client, r.customers.tableName, reqs); err != nil {
		return err
	}
	return r.jobs.putAll(ctx, jobs)
}

func (r *SnapshotRepo) Clear(ctx context.Context) error {
	if err := r.jobs.deleteAll(ctx); err != nil {
		return err
	}
	return r.customers.deleteAll(ctx)
}
