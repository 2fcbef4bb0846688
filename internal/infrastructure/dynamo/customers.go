package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-crm-nosql/internal/domain"
)

// CustomerRepo provides typed DynamoDB operations for the customers table.
type CustomerRepo struct {
	client    API
	tableName string
}

func NewCustomerRepo(client API, tableName string) *CustomerRepo {
	return &CustomerRepo{client: client, tableName: tableName}
}

// ListCustomers scans the table and returns customers in id order.
func (r *CustomerRepo) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, fmt.Errorf("scan customers: %w", err)
	}
	var recs []customerItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal customers: %w", err)
	}
	out := make([]domain.Customer, len(recs))
	for i, rec := range recs {
		out[i] = rec.toDomain()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CustomerRepo) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrCustomerID, id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
	}
	var rec customerItem
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	c := rec.toDomain()
	return &c, nil
}

func (r *CustomerRepo) PutCustomer(ctx context.Context, c *domain.Customer) error {
	item, err := attributevalue.MarshalMap(toCustomerItem(c))
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CustomerRepo) DeleteCustomer(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrCustomerID, id),
	})
	return err
}

func (r *CustomerRepo) deleteAll(ctx context.Context) error {
	items, err := scanAll(ctx, r.client, keysOnly(r.tableName, attrCustomerID))
	if err != nil {
		return fmt.Errorf("scan customer keys: %w", err)
	}
	reqs := make([]types.WriteRequest, len(items))
	for i, it := range items {
		reqs[i] = deleteRequest(it)
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}
