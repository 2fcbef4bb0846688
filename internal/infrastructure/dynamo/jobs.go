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

// JobRepo provides typed DynamoDB operations for the jobs table. It also
// writes the total_unpaid of customers, in the same transaction as the job.
type JobRepo struct {
	client         API
	tableName      string
	customersTable string
}

func NewJobRepo(client API, tableName, customersTable string) *JobRepo {
	return &JobRepo{client: client, tableName: tableName, customersTable: customersTable}
}

func (r *JobRepo) ListJobs(ctx context.Context) ([]domain.Job, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	return decodeJobs(items)
}

func (r *JobRepo) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(attrJobID, id),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	var rec jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	j, err := rec.toDomain()
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// JobsByCustomer queries the customer_id GSI.
func (r *JobRepo) JobsByCustomer(ctx context.Context, customerID string) ([]domain.Job, error) {
	return r.queryIndex(ctx, indexJobsByCustomer, attrCustomerID, customerID)
}

// JobsByDate queries the scheduled_date GSI.
func (r *JobRepo) JobsByDate(ctx context.Context, d domain.Date) ([]domain.Job, error) {
	return r.queryIndex(ctx, indexJobsByDate, attrScheduledDate, d.String())
}

// JobsByDateRange scans with a BETWEEN filter; ISO dates compare lexically.
func (r *JobRepo) JobsByDateRange(ctx context.Context, start, end domain.Date) ([]domain.Job, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#d BETWEEN :start AND :end"),
		ExpressionAttributeNames: map[string]string{"#d": attrScheduledDate},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberS{Value: start.String()},
			":end":   &types.AttributeValueMemberS{Value: end.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan jobs by date range: %w", err)
	}
	return decodeJobs(items)
}

// WriteJob puts or deletes the job and sets each customer's total_unpaid in
// one TransactWriteItems call. A customer that no longer exists cancels the
// transaction.
func (r *JobRepo) WriteJob(ctx context.Context, w domain.JobWrite) error {
	var items []types.TransactWriteItem
	if w.Put != nil {
		item, err := attributevalue.MarshalMap(toJobItem(w.Put))
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(r.tableName),
			Item:      item,
		}})
	}
	if w.DeleteID != "" {
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(r.tableName),
			Key:       strKey(attrJobID, w.DeleteID),
		}})
	}
	ids := make([]string, 0, len(w.Totals))
	for id := range w.Totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ue, err := buildUpdateExpr(map[string]interface{}{attrTotalUnpaid: money(w.Totals[id])})
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(r.customersTable),
			Key:                       strKey(attrCustomerID, id),
			UpdateExpression:          aws.String(ue.Expr),
			ConditionExpression:       aws.String("attribute_exists(" + attrCustomerID + ")"),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		}})
	}
	if len(items) == 0 {
		return nil
	}
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if isConditionFailed(err) {
		return fmt.Errorf("customer of job no longer exists: %w", domain.ErrNotFound)
	}
	return err
}

func (r *JobRepo) DeleteJobsByCustomer(ctx context.Context, customerID string) error {
	jobs, err := r.JobsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	reqs := make([]types.WriteRequest, len(jobs))
	for i, j := range jobs {
		reqs[i] = deleteRequest(strKey(attrJobID, j.ID))
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}

func (r *JobRepo) putAll(ctx context.Context, jobs []domain.Job) error {
	reqs := make([]types.WriteRequest, 0, len(jobs))
	for i := range jobs {
		item, err := attributevalue.MarshalMap(toJobItem(&jobs[i]))
		if err != nil {
			return fmt.Errorf("marshal job %s: %w", jobs[i].ID, err)
		}
		reqs = append(reqs, putRequest(item))
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}

func (r *JobRepo) deleteAll(ctx context.Context) error {
	items, err := scanAll(ctx, r.client, keysOnly(r.tableName, attrJobID))
	if err != nil {
		return fmt.Errorf("scan job keys: %w", err)
	}
	reqs := make([]types.WriteRequest, len(items))
	for i, it := range items {
		reqs[i] = deleteRequest(it)
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}

func (r *JobRepo) queryIndex(ctx context.Context, index, attr, value string) ([]domain.Job, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", index, err)
	}
	return decodeJobs(items)
}

// decodeJobs converts raw items to jobs ordered by id.
func decodeJobs(items []map[string]types.AttributeValue) ([]domain.Job, error) {
	var recs []jobItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal jobs: %w", err)
	}
	out := make([]domain.Job, 0, len(recs))
	for _, rec := range recs {
		j, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}
