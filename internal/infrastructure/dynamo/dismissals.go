package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-crm-nosql/internal/domain"
)

// DismissalRepo stores the notification dismissal log, one item per
// (kind, day). Items carry an expires_at TTL so DynamoDB also drops them on
// its own once the retention window has passed.
type DismissalRepo struct {
	client    API
	tableName string
	retention time.Duration
}

func NewDismissalRepo(client API, tableName string, retentionDays int) *DismissalRepo {
	return &DismissalRepo{
		client:    client,
		tableName: tableName,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (r *DismissalRepo) ListDismissals(ctx context.Context) ([]domain.Dismissal, error) {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, fmt.Errorf("scan dismissals: %w", err)
	}
	var recs []dismissalItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal dismissals: %w", err)
	}
	out := make([]domain.Dismissal, 0, len(recs))
	for _, rec := range recs {
		d, err := domain.ParseDate(rec.Date)
		if err != nil {
			continue
		}
		out = append(out, domain.Dismissal{ID: rec.ID, Date: d})
	}
	return out, nil
}

func (r *DismissalRepo) AddDismissals(ctx context.Context, ds []domain.Dismissal) error {
	reqs := make([]types.WriteRequest, 0, len(ds))
	for _, d := range ds {
		item, err := attributevalue.MarshalMap(dismissalItem{
			ID:        d.ID,
			Date:      d.Date.String(),
			ExpiresAt: d.Date.In(time.UTC).Add(r.retention).Unix(),
		})
		if err != nil {
			return fmt.Errorf("marshal dismissal: %w", err)
		}
		reqs = append(reqs, putRequest(item))
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}

// PruneDismissals deletes entries dated before cutoff without waiting for
// the TTL sweeper, which may lag by days.
func (r *DismissalRepo) PruneDismissals(ctx context.Context, cutoff domain.Date) error {
	items, err := scanAll(ctx, r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		FilterExpression:         aws.String("#d < :cutoff"),
		ProjectionExpression:     aws.String("#id, #d"),
		ExpressionAttributeNames: map[string]string{"#id": attrDismissalID, "#d": attrDismissalDate},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberS{Value: cutoff.String()},
		},
	})
	if err != nil {
		return fmt.Errorf("scan expired dismissals: %w", err)
	}
	reqs := make([]types.WriteRequest, len(items))
	for i, it := range items {
		reqs[i] = deleteRequest(it)
	}
	return batchWrite(ctx, r.client, r.tableName, reqs)
}
