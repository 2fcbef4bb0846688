package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// fakeAPI is an in-memory DynamoDB understanding just the expressions the
// repositories issue.
type fakeAPI struct {
	keys   map[string][]string // table -> key attributes
	tables map[string]map[string]map[string]types.AttributeValue

	batchCalls      int
	batchSizes      []int
	batchErr        error
	unprocessedOnce bool
	transactCalls   int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		keys: map[string][]string{
			"customers":  {attrCustomerID},
			"jobs":       {attrJobID},
			"users":      {attrUserID},
			"dismissals": {attrDismissalID, attrDismissalDate},
		},
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func str(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	}
	return ""
}

func (f *fakeAPI) id(table string, item map[string]types.AttributeValue) string {
	parts := []string{}
	for _, k := range f.keys[table] {
		parts = append(parts, str(item[k]))
	}
	return strings.Join(parts, "|")
}

func (f *fakeAPI) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return f.tables[name]
}

func (f *fakeAPI) sorted(name string) []map[string]types.AttributeValue {
	t := f.table(name)
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]types.AttributeValue, len(ids))
	for i, id := range ids {
		out[i] = t[id]
	}
	return out
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.table(*in.TableName)[f.id(*in.TableName, in.Key)]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.table(*in.TableName)[f.id(*in.TableName, in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	t := f.table(*in.TableName)
	id := f.id(*in.TableName, in.Key)
	item, ok := t[id]
	if !ok {
		if in.ConditionExpression != nil {
			return nil, &types.ConditionalCheckFailedException{}
		}
		item = map[string]types.AttributeValue{}
		for k, v := range in.Key {
			item[k] = v
		}
	}
	for _, assign := range strings.Split(strings.TrimPrefix(*in.UpdateExpression, "SET "), ", ") {
		parts := strings.Split(assign, " = ")
		item[in.ExpressionAttributeNames[parts[0]]] = in.ExpressionAttributeValues[parts[1]]
	}
	t[id] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.table(*in.TableName), f.id(*in.TableName, in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	attr := in.ExpressionAttributeNames["#a"]
	want := str(in.ExpressionAttributeValues[":v"])
	out := []map[string]types.AttributeValue{}
	for _, item := range f.sorted(*in.TableName) {
		if str(item[attr]) == want {
			out = append(out, item)
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	keep := func(map[string]types.AttributeValue) bool { return true }
	if in.FilterExpression != nil {
		fields := strings.Fields(*in.FilterExpression)
		attr := in.ExpressionAttributeNames[fields[0]]
		switch fields[1] {
		case "BETWEEN":
			lo, hi := str(in.ExpressionAttributeValues[fields[2]]), str(in.ExpressionAttributeValues[fields[4]])
			keep = func(it map[string]types.AttributeValue) bool { v := str(it[attr]); return v >= lo && v <= hi }
		case "<":
			limit := str(in.ExpressionAttributeValues[fields[2]])
			keep = func(it map[string]types.AttributeValue) bool { return str(it[attr]) < limit }
		default:
			return nil, fmt.Errorf("fake: unsupported filter %q", *in.FilterExpression)
		}
	}
	out := []map[string]types.AttributeValue{}
	for _, item := range f.sorted(*in.TableName) {
		if keep(item) {
			out = append(out, item)
		}
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	unprocessed := map[string][]types.WriteRequest{}
	for table, reqs := range in.RequestItems {
		f.batchSizes = append(f.batchSizes, len(reqs))
		if f.unprocessedOnce && len(reqs) > 1 {
			f.unprocessedOnce = false
			unprocessed[table] = reqs[len(reqs)-1:]
			reqs = reqs[:len(reqs)-1]
		}
		for _, r := range reqs {
			switch {
			case r.PutRequest != nil:
				f.table(table)[f.id(table, r.PutRequest.Item)] = r.PutRequest.Item
			case r.DeleteRequest != nil:
				delete(f.table(table), f.id(table, r.DeleteRequest.Key))
			}
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: unprocessed}, nil
}

// TransactWriteItems checks every update condition first and applies
// nothing unless all of them hold.
func (f *fakeAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transactCalls++
	for _, it := range in.TransactItems {
		if u := it.Update; u != nil && u.ConditionExpression != nil {
			if _, ok := f.table(*u.TableName)[f.id(*u.TableName, u.Key)]; !ok {
				return nil, &types.TransactionCanceledException{
					CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}},
				}
			}
		}
	}
	for _, it := range in.TransactItems {
		switch {
		case it.Put != nil:
			f.table(*it.Put.TableName)[f.id(*it.Put.TableName, it.Put.Item)] = it.Put.Item
		case it.Delete != nil:
			delete(f.table(*it.Delete.TableName), f.id(*it.Delete.TableName, it.Delete.Key))
		case it.Update != nil:
			u := it.Update
			if _, err := f.UpdateItem(ctx, &dynamodb.UpdateItemInput{
				TableName:                 u.TableName,
				Key:                       u.Key,
				UpdateExpression:          u.UpdateExpression,
				ExpressionAttributeNames:  u.ExpressionAttributeNames,
				ExpressionAttributeValues: u.ExpressionAttributeValues,
			}); err != nil {
				return nil, err
			}
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}
