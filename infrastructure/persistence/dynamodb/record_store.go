package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"crud-microservices/application/ports"
	apperrors "crud-microservices/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const keyAttribute = "id"

// API is the subset of the DynamoDB client the record store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Records are (un)marshalled with their json tags so the stored attribute
// names match the API field names.
func encodeOpts(o *attributevalue.EncoderOptions) { o.TagKey = "json" }
func decodeOpts(o *attributevalue.DecoderOptions) { o.TagKey = "json" }

// RecordStore implements ports.RecordStore on DynamoDB tables keyed by "id".
type RecordStore struct {
	client API
	tables map[string]string
	logger *zap.Logger
}

var _ ports.RecordStore = (*RecordStore)(nil)

// NewRecordStore maps logical table names (ports.TableUsers...) to physical ones.
func NewRecordStore(client API, tables map[string]string, logger *zap.Logger) *RecordStore {
	return &RecordStore{client: client, tables: tables, logger: logger}
}

func (s *RecordStore) table(name string) (string, error) {
	physical, ok := s.tables[name]
	if !ok || physical == "" {
		return "", apperrors.NewInternalError(fmt.Sprintf("unknown table %q", name))
	}
	return physical, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

func upstream(err error) error {
	return apperrors.NewUpstreamError("dynamodb", err)
}

// Get loads one record.
func (s *RecordStore) Get(ctx context.Context, table, id string, out interface{}) error {
	physical, err := s.table(table)
	if err != nil {
		return err
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(physical),
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return upstream(err)
	}
	if len(result.Item) == 0 {
		return apperrors.NewNotFoundError(ports.RecordName(table))
	}

	if err := attributevalue.UnmarshalMapWithOptions(result.Item, out, decodeOpts); err != nil {
		return apperrors.NewInternalError("failed to decode record").WithCause(err)
	}
	return nil
}

// Put writes a whole record.
func (s *RecordStore) Put(ctx context.Context, table string, record interface{}) error {
	physical, err := s.table(table)
	if err != nil {
		return err
	}

	item, err := attributevalue.MarshalMapWithOptions(record, encodeOpts)
	if err != nil {
		return apperrors.NewInternalError("failed to encode record").WithCause(err)
	}
	if _, ok := item[keyAttribute]; !ok {
		return apperrors.NewInternalError("record has no id")
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(physical),
		Item:      item,
	}); err != nil {
		return upstream(err)
	}

	s.logger.Debug("Record written", zap.String("table", physical))
	return nil
}

// Update applies a partial write guarded by conds.
func (s *RecordStore) Update(ctx context.Context, table, id string, upd ports.Update, out interface{}, conds ...ports.Condition) error {
	physical, err := s.table(table)
	if err != nil {
		return err
	}
	if upd.IsEmpty() {
		return apperrors.NewValidationError("no fields to update")
	}

	builder := expression.NewBuilder().
		WithUpdate(buildUpdate(upd)).
		WithCondition(buildCondition(conds))
	expr, err := builder.Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build update expression").WithCause(err)
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(physical),
		Key:                                 key(id),
		UpdateExpression:                    expr.Update(),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return s.conditionalError(table, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMapWithOptions(result.Attributes, out, decodeOpts); err != nil {
			return apperrors.NewInternalError("failed to decode record").WithCause(err)
		}
	}
	return nil
}

// Delete removes a record guarded by conds.
func (s *RecordStore) Delete(ctx context.Context, table, id string, conds ...ports.Condition) error {
	physical, err := s.table(table)
	if err != nil {
		return err
	}

	expr, err := expression.NewBuilder().WithCondition(buildCondition(conds)).Build()
	if err != nil {
		return apperrors.NewInternalError("failed to build condition expression").WithCause(err)
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                           aws.String(physical),
		Key:                                 key(id),
		ConditionExpression:                 expr.Condition(),
		ExpressionAttributeNames:            expr.Names(),
		ExpressionAttributeValues:           expr.Values(),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return s.conditionalError(table, err)
	}
	return nil
}

// conditionalError tells a missing record from a failed guard using the
// old item DynamoDB returns with the failure.
func (s *RecordStore) conditionalError(table string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return apperrors.NewNotFoundError(ports.RecordName(table))
		}
		return fmt.Errorf("%s: %w", table, ports.ErrConditionFailed)
	}
	return upstream(err)
}

// Scan reads the whole table.
func (s *RecordStore) Scan(ctx context.Context, table string, out interface{}) error {
	physical, err := s.table(table)
	if err != nil {
		return err
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(physical),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return upstream(err)
		}
		items = append(items, page.Items...)
	}

	if err := attributevalue.UnmarshalListOfMapsWithOptions(items, out, decodeOpts); err != nil {
		return apperrors.NewInternalError("failed to decode records").WithCause(err)
	}
	return nil
}

// Count returns the number of items using a COUNT scan.
func (s *RecordStore) Count(ctx context.Context, table string) (int, error) {
	physical, err := s.table(table)
	if err != nil {
		return 0, err
	}

	total := 0
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(physical),
		Select:    types.SelectCount,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, upstream(err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// Ping describes the users table.
func (s *RecordStore) Ping(ctx context.Context) error {
	physical, err := s.table(ports.TableUsers)
	if err != nil {
		return err
	}
	if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(physical),
	}); err != nil {
		return upstream(err)
	}
	return nil
}

func buildUpdate(upd ports.Update) expression.UpdateBuilder {
	var ub expression.UpdateBuilder
	for _, field := range sortedKeys(upd.Set) {
		ub = ub.Set(expression.Name(field), expression.Value(upd.Set[field]))
	}
	for _, field := range upd.Remove {
		ub = ub.Remove(expression.Name(field))
	}
	for _, field := range sortedKeys(upd.Increment) {
		ub = ub.Add(expression.Name(field), expression.Value(upd.Increment[field]))
	}
	return ub
}

// buildCondition always requires the record to exist.
func buildCondition(conds []ports.Condition) expression.ConditionBuilder {
	cond := expression.Name(keyAttribute).AttributeExists()
	for _, c := range conds {
		switch c.Op {
		case ports.OpEquals:
			cond = cond.And(expression.Name(c.Field).Equal(expression.Value(c.Value)))
		case ports.OpAtLeast:
			cond = cond.And(expression.Name(c.Field).GreaterThanEqual(expression.Value(c.Value)))
		}
	}
	return cond
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
