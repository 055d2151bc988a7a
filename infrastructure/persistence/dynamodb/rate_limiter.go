package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"crud-microservices/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CounterAPI is the subset of the DynamoDB client the rate limiter uses.
type CounterAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// RateLimiter counts requests per key in fixed windows stored in a DynamoDB
// table keyed by "id" with a TTL attribute "expiresAt". Unlike the in-process
// limiter it is shared by every Lambda container.
type RateLimiter struct {
	client CounterAPI
	table  string
	limit  int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

var _ auth.RateLimiter = (*RateLimiter)(nil)

// NewRateLimiter allows limit requests per key in each window.
func NewRateLimiter(client CounterAPI, table string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		table:  table,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

func (l *RateLimiter) windowKey(key string) (string, time.Time) {
	start := l.now().Truncate(l.window)
	return windowID(key, start), start.Add(l.window)
}

// Allow increments the key's counter unless it already reached the limit.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	id, windowEnd := l.windowKey(key)

	update := expression.Add(expression.Name("hits"), expression.Value(1)).
		Set(expression.Name("expiresAt"), expression.Value(windowEnd.Unix()))
	cond := expression.Name("hits").AttributeNotExists().
		Or(expression.Name("hits").LessThan(expression.Value(l.limit)))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return false, fmt.Errorf("build rate limit expression: %w", err)
	}

	_, err = l.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(l.table),
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			l.logger.Debug("Rate limit reached", zap.String("key", key), zap.Int("limit", l.limit))
			return false, nil
		}
		return false, fmt.Errorf("rate limit update: %w", err)
	}
	return true, nil
}

// Reset clears the key's counter for the current window.
func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	id, _ := l.windowKey(key)
	_, err := l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.table),
		Key: map[string]types.AttributeValue{
			keyAttribute: &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("rate limit reset: %w", err)
	}
	return nil
}

func windowID(key string, start time.Time) string {
	return key + "#" + strconv.FormatInt(start.Unix(), 10)
}
