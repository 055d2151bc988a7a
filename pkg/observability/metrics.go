package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the subset of the CloudWatch client metrics use.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics handles application metrics and monitoring
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
	now       func() time.Time
}

// NewMetrics creates a new metrics instance. A nil client disables it.
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metrics{namespace: namespace, client: client, logger: logger, now: time.Now}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

// RecordRequest records one API call: a count, its latency and, for
// status >= 400, an error count.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil || m.client == nil {
		return
	}

	now := aws.Time(m.now())
	dims := []types.Dimension{
		dimension("Endpoint", route),
		dimension("Method", method),
		dimension("StatusCode", strconv.Itoa(status)),
	}
	data := []types.MetricDatum{
		{
			MetricName: aws.String("ApiCalls"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  now,
		},
		{
			MetricName: aws.String("ApiLatency"),
			Dimensions: dims[:2],
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  now,
		},
	}
	if status >= 400 {
		data = append(data, types.MetricDatum{
			MetricName: aws.String("ApiErrors"),
			Dimensions: dims,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  now,
		})
	}
	m.put(ctx, data)
}

// RecordBusinessEvent counts a domain event such as ORDER_CREATED.
func (m *Metrics) RecordBusinessEvent(ctx context.Context, eventType string) {
	if m == nil || m.client == nil {
		return
	}
	m.put(ctx, []types.MetricDatum{{
		MetricName: aws.String("BusinessEvents"),
		Dimensions: []types.Dimension{dimension("EventType", eventType)},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(m.now()),
	}})
}

// put never fails the caller; metrics are best effort.
func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	if _, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}); err != nil {
		m.logger.Warn("Failed to send metrics", zap.String("namespace", m.namespace), zap.Error(err))
	}
}
