package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"crud-microservices/application/ports"
	"crud-microservices/domain/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// API is the subset of the SQS client the notifier uses.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// Notifier enqueues notifications on an SQS queue.
type Notifier struct {
	client   API
	queueURL string
	logger   *zap.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier for queueURL.
func NewNotifier(client API, queueURL string, logger *zap.Logger) *Notifier {
	return &Notifier{client: client, queueURL: queueURL, logger: logger}
}

// Send implements ports.Notifier.
func (n *Notifier) Send(ctx context.Context, msg events.Notification) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	out, err := n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	n.logger.Debug("Notification enqueued",
		zap.String("type", msg.Type),
		zap.String("messageId", aws.ToString(out.MessageId)),
	)
	return nil
}

// Ping reads the queue's attributes.
func (n *Notifier) Ping(ctx context.Context) error {
	_, err := n.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(n.queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	return err
}
