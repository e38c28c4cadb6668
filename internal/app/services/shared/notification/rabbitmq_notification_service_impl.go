// Package notification publishes user notifications to a durable queue.
// Delivery to devices is handled by consumers of that queue.
package notification

import (
	"context"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publisher is the part of *amqp091.Channel used here.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type rabbitMQNotificationService struct {
	channel    publisher
	queue      string
	maxRetries uint
	backOff    func() backoff.BackOff
	Log        *zap.Logger
}

// NewRabbitMQNotificationService declares the durable queue and returns a
// publisher bound to it.
func NewRabbitMQNotificationService(conn *amqp091.Connection, queue string, maxRetries uint, logger *zap.Logger) (contracts.NotificationService, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, exceptions.ErrRabbitMQPublish(err, queue)
	}
	_, err = channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, exceptions.ErrRabbitMQPublish(err, queue)
	}
	return newRabbitMQNotificationService(channel, queue, maxRetries, logger), nil
}

func newRabbitMQNotificationService(channel publisher, queue string, maxRetries uint, logger *zap.Logger) *rabbitMQNotificationService {
	if maxRetries == 0 {
		maxRetries = 1
	}
	return &rabbitMQNotificationService{
		channel:    channel,
		queue:      queue,
		maxRetries: maxRetries,
		backOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
		Log: logger,
	}
}

func (s *rabbitMQNotificationService) Notify(ctx context.Context, recipientID, event, message string, notificationContext map[string]string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	notification := models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Event:       event,
		Message:     message,
		Context:     notificationContext,
		CreatedAt:   time.Now().UTC(),
	}
	body, err := json.Marshal(notification)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		publishErr := s.channel.PublishWithContext(ctx, "", s.queue, false, false, amqp091.Publishing{
			ContentType:  constvars.MIMEApplicationJSON,
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			MessageId:    notification.ID,
			Timestamp:    notification.CreatedAt,
			Headers: amqp091.Table{
				"request_id": requestID,
				"event":      event,
			},
		})
		if publishErr != nil {
			s.Log.Warn("rabbitMQNotificationService.Notify publish attempt failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingQueueKey, s.queue),
				zap.Int(constvars.LoggingAttemptKey, attempt),
				zap.Error(publishErr),
			)
		}
		return struct{}{}, publishErr
	}, backoff.WithBackOff(s.backOff()), backoff.WithMaxTries(s.maxRetries))
	if err != nil {
		return exceptions.ErrRabbitMQPublish(err, s.queue)
	}

	s.Log.Debug("rabbitMQNotificationService.Notify published",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueKey, s.queue),
		zap.String("event", event),
	)
	return nil
}
