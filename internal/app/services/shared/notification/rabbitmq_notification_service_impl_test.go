package notification

import (
	"context"
	"errors"
	"telemed-service/internal/app/models"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func newTestService(channel publisher, retries uint) *rabbitMQNotificationService {
	service := newRabbitMQNotificationService(channel, "notifications", retries, zap.NewNop())
	service.backOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return service
}

func TestRabbitMQNotificationService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes persistent json message", func(t *testing.T) {
		channel := new(MockPublisher)
		var published amqp091.Publishing
		channel.On("PublishWithContext", ctx, "", "notifications", false, false, mock.Anything).
			Run(func(args mock.Arguments) { published = args.Get(5).(amqp091.Publishing) }).
			Return(nil).Once()

		err := newTestService(channel, 3).Notify(ctx, "doc-1", "appointment_booked", "New booking", map[string]string{"appointmentId": "a-1"})
		require.NoError(t, err)

		assert.Equal(t, amqp091.Persistent, published.DeliveryMode)
		var notification models.Notification
		require.NoError(t, json.Unmarshal(published.Body, &notification))
		assert.Equal(t, "doc-1", notification.RecipientID)
		assert.Equal(t, "a-1", notification.Context["appointmentId"])
	})

	t.Run("retries transient failures", func(t *testing.T) {
		channel := new(MockPublisher)
		channel.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("channel closed")).Once()
		channel.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Once()

		err := newTestService(channel, 3).Notify(ctx, "p-1", "payment_verified", "Paid", nil)
		require.NoError(t, err)
		channel.AssertNumberOfCalls(t, "PublishWithContext", 2)
	})

	t.Run("gives up after max tries", func(t *testing.T) {
		channel := new(MockPublisher)
		channel.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("channel closed"))

		err := newTestService(channel, 2).Notify(ctx, "p-1", "payment_verified", "Paid", nil)
		assert.Error(t, err)
		channel.AssertNumberOfCalls(t, "PublishWithContext", 2)
	})
}
