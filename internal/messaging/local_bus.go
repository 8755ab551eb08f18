package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"grievance-service/internal/model"

	"github.com/google/uuid"
)

// LocalBus hands events straight to the consumer. It stands in for the
// outbox and RabbitMQ when the service runs on the memory driver.
type LocalBus struct {
	consumer *NotificationConsumer
}

func NewLocalBus(consumer *NotificationConsumer) *LocalBus {
	return &LocalBus{consumer: consumer}
}

func (b *LocalBus) Publish(ctx context.Context, e model.Event) error {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.RoutingKey, err)
	}

	source, ok := QueueFor(e.RoutingKey)
	if !ok {
		source = "local"
	}
	return b.consumer.Process(ctx, source, Delivery{
		MessageID:  uuid.NewString(),
		RoutingKey: e.RoutingKey,
		Body:       body,
	})
}
