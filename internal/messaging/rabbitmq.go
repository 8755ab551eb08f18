package messaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"grievance-service/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName    = "grievance.events"
	DLXExchangeName = "grievance.events.dlx"

	QueueGrievanceCreated = "queue.grievance_created"
	QueueStatusUpdates    = "queue.status_updates"
	QueueAssignments      = "queue.assignments"
	QueueAlerts           = "queue.alerts"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
	prefetchCount  = 10
	dlqMessageTTL  = int64(86400000) // 24h
)

type QueueConfig struct {
	QueueName     string
	RoutingKey    string
	DLQName       string
	DLQRoutingKey string
}

var QueueConfigs = []QueueConfig{
	{
		QueueName:     QueueGrievanceCreated,
		RoutingKey:    model.RoutingKeyGrievanceCreated,
		DLQName:       QueueGrievanceCreated + ".dlq",
		DLQRoutingKey: "dlq.grievance_created",
	},
	{
		QueueName:     QueueStatusUpdates,
		RoutingKey:    model.RoutingKeyStatusUpdate,
		DLQName:       QueueStatusUpdates + ".dlq",
		DLQRoutingKey: "dlq.status_updates",
	},
	{
		QueueName:     QueueAssignments,
		RoutingKey:    model.RoutingKeyAssigned,
		DLQName:       QueueAssignments + ".dlq",
		DLQRoutingKey: "dlq.assignments",
	},
	{
		QueueName:     QueueAlerts,
		RoutingKey:    model.RoutingKeyAlertRaised,
		DLQName:       QueueAlerts + ".dlq",
		DLQRoutingKey: "dlq.alerts",
	},
}

// QueueFor returns the queue bound to routingKey.
func QueueFor(routingKey string) (string, bool) {
	for _, qc := range QueueConfigs {
		if qc.RoutingKey == routingKey {
			return qc.QueueName, true
		}
	}
	return "", false
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	done    chan struct{}
}

func NewRabbitMQ(host, port, user, password string) (*RabbitMQ, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, password, host, port)

	rmq := &RabbitMQ{
		url:  url,
		done: make(chan struct{}),
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	go rmq.handleReconnect()

	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	var err error

	r.conn, err = amqp.Dial(r.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	r.channel, err = r.conn.Channel()
	if err != nil {
		r.conn.Close()
		return fmt.Errorf("channel: %w", err)
	}

	if err := r.channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	if err := declareTopology(r.channel); err != nil {
		return err
	}

	log.Println("rabbitmq: connected with DLQ configuration")
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	for _, name := range []string{ExchangeName, DLXExchangeName} {
		err := ch.ExchangeDeclare(
			name,
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("exchange declare %s: %w", name, err)
		}
	}

	for _, qc := range QueueConfigs {
		_, err := ch.QueueDeclare(
			qc.DLQName,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			amqp.Table{"x-message-ttl": dlqMessageTTL},
		)
		if err != nil {
			return fmt.Errorf("dlq declare %s: %w", qc.DLQName, err)
		}

		if err := ch.QueueBind(qc.DLQName, qc.DLQRoutingKey, DLXExchangeName, false, nil); err != nil {
			return fmt.Errorf("dlq bind %s: %w", qc.DLQName, err)
		}

		_, err = ch.QueueDeclare(
			qc.QueueName,
			true,
			false,
			false,
			false,
			amqp.Table{
				"x-dead-letter-exchange":    DLXExchangeName,
				"x-dead-letter-routing-key": qc.DLQRoutingKey,
			},
		)
		if err != nil {
			return fmt.Errorf("queue declare %s: %w", qc.QueueName, err)
		}

		if err := ch.QueueBind(qc.QueueName, qc.RoutingKey, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s->%s: %w", qc.QueueName, qc.RoutingKey, err)
		}
	}
	return nil
}

func (r *RabbitMQ) handleReconnect() {
	for {
		r.mu.RLock()
		closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
		r.mu.RUnlock()

		select {
		case <-r.done:
			return
		case err := <-closed:
			if err != nil {
				log.Printf("rabbitmq: disconnected: %v", err)
			}

			r.mu.Lock()
			for {
				select {
				case <-r.done:
					r.mu.Unlock()
					return
				default:
				}
				if err := r.connect(); err != nil {
					log.Printf("rabbitmq: reconnect failed: %v", err)
					time.Sleep(reconnectDelay)
					continue
				}
				break
			}
			r.mu.Unlock()
		}
	}
}

// Publish sends a persistent JSON message. messageID lets consumers drop
// redeliveries.
func (r *RabbitMQ) Publish(ctx context.Context, messageID, routingKey string, body []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return fmt.Errorf("channel not available")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := r.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (r *RabbitMQ) ConsumeQueue(queueName string) (<-chan amqp.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.channel == nil {
		return nil, fmt.Errorf("channel not available")
	}

	msgs, err := r.channel.Consume(
		queueName,
		"",    // consumer tag
		false, // auto-ack off, the consumer acks after retries
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queueName, err)
	}

	return msgs, nil
}

func (r *RabbitMQ) Close() {
	close(r.done)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}

	log.Println("rabbitmq: connection closed")
}
