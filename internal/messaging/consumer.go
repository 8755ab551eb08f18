package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"grievance-service/internal/model"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	maxRetryAttempts = 3
	initialDelay     = 1 * time.Second
	maxDelay         = 30 * time.Second
)

var errUnknownRoutingKey = errors.New("unknown routing key")

// Delivery is a message body independent of the transport that carried it.
type Delivery struct {
	MessageID  string
	RoutingKey string
	Body       []byte
}

type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	IsMessageProcessed(ctx context.Context, messageID string) (bool, error)
	MarkMessageProcessed(ctx context.Context, messageID string) error
}

type handlerFunc func(ctx context.Context, d Delivery) error

// NotificationConsumer turns grievance events into stored notifications and
// pushes them to connected SSE clients.
type NotificationConsumer struct {
	rmq      *RabbitMQ
	store    NotificationStore
	sseHub   *SSEHub
	handlers map[string]handlerFunc
	attempts uint
	delay    time.Duration
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewNotificationConsumer builds a consumer. rmq may be nil when events are
// delivered in process through LocalBus.
func NewNotificationConsumer(rmq *RabbitMQ, store NotificationStore, sseHub *SSEHub) *NotificationConsumer {
	c := &NotificationConsumer{
		rmq:      rmq,
		store:    store,
		sseHub:   sseHub,
		attempts: maxRetryAttempts,
		delay:    initialDelay,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	c.handlers = map[string]handlerFunc{
		model.RoutingKeyGrievanceCreated: c.handleGrievanceCreated,
		model.RoutingKeyStatusUpdate:     c.handleStatusUpdate,
		model.RoutingKeyAssigned:         c.handleAssignment,
		model.RoutingKeyAlertRaised:      c.handleAlertRaised,
	}
	return c
}

func (c *NotificationConsumer) Start() {
	if c.rmq == nil {
		return
	}
	for _, qc := range QueueConfigs {
		c.wg.Add(1)
		go c.consumeQueue(qc.QueueName)
	}
	log.Printf("consumers started (%d queues)", len(QueueConfigs))
}

func (c *NotificationConsumer) consumeQueue(queueName string) {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			log.Printf("consumer %s: stopping", queueName)
			return
		default:
			msgs, err := c.rmq.ConsumeQueue(queueName)
			if err != nil {
				log.Printf("consumer %s: error %v, retrying in 5s...", queueName, err)
				select {
				case <-c.done:
					return
				case <-time.After(reconnectDelay):
				}
				continue
			}

			log.Printf("consumer %s: listening for messages", queueName)
			c.processQueue(queueName, msgs)
		}
	}
}

func (c *NotificationConsumer) processQueue(queueName string, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Printf("consumer %s: channel closed, reconnecting...", queueName)
				return
			}
			d := Delivery{MessageID: msg.MessageId, RoutingKey: msg.RoutingKey, Body: msg.Body}
			if err := c.Process(context.Background(), queueName, d); err != nil {
				log.Printf("%s: failed, sending to DLQ: %v", queueName, err)
				msg.Nack(false, false)
				continue
			}
			msg.Ack(false)
		}
	}
}

// Process runs the handler for d with retry and drops messages that were
// already handled. A non-nil error means the message should be dead-lettered.
func (c *NotificationConsumer) Process(ctx context.Context, source string, d Delivery) error {
	handler, ok := c.handlers[d.RoutingKey]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownRoutingKey, d.RoutingKey)
	}

	if d.MessageID == "" {
		d.MessageID = uuid.NewSHA1(uuid.NameSpaceOID, d.Body).String()
	}

	processed, err := c.store.IsMessageProcessed(ctx, d.MessageID)
	if err != nil {
		log.Printf("%s: idempotency check failed: %v", source, err)
	}
	if processed {
		log.Printf("%s: %s already processed", source, d.MessageID)
		return nil
	}

	err = retry.Do(
		func() error {
			return handler(ctx, d)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("%s: retry %d: %v", source, n+1, err)
		}),
	)
	if err != nil {
		return err
	}

	if err := c.store.MarkMessageProcessed(ctx, d.MessageID); err != nil {
		log.Printf("%s: mark processed failed: %v", source, err)
	}
	return nil
}

func (c *NotificationConsumer) handleGrievanceCreated(ctx context.Context, d Delivery) error {
	var msg model.GrievanceCreatedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("grievance_created: bad json: %v", err)
		return nil
	}

	title := "New Grievance Reported"
	text := fmt.Sprintf("%s grievance (%s priority) reported in %s for %s", msg.Category, msg.Priority, msg.City, msg.Department)
	return c.notifyAll(ctx, d, msg.GrievanceID, title, text, jurisdictionChannels(msg.City, msg.State)...)
}

func (c *NotificationConsumer) handleStatusUpdate(ctx context.Context, d Delivery) error {
	var msg model.StatusUpdateMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("status_update: bad json: %v", err)
		return nil
	}
	if msg.ReporterID == "" {
		return nil
	}

	title := "Grievance Status Updated"
	text := fmt.Sprintf("Your %s grievance is now %s", msg.Category, model.Status(msg.NewStatus).Label())
	return c.notifyAll(ctx, d, msg.GrievanceID, title, text, msg.ReporterID)
}

func (c *NotificationConsumer) handleAssignment(ctx context.Context, d Delivery) error {
	var msg model.AssignmentMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("assignment: bad json: %v", err)
		return nil
	}
	if msg.ReporterID == "" {
		return nil
	}

	title := "Officer Assigned"
	text := fmt.Sprintf("%s has been assigned to your %s grievance", msg.Officer, msg.Category)
	if msg.Officer == "" {
		title = "Assignment Removed"
		text = fmt.Sprintf("Your %s grievance is awaiting a new officer", msg.Category)
	}
	return c.notifyAll(ctx, d, msg.GrievanceID, title, text, msg.ReporterID)
}

func (c *NotificationConsumer) handleAlertRaised(ctx context.Context, d Delivery) error {
	var msg model.AlertRaisedMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("alert: bad json: %v", err)
		return nil
	}

	title := "Alert: " + msg.Type
	return c.notifyAll(ctx, d, msg.GrievanceID, title, msg.Message, jurisdictionChannels(msg.City, msg.State)...)
}

// notifyAll stores one notification per recipient. Ids derive from the
// message id so a retried handler does not duplicate rows.
func (c *NotificationConsumer) notifyAll(ctx context.Context, d Delivery, grievanceID, title, text string, recipients ...string) error {
	var gid *uuid.UUID
	if id, err := uuid.Parse(grievanceID); err == nil {
		gid = &id
	} else {
		log.Printf("%s: bad grievance_id %q", d.RoutingKey, grievanceID)
	}

	for _, recipient := range recipients {
		n := &model.Notification{
			ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(d.MessageID+"|"+recipient)),
			Recipient:   recipient,
			GrievanceID: gid,
			Title:       title,
			Message:     text,
			CreatedAt:   c.now(),
		}
		if err := c.store.Create(ctx, n); err != nil {
			return err
		}
		if c.sseHub != nil {
			c.sseHub.Send(n)
		}
	}
	return nil
}

func jurisdictionChannels(city, state string) []string {
	var out []string
	if city != "" {
		out = append(out, model.CityChannel(city))
	}
	if state != "" {
		out = append(out, model.StateChannel(state))
	}
	return out
}

func (c *NotificationConsumer) Stop() {
	close(c.done)
	c.wg.Wait()
}
