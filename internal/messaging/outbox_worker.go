package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"grievance-service/internal/repository"

	"github.com/google/uuid"
)

const (
	workerInterval     = 1 * time.Second
	batchSize          = 50
	cleanupInterval    = 1 * time.Hour
	publishedRetention = 24 * time.Hour
	claimTimeout       = 2 * time.Minute
)

// OutboxStore is the slice of the outbox table the worker needs.
type OutboxStore interface {
	ClaimPending(ctx context.Context, limit int) ([]repository.OutboxMessage, error)
	MarkAsPublished(ctx context.Context, id uuid.UUID) error
	MarkAsFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
	DeletePublished(ctx context.Context, olderThan time.Duration) (int64, error)
	GetStats(ctx context.Context) (map[string]int, error)
}

type Broker interface {
	Publish(ctx context.Context, messageID, routingKey string, body []byte) error
}

// OutboxWorker publishes messages from the outbox table to RabbitMQ.
type OutboxWorker struct {
	outbox OutboxStore
	broker Broker
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewOutboxWorker(outbox OutboxStore, broker Broker) *OutboxWorker {
	return &OutboxWorker{
		outbox: outbox,
		broker: broker,
		done:   make(chan struct{}),
	}
}

func (w *OutboxWorker) Start() {
	w.wg.Add(2)
	go w.processLoop()
	go w.cleanupLoop()
	log.Println("outbox: started")
}

func (w *OutboxWorker) processLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(workerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.ProcessPending(context.Background())
		}
	}
}

// ProcessPending publishes one batch and returns how many messages went out.
func (w *OutboxWorker) ProcessPending(ctx context.Context) int {
	messages, err := w.outbox.ClaimPending(ctx, batchSize)
	if err != nil {
		log.Printf("outbox: claim pending: %v", err)
		return 0
	}

	published := 0
	for _, msg := range messages {
		if err := w.broker.Publish(ctx, msg.ID.String(), msg.RoutingKey, msg.Payload); err != nil {
			log.Printf("outbox: publish %s: %v", msg.ID, err)
			if err := w.outbox.MarkAsFailed(ctx, msg.ID, err.Error()); err != nil {
				log.Printf("outbox: mark failed %s: %v", msg.ID, err)
			}
			continue
		}

		if err := w.outbox.MarkAsPublished(ctx, msg.ID); err != nil {
			log.Printf("outbox: mark published %s: %v", msg.ID, err)
			continue
		}
		published++
	}
	return published
}

func (w *OutboxWorker) cleanupLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.Cleanup(context.Background())
		}
	}
}

// Cleanup purges old published rows and frees claims left by a crashed worker.
func (w *OutboxWorker) Cleanup(ctx context.Context) {
	deleted, err := w.outbox.DeletePublished(ctx, publishedRetention)
	if err != nil {
		log.Printf("outbox: cleanup: %v", err)
	} else if deleted > 0 {
		log.Printf("outbox: cleaned %d old messages", deleted)
	}

	released, err := w.outbox.ReleaseStale(ctx, claimTimeout)
	if err != nil {
		log.Printf("outbox: release stale: %v", err)
	} else if released > 0 {
		log.Printf("outbox: released %d stale claims", released)
	}
}

func (w *OutboxWorker) Stop() {
	close(w.done)
	w.wg.Wait()
	log.Println("outbox: stopped")
}

func (w *OutboxWorker) GetStats(ctx context.Context) (map[string]int, error) {
	return w.outbox.GetStats(ctx)
}
