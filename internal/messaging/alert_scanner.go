package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"grievance-service/internal/model"
	"grievance-service/internal/repository"
	"grievance-service/internal/triage"
)

type SnapshotSource interface {
	FindAll(ctx context.Context) ([]model.Grievance, error)
}

type AlertLedger interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, e model.Event) error
}

// AlertScanner re-runs alert detection on a fresh snapshot every interval
// and whenever Trigger is called, and publishes alerts the ledger has not
// seen yet.
type AlertScanner struct {
	source    SnapshotSource
	ledger    AlertLedger
	publisher EventPublisher
	interval  time.Duration
	now       func() time.Time
	trigger   chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewAlertScanner(source SnapshotSource, ledger AlertLedger, publisher EventPublisher, interval time.Duration) *AlertScanner {
	return &AlertScanner{
		source:    source,
		ledger:    ledger,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
		trigger:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

func (s *AlertScanner) Start() {
	s.wg.Add(1)
	go s.loop()
	log.Printf("scanner: started, interval %s", s.interval)
}

func (s *AlertScanner) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		case <-s.trigger:
		}
		if _, err := s.Scan(context.Background()); err != nil {
			log.Printf("scanner: %v", err)
		}
	}
}

// Trigger asks for a scan soon. Calls made while one is pending coalesce.
func (s *AlertScanner) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Scan publishes newly raised alerts and returns how many were announced.
func (s *AlertScanner) Scan(ctx context.Context) (int, error) {
	gs, err := s.source.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	announced := 0
	for _, a := range triage.DetectAlerts(gs, now) {
		fresh, err := s.ledger.Claim(ctx, repository.AlertKey(a.GrievanceID.String(), string(a.Type)))
		if err != nil {
			log.Printf("scanner: ledger %s: %v", a.GrievanceID, err)
			continue
		}
		if !fresh {
			continue
		}
		if err := s.publisher.Publish(ctx, model.NewAlertRaisedEvent(a, now)); err != nil {
			log.Printf("scanner: publish %s: %v", a.GrievanceID, err)
			continue
		}
		announced++
	}
	if announced > 0 {
		log.Printf("scanner: announced %d alerts", announced)
	}
	return announced, nil
}

func (s *AlertScanner) Stop() {
	close(s.done)
	s.wg.Wait()
	log.Println("scanner: stopped")
}
