package repository

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"grievance-service/internal/model"

	"github.com/google/uuid"
)

// EventSink receives events after the memory store commits a change.
type EventSink interface {
	Publish(ctx context.Context, e model.Event) error
}

// MemoryGrievanceStore keeps grievances in process. Every mutation is
// serialized by one mutex and readers get deep copies.
type MemoryGrievanceStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*model.Grievance
	order []uuid.UUID
	sink  EventSink
}

func NewMemoryGrievanceStore() *MemoryGrievanceStore {
	return &MemoryGrievanceStore{items: make(map[uuid.UUID]*model.Grievance)}
}

// SetSink wires the destination for committed events. Nil drops them.
func (s *MemoryGrievanceStore) SetSink(sink EventSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

func (s *MemoryGrievanceStore) Create(ctx context.Context, g *model.Grievance, events ...model.Event) error {
	s.mu.Lock()
	if _, ok := s.items[g.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("grievance %s already exists", g.ID)
	}
	c := g.Clone()
	s.items[g.ID] = &c
	s.order = append(s.order, g.ID)
	sink := s.sink
	s.mu.Unlock()

	s.deliver(ctx, sink, events)
	return nil
}

func (s *MemoryGrievanceStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("grievance %s: %w", id, model.ErrNotFound)
	}
	c := g.Clone()
	return &c, nil
}

func (s *MemoryGrievanceStore) FindAll(ctx context.Context) ([]model.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Grievance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out, nil
}

func (s *MemoryGrievanceStore) Update(ctx context.Context, id uuid.UUID, fn func(*model.Grievance) ([]model.Event, error)) (*model.Grievance, error) {
	s.mu.Lock()
	g, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("grievance %s: %w", id, model.ErrNotFound)
	}

	work := g.Clone()
	events, err := fn(&work)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	stored := work.Clone()
	s.items[id] = &stored
	sink := s.sink
	s.mu.Unlock()

	s.deliver(ctx, sink, events)
	return &work, nil
}

func (s *MemoryGrievanceStore) deliver(ctx context.Context, sink EventSink, events []model.Event) {
	if sink == nil {
		return
	}
	for _, e := range events {
		if err := sink.Publish(ctx, e); err != nil {
			log.Printf("memory store: deliver %s: %v", e.RoutingKey, err)
		}
	}
}

type MemoryNotificationStore struct {
	mu        sync.RWMutex
	items     []model.Notification
	processed map[string]time.Time
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{processed: make(map[string]time.Time)}
}

func (s *MemoryNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == n.ID {
			return nil
		}
	}
	s.items = append(s.items, *n)
	return nil
}

func (s *MemoryNotificationStore) ListForRecipients(ctx context.Context, recipients []string) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := recipientSet(recipients)
	out := []model.Notification{}
	for _, n := range s.items {
		if want[n.Recipient] {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > notificationPageSize {
		out = out[:notificationPageSize]
	}
	return out, nil
}

func (s *MemoryNotificationStore) UnreadCount(ctx context.Context, recipients []string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := recipientSet(recipients)
	count := 0
	for _, n := range s.items {
		if want[n.Recipient] && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryNotificationStore) MarkAsRead(ctx context.Context, id uuid.UUID, recipients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := recipientSet(recipients)
	for i := range s.items {
		if s.items[i].ID == id && want[s.items[i].Recipient] {
			s.items[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
}

func (s *MemoryNotificationStore) MarkAllAsRead(ctx context.Context, recipients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := recipientSet(recipients)
	for i := range s.items {
		if want[s.items[i].Recipient] {
			s.items[i].IsRead = true
		}
	}
	return nil
}

func (s *MemoryNotificationStore) IsMessageProcessed(ctx context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[messageID]
	return ok, nil
}

func (s *MemoryNotificationStore) MarkMessageProcessed(ctx context.Context, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processed[messageID]; !ok {
		s.processed[messageID] = time.Now()
	}
	return nil
}

func recipientSet(recipients []string) map[string]bool {
	set := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		set[r] = true
	}
	return set
}

type MemoryWaitlist struct {
	mu     sync.Mutex
	emails map[string]time.Time
}

func NewMemoryWaitlist() *MemoryWaitlist {
	return &MemoryWaitlist{emails: make(map[string]time.Time)}
}

// Add treats addresses case-insensitively, matching how they are stored
// after normalization by the waitlist service.
func (w *MemoryWaitlist) Add(ctx context.Context, email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := w.emails[key]; ok {
		return fmt.Errorf("%s: %w", email, model.ErrAlreadyRegistered)
	}
	w.emails[key] = time.Now()
	return nil
}
