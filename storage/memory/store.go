// Package memory provides an in-memory storage implementation for testing
// and embedding.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/analytics"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

// Store implements storage.EventStore, storage.LabelStore and
// analytics.BucketStore using mutex-guarded maps.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]*storage.User
	labels    map[uuid.UUID]*storage.Label
	events    map[uuid.UUID]*storage.Event
	recurring map[uuid.UUID]*storage.RecurringEvent
	buckets   map[string]*analytics.Bucket
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		users:     make(map[uuid.UUID]*storage.User),
		labels:    make(map[uuid.UUID]*storage.Label),
		events:    make(map[uuid.UUID]*storage.Event),
		recurring: make(map[uuid.UUID]*storage.RecurringEvent),
		buckets:   make(map[string]*analytics.Bucket),
	}
}

func bucketKey(ownerID, labelID uuid.UUID, key analytics.Key) string {
	return fmt.Sprintf("%s/%s/%s", ownerID, labelID, key)
}

// User operations

// PutUser creates or replaces a user.
func (s *Store) PutUser(user *storage.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// GetUser finds a user by id.
func (s *Store) GetUser(id uuid.UUID) (*storage.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// Label operations

// PutLabel creates or replaces a label.
func (s *Store) PutLabel(label *storage.Label) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *label
	s.labels[label.ID] = &copied
	return nil
}

func (s *Store) GetLabel(id uuid.UUID) (*storage.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	label, ok := s.labels[id]
	if !ok {
		return nil, fmt.Errorf("label %s: %w", id, storage.ErrNotFound)
	}
	copied := *label
	return &copied, nil
}

// Event operations

func (s *Store) PutEvent(event *storage.Event) error {
	if event.ID == uuid.Nil {
		return fmt.Errorf("event id is required: %w", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *Store) GetEvent(id uuid.UUID) (*storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	copied := *event
	return &copied, nil
}

func (s *Store) DeleteEvent(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	delete(s.events, id)
	return nil
}

func (s *Store) FindEventsByOwnerAndRange(ownerID uuid.UUID, start, end time.Time) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Event
	for _, event := range s.events {
		if event.OwnerID != ownerID || event.Start == nil || event.End == nil {
			continue
		}
		if event.Start.Before(end) && start.Before(*event.End) {
			out = append(out, *event)
		}
	}
	return out, nil
}

// Recurring event operations

func (s *Store) PutRecurringEvent(event *storage.RecurringEvent) error {
	if event.ID == uuid.Nil {
		return fmt.Errorf("recurring event id is required: %w", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *event
	copied.SkipDays = event.SkipDays.Clone()
	s.recurring[event.ID] = &copied
	return nil
}

func (s *Store) GetRecurringEvent(id uuid.UUID) (*storage.RecurringEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.recurring[id]
	if !ok {
		return nil, fmt.Errorf("recurring event %s: %w", id, storage.ErrNotFound)
	}
	copied := *event
	copied.SkipDays = event.SkipDays.Clone()
	return &copied, nil
}

func (s *Store) DeleteRecurringEvent(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[id]; !ok {
		return fmt.Errorf("recurring event %s: %w", id, storage.ErrNotFound)
	}
	delete(s.recurring, id)
	return nil
}

func (s *Store) FindRecurringByOwnerAndRange(ownerID uuid.UUID, start, end time.Time) ([]storage.RecurringEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rangeEnd := recurrence.DateOf(end)
	var out []storage.RecurringEvent
	for _, event := range s.recurring {
		if event.OwnerID != ownerID {
			continue
		}
		if event.StartDate.After(rangeEnd) {
			continue
		}
		if event.EndDate != nil && recurrence.DateOf(*event.EndDate).Before(recurrence.DateOf(start)) {
			continue
		}
		copied := *event
		copied.SkipDays = event.SkipDays.Clone()
		out = append(out, copied)
	}
	return out, nil
}

// Bucket operations

func (s *Store) GetBucket(ownerID, labelID uuid.UUID, key analytics.Key) (*analytics.Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.buckets[bucketKey(ownerID, labelID, key)]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", key, storage.ErrNotFound)
	}
	copied := *bucket
	return &copied, nil
}

func (s *Store) PutBucket(bucket *analytics.Bucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *bucket
	s.buckets[bucketKey(bucket.OwnerID, bucket.LabelID, bucket.Key)] = &copied
	return nil
}
