package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventStore connects your backend storage (e.g. database) with the planner
// core. Please use the error values provided.
type EventStore interface {
	// FindEventsByOwnerAndRange retrieves all single events owned by ownerID
	// whose [start, end) interval intersects the given UTC range. Draft events
	// without concrete times are excluded.
	FindEventsByOwnerAndRange(ownerID uuid.UUID, start, end time.Time) ([]Event, error)
	// FindRecurringByOwnerAndRange retrieves all recurring events owned by
	// ownerID whose effective date range intersects the given range. An
	// open-ended recurring event intersects every range after its start date.
	FindRecurringByOwnerAndRange(ownerID uuid.UUID, start, end time.Time) ([]RecurringEvent, error)
	// GetEvent finds a single event by id.
	GetEvent(id uuid.UUID) (*Event, error)
	// GetRecurringEvent finds a recurring event by id.
	GetRecurringEvent(id uuid.UUID) (*RecurringEvent, error)
	// PutEvent creates or replaces a single event.
	PutEvent(event *Event) error
	// PutRecurringEvent creates or replaces a recurring event.
	PutRecurringEvent(event *RecurringEvent) error
	// DeleteEvent removes a single event.
	DeleteEvent(id uuid.UUID) error
	// DeleteRecurringEvent removes a recurring event.
	DeleteRecurringEvent(id uuid.UUID) error
}

// LabelStore resolves label references for denormalization into analytics
// rows and calendar views.
type LabelStore interface {
	// GetLabel finds a label by id.
	GetLabel(id uuid.UUID) (*Label, error)
}

// Clock abstracts "now" so that skip-day validity and current-period queries
// are testable with a fixed time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Useful for tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input parameters")
	// ErrConflict is returned when there's a conflict with an existing resource
	ErrConflict = errors.New("resource conflict")
	// ErrStorageUnavailable is returned when the storage backend is unavailable
	ErrStorageUnavailable = errors.New("storage unavailable")
)
