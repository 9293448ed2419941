package conflict

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

const (
	// CodeInvalidSkipDayAddition marks an attempt to skip a past occurrence.
	CodeInvalidSkipDayAddition = "INVALID_SKIP_DAY_ADDITION"
	// CodeInvalidSkipDayRemoval marks an attempt to restore a past occurrence.
	CodeInvalidSkipDayRemoval = "INVALID_SKIP_DAY_REMOVAL"
)

// SkipDayError reports a skip-day mutation on an immutable past date.
type SkipDayError struct {
	Code string
	Date time.Time
}

func (e *SkipDayError) Error() string {
	return fmt.Sprintf("%s: %s is in the past", e.Code, e.Date.Format("2006-01-02"))
}

// ResolutionError reports a resolution decision whose loser cannot take a
// skip day. Conflict reports mix single and recurring ids, but only
// recurring series accept skip days; a single event must be moved or
// deleted instead.
type ResolutionError struct {
	Date  time.Time
	Loser uuid.UUID
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("event %s cannot yield on %s: only recurring series accept skip days",
		e.Loser, e.Date.Format("2006-01-02"))
}

// Resolution maps each conflicting date to the id of the event that yields
// on it (the "loser", which gets a skip day).
type Resolution map[time.Time]uuid.UUID

// Today computes the current calendar date as perceived in loc.
func Today(clock storage.Clock, loc *time.Location) time.Time {
	return recurrence.DateOf(clock.Now().In(loc))
}

// ValidateSkipDayMutation rejects mutations of dates strictly before today;
// past occurrences are immutable history. code selects which stable error
// code the failure carries.
func ValidateSkipDayMutation(date, today time.Time, code string) error {
	if recurrence.DateOf(date).Before(today) {
		return &SkipDayError{Code: code, Date: recurrence.DateOf(date)}
	}
	return nil
}

// Resolver applies user-supplied conflict resolutions by emitting skip-day
// exceptions.
type Resolver struct {
	store storage.EventStore
	clock storage.Clock
}

// NewResolver creates a resolver. clock determines "today" for the past-date
// check; nil means the system clock.
func NewResolver(store storage.EventStore, clock storage.Clock) *Resolver {
	if clock == nil {
		clock = storage.SystemClock{}
	}
	return &Resolver{store: store, clock: clock}
}

// ApplyResolutions walks the (date, loser) decisions. When the loser is the
// new recurring event itself, the date is added to its skip days in memory;
// the caller persists it. When the loser is an existing recurring event, it
// is loaded, amended and persisted here. A loser that turns out to be a
// single event yields a *ResolutionError, since skip days only apply to
// recurring series.
//
// All dates are validated against "today" in the recurring event's timezone
// before anything is mutated, so a single past date fails the whole batch.
// Skip days are a set union, which makes re-applying the same resolution a
// no-op.
func (r *Resolver) ApplyResolutions(resolutions Resolution, newEventID uuid.UUID, re *storage.RecurringEvent) error {
	today := Today(r.clock, re.Location())
	for date := range resolutions {
		if err := ValidateSkipDayMutation(date, today, CodeInvalidSkipDayAddition); err != nil {
			return err
		}
	}

	if re.SkipDays == nil {
		re.SkipDays = recurrence.NewDateSet()
	}

	for date, loser := range resolutions {
		if loser == newEventID {
			re.SkipDays.Add(date)
			continue
		}

		other, err := r.store.GetRecurringEvent(loser)
		if errors.Is(err, storage.ErrNotFound) {
			if _, evErr := r.store.GetEvent(loser); evErr == nil {
				return &ResolutionError{Date: date, Loser: loser}
			}
			return fmt.Errorf("failed to locate conflicting event %s: %w", loser, err)
		}
		if err != nil {
			return fmt.Errorf("failed to locate conflicting event %s: %w", loser, err)
		}
		if other.SkipDays == nil {
			other.SkipDays = recurrence.NewDateSet()
		}
		other.SkipDays.Add(date)
		if err := r.store.PutRecurringEvent(other); err != nil {
			return fmt.Errorf("failed to persist skip day on %s: %w", loser, err)
		}
	}
	return nil
}
