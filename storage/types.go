package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/recurrence"
)

// User represents a planner user. Events, recurring events and labels are
// exclusively owned by one user.
type User struct {
	ID uuid.UUID
	// DisplayName is shown in exported calendars.
	DisplayName string
	// Timezone is an IANA identifier, e.g. Europe/Berlin. Recurring events
	// inherit it; day and month analytics buckets are computed in it.
	Timezone string
}

// Label categorizes events. Referenced, never owned, by events and
// recurring events.
type Label struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Color   string
}

// Event is a single concrete event occurrence.
//
// Start and End are stored in UTC; StartTimezone and EndTimezone keep the
// originating zone identifiers for display. Draft events may lack times,
// which is why both are pointers.
type Event struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	LabelID *uuid.UUID

	Name  string
	Start *time.Time
	End   *time.Time
	// Originating IANA timezone ids, kept separately for display.
	StartTimezone string
	EndTimezone   string

	// Draft marks an event that is missing required fields and is not yet
	// eligible for confirmation or completion.
	Draft     bool
	Completed bool
}

// Confirmed reports whether the event has left the draft state.
func (e *Event) Confirmed() bool { return !e.Draft }

// TimeOfDay is a wall-clock time without a date, used for the daily span of
// recurring events.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Valid reports whether the time of day is within 00:00-23:59.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// Before reports whether t is strictly earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// MinutesOfDay returns the number of minutes since midnight.
func (t TimeOfDay) MinutesOfDay() int { return t.Hour*60 + t.Minute }

// At anchors the time of day on the given calendar date in loc.
func (t TimeOfDay) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// RecurringEvent is a compact recurrence pattern that expands into virtual
// occurrences. It is never materialized into stored events; occurrences are
// regenerated on every query.
type RecurringEvent struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	LabelID *uuid.UUID

	Name      string
	StartTime TimeOfDay
	EndTime   TimeOfDay

	// StartDate is the first date the pattern is active. EndDate is the last
	// date, inclusive; nil means the series never ends.
	StartDate time.Time
	EndDate   *time.Time

	Rule    recurrence.Rule
	Summary string

	// SkipDays lists dates explicitly excluded from the pattern.
	SkipDays recurrence.DateSet

	Draft bool
	// Timezone is inherited from the owner at creation time.
	Timezone string
}

// Confirmed reports whether the recurring event has left the draft state.
func (r *RecurringEvent) Confirmed() bool { return !r.Draft }

// Location resolves the recurring event's timezone, falling back to UTC when
// unset or unknown.
func (r *RecurringEvent) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OccurrenceInterval materializes the [start, end) UTC interval of the
// occurrence on the given date.
func (r *RecurringEvent) OccurrenceInterval(date time.Time) (start, end time.Time) {
	loc := r.Location()
	return r.StartTime.At(date, loc).UTC(), r.EndTime.At(date, loc).UTC()
}

// DurationMinutes is the length of a single occurrence in minutes.
func (r *RecurringEvent) DurationMinutes() int64 {
	return int64(r.EndTime.MinutesOfDay() - r.StartTime.MinutesOfDay())
}
