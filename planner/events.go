package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/analytics"
	"github.com/mvk0633/libplanner/conflict"
	"github.com/mvk0633/libplanner/patch"
	"github.com/mvk0633/libplanner/storage"
)

// EventInput describes a single event to create.
type EventInput struct {
	OwnerID uuid.UUID
	LabelID *uuid.UUID
	Name    string

	Start         *time.Time
	End           *time.Time
	StartTimezone string
	EndTimezone   string

	// Draft creates the event without required-field validation and without
	// conflict checking; it cannot be completed until confirmed.
	Draft bool
	// AllowConflicts persists the event even when conflicts are found; the
	// report is still returned so the caller can resolve them.
	AllowConflicts bool
}

// EventPatch describes a partial update of a single event.
type EventPatch struct {
	Name    patch.Field[string]
	LabelID patch.Field[uuid.UUID]
	Start   patch.Field[time.Time]
	End     patch.Field[time.Time]
	// StartTimezone and EndTimezone update the originating zone ids; day and
	// month analytics buckets follow the start zone.
	StartTimezone patch.Field[string]
	EndTimezone   patch.Field[string]

	AllowConflicts bool
}

// CreateEvent validates and persists a single event, checking it against the
// owner's existing events and recurring events first. When conflicts are
// found and AllowConflicts is false, nothing is persisted and the error is a
// *conflict.Error carrying the report.
func (p *Planner) CreateEvent(input EventInput) (*storage.Event, conflict.Report, error) {
	event := &storage.Event{
		ID:            uuid.New(),
		OwnerID:       input.OwnerID,
		LabelID:       input.LabelID,
		Name:          input.Name,
		Start:         copyTime(input.Start),
		End:           copyTime(input.End),
		StartTimezone: input.StartTimezone,
		EndTimezone:   input.EndTimezone,
		Draft:         input.Draft,
	}

	if err := validateEvent(event); err != nil {
		return nil, nil, err
	}

	report, err := p.checkEventConflicts(event)
	if err != nil {
		return nil, nil, err
	}
	if !report.Empty() && !input.AllowConflicts {
		return nil, report, &conflict.Error{Code: conflict.CodeEventConflict, Report: report}
	}

	if err := p.store.PutEvent(event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist event: %w", err)
	}
	return event, report, nil
}

// UpdateEvent applies a partial update. If the event is completed and its
// label or time changes, the analytics totals are moved accordingly.
func (p *Planner) UpdateEvent(id uuid.UUID, update EventPatch) (*storage.Event, conflict.Report, error) {
	event, err := p.store.GetEvent(id)
	if err != nil {
		return nil, nil, err
	}
	before := *event

	event.Name = patch.Apply(update.Name, event.Name)
	event.LabelID = patch.ApplyPtr(update.LabelID, event.LabelID)
	event.Start = patch.ApplyPtr(update.Start, event.Start)
	event.End = patch.ApplyPtr(update.End, event.End)
	event.StartTimezone = patch.Apply(update.StartTimezone, event.StartTimezone)
	event.EndTimezone = patch.Apply(update.EndTimezone, event.EndTimezone)

	if err := validateEvent(event); err != nil {
		return nil, nil, err
	}
	if event.Completed && event.End == nil {
		return nil, nil, fmt.Errorf("%w: a completed event requires an end time", storage.ErrInvalidInput)
	}

	report, err := p.checkEventConflicts(event)
	if err != nil {
		return nil, nil, err
	}
	if !report.Empty() && !update.AllowConflicts {
		return nil, report, &conflict.Error{Code: conflict.CodeEventConflict, Report: report}
	}

	if err := p.applyEventChange(&before, event); err != nil {
		return nil, nil, err
	}
	if err := p.store.PutEvent(event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist event: %w", err)
	}
	return event, report, nil
}

// ConfirmEvent promotes a draft to a confirmed event, enforcing that all
// required fields are present.
func (p *Planner) ConfirmEvent(id uuid.UUID) (*storage.Event, error) {
	event, err := p.store.GetEvent(id)
	if err != nil {
		return nil, err
	}
	if !event.Draft {
		return event, nil
	}

	event.Draft = false
	if err := validateEvent(event); err != nil {
		return nil, err
	}
	if err := p.store.PutEvent(event); err != nil {
		return nil, fmt.Errorf("failed to persist event: %w", err)
	}
	return event, nil
}

// SetEventCompleted toggles completion and adjusts the owner's time buckets.
// Only confirmed events with a concrete end time can be completed.
func (p *Planner) SetEventCompleted(id uuid.UUID, completed bool) (*storage.Event, error) {
	event, err := p.store.GetEvent(id)
	if err != nil {
		return nil, err
	}
	if event.Completed == completed {
		return event, nil
	}
	if completed {
		if event.Draft {
			return nil, fmt.Errorf("%w: only confirmed events may be completed", storage.ErrInvalidInput)
		}
		if event.Start == nil || event.End == nil {
			return nil, fmt.Errorf("%w: completion requires concrete start and end times", storage.ErrInvalidInput)
		}
	}

	before := *event
	event.Completed = completed
	if err := p.applyEventChange(&before, event); err != nil {
		return nil, err
	}
	if err := p.store.PutEvent(event); err != nil {
		return nil, fmt.Errorf("failed to persist event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event; a completed event's contribution is
// subtracted from the bucket totals first.
func (p *Planner) DeleteEvent(id uuid.UUID) error {
	event, err := p.store.GetEvent(id)
	if err != nil {
		return err
	}

	after := *event
	after.Completed = false
	if err := p.applyEventChange(event, &after); err != nil {
		return err
	}
	return p.store.DeleteEvent(id)
}

// checkEventConflicts runs the detector against the owner's events around
// the candidate's interval. Drafts and time-less events produce an empty
// report.
func (p *Planner) checkEventConflicts(event *storage.Event) (conflict.Report, error) {
	if event.Draft || event.Start == nil || event.End == nil {
		return conflict.Report{}, nil
	}

	windowStart := event.Start.UTC().AddDate(0, 0, -1)
	windowEnd := event.End.UTC().AddDate(0, 0, 1)

	events, err := p.store.FindEventsByOwnerAndRange(event.OwnerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	recurringEvents, err := p.store.FindRecurringByOwnerAndRange(event.OwnerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring events: %w", err)
	}
	return p.detector.FindEventConflicts(event, events, recurringEvents)
}

// applyEventChange feeds the before/after pair into analytics. A side only
// contributes when the event was completed on that side and carries a label
// and times.
func (p *Planner) applyEventChange(before, after *storage.Event) error {
	if p.aggregator == nil {
		return nil
	}

	ctx := analytics.ChangeContext{
		OwnerID:     after.OwnerID,
		NewTimezone: after.StartTimezone,
	}
	if contributes(before) {
		ctx.WasCompleted = true
		ctx.OldLabelID = before.LabelID
		ctx.OldStart = before.Start
		ctx.OldDurationMinutes = durationMinutes(before)
		ctx.OldTimezone = before.StartTimezone
	}
	if contributes(after) {
		ctx.IsNowCompleted = true
		ctx.NewLabelID = after.LabelID
		ctx.NewStart = after.Start
		ctx.NewDurationMinutes = durationMinutes(after)
	}
	if !ctx.WasCompleted && !ctx.IsNowCompleted {
		return nil
	}
	return p.aggregator.Apply(ctx)
}

func contributes(event *storage.Event) bool {
	return event.Completed && !event.Draft &&
		event.LabelID != nil && event.Start != nil && event.End != nil
}

func durationMinutes(event *storage.Event) int64 {
	return int64(event.End.Sub(*event.Start) / time.Minute)
}

// validateEvent enforces the structural invariants of a single event.
// Drafts may lack fields; confirmed events may not.
func validateEvent(event *storage.Event) error {
	if event.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", storage.ErrInvalidInput)
	}
	if event.Start != nil && event.End != nil && !event.End.After(*event.Start) {
		return fmt.Errorf("%w: event end must be after its start", storage.ErrInvalidInput)
	}
	if event.Draft {
		return nil
	}
	if event.Name == "" {
		return fmt.Errorf("%w: event name is required", storage.ErrInvalidInput)
	}
	if event.Start == nil || event.End == nil {
		return fmt.Errorf("%w: a confirmed event requires start and end times", storage.ErrInvalidInput)
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
