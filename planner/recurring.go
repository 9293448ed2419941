package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/conflict"
	"github.com/mvk0633/libplanner/patch"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

// RecurringEventInput describes a recurring event to create.
type RecurringEventInput struct {
	OwnerID uuid.UUID
	LabelID *uuid.UUID
	Name    string

	StartTime storage.TimeOfDay
	EndTime   storage.TimeOfDay

	StartDate time.Time
	// EndDate is the last active date, inclusive. Nil means the series never
	// ends.
	EndDate *time.Time

	Rule     recurrence.RuleInput
	SkipDays []time.Time

	// Timezone is the owner's IANA zone; occurrences are materialized in it.
	Timezone string

	Draft          bool
	AllowConflicts bool
}

// RecurringEventPatch describes a partial update of a recurring event.
// Setting Rule replaces the whole rule value, which is revalidated; the
// summary is recomputed on every update. Clearing EndDate makes the series
// open-ended.
type RecurringEventPatch struct {
	Name      patch.Field[string]
	LabelID   patch.Field[uuid.UUID]
	StartTime patch.Field[storage.TimeOfDay]
	EndTime   patch.Field[storage.TimeOfDay]
	StartDate patch.Field[time.Time]
	EndDate   patch.Field[time.Time]
	Rule      patch.Field[recurrence.RuleInput]
	Draft     patch.Field[bool]

	AllowConflicts bool
}

// CreateRecurringEvent validates the rule and invariants, runs conflict
// detection over the pattern's effective range (bounded by the planner's
// horizon when open-ended) and persists the recurring event. When conflicts
// are found and AllowConflicts is false, nothing is persisted and the error
// is a *conflict.Error; with AllowConflicts the event is stored and the
// caller is expected to resolve the reported dates via ResolveConflicts.
func (p *Planner) CreateRecurringEvent(input RecurringEventInput) (*storage.RecurringEvent, conflict.Report, error) {
	event := &storage.RecurringEvent{
		ID:        uuid.New(),
		OwnerID:   input.OwnerID,
		LabelID:   input.LabelID,
		Name:      input.Name,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		StartDate: recurrence.DateOf(input.StartDate),
		SkipDays:  recurrence.NewDateSet(input.SkipDays...),
		Draft:     input.Draft,
		Timezone:  input.Timezone,
	}
	if input.EndDate != nil {
		end := recurrence.DateOf(*input.EndDate)
		event.EndDate = &end
	}

	// Drafts may omit the rule entirely; anything provided is still
	// validated so a draft cannot hold a malformed rule.
	if !event.Draft || input.Rule.Frequency != "" {
		rule, err := recurrence.Validate(input.Rule)
		if err != nil {
			return nil, nil, err
		}
		event.Rule = rule
		event.Summary = recurrence.BuildSummary(rule, event.StartDate, event.EndDate)
	}

	if err := validateRecurringEvent(event); err != nil {
		return nil, nil, err
	}

	report, err := p.checkRecurringConflicts(event)
	if err != nil {
		return nil, nil, err
	}
	if !report.Empty() && !input.AllowConflicts {
		return nil, report, &conflict.Error{Code: conflict.CodeRecurringEventConflict, Report: report}
	}

	if err := p.store.PutRecurringEvent(event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist recurring event: %w", err)
	}
	return event, report, nil
}

// UpdateRecurringEvent applies a partial update, revalidating the rule and
// invariants and recomputing the summary.
func (p *Planner) UpdateRecurringEvent(id uuid.UUID, update RecurringEventPatch) (*storage.RecurringEvent, conflict.Report, error) {
	event, err := p.store.GetRecurringEvent(id)
	if err != nil {
		return nil, nil, err
	}

	event.Name = patch.Apply(update.Name, event.Name)
	event.LabelID = patch.ApplyPtr(update.LabelID, event.LabelID)
	event.StartTime = patch.Apply(update.StartTime, event.StartTime)
	event.EndTime = patch.Apply(update.EndTime, event.EndTime)
	event.StartDate = recurrence.DateOf(patch.Apply(update.StartDate, event.StartDate))
	event.Draft = patch.Apply(update.Draft, event.Draft)

	if end := patch.ApplyPtr(update.EndDate, event.EndDate); end != nil {
		normalized := recurrence.DateOf(*end)
		event.EndDate = &normalized
	} else {
		event.EndDate = nil
	}

	if ruleInput, ok := update.Rule.Value(); ok {
		rule, err := recurrence.Validate(ruleInput)
		if err != nil {
			return nil, nil, err
		}
		event.Rule = rule
	}
	// A rule-less draft has nothing to summarize.
	if event.Rule.Frequency != "" {
		event.Summary = recurrence.BuildSummary(event.Rule, event.StartDate, event.EndDate)
	}

	if err := validateRecurringEvent(event); err != nil {
		return nil, nil, err
	}

	report, err := p.checkRecurringConflicts(event)
	if err != nil {
		return nil, nil, err
	}
	if !report.Empty() && !update.AllowConflicts {
		return nil, report, &conflict.Error{Code: conflict.CodeRecurringEventConflict, Report: report}
	}

	if err := p.store.PutRecurringEvent(event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist recurring event: %w", err)
	}
	return event, report, nil
}

// ConfirmRecurringEvent promotes a draft recurring event, enforcing that the
// rule and all required fields are present.
func (p *Planner) ConfirmRecurringEvent(id uuid.UUID) (*storage.RecurringEvent, error) {
	event, err := p.store.GetRecurringEvent(id)
	if err != nil {
		return nil, err
	}
	if !event.Draft {
		return event, nil
	}

	event.Draft = false
	if err := validateRecurringEvent(event); err != nil {
		return nil, err
	}
	if event.Summary == "" {
		event.Summary = recurrence.BuildSummary(event.Rule, event.StartDate, event.EndDate)
	}
	if err := p.store.PutRecurringEvent(event); err != nil {
		return nil, fmt.Errorf("failed to persist recurring event: %w", err)
	}
	return event, nil
}

// DeleteRecurringEvent removes a recurring event and its virtual
// occurrences (which, not being persisted, simply stop being generated).
func (p *Planner) DeleteRecurringEvent(id uuid.UUID) error {
	return p.store.DeleteRecurringEvent(id)
}

// CheckRecurringConflicts reports conflicts the given recurring event would
// have within its effective range, without persisting anything.
func (p *Planner) CheckRecurringConflicts(event *storage.RecurringEvent) (conflict.Report, error) {
	return p.checkRecurringConflicts(event)
}

// ResolveConflicts applies per-date resolutions for a stored recurring
// event: on each date the losing side gains a skip day. Idempotent.
func (p *Planner) ResolveConflicts(recurringID uuid.UUID, resolutions conflict.Resolution) (*storage.RecurringEvent, error) {
	event, err := p.store.GetRecurringEvent(recurringID)
	if err != nil {
		return nil, err
	}
	if err := p.resolver.ApplyResolutions(resolutions, recurringID, event); err != nil {
		return nil, err
	}
	if err := p.store.PutRecurringEvent(event); err != nil {
		return nil, fmt.Errorf("failed to persist recurring event: %w", err)
	}
	return event, nil
}

// AddSkipDay excludes a single future occurrence date from the pattern.
func (p *Planner) AddSkipDay(recurringID uuid.UUID, date time.Time) (*storage.RecurringEvent, error) {
	return p.mutateSkipDay(recurringID, date, conflict.CodeInvalidSkipDayAddition, func(event *storage.RecurringEvent, d time.Time) {
		event.SkipDays.Add(d)
	})
}

// RemoveSkipDay restores a previously skipped future occurrence date.
func (p *Planner) RemoveSkipDay(recurringID uuid.UUID, date time.Time) (*storage.RecurringEvent, error) {
	return p.mutateSkipDay(recurringID, date, conflict.CodeInvalidSkipDayRemoval, func(event *storage.RecurringEvent, d time.Time) {
		event.SkipDays.Remove(d)
	})
}

func (p *Planner) mutateSkipDay(recurringID uuid.UUID, date time.Time, code string, mutate func(*storage.RecurringEvent, time.Time)) (*storage.RecurringEvent, error) {
	event, err := p.store.GetRecurringEvent(recurringID)
	if err != nil {
		return nil, err
	}

	today := conflict.Today(p.clock, event.Location())
	if err := conflict.ValidateSkipDayMutation(date, today, code); err != nil {
		return nil, err
	}

	day := recurrence.DateOf(date)
	if day.Before(event.StartDate) {
		return nil, fmt.Errorf("%w: %s is before the series start", storage.ErrInvalidInput, day.Format("2006-01-02"))
	}
	if event.EndDate != nil && day.After(*event.EndDate) {
		return nil, fmt.Errorf("%w: %s is after the series end", storage.ErrInvalidInput, day.Format("2006-01-02"))
	}

	if event.SkipDays == nil {
		event.SkipDays = recurrence.NewDateSet()
	}
	mutate(event, day)
	if err := p.store.PutRecurringEvent(event); err != nil {
		return nil, fmt.Errorf("failed to persist recurring event: %w", err)
	}
	return event, nil
}

// checkRecurringConflicts expands and compares the pattern against the
// owner's existing events over its effective range.
func (p *Planner) checkRecurringConflicts(event *storage.RecurringEvent) (conflict.Report, error) {
	if event.Draft {
		return conflict.Report{}, nil
	}

	windowStart := event.StartDate
	windowEnd := windowStart.Add(p.horizon)
	if event.EndDate != nil && event.EndDate.Before(windowEnd) {
		windowEnd = *event.EndDate
	}

	events, err := p.store.FindEventsByOwnerAndRange(event.OwnerID, windowStart, windowEnd.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	recurringEvents, err := p.store.FindRecurringByOwnerAndRange(event.OwnerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring events: %w", err)
	}
	return p.detector.FindRecurringConflicts(event, events, recurringEvents, windowStart, windowEnd)
}

// validateRecurringEvent enforces the structural invariants of a recurring
// event. Drafts may lack fields; confirmed events may not.
func validateRecurringEvent(event *storage.RecurringEvent) error {
	if event.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner is required", storage.ErrInvalidInput)
	}
	if event.EndDate != nil && event.EndDate.Before(event.StartDate) {
		return fmt.Errorf("%w: series end date precedes its start date", storage.ErrInvalidInput)
	}
	for _, day := range event.SkipDays.Dates() {
		if day.Before(event.StartDate) || (event.EndDate != nil && day.After(*event.EndDate)) {
			return fmt.Errorf("%w: skip day %s is outside the series range", storage.ErrInvalidInput, day.Format("2006-01-02"))
		}
	}
	if event.Draft {
		return nil
	}
	if event.Name == "" {
		return fmt.Errorf("%w: recurring event name is required", storage.ErrInvalidInput)
	}
	if !event.StartTime.Valid() || !event.EndTime.Valid() {
		return fmt.Errorf("%w: start and end times of day are required", storage.ErrInvalidInput)
	}
	if !event.StartTime.Before(event.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", storage.ErrInvalidInput)
	}
	if event.StartDate.IsZero() {
		return fmt.Errorf("%w: series start date is required", storage.ErrInvalidInput)
	}
	if event.Rule.Frequency == "" {
		return &recurrence.ValidationError{
			Code:    recurrence.CodeMissingFrequency,
			Message: "recurrence frequency is required",
		}
	}
	return nil
}
