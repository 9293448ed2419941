package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

// VirtualOccurrence is a display-only materialization of one recurring
// occurrence. It has no identity of its own and is regenerated on every
// query, never persisted.
type VirtualOccurrence struct {
	RecurringEventID uuid.UUID
	LabelID          *uuid.UUID
	Name             string
	// Date is the occurrence's calendar date, midnight UTC.
	Date time.Time
	// Start and End are the concrete UTC interval of this occurrence.
	Start time.Time
	End   time.Time
}

// ViewEntry is one row of a calendar view: either a stored event or a
// virtual occurrence, never both.
type ViewEntry struct {
	Start time.Time
	End   time.Time

	Event      *storage.Event
	Occurrence *VirtualOccurrence
}

// CalendarView merges the owner's stored events with the expanded virtual
// occurrences of their recurring events over [windowStart, windowEnd],
// sorted chronologically. Draft recurring events are not expanded.
func (p *Planner) CalendarView(ownerID uuid.UUID, windowStart, windowEnd time.Time) ([]ViewEntry, error) {
	entries := []ViewEntry{}

	events, err := p.store.FindEventsByOwnerAndRange(ownerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	for i := range events {
		event := events[i]
		entries = append(entries, ViewEntry{
			Start: event.Start.UTC(),
			End:   event.End.UTC(),
			Event: &event,
		})
	}

	recurringEvents, err := p.store.FindRecurringByOwnerAndRange(ownerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring events: %w", err)
	}
	for i := range recurringEvents {
		re := recurringEvents[i]
		if re.Draft {
			continue
		}
		occurrences, err := p.Occurrences(&re, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		for _, occ := range occurrences {
			entries = append(entries, ViewEntry{Start: occ.Start, End: occ.End, Occurrence: &occ})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Start.Equal(entries[j].Start) {
			return entries[i].Start.Before(entries[j].Start)
		}
		return entries[i].End.Before(entries[j].End)
	})
	return entries, nil
}

// Occurrences expands one recurring event into virtual occurrences within
// the window.
func (p *Planner) Occurrences(re *storage.RecurringEvent, windowStart, windowEnd time.Time) ([]VirtualOccurrence, error) {
	series := recurrence.Series{
		Rule:      re.Rule,
		StartDate: re.StartDate,
		EndDate:   re.EndDate,
		SkipDays:  re.SkipDays,
	}
	dates, err := p.generator.OccurrencesInRange(series, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to expand recurring event %s: %w", re.ID, err)
	}

	occurrences := make([]VirtualOccurrence, 0, len(dates))
	for _, date := range dates {
		start, end := re.OccurrenceInterval(date)
		occurrences = append(occurrences, VirtualOccurrence{
			RecurringEventID: re.ID,
			LabelID:          re.LabelID,
			Name:             re.Name,
			Date:             date,
			Start:            start,
			End:              end,
		})
	}
	return occurrences, nil
}
