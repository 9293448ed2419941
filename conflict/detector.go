// Package conflict detects scheduling overlaps between events and recurring
// events and applies per-date resolutions as skip-day exceptions.
package conflict

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

const (
	// CodeEventConflict marks a conflict involving a single-event candidate.
	CodeEventConflict = "EVENT_CONFLICT"
	// CodeRecurringEventConflict marks a conflict involving a recurring candidate.
	CodeRecurringEventConflict = "RECURRING_EVENT_CONFLICT"
)

// Error is a conflict report promoted to a hard failure, for callers that
// refuse to persist a conflicting event.
type Error struct {
	Code   string
	Report Report
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: conflicts on %d date(s)", e.Code, len(e.Report))
}

// IDSet holds the ids conflicting on one date. Order carries no meaning.
type IDSet map[uuid.UUID]struct{}

// IDs returns the members sorted by string form, for deterministic output.
func (s IDSet) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Report maps each conflicting date (midnight UTC) to the set of event and
// recurring-event ids that clash with the candidate on that date. An empty
// report means no conflicts; it is never nil.
type Report map[time.Time]IDSet

// Add records a conflict with id on the given date.
func (r Report) Add(date time.Time, id uuid.UUID) {
	day := recurrence.DateOf(date)
	set, ok := r[day]
	if !ok {
		set = make(IDSet)
		r[day] = set
	}
	set[id] = struct{}{}
}

// Empty reports whether no conflicts were found.
func (r Report) Empty() bool { return len(r) == 0 }

// Dates returns the conflicting dates in chronological order.
func (r Report) Dates() []time.Time {
	out := make([]time.Time, 0, len(r))
	for d := range r {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// DefaultHorizon bounds conflict expansion when both series are open-ended.
var DefaultHorizon = 730 * 24 * time.Hour // 2 years

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	// Generator used for recurrence expansion. Nil means a fresh default one.
	Generator *recurrence.Generator
	// Horizon caps the comparison window for open-ended series. Zero means
	// DefaultHorizon.
	Horizon time.Duration
	// Logger receives debug output. Nil means discard.
	Logger *slog.Logger
}

// Detector finds time-range overlaps between a candidate event or recurring
// pattern and the existing events of the same owner. Stateless; safe for
// concurrent use.
type Detector struct {
	generator *recurrence.Generator
	horizon   time.Duration
	logger    *slog.Logger
}

// NewDetector creates a detector from the given configuration.
func NewDetector(config DetectorConfig) *Detector {
	if config.Generator == nil {
		config.Generator = recurrence.NewGenerator()
	}
	if config.Horizon <= 0 {
		config.Horizon = DefaultHorizon
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Detector{
		generator: config.Generator,
		horizon:   config.Horizon,
		logger:    config.Logger,
	}
}

// span is one concrete [start, end) UTC interval owned by an event id.
type span struct {
	id    uuid.UUID
	start time.Time
	end   time.Time
}

// overlaps applies half-open interval semantics: touching endpoints do not
// conflict.
func (s span) overlaps(other span) bool {
	return s.start.Before(other.end) && other.start.Before(s.end)
}

// days returns the calendar dates the span touches.
func (s span) days() []time.Time {
	if !s.end.After(s.start) {
		return nil
	}
	first := recurrence.DateOf(s.start)
	last := recurrence.DateOf(s.end.Add(-time.Nanosecond))
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// dayIndex buckets spans by every calendar date they touch, so each
// candidate occurrence only compares against same-day intervals.
type dayIndex map[time.Time][]span

func (ix dayIndex) add(s span) {
	for _, d := range s.days() {
		ix[d] = append(ix[d], s)
	}
}

func (ix dayIndex) conflictsWith(s span) IDSet {
	hits := make(IDSet)
	for _, d := range s.days() {
		for _, other := range ix[d] {
			if other.id != s.id && s.overlaps(other) {
				hits[other.id] = struct{}{}
			}
		}
	}
	return hits
}

// FindEventConflicts compares a single candidate event against the owner's
// existing events and recurring events. Draft entries on either side never
// conflict. The returned report is keyed by the candidate's start date.
func (d *Detector) FindEventConflicts(candidate *storage.Event, events []storage.Event, recurringEvents []storage.RecurringEvent) (Report, error) {
	report := make(Report)
	if candidate.Draft || candidate.Start == nil || candidate.End == nil {
		return report, nil
	}

	cand := span{id: candidate.ID, start: candidate.Start.UTC(), end: candidate.End.UTC()}
	windowStart := recurrence.DateOf(cand.start).AddDate(0, 0, -1)
	windowEnd := recurrence.DateOf(cand.end).AddDate(0, 0, 1)

	index, err := d.indexExisting(events, recurringEvents, candidate.ID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	date := recurrence.DateOf(cand.start)
	for id := range index.conflictsWith(cand) {
		report.Add(date, id)
	}
	return report, nil
}

// FindRecurringConflicts expands the candidate pattern within the window and
// cross-compares each occurrence against the owner's existing events and
// expanded recurring events. The window is capped at the detector's horizon
// to keep open-ended cross-comparison bounded.
func (d *Detector) FindRecurringConflicts(candidate *storage.RecurringEvent, events []storage.Event, recurringEvents []storage.RecurringEvent, windowStart, windowEnd time.Time) (Report, error) {
	report := make(Report)
	if candidate.Draft {
		return report, nil
	}

	lower := recurrence.DateOf(windowStart)
	upper := recurrence.DateOf(windowEnd)
	if capped := lower.Add(d.horizon); upper.After(capped) {
		d.logger.Debug("capping conflict window at horizon",
			"candidate", candidate.ID, "horizon", d.horizon)
		upper = capped
	}

	occurrences, err := d.generator.OccurrencesInRange(seriesOf(candidate), lower, upper)
	if err != nil {
		return nil, fmt.Errorf("failed to expand candidate %s: %w", candidate.ID, err)
	}

	index, err := d.indexExisting(events, recurringEvents, candidate.ID, lower, upper)
	if err != nil {
		return nil, err
	}

	for _, date := range occurrences {
		start, end := candidate.OccurrenceInterval(date)
		hits := index.conflictsWith(span{id: candidate.ID, start: start, end: end})
		for id := range hits {
			report.Add(date, id)
		}
	}
	return report, nil
}

// indexExisting expands the existing events of the owner into a per-day span
// index over [windowStart, windowEnd]. The candidate's own id is excluded so
// updates do not conflict with themselves.
func (d *Detector) indexExisting(events []storage.Event, recurringEvents []storage.RecurringEvent, excludeID uuid.UUID, windowStart, windowEnd time.Time) (dayIndex, error) {
	index := make(dayIndex)

	for i := range events {
		ev := &events[i]
		if ev.ID == excludeID || ev.Draft || ev.Start == nil || ev.End == nil {
			continue
		}
		index.add(span{id: ev.ID, start: ev.Start.UTC(), end: ev.End.UTC()})
	}

	for i := range recurringEvents {
		re := &recurringEvents[i]
		if re.ID == excludeID || re.Draft {
			continue
		}
		dates, err := d.generator.OccurrencesInRange(seriesOf(re), windowStart, windowEnd)
		if err != nil {
			return nil, fmt.Errorf("failed to expand recurring event %s: %w", re.ID, err)
		}
		for _, date := range dates {
			start, end := re.OccurrenceInterval(date)
			index.add(span{id: re.ID, start: start, end: end})
		}
	}
	return index, nil
}

func seriesOf(re *storage.RecurringEvent) recurrence.Series {
	return recurrence.Series{
		Rule:      re.Rule,
		StartDate: re.StartDate,
		EndDate:   re.EndDate,
		SkipDays:  re.SkipDays,
	}
}
