package recurrence

import (
	"sort"
	"time"
)

// DateOf truncates t to its calendar date, normalized to midnight UTC. All
// occurrence dates and skip days are stored in this form.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateSet is a set of calendar dates (midnight UTC). Used for skip days.
type DateSet map[time.Time]struct{}

// NewDateSet builds a set from the given dates, normalizing each to
// midnight UTC.
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts the date. Adding an existing date is a no-op, which makes
// repeated conflict resolutions idempotent.
func (s DateSet) Add(d time.Time) {
	s[DateOf(d)] = struct{}{}
}

// Remove deletes the date if present.
func (s DateSet) Remove(d time.Time) {
	delete(s, DateOf(d))
}

// Contains reports whether the date is in the set.
func (s DateSet) Contains(d time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[DateOf(d)]
	return ok
}

// Dates returns the members in chronological order.
func (s DateSet) Dates() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Clone returns an independent copy of the set.
func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}
