package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidWindow indicates the requested window end precedes its start.
var ErrInvalidWindow = errors.New("recurrence: window end before window start")

// Series describes one recurring pattern to expand: the validated rule, the
// first active date, an optional last active date (nil = the series never
// ends) and the dates explicitly skipped.
type Series struct {
	Rule      Rule
	StartDate time.Time
	EndDate   *time.Time
	SkipDays  DateSet
}

// ExpansionOptions bounds how much work a single expansion may do.
type ExpansionOptions struct {
	// MaxOccurrences caps the number of dates returned per call (0 = unlimited).
	MaxOccurrences int
	// MaxTimeSpan caps the effective window length (0 = unlimited).
	MaxTimeSpan time.Duration
}

// DefaultExpansionOptions provides sensible defaults for expansion.
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
	MaxTimeSpan:    2 * 365 * 24 * time.Hour,
}

// Generator expands recurrence series into concrete occurrence dates. It is
// stateless apart from an optional expansion cache, so a single instance may
// be shared by concurrent readers.
type Generator struct {
	cache  *ExpansionCache
	config GeneratorConfig
}

// NewGenerator creates a generator with DefaultGeneratorConfig.
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(DefaultGeneratorConfig)
}

// NewGeneratorWithConfig creates a generator with custom configuration.
func NewGeneratorWithConfig(config GeneratorConfig) *Generator {
	var cache *ExpansionCache
	if config.CacheEnabled {
		cache = NewExpansionCache(config.CacheConfig)
	}
	return &Generator{cache: cache, config: config}
}

// OccurrencesInRange produces every occurrence date of the series that falls
// within [windowStart, windowEnd], both inclusive, excluding skip days.
// Dates are returned in chronological order, normalized to midnight UTC.
//
// The series may be open-ended; expansion never materializes more than the
// requested window allows, bounded further by the generator's
// ExpansionOptions. A window disjoint from the series' effective range
// yields an empty slice.
func (g *Generator) OccurrencesInRange(series Series, windowStart, windowEnd time.Time) ([]time.Time, error) {
	lower, upper, empty, err := g.effectiveWindow(series, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	if empty {
		return []time.Time{}, nil
	}

	if g.cache != nil {
		if cached, ok := g.cache.Get(series, lower, upper); ok {
			return append([]time.Time(nil), cached...), nil
		}
	}

	r, err := newRRule(series)
	if err != nil {
		return nil, err
	}

	// rrule-go's Between is inclusive on both ends when inc is true.
	candidates := r.Between(lower, upper, true)

	max := g.config.Expansion.MaxOccurrences
	occurrences := make([]time.Time, 0, len(candidates))
	for _, d := range candidates {
		if series.SkipDays.Contains(d) {
			continue
		}
		occurrences = append(occurrences, DateOf(d))
		if max > 0 && len(occurrences) >= max {
			break
		}
	}

	if g.cache != nil {
		g.cache.Set(series, lower, upper, occurrences)
	}
	return append([]time.Time(nil), occurrences...), nil
}

// Iterator returns a lazy, restartable occurrence stream over the window.
// Each call builds a fresh iterator; no state is retained between calls.
func (g *Generator) Iterator(series Series, windowStart, windowEnd time.Time) (*Iterator, error) {
	lower, upper, empty, err := g.effectiveWindow(series, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	if empty {
		return &Iterator{done: true}, nil
	}

	r, err := newRRule(series)
	if err != nil {
		return nil, err
	}

	remaining := g.config.Expansion.MaxOccurrences
	if remaining <= 0 {
		remaining = -1
	}
	return &Iterator{
		next:      r.Iterator(),
		skip:      series.SkipDays,
		lower:     lower,
		upper:     upper,
		remaining: remaining,
	}, nil
}

// effectiveWindow intersects the requested window with the series' active
// range and applies the MaxTimeSpan cap. empty is true when the intersection
// is void.
func (g *Generator) effectiveWindow(series Series, windowStart, windowEnd time.Time) (lower, upper time.Time, empty bool, err error) {
	lower = DateOf(windowStart)
	upper = DateOf(windowEnd)
	if upper.Before(lower) {
		return lower, upper, false, ErrInvalidWindow
	}

	if start := DateOf(series.StartDate); start.After(lower) {
		lower = start
	}
	if series.EndDate != nil {
		if end := DateOf(*series.EndDate); end.Before(upper) {
			upper = end
		}
	}
	if upper.Before(lower) {
		return lower, upper, true, nil
	}

	if span := g.config.Expansion.MaxTimeSpan; span > 0 && upper.Sub(lower) > span {
		upper = lower.Add(span)
	}
	return lower, upper, false, nil
}

// newRRule translates a Series into a teambition/rrule-go rule anchored at
// the series start date.
func newRRule(series Series) (*rrule.RRule, error) {
	opt, err := BuildROption(series.Rule, series.StartDate, series.EndDate)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}
	return r, nil
}

// BuildROption maps a validated Rule onto an rrule.ROption. Exposed so that
// calendar export can reuse the same translation.
func BuildROption(rule Rule, startDate time.Time, endDate *time.Time) (rrule.ROption, error) {
	opt := rrule.ROption{
		Dtstart:  DateOf(startDate),
		Interval: rule.Interval,
		Wkst:     rrule.MO,
	}
	if endDate != nil {
		// UNTIL is inclusive, matching the series' inclusive end date.
		opt.Until = DateOf(*endDate)
	}

	switch rule.Frequency {
	case FreqDaily:
		opt.Freq = rrule.DAILY
		// An explicit weekday set on a daily rule acts as a filter.
		for _, d := range rule.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekday(d))
		}
	case FreqWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range rule.DaysOfWeek {
			opt.Byweekday = append(opt.Byweekday, rruleWeekday(d))
		}
	case FreqMonthly:
		opt.Freq = rrule.MONTHLY
		for _, d := range rule.DaysOfWeek {
			// Nth has a pointer receiver, so the weekday needs a home first.
			wd := rruleWeekday(d)
			opt.Byweekday = append(opt.Byweekday, wd.Nth(rule.MonthlyOrdinal))
		}
	default:
		return rrule.ROption{}, invalid(CodeMissingFrequency, "recurrence frequency is required")
	}
	return opt, nil
}

func rruleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}

// Iterator streams occurrence dates lazily. It terminates as soon as the
// underlying series passes the window end, regardless of whether the series
// itself is infinite.
type Iterator struct {
	next      rrule.Next
	skip      DateSet
	lower     time.Time
	upper     time.Time
	remaining int // -1 = unlimited
	done      bool
}

// Next returns the next occurrence date, or false when the window is
// exhausted.
func (it *Iterator) Next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	for {
		if it.remaining == 0 {
			it.done = true
			return time.Time{}, false
		}
		d, ok := it.next()
		if !ok || d.After(it.upper) {
			it.done = true
			return time.Time{}, false
		}
		if d.Before(it.lower) || it.skip.Contains(d) {
			continue
		}
		if it.remaining > 0 {
			it.remaining--
		}
		return DateOf(d), true
	}
}
