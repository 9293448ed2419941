// Package ics renders planner events and recurring events to iCalendar for
// interchange with calendar clients. Export is display-only: virtual
// occurrences are materialized into plain VEVENTs, and recurring patterns
// into VEVENTs carrying RRULE and EXDATE.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/mvk0633/libplanner/planner"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

const productID = "-//libplanner//libplanner//EN"

// Exporter builds iCalendar documents. The clock stamps DTSTAMP; nil means
// the system clock.
type Exporter struct {
	clock storage.Clock
}

// NewExporter creates an exporter.
func NewExporter(clock storage.Clock) *Exporter {
	if clock == nil {
		clock = storage.SystemClock{}
	}
	return &Exporter{clock: clock}
}

// Calendar renders confirmed events and recurring events into a single
// VCALENDAR. Drafts are omitted.
func (x *Exporter) Calendar(events []storage.Event, recurringEvents []storage.RecurringEvent) (*ical.Calendar, error) {
	cal := newCalendar()
	stamp := x.clock.Now().UTC()

	for i := range events {
		event := &events[i]
		if event.Draft || event.Start == nil || event.End == nil {
			continue
		}
		cal.Children = append(cal.Children, eventComponent(event, stamp))
	}
	for i := range recurringEvents {
		re := &recurringEvents[i]
		if re.Draft {
			continue
		}
		comp, err := recurringComponent(re, stamp)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, nil
}

// Occurrences renders virtual occurrences into plain VEVENTs, one per
// occurrence.
func (x *Exporter) Occurrences(occurrences []planner.VirtualOccurrence) *ical.Calendar {
	cal := newCalendar()
	stamp := x.clock.Now().UTC()

	for _, occ := range occurrences {
		event := ical.NewEvent()
		// The occurrence has no identity of its own; derive a stable UID
		// from the owning series and the date.
		uid := fmt.Sprintf("%s-%s", occ.RecurringEventID, occ.Date.Format("20060102"))
		event.Props.SetText(ical.PropUID, uid)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetText(ical.PropSummary, occ.Name)
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.Start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, occ.End)
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// Encode writes the calendar in iCalendar wire format.
func Encode(w io.Writer, cal *ical.Calendar) error {
	return ical.NewEncoder(w).Encode(cal)
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	return cal
}

func eventComponent(event *storage.Event, stamp time.Time) *ical.Component {
	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, event.ID.String())
	e.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	e.Props.SetText(ical.PropSummary, event.Name)
	e.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
	e.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
	e.Props.SetText(ical.PropStatus, "CONFIRMED")
	return e.Component
}

func recurringComponent(re *storage.RecurringEvent, stamp time.Time) (*ical.Component, error) {
	loc := re.Location()
	firstStart := re.StartTime.At(re.StartDate, loc).UTC()
	firstEnd := re.EndTime.At(re.StartDate, loc).UTC()

	e := ical.NewEvent()
	e.Props.SetText(ical.PropUID, re.ID.String())
	e.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
	e.Props.SetText(ical.PropSummary, re.Name)
	if re.Summary != "" {
		e.Props.SetText(ical.PropDescription, re.Summary)
	}
	e.Props.SetDateTime(ical.PropDateTimeStart, firstStart)
	e.Props.SetDateTime(ical.PropDateTimeEnd, firstEnd)

	// UNTIL bounds occurrence starts inclusively, so it must carry the
	// occurrence's start time-of-day, not midnight of the end date.
	var until *time.Time
	if re.EndDate != nil {
		u := re.StartTime.At(*re.EndDate, loc).UTC()
		until = &u
	}
	value, err := RRuleValue(re.Rule, until)
	if err != nil {
		return nil, fmt.Errorf("failed to render rule for %s: %w", re.ID, err)
	}
	rruleProp := ical.NewProp(ical.PropRecurrenceRule)
	rruleProp.Value = value
	e.Props.Set(rruleProp)

	if skipDays := re.SkipDays.Dates(); len(skipDays) > 0 {
		dates := make([]string, 0, len(skipDays))
		for _, d := range skipDays {
			dates = append(dates, d.Format("20060102"))
		}
		exdateProp := ical.NewProp(ical.PropExceptionDates)
		exdateProp.Params.Set(ical.ParamValue, "DATE")
		exdateProp.Value = strings.Join(dates, ",")
		e.Props.Set(exdateProp)
	}
	return e.Component, nil
}

// RRuleValue renders a validated rule as an RRULE property value, e.g.
// "FREQ=MONTHLY;BYDAY=2TU;UNTIL=20251231T090000Z". until is the UTC instant
// of the last occurrence's start; nil means the series never ends.
func RRuleValue(rule recurrence.Rule, until *time.Time) (string, error) {
	parts := []string{"FREQ=" + string(rule.Frequency)}
	if rule.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", rule.Interval))
	}

	switch rule.Frequency {
	case recurrence.FreqDaily, recurrence.FreqWeekly:
		if len(rule.DaysOfWeek) > 0 {
			parts = append(parts, "BYDAY="+weekdayCodes(rule.DaysOfWeek, 0))
		}
	case recurrence.FreqMonthly:
		parts = append(parts, "BYDAY="+weekdayCodes(rule.DaysOfWeek, rule.MonthlyOrdinal))
	default:
		return "", fmt.Errorf("unknown recurrence frequency %q", rule.Frequency)
	}

	if until != nil {
		parts = append(parts, "UNTIL="+until.UTC().Format("20060102T150405Z"))
	}
	return strings.Join(parts, ";"), nil
}

func weekdayCodes(days []time.Weekday, ordinal int) string {
	codes := make([]string, 0, len(days))
	for _, d := range days {
		code := weekdayCode(d)
		if ordinal > 0 {
			code = fmt.Sprintf("%d%s", ordinal, code)
		}
		codes = append(codes, code)
	}
	return strings.Join(codes, ",")
}

func weekdayCode(d time.Weekday) string {
	switch d {
	case time.Monday:
		return "MO"
	case time.Tuesday:
		return "TU"
	case time.Wednesday:
		return "WE"
	case time.Thursday:
		return "TH"
	case time.Friday:
		return "FR"
	case time.Saturday:
		return "SA"
	default:
		return "SU"
	}
}
