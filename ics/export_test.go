package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvk0633/libplanner/planner"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func ordinal(n int) *int { return &n }

func mustRule(t *testing.T, input recurrence.RuleInput) recurrence.Rule {
	t.Helper()
	rule, err := recurrence.Validate(input)
	require.NoError(t, err)
	return rule
}

func TestRRuleValue(t *testing.T) {
	tests := []struct {
		name  string
		rule  recurrence.RuleInput
		until *time.Time
		want  string
	}{
		{
			name: "daily",
			rule: recurrence.RuleInput{Frequency: recurrence.FreqDaily},
			want: "FREQ=DAILY",
		},
		{
			name: "daily with weekday filter",
			rule: recurrence.RuleInput{
				Frequency:  recurrence.FreqDaily,
				DaysOfWeek: []time.Weekday{time.Monday, time.Friday},
			},
			want: "FREQ=DAILY;BYDAY=MO,FR",
		},
		{
			name: "weekly with interval",
			rule: recurrence.RuleInput{
				Frequency:  recurrence.FreqWeekly,
				DaysOfWeek: []time.Weekday{time.Wednesday, time.Monday},
				Interval:   2,
			},
			want: "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE",
		},
		{
			name: "monthly second tuesday",
			rule: recurrence.RuleInput{
				Frequency:      recurrence.FreqMonthly,
				DaysOfWeek:     []time.Weekday{time.Tuesday},
				MonthlyOrdinal: ordinal(2),
			},
			want: "FREQ=MONTHLY;BYDAY=2TU",
		},
		{
			name: "weekly bounded keeps the start time-of-day in UNTIL",
			rule: recurrence.RuleInput{
				Frequency:  recurrence.FreqWeekly,
				DaysOfWeek: []time.Weekday{time.Friday},
			},
			until: timePtr(date(2025, 12, 31).Add(9 * time.Hour)),
			want:  "FREQ=WEEKLY;BYDAY=FR;UNTIL=20251231T090000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RRuleValue(mustRule(t, tt.rule), tt.until)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendar(t *testing.T) {
	clock := storage.FixedClock{T: date(2025, 1, 1).Add(12 * time.Hour)}
	exporter := NewExporter(clock)
	owner := uuid.New()

	event := storage.Event{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "dentist",
		Start:   timePtr(date(2025, 1, 10).Add(9 * time.Hour)),
		End:     timePtr(date(2025, 1, 10).Add(10 * time.Hour)),
	}
	draft := storage.Event{ID: uuid.New(), OwnerID: owner, Name: "maybe", Draft: true}

	re := storage.RecurringEvent{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "standup",
		Rule: mustRule(t, recurrence.RuleInput{
			Frequency:  recurrence.FreqWeekly,
			DaysOfWeek: []time.Weekday{time.Monday},
		}),
		StartTime: storage.TimeOfDay{Hour: 9},
		EndTime:   storage.TimeOfDay{Hour: 10},
		StartDate: date(2025, 1, 6),
		EndDate:   timePtr(date(2025, 3, 31)),
		SkipDays:  recurrence.NewDateSet(date(2025, 1, 13), date(2025, 2, 3)),
		Summary:   "Weekly on Mon from 2025-01-06 until 2025-03-31",
		Timezone:  "UTC",
	}

	cal, err := exporter.Calendar([]storage.Event{event, draft}, []storage.RecurringEvent{re})
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, Encode(&out, cal))
	text := out.String()

	assert.Contains(t, text, "SUMMARY:dentist")
	assert.Contains(t, text, "SUMMARY:standup")
	assert.NotContains(t, text, "maybe", "drafts are omitted")
	// UNTIL carries the start time-of-day so a consumer keeps the end
	// date's own occurrence (its start is not after the bound).
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;BYDAY=MO;UNTIL=20250331T090000Z")
	assert.Contains(t, text, "EXDATE;VALUE=DATE:20250113,20250203")
	assert.Contains(t, text, "DESCRIPTION:Weekly on Mon from 2025-01-06 until 2025-03-31")
}

func TestCalendar_ComponentProps(t *testing.T) {
	clock := storage.FixedClock{T: date(2025, 1, 1)}
	exporter := NewExporter(clock)

	event := storage.Event{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "dentist",
		Start:   timePtr(date(2025, 1, 10).Add(9 * time.Hour)),
		End:     timePtr(date(2025, 1, 10).Add(10 * time.Hour)),
	}

	cal, err := exporter.Calendar([]storage.Event{event}, nil)
	require.NoError(t, err)
	require.Len(t, cal.Children, 1)

	comp := cal.Children[0]
	assert.Equal(t, ical.CompEvent, comp.Name)
	uid, err := comp.Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, event.ID.String(), uid)
	status, err := comp.Props.Text(ical.PropStatus)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", status)
}

func TestOccurrences(t *testing.T) {
	clock := storage.FixedClock{T: date(2025, 1, 1)}
	exporter := NewExporter(clock)
	seriesID := uuid.New()

	occurrences := []planner.VirtualOccurrence{
		{
			RecurringEventID: seriesID,
			Name:             "standup",
			Date:             date(2025, 1, 6),
			Start:            date(2025, 1, 6).Add(9 * time.Hour),
			End:              date(2025, 1, 6).Add(10 * time.Hour),
		},
		{
			RecurringEventID: seriesID,
			Name:             "standup",
			Date:             date(2025, 1, 13),
			Start:            date(2025, 1, 13).Add(9 * time.Hour),
			End:              date(2025, 1, 13).Add(10 * time.Hour),
		},
	}

	cal := exporter.Occurrences(occurrences)
	require.Len(t, cal.Children, 2)

	// Re-exporting yields the same derived UIDs: stable across queries.
	uid, err := cal.Children[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, seriesID.String()+"-20250106", uid)

	again := exporter.Occurrences(occurrences)
	uidAgain, err := again.Children[0].Props.Text(ical.PropUID)
	require.NoError(t, err)
	assert.Equal(t, uid, uidAgain)
}
