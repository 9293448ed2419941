package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		startDate time.Time
		endDate   *time.Time
		expected  string
	}{
		{
			name:      "daily forever",
			rule:      Rule{Frequency: FreqDaily, Interval: 1},
			startDate: date(2025, 1, 1),
			expected:  "Daily from 2025-01-01, forever",
		},
		{
			name: "weekly until end date",
			rule: Rule{
				Frequency:  FreqWeekly,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			},
			startDate: date(2025, 1, 6),
			endDate:   datePtr(2025, 12, 31),
			expected:  "Weekly on Mon, Wed, Fri from 2025-01-06 until 2025-12-31",
		},
		{
			name: "every two weeks",
			rule: Rule{
				Frequency:  FreqWeekly,
				Interval:   2,
				DaysOfWeek: []time.Weekday{time.Tuesday},
			},
			startDate: date(2025, 1, 7),
			expected:  "Every 2 weeks on Tue from 2025-01-07, forever",
		},
		{
			name: "monthly second Tuesday",
			rule: Rule{
				Frequency:      FreqMonthly,
				Interval:       1,
				DaysOfWeek:     []time.Weekday{time.Tuesday},
				MonthlyOrdinal: 2,
			},
			startDate: date(2025, 1, 1),
			endDate:   datePtr(2025, 6, 30),
			expected:  "Monthly on the 2nd Tue from 2025-01-01 until 2025-06-30",
		},
		{
			name: "daily with weekday filter",
			rule: Rule{
				Frequency:  FreqDaily,
				Interval:   1,
				DaysOfWeek: []time.Weekday{time.Monday, time.Tuesday},
			},
			startDate: date(2025, 1, 1),
			expected:  "Daily on Mon, Tue from 2025-01-01, forever",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildSummary(tt.rule, tt.startDate, tt.endDate)
			assert.Equal(t, tt.expected, got)

			// Pure: a second render is identical.
			assert.Equal(t, got, BuildSummary(tt.rule, tt.startDate, tt.endDate))
		})
	}
}
