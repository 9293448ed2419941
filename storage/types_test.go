package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOfDay(t *testing.T) {
	assert.True(t, TimeOfDay{Hour: 0, Minute: 0}.Valid())
	assert.True(t, TimeOfDay{Hour: 23, Minute: 59}.Valid())
	assert.False(t, TimeOfDay{Hour: 24, Minute: 0}.Valid())
	assert.False(t, TimeOfDay{Hour: 9, Minute: 60}.Valid())
	assert.False(t, TimeOfDay{Hour: -1, Minute: 0}.Valid())

	assert.True(t, TimeOfDay{Hour: 9}.Before(TimeOfDay{Hour: 10}))
	assert.True(t, TimeOfDay{Hour: 9, Minute: 15}.Before(TimeOfDay{Hour: 9, Minute: 30}))
	assert.False(t, TimeOfDay{Hour: 9, Minute: 30}.Before(TimeOfDay{Hour: 9, Minute: 30}))

	assert.Equal(t, 570, TimeOfDay{Hour: 9, Minute: 30}.MinutesOfDay())
	assert.Equal(t, "09:05", TimeOfDay{Hour: 9, Minute: 5}.String())
}

func TestRecurringEvent_OccurrenceInterval(t *testing.T) {
	re := RecurringEvent{
		StartTime: TimeOfDay{Hour: 9},
		EndTime:   TimeOfDay{Hour: 10, Minute: 30},
		Timezone:  "Europe/Berlin",
	}

	// 09:00 Berlin on a January date is 08:00 UTC (CET).
	start, end := re.OccurrenceInterval(time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 13, 9, 30, 0, 0, time.UTC), end)

	// The same wall-clock time in July is 07:00 UTC (CEST).
	start, _ = re.OccurrenceInterval(time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 7, 14, 7, 0, 0, 0, time.UTC), start)

	assert.Equal(t, int64(90), re.DurationMinutes())
}

func TestRecurringEvent_Location(t *testing.T) {
	berlin := RecurringEvent{Timezone: "Europe/Berlin"}
	loc := berlin.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Europe/Berlin", loc.String())

	unset := RecurringEvent{}
	assert.Equal(t, time.UTC, unset.Location())

	bogus := RecurringEvent{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, bogus.Location())
}

func TestClocks(t *testing.T) {
	fixed := FixedClock{T: time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)}
	assert.Equal(t, fixed.T, fixed.Now())

	before := time.Now()
	got := SystemClock{}.Now()
	assert.False(t, got.Before(before))
}
