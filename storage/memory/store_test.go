package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvk0633/libplanner/analytics"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEventCRUD(t *testing.T) {
	store := New()
	owner := uuid.New()

	event := &storage.Event{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "dentist",
		Start:   timePtr(date(2025, 1, 10).Add(9 * time.Hour)),
		End:     timePtr(date(2025, 1, 10).Add(10 * time.Hour)),
	}
	require.NoError(t, store.PutEvent(event))

	got, err := store.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "dentist", got.Name)

	// Reads hand out copies, not aliases.
	got.Name = "changed"
	again, err := store.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, "dentist", again.Name)

	require.NoError(t, store.DeleteEvent(event.ID))
	_, err = store.GetEvent(event.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteEvent(event.ID), storage.ErrNotFound)
}

func TestPutEvent_RequiresID(t *testing.T) {
	store := New()
	err := store.PutEvent(&storage.Event{Name: "no id"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestFindEventsByOwnerAndRange(t *testing.T) {
	store := New()
	owner := uuid.New()
	other := uuid.New()

	put := func(ownerID uuid.UUID, start, end time.Time) uuid.UUID {
		ev := &storage.Event{ID: uuid.New(), OwnerID: ownerID, Name: "e", Start: timePtr(start), End: timePtr(end)}
		require.NoError(t, store.PutEvent(ev))
		return ev.ID
	}

	inside := put(owner, date(2025, 1, 10).Add(9*time.Hour), date(2025, 1, 10).Add(10*time.Hour))
	straddling := put(owner, date(2025, 1, 9).Add(23*time.Hour), date(2025, 1, 10).Add(1*time.Hour))
	put(owner, date(2025, 1, 20).Add(9*time.Hour), date(2025, 1, 20).Add(10*time.Hour))
	put(other, date(2025, 1, 10).Add(9*time.Hour), date(2025, 1, 10).Add(10*time.Hour))

	// An event with no times is never returned by range queries.
	require.NoError(t, store.PutEvent(&storage.Event{ID: uuid.New(), OwnerID: owner, Name: "draft", Draft: true}))

	found, err := store.FindEventsByOwnerAndRange(owner, date(2025, 1, 10), date(2025, 1, 11))
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, ev := range found {
		ids[ev.ID] = true
	}
	assert.Len(t, found, 2)
	assert.True(t, ids[inside])
	assert.True(t, ids[straddling])
}

func TestRecurringEventCRUD(t *testing.T) {
	store := New()
	owner := uuid.New()

	re := &storage.RecurringEvent{
		ID:      uuid.New(),
		OwnerID: owner,
		Name:    "standup",
		Rule: recurrence.Rule{
			Frequency:  recurrence.FreqWeekly,
			DaysOfWeek: []time.Weekday{time.Monday},
			Interval:   1,
		},
		StartDate: date(2025, 1, 6),
		SkipDays:  recurrence.NewDateSet(date(2025, 1, 13)),
		Timezone:  "UTC",
	}
	require.NoError(t, store.PutRecurringEvent(re))

	got, err := store.GetRecurringEvent(re.ID)
	require.NoError(t, err)
	assert.True(t, got.SkipDays.Contains(date(2025, 1, 13)))

	// Skip-day sets are deep-copied both ways.
	got.SkipDays.Add(date(2025, 1, 20))
	again, err := store.GetRecurringEvent(re.ID)
	require.NoError(t, err)
	assert.False(t, again.SkipDays.Contains(date(2025, 1, 20)))

	re.SkipDays.Add(date(2025, 1, 27))
	again, err = store.GetRecurringEvent(re.ID)
	require.NoError(t, err)
	assert.False(t, again.SkipDays.Contains(date(2025, 1, 27)))

	require.NoError(t, store.DeleteRecurringEvent(re.ID))
	_, err = store.GetRecurringEvent(re.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindRecurringByOwnerAndRange(t *testing.T) {
	store := New()
	owner := uuid.New()

	put := func(start time.Time, end *time.Time) uuid.UUID {
		re := &storage.RecurringEvent{
			ID:        uuid.New(),
			OwnerID:   owner,
			Name:      "r",
			StartDate: start,
			EndDate:   end,
		}
		require.NoError(t, store.PutRecurringEvent(re))
		return re.ID
	}

	openEnded := put(date(2025, 1, 1), nil)
	bounded := put(date(2025, 1, 1), timePtr(date(2025, 6, 30)))
	put(date(2025, 1, 1), timePtr(date(2025, 2, 28))) // ends before the window
	put(date(2026, 1, 1), nil)                        // starts after the window

	found, err := store.FindRecurringByOwnerAndRange(owner, date(2025, 5, 1), date(2025, 5, 31))
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, re := range found {
		ids[re.ID] = true
	}
	assert.Len(t, found, 2)
	assert.True(t, ids[openEnded])
	assert.True(t, ids[bounded])
}

func TestUserAndLabel(t *testing.T) {
	store := New()

	user := &storage.User{ID: uuid.New(), Timezone: "Europe/Berlin"}
	require.NoError(t, store.PutUser(user))
	gotUser, err := store.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", gotUser.Timezone)

	label := &storage.Label{ID: uuid.New(), OwnerID: user.ID, Name: "Work"}
	require.NoError(t, store.PutLabel(label))
	gotLabel, err := store.GetLabel(label.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", gotLabel.Name)

	_, err = store.GetUser(uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetLabel(uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestBucketRoundTrip(t *testing.T) {
	store := New()
	owner := uuid.New()
	label := uuid.New()
	key := analytics.Key{Type: analytics.BucketDay, Year: 2025, Value: 74}

	_, err := store.GetBucket(owner, label, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.PutBucket(&analytics.Bucket{
		OwnerID: owner, LabelID: label, Key: key, Minutes: 45,
	}))

	got, err := store.GetBucket(owner, label, key)
	require.NoError(t, err)
	assert.Equal(t, int64(45), got.Minutes)

	// Same value in a different period is a different row.
	weekKey := analytics.Key{Type: analytics.BucketWeek, Year: 2025, Value: 11}
	_, err = store.GetBucket(owner, label, weekKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
