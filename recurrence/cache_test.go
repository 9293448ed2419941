package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeries(startDay int) Series {
	return Series{
		Rule:      Rule{Frequency: FreqDaily, Interval: 1},
		StartDate: date(2025, 1, startDay),
	}
}

func TestExpansionCache_GetSet(t *testing.T) {
	cache := NewExpansionCache(DefaultCacheConfig)
	series := testSeries(1)
	dates := []time.Time{date(2025, 1, 1), date(2025, 1, 2)}

	_, ok := cache.Get(series, date(2025, 1, 1), date(2025, 1, 2))
	assert.False(t, ok, "empty cache must miss")

	cache.Set(series, date(2025, 1, 1), date(2025, 1, 2), dates)
	got, ok := cache.Get(series, date(2025, 1, 1), date(2025, 1, 2))
	require.True(t, ok)
	assert.Equal(t, dates, got)

	// A different window is a different key.
	_, ok = cache.Get(series, date(2025, 1, 1), date(2025, 1, 3))
	assert.False(t, ok)
}

func TestExpansionCache_Expiry(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{TTL: -time.Second, MaxEntries: 10})
	series := testSeries(1)

	cache.Set(series, date(2025, 1, 1), date(2025, 1, 2), []time.Time{date(2025, 1, 1)})
	_, ok := cache.Get(series, date(2025, 1, 1), date(2025, 1, 2))
	assert.False(t, ok, "expired entry must miss")

	stats := cache.Stats()
	assert.Equal(t, 0, stats.TotalEntries, "expired entry dropped on access")
}

func TestExpansionCache_Eviction(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{TTL: time.Hour, MaxEntries: 3})

	for day := 1; day <= 5; day++ {
		cache.Set(testSeries(day), date(2025, 2, 1), date(2025, 2, 28), []time.Time{date(2025, 2, day)})
	}

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.TotalEntries, 3, "eviction keeps the cache within MaxEntries")
}

func TestExpansionCache_Purge(t *testing.T) {
	cache := NewExpansionCache(DefaultCacheConfig)
	cache.Set(testSeries(1), date(2025, 1, 1), date(2025, 1, 2), nil)
	cache.Purge()
	assert.Equal(t, 0, cache.Stats().TotalEntries)
}

func TestCacheKey_SkipDaysInfluenceKey(t *testing.T) {
	a := testSeries(1)
	b := testSeries(1)
	b.SkipDays = NewDateSet(date(2025, 1, 2))

	keyA := cacheKey(a, date(2025, 1, 1), date(2025, 1, 31))
	keyB := cacheKey(b, date(2025, 1, 1), date(2025, 1, 31))
	assert.NotEqual(t, keyA, keyB)
}

func TestCacheKey_EndDateAndSkipDayDoNotCollide(t *testing.T) {
	// A bounded series and an open-ended one skipping the same date hash
	// the same timestamps; the keys must still differ.
	bounded := testSeries(1)
	bounded.EndDate = datePtr(2025, 1, 5)

	open := testSeries(1)
	open.SkipDays = NewDateSet(date(2025, 1, 5))

	keyBounded := cacheKey(bounded, date(2025, 1, 1), date(2025, 1, 5))
	keyOpen := cacheKey(open, date(2025, 1, 1), date(2025, 1, 5))
	assert.NotEqual(t, keyBounded, keyOpen)
}

func TestGenerator_CacheDistinguishesEndDateFromSkipDay(t *testing.T) {
	generator := NewGenerator()

	bounded := testSeries(1)
	bounded.EndDate = datePtr(2025, 1, 5)
	got, err := generator.OccurrencesInRange(bounded, date(2025, 1, 1), date(2025, 1, 10))
	require.NoError(t, err)
	assert.Contains(t, got, date(2025, 1, 5))

	open := testSeries(1)
	open.SkipDays = NewDateSet(date(2025, 1, 5))
	got, err = generator.OccurrencesInRange(open, date(2025, 1, 1), date(2025, 1, 5))
	require.NoError(t, err)
	assert.NotContains(t, got, date(2025, 1, 5), "a skip day must never be emitted")
	assert.Equal(t, []time.Time{
		date(2025, 1, 1), date(2025, 1, 2), date(2025, 1, 3), date(2025, 1, 4),
	}, got)
}

func TestDateSet(t *testing.T) {
	set := NewDateSet()
	stamp := time.Date(2025, 3, 10, 18, 45, 12, 0, time.UTC)

	set.Add(stamp)
	assert.True(t, set.Contains(date(2025, 3, 10)), "membership is by calendar date")
	assert.True(t, set.Contains(stamp))

	set.Add(date(2025, 3, 10)) // duplicate
	set.Add(date(2025, 1, 1))
	assert.Equal(t, []time.Time{date(2025, 1, 1), date(2025, 3, 10)}, set.Dates())

	clone := set.Clone()
	clone.Remove(date(2025, 1, 1))
	assert.True(t, set.Contains(date(2025, 1, 1)), "clone is independent")

	var nilSet DateSet
	assert.False(t, nilSet.Contains(date(2025, 1, 1)))
}

func TestDateOf(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// DateOf keeps the wall-clock date of the value it is given.
	local := time.Date(2025, 3, 11, 1, 30, 0, 0, tokyo)
	assert.Equal(t, date(2025, 3, 11), DateOf(local))
}
