// Package analytics maintains per-label completed-time totals bucketed by
// day, ISO week and month. Bucket arithmetic is computed as explicit deltas
// so the math stays testable in isolation; persisting a delta set atomically
// is the caller's concern.
package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BucketType identifies the aggregation granularity of a bucket.
type BucketType string

const (
	BucketDay   BucketType = "DAY"
	BucketWeek  BucketType = "WEEK"
	BucketMonth BucketType = "MONTH"
)

// Key identifies one bucket period. Value is the day-of-year, ISO week
// number or month, depending on Type.
type Key struct {
	Type  BucketType
	Year  int
	Value int
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d/%d", k.Type, k.Year, k.Value)
}

// DayKey computes the day bucket key for t as perceived in loc.
func DayKey(t time.Time, loc *time.Location) Key {
	local := t.In(loc)
	return Key{Type: BucketDay, Year: local.Year(), Value: local.YearDay()}
}

// WeekKey computes the ISO-8601 week bucket key (weeks start on Monday).
// The ISO year may differ from the calendar year around January 1st.
func WeekKey(t time.Time, loc *time.Location) Key {
	year, week := t.In(loc).ISOWeek()
	return Key{Type: BucketWeek, Year: year, Value: week}
}

// MonthKey computes the month bucket key for t as perceived in loc.
func MonthKey(t time.Time, loc *time.Location) Key {
	local := t.In(loc)
	return Key{Type: BucketMonth, Year: local.Year(), Value: int(local.Month())}
}

// KeysFor returns the day, week and month keys a timestamp contributes to.
func KeysFor(t time.Time, loc *time.Location) [3]Key {
	return [3]Key{DayKey(t, loc), WeekKey(t, loc), MonthKey(t, loc)}
}

// Bucket is one stored aggregation row. Exactly one row exists per
// (owner, label, key) triple; Minutes never goes below zero.
type Bucket struct {
	OwnerID uuid.UUID
	LabelID uuid.UUID
	// LabelName is denormalized from the label at first contribution.
	LabelName string
	Key       Key
	Minutes   int64
}

// BucketStore persists aggregation rows. Implementations must return
// storage.ErrNotFound for missing rows.
type BucketStore interface {
	// GetBucket finds the row for the given triple.
	GetBucket(ownerID, labelID uuid.UUID, key Key) (*Bucket, error)
	// PutBucket creates or replaces a row.
	PutBucket(bucket *Bucket) error
}
