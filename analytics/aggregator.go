package analytics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mvk0633/libplanner/storage"
)

// ChangeContext is the before/after picture of one event mutation, as far as
// analytics cares: completion state, label, start time and duration.
type ChangeContext struct {
	OwnerID uuid.UUID

	OldLabelID *uuid.UUID
	NewLabelID *uuid.UUID

	OldStart *time.Time
	NewStart *time.Time

	OldDurationMinutes int64
	NewDurationMinutes int64

	// OldTimezone and NewTimezone are IANA zones; day and month buckets land
	// on the calendar day the user perceives, not the UTC day. They differ
	// when the change moves the event between zones, in which case each side
	// keys its buckets in its own zone.
	OldTimezone string
	NewTimezone string

	WasCompleted   bool
	IsNowCompleted bool
}

func locationOf(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Delta is one signed adjustment to a bucket row.
type Delta struct {
	LabelID uuid.UUID
	Key     Key
	Minutes int64
}

// ComputeDeltas translates a change context into bucket adjustments: the old
// contribution is subtracted if the event was completed before the change,
// the new contribution added if it is completed after. Pure; opposing
// adjustments to the same bucket cancel out and are dropped.
func ComputeDeltas(ctx ChangeContext) ([]Delta, error) {
	merged := make(map[string]*Delta)

	accumulate := func(labelID uuid.UUID, start time.Time, minutes int64, loc *time.Location) {
		for _, key := range KeysFor(start, loc) {
			id := labelID.String() + "|" + key.String()
			if d, ok := merged[id]; ok {
				d.Minutes += minutes
			} else {
				merged[id] = &Delta{LabelID: labelID, Key: key, Minutes: minutes}
			}
		}
	}

	if ctx.WasCompleted {
		if ctx.OldLabelID == nil || ctx.OldStart == nil {
			return nil, fmt.Errorf("%w: completed change context requires old label and start", storage.ErrInvalidInput)
		}
		accumulate(*ctx.OldLabelID, *ctx.OldStart, -ctx.OldDurationMinutes, locationOf(ctx.OldTimezone))
	}
	if ctx.IsNowCompleted {
		if ctx.NewLabelID == nil || ctx.NewStart == nil {
			return nil, fmt.Errorf("%w: completed change context requires new label and start", storage.ErrInvalidInput)
		}
		accumulate(*ctx.NewLabelID, *ctx.NewStart, ctx.NewDurationMinutes, locationOf(ctx.NewTimezone))
	}

	deltas := make([]Delta, 0, len(merged))
	for _, d := range merged {
		if d.Minutes != 0 {
			deltas = append(deltas, *d)
		}
	}
	return deltas, nil
}

// Aggregator applies change contexts to a bucket store. It is not atomic
// across bucket rows; callers must serialize concurrent changes to the same
// (owner, label) pair and apply changes in mutation order.
type Aggregator struct {
	store  BucketStore
	labels storage.LabelStore
	logger *slog.Logger
}

// NewAggregator creates an aggregator. labels is used to denormalize label
// names into new rows and may be nil. logger may be nil to discard.
func NewAggregator(store BucketStore, labels storage.LabelStore, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{store: store, labels: labels, logger: logger}
}

// Apply computes the deltas for ctx and commits them.
func (a *Aggregator) Apply(ctx ChangeContext) error {
	deltas, err := ComputeDeltas(ctx)
	if err != nil {
		return err
	}
	return a.Commit(ctx.OwnerID, deltas)
}

// Commit folds deltas into stored rows, creating rows on first contribution.
// Subtraction never drives a row below zero: the value is clamped and the
// inconsistency logged as a warning rather than failing the change.
func (a *Aggregator) Commit(ownerID uuid.UUID, deltas []Delta) error {
	for _, delta := range deltas {
		bucket, err := a.store.GetBucket(ownerID, delta.LabelID, delta.Key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			bucket = &Bucket{
				OwnerID:   ownerID,
				LabelID:   delta.LabelID,
				LabelName: a.labelName(delta.LabelID),
				Key:       delta.Key,
			}
		case err != nil:
			return fmt.Errorf("failed to load bucket %s: %w", delta.Key, err)
		}

		bucket.Minutes += delta.Minutes
		if bucket.Minutes < 0 {
			a.logger.Warn("bucket total would go negative, clamping to zero",
				"owner", ownerID, "label", delta.LabelID,
				"bucket", delta.Key.String(), "delta", delta.Minutes)
			bucket.Minutes = 0
		}

		if err := a.store.PutBucket(bucket); err != nil {
			return fmt.Errorf("failed to persist bucket %s: %w", delta.Key, err)
		}
	}
	return nil
}

// Total reads the accumulated minutes for the bucket period containing at.
// A missing row counts as zero.
func (a *Aggregator) Total(ownerID, labelID uuid.UUID, bucketType BucketType, at time.Time, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	var key Key
	switch bucketType {
	case BucketDay:
		key = DayKey(at, loc)
	case BucketWeek:
		key = WeekKey(at, loc)
	case BucketMonth:
		key = MonthKey(at, loc)
	default:
		return 0, fmt.Errorf("%w: unknown bucket type %q", storage.ErrInvalidInput, bucketType)
	}

	bucket, err := a.store.GetBucket(ownerID, labelID, key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bucket.Minutes, nil
}

func (a *Aggregator) labelName(labelID uuid.UUID) string {
	if a.labels == nil {
		return ""
	}
	label, err := a.labels.GetLabel(labelID)
	if err != nil {
		a.logger.Warn("label lookup failed for bucket row", "label", labelID, "err", err)
		return ""
	}
	return label.Name
}
