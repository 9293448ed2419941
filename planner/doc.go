/*
Package planner provides an embeddable personal event-planning core:
recurring-event expansion, conflict detection and resolution, and per-label
time analytics.

# Basic Usage

The simplest way to use this package is with the provided in-memory storage:

	store := memory.New()
	p, err := planner.New(store, planner.Config{
		Labels:  store,
		Buckets: store,
	})
	if err != nil {
		log.Fatal(err)
	}

	event, report, err := p.CreateRecurringEvent(planner.RecurringEventInput{
		OwnerID:   ownerID,
		Name:      "Standup",
		StartTime: storage.TimeOfDay{Hour: 9},
		EndTime:   storage.TimeOfDay{Hour: 9, Minute: 15},
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Rule: recurrence.RuleInput{
			Frequency:  recurrence.FreqWeekly,
			DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
		},
		Timezone: "Europe/Berlin",
	})

# Conflicts

Creation and update check the candidate against the owner's existing events.
A non-empty report with AllowConflicts unset aborts with *conflict.Error;
with AllowConflicts set, the event is persisted and the caller can let the
user pick a loser per date:

	_, err = p.ResolveConflicts(event.ID, conflict.Resolution{
		date: otherEventID, // the other event yields on this date
	})

The losing side gains a skip day; resolutions are idempotent, and dates in
the past are rejected.

# Custom Storage Backend

To bring your own persistence, implement storage.EventStore (plus
storage.LabelStore and analytics.BucketStore for analytics). The core is a
pure computation library: it performs no I/O beyond these interfaces, spawns
no goroutines and is safe for concurrent reads. Callers must serialize
concurrent mutations of the same recurring event or bucket row.

# Analytics

Completion changes feed per-label day/week/month totals:

	p.SetEventCompleted(eventID, true)
	minutes, _ := p.Analytics().Total(ownerID, labelID, analytics.BucketWeek, time.Now(), loc)

Week buckets follow ISO-8601 (Monday start); day and month buckets use the
owner's timezone, so contributions land on the calendar day the user
perceives.
*/
package planner
