package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// BuildSummary renders a deterministic human-readable description of the
// rule over its active date range, e.g. "Weekly on Mon, Wed, Fri until
// 2025-12-31". Pure: identical inputs always produce the identical string.
func BuildSummary(rule Rule, startDate time.Time, endDate *time.Time) string {
	var b strings.Builder

	switch rule.Frequency {
	case FreqDaily:
		if rule.Interval > 1 {
			fmt.Fprintf(&b, "Every %d days", rule.Interval)
		} else {
			b.WriteString("Daily")
		}
		if len(rule.DaysOfWeek) > 0 && len(rule.DaysOfWeek) < 7 {
			b.WriteString(" on ")
			b.WriteString(weekdayList(rule.DaysOfWeek))
		}
	case FreqWeekly:
		if rule.Interval > 1 {
			fmt.Fprintf(&b, "Every %d weeks", rule.Interval)
		} else {
			b.WriteString("Weekly")
		}
		b.WriteString(" on ")
		b.WriteString(weekdayList(rule.DaysOfWeek))
	case FreqMonthly:
		if rule.Interval > 1 {
			fmt.Fprintf(&b, "Every %d months", rule.Interval)
		} else {
			b.WriteString("Monthly")
		}
		fmt.Fprintf(&b, " on the %s %s", ordinalName(rule.MonthlyOrdinal), weekdayList(rule.DaysOfWeek))
	}

	fmt.Fprintf(&b, " from %s", DateOf(startDate).Format("2006-01-02"))
	if endDate != nil {
		fmt.Fprintf(&b, " until %s", DateOf(*endDate).Format("2006-01-02"))
	} else {
		b.WriteString(", forever")
	}
	return b.String()
}

func weekdayList(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ", ")
}

func ordinalName(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
