package recurrence

import (
	"fmt"
	"time"
)

// Frequency identifies how often a recurrence pattern repeats.
type Frequency string

const (
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
)

// Code identifies a stable validation failure condition. Callers map these
// to whatever status convention their transport layer uses.
type Code string

const (
	CodeMissingFrequency       Code = "MISSING_RECURRENCE_FREQUENCY"
	CodeWeeklyMissingDays      Code = "WEEKLY_MISSING_DAYS"
	CodeWeeklyInvalidDay       Code = "WEEKLY_INVALID_DAY"
	CodeMonthlyMissingOrdinal  Code = "MONTHLY_MISSING_ORDINAL_OR_DAY"
	CodeMonthlyInvalidOrdinal  Code = "MONTHLY_INVALID_ORDINAL"
	CodeMonthlyInvalidDay      Code = "MONTHLY_INVALID_DAY"
	CodeUnsupportedCombination Code = "UNSUPPORTED_RECURRENCE_COMBINATION"
)

// ValidationError reports a malformed recurrence rule input.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(code Code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// RuleInput is the raw, not yet validated description of a recurrence
// pattern as received from a caller.
type RuleInput struct {
	Frequency Frequency
	// DaysOfWeek selects the active weekdays. Required for WEEKLY and
	// MONTHLY; optional for DAILY, where an empty set means every day.
	DaysOfWeek []time.Weekday
	// MonthlyOrdinal selects the Nth occurrence of each weekday within a
	// month, 1 through 4. Only valid for MONTHLY.
	MonthlyOrdinal *int
	// Interval is the stride between periods; zero means 1.
	Interval int
}

// Rule is an immutable, validated recurrence pattern. Construct it through
// Validate; updates replace the whole value.
type Rule struct {
	Frequency      Frequency
	DaysOfWeek     []time.Weekday
	MonthlyOrdinal int // 0 unless Frequency is FreqMonthly
	Interval       int
}

// Validate checks a RuleInput for structural completeness and returns the
// immutable Rule. Every failure carries one of the stable Codes.
func Validate(input RuleInput) (Rule, error) {
	switch input.Frequency {
	case FreqDaily, FreqWeekly, FreqMonthly:
	case "":
		return Rule{}, invalid(CodeMissingFrequency, "recurrence frequency is required")
	default:
		return Rule{}, invalid(CodeMissingFrequency, "unknown recurrence frequency %q", input.Frequency)
	}

	if input.MonthlyOrdinal != nil && input.Frequency != FreqMonthly {
		return Rule{}, invalid(CodeUnsupportedCombination,
			"monthly ordinal cannot be combined with %s frequency", input.Frequency)
	}

	switch input.Frequency {
	case FreqWeekly:
		if len(input.DaysOfWeek) == 0 {
			return Rule{}, invalid(CodeWeeklyMissingDays, "weekly recurrence requires at least one weekday")
		}
		if err := checkWeekdays(input.DaysOfWeek, CodeWeeklyInvalidDay); err != nil {
			return Rule{}, err
		}
	case FreqMonthly:
		if input.MonthlyOrdinal == nil || len(input.DaysOfWeek) == 0 {
			return Rule{}, invalid(CodeMonthlyMissingOrdinal,
				"monthly recurrence requires an ordinal and at least one weekday")
		}
		if *input.MonthlyOrdinal < 1 || *input.MonthlyOrdinal > 4 {
			return Rule{}, invalid(CodeMonthlyInvalidOrdinal,
				"monthly ordinal must be between 1 and 4, got %d", *input.MonthlyOrdinal)
		}
		if err := checkWeekdays(input.DaysOfWeek, CodeMonthlyInvalidDay); err != nil {
			return Rule{}, err
		}
	case FreqDaily:
		if err := checkWeekdays(input.DaysOfWeek, CodeWeeklyInvalidDay); err != nil {
			return Rule{}, err
		}
	}

	interval := input.Interval
	if interval <= 0 {
		interval = 1
	}

	rule := Rule{
		Frequency:  input.Frequency,
		DaysOfWeek: normalizeWeekdays(input.DaysOfWeek),
		Interval:   interval,
	}
	if input.MonthlyOrdinal != nil {
		rule.MonthlyOrdinal = *input.MonthlyOrdinal
	}
	return rule, nil
}

func checkWeekdays(days []time.Weekday, code Code) error {
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			return invalid(code, "invalid weekday %d", int(d))
		}
	}
	return nil
}

// normalizeWeekdays sorts Monday-first and drops duplicates, so that rules
// compare and render deterministically.
func normalizeWeekdays(days []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, candidate := range mondayFirstOrder {
		for _, d := range days {
			if d == candidate && !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

var mondayFirstOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// HasDay reports whether the rule's weekday filter includes d. An empty
// filter on a DAILY rule matches every day.
func (r Rule) HasDay(d time.Weekday) bool {
	if r.Frequency == FreqDaily && len(r.DaysOfWeek) == 0 {
		return true
	}
	for _, day := range r.DaysOfWeek {
		if day == d {
			return true
		}
	}
	return false
}
