// Package timerange provides the time-window model and the planner that
// splits oversized windows into provider-sized sub-ranges.
package timerange

import (
	"fmt"
	"time"
)

// DefaultMaxSpan is the widest window the Monnit API accepts for a single
// SensorDataMessages request.
const DefaultMaxSpan = 7 * 24 * time.Hour

// TimeRange is a half-open interval [Start, End). Values are immutable
// once constructed.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// New creates a TimeRange and enforces Start < End.
func New(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("invalid time range: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// String renders the range in the wire format used for Monnit date
// parameters and output file names.
func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format("2006-01-02 15:04:05"), r.End.Format("2006-01-02 15:04:05"))
}

// WindowPlan is the result of partitioning a requested window.
// Split reports whether the window exceeded the maximum span; Ranges
// holds the chronological cover ranges (a single element when not split).
type WindowPlan struct {
	Split  bool
	Ranges []TimeRange
}

// Plan partitions full into contiguous sub-ranges of at most maxSpan.
//
// A window whose duration is exactly maxSpan is not split. When splitting,
// the cursor advances from Start in maxSpan steps and the final sub-range
// is clamped to End, so the ranges are non-overlapping, chronologically
// ordered, and cover full exactly. Pure function; no hidden state.
func Plan(full TimeRange, maxSpan time.Duration) WindowPlan {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}

	if full.Duration() <= maxSpan {
		return WindowPlan{Split: false, Ranges: []TimeRange{full}}
	}

	var ranges []TimeRange
	cursor := full.Start
	for cursor.Before(full.End) {
		next := cursor.Add(maxSpan)
		if next.After(full.End) {
			next = full.End
		}
		ranges = append(ranges, TimeRange{Start: cursor, End: next})
		cursor = next
	}

	return WindowPlan{Split: true, Ranges: ranges}
}
