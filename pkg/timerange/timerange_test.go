package timerange

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{
			name:  "valid range",
			start: "2023-12-01 00:00:00",
			end:   "2023-12-02 00:00:00",
		},
		{
			name:    "start equals end",
			start:   "2023-12-01 00:00:00",
			end:     "2023-12-01 00:00:00",
			wantErr: true,
		},
		{
			name:    "start after end",
			start:   "2023-12-02 00:00:00",
			end:     "2023-12-01 00:00:00",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(mustParse(t, tt.start), mustParse(t, tt.end))
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlan_NoSplit(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{
			name:  "well under max span",
			start: "2023-12-01 00:00:00",
			end:   "2023-12-03 00:00:00",
		},
		{
			name:  "exactly max span",
			start: "2023-12-01 00:00:00",
			end:   "2023-12-08 00:00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := TimeRange{Start: mustParse(t, tt.start), End: mustParse(t, tt.end)}
			plan := Plan(full, DefaultMaxSpan)

			if plan.Split {
				t.Errorf("Split = true, want false")
			}
			if len(plan.Ranges) != 1 {
				t.Fatalf("len(Ranges) = %d, want 1", len(plan.Ranges))
			}
			if plan.Ranges[0] != full {
				t.Errorf("Ranges[0] = %v, want %v", plan.Ranges[0], full)
			}
		})
	}
}

func TestPlan_SplitExample(t *testing.T) {
	// Reference case: 24 days split into three full weeks plus a 3-day tail.
	full := TimeRange{
		Start: mustParse(t, "2023-12-01 00:00:00"),
		End:   mustParse(t, "2023-12-25 00:00:00"),
	}

	plan := Plan(full, DefaultMaxSpan)

	if !plan.Split {
		t.Fatal("Split = false, want true")
	}

	want := []TimeRange{
		{Start: mustParse(t, "2023-12-01 00:00:00"), End: mustParse(t, "2023-12-08 00:00:00")},
		{Start: mustParse(t, "2023-12-08 00:00:00"), End: mustParse(t, "2023-12-15 00:00:00")},
		{Start: mustParse(t, "2023-12-15 00:00:00"), End: mustParse(t, "2023-12-22 00:00:00")},
		{Start: mustParse(t, "2023-12-22 00:00:00"), End: mustParse(t, "2023-12-25 00:00:00")},
	}

	if len(plan.Ranges) != len(want) {
		t.Fatalf("len(Ranges) = %d, want %d", len(plan.Ranges), len(want))
	}
	for i, r := range plan.Ranges {
		if r != want[i] {
			t.Errorf("Ranges[%d] = %v, want %v", i, r, want[i])
		}
	}
}

func TestPlan_CoverageProperties(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		maxSpan time.Duration
	}{
		{
			name:    "ten days with seven day span",
			start:   "2024-01-01 00:00:00",
			end:     "2024-01-11 00:00:00",
			maxSpan: DefaultMaxSpan,
		},
		{
			name:    "uneven span",
			start:   "2024-03-05 08:30:00",
			end:     "2024-04-01 17:45:00",
			maxSpan: 5 * 24 * time.Hour,
		},
		{
			name:    "small span many slices",
			start:   "2024-06-01 00:00:00",
			end:     "2024-06-02 01:30:00",
			maxSpan: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full := TimeRange{Start: mustParse(t, tt.start), End: mustParse(t, tt.end)}
			plan := Plan(full, tt.maxSpan)

			if got := plan.Ranges[0].Start; !got.Equal(full.Start) {
				t.Errorf("first range starts at %v, want %v", got, full.Start)
			}
			if got := plan.Ranges[len(plan.Ranges)-1].End; !got.Equal(full.End) {
				t.Errorf("last range ends at %v, want %v", got, full.End)
			}

			for i, r := range plan.Ranges {
				if !r.Start.Before(r.End) {
					t.Errorf("Ranges[%d] = %v is not a valid interval", i, r)
				}
				if r.Duration() > tt.maxSpan {
					t.Errorf("Ranges[%d] duration %v exceeds max span %v", i, r.Duration(), tt.maxSpan)
				}
				if i > 0 && !plan.Ranges[i-1].End.Equal(r.Start) {
					t.Errorf("gap between Ranges[%d] and Ranges[%d]", i-1, i)
				}
			}
		})
	}
}

func TestPlan_Idempotent(t *testing.T) {
	full := TimeRange{
		Start: mustParse(t, "2023-12-01 16:30:00"),
		End:   mustParse(t, "2023-12-25 05:00:00"),
	}

	first := Plan(full, DefaultMaxSpan)
	second := Plan(full, DefaultMaxSpan)

	if first.Split != second.Split || len(first.Ranges) != len(second.Ranges) {
		t.Fatalf("repeated Plan calls disagree: %v vs %v", first, second)
	}
	for i := range first.Ranges {
		if first.Ranges[i] != second.Ranges[i] {
			t.Errorf("Ranges[%d] differ: %v vs %v", i, first.Ranges[i], second.Ranges[i])
		}
	}
}
