// Package export writes measurement rows to dated CSV artifacts, one file
// per (sub-range, sensor) pair.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
	"github.com/vinckbooms/20231212-monnit-api/pkg/timerange"
)

// DefaultTimezone is the timezone measurement timestamps are normalized to.
const DefaultTimezone = "Europe/Brussels"

// DefaultDir is the output directory for CSV artifacts.
const DefaultDir = "output"

// CSVSink writes measurement rows as CSV files named
// <startDate:YYYYMMDD>_<endDate:YYYYMMDD>_<sensorId>.csv.
type CSVSink struct {
	dir    string
	loc    *time.Location
	logger zerolog.Logger
}

// NewCSVSink creates a sink writing into dir with timestamps normalized
// to the given timezone. Zero values select the defaults.
func NewCSVSink(dir, timezone string) (*CSVSink, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &CSVSink{
		dir:    dir,
		loc:    loc,
		logger: log.With().Str("component", "csv-sink").Logger(),
	}, nil
}

// FileName returns the artifact name for one (sub-range, sensor) pair.
func (s *CSVSink) FileName(r timerange.TimeRange, sensorID int64) string {
	return fmt.Sprintf("%s_%s_%d.csv",
		r.Start.Format("20060102"), r.End.Format("20060102"), sensorID)
}

// WriteRows writes the measurement rows of one work item and returns the
// created file path. The MessageDate column is normalized to the sink's
// timezone in the 2006-01-02 15:04:05 format; a row whose timestamp cannot
// be converted keeps an empty value instead of aborting the file.
func (s *CSVSink) WriteRows(r timerange.TimeRange, sensorID int64, rows []monnit.DataMessage) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(s.dir, s.FileName(r, sensorID))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	header := columns(rows)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, len(header))
		for i, column := range header {
			if column == monnit.MessageDateField {
				record[i] = s.normalizeMessageDate(row)
				continue
			}
			record[i] = cell(row[column])
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	s.logger.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Msg("CSV file created")

	return path, nil
}

// normalizeMessageDate converts a row's provider-encoded timestamp to the
// sink timezone. Conversion failures are logged per row and yield an empty
// value.
func (s *CSVSink) normalizeMessageDate(row monnit.DataMessage) string {
	raw, ok := row[monnit.MessageDateField].(string)
	if !ok {
		s.logger.Warn().Msg("Row has no message date")
		return ""
	}

	ts, err := monnit.ParseMessageDate(raw)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Timestamp conversion failed, leaving value unset")
		return ""
	}

	return ts.In(s.loc).Format(monnit.DateFormat)
}

// columns derives the header from the union of row fields. SensorID and
// MessageDate come first so operators can eyeball artifacts; the remaining
// provider fields follow in sorted order for deterministic output.
func columns(rows []monnit.DataMessage) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for key := range row {
			seen[key] = true
		}
	}

	var header []string
	for _, lead := range []string{"SensorID", monnit.MessageDateField} {
		if seen[lead] {
			header = append(header, lead)
			delete(seen, lead)
		}
	}

	rest := make([]string, 0, len(seen))
	for key := range seen {
		rest = append(rest, key)
	}
	sort.Strings(rest)

	return append(header, rest...)
}

// cell renders one provider value verbatim. json.Number keeps its wire
// form; composite values fall back to their JSON encoding.
func cell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
