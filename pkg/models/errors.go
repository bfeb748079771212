package models

import (
	"fmt"
	"time"
)

/*
ERRORS → fatal conditions carry the file/column/key that caused them, so a
failed run is diagnosable from the message alone. Data quality problems are
not errors; they are reported through QualityReport.
*/

// MissingFileError means an expected source file is absent from the data
// directory. Analysis cannot proceed.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing source file: %s", e.Path)
}

// SchemaError means a required column is absent or a table cannot be read
// in the declared shape.
type SchemaError struct {
	Table  string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("table %s: required column %s missing", e.Table, e.Column)
	}
	return fmt.Sprintf("table %s: %s", e.Table, e.Reason)
}

// JoinIntegrityError means duplicate join keys would multiply rows beyond
// the configured tolerance.
type JoinIntegrityError struct {
	Table string
	Key   string // offending key value
	Rows  int    // rows the join produced (or would produce)
	Limit int
}

func (e *JoinIntegrityError) Error() string {
	return fmt.Sprintf("join against %s multiplies rows beyond tolerance (key %q, %d rows > limit %d)",
		e.Table, e.Key, e.Rows, e.Limit)
}

// InvalidRangeError means a date-range filter has start after end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

// Quality issue kinds reported by the loader.
const (
	QualityNullKey       = "null_key"
	QualityDuplicateKey  = "duplicate_key"
	QualityNegativeValue = "negative_value"
)

// QualityIssue counts one kind of problem in one column of one table.
type QualityIssue struct {
	Table  string
	Column string
	Kind   string
	Count  int
}

// QualityReport aggregates non-fatal data problems found during validation.
// It is returned alongside results, never instead of them.
type QualityReport struct {
	Issues []QualityIssue
}

// Count sums the occurrences of one issue kind across all tables.
func (r QualityReport) Count(kind string) int {
	total := 0
	for _, is := range r.Issues {
		if is.Kind == kind {
			total += is.Count
		}
	}
	return total
}

// Clean reports whether validation found no issues at all.
func (r QualityReport) Clean() bool {
	return len(r.Issues) == 0
}
