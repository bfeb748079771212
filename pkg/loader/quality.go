package loader

import (
	"strings"

	"ecom-analytics/pkg/models"

	"github.com/go-gota/gota/dataframe"
)

// Columns whose values must be non-negative, per table.
var nonNegativeColumns = map[string][]string{
	tableOrderItems: {"price", "freight_value"},
}

// ValidateDataQuality scans the raw tables for null keys, duplicate primary
// keys, and negative money values. It never mutates its input; the report
// is informational and analysis continues regardless.
func (l *Loader) ValidateDataQuality(tables *RawTables) models.QualityReport {
	var report models.QualityReport
	for _, spec := range tableSpecs {
		df := tables.frame(spec.name)
		if df == nil || df.Nrow() == 0 {
			continue
		}
		for _, col := range spec.key {
			if n := countNullCells(*df, col); n > 0 {
				report.Issues = append(report.Issues, models.QualityIssue{
					Table: spec.name, Column: col, Kind: models.QualityNullKey, Count: n,
				})
			}
		}
		if n, _, _ := duplicateKeyCount(*df, spec.key); n > 0 {
			report.Issues = append(report.Issues, models.QualityIssue{
				Table: spec.name, Column: strings.Join(spec.key, ","),
				Kind: models.QualityDuplicateKey, Count: n,
			})
		}
		for _, col := range nonNegativeColumns[spec.name] {
			if n := countNegativeCells(*df, col); n > 0 {
				report.Issues = append(report.Issues, models.QualityIssue{
					Table: spec.name, Column: col, Kind: models.QualityNegativeValue, Count: n,
				})
			}
		}
	}
	return report
}

func countNullCells(df dataframe.DataFrame, col string) int {
	n := 0
	for _, v := range df.Col(col).Records() {
		if cellMissing(v) {
			n++
		}
	}
	return n
}

func countNegativeCells(df dataframe.DataFrame, col string) int {
	n := 0
	for _, v := range df.Col(col).Records() {
		if f, ok := parseFloatCell(v); ok && f < 0 {
			n++
		}
	}
	return n
}

// duplicateKeyCount returns how many rows repeat an already-seen key, the
// most repeated key value, and how many rows carry that value.
func duplicateKeyCount(df dataframe.DataFrame, key []string) (int, string, int) {
	cols := make([][]string, len(key))
	for i, k := range key {
		cols[i] = df.Col(k).Records()
	}
	seen := make(map[string]int, df.Nrow())
	dups, worst, worstN := 0, "", 0
	for row := 0; row < df.Nrow(); row++ {
		parts := make([]string, len(cols))
		for i := range cols {
			parts[i] = cols[i][row]
		}
		k := strings.Join(parts, "|")
		seen[k]++
		if seen[k] > 1 {
			dups++
			if seen[k] > worstN {
				worst, worstN = k, seen[k]
			}
		}
	}
	return dups, worst, worstN
}
