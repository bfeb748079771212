// Package loader reads the raw e-commerce source tables, validates and
// cleans them, and joins them into the analysis dataset consumed by the
// metrics package. Every operation returns new values; caller-visible
// input is never mutated.
package loader

import (
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ecom-analytics/pkg/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultJoinTolerance is the accepted row multiplication from duplicate
// reviews: the joined dataset may exceed the order-item count by 5%.
const DefaultJoinTolerance = 0.05

// Loader reads and joins the source tables found under Path.
type Loader struct {
	Path          string
	Statuses      []string // order statuses kept by PrepareSalesData
	JoinTolerance float64
	Verbose       bool
}

// NewLoader returns a Loader with the defaults the notebook analysis uses:
// delivered orders only, 5% review duplication tolerance.
func NewLoader(path string) *Loader {
	return &Loader{
		Path:          path,
		Statuses:      []string{"delivered"},
		JoinTolerance: DefaultJoinTolerance,
	}
}

// LoadRawData reads the five expected CSV files from the data directory.
// An absent file fails with *models.MissingFileError, an absent required
// column with *models.SchemaError.
func (l *Loader) LoadRawData() (*RawTables, error) {
	tables := &RawTables{}
	for _, spec := range tableSpecs {
		path := filepath.Join(l.Path, spec.file)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &models.MissingFileError{Path: path}
			}
			return nil, &models.SchemaError{Table: spec.name, Reason: err.Error()}
		}
		df := dataframe.ReadCSV(f,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.WithTypes(spec.types),
		)
		f.Close()
		if df.Err != nil {
			return nil, &models.SchemaError{Table: spec.name, Reason: df.Err.Error()}
		}
		if err := checkColumns(spec, df); err != nil {
			return nil, err
		}
		*tables.frame(spec.name) = df
		if l.Verbose {
			log.Printf("[INFO] loaded %s: %d rows, %d cols", spec.name, df.Nrow(), df.Ncol())
		}
	}
	return tables, nil
}

func checkColumns(spec tableSpec, df dataframe.DataFrame) error {
	have := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		have[n] = true
	}
	for _, col := range spec.columns {
		if !have[col] {
			return &models.SchemaError{Table: spec.name, Column: col}
		}
	}
	return nil
}

// Cell helpers shared by the prepare/join/quality code. gota renders
// missing values as "" or "NaN" depending on the column type.

func cellMissing(s string) bool {
	return s == "" || s == "NaN"
}

func parseFloatCell(s string) (float64, bool) {
	if cellMissing(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func parseIntCell(s string) (int, bool) {
	if cellMissing(s) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseTimeCell(s string) (time.Time, bool) {
	if cellMissing(s) {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
