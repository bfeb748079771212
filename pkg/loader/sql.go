package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ecom-analytics/pkg/models"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	_ "github.com/go-sql-driver/mysql"
)

// OpenSQL opens a read-only connection to a MySQL/MariaDB database holding
// the same five source entities as the CSV directory. Accepts mariadb://
// or mysql:// URLs as well as native driver DSNs.
func OpenSQL(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

// toMySQLDSN converts mariadb:// / mysql:// URLs into the driver's DSN
// format; anything else passes through unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db required)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// LoadRawDataSQL reads the five source entities from their SQL tables into
// the same RawTables shape LoadRawData produces. Only the declared columns
// are selected; nothing is ever written.
func (l *Loader) LoadRawDataSQL(ctx context.Context, db *sql.DB) (*RawTables, error) {
	tables := &RawTables{}
	for _, spec := range tableSpecs {
		df, err := readSQLTable(ctx, db, spec)
		if err != nil {
			return nil, err
		}
		*tables.frame(spec.name) = df
		if l.Verbose {
			log.Printf("[INFO] loaded %s from sql: %d rows", spec.name, df.Nrow())
		}
	}
	return tables, nil
}

func readSQLTable(ctx context.Context, db *sql.DB, spec tableSpec) (dataframe.DataFrame, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(spec.columns, ", "), spec.sqlName)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return dataframe.DataFrame{}, &models.SchemaError{Table: spec.name, Reason: err.Error()}
	}
	defer rows.Close()

	records := [][]string{spec.columns}
	scan := make([]any, len(spec.columns))
	ptrs := make([]any, len(spec.columns))
	for i := range scan {
		ptrs[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("scan %s: %w", spec.name, err)
		}
		row := make([]string, len(scan))
		for i, v := range scan {
			row[i] = stringifySQLValue(v)
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", spec.name, err)
	}

	if len(records) == 1 {
		return emptyFrame(spec), nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(spec.types),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, &models.SchemaError{Table: spec.name, Reason: df.Err.Error()}
	}
	return df, nil
}

// stringifySQLValue renders a driver value the way the CSV files carry it.
// With parseTime enabled the driver hands DATETIME columns back as
// time.Time, so those are formatted with the declared layout.
func stringifySQLValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.UTC().Format(timeLayouts[0])
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// emptyFrame builds a zero-row frame with the declared columns, since gota
// refuses to load a record set that has no data rows.
func emptyFrame(spec tableSpec) dataframe.DataFrame {
	cols := make([]series.Series, len(spec.columns))
	for i, name := range spec.columns {
		t := series.String
		if spec.types != nil {
			if st, ok := spec.types[name]; ok {
				t = st
			}
		}
		cols[i] = series.New([]string{}, t, name)
	}
	return dataframe.New(cols...)
}
