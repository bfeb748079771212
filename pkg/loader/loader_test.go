package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecom-analytics/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// writeFixture lays down a small but complete data directory: two delivered
// orders (o1 with two items, o2 with one) plus one canceled order, two
// products, two customers, and reviews for o1 and o2 only.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "orders_dataset.csv",
		`order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2017-05-10 10:00:00,2017-05-15 10:00:00,2017-05-20 00:00:00
o2,c2,delivered,2017-06-01 00:00:00,2017-06-10 00:00:00,2017-06-12 00:00:00
o3,c1,canceled,2017-07-01 09:30:00,,2017-07-15 00:00:00
`)
	writeFile(t, dir, "order_items_dataset.csv",
		`order_id,order_item_id,product_id,price,freight_value
o1,1,p1,100.0,10.0
o1,2,p2,50.0,5.0
o2,1,p1,150.0,15.0
o3,1,p2,30.0,3.0
`)
	writeFile(t, dir, "products_dataset.csv",
		`product_id,product_category_name
p1,Electronics
p2,books_media
`)
	writeFile(t, dir, "customers_dataset.csv",
		`customer_id,customer_city,customer_state
c1,Sao Paulo,sp
c2,Rio de Janeiro,rj
`)
	writeFile(t, dir, "order_reviews_dataset.csv",
		`review_id,order_id,review_score
r1,o1,5
r2,o2,3
`)
	return dir
}

func TestLoadRawData_MissingFile(t *testing.T) {
	dir := writeFixture(t)
	if err := os.Remove(filepath.Join(dir, "order_reviews_dataset.csv")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err := NewLoader(dir).LoadRawData()
	var missing *models.MissingFileError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFileError, got %v", err)
	}
	if filepath.Base(missing.Path) != "order_reviews_dataset.csv" {
		t.Fatalf("error names wrong file: %s", missing.Path)
	}
}

func TestLoadRawData_MissingColumn(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "products_dataset.csv", "product_id\np1\np2\n")
	_, err := NewLoader(dir).LoadRawData()
	var schema *models.SchemaError
	if !errors.As(err, &schema) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schema.Table != "products" || schema.Column != "product_category_name" {
		t.Fatalf("error names wrong table/column: %+v", schema)
	}
}

func TestValidateDataQuality_NegativeFreight(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "order_items_dataset.csv",
		`order_id,order_item_id,product_id,price,freight_value
o1,1,p1,100.0,-10.0
o2,1,p1,150.0,15.0
`)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	report := l.ValidateDataQuality(tables)
	if n := report.Count(models.QualityNegativeValue); n != 1 {
		t.Fatalf("got %d negative_value issues, want 1", n)
	}
	for _, is := range report.Issues {
		if is.Kind == models.QualityNegativeValue && (is.Table != "order_items" || is.Column != "freight_value") {
			t.Fatalf("issue attributed to wrong column: %+v", is)
		}
	}
}

func TestValidateDataQuality_DuplicateOrderID(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "orders_dataset.csv",
		`order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2017-05-10 10:00:00,2017-05-15 10:00:00,2017-05-20 00:00:00
o1,c1,delivered,2017-05-10 10:00:00,2017-05-15 10:00:00,2017-05-20 00:00:00
`)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	report := l.ValidateDataQuality(tables)
	if n := report.Count(models.QualityDuplicateKey); n != 1 {
		t.Fatalf("got %d duplicate_key issues, want 1", n)
	}
	if report.Clean() {
		t.Fatal("report should not be clean")
	}
}

func TestCreateAnalysisDataset_JoinsAndDerives(t *testing.T) {
	dir := writeFixture(t)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// o3 is canceled, so only o1's two items and o2's one survive.
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	r := records[0]
	if r.OrderID != "o1" || r.ProductCategory != "electronics" || r.CustomerState != "SP" {
		t.Fatalf("unexpected first record: %+v", r)
	}
	if r.Year != 2017 || r.Month != 5 || r.Quarter != 2 || r.Weekday != time.Wednesday {
		t.Fatalf("bad time features: year=%d month=%d quarter=%d weekday=%v", r.Year, r.Month, r.Quarter, r.Weekday)
	}
	if !r.DeliveryDays.Valid || r.DeliveryDays.Float64 != 5 {
		t.Fatalf("delivery days = %+v, want 5", r.DeliveryDays)
	}
	if !r.ReviewScore.Valid || r.ReviewScore.Float64 != 5 {
		t.Fatalf("review score = %+v, want 5", r.ReviewScore)
	}
}

func TestCreateAnalysisDataset_DeliveryBeforePurchaseTreatedAsAbsent(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "orders_dataset.csv",
		`order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2017-05-10 10:00:00,2017-05-01 10:00:00,2017-05-20 00:00:00
o2,c2,delivered,2017-06-01 00:00:00,2017-06-10 00:00:00,2017-06-12 00:00:00
`)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, r := range records {
		if r.OrderID != "o1" {
			continue
		}
		if !r.DeliveredAt.IsZero() {
			t.Fatalf("delivery preceding purchase must be discarded, got %v", r.DeliveredAt)
		}
		if r.DeliveryDays.Valid {
			t.Fatalf("delivery days should be undefined, got %+v", r.DeliveryDays)
		}
	}
}

func TestCreateAnalysisDataset_DropsNegativeMoneyRows(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "order_items_dataset.csv",
		`order_id,order_item_id,product_id,price,freight_value
o1,1,p1,-100.0,10.0
o1,2,p2,50.0,-5.0
o2,1,p1,150.0,15.0
`)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(records) != 1 || records[0].OrderID != "o2" {
		t.Fatalf("negative price/freight rows must be dropped, got %d records", len(records))
	}
	if records[0].Price < 0 || records[0].FreightValue < 0 {
		t.Fatalf("surviving record carries negative money: %+v", records[0])
	}
}

func TestCreateAnalysisDataset_PreservesItemWithoutReview(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "order_reviews_dataset.csv",
		"review_id,order_id,review_score\nr1,o1,5\n")
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3: unreviewed item must not be lost", len(records))
	}
	for _, r := range records {
		if r.OrderID == "o2" && r.ReviewScore.Valid {
			t.Fatalf("o2 has no review, score should be undefined: %+v", r.ReviewScore)
		}
	}
}

func TestCreateAnalysisDataset_DuplicateCustomerKey(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "customers_dataset.csv",
		"customer_id,customer_city,customer_state\nc1,Sao Paulo,sp\nc1,Campinas,sp\nc2,Rio de Janeiro,rj\n")
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = l.CreateAnalysisDataset(tables)
	var join *models.JoinIntegrityError
	if !errors.As(err, &join) {
		t.Fatalf("expected JoinIntegrityError, got %v", err)
	}
	if join.Table != "customers" || join.Key != "c1" {
		t.Fatalf("error names wrong table/key: %+v", join)
	}
}

func TestCreateAnalysisDataset_ReviewMultiplicationBeyondTolerance(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "order_reviews_dataset.csv",
		"review_id,order_id,review_score\nr1,o1,5\nr2,o1,4\nr3,o1,1\nr4,o2,3\n")
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Three reviews for o1 triple both of its items: 7 rows from a 3-item base.
	_, err = l.CreateAnalysisDataset(tables)
	var join *models.JoinIntegrityError
	if !errors.As(err, &join) {
		t.Fatalf("expected JoinIntegrityError, got %v", err)
	}
	if join.Table != "reviews" || join.Key != "o1" {
		t.Fatalf("error names wrong table/key: %+v", join)
	}
}

func TestCreateAnalysisDataset_ReviewDuplicationWithinTolerance(t *testing.T) {
	dir := writeFixture(t)
	writeFile(t, dir, "order_reviews_dataset.csv",
		"review_id,order_id,review_score\nr1,o1,5\nr2,o2,3\nr3,o2,4\n")
	l := NewLoader(dir)
	l.JoinTolerance = 0.5
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// o2's duplicated review doubles its single item: 4 rows ≤ 3*(1+0.5).
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
}

func TestFilterByDateRange_InvalidRange(t *testing.T) {
	a := time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2017, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := FilterByDateRange(nil, a, b)
	var rng *models.InvalidRangeError
	if !errors.As(err, &rng) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
}

func TestFilterByDateRange_InclusiveAndExact(t *testing.T) {
	dir := writeFixture(t)
	l := NewLoader(dir)
	tables, err := l.LoadRawData()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	exact := time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := FilterByDateRange(records, exact, exact)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(got) != 1 || got[0].OrderID != "o2" {
		t.Fatalf("equal bounds should match only the exact timestamp, got %d records", len(got))
	}

	all, err := FilterByDateRange(records,
		time.Date(2017, 5, 10, 10, 0, 0, 0, time.UTC),
		time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("bounds are inclusive, got %d records, want 3", len(all))
	}
	if len(records) != 3 {
		t.Fatal("input slice must not shrink")
	}
}
