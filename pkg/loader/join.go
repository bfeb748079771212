package loader

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"ecom-analytics/pkg/models"
)

// CreateAnalysisDataset prepares the raw tables and joins them into one
// record per order line item: order_items joined to orders (inner, which
// also applies the status filter), then products, customers, and reviews
// joined left so an item without a match still appears with the field
// absent. Duplicate keys that would multiply rows beyond the configured
// tolerance fail with *models.JoinIntegrityError.
func (l *Loader) CreateAnalysisDataset(tables *RawTables) ([]models.AnalysisRecord, error) {
	prep, err := l.PrepareSalesData(tables)
	if err != nil {
		return nil, err
	}

	// Dimension tables must be unique on their key, otherwise every joined
	// item row multiplies.
	for _, name := range []string{tableOrders, tableProducts, tableCustomers} {
		spec := specFor(name)
		if dups, worst, worstN := duplicateKeyCount(*prep.frame(name), spec.key); dups > 0 {
			return nil, &models.JoinIntegrityError{Table: name, Key: worst, Rows: worstN, Limit: 1}
		}
	}

	sales := prep.OrderItems.InnerJoin(prep.Orders, "order_id")
	if sales.Err != nil {
		return nil, fmt.Errorf("join order_items/orders: %w", sales.Err)
	}
	base := sales.Nrow()

	joined := sales.
		LeftJoin(prep.Products, "product_id").
		LeftJoin(prep.Customers, "customer_id").
		LeftJoin(prep.Reviews, "order_id")
	if joined.Err != nil {
		return nil, fmt.Errorf("join analysis dataset: %w", joined.Err)
	}

	// Only reviews can still multiply rows: an order reviewed twice doubles
	// each of its items. Tolerate a bounded amount of that.
	limit := base + int(float64(base)*l.JoinTolerance)
	if joined.Nrow() > limit {
		_, worst, _ := duplicateKeyCount(prep.Reviews, []string{"order_id"})
		return nil, &models.JoinIntegrityError{
			Table: tableReviews, Key: worst, Rows: joined.Nrow(), Limit: limit,
		}
	}

	records := joined.Records()
	if len(records) == 0 {
		return nil, nil
	}
	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[name] = i
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok {
			return ""
		}
		return row[i]
	}

	out := make([]models.AnalysisRecord, 0, len(records)-1)
	skipped := 0
	for _, row := range records[1:] {
		purchasedAt, ok := parseTimeCell(cell(row, "order_purchase_timestamp"))
		if !ok || cellMissing(cell(row, "order_id")) {
			skipped++
			continue
		}
		price, ok := parseFloatCell(cell(row, "price"))
		if !ok {
			skipped++
			continue
		}
		freight, _ := parseFloatCell(cell(row, "freight_value"))
		itemID, _ := parseIntCell(cell(row, "order_item_id"))

		rec := models.AnalysisRecord{
			OrderID:         cell(row, "order_id"),
			OrderItemID:     itemID,
			CustomerID:      cleanCell(cell(row, "customer_id")),
			CustomerCity:    cleanCell(cell(row, "customer_city")),
			CustomerState:   cleanCell(cell(row, "customer_state")),
			ProductID:       cleanCell(cell(row, "product_id")),
			ProductCategory: cleanCell(cell(row, "product_category_name")),
			OrderStatus:     cleanCell(cell(row, "order_status")),
			PurchasedAt:     purchasedAt,
			Price:           price,
			FreightValue:    freight,
			Year:            purchasedAt.Year(),
			Month:           int(purchasedAt.Month()),
			Quarter:         (int(purchasedAt.Month())-1)/3 + 1,
			Weekday:         purchasedAt.Weekday(),
		}
		// Delivery dates that precede the purchase are treated as absent.
		if d, ok := parseTimeCell(cell(row, "order_delivered_customer_date")); ok && !d.Before(purchasedAt) {
			rec.DeliveredAt = d
			rec.DeliveryDays = sql.NullFloat64{Float64: d.Sub(purchasedAt).Hours() / 24, Valid: true}
		}
		if est, ok := parseTimeCell(cell(row, "order_estimated_delivery_date")); ok {
			rec.EstimatedDelivery = est
		}
		if score, ok := parseFloatCell(cell(row, "review_score")); ok {
			rec.ReviewScore = sql.NullFloat64{Float64: score, Valid: true}
		}
		out = append(out, rec)
	}
	if l.Verbose {
		log.Printf("[INFO] analysis dataset: %d records (%d rows skipped)", len(out), skipped)
	}
	return out, nil
}

// cleanCell maps gota's NaN rendering back to an empty field.
func cleanCell(s string) string {
	if cellMissing(s) {
		return ""
	}
	return s
}

// FilterByDateRange returns the records whose purchase timestamp falls in
// [start, end], bounds inclusive. start after end fails with
// *models.InvalidRangeError. The input slice is never modified.
func FilterByDateRange(records []models.AnalysisRecord, start, end time.Time) ([]models.AnalysisRecord, error) {
	if start.After(end) {
		return nil, &models.InvalidRangeError{Start: start, End: end}
	}
	out := make([]models.AnalysisRecord, 0, len(records))
	for _, r := range records {
		if !r.PurchasedAt.Before(start) && !r.PurchasedAt.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}
