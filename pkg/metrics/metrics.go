// Package metrics computes descriptive business metrics over the analysis
// dataset. Every function is a pure transform: it takes the records plus a
// window config, validates the window, and returns a small result table.
// Nothing is cached and the input is never modified, so any function can be
// called repeatedly or in any order.
//
// Revenue convention: item price only, freight excluded. The freight value
// stays on the record for quality checks but never enters a revenue sum.
package metrics

import (
	"database/sql"

	"ecom-analytics/pkg/models"
)

// inPeriod reports whether a record belongs to the given year, restricted
// to the analysis month when one is set.
func inPeriod(r models.AnalysisRecord, year, month int) bool {
	if r.Year != year {
		return false
	}
	return month == 0 || r.Month == month
}

func sumRevenue(records []models.AnalysisRecord, year, month int) float64 {
	total := 0.0
	for _, r := range records {
		if inPeriod(r, year, month) {
			total += r.Price
		}
	}
	return total
}

func distinctOrders(records []models.AnalysisRecord, year, month int) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if inPeriod(r, year, month) {
			seen[r.OrderID] = struct{}{}
		}
	}
	return len(seen)
}

// growthPercent is (current - previous) / previous × 100, undefined when
// the previous period is empty.
func growthPercent(current, previous float64) sql.NullFloat64 {
	if previous == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: (current - previous) / previous * 100, Valid: true}
}
