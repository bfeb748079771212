package metrics

import (
	"database/sql"
	"sort"

	"ecom-analytics/pkg/models"
)

// CategoryPerformance groups current-period revenue by product category,
// sorted descending by revenue. Records without a category are excluded
// from the rows but still count toward the share denominator, so the
// returned shares sum to at most 100%.
func CategoryPerformance(records []models.AnalysisRecord, cfg models.Config) ([]models.CategoryPerformance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	total := 0.0
	revenue := make(map[string]float64)
	orders := make(map[string]map[string]struct{})
	for _, r := range records {
		if !inPeriod(r, cfg.CurrentYear, cfg.AnalysisMonth) {
			continue
		}
		total += r.Price
		if r.ProductCategory == "" {
			continue
		}
		revenue[r.ProductCategory] += r.Price
		if orders[r.ProductCategory] == nil {
			orders[r.ProductCategory] = make(map[string]struct{})
		}
		orders[r.ProductCategory][r.OrderID] = struct{}{}
	}

	out := make([]models.CategoryPerformance, 0, len(revenue))
	for cat, rev := range revenue {
		row := models.CategoryPerformance{
			Category: cat,
			Revenue:  rev,
			Orders:   len(orders[cat]),
		}
		if total > 0 {
			row.RevenueShare = sql.NullFloat64{Float64: rev / total * 100, Valid: true}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// GeographicPerformance groups current-period revenue and distinct order
// counts by customer state, sorted descending by revenue. Records without
// a resolved state are omitted.
func GeographicPerformance(records []models.AnalysisRecord, cfg models.Config) ([]models.StatePerformance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	revenue := make(map[string]float64)
	orders := make(map[string]map[string]struct{})
	for _, r := range records {
		if !inPeriod(r, cfg.CurrentYear, cfg.AnalysisMonth) || r.CustomerState == "" {
			continue
		}
		revenue[r.CustomerState] += r.Price
		if orders[r.CustomerState] == nil {
			orders[r.CustomerState] = make(map[string]struct{})
		}
		orders[r.CustomerState][r.OrderID] = struct{}{}
	}

	out := make([]models.StatePerformance, 0, len(revenue))
	for state, rev := range revenue {
		out = append(out, models.StatePerformance{
			State:   state,
			Revenue: rev,
			Orders:  len(orders[state]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].State < out[j].State
	})
	return out, nil
}
