package metrics

import (
	"database/sql"
	"sort"

	"ecom-analytics/pkg/models"
)

// RevenueMetrics sums revenue for the current and previous periods and
// reports year-over-year growth. Growth is undefined when the previous
// period had no revenue.
func RevenueMetrics(records []models.AnalysisRecord, cfg models.Config) (models.RevenueMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return models.RevenueMetrics{}, err
	}
	cur := sumRevenue(records, cfg.CurrentYear, cfg.AnalysisMonth)
	prev := sumRevenue(records, cfg.PreviousYear, cfg.AnalysisMonth)
	return models.RevenueMetrics{
		CurrentRevenue:  cur,
		PreviousRevenue: prev,
		GrowthPercent:   growthPercent(cur, prev),
	}, nil
}

// MonthlyGrowth returns revenue per calendar month of the current year with
// the month-over-month change. Months without records are omitted; the
// first month present has no prior comparison and its growth is undefined.
func MonthlyGrowth(records []models.AnalysisRecord, cfg models.Config) ([]models.MonthlyRevenue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	byMonth := make(map[int]float64)
	for _, r := range records {
		if r.Year == cfg.CurrentYear {
			byMonth[r.Month] += r.Price
		}
	}
	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Ints(months)

	out := make([]models.MonthlyRevenue, 0, len(months))
	for i, m := range months {
		row := models.MonthlyRevenue{Month: m, Revenue: byMonth[m]}
		if i > 0 {
			row.GrowthPercent = growthPercent(byMonth[m], byMonth[months[i-1]])
		}
		out = append(out, row)
	}
	return out, nil
}

// AverageOrderValue is total revenue divided by distinct order count, per
// period, compared the same way as revenue growth.
func AverageOrderValue(records []models.AnalysisRecord, cfg models.Config) (models.AOVMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return models.AOVMetrics{}, err
	}
	out := models.AOVMetrics{
		CurrentAOV:  aov(records, cfg.CurrentYear, cfg.AnalysisMonth),
		PreviousAOV: aov(records, cfg.PreviousYear, cfg.AnalysisMonth),
	}
	if out.CurrentAOV.Valid && out.PreviousAOV.Valid {
		out.GrowthPercent = growthPercent(out.CurrentAOV.Float64, out.PreviousAOV.Float64)
	}
	return out, nil
}

func aov(records []models.AnalysisRecord, year, month int) sql.NullFloat64 {
	orders := distinctOrders(records, year, month)
	if orders == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{
		Float64: sumRevenue(records, year, month) / float64(orders),
		Valid:   true,
	}
}

// OrderVolumeMetrics compares distinct order counts between the periods.
func OrderVolumeMetrics(records []models.AnalysisRecord, cfg models.Config) (models.OrderVolumeMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return models.OrderVolumeMetrics{}, err
	}
	cur := distinctOrders(records, cfg.CurrentYear, cfg.AnalysisMonth)
	prev := distinctOrders(records, cfg.PreviousYear, cfg.AnalysisMonth)
	return models.OrderVolumeMetrics{
		CurrentOrders:  cur,
		PreviousOrders: prev,
		GrowthPercent:  growthPercent(float64(cur), float64(prev)),
	}, nil
}
