package metrics

import (
	"database/sql"
	"fmt"

	"ecom-analytics/pkg/models"
)

// BusinessSummary rolls revenue, order volume, AOV, and customer experience
// into the formatted figures printed at the end of a run.
func BusinessSummary(records []models.AnalysisRecord, cfg models.Config) (models.BusinessSummary, error) {
	revenue, err := RevenueMetrics(records, cfg)
	if err != nil {
		return models.BusinessSummary{}, err
	}
	aovs, err := AverageOrderValue(records, cfg)
	if err != nil {
		return models.BusinessSummary{}, err
	}
	volume, err := OrderVolumeMetrics(records, cfg)
	if err != nil {
		return models.BusinessSummary{}, err
	}
	cx, err := CustomerExperienceMetrics(records, cfg)
	if err != nil {
		return models.BusinessSummary{}, err
	}

	return models.BusinessSummary{
		CurrentRevenue:  revenue.CurrentRevenue,
		RevenueGrowth:   fmtPercent(revenue.GrowthPercent),
		CurrentOrders:   volume.CurrentOrders,
		CurrentAOV:      fmtMoney(aovs.CurrentAOV),
		OrderGrowth:     fmtPercent(volume.GrowthPercent),
		AvgDeliveryDays: fmtDays(cx.Current.AvgDeliveryDays),
		AvgSatisfaction: fmtScore(cx.Current.AvgReviewScore),
	}, nil
}

func fmtPercent(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}

func fmtMoney(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", v.Float64)
}

func fmtDays(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f days", v.Float64)
}

func fmtScore(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f/5.0", v.Float64)
}
