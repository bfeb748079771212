package metrics

import (
	"database/sql"
	"math"
	"sort"

	"ecom-analytics/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// Delivery speed bands used for the satisfaction breakdown.
const (
	speedFast   = "1-3 days"
	speedMedium = "4-7 days"
	speedSlow   = "8+ days"
)

// orderExperience holds the order-level values behind the line items: an
// order's delivery time and review score repeat on each of its items, so
// experience metrics are computed over distinct orders.
type orderExperience struct {
	deliveryDays sql.NullFloat64
	reviewScore  sql.NullFloat64
}

// CustomerExperienceMetrics computes average delivery time and review score
// per period, plus the Pearson correlation between delivery time and review
// score over current-period orders where both are present. Orders missing
// either value are excluded from the correlation but still contribute to
// the separate averages.
func CustomerExperienceMetrics(records []models.AnalysisRecord, cfg models.Config) (models.ExperienceMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return models.ExperienceMetrics{}, err
	}
	current := orderExperiences(records, cfg.CurrentYear, cfg.AnalysisMonth)
	previous := orderExperiences(records, cfg.PreviousYear, cfg.AnalysisMonth)

	out := models.ExperienceMetrics{
		Current:  periodExperience(current),
		Previous: periodExperience(previous),
	}

	var days, scores []float64
	buckets := make(map[string][]float64)
	for _, oe := range current {
		if !oe.deliveryDays.Valid || !oe.reviewScore.Valid {
			continue
		}
		days = append(days, oe.deliveryDays.Float64)
		scores = append(scores, oe.reviewScore.Float64)
		b := speedBucket(oe.deliveryDays.Float64)
		buckets[b] = append(buckets[b], oe.reviewScore.Float64)
	}
	if len(days) >= 2 {
		if c := stat.Correlation(days, scores, nil); !math.IsNaN(c) {
			out.DeliveryReviewCorrelation = sql.NullFloat64{Float64: c, Valid: true}
		}
	}
	for _, b := range []string{speedFast, speedMedium, speedSlow} {
		vals := buckets[b]
		if len(vals) == 0 {
			continue
		}
		out.SatisfactionBySpeed = append(out.SatisfactionBySpeed, models.SpeedBucket{
			Bucket:         b,
			Orders:         len(vals),
			AvgReviewScore: stat.Mean(vals, nil),
		})
	}
	return out, nil
}

func orderExperiences(records []models.AnalysisRecord, year, month int) map[string]orderExperience {
	out := make(map[string]orderExperience)
	for _, r := range records {
		if !inPeriod(r, year, month) {
			continue
		}
		if _, seen := out[r.OrderID]; seen {
			continue
		}
		out[r.OrderID] = orderExperience{
			deliveryDays: r.DeliveryDays,
			reviewScore:  r.ReviewScore,
		}
	}
	return out
}

func periodExperience(orders map[string]orderExperience) models.PeriodExperience {
	var days, scores []float64
	for _, oe := range orders {
		if oe.deliveryDays.Valid {
			days = append(days, oe.deliveryDays.Float64)
		}
		if oe.reviewScore.Valid {
			scores = append(scores, oe.reviewScore.Float64)
		}
	}
	var out models.PeriodExperience
	if len(days) > 0 {
		out.AvgDeliveryDays = sql.NullFloat64{Float64: stat.Mean(days, nil), Valid: true}
	}
	if len(scores) > 0 {
		out.AvgReviewScore = sql.NullFloat64{Float64: stat.Mean(scores, nil), Valid: true}
	}
	return out
}

func speedBucket(days float64) string {
	switch {
	case days <= 3:
		return speedFast
	case days <= 7:
		return speedMedium
	default:
		return speedSlow
	}
}

// StatusDistribution returns the share of distinct current-period orders in
// each order status. Meaningful when the dataset was built without the
// delivered-only status filter.
func StatusDistribution(records []models.AnalysisRecord, cfg models.Config) ([]models.StatusShare, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	statusByOrder := make(map[string]string)
	for _, r := range records {
		if inPeriod(r, cfg.CurrentYear, cfg.AnalysisMonth) {
			statusByOrder[r.OrderID] = r.OrderStatus
		}
	}
	if len(statusByOrder) == 0 {
		return nil, nil
	}
	counts := make(map[string]int)
	for _, status := range statusByOrder {
		counts[status]++
	}
	total := float64(len(statusByOrder))
	out := make([]models.StatusShare, 0, len(counts))
	for status, n := range counts {
		out = append(out, models.StatusShare{
			Status:       status,
			Orders:       n,
			SharePercent: float64(n) / total * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Orders != out[j].Orders {
			return out[i].Orders > out[j].Orders
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}
