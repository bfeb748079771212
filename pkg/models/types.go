package models

import (
	"database/sql"
	"fmt"
	"time"
)

/*
LOAD → one row of the joined analysis dataset, one record per order line item.
*/

// AnalysisRecord carries everything the metric functions need: order and
// customer identity, product category, timestamps, money, and the optional
// matched review. Derived time features are filled in at join time.
type AnalysisRecord struct {
	OrderID           string
	OrderItemID       int
	CustomerID        string
	CustomerCity      string
	CustomerState     string
	ProductID         string
	ProductCategory   string
	OrderStatus       string
	PurchasedAt       time.Time
	DeliveredAt       time.Time // zero when the order was never delivered
	EstimatedDelivery time.Time
	Price             float64
	FreightValue      float64
	ReviewScore       sql.NullFloat64

	// Derived from PurchasedAt / DeliveredAt.
	Year         int
	Month        int
	Quarter      int
	Weekday      time.Weekday
	DeliveryDays sql.NullFloat64
}

/*
CONFIG → analysis window, passed explicitly to every metric function.
*/

// Config describes the comparison window and data location. It is built by
// the caller (CLI, notebook bridge, ...) and only validated here.
type Config struct {
	CurrentYear   int
	PreviousYear  int
	AnalysisMonth int       // 0 = all months, otherwise 1..12
	StartDate     time.Time // optional pre-filter bounds, zero = unbounded
	EndDate       time.Time
	DataPath      string
	Verbose       bool
}

// Validate checks the window invariants shared by all metric functions.
func (c Config) Validate() error {
	if c.CurrentYear != 0 && c.PreviousYear != 0 && c.PreviousYear >= c.CurrentYear {
		return fmt.Errorf("previous_year %d must be before current_year %d", c.PreviousYear, c.CurrentYear)
	}
	if c.AnalysisMonth != 0 && (c.AnalysisMonth < 1 || c.AnalysisMonth > 12) {
		return fmt.Errorf("analysis_month %d out of range 1..12", c.AnalysisMonth)
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start_date %s after end_date %s",
			c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	}
	return nil
}

/*
COMPUTE → result tables returned by the metrics package. Ratios that have no
defined value (zero denominator, first month of a series) are reported as
sql.NullFloat64 with Valid=false rather than zero.
*/

// RevenueMetrics compares total revenue between the two window periods.
type RevenueMetrics struct {
	CurrentRevenue  float64
	PreviousRevenue float64
	GrowthPercent   sql.NullFloat64
}

// MonthlyRevenue is one row of the month-over-month growth series.
type MonthlyRevenue struct {
	Month         int
	Revenue       float64
	GrowthPercent sql.NullFloat64 // vs the previous month present in the series
}

// AOVMetrics compares average order value between the two window periods.
type AOVMetrics struct {
	CurrentAOV    sql.NullFloat64
	PreviousAOV   sql.NullFloat64
	GrowthPercent sql.NullFloat64
}

// OrderVolumeMetrics compares distinct order counts between the two periods.
type OrderVolumeMetrics struct {
	CurrentOrders  int
	PreviousOrders int
	GrowthPercent  sql.NullFloat64
}

// CategoryPerformance is one row of the per-category revenue table.
type CategoryPerformance struct {
	Category     string
	Revenue      float64
	Orders       int
	RevenueShare sql.NullFloat64 // percent of total window revenue
}

// StatePerformance is one row of the per-state revenue table.
type StatePerformance struct {
	State   string
	Revenue float64
	Orders  int
}

// PeriodExperience holds delivery/satisfaction averages for one period.
type PeriodExperience struct {
	AvgDeliveryDays sql.NullFloat64
	AvgReviewScore  sql.NullFloat64
}

// SpeedBucket is the average review score for one delivery-speed band.
type SpeedBucket struct {
	Bucket         string
	Orders         int
	AvgReviewScore float64
}

// ExperienceMetrics relates delivery time to customer satisfaction.
type ExperienceMetrics struct {
	Current                   PeriodExperience
	Previous                  PeriodExperience
	DeliveryReviewCorrelation sql.NullFloat64 // Pearson, current period
	SatisfactionBySpeed       []SpeedBucket
}

// StatusShare is the fraction of distinct orders in one order status.
type StatusShare struct {
	Status       string
	Orders       int
	SharePercent float64
}

// BusinessSummary is the formatted roll-up printed at the end of a run.
type BusinessSummary struct {
	CurrentRevenue  float64
	RevenueGrowth   string
	CurrentOrders   int
	CurrentAOV      string
	OrderGrowth     string
	AvgDeliveryDays string
	AvgSatisfaction string
}
