package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ecom-analytics/pkg/loader"
	"ecom-analytics/pkg/metrics"
	"ecom-analytics/pkg/models"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	// .env first, so flag defaults can read the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("skipping .env: %v", err)
	}

	dataPath := flag.String("data", envOr("ECOM_DATA_PATH", "ecommerce_data"), "Directory containing the source CSV files")
	dsn := flag.String("dsn", os.Getenv("ECOM_ANALYTICS_DSN"), "Optional MySQL/MariaDB DSN to read the source tables from instead of CSV")
	currentYear := flag.Int("current_year", 0, "Year to analyze")
	previousYear := flag.Int("previous_year", 0, "Year to compare against")
	month := flag.Int("month", 0, "Optional month filter (1-12, 0 = all)")
	start := flag.String("start", "", "Optional start date (YYYY-MM-DD)")
	end := flag.String("end", "", "Optional end date (YYYY-MM-DD)")
	statuses := flag.String("statuses", "delivered", "Comma-separated order statuses to keep")
	verbose := flag.Bool("v", true, "Verbose output")
	flag.Parse()

	if *currentYear == 0 || *previousYear == 0 {
		log.Fatalf("Usage: ecom-analytics --current_year YYYY --previous_year YYYY [--month M] [--data DIR | --dsn ...]")
	}

	cfg := models.Config{
		CurrentYear:   *currentYear,
		PreviousYear:  *previousYear,
		AnalysisMonth: *month,
		DataPath:      *dataPath,
		Verbose:       *verbose,
	}
	if *start != "" {
		ts, err := time.Parse("2006-01-02", *start)
		if err != nil {
			log.Fatalf("parse start: %v", err)
		}
		cfg.StartDate = ts
	}
	if *end != "" {
		ts, err := time.Parse("2006-01-02", *end)
		if err != nil {
			log.Fatalf("parse end: %v", err)
		}
		cfg.EndDate = ts
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	l := loader.NewLoader(cfg.DataPath)
	l.Verbose = cfg.Verbose
	if *statuses != "" {
		l.Statuses = nil
		for _, s := range strings.Split(*statuses, ",") {
			if s = strings.TrimSpace(s); s != "" {
				l.Statuses = append(l.Statuses, strings.ToLower(s))
			}
		}
	}

	var tables *loader.RawTables
	var err error
	if *dsn != "" {
		db, dsnUsed, openErr := loader.OpenSQL(*dsn)
		if openErr != nil {
			log.Fatalf("open db: %v", openErr)
		}
		defer db.Close()
		if cfg.Verbose {
			log.Printf("[INFO] connected dsn=%s", dsnUsed)
		}
		tables, err = l.LoadRawDataSQL(context.Background(), db)
	} else {
		tables, err = l.LoadRawData()
	}
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	report := l.ValidateDataQuality(tables)
	for _, is := range report.Issues {
		log.Printf("[WARN] quality: %s.%s %s x%d", is.Table, is.Column, is.Kind, is.Count)
	}

	records, err := l.CreateAnalysisDataset(tables)
	if err != nil {
		log.Fatalf("analysis dataset: %v", err)
	}
	if records, err = applyDateRange(records, cfg); err != nil {
		log.Fatalf("date range: %v", err)
	}

	run(records, cfg)
}

func run(records []models.AnalysisRecord, cfg models.Config) {
	bar := progressbar.Default(9)
	step := func() { _ = bar.Add(1) }

	revenue, err := metrics.RevenueMetrics(records, cfg)
	fatalOn("revenue", err)
	step()
	monthly, err := metrics.MonthlyGrowth(records, cfg)
	fatalOn("monthly growth", err)
	step()
	aov, err := metrics.AverageOrderValue(records, cfg)
	fatalOn("aov", err)
	step()
	volume, err := metrics.OrderVolumeMetrics(records, cfg)
	fatalOn("order volume", err)
	step()
	categories, err := metrics.CategoryPerformance(records, cfg)
	fatalOn("categories", err)
	step()
	states, err := metrics.GeographicPerformance(records, cfg)
	fatalOn("geography", err)
	step()
	experience, err := metrics.CustomerExperienceMetrics(records, cfg)
	fatalOn("experience", err)
	step()
	shares, err := metrics.StatusDistribution(records, cfg)
	fatalOn("status distribution", err)
	step()
	summary, err := metrics.BusinessSummary(records, cfg)
	fatalOn("summary", err)
	step()

	fmt.Printf("revenue ; current=%.2f ; previous=%.2f ; growth=%s\n",
		revenue.CurrentRevenue, revenue.PreviousRevenue, pct(revenue.GrowthPercent))
	for _, m := range monthly {
		fmt.Printf("month %02d/%04d ; revenue=%.2f ; mom=%s\n",
			m.Month, cfg.CurrentYear, m.Revenue, pct(m.GrowthPercent))
	}
	fmt.Printf("aov ; current=%s ; previous=%s ; growth=%s\n",
		num(aov.CurrentAOV), num(aov.PreviousAOV), pct(aov.GrowthPercent))
	fmt.Printf("orders ; current=%d ; previous=%d ; growth=%s\n",
		volume.CurrentOrders, volume.PreviousOrders, pct(volume.GrowthPercent))
	for _, c := range categories {
		fmt.Printf("category %s ; revenue=%.2f ; orders=%d ; share=%s\n",
			c.Category, c.Revenue, c.Orders, pct(c.RevenueShare))
	}
	for _, s := range states {
		fmt.Printf("state %s ; revenue=%.2f ; orders=%d\n", s.State, s.Revenue, s.Orders)
	}
	fmt.Printf("experience ; delivery=%s days ; score=%s ; correlation=%s\n",
		num(experience.Current.AvgDeliveryDays), num(experience.Current.AvgReviewScore),
		num(experience.DeliveryReviewCorrelation))
	for _, b := range experience.SatisfactionBySpeed {
		fmt.Printf("delivery %s ; orders=%d ; score=%.3f\n", b.Bucket, b.Orders, b.AvgReviewScore)
	}
	for _, s := range shares {
		fmt.Printf("status %s ; orders=%d ; share=%.2f%%\n", s.Status, s.Orders, s.SharePercent)
	}
	fmt.Printf("summary ; revenue=%.2f (%s) ; orders=%d (%s) ; aov=%s ; delivery=%s ; satisfaction=%s\n",
		summary.CurrentRevenue, summary.RevenueGrowth, summary.CurrentOrders,
		summary.OrderGrowth, summary.CurrentAOV, summary.AvgDeliveryDays, summary.AvgSatisfaction)
}

func applyDateRange(records []models.AnalysisRecord, cfg models.Config) ([]models.AnalysisRecord, error) {
	if cfg.StartDate.IsZero() && cfg.EndDate.IsZero() {
		return records, nil
	}
	to := cfg.EndDate
	if to.IsZero() {
		to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	return loader.FilterByDateRange(records, cfg.StartDate, to)
}

func fatalOn(what string, err error) {
	if err != nil {
		log.Fatalf("compute %s: %v", what, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func pct(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}

func num(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}
