package loader

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// PrepareSalesData selects the declared columns, standardizes categorical
// text, restricts orders to the configured statuses, and drops rows whose
// required fields are null or out of range. All work happens on derived
// frames; the input tables are left untouched.
//
// Filter calls are chained one condition at a time: gota combines filters
// passed to a single Filter call with OR, not AND.
func (l *Loader) PrepareSalesData(tables *RawTables) (*RawTables, error) {
	out := &RawTables{}

	orders := tables.Orders.Select(specFor(tableOrders).columns)
	orders = normalizeColumn(orders, "order_status", lowerTrim)
	orders = orders.
		Filter(dataframe.F{Colname: "order_id", Comparator: series.Neq, Comparando: ""}).
		Filter(dataframe.F{Colname: "customer_id", Comparator: series.Neq, Comparando: ""})
	if len(l.Statuses) > 0 {
		orders = orders.Filter(dataframe.F{
			Colname: "order_status", Comparator: series.In, Comparando: l.Statuses,
		})
	}
	out.Orders = orders

	// NaN money never compares >= 0, so null and negative rows go together.
	items := tables.OrderItems.Select(specFor(tableOrderItems).columns).
		Filter(dataframe.F{Colname: "order_id", Comparator: series.Neq, Comparando: ""}).
		Filter(dataframe.F{Colname: "product_id", Comparator: series.Neq, Comparando: ""}).
		Filter(dataframe.F{Colname: "price", Comparator: series.GreaterEq, Comparando: 0.0}).
		Filter(dataframe.F{Colname: "freight_value", Comparator: series.GreaterEq, Comparando: 0.0})
	out.OrderItems = items

	products := tables.Products.Select(specFor(tableProducts).columns)
	products = normalizeColumn(products, "product_category_name", lowerTrim)
	out.Products = products

	customers := tables.Customers.Select(specFor(tableCustomers).columns)
	customers = normalizeColumn(customers, "customer_city", lowerTrim)
	customers = normalizeColumn(customers, "customer_state", upperTrim)
	out.Customers = customers

	out.Reviews = tables.Reviews.Select(specFor(tableReviews).columns).
		Filter(dataframe.F{Colname: "order_id", Comparator: series.Neq, Comparando: ""})

	for _, spec := range tableSpecs {
		if df := out.frame(spec.name); df.Err != nil {
			return nil, fmt.Errorf("prepare %s: %w", spec.name, df.Err)
		}
	}
	return out, nil
}

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
func upperTrim(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// normalizeColumn rebuilds one string column through f and swaps it into a
// copy of the frame.
func normalizeColumn(df dataframe.DataFrame, col string, f func(string) string) dataframe.DataFrame {
	if df.Err != nil {
		return df
	}
	recs := df.Col(col).Records()
	vals := make([]string, len(recs))
	for i, r := range recs {
		if cellMissing(r) {
			vals[i] = ""
			continue
		}
		vals[i] = f(r)
	}
	return df.Mutate(series.New(vals, series.String, col))
}
