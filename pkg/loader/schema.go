package loader

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Declared schema for each source entity: the file it ships in, the SQL
// table it mirrors, the columns the analysis needs, and the primary key
// used for duplicate detection. Only declared columns are ever read.
type tableSpec struct {
	name    string
	file    string
	sqlName string
	columns []string
	key     []string
	types   map[string]series.Type
}

const (
	tableOrders     = "orders"
	tableOrderItems = "order_items"
	tableProducts   = "products"
	tableCustomers  = "customers"
	tableReviews    = "reviews"
)

// Timestamp layouts accepted in the source data. Declared here and
// validated at load time.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var tableSpecs = []tableSpec{
	{
		name:    tableOrders,
		file:    "orders_dataset.csv",
		sqlName: "orders",
		columns: []string{
			"order_id", "customer_id", "order_status",
			"order_purchase_timestamp", "order_delivered_customer_date",
			"order_estimated_delivery_date",
		},
		key: []string{"order_id"},
	},
	{
		name:    tableOrderItems,
		file:    "order_items_dataset.csv",
		sqlName: "order_items",
		columns: []string{
			"order_id", "order_item_id", "product_id", "price", "freight_value",
		},
		key: []string{"order_id", "order_item_id"},
		types: map[string]series.Type{
			"order_item_id": series.Int,
			"price":         series.Float,
			"freight_value": series.Float,
		},
	},
	{
		name:    tableProducts,
		file:    "products_dataset.csv",
		sqlName: "products",
		columns: []string{"product_id", "product_category_name"},
		key:     []string{"product_id"},
	},
	{
		name:    tableCustomers,
		file:    "customers_dataset.csv",
		sqlName: "customers",
		columns: []string{"customer_id", "customer_city", "customer_state"},
		key:     []string{"customer_id"},
	},
	{
		name:    tableReviews,
		file:    "order_reviews_dataset.csv",
		sqlName: "order_reviews",
		columns: []string{"review_id", "order_id", "review_score"},
		key:     []string{"review_id"},
		types: map[string]series.Type{
			"review_score": series.Float,
		},
	},
}

func specFor(name string) tableSpec {
	for _, s := range tableSpecs {
		if s.name == name {
			return s
		}
	}
	return tableSpec{}
}

// RawTables holds one immutable frame per source entity. They are consumed
// by CreateAnalysisDataset and discarded afterwards.
type RawTables struct {
	Orders     dataframe.DataFrame
	OrderItems dataframe.DataFrame
	Products   dataframe.DataFrame
	Customers  dataframe.DataFrame
	Reviews    dataframe.DataFrame
}

func (t *RawTables) frame(name string) *dataframe.DataFrame {
	switch name {
	case tableOrders:
		return &t.Orders
	case tableOrderItems:
		return &t.OrderItems
	case tableProducts:
		return &t.Products
	case tableCustomers:
		return &t.Customers
	case tableReviews:
		return &t.Reviews
	}
	return nil
}
