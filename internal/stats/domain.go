package stats

import (
	"github.com/tokokita/tokokita/internal/ledger"
	"github.com/tokokita/tokokita/internal/products"
)

// Overview aggregates the dashboard rollups. All money fields are sums of
// the stored 2-decimal columns.
type Overview struct {
	TotalProducts    int64              `json:"total_products"`
	TotalSales       int64              `json:"total_sales"`
	TotalRevenue     float64            `json:"total_revenue"`
	TotalProfit      float64            `json:"total_profit"`
	TotalCost        float64            `json:"total_cost"`
	LowStockProducts []products.Product `json:"low_stock_products"`
	RecentSales      []ledger.Sale      `json:"recent_sales"`
	RecentPurchases  []ledger.Purchase  `json:"recent_purchases"`
	SalesByCategory  []CategorySales    `json:"sales_by_category"`
}

// CategorySales summarises sales for one product category.
type CategorySales struct {
	Category      string  `json:"category"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
}
