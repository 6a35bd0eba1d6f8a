package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokokita/tokokita/internal/ledger"
	"github.com/tokokita/tokokita/internal/products"
)

// Repository exposes the read-side rollup queries the dashboard relies on.
type Repository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountSales(ctx context.Context) (int64, error)
	SalesTotals(ctx context.Context) (revenue, profit float64, err error)
	PurchaseCost(ctx context.Context) (float64, error)
	LowStock(ctx context.Context, threshold int64) ([]products.Product, error)
	RecentSales(ctx context.Context, limit int) ([]ledger.Sale, error)
	RecentPurchases(ctx context.Context, limit int) ([]ledger.Purchase, error)
	SalesByCategory(ctx context.Context) ([]CategorySales, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed rollup repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func (r *repository) CountSales(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count)
	return count, err
}

func (r *repository) SalesTotals(ctx context.Context) (float64, float64, error) {
	var revenue, profit float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_price),0), COALESCE(SUM(profit),0) FROM sales`).Scan(&revenue, &profit)
	return revenue, profit, err
}

func (r *repository) PurchaseCost(ctx context.Context) (float64, error) {
	var cost float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_cost),0) FROM purchases`).Scan(&cost)
	return cost, err
}

func (r *repository) LowStock(ctx context.Context, threshold int64) ([]products.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, buying_price, selling_price, stock, category, unit_type, units_per_package, package_name, created_at
FROM products WHERE stock < $1 ORDER BY stock ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []products.Product{}
	for rows.Next() {
		var p products.Product
		var unitType string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BuyingPrice, &p.SellingPrice, &p.Stock,
			&p.Category, &unitType, &p.UnitsPerPackage, &p.PackageName, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.UnitType = products.UnitType(unitType)
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *repository) RecentSales(ctx context.Context, limit int) ([]ledger.Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.product_id, s.quantity, s.selling_price, s.total_price, s.profit, s.sale_date, p.name
FROM sales s JOIN products p ON s.product_id = p.id
ORDER BY s.sale_date DESC, s.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []ledger.Sale{}
	for rows.Next() {
		var s ledger.Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.SellingPrice, &s.TotalPrice, &s.Profit, &s.SaleDate, &s.ProductName); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *repository) RecentPurchases(ctx context.Context, limit int) ([]ledger.Purchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT pu.id, pu.product_id, pu.quantity, pu.buying_price, pu.total_cost, pu.supplier, pu.purchase_date, p.name
FROM purchases pu JOIN products p ON pu.product_id = p.id
ORDER BY pu.purchase_date DESC, pu.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []ledger.Purchase{}
	for rows.Next() {
		var p ledger.Purchase
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Quantity, &p.BuyingPrice, &p.TotalCost, &p.Supplier, &p.PurchaseDate, &p.ProductName); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *repository) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.category, COALESCE(SUM(s.quantity),0), COALESCE(SUM(s.total_price),0), COALESCE(SUM(s.profit),0)
FROM sales s JOIN products p ON s.product_id = p.id
WHERE p.category IS NOT NULL
GROUP BY p.category
ORDER BY SUM(s.total_price) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []CategorySales{}
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Category, &c.TotalQuantity, &c.TotalRevenue, &c.TotalProfit); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
