package ledger

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokokita/tokokita/internal/platform/db"
	"github.com/tokokita/tokokita/internal/products"
)

// Repository persists the purchase/sale ledger in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// StockPriceUpdate groups the product-row writes that accompany a purchase.
type StockPriceUpdate struct {
	StockDelta      int64
	BuyingPrice     float64
	SellingPrice    float64
	UnitType        products.UnitType
	UnitsPerPackage int64
	PackageName     *string
}

// TxRepository exposes the row-locked operations used by the service.
// Implementations must scope every call to a single open transaction so
// the read of stock/price, the arithmetic, and the write are indivisible.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, id int64) (products.Product, error)
	InsertPurchase(ctx context.Context, purchase Purchase) (int64, error)
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	ApplyPurchase(ctx context.Context, productID int64, update StockPriceUpdate) error
	DeductStock(ctx context.Context, productID, quantity int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Anything the callback returns rolls the whole posting back.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ListPurchases returns purchase history joined with product names,
// newest first.
func (r *Repository) ListPurchases(ctx context.Context, filter HistoryFilter) ([]Purchase, error) {
	builder := psql.Select("pu.id", "pu.product_id", "pu.quantity", "pu.buying_price", "pu.total_cost", "pu.supplier", "pu.purchase_date", "p.name").
		From("purchases pu").
		Join("products p ON pu.product_id = p.id").
		OrderBy("pu.purchase_date DESC", "pu.id DESC")
	builder = applyHistoryFilter(builder, "pu.product_id", "pu.purchase_date", filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Purchase{}
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Quantity, &p.BuyingPrice, &p.TotalCost, &p.Supplier, &p.PurchaseDate, &p.ProductName); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ListSales returns sale history joined with product names, newest first.
func (r *Repository) ListSales(ctx context.Context, filter HistoryFilter) ([]Sale, error) {
	builder := psql.Select("s.id", "s.product_id", "s.quantity", "s.selling_price", "s.total_price", "s.profit", "s.sale_date", "p.name").
		From("sales s").
		Join("products p ON s.product_id = p.id").
		OrderBy("s.sale_date DESC", "s.id DESC")
	builder = applyHistoryFilter(builder, "s.product_id", "s.sale_date", filter)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []Sale{}
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Quantity, &s.SellingPrice, &s.TotalPrice, &s.Profit, &s.SaleDate, &s.ProductName); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func applyHistoryFilter(builder sq.SelectBuilder, productCol, dateCol string, filter HistoryFilter) sq.SelectBuilder {
	if filter.ProductID != 0 {
		builder = builder.Where(sq.Eq{productCol: filter.ProductID})
	}
	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{dateCol: filter.From})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(sq.LtOrEq{dateCol: filter.To})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	return builder
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, id int64) (products.Product, error) {
	var p products.Product
	var unitType string
	err := r.tx.QueryRow(ctx, `SELECT id, name, description, buying_price, selling_price, stock, category, unit_type, units_per_package, package_name, created_at
FROM products WHERE id = $1 FOR UPDATE`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.BuyingPrice, &p.SellingPrice, &p.Stock,
			&p.Category, &unitType, &p.UnitsPerPackage, &p.PackageName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return products.Product{}, ErrProductNotFound
		}
		return products.Product{}, err
	}
	p.UnitType = products.UnitType(unitType)
	return p, nil
}

func (r *txRepository) InsertPurchase(ctx context.Context, purchase Purchase) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO purchases (product_id, quantity, buying_price, total_cost, supplier, purchase_date)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		purchase.ProductID, purchase.Quantity, purchase.BuyingPrice, purchase.TotalCost, purchase.Supplier, purchase.PurchaseDate).Scan(&id)
	return id, err
}

func (r *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (product_id, quantity, selling_price, total_price, profit, sale_date)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		sale.ProductID, sale.Quantity, sale.SellingPrice, sale.TotalPrice, sale.Profit, sale.SaleDate).Scan(&id)
	return id, err
}

func (r *txRepository) ApplyPurchase(ctx context.Context, productID int64, update StockPriceUpdate) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products
SET stock = stock + $1, buying_price = $2, selling_price = $3, unit_type = $4, units_per_package = $5, package_name = $6
WHERE id = $7`,
		update.StockDelta, update.BuyingPrice, update.SellingPrice,
		string(update.UnitType), update.UnitsPerPackage, update.PackageName, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *txRepository) DeductStock(ctx context.Context, productID, quantity int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`, quantity, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// The product row is already locked by GetProductForUpdate in this
		// transaction, so zero rows means the stock guard refused.
		return ErrStockConflict
	}
	return nil
}
