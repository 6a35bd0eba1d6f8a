package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokokita/tokokita/internal/products"
)

type memoryRepo struct {
	products  map[int64]products.Product
	purchases []Purchase
	sales     []Sale
	nextID    int64

	failInsertSale     bool
	failApplyPurchase  bool
	failDeductStock    bool
	committedPurchases int
	committedSales     int
}

type memoryTx struct {
	repo      *memoryRepo
	products  map[int64]products.Product
	purchases []Purchase
	sales     []Sale
	nextID    int64
}

func newMemoryRepo(seed ...products.Product) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]products.Product)}
	for _, p := range seed {
		repo.products[p.ID] = p
	}
	return repo
}

// WithTx stages writes and only merges them back on success, mirroring the
// commit/rollback behaviour of the real repository.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, products: make(map[int64]products.Product), nextID: r.nextID}
	for id, p := range r.products {
		tx.products[id] = p
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.products = tx.products
	r.purchases = append(r.purchases, tx.purchases...)
	r.sales = append(r.sales, tx.sales...)
	r.nextID = tx.nextID
	r.committedPurchases += len(tx.purchases)
	r.committedSales += len(tx.sales)
	return nil
}

func (r *memoryRepo) ListPurchases(ctx context.Context, _ HistoryFilter) ([]Purchase, error) {
	out := make([]Purchase, len(r.purchases))
	copy(out, r.purchases)
	return out, nil
}

func (r *memoryRepo) ListSales(ctx context.Context, _ HistoryFilter) ([]Sale, error) {
	out := make([]Sale, len(r.sales))
	copy(out, r.sales)
	return out, nil
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, id int64) (products.Product, error) {
	p, ok := tx.products[id]
	if !ok {
		return products.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (tx *memoryTx) InsertPurchase(ctx context.Context, purchase Purchase) (int64, error) {
	tx.nextID++
	purchase.ID = tx.nextID
	tx.purchases = append(tx.purchases, purchase)
	return tx.nextID, nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	if tx.repo.failInsertSale {
		return 0, errors.New("insert sale: boom")
	}
	tx.nextID++
	sale.ID = tx.nextID
	tx.sales = append(tx.sales, sale)
	return tx.nextID, nil
}

func (tx *memoryTx) ApplyPurchase(ctx context.Context, productID int64, update StockPriceUpdate) error {
	if tx.repo.failApplyPurchase {
		return errors.New("apply purchase: boom")
	}
	p := tx.products[productID]
	p.Stock += update.StockDelta
	p.BuyingPrice = update.BuyingPrice
	p.SellingPrice = update.SellingPrice
	p.UnitType = update.UnitType
	p.UnitsPerPackage = update.UnitsPerPackage
	p.PackageName = update.PackageName
	tx.products[productID] = p
	return nil
}

func (tx *memoryTx) DeductStock(ctx context.Context, productID, quantity int64) error {
	if tx.repo.failDeductStock {
		return ErrStockConflict
	}
	p := tx.products[productID]
	if p.Stock < quantity {
		return ErrStockConflict
	}
	p.Stock -= quantity
	tx.products[productID] = p
	return nil
}

func seedProduct() products.Product {
	return products.Product{
		ID:              1,
		Name:            "Indomie Goreng",
		BuyingPrice:     100,
		SellingPrice:    150,
		Stock:           10,
		UnitType:        products.UnitTypePiece,
		UnitsPerPackage: 1,
	}
}

func TestRecordPurchaseFirstIntake(t *testing.T) {
	empty := seedProduct()
	empty.BuyingPrice = 0
	empty.SellingPrice = 0
	empty.Stock = 0
	repo := newMemoryRepo(empty)
	svc := NewService(repo, nil, nil)

	receipt, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:    1,
		Quantity:     10,
		BuyingPrice:  100,
		SellingPrice: 150,
		UnitType:     products.UnitTypePiece,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), receipt.Quantity)
	require.InDelta(t, 100.0, receipt.BuyingPrice, 0.0001)
	require.InDelta(t, 1000.0, receipt.TotalCost, 0.0001)
	require.Empty(t, receipt.Warning)

	p := repo.products[1]
	require.Equal(t, int64(10), p.Stock)
	require.InDelta(t, 100.0, p.BuyingPrice, 0.0001)
	require.InDelta(t, 150.0, p.SellingPrice, 0.0001)
}

func TestRecordPurchaseReweightsAverage(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:    1,
		Quantity:     5,
		BuyingPrice:  160,
		SellingPrice: 200,
		UnitType:     products.UnitTypePiece,
	})
	require.NoError(t, err)

	p := repo.products[1]
	require.Equal(t, int64(15), p.Stock)
	require.InDelta(t, 120.0, p.BuyingPrice, 0.0001)
	require.InDelta(t, 200.0, p.SellingPrice, 0.0001)
}

func TestRecordPurchasePackageConversion(t *testing.T) {
	empty := seedProduct()
	empty.Stock = 0
	empty.BuyingPrice = 0
	repo := newMemoryRepo(empty)
	svc := NewService(repo, nil, nil)

	pkg := "dus"
	receipt, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:       1,
		Quantity:        2,
		BuyingPrice:     240,
		SellingPrice:    480,
		UnitType:        products.UnitTypePackage,
		UnitsPerPackage: 24,
		PackageName:     &pkg,
	})
	require.NoError(t, err)
	require.Equal(t, int64(48), receipt.Quantity)
	require.InDelta(t, 10.0, receipt.BuyingPrice, 0.0001)
	require.InDelta(t, 480.0, receipt.TotalCost, 0.0001)

	p := repo.products[1]
	require.Equal(t, int64(48), p.Stock)
	require.InDelta(t, 10.0, p.BuyingPrice, 0.0001)
	require.InDelta(t, 20.0, p.SellingPrice, 0.0001)
	require.Equal(t, products.UnitTypePackage, p.UnitType)
	require.Equal(t, int64(24), p.UnitsPerPackage)
	require.NotNil(t, p.PackageName)
	require.Equal(t, "dus", *p.PackageName)
}

func TestRecordPurchaseBelowCostWarning(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	receipt, err := svc.RecordPurchase(context.Background(), PurchaseInput{
		ProductID:    1,
		Quantity:     5,
		BuyingPrice:  100,
		SellingPrice: 90,
		UnitType:     products.UnitTypePiece,
	})
	require.NoError(t, err)
	require.Equal(t, "Warning: Selling price is below buying price!", receipt.Warning)
}

func TestRecordPurchaseValidation(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordPurchase(context.Background(), PurchaseInput{ProductID: 1, Quantity: 0, BuyingPrice: 100, SellingPrice: 150})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordPurchase(context.Background(), PurchaseInput{ProductID: 1, Quantity: 5, BuyingPrice: 0, SellingPrice: 150})
	require.ErrorIs(t, err, ErrInvalidInput)

	require.Equal(t, 0, repo.committedPurchases)
}

func TestRecordPurchaseProductNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordPurchase(context.Background(), PurchaseInput{ProductID: 42, Quantity: 1, BuyingPrice: 10, SellingPrice: 20})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordPurchaseRollsBack(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	repo.failApplyPurchase = true
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordPurchase(context.Background(), PurchaseInput{ProductID: 1, Quantity: 5, BuyingPrice: 100, SellingPrice: 150})
	require.Error(t, err)

	p := repo.products[1]
	require.Equal(t, int64(10), p.Stock)
	require.Equal(t, 0, repo.committedPurchases)
}

func TestRecordSale(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	receipt, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 4})
	require.NoError(t, err)
	require.InDelta(t, 150.0, receipt.SellingPrice, 0.0001)
	require.InDelta(t, 600.0, receipt.TotalPrice, 0.0001)
	require.InDelta(t, 200.0, receipt.Profit, 0.0001)
	require.InDelta(t, 100.0, receipt.BuyingPrice, 0.0001)
	require.Empty(t, receipt.Warning)

	p := repo.products[1]
	require.Equal(t, int64(6), p.Stock)
	// Sales never touch pricing.
	require.InDelta(t, 100.0, p.BuyingPrice, 0.0001)
	require.InDelta(t, 150.0, p.SellingPrice, 0.0001)
}

func TestRecordSaleCustomPriceBelowCost(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	custom := 80.0
	receipt, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 4, CustomSellingPrice: &custom})
	require.NoError(t, err)
	require.InDelta(t, 80.0, receipt.SellingPrice, 0.0001)
	require.InDelta(t, -80.0, receipt.Profit, 0.0001)
	require.Equal(t, "Warning: Selling price is below buying price!", receipt.Warning)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 11})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, int64(10), insufficient.Available)

	p := repo.products[1]
	require.Equal(t, int64(10), p.Stock)
	require.Equal(t, 0, repo.committedSales)
}

func TestRecordSaleStockGuardConflict(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	repo.failDeductStock = true
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 4})
	require.ErrorIs(t, err, ErrStockConflict)
	require.NotErrorIs(t, err, ErrProductNotFound)

	p := repo.products[1]
	require.Equal(t, int64(10), p.Stock)
	require.Equal(t, 0, repo.committedSales)
}

func TestRecordSaleRollsBack(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	repo.failInsertSale = true
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: 4})
	require.Error(t, err)

	p := repo.products[1]
	require.Equal(t, int64(10), p.Stock)
	require.Equal(t, 0, repo.committedSales)
}

func TestRecordSaleValidation(t *testing.T) {
	repo := newMemoryRepo(seedProduct())
	svc := NewService(repo, nil, nil)

	_, err := svc.RecordSale(context.Background(), SaleInput{ProductID: 0, Quantity: 4})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordSale(context.Background(), SaleInput{ProductID: 1, Quantity: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}
