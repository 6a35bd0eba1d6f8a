package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/tokokita/tokokita/internal/products"
	"github.com/tokokita/tokokita/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListPurchases(ctx context.Context, filter HistoryFilter) ([]Purchase, error)
	ListSales(ctx context.Context, filter HistoryFilter) ([]Sale, error)
}

// Invalidator is notified after a committed posting so derived read-side
// caches can drop stale state.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service is the only writer to product stock and price fields. Purchases
// increment stock and reweight cost, sales decrement stock; both run as a
// single transaction against the locked product row.
type Service struct {
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
	invalidator Invalidator
}

// NewService builds Service. idempotency and invalidator may be nil.
func NewService(repo RepositoryPort, idem *shared.IdempotencyStore, invalidator Invalidator) *Service {
	return &Service{repo: repo, idempotency: idem, invalidator: invalidator}
}

// RecordPurchase resolves units, reweights the average buying price against
// the current stock, and commits the purchase row together with the product
// update. The product's selling price and unit settings are overwritten by
// each purchase: the most recent intake sets the forward-looking defaults.
func (s *Service) RecordPurchase(ctx context.Context, input PurchaseInput) (PurchaseReceipt, error) {
	if input.ProductID <= 0 {
		return PurchaseReceipt{}, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return PurchaseReceipt{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if input.BuyingPrice <= 0 {
		return PurchaseReceipt{}, fmt.Errorf("%w: buying_price must be positive", ErrInvalidInput)
	}
	if input.SellingPrice <= 0 {
		return PurchaseReceipt{}, fmt.Errorf("%w: selling_price must be positive", ErrInvalidInput)
	}

	insertedKey, err := s.claimKey(ctx, input.IdempotencyKey, "purchase")
	if err != nil {
		return PurchaseReceipt{}, err
	}

	var receipt PurchaseReceipt
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}

		res := ResolveUnits(input.UnitType, input.UnitsPerPackage, input.Quantity, input.BuyingPrice, input.SellingPrice)
		newBuyingPrice := WeightedAverageCost(product.BuyingPrice, product.Stock, res.PricePerPiece, res.ActualUnits)

		purchase := Purchase{
			ProductID:    input.ProductID,
			ProductName:  product.Name,
			Quantity:     res.ActualUnits,
			BuyingPrice:  res.PricePerPiece,
			TotalCost:    TotalCost(res.PricePerPiece, res.ActualUnits),
			Supplier:     input.Supplier,
			PurchaseDate: time.Now().UTC(),
		}
		id, err := tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		purchase.ID = id

		update := StockPriceUpdate{
			StockDelta:      res.ActualUnits,
			BuyingPrice:     newBuyingPrice,
			SellingPrice:    res.SellingPerPiece,
			UnitType:        normalizeUnitType(input.UnitType),
			UnitsPerPackage: normalizeUnitsPerPackage(input.UnitsPerPackage),
			PackageName:     input.PackageName,
		}
		if err := tx.ApplyPurchase(ctx, input.ProductID, update); err != nil {
			return err
		}

		receipt = PurchaseReceipt{Purchase: purchase}
		if BelowCost(res.SellingPerPiece, res.PricePerPiece) {
			receipt.Warning = belowCostWarning
		}
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return PurchaseReceipt{}, err
	}

	s.bump(ctx)
	return receipt, nil
}

// RecordSale checks stock sufficiency against the locked product row,
// resolves the effective selling price, and commits the sale row together
// with the stock decrement. Sales never alter the buying price.
func (s *Service) RecordSale(ctx context.Context, input SaleInput) (SaleReceipt, error) {
	if input.ProductID <= 0 {
		return SaleReceipt{}, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	if input.Quantity <= 0 {
		return SaleReceipt{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	insertedKey, err := s.claimKey(ctx, input.IdempotencyKey, "sale")
	if err != nil {
		return SaleReceipt{}, err
	}

	var receipt SaleReceipt
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if product.Stock < input.Quantity {
			return &InsufficientStockError{Available: product.Stock}
		}

		sellingPrice := product.SellingPrice
		if input.CustomSellingPrice != nil {
			sellingPrice = *input.CustomSellingPrice
		}
		totalPrice, profit := SaleTotals(sellingPrice, product.BuyingPrice, input.Quantity)

		sale := Sale{
			ProductID:    input.ProductID,
			ProductName:  product.Name,
			Quantity:     input.Quantity,
			SellingPrice: sellingPrice,
			TotalPrice:   totalPrice,
			Profit:       profit,
			SaleDate:     time.Now().UTC(),
		}
		id, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id

		if err := tx.DeductStock(ctx, input.ProductID, input.Quantity); err != nil {
			return err
		}

		receipt = SaleReceipt{Sale: sale, BuyingPrice: product.BuyingPrice}
		if BelowCost(sellingPrice, product.BuyingPrice) {
			receipt.Warning = belowCostWarning
		}
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return SaleReceipt{}, err
	}

	s.bump(ctx)
	return receipt, nil
}

// ListPurchases lists purchase history.
func (s *Service) ListPurchases(ctx context.Context, filter HistoryFilter) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx, filter)
}

// ListSales lists sale history.
func (s *Service) ListSales(ctx context.Context, filter HistoryFilter) ([]Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) claimKey(ctx context.Context, key, module string) (bool, error) {
	if s.idempotency == nil || key == "" {
		return false, nil
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, module); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
}

func normalizeUnitType(unitType products.UnitType) products.UnitType {
	if unitType == products.UnitTypePackage {
		return products.UnitTypePackage
	}
	return products.UnitTypePiece
}

func normalizeUnitsPerPackage(units int64) int64 {
	if units <= 0 {
		return 1
	}
	return units
}
