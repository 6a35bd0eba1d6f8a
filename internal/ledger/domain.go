package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/tokokita/tokokita/internal/products"
)

// Purchase is an append-only stock intake record. Quantity and BuyingPrice
// are stored in individual-unit terms after unit resolution, never in
// package terms.
type Purchase struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int64     `json:"quantity"`
	BuyingPrice  float64   `json:"buying_price"`
	TotalCost    float64   `json:"total_cost"`
	Supplier     *string   `json:"supplier,omitempty"`
	PurchaseDate time.Time `json:"purchase_date"`
}

// Sale is an append-only sale record. SellingPrice is the per-unit price
// actually used, which may differ from the product default.
type Sale struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int64     `json:"quantity"`
	SellingPrice float64   `json:"selling_price"`
	TotalPrice   float64   `json:"total_price"`
	Profit       float64   `json:"profit"`
	SaleDate     time.Time `json:"sale_date"`
}

// PurchaseInput describes a stock intake request as the operator enters it:
// quantity and prices may be expressed in package terms.
type PurchaseInput struct {
	ProductID       int64
	Quantity        int64
	BuyingPrice     float64
	SellingPrice    float64
	Supplier        *string
	UnitType        products.UnitType
	UnitsPerPackage int64
	PackageName     *string
	IdempotencyKey  string
}

// SaleInput describes a sale request. CustomSellingPrice overrides the
// product default when set; nil means "use the stored default", which is
// distinct from an explicit zero.
type SaleInput struct {
	ProductID          int64
	Quantity           int64
	CustomSellingPrice *float64
	IdempotencyKey     string
}

// PurchaseReceipt is returned to the caller after a committed purchase.
type PurchaseReceipt struct {
	Purchase
	Warning string `json:"warning,omitempty"`
}

// SaleReceipt is returned after a committed sale. BuyingPrice echoes the
// weighted-average cost used for the profit computation.
type SaleReceipt struct {
	Sale
	BuyingPrice float64 `json:"buying_price"`
	Warning     string  `json:"warning,omitempty"`
}

// HistoryFilter narrows purchase/sale listings.
type HistoryFilter struct {
	ProductID int64
	From      time.Time
	To        time.Time
	Limit     int
}

// ErrInvalidInput indicates a missing or non-positive required field.
var ErrInvalidInput = errors.New("ledger: invalid input")

// ErrProductNotFound indicates the referenced product does not exist.
var ErrProductNotFound = errors.New("ledger: product not found")

// ErrStockConflict indicates the guarded stock decrement matched no row even
// though the product row is held under lock in the same transaction.
var ErrStockConflict = errors.New("ledger: stock changed during transaction")

// InsufficientStockError is returned when a sale would drive stock negative.
// It carries the quantity still available so the caller can report it.
type InsufficientStockError struct {
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("ledger: insufficient stock, available: %d", e.Available)
}

const belowCostWarning = "Warning: Selling price is below buying price!"
