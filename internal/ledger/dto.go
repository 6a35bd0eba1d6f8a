package ledger

import (
	"github.com/tokokita/tokokita/internal/products"
)

type PurchaseRequest struct {
	ProductID       int64             `json:"product_id" validate:"required,gt=0"`
	Quantity        int64             `json:"quantity" validate:"required,gt=0"`
	BuyingPrice     float64           `json:"buying_price" validate:"required,gt=0"`
	SellingPrice    float64           `json:"selling_price" validate:"required,gt=0"`
	Supplier        *string           `json:"supplier,omitempty"`
	UnitType        products.UnitType `json:"unit_type" validate:"omitempty,oneof=piece package"`
	UnitsPerPackage int64             `json:"units_per_package" validate:"gte=0"`
	PackageName     *string           `json:"package_name,omitempty"`
}

type SaleRequest struct {
	ProductID          int64    `json:"product_id" validate:"required,gt=0"`
	Quantity           int64    `json:"quantity" validate:"required,gt=0"`
	CustomSellingPrice *float64 `json:"custom_selling_price,omitempty" validate:"omitempty,gte=0"`
}
