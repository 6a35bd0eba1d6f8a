package products

import (
	"time"
)

// UnitType describes how a product is currently bought in bulk.
type UnitType string

const (
	// UnitTypePiece means the product is handled as individual units.
	UnitTypePiece UnitType = "piece"
	// UnitTypePackage means the product is bought as bulk packages.
	UnitTypePackage UnitType = "package"
)

// Product represents a product entity. Prices are always per individual
// unit regardless of UnitType; Stock counts individual units on hand.
type Product struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	BuyingPrice     float64   `json:"buying_price"`
	SellingPrice    float64   `json:"selling_price"`
	Stock           int64     `json:"stock"`
	Category        *string   `json:"category,omitempty"`
	UnitType        UnitType  `json:"unit_type"`
	UnitsPerPackage int64     `json:"units_per_package"`
	PackageName     *string   `json:"package_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
