package products

type ProductForm struct {
	Name            string   `json:"name" validate:"required"`
	Description     *string  `json:"description,omitempty"`
	BuyingPrice     float64  `json:"buying_price" validate:"gte=0"`
	SellingPrice    float64  `json:"selling_price" validate:"gte=0"`
	Stock           int64    `json:"stock" validate:"gte=0"`
	Category        *string  `json:"category,omitempty"`
	UnitType        UnitType `json:"unit_type" validate:"omitempty,oneof=piece package"`
	UnitsPerPackage int64    `json:"units_per_package" validate:"gte=0"`
	PackageName     *string  `json:"package_name,omitempty"`
}
