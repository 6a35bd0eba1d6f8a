package ledger

import (
	"github.com/tokokita/tokokita/internal/products"
)

// UnitResolution carries a purchase converted to canonical per-piece terms.
type UnitResolution struct {
	ActualUnits     int64
	PricePerPiece   float64
	SellingPerPiece float64
}

// ResolveUnits converts an operator-entered quantity and prices, expressed
// either as individual pieces or as bulk packages, into per-piece terms.
// A package size of one (or zero) carries no meaningful per-piece price,
// so anything <= 1 takes the piece branch. No rounding happens here; the
// store's fixed-point columns are the only truncation point.
func ResolveUnits(unitType products.UnitType, unitsPerPackage, quantity int64, buyingPrice, sellingPrice float64) UnitResolution {
	if unitType == products.UnitTypePackage && unitsPerPackage > 1 {
		return UnitResolution{
			ActualUnits:     quantity * unitsPerPackage,
			PricePerPiece:   buyingPrice / float64(unitsPerPackage),
			SellingPerPiece: sellingPrice / float64(unitsPerPackage),
		}
	}
	return UnitResolution{
		ActualUnits:     quantity,
		PricePerPiece:   buyingPrice,
		SellingPerPiece: sellingPrice,
	}
}
