package ledger

// WeightedAverageCost folds an incoming purchase into the running average
// buying price. Both oldStock and oldPrice must come from the product row
// as read under the same lock that guards the write; the formula is a
// read-modify-write and is wrong under any weaker isolation.
func WeightedAverageCost(oldPrice float64, oldStock int64, pricePerPiece float64, units int64) float64 {
	total := oldStock + units
	if total <= 0 {
		return 0
	}
	return ((oldPrice * float64(oldStock)) + (pricePerPiece * float64(units))) / float64(total)
}

// TotalCost is the purchase cost stored verbatim on the purchase record,
// not reweighted.
func TotalCost(pricePerPiece float64, units int64) float64 {
	return pricePerPiece * float64(units)
}

// SaleTotals computes the revenue and profit of a sale. buyingPrice is the
// product's weighted-average cost as it stood before the sale; profit may
// be negative.
func SaleTotals(sellingPrice, buyingPrice float64, quantity int64) (totalPrice, profit float64) {
	totalPrice = sellingPrice * float64(quantity)
	profit = (sellingPrice - buyingPrice) * float64(quantity)
	return totalPrice, profit
}

// BelowCost reports whether selling at sellingPrice loses money against
// buyingPrice. Selling exactly at cost is not below cost.
func BelowCost(sellingPrice, buyingPrice float64) bool {
	return sellingPrice < buyingPrice
}
