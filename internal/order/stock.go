package order

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/validation"
)

// StockDelta is how much of each product moving from before to after takes
// from stock. Negative values go back to stock. Unchanged products are left out.
func StockDelta(before, after []model.OrderLine) map[string]decimal.Decimal {
	delta := map[string]decimal.Decimal{}
	for _, l := range after {
		delta[l.ProductID] = delta[l.ProductID].Add(l.Quantity)
	}
	for _, l := range before {
		delta[l.ProductID] = delta[l.ProductID].Sub(l.Quantity)
	}
	for id, q := range delta {
		if q.IsZero() {
			delete(delta, id)
		}
	}
	return delta
}

// CheckStock refuses a delta that takes more of a product than the catalog
// holds. Several lines of one product are counted together.
func CheckStock(delta map[string]decimal.Decimal, catalog Catalog) error {
	ids := make([]string, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		take := delta[id]
		if !take.IsPositive() {
			continue
		}
		product, ok := catalog.Product(id)
		if !ok || take.GreaterThan(product.Quantity) {
			have := decimal.Zero
			if ok {
				have = product.Quantity
			}
			return validation.New(validation.ErrInsufficientStock, "products",
				id+": requested "+take.String()+", in stock "+have.String())
		}
	}
	return nil
}
