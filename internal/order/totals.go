package order

import (
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
)

// Catalog resolves the product referenced by an order line.
type Catalog interface {
	Product(id string) (model.Product, bool)
}

// CatalogMap is an in-memory Catalog keyed by product id.
type CatalogMap map[string]model.Product

func (c CatalogMap) Product(id string) (model.Product, bool) {
	p, ok := c[id]
	return p, ok
}

// NewCatalog indexes products by id.
func NewCatalog(products []model.Product) CatalogMap {
	c := make(CatalogMap, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Totals is derived from lines and paid amount, never stored on its own.
type Totals struct {
	Total money.Money
	Paid  money.Money
	Debt  money.Money
}

// LinesTotal sums line subtotals. Lines whose product is unknown are priced
// against an empty product, so a scalar price lands in the local bucket.
func LinesTotal(lines []model.OrderLine, catalog Catalog, diag DiagnosticFunc) money.Money {
	total := money.Zero()
	for _, line := range lines {
		var product model.Product
		if catalog != nil {
			product, _ = catalog.Product(line.ProductID)
		}
		total = money.Add(total, PriceLine(line, product, diag))
	}
	return total
}

// Reconcile derives debt per bucket: max(total - paid, 0). A surplus in one
// bucket never covers a deficit in the other.
func Reconcile(total, paid money.Money, diag DiagnosticFunc) Totals {
	paid = money.Money{
		Local: nonNegative(paid.Local, "", "paidAmount.uzs", diag),
		Hard:  nonNegative(paid.Hard, "", "paidAmount.usd", diag),
	}
	return Totals{
		Total: total,
		Paid:  paid,
		Debt:  money.ClampZero(money.Sub(total, paid)),
	}
}

// ComputeTotals prices every line and reconciles against paid.
func ComputeTotals(lines []model.OrderLine, catalog Catalog, paid money.Money, diag DiagnosticFunc) Totals {
	return Reconcile(LinesTotal(lines, catalog, diag), paid, diag)
}

// SyncPaid returns the paid amount to show after a line change: full payment
// of total unless the user has typed a paid amount themselves. Call it after
// every line mutation.
func SyncPaid(total, paid money.Money, userOverrodePaid bool) money.Money {
	if userOverrodePaid {
		return paid
	}
	return total
}

// HasLines reports whether at least one line references a product.
func HasLines(lines []model.OrderLine) bool {
	for _, line := range lines {
		if line.ProductID != "" {
			return true
		}
	}
	return false
}

// LineView is a priced line as shown in a draft.
type LineView struct {
	Line     model.OrderLine
	Subtotal money.Money
	Editable bool
}

// PriceLines prices each line individually.
func PriceLines(lines []model.OrderLine, catalog Catalog, diag DiagnosticFunc) []LineView {
	views := make([]LineView, 0, len(lines))
	for _, line := range lines {
		var product model.Product
		if catalog != nil {
			product, _ = catalog.Product(line.ProductID)
		}
		views = append(views, LineView{
			Line:     line,
			Subtotal: PriceLine(line, product, diag),
			Editable: line.UnitPrice.Editable(),
		})
	}
	return views
}
