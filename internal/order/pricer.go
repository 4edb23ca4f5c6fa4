// Package order computes draft order settlement: line subtotals, multi-currency
// totals, paid/debt reconciliation and payment method validation. Everything
// here is a pure function of its arguments; the caller injects "now".
package order

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/validation"
)

// Diagnostic describes an input that was silently corrected.
type Diagnostic struct {
	ProductID string
	Field     string
	Value     decimal.Decimal
	Message   string
}

// DiagnosticFunc receives data-quality signals. A nil func discards them.
type DiagnosticFunc func(Diagnostic)

func (f DiagnosticFunc) report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

// IsHardCurrency reports whether a product currency tag points at the hard
// (usd) bucket. Anything unrecognised settles in the local bucket.
func IsHardCurrency(tag string) bool {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "hard", model.CurrencyHard:
		return true
	}
	return false
}

// PriceLine returns the line subtotal. A scalar price goes to the bucket
// named by the product currency; a split price is scaled as is.
func PriceLine(line model.OrderLine, product model.Product, diag DiagnosticFunc) money.Money {
	qty := nonNegative(line.Quantity, line.ProductID, "quantity", diag)

	switch line.UnitPrice.Kind {
	case model.PriceScalar:
		price := nonNegative(line.UnitPrice.Scalar, line.ProductID, "price", diag)
		subtotal := price.Mul(qty)
		if IsHardCurrency(product.Currency) {
			return money.Money{Local: decimal.Zero, Hard: subtotal}
		}
		return money.Money{Local: subtotal, Hard: decimal.Zero}
	case model.PriceSplit:
		price := money.Money{
			Local: nonNegative(line.UnitPrice.Split.Local, line.ProductID, "price.uzs", diag),
			Hard:  nonNegative(line.UnitPrice.Split.Hard, line.ProductID, "price.usd", diag),
		}
		return money.Scale(price, qty)
	}

	diag.report(Diagnostic{ProductID: line.ProductID, Field: "price", Message: "unknown price kind, line priced at zero"})
	return money.Zero()
}

// ApplyProductPrice is what happens when a product is picked for a line:
// the product reference and its price are copied onto the line.
func ApplyProductPrice(line model.OrderLine, product model.Product) model.OrderLine {
	line.ProductID = product.ID
	line.UnitPrice = product.UnitPrice
	return line
}

// EditUnitPrice sets a hand-entered scalar price. Split prices are refused.
func EditUnitPrice(line model.OrderLine, value decimal.Decimal) (model.OrderLine, error) {
	if !line.UnitPrice.Editable() {
		return line, validation.New(validation.ErrPriceNotEditable, "price", "product "+line.ProductID)
	}
	line.UnitPrice = model.ScalarPrice(value)
	return line, nil
}

func nonNegative(v decimal.Decimal, productID, field string, diag DiagnosticFunc) decimal.Decimal {
	if v.IsNegative() {
		diag.report(Diagnostic{ProductID: productID, Field: field, Value: v, Message: "negative value treated as zero"})
		return decimal.Zero
	}
	return v
}
