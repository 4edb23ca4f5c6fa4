// Package cashbook checks cash desk entries and sums them into a balance.
package cashbook

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/validation"
)

var (
	ErrUnknownType     = errors.New("unknown cash transaction type")
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Balance is what came in, what went out and the difference, per currency.
type Balance struct {
	In  money.Money
	Out money.Money
	Net money.Money
}

// Normalize fills defaults and checks one entry. Only card and cash are
// accepted for the desk; credit never moves cash.
func Normalize(d model.CashTransactionData) (model.CashTransactionData, error) {
	switch d.Type {
	case model.CashIn, model.CashOut:
	default:
		return d, ErrUnknownType
	}
	if !d.Amount.IsPositive() {
		return d, validation.New(validation.ErrInvalidPaymentAmount, "amount", d.Amount.String())
	}

	d.Currency = strings.ToLower(strings.TrimSpace(d.Currency))
	switch d.Currency {
	case "":
		d.Currency = model.CurrencyLocal
	case model.CurrencyLocal, model.CurrencyHard:
	default:
		return d, ErrUnknownCurrency
	}

	switch model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(d.PaymentType)))) {
	case "", model.PaymentCash:
		d.PaymentType = model.PaymentCash
	case model.PaymentCard:
		d.PaymentType = model.PaymentCard
	default:
		return d, validation.New(validation.ErrUnknownPaymentMethod, "paymentType", string(d.PaymentType))
	}
	return d, nil
}

// Amount is the entry as Money in its own currency bucket.
func Amount(d model.CashTransactionData) money.Money {
	if d.Currency == model.CurrencyHard {
		return money.FromDecimal(decimal.Zero, d.Amount)
	}
	return money.FromDecimal(d.Amount, decimal.Zero)
}

// Summarize adds up the entries.
func Summarize(entries []model.CashTransaction) Balance {
	b := Balance{In: money.Zero(), Out: money.Zero()}
	for _, e := range entries {
		if e.Data.Type == model.CashOut {
			b.Out = money.Add(b.Out, Amount(e.Data))
		} else {
			b.In = money.Add(b.In, Amount(e.Data))
		}
	}
	b.Net = money.Sub(b.In, b.Out)
	return b
}
