// Package debtor derives debtor status and applies payments to a debtor
// record. Debtors are tracked in the local currency only.
package debtor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/validation"
)

type rule struct {
	status  string
	matches func(d model.DebtorData, now time.Time) bool
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{model.DebtorStatusOverdue, func(d model.DebtorData, now time.Time) bool {
		return d.CurrentDebt.IsPositive() && IsDueDatePast(d.NextPayment, now)
	}},
	{model.DebtorStatusPaid, func(d model.DebtorData, _ time.Time) bool {
		return !d.CurrentDebt.IsPositive()
	}},
	{model.DebtorStatusPartial, func(d model.DebtorData, _ time.Time) bool {
		return d.CurrentDebt.LessThan(d.InitialDebt)
	}},
	{model.DebtorStatusPending, func(model.DebtorData, time.Time) bool {
		return true
	}},
}

// DeriveStatus computes the status label from the current field values.
func DeriveStatus(d model.DebtorData, now time.Time) string {
	for _, r := range rules {
		if r.matches(d, now) {
			return r.status
		}
	}
	return model.DebtorStatusPending
}

// IsDueDatePast reports whether the next payment due date lies on a calendar
// day before now.
func IsDueDatePast(next *model.NextPayment, now time.Time) bool {
	if next == nil || next.DueDate == nil {
		return false
	}
	return startOfDay(next.DueDate.In(now.Location())).Before(startOfDay(now))
}

// IsOverdue is the row flag for tables: debt remains and the due date passed.
func IsOverdue(d model.DebtorData, now time.Time) bool {
	return DeriveStatus(d, now) == model.DebtorStatusOverdue
}

// Refresh returns d with its status re-derived.
func Refresh(d model.DebtorData, now time.Time) model.DebtorData {
	d.Status = DeriveStatus(d, now)
	return d
}

// Open starts a debtor record with nothing paid yet.
func Open(d model.DebtorData, now time.Time) model.DebtorData {
	d.CurrentDebt = d.InitialDebt
	d.TotalPaid = decimal.Zero
	d.LastPayment = nil
	d.Payments = nil
	d.CreatedAt = now
	d.UpdatedAt = now
	return Refresh(d, now)
}

// ApplyPayment records a payment of amount. A non-positive amount is refused
// and d is returned unchanged. Paying more than is owed clamps the debt at zero.
// next, when given, replaces the scheduled next payment.
func ApplyPayment(d model.DebtorData, amount decimal.Decimal, next *model.NextPayment, now time.Time) (model.DebtorData, model.PaymentRecord, error) {
	if !amount.IsPositive() {
		return d, model.PaymentRecord{}, validation.New(validation.ErrInvalidPaymentAmount, "amount", amount.String())
	}

	record := model.PaymentRecord{
		Amount:    money.Money{Local: amount, Hard: decimal.Zero},
		AppliedAt: now,
	}

	d.CurrentDebt = decimal.Max(d.CurrentDebt.Sub(amount), decimal.Zero)
	d.TotalPaid = d.TotalPaid.Add(amount)
	d.LastPayment = &model.LastPayment{Amount: amount, Date: now}
	d.Payments = append(append([]model.PaymentRecord(nil), d.Payments...), record)
	if next != nil {
		n := *next
		d.NextPayment = &n
	}
	d.UpdatedAt = now

	return Refresh(d, now), record, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
