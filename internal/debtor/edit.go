package debtor

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
)

// Patch is a hand edit of a debtor card. Nil fields are kept. Amounts owed
// are not part of it: they move only through payments and order edits.
type Patch struct {
	ClientName  *string
	ClientPhone *string
	Description *string
	NextPayment *model.NextPayment
}

// Edit applies p and re-derives the status.
func Edit(d model.DebtorData, p Patch, now time.Time) model.DebtorData {
	if p.ClientName != nil {
		d.ClientName = *p.ClientName
	}
	if p.ClientPhone != nil {
		d.ClientPhone = *p.ClientPhone
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.NextPayment != nil {
		next := *p.NextPayment
		d.NextPayment = &next
	}
	d.UpdatedAt = now
	return Refresh(d, now)
}

// Reprice follows an order edit that changed the order debt from before to
// after. Payments already made stay; the difference is added to what is
// owed. With nothing left owed the scheduled payment is dropped, otherwise
// it is set to the rest of the debt on due.
func Reprice(d model.DebtorData, before, after decimal.Decimal, due *time.Time, now time.Time) model.DebtorData {
	delta := after.Sub(before)
	d.InitialDebt = decimal.Max(d.InitialDebt.Add(delta), decimal.Zero)
	d.CurrentDebt = decimal.Max(d.CurrentDebt.Add(delta), decimal.Zero)
	if d.CurrentDebt.IsPositive() {
		d.NextPayment = &model.NextPayment{Amount: d.CurrentDebt, DueDate: due}
	} else {
		d.NextPayment = nil
	}
	d.UpdatedAt = now
	return Refresh(d, now)
}

// RemindedOn reports whether an overdue SMS already went out on the calendar
// day of now.
func RemindedOn(d model.DebtorData, now time.Time) bool {
	if d.LastRemindedAt == nil {
		return false
	}
	return startOfDay(d.LastRemindedAt.In(now.Location())).Equal(startOfDay(now))
}
