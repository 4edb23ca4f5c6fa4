package debtor

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
)

// NextPaymentDue values for Filter.NextPaymentDue.
const (
	DueOverdue  = "overdue"
	DueUpcoming = "upcoming"
	DueNone     = "none"
)

// Filter selects debtors for the debtor table. Zero fields do not filter.
type Filter struct {
	Client         string
	Status         string
	InitialDebtMin *decimal.Decimal
	InitialDebtMax *decimal.Decimal
	CurrentDebtMin *decimal.Decimal
	CurrentDebtMax *decimal.Decimal
	TotalPaidMin   *decimal.Decimal
	TotalPaidMax   *decimal.Decimal
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	NextPaymentDue string
	HasLastPayment *bool
}

// Match reports whether d passes every set criterion. Status is compared
// against the derived status, not the stored one.
func (f Filter) Match(d model.DebtorData, now time.Time) bool {
	if f.Client != "" &&
		!strings.Contains(strings.ToLower(strings.TrimSpace(d.ClientName)), strings.ToLower(strings.TrimSpace(f.Client))) {
		return false
	}
	if f.Status != "" && DeriveStatus(d, now) != f.Status {
		return false
	}
	if !inRange(d.InitialDebt, f.InitialDebtMin, f.InitialDebtMax) ||
		!inRange(d.CurrentDebt, f.CurrentDebtMin, f.CurrentDebtMax) ||
		!inRange(d.TotalPaid, f.TotalPaidMin, f.TotalPaidMax) {
		return false
	}

	created := startOfDay(d.CreatedAt.In(now.Location()))
	if f.CreatedFrom != nil && created.Before(startOfDay(f.CreatedFrom.In(now.Location()))) {
		return false
	}
	if f.CreatedTo != nil && created.After(startOfDay(f.CreatedTo.In(now.Location()))) {
		return false
	}

	hasDue := d.NextPayment != nil && d.NextPayment.DueDate != nil
	switch f.NextPaymentDue {
	case DueOverdue:
		if !hasDue || !IsDueDatePast(d.NextPayment, now) {
			return false
		}
	case DueUpcoming:
		if !hasDue || IsDueDatePast(d.NextPayment, now) {
			return false
		}
	case DueNone:
		if hasDue {
			return false
		}
	}

	if f.HasLastPayment != nil && *f.HasLastPayment != (d.LastPayment != nil) {
		return false
	}
	return true
}

// Select keeps the debtors matching f, preserving order.
func Select(debtors []model.Debtor, f Filter, now time.Time) []model.Debtor {
	var out []model.Debtor
	for _, d := range debtors {
		if f.Match(d.Data, now) {
			out = append(out, d)
		}
	}
	return out
}

func inRange(v decimal.Decimal, lo, hi *decimal.Decimal) bool {
	if lo != nil && v.LessThan(*lo) {
		return false
	}
	if hi != nil && v.GreaterThan(*hi) {
		return false
	}
	return true
}
