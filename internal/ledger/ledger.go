// Package ledger keeps debtor records in the store. Status is always
// re-derived on read, so a stored label never goes stale.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/debtor"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/store"
)

type Ledger interface {
	Open(ctx context.Context, data model.DebtorData) (model.Debtor, error)
	Get(ctx context.Context, id string) (model.Debtor, error)
	List(ctx context.Context, filter debtor.Filter) ([]model.Debtor, error)
	Delete(ctx context.Context, id string) error
	Edit(ctx context.Context, id string, patch debtor.Patch) (model.Debtor, error)
	Pay(ctx context.Context, id string, amount decimal.Decimal, next *model.NextPayment) (model.Debtor, error)
	History(ctx context.Context, id string) ([]model.PaymentRecord, error)
	Overdue(ctx context.Context) ([]model.Debtor, error)
	Reminded(ctx context.Context, id string, at time.Time) error
}

// Store is the part of the store the ledger needs.
type Store interface {
	DebtorPost(ctx context.Context, debtor model.Debtor) error
	DebtorGet(ctx context.Context, id string) (model.Debtor, error)
	DebtorList(ctx context.Context) ([]model.Debtor, error)
	DebtorDelete(ctx context.Context, id string) error
	DebtorUpdate(ctx context.Context, id string, update store.DebtorFunc) (model.Debtor, error)
	DebtorApplyPayment(ctx context.Context, id string, apply store.PaymentFunc) (model.Debtor, error)
	DebtorPayments(ctx context.Context, id string) ([]model.PaymentRecord, error)
	DebtorPutReminded(ctx context.Context, id string, at time.Time) error
}

type ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store, now func() time.Time) Ledger {
	if now == nil {
		now = time.Now
	}
	return &ledger{store: store, now: now}
}

// Prepare assigns an id and opens data without storing it. Used when the
// debtor is written together with its order.
func Prepare(data model.DebtorData, now time.Time) model.Debtor {
	return model.Debtor{ID: uuid.NewString(), Data: debtor.Open(data, now)}
}

func (ledger *ledger) Open(ctx context.Context, data model.DebtorData) (model.Debtor, error) {
	d := Prepare(data, ledger.now())
	if err := ledger.store.DebtorPost(ctx, d); err != nil {
		return model.Debtor{}, err
	}
	return d, nil
}

// known rejects ids that cannot be debtor ids before they reach the store.
func known(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrNoRows
	}
	return nil
}

func (ledger *ledger) Get(ctx context.Context, id string) (model.Debtor, error) {
	if err := known(id); err != nil {
		return model.Debtor{}, err
	}
	d, err := ledger.store.DebtorGet(ctx, id)
	if err != nil {
		return model.Debtor{}, err
	}
	payments, err := ledger.store.DebtorPayments(ctx, id)
	if err != nil {
		return model.Debtor{}, err
	}
	d.Data.Payments = payments
	d.Data = debtor.Refresh(d.Data, ledger.now())
	return d, nil
}

func (ledger *ledger) List(ctx context.Context, filter debtor.Filter) ([]model.Debtor, error) {
	all, err := ledger.store.DebtorList(ctx)
	if err != nil {
		return nil, err
	}
	now := ledger.now()
	for i := range all {
		all[i].Data = debtor.Refresh(all[i].Data, now)
	}
	return debtor.Select(all, filter, now), nil
}

func (ledger *ledger) Delete(ctx context.Context, id string) error {
	if err := known(id); err != nil {
		return err
	}
	return ledger.store.DebtorDelete(ctx, id)
}

// Edit changes the debtor card under the store row lock.
func (ledger *ledger) Edit(ctx context.Context, id string, patch debtor.Patch) (model.Debtor, error) {
	if err := known(id); err != nil {
		return model.Debtor{}, err
	}
	now := ledger.now()
	return ledger.store.DebtorUpdate(ctx, id, func(d model.DebtorData) (model.DebtorData, error) {
		return debtor.Edit(d, patch, now), nil
	})
}

// Pay applies a payment under the store row lock. A refused amount leaves
// the debtor untouched. The result carries the full payment history.
func (ledger *ledger) Pay(ctx context.Context, id string, amount decimal.Decimal, next *model.NextPayment) (model.Debtor, error) {
	if err := known(id); err != nil {
		return model.Debtor{}, err
	}
	now := ledger.now()
	return ledger.store.DebtorApplyPayment(ctx, id, func(d model.DebtorData) (model.DebtorData, model.PaymentRecord, error) {
		return debtor.ApplyPayment(d, amount, next, now)
	})
}

func (ledger *ledger) History(ctx context.Context, id string) ([]model.PaymentRecord, error) {
	if err := known(id); err != nil {
		return nil, err
	}
	if _, err := ledger.store.DebtorGet(ctx, id); err != nil {
		return nil, err
	}
	return ledger.store.DebtorPayments(ctx, id)
}

func (ledger *ledger) Overdue(ctx context.Context) ([]model.Debtor, error) {
	return ledger.List(ctx, debtor.Filter{Status: model.DebtorStatusOverdue})
}

func (ledger *ledger) Reminded(ctx context.Context, id string, at time.Time) error {
	if err := known(id); err != nil {
		return err
	}
	return ledger.store.DebtorPutReminded(ctx, id, at)
}
