package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopledger/internal/debtor"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/store"
	"github.com/iurnickita/shopledger/internal/validation"
)

type memStore struct {
	mu       sync.Mutex
	debtors  map[string]model.Debtor
	payments map[string][]model.PaymentRecord
}

func newMemStore() *memStore {
	return &memStore{debtors: map[string]model.Debtor{}, payments: map[string][]model.PaymentRecord{}}
}

func (m *memStore) DebtorPost(_ context.Context, d model.Debtor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debtors[d.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.debtors[d.ID] = d
	return nil
}

func (m *memStore) DebtorGet(_ context.Context, id string) (model.Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debtors[id]
	if !ok {
		return model.Debtor{}, store.ErrNoRows
	}
	return d, nil
}

func (m *memStore) DebtorList(_ context.Context) ([]model.Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Debtor
	for _, d := range m.debtors {
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) DebtorDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.debtors[id]; !ok {
		return store.ErrNoRows
	}
	delete(m.debtors, id)
	delete(m.payments, id)
	return nil
}

func (m *memStore) DebtorApplyPayment(_ context.Context, id string, apply store.PaymentFunc) (model.Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debtors[id]
	if !ok {
		return model.Debtor{}, store.ErrNoRows
	}
	// журнал читается под той же блокировкой, как в Postgres
	d.Data.Payments = append([]model.PaymentRecord(nil), m.payments[id]...)
	data, record, err := apply(d.Data)
	if err != nil {
		return model.Debtor{}, err
	}
	m.payments[id] = append(m.payments[id], record)
	stored := data
	stored.Payments = nil
	m.debtors[id] = model.Debtor{ID: id, Data: stored}
	return model.Debtor{ID: id, Data: data}, nil
}

func (m *memStore) DebtorUpdate(_ context.Context, id string, update store.DebtorFunc) (model.Debtor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debtors[id]
	if !ok {
		return model.Debtor{}, store.ErrNoRows
	}
	d.Data.Payments = append([]model.PaymentRecord(nil), m.payments[id]...)
	data, err := update(d.Data)
	if err != nil {
		return model.Debtor{}, err
	}
	stored := data
	stored.Payments = nil
	m.debtors[id] = model.Debtor{ID: id, Data: stored}
	return model.Debtor{ID: id, Data: data}, nil
}

func (m *memStore) DebtorPutReminded(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debtors[id]
	if !ok {
		return store.ErrNoRows
	}
	d.Data.LastRemindedAt = &at
	m.debtors[id] = d
	return nil
}

func (m *memStore) DebtorPayments(_ context.Context, id string) ([]model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.PaymentRecord(nil), m.payments[id]...), nil
}

func TestLedgerPaymentFlow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	l := NewLedger(newMemStore(), func() time.Time { return clock })
	ctx := context.Background()

	due := now.AddDate(0, 0, 7)
	d, err := l.Open(ctx, model.DebtorData{
		ClientName:  "Aziz",
		InitialDebt: decimal.NewFromInt(100000),
		NextPayment: &model.NextPayment{Amount: decimal.NewFromInt(100000), DueDate: &due},
	})
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)
	require.Equal(t, model.DebtorStatusPending, d.Data.Status)
	require.True(t, d.Data.CurrentDebt.Equal(decimal.NewFromInt(100000)))

	d, err = l.Pay(ctx, d.ID, decimal.NewFromInt(40000), nil)
	require.NoError(t, err)
	require.Equal(t, model.DebtorStatusPartial, d.Data.Status)

	_, err = l.Pay(ctx, d.ID, decimal.Zero, nil)
	require.ErrorIs(t, err, validation.ErrInvalidPaymentAmount)

	// срок прошел, долг остался
	clock = due.AddDate(0, 0, 1)
	got, err := l.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, model.DebtorStatusOverdue, got.Data.Status)
	require.Len(t, got.Data.Payments, 1)

	overdue, err := l.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	d, err = l.Pay(ctx, d.ID, decimal.NewFromInt(70000), nil)
	require.NoError(t, err)
	require.Equal(t, model.DebtorStatusPaid, d.Data.Status)
	require.True(t, d.Data.CurrentDebt.IsZero())

	history, err := l.History(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	paid, err := l.List(ctx, debtor.Filter{Status: model.DebtorStatusPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)

	require.NoError(t, l.Delete(ctx, d.ID))
	_, err = l.Get(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrNoRows)
	_, err = l.History(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrNoRows)
}

func TestLedgerPayReturnsHistory(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewLedger(newMemStore(), func() time.Time { return now })
	ctx := context.Background()

	d, err := l.Open(ctx, model.DebtorData{ClientName: "Aziz", InitialDebt: decimal.NewFromInt(100000)})
	require.NoError(t, err)

	_, err = l.Pay(ctx, d.ID, decimal.NewFromInt(30000), nil)
	require.NoError(t, err)
	d, err = l.Pay(ctx, d.ID, decimal.NewFromInt(20000), nil)
	require.NoError(t, err)
	require.Len(t, d.Data.Payments, 2)
	require.True(t, d.Data.Payments[0].Amount.Local.Equal(decimal.NewFromInt(30000)))
	require.True(t, d.Data.Payments[1].Amount.Local.Equal(decimal.NewFromInt(20000)))
	require.True(t, d.Data.TotalPaid.Equal(decimal.NewFromInt(50000)))
}

func TestLedgerEditAndReminded(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewLedger(newMemStore(), func() time.Time { return now })
	ctx := context.Background()

	past := now.AddDate(0, 0, -1)
	d, err := l.Open(ctx, model.DebtorData{ClientName: "Aziz", InitialDebt: decimal.NewFromInt(1000),
		NextPayment: &model.NextPayment{Amount: decimal.NewFromInt(1000), DueDate: &past}})
	require.NoError(t, err)
	require.Equal(t, model.DebtorStatusOverdue, d.Data.Status)

	phone := "+998907776655"
	later := now.AddDate(0, 0, 5)
	d, err = l.Edit(ctx, d.ID, debtor.Patch{ClientPhone: &phone, NextPayment: &model.NextPayment{Amount: decimal.NewFromInt(500), DueDate: &later}})
	require.NoError(t, err)
	require.Equal(t, phone, d.Data.ClientPhone)
	require.Equal(t, model.DebtorStatusPending, d.Data.Status)

	_, err = l.Edit(ctx, "not-a-uuid", debtor.Patch{})
	require.ErrorIs(t, err, store.ErrNoRows)

	require.NoError(t, l.Reminded(ctx, d.ID, now))
	got, err := l.Get(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Data.LastRemindedAt)
	require.True(t, got.Data.LastRemindedAt.Equal(now))
}
