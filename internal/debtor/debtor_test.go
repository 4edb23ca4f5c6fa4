package debtor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/validation"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func due(days int) *model.NextPayment {
	d := now.AddDate(0, 0, days)
	return &model.NextPayment{Amount: dec(1000), DueDate: &d}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name string
		d    model.DebtorData
		want string
	}{
		{"no payments", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(10000)}, model.DebtorStatusPending},
		{"partially paid", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(6000)}, model.DebtorStatusPartial},
		{"fully paid", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(0)}, model.DebtorStatusPaid},
		{"debt grew above initial", model.DebtorData{InitialDebt: dec(100), CurrentDebt: dec(150)}, model.DebtorStatusPending},
		{"overdue beats partial", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(6000), NextPayment: due(-1)}, model.DebtorStatusOverdue},
		{"due today is not overdue", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(6000), NextPayment: due(0)}, model.DebtorStatusPartial},
		{"future due date", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(10000), NextPayment: due(5)}, model.DebtorStatusPending},
		{"paid with past due date", model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(0), NextPayment: due(-3)}, model.DebtorStatusPaid},
		{"next payment without date", model.DebtorData{InitialDebt: dec(10), CurrentDebt: dec(10), NextPayment: &model.NextPayment{Amount: dec(5)}}, model.DebtorStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DeriveStatus(tt.d, now))
			require.Equal(t, tt.want == model.DebtorStatusOverdue, IsOverdue(tt.d, now))
		})
	}
}

func TestApplyPayment(t *testing.T) {
	d := Open(model.DebtorData{ClientName: "Aziz", InitialDebt: dec(10000)}, now)
	require.Equal(t, model.DebtorStatusPending, d.Status)
	require.True(t, d.CurrentDebt.Equal(dec(10000)))

	d, rec, err := ApplyPayment(d, dec(4000), nil, now)
	require.NoError(t, err)
	require.True(t, d.CurrentDebt.Equal(dec(6000)))
	require.True(t, d.TotalPaid.Equal(dec(4000)))
	require.Equal(t, model.DebtorStatusPartial, d.Status)
	require.Equal(t, now, d.LastPayment.Date)
	require.True(t, rec.Amount.Local.Equal(dec(4000)))
	require.True(t, rec.Amount.Hard.IsZero())
	require.Len(t, d.Payments, 1)

	next := due(10)
	d, _, err = ApplyPayment(d, dec(1000), next, now)
	require.NoError(t, err)
	require.Equal(t, next.DueDate, d.NextPayment.DueDate)
	require.Len(t, d.Payments, 2)
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	d := Open(model.DebtorData{InitialDebt: dec(500)}, now)
	for _, amount := range []decimal.Decimal{dec(0), dec(-10)} {
		got, _, err := ApplyPayment(d, amount, nil, now)
		require.ErrorIs(t, err, validation.ErrInvalidPaymentAmount)
		require.Equal(t, validation.CodeInvalidPaymentAmount, validation.CodeOf(err))
		require.Equal(t, d, got)
	}
}

func TestOverpaymentClamps(t *testing.T) {
	d := Open(model.DebtorData{InitialDebt: dec(500)}, now)
	d, _, err := ApplyPayment(d, dec(800), nil, now)
	require.NoError(t, err)
	require.True(t, d.CurrentDebt.IsZero())
	require.True(t, d.TotalPaid.Equal(dec(800)))
	require.Equal(t, model.DebtorStatusPaid, d.Status)
}

func TestOverdueAfterPartialPayment(t *testing.T) {
	d := model.DebtorData{InitialDebt: dec(10000), CurrentDebt: dec(6000), TotalPaid: dec(4000), NextPayment: due(-1),
		LastPayment: &model.LastPayment{Amount: dec(4000), Date: now.AddDate(0, 0, -10)}}
	require.Equal(t, model.DebtorStatusOverdue, DeriveStatus(d, now))
}

func TestApplyPaymentDoesNotShareHistory(t *testing.T) {
	base := Open(model.DebtorData{InitialDebt: dec(100)}, now)
	base, _, _ = ApplyPayment(base, dec(10), nil, now)
	a, _, _ := ApplyPayment(base, dec(20), nil, now)
	b, _, _ := ApplyPayment(base, dec(30), nil, now)
	require.True(t, a.Payments[1].Amount.Local.Equal(dec(20)))
	require.True(t, b.Payments[1].Amount.Local.Equal(dec(30)))
}

func TestFilter(t *testing.T) {
	yes, no := true, false
	minDebt := dec(5000)
	debtors := []model.Debtor{
		{ID: "a", Data: model.DebtorData{ClientName: "Aziz Karimov", InitialDebt: dec(10000), CurrentDebt: dec(6000), NextPayment: due(-2),
			LastPayment: &model.LastPayment{Amount: dec(4000), Date: now}, CreatedAt: now.AddDate(0, 0, -20)}},
		{ID: "b", Data: model.DebtorData{ClientName: "Bekzod", InitialDebt: dec(3000), CurrentDebt: dec(3000), NextPayment: due(4), CreatedAt: now}},
		{ID: "c", Data: model.DebtorData{ClientName: "Dilnoza", InitialDebt: dec(2000), CurrentDebt: dec(0), CreatedAt: now}},
	}

	ids := func(f Filter) []string {
		var out []string
		for _, d := range Select(debtors, f, now) {
			out = append(out, d.ID)
		}
		return out
	}

	require.Equal(t, []string{"a"}, ids(Filter{Client: " aziz "}))
	require.Equal(t, []string{"a"}, ids(Filter{Status: model.DebtorStatusOverdue}))
	require.Equal(t, []string{"a"}, ids(Filter{NextPaymentDue: DueOverdue}))
	require.Equal(t, []string{"b"}, ids(Filter{NextPaymentDue: DueUpcoming}))
	require.Equal(t, []string{"c"}, ids(Filter{NextPaymentDue: DueNone}))
	require.Equal(t, []string{"a"}, ids(Filter{HasLastPayment: &yes}))
	require.Equal(t, []string{"b", "c"}, ids(Filter{HasLastPayment: &no}))
	require.Equal(t, []string{"a"}, ids(Filter{InitialDebtMin: &minDebt}))
	from := now.AddDate(0, 0, -1)
	require.Equal(t, []string{"b", "c"}, ids(Filter{CreatedFrom: &from}))
	require.Len(t, ids(Filter{}), 3)
}

func TestEdit(t *testing.T) {
	d := Open(model.DebtorData{ClientName: "Aziz", ClientPhone: "+998901", InitialDebt: dec(5000), NextPayment: due(-2)}, now.AddDate(0, 0, -10))
	require.Equal(t, model.DebtorStatusOverdue, Refresh(d, now).Status)

	name := "Aziz aka"
	later := now.AddDate(0, 0, 3)
	got := Edit(d, Patch{ClientName: &name, NextPayment: &model.NextPayment{Amount: dec(2000), DueDate: &later}}, now)
	require.Equal(t, "Aziz aka", got.ClientName)
	require.Equal(t, "+998901", got.ClientPhone)
	require.Equal(t, model.DebtorStatusPending, got.Status)
	require.True(t, got.CurrentDebt.Equal(dec(5000)))
	require.Equal(t, now, got.UpdatedAt)
}

func TestReprice(t *testing.T) {
	d := Open(model.DebtorData{ClientName: "Aziz", InitialDebt: dec(30000), NextPayment: due(7)}, now)
	d, _, err := ApplyPayment(d, dec(10000), nil, now)
	require.NoError(t, err)

	// заказ подорожал на 5000
	later := now.AddDate(0, 0, 14)
	up := Reprice(d, dec(30000), dec(35000), &later, now)
	require.True(t, up.InitialDebt.Equal(dec(35000)))
	require.True(t, up.CurrentDebt.Equal(dec(25000)))
	require.True(t, up.NextPayment.Amount.Equal(dec(25000)))
	require.Equal(t, later, *up.NextPayment.DueDate)
	require.Equal(t, model.DebtorStatusPartial, up.Status)
	require.Len(t, up.Payments, 1)

	// долг по заказу погашен
	cleared := Reprice(d, dec(30000), dec(0), nil, now)
	require.True(t, cleared.CurrentDebt.IsZero())
	require.Nil(t, cleared.NextPayment)
	require.Equal(t, model.DebtorStatusPaid, cleared.Status)
}

func TestRemindedOn(t *testing.T) {
	d := model.DebtorData{}
	require.False(t, RemindedOn(d, now))

	morning := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	d.LastRemindedAt = &morning
	require.True(t, RemindedOn(d, now))
	require.False(t, RemindedOn(d, now.AddDate(0, 0, 1)))

	// 23:30 UTC is already the next day in Tashkent
	tashkent := time.FixedZone("UZT", 5*60*60)
	lateEvening := time.Date(2024, 5, 31, 23, 30, 0, 0, time.UTC)
	d.LastRemindedAt = &lateEvening
	require.True(t, RemindedOn(d, now.In(tashkent)))
	require.False(t, RemindedOn(d, now))
}
