package cashbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/validation"
)

func TestNormalize(t *testing.T) {
	d, err := Normalize(model.CashTransactionData{Type: model.CashIn, Amount: decimal.NewFromInt(5000)})
	require.NoError(t, err)
	require.Equal(t, model.CurrencyLocal, d.Currency)
	require.Equal(t, model.PaymentCash, d.PaymentType)

	d, err = Normalize(model.CashTransactionData{Type: model.CashOut, Amount: decimal.NewFromInt(20), Currency: " USD ", PaymentType: "Card"})
	require.NoError(t, err)
	require.Equal(t, model.CurrencyHard, d.Currency)
	require.Equal(t, model.PaymentCard, d.PaymentType)

	tests := []struct {
		name string
		data model.CashTransactionData
		want error
	}{
		{"order type", model.CashTransactionData{Type: "order", Amount: decimal.NewFromInt(1)}, ErrUnknownType},
		{"zero amount", model.CashTransactionData{Type: model.CashIn}, validation.ErrInvalidPaymentAmount},
		{"negative amount", model.CashTransactionData{Type: model.CashOut, Amount: decimal.NewFromInt(-3)}, validation.ErrInvalidPaymentAmount},
		{"rub", model.CashTransactionData{Type: model.CashIn, Amount: decimal.NewFromInt(1), Currency: "rub"}, ErrUnknownCurrency},
		{"credit", model.CashTransactionData{Type: model.CashIn, Amount: decimal.NewFromInt(1), PaymentType: model.PaymentCredit}, validation.ErrUnknownPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSummarize(t *testing.T) {
	entries := []model.CashTransaction{
		{ID: "1", Data: model.CashTransactionData{Type: model.CashIn, Amount: decimal.NewFromInt(100000), Currency: model.CurrencyLocal}},
		{ID: "2", Data: model.CashTransactionData{Type: model.CashIn, Amount: decimal.NewFromInt(50), Currency: model.CurrencyHard}},
		{ID: "3", Data: model.CashTransactionData{Type: model.CashOut, Amount: decimal.NewFromInt(30000), Currency: model.CurrencyLocal}},
		{ID: "4", Data: model.CashTransactionData{Type: model.CashOut, Amount: decimal.NewFromInt(70), Currency: model.CurrencyHard}},
	}
	b := Summarize(entries)
	require.True(t, b.In.Equal(money.New(100000, 50)))
	require.True(t, b.Out.Equal(money.New(30000, 70)))
	require.True(t, b.Net.Equal(money.New(70000, -20)))

	require.True(t, Summarize(nil).Net.IsZero())
}
