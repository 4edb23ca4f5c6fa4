package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	a := New(3000, 10)
	b := New(1000, 25)

	require.True(t, Add(a, b).Equal(New(4000, 35)), Add(a, b).String())
	require.True(t, Sub(a, b).Equal(New(2000, -15)), Sub(a, b).String())
	require.True(t, ClampZero(Sub(a, b)).Equal(New(2000, 0)))
	require.True(t, Scale(b, decimal.NewFromInt(3)).Equal(New(3000, 75)))
	require.True(t, Sum().IsZero())
	require.True(t, Sum(a, b, b).Equal(New(5000, 60)))
}

func TestPredicates(t *testing.T) {
	require.True(t, Money{}.IsZero())
	require.True(t, Zero().IsZero())
	require.False(t, New(0, 1).IsZero())
	require.True(t, New(0, 1).IsPositive())
	require.True(t, New(5, -1).IsNegative())
	require.False(t, New(0, 0).IsPositive())
}

func TestBucketsNeverMix(t *testing.T) {
	// a surplus in one bucket must not offset a deficit in the other
	total := New(1000, 0)
	paid := New(0, 1000)
	debt := ClampZero(Sub(total, paid))
	require.True(t, debt.Equal(New(1000, 0)), debt.String())
}

func TestJSON(t *testing.T) {
	out, err := json.Marshal(New(3000, 12))
	require.NoError(t, err)
	require.JSONEq(t, `{"uzs":3000,"usd":12}`, string(out))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`{"uzs":"1500.50"}`), &m))
	require.True(t, m.Equal(FromDecimal(decimal.RequireFromString("1500.5"), decimal.Zero)), m.String())

	require.NoError(t, json.Unmarshal([]byte(`{}`), &m))
	require.True(t, m.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"uzs":"abc"}`), &m))
}
