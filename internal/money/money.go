// Package money holds the two-bucket amount used by orders: a local
// settlement currency (uzs) and a hard currency (usd). Buckets are tracked
// independently and never converted into one another.
package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount split across the local and hard currency buckets.
// The zero value is a valid zero amount.
type Money struct {
	Local decimal.Decimal
	Hard  decimal.Decimal
}

// Zero returns {0, 0}.
func Zero() Money {
	return Money{Local: decimal.Zero, Hard: decimal.Zero}
}

// New builds Money from whole units.
func New(local, hard int64) Money {
	return Money{Local: decimal.NewFromInt(local), Hard: decimal.NewFromInt(hard)}
}

// FromDecimal builds Money from already parsed bucket values.
func FromDecimal(local, hard decimal.Decimal) Money {
	return Money{Local: local, Hard: hard}
}

// Add sums bucket by bucket.
func Add(a, b Money) Money {
	return Money{Local: a.Local.Add(b.Local), Hard: a.Hard.Add(b.Hard)}
}

// Sub subtracts bucket by bucket. The result may be negative; callers that
// need a zero floor apply ClampZero.
func Sub(a, b Money) Money {
	return Money{Local: a.Local.Sub(b.Local), Hard: a.Hard.Sub(b.Hard)}
}

// Scale multiplies both buckets by factor.
func Scale(m Money, factor decimal.Decimal) Money {
	return Money{Local: m.Local.Mul(factor), Hard: m.Hard.Mul(factor)}
}

// ClampZero floors each bucket at zero.
func ClampZero(m Money) Money {
	return Money{Local: decimal.Max(m.Local, decimal.Zero), Hard: decimal.Max(m.Hard, decimal.Zero)}
}

// Sum adds all amounts. An empty list sums to Zero.
func Sum(amounts ...Money) Money {
	total := Zero()
	for _, m := range amounts {
		total = Add(total, m)
	}
	return total
}

// IsZero reports whether both buckets are zero.
func (m Money) IsZero() bool {
	return m.Local.IsZero() && m.Hard.IsZero()
}

// IsPositive reports whether any bucket is above zero.
func (m Money) IsPositive() bool {
	return m.Local.IsPositive() || m.Hard.IsPositive()
}

// IsNegative reports whether any bucket is below zero.
func (m Money) IsNegative() bool {
	return m.Local.IsNegative() || m.Hard.IsNegative()
}

// Equal compares numerically, so 3000 equals 3000.00.
func (m Money) Equal(other Money) bool {
	return m.Local.Equal(other.Local) && m.Hard.Equal(other.Hard)
}

func (m Money) String() string {
	return fmt.Sprintf("uzs=%s usd=%s", m.Local.String(), m.Hard.String())
}

// wire shape shared with the persisted order payload
type moneyJSON struct {
	UZS *decimal.Decimal `json:"uzs"`
	USD *decimal.Decimal `json:"usd"`
}

// MarshalJSON writes {"uzs": n, "usd": n} with unquoted numbers.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"uzs":%s,"usd":%s}`, m.Local.String(), m.Hard.String())), nil
}

// UnmarshalJSON accepts numbers or numeric strings; missing buckets are 0.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Zero()
	if raw.UZS != nil {
		m.Local = *raw.UZS
	}
	if raw.USD != nil {
		m.Hard = *raw.USD
	}
	return nil
}
