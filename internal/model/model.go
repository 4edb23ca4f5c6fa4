package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/money"
)

// Товары

// PriceKind tags how a unit price is stored.
type PriceKind int

const (
	// PriceScalar is a single number; the product currency picks the bucket.
	PriceScalar PriceKind = iota
	// PriceSplit is already divided into uzs/usd and is taken as is.
	PriceSplit
)

// UnitPrice is either a scalar or a pre-split Money.
type UnitPrice struct {
	Kind   PriceKind
	Scalar decimal.Decimal
	Split  money.Money
}

func ScalarPrice(value decimal.Decimal) UnitPrice {
	return UnitPrice{Kind: PriceScalar, Scalar: value}
}

func SplitPrice(value money.Money) UnitPrice {
	return UnitPrice{Kind: PriceSplit, Split: value}
}

// Editable reports whether the price may be changed by hand on an order line.
// Pre-split prices are authoritative.
func (p UnitPrice) Editable() bool {
	return p.Kind == PriceScalar
}

func (p UnitPrice) MarshalJSON() ([]byte, error) {
	if p.Kind == PriceSplit {
		return p.Split.MarshalJSON()
	}
	return []byte(p.Scalar.String()), nil
}

// UnmarshalJSON accepts a number, a numeric string or a {uzs, usd} object.
func (p *UnitPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ScalarPrice(decimal.Zero)
		return nil
	}
	if data[0] == '{' {
		var m money.Money
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*p = SplitPrice(m)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = ScalarPrice(d)
	return nil
}

const (
	CurrencyLocal = "uzs"
	CurrencyHard  = "usd"
)

type Product struct {
	ID        string
	Name      string
	UnitPrice UnitPrice
	Currency  string
	Quantity  decimal.Decimal
}

// Заказы

type OrderLine struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice UnitPrice
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit"
	// PaymentDebtAlias is how older clients spell PaymentCredit.
	PaymentDebtAlias PaymentMethod = "debt"
)

type Order struct {
	Number string
	Data   OrderData
}
type OrderData struct {
	CreatedBy    string
	Client       string
	ClientPhone  string
	Branch       string
	Lines        []OrderLine
	PaymentType  PaymentMethod
	Status       string
	TotalAmount  money.Money
	PaidAmount   money.Money
	DebtAmount   money.Money
	DateReturned *time.Time
	Notes        string
	CreatedAt    time.Time
}

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Должники

type Debtor struct {
	ID   string
	Data DebtorData
}
type DebtorData struct {
	ClientName     string
	ClientPhone    string
	Description    string
	Order          string
	InitialDebt    decimal.Decimal
	CurrentDebt    decimal.Decimal
	TotalPaid      decimal.Decimal
	LastPayment    *LastPayment
	NextPayment    *NextPayment
	Status         string
	Payments       []PaymentRecord
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastRemindedAt *time.Time // последнее SMS о просрочке
}

type LastPayment struct {
	Amount decimal.Decimal
	Date   time.Time
}

type NextPayment struct {
	Amount  decimal.Decimal
	DueDate *time.Time
}

// PaymentRecord is immutable once appended to a history.
type PaymentRecord struct {
	Amount    money.Money
	AppliedAt time.Time
}

const (
	DebtorStatusPending = "pending"
	DebtorStatusPartial = "partial"
	DebtorStatusPaid    = "paid"
	DebtorStatusOverdue = "overdue"
)

// Касса

type CashTransaction struct {
	ID   string
	Data CashTransactionData
}
type CashTransactionData struct {
	Type        string
	PaymentType PaymentMethod
	Amount      decimal.Decimal
	Currency    string
	Description string
	Client      string
	Branch      string
	CreatedBy   string
	CreatedAt   time.Time
}

const (
	CashIn  = "cash-in"
	CashOut = "cash-out"
)
