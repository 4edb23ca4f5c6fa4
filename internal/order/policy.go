package order

import (
	"strings"
	"time"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/validation"
)

// DefaultMinLeadDays is the shortest credit term accepted for a due date.
const DefaultMinLeadDays = 7

// ParsePaymentMethod normalises a payment method; "debt" is read as credit.
func ParsePaymentMethod(s string) (model.PaymentMethod, error) {
	switch model.PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case model.PaymentCash:
		return model.PaymentCash, nil
	case model.PaymentCard:
		return model.PaymentCard, nil
	case model.PaymentCredit, model.PaymentDebtAlias:
		return model.PaymentCredit, nil
	}
	return "", validation.New(validation.ErrUnknownPaymentMethod, "paymentType", s)
}

// MinDueDate is the first calendar day a credit order may be due:
// the creation day plus minLeadDays, in the creation time zone.
func MinDueDate(createdAt time.Time, minLeadDays int) time.Time {
	return startOfDay(createdAt).AddDate(0, 0, minLeadDays)
}

// PaymentRequest is the input of the payment policy.
type PaymentRequest struct {
	Method    model.PaymentMethod
	Totals    Totals
	CreatedAt time.Time
	DueDate   *time.Time
}

// Verdict is the policy outcome. DueDate is what should be stored: nil when
// nothing is owed, so a stale date from an earlier edit is dropped.
type Verdict struct {
	Accepted        bool
	DueDateRequired bool
	DueDate         *time.Time
	Err             error
}

// EvaluatePayment checks that the payment method fits the outstanding debt
// and that a credit order carries a far enough due date.
func EvaluatePayment(req PaymentRequest, minLeadDays int) Verdict {
	if !req.Totals.Debt.IsPositive() {
		return Verdict{Accepted: true}
	}

	if req.Method != model.PaymentCredit {
		return Verdict{
			Err: validation.New(validation.ErrPaymentMethodDebtMismatch, "paymentType",
				"outstanding "+req.Totals.Debt.String()),
		}
	}

	verdict := Verdict{DueDateRequired: true, DueDate: req.DueDate}
	if req.DueDate == nil {
		verdict.Err = validation.New(validation.ErrInvalidDueDate, "date_returned", "due date is required for credit")
		return verdict
	}
	minDate := MinDueDate(req.CreatedAt, minLeadDays)
	if startOfDay(req.DueDate.In(req.CreatedAt.Location())).Before(minDate) {
		verdict.Err = validation.New(validation.ErrInvalidDueDate, "date_returned",
			"earliest allowed is "+minDate.Format(time.DateOnly))
		return verdict
	}
	verdict.Accepted = true
	return verdict
}

// Draft is an order being edited.
type Draft struct {
	Lines      []model.OrderLine
	Paid       money.Money
	PaidEdited bool
	Method     model.PaymentMethod
	CreatedAt  time.Time
	DueDate    *time.Time
}

// Quote is everything a draft form needs to render.
type Quote struct {
	Lines   []LineView
	Totals  Totals
	Verdict Verdict
}

// Evaluate prices a draft, re-applies the paid default and runs the payment
// policy. It never fails; problems are carried in Verdict.Err.
func Evaluate(d Draft, catalog Catalog, minLeadDays int, diag DiagnosticFunc) Quote {
	lines := PriceLines(d.Lines, catalog, diag)
	total := money.Zero()
	for _, l := range lines {
		total = money.Add(total, l.Subtotal)
	}
	totals := Reconcile(total, SyncPaid(total, d.Paid, d.PaidEdited), diag)

	verdict := EvaluatePayment(PaymentRequest{
		Method:    d.Method,
		Totals:    totals,
		CreatedAt: d.CreatedAt,
		DueDate:   d.DueDate,
	}, minLeadDays)

	return Quote{Lines: lines, Totals: totals, Verdict: verdict}
}

// ValidateDraft is the submission guard: lines first, then payment policy.
func ValidateDraft(d Draft, q Quote) error {
	if !HasLines(d.Lines) {
		return validation.New(validation.ErrNoLineItems, "products", "")
	}
	return q.Verdict.Err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
