package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/debtor"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
)

type LastPaymentJSON struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type NextPaymentJSON struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate *string         `json:"dueDate"`
}

func (n *NextPaymentJSON) toModel() (*model.NextPayment, error) {
	if n == nil {
		return nil, nil
	}
	next := &model.NextPayment{Amount: n.Amount}
	if n.DueDate != nil && *n.DueDate != "" {
		due, err := parseDate(*n.DueDate)
		if err != nil {
			return nil, err
		}
		next.DueDate = &due
	}
	return next, nil
}

type NextPaymentJSONResponse struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate *time.Time      `json:"dueDate"`
}

type DebtorJSONResponse struct {
	ID          string                   `json:"id"`
	ClientName  string                   `json:"clientName"`
	ClientPhone string                   `json:"clientPhone"`
	Description string                   `json:"description"`
	Order       string                   `json:"order,omitempty"`
	InitialDebt decimal.Decimal          `json:"initialDebt"`
	CurrentDebt decimal.Decimal          `json:"currentDebt"`
	TotalPaid   decimal.Decimal          `json:"totalPaid"`
	LastPayment *LastPaymentJSON         `json:"lastPayment"`
	NextPayment *NextPaymentJSONResponse `json:"nextPayment"`
	Status      string                   `json:"status"`
	IsOverdue   bool                     `json:"isOverdue"`
	Payments    []PaymentJSONResponse    `json:"payments,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

type PaymentJSONResponse struct {
	Amount    money.Money `json:"amount"`
	AppliedAt time.Time   `json:"appliedAt"`
}

func paymentsJSON(payments []model.PaymentRecord) []PaymentJSONResponse {
	out := make([]PaymentJSONResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentJSONResponse{Amount: p.Amount, AppliedAt: p.AppliedAt})
	}
	return out
}

func debtorJSON(d model.Debtor) DebtorJSONResponse {
	resp := DebtorJSONResponse{
		ID:          d.ID,
		ClientName:  d.Data.ClientName,
		ClientPhone: d.Data.ClientPhone,
		Description: d.Data.Description,
		Order:       d.Data.Order,
		InitialDebt: d.Data.InitialDebt,
		CurrentDebt: d.Data.CurrentDebt,
		TotalPaid:   d.Data.TotalPaid,
		Status:      d.Data.Status,
		IsOverdue:   d.Data.Status == model.DebtorStatusOverdue,
		CreatedAt:   d.Data.CreatedAt,
		UpdatedAt:   d.Data.UpdatedAt,
	}
	if d.Data.LastPayment != nil {
		resp.LastPayment = &LastPaymentJSON{Amount: d.Data.LastPayment.Amount, Date: d.Data.LastPayment.Date}
	}
	if d.Data.NextPayment != nil {
		resp.NextPayment = &NextPaymentJSONResponse{Amount: d.Data.NextPayment.Amount, DueDate: d.Data.NextPayment.DueDate}
	}
	if len(d.Data.Payments) > 0 {
		resp.Payments = paymentsJSON(d.Data.Payments)
	}
	return resp
}

type PostDebtorJSONRequest struct {
	ClientName  string           `json:"clientName"`
	ClientPhone string           `json:"clientPhone"`
	Description string           `json:"description"`
	Order       string           `json:"order"`
	InitialDebt decimal.Decimal  `json:"initialDebt"`
	NextPayment *NextPaymentJSON `json:"nextPayment"`
}

func (h *handler) PostDebtor(w http.ResponseWriter, r *http.Request) {
	var req PostDebtorJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	next, err := req.NextPayment.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.service.PostDebtor(r.Context(), model.DebtorData{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Description: req.Description,
		Order:       req.Order,
		InitialDebt: req.InitialDebt,
		NextPayment: next,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, debtorJSON(d))
}

// debtorFilter reads the debtor table filter from the query string.
func debtorFilter(q url.Values) (debtor.Filter, error) {
	filter := debtor.Filter{
		Client:         q.Get("client"),
		Status:         q.Get("status"),
		NextPaymentDue: q.Get("nextPaymentDue"),
	}

	decimals := []struct {
		key string
		dst **decimal.Decimal
	}{
		{"initialDebtMin", &filter.InitialDebtMin},
		{"initialDebtMax", &filter.InitialDebtMax},
		{"currentDebtMin", &filter.CurrentDebtMin},
		{"currentDebtMax", &filter.CurrentDebtMax},
		{"totalPaidMin", &filter.TotalPaidMin},
		{"totalPaidMax", &filter.TotalPaidMax},
	}
	for _, p := range decimals {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return debtor.Filter{}, err
		}
		*p.dst = &d
	}

	dates := []struct {
		key string
		dst **time.Time
	}{
		{"createdFrom", &filter.CreatedFrom},
		{"createdTo", &filter.CreatedTo},
	}
	for _, p := range dates {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := parseDate(v)
		if err != nil {
			return debtor.Filter{}, err
		}
		*p.dst = &t
	}

	if v := q.Get("hasLastPayment"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return debtor.Filter{}, err
		}
		filter.HasLastPayment = &b
	}
	return filter, nil
}

func (h *handler) GetDebtors(w http.ResponseWriter, r *http.Request) {
	filter, err := debtorFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	debtors, err := h.service.ListDebtors(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	debtorsJSON := make([]DebtorJSONResponse, 0, len(debtors))
	for _, d := range debtors {
		debtorsJSON = append(debtorsJSON, debtorJSON(d))
	}
	h.writeJSON(w, http.StatusOK, debtorsJSON)
}

func (h *handler) GetDebtor(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDebtor(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, debtorJSON(d))
}

func (h *handler) DeleteDebtor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDebtor(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PatchDebtorJSONRequest edits the debtor card. Debt amounts are not
// editable here; they follow payments and order edits.
type PatchDebtorJSONRequest struct {
	ClientName  *string          `json:"clientName"`
	ClientPhone *string          `json:"clientPhone"`
	Description *string          `json:"description"`
	NextPayment *NextPaymentJSON `json:"nextPayment"`
}

func (h *handler) PatchDebtor(w http.ResponseWriter, r *http.Request) {
	var req PatchDebtorJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	next, err := req.NextPayment.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.service.PatchDebtor(r.Context(), r.PathValue("id"), debtor.Patch{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Description: req.Description,
		NextPayment: next,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, debtorJSON(d))
}

// PostDebtorPaymentJSONRequest takes the amount as "amount"; "payment" is
// the older spelling.
type PostDebtorPaymentJSONRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Payment     *decimal.Decimal `json:"payment"`
	NextPayment *NextPaymentJSON `json:"nextPayment"`
}

func (h *handler) PostDebtorPayment(w http.ResponseWriter, r *http.Request) {
	var req PostDebtorPaymentJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	amount := decimal.Zero
	switch {
	case req.Amount != nil:
		amount = *req.Amount
	case req.Payment != nil:
		amount = *req.Payment
	}
	next, err := req.NextPayment.toModel()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := h.service.PostDebtorPayment(r.Context(), r.PathValue("id"), amount, next)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, debtorJSON(d))
}

func (h *handler) GetDebtorPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.GetDebtorPayments(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, paymentsJSON(payments))
}

type RemindJSONResponse struct {
	Overdue  int `json:"overdue"`
	Sent     int `json:"sent"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Reminded int `json:"reminded"`
}

func (h *handler) PostRemind(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RemindOverdue(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, RemindJSONResponse{
		Overdue:  report.Overdue,
		Sent:     report.Sent,
		Failed:   report.Failed,
		Skipped:  report.Skipped,
		Reminded: report.Reminded,
	})
}
