package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/auth"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/service"
)

type CashTransactionJSONRequest struct {
	PaymentType string          `json:"paymentType"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Client      string          `json:"client"`
	Branch      string          `json:"branch"`
}

type CashTransactionJSONResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	PaymentType string          `json:"paymentType"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Client      string          `json:"client"`
	Branch      string          `json:"branch"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func cashTransactionJSON(e model.CashTransaction) CashTransactionJSONResponse {
	return CashTransactionJSONResponse{
		ID:          e.ID,
		Type:        e.Data.Type,
		PaymentType: string(e.Data.PaymentType),
		Amount:      e.Data.Amount,
		Currency:    e.Data.Currency,
		Description: e.Data.Description,
		Client:      e.Data.Client,
		Branch:      e.Data.Branch,
		CreatedBy:   e.Data.CreatedBy,
		CreatedAt:   e.Data.CreatedAt,
	}
}

type CashBalanceJSONResponse struct {
	In  money.Money `json:"in"`
	Out money.Money `json:"out"`
	Net money.Money `json:"net"`
}

type CashBookJSONResponse struct {
	Entries []CashTransactionJSONResponse `json:"entries"`
	Balance CashBalanceJSONResponse       `json:"balance"`
}

func (h *handler) PostCashIn(w http.ResponseWriter, r *http.Request) {
	h.postCashTransaction(w, r, model.CashIn)
}

func (h *handler) PostCashOut(w http.ResponseWriter, r *http.Request) {
	h.postCashTransaction(w, r, model.CashOut)
}

func (h *handler) postCashTransaction(w http.ResponseWriter, r *http.Request, kind string) {
	var req CashTransactionJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.service.PostCashTransaction(r.Context(), model.CashTransactionData{
		Type:        kind,
		PaymentType: model.PaymentMethod(req.PaymentType),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Client:      req.Client,
		Branch:      req.Branch,
		CreatedBy:   r.Header.Get(auth.HeaderUserCodeKey),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, cashTransactionJSON(entry))
}

// cashFilter reads type, paymentType, from and to. to is inclusive.
func cashFilter(r *http.Request) (service.CashFilter, error) {
	q := r.URL.Query()
	filter := service.CashFilter{Type: q.Get("type"), PaymentType: q.Get("paymentType")}
	if v := q.Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	return filter, nil
}

func (h *handler) GetCashTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := cashFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	book, err := h.service.ListCashTransactions(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries := make([]CashTransactionJSONResponse, 0, len(book.Entries))
	for _, e := range book.Entries {
		entries = append(entries, cashTransactionJSON(e))
	}
	h.writeJSON(w, http.StatusOK, CashBookJSONResponse{
		Entries: entries,
		Balance: CashBalanceJSONResponse{In: book.Balance.In, Out: book.Balance.Out, Net: book.Balance.Net},
	})
}

func (h *handler) DeleteCashTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCashTransaction(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
