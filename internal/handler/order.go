package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/auth"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/order"
	"github.com/iurnickita/shopledger/internal/service"
)

type OrderLineJSON struct {
	Product  string           `json:"product"`
	Quantity decimal.Decimal  `json:"quantity"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type PostOrderJSONRequest struct {
	Client       string          `json:"client"`
	ClientPhone  string          `json:"clientPhone"`
	Branch       string          `json:"branch"`
	Notes        string          `json:"notes"`
	Products     []OrderLineJSON `json:"products"`
	PaymentType  string          `json:"paymentType"`
	PaidAmount   *money.Money    `json:"paidAmount"`
	DateReturned *string         `json:"date_returned"`
}

func (req PostOrderJSONRequest) toService(createdBy string) (service.OrderRequest, error) {
	out := service.OrderRequest{
		CreatedBy:   createdBy,
		Client:      req.Client,
		ClientPhone: req.ClientPhone,
		Branch:      req.Branch,
		Notes:       req.Notes,
		PaymentType: req.PaymentType,
		Paid:        req.PaidAmount,
	}
	for _, l := range req.Products {
		out.Lines = append(out.Lines, service.LineRequest{ProductID: l.Product, Quantity: l.Quantity, Price: l.Price})
	}
	if req.DateReturned != nil && *req.DateReturned != "" {
		due, err := parseDate(*req.DateReturned)
		if err != nil {
			return service.OrderRequest{}, err
		}
		out.DueDate = &due
	}
	return out, nil
}

type OrderLineJSONResponse struct {
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice model.UnitPrice `json:"unitPrice"`
}

type OrderJSONResponse struct {
	Number       string                  `json:"number"`
	CreatedBy    string                  `json:"createdBy"`
	Client       string                  `json:"client"`
	ClientPhone  string                  `json:"clientPhone"`
	Branch       string                  `json:"branch"`
	Products     []OrderLineJSONResponse `json:"products"`
	PaymentType  string                  `json:"paymentType"`
	Status       string                  `json:"status"`
	TotalAmount  money.Money             `json:"totalAmount"`
	PaidAmount   money.Money             `json:"paidAmount"`
	DebtAmount   money.Money             `json:"debtAmount"`
	DateReturned *time.Time              `json:"date_returned"`
	Notes        string                  `json:"notes"`
	CreatedAt    time.Time               `json:"createdAt"`
}

func orderJSON(o model.Order) OrderJSONResponse {
	lines := make([]OrderLineJSONResponse, 0, len(o.Data.Lines))
	for _, l := range o.Data.Lines {
		lines = append(lines, OrderLineJSONResponse{Product: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return OrderJSONResponse{
		Number:       o.Number,
		CreatedBy:    o.Data.CreatedBy,
		Client:       o.Data.Client,
		ClientPhone:  o.Data.ClientPhone,
		Branch:       o.Data.Branch,
		Products:     lines,
		PaymentType:  string(o.Data.PaymentType),
		Status:       o.Data.Status,
		TotalAmount:  o.Data.TotalAmount,
		PaidAmount:   o.Data.PaidAmount,
		DebtAmount:   o.Data.DebtAmount,
		DateReturned: o.Data.DateReturned,
		Notes:        o.Data.Notes,
		CreatedAt:    o.Data.CreatedAt,
	}
}

func (h *handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	var req PostOrderJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	orderReq, err := req.toService(r.Header.Get(auth.HeaderUserCodeKey))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	newOrder, err := h.service.PostOrder(r.Context(), orderReq)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, orderJSON(newOrder))
}

type QuoteLineJSONResponse struct {
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice model.UnitPrice `json:"unitPrice"`
	Subtotal  money.Money     `json:"subtotal"`
	Editable  bool            `json:"editable"`
}

type QuoteJSONResponse struct {
	Products        []QuoteLineJSONResponse      `json:"products"`
	TotalAmount     money.Money                  `json:"totalAmount"`
	PaidAmount      money.Money                  `json:"paidAmount"`
	DebtAmount      money.Money                  `json:"debtAmount"`
	Accepted        bool                         `json:"accepted"`
	DueDateRequired bool                         `json:"dueDateRequired"`
	DateReturned    *time.Time                   `json:"date_returned"`
	Error           *ValidationErrorJSONResponse `json:"error"`
}

func quoteJSON(q order.Quote) QuoteJSONResponse {
	lines := make([]QuoteLineJSONResponse, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, QuoteLineJSONResponse{
			Product:   l.Line.ProductID,
			Quantity:  l.Line.Quantity,
			UnitPrice: l.Line.UnitPrice,
			Subtotal:  l.Subtotal,
			Editable:  l.Editable,
		})
	}
	return QuoteJSONResponse{
		Products:        lines,
		TotalAmount:     q.Totals.Total,
		PaidAmount:      q.Totals.Paid,
		DebtAmount:      q.Totals.Debt,
		Accepted:        q.Verdict.Accepted,
		DueDateRequired: q.Verdict.DueDateRequired,
		DateReturned:    q.Verdict.DueDate,
		Error:           validationJSON(q.Verdict.Err),
	}
}

// PostOrderQuote prices a draft without saving it. Policy failures are part
// of the answer, not an error status.
func (h *handler) PostOrderQuote(w http.ResponseWriter, r *http.Request) {
	var req PostOrderJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	orderReq, err := req.toService(r.Header.Get(auth.HeaderUserCodeKey))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote, err := h.service.QuoteOrder(r.Context(), orderReq)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quoteJSON(quote))
}

// orderFilter reads status, client, from and to. to is inclusive.
func orderFilter(r *http.Request) (service.OrderFilter, error) {
	q := r.URL.Query()
	filter := service.OrderFilter{Status: q.Get("status"), Client: q.Get("client")}
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

func (h *handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ordersJSON := make([]OrderJSONResponse, 0, len(orders))
	for _, o := range orders {
		ordersJSON = append(ordersJSON, orderJSON(o))
	}
	h.writeJSON(w, http.StatusOK, ordersJSON)
}

func (h *handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if !validOrderNumber(number) {
		http.Error(w, "malformed order number", http.StatusUnprocessableEntity)
		return
	}

	o, err := h.service.GetOrder(r.Context(), number)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orderJSON(o))
}

// PatchOrder edits a stored order. The body is the order form; fields left
// out keep their stored values.
func (h *handler) PatchOrder(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if !validOrderNumber(number) {
		http.Error(w, "malformed order number", http.StatusUnprocessableEntity)
		return
	}

	var req PostOrderJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	orderReq, err := req.toService(r.Header.Get(auth.HeaderUserCodeKey))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	edited, err := h.service.PatchOrder(r.Context(), number, orderReq)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orderJSON(edited))
}

type PatchOrderStatusJSONRequest struct {
	Status string `json:"status"`
}

func (h *handler) PatchOrderStatus(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if !validOrderNumber(number) {
		http.Error(w, "malformed order number", http.StatusUnprocessableEntity)
		return
	}

	var req PatchOrderStatusJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.PutOrderStatus(r.Context(), number, req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type OrderStatsJSONResponse struct {
	TotalAmount money.Money    `json:"totalAmount"`
	TotalPaid   money.Money    `json:"totalPaid"`
	TotalDebt   money.Money    `json:"totalDebt"`
	TodaySales  money.Money    `json:"todaySales"`
	Orders      int            `json:"orders"`
	ByStatus    map[string]int `json:"byStatus"`
}

func (h *handler) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	filter, err := orderFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.service.GetOrderStats(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, OrderStatsJSONResponse{
		TotalAmount: stats.TotalAmount,
		TotalPaid:   stats.TotalPaid,
		TotalDebt:   stats.TotalDebt,
		TodaySales:  stats.TodaySales,
		Orders:      stats.Orders,
		ByStatus:    stats.ByStatus,
	})
}
