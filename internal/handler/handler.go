package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/theplant/luhn"
	"go.uber.org/zap"

	"github.com/iurnickita/shopledger/internal/auth"
	"github.com/iurnickita/shopledger/internal/gzip"
	"github.com/iurnickita/shopledger/internal/handler/config"
	"github.com/iurnickita/shopledger/internal/logger"
	"github.com/iurnickita/shopledger/internal/metrics"
	"github.com/iurnickita/shopledger/internal/service"
	"github.com/iurnickita/shopledger/internal/validation"
)

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, metrics *metrics.Metrics, zaplog *zap.Logger) error {
	h := newHandler(auth, service, metrics, zaplog)
	router := h.newRouter()

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zaplog.Info("server started", zap.String("addr", cfg.ServerAddr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type handler struct {
	auth    auth.Auth
	service service.Service
	metrics *metrics.Metrics
	zaplog  *zap.Logger
}

func newHandler(auth auth.Auth, service service.Service, metrics *metrics.Metrics, zaplog *zap.Logger) *handler {
	return &handler{
		auth:    auth,
		service: service,
		metrics: metrics,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter() *http.ServeMux {
	mux := http.NewServeMux()

	public := func(pattern string, f http.HandlerFunc) {
		mux.HandleFunc(pattern, gzip.GzipMiddleware(logger.RequestLogMdlw(h.metrics.Mdlw(pattern, f), h.zaplog)))
	}
	private := func(pattern string, f http.HandlerFunc) {
		public(pattern, h.auth.Middleware(f))
	}

	public("POST /api/user/register", h.auth.Register)
	public("POST /api/user/login", h.auth.Login)

	private("POST /api/products", h.PostProduct)
	private("GET /api/products", h.GetProducts)
	private("GET /api/products/{id}", h.GetProduct)
	private("PATCH /api/products/{id}", h.PatchProduct)
	private("DELETE /api/products/{id}", h.DeleteProduct)

	private("POST /api/orders/quote", h.PostOrderQuote)
	private("POST /api/orders", h.PostOrder)
	private("GET /api/orders", h.GetOrders)
	private("GET /api/orders/stats", h.GetOrderStats)
	private("GET /api/orders/{number}", h.GetOrder)
	private("PATCH /api/orders/{number}", h.PatchOrder)
	private("PATCH /api/orders/{number}/status", h.PatchOrderStatus)

	private("POST /api/debtors", h.PostDebtor)
	private("GET /api/debtors", h.GetDebtors)
	private("POST /api/debtors/remind", h.PostRemind)
	private("GET /api/debtors/{id}", h.GetDebtor)
	private("PATCH /api/debtors/{id}", h.PatchDebtor)
	private("DELETE /api/debtors/{id}", h.DeleteDebtor)
	private("POST /api/debtors/{id}/payment", h.PostDebtorPayment)
	private("GET /api/debtors/{id}/payments", h.GetDebtorPayments)

	private("POST /api/transactions/cash-in", h.PostCashIn)
	private("POST /api/transactions/cash-out", h.PostCashOut)
	private("GET /api/transactions", h.GetCashTransactions)
	private("DELETE /api/transactions/{id}", h.DeleteCashTransaction)

	mux.Handle("GET /metrics", h.metrics.Handler())

	return mux
}

// ValidationErrorJSONResponse is the 422 body for coded validation failures.
type ValidationErrorJSONResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validationJSON(err error) *ValidationErrorJSONResponse {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return nil
	}
	return &ValidationErrorJSONResponse{Code: string(verr.Code()), Field: verr.Field, Message: verr.Error()}
}

// writeError maps service errors to HTTP codes.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	if body := validationJSON(err); body != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}
	switch {
	case errors.Is(err, service.ErrInsufficientData):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrUnprocessableEntity):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.zaplog.Error("request failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, code int, v any) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(responseJSON)
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// validOrderNumber checks the receipt check digit.
func validOrderNumber(number string) bool {
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return false
	}
	return luhn.Valid(n)
}

// parseDate accepts a bare date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
