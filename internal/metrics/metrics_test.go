package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestCounters(t *testing.T) {
	m := New()
	m.OrdersCreated.WithLabelValues("credit").Inc()
	m.OrdersCreated.WithLabelValues("credit").Inc()
	m.ValidationRejections.WithLabelValues("INVALID_DUE_DATE").Inc()
	m.SMSSent.Inc()
	m.CashTransactions.WithLabelValues("cash-out").Inc()

	body := scrape(t, m)
	require.Contains(t, body, `shopledger_orders_created_total{payment_type="credit"} 2`)
	require.Contains(t, body, `shopledger_validation_rejections_total{code="INVALID_DUE_DATE"} 1`)
	require.Contains(t, body, `shopledger_sms_sent_total 1`)
	require.Contains(t, body, `shopledger_cash_transactions_total{type="cash-out"} 1`)

	// второй экземпляр не конфликтует с первым
	require.NotPanics(t, func() { New() })
}

func TestMdlw(t *testing.T) {
	m := New()
	h := m.Mdlw("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	require.Contains(t, scrape(t, m), `shopledger_http_request_duration_seconds_count{code="418",route="/api/orders"} 1`)
}
