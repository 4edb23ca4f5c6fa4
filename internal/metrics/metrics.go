// Package metrics exposes shop ledger counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iurnickita/shopledger/internal/logger"
)

type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated        *prometheus.CounterVec
	DebtorPayments       prometheus.Counter
	ValidationRejections *prometheus.CounterVec
	SMSSent              prometheus.Counter
	SMSFailed            prometheus.Counter
	CashTransactions     *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
}

// New registers collectors on a private registry, so several instances can
// live in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OrdersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "orders_created_total",
			Help:      "Orders accepted, by payment method.",
		}, []string{"payment_type"}),
		DebtorPayments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "debtor_payments_total",
			Help:      "Payments applied to debtors.",
		}),
		ValidationRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "validation_rejections_total",
			Help:      "Requests refused by validation, by code.",
		}, []string{"code"}),
		SMSSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "sms_sent_total",
			Help:      "Overdue reminders delivered to the gateway.",
		}),
		SMSFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "sms_failed_total",
			Help:      "Overdue reminders the gateway refused.",
		}),
		CashTransactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopledger",
			Name:      "cash_transactions_total",
			Help:      "Cash book entries, by type.",
		}, []string{"type"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Mdlw observes handler latency under the given route label.
func (m *Metrics) Mdlw(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wl := logger.NewResponseWriterLogger(w)
		start := time.Now()
		h(wl, r)
		m.requestDuration.
			WithLabelValues(route, strconv.Itoa(wl.StatusCode())).
			Observe(time.Since(start).Seconds())
	}
}
