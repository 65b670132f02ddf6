// Package metrics exposes Prometheus collectors for HTTP traffic and
// portal business activity.
package metrics

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/domain/identity"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/aquaportal/backend/internal/domain/support"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	billsIssued       prometheus.Counter
	billsRevised      prometheus.Counter
	billsPaid         prometheus.Counter
	billsOverdue      prometheus.Counter
	billedAmount      prometheus.Counter
	paymentsRecorded  *prometheus.CounterVec
	paymentAmount     *prometheus.CounterVec
	paymentsReviewed  *prometheus.CounterVec
	complaintsFiled   *prometheus.CounterVec
	complaintsUpdated *prometheus.CounterVec
	registrations     prometheus.Counter
}

// New creates a collector with every metric registered under namespace
func New(namespace string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	c.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	c.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests being served",
	})

	c.billsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_issued_total",
		Help:      "Bills created by administrators",
	})
	c.billsRevised = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_revised_total",
		Help:      "Bills whose readings or rate were revised",
	})
	c.billsPaid = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_paid_total",
		Help:      "Bills moved to paid",
	})
	c.billsOverdue = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bills_overdue_total",
		Help:      "Bills marked overdue by the sweep",
	})
	c.billedAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billed_amount_total",
		Help:      "Sum of non-negative amounts on issued bills",
	})
	c.paymentsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Payments recorded, by method",
	}, []string{"method"})
	c.paymentAmount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_amount_total",
		Help:      "Sum of recorded payment amounts, by method",
	}, []string{"method"})
	c.paymentsReviewed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_reviewed_total",
		Help:      "Payment reviews, by resulting status",
	}, []string{"status"})
	c.complaintsFiled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "complaints_filed_total",
		Help:      "Complaints filed, by priority",
	}, []string{"priority"})
	c.complaintsUpdated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "complaints_responded_total",
		Help:      "Admin complaint updates, by resulting status",
	}, []string{"status"})
	c.registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Accounts registered",
	})

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.httpInFlight,
		c.billsIssued,
		c.billsRevised,
		c.billsPaid,
		c.billsOverdue,
		c.billedAmount,
		c.paymentsRecorded,
		c.paymentAmount,
		c.paymentsReviewed,
		c.complaintsFiled,
		c.complaintsUpdated,
		c.registrations,
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RegisterDB exports connection pool statistics for db
func (c *Collector) RegisterDB(db *sql.DB, name string) error {
	return c.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Middleware records request counts and latency by route template
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

// Handle implements shared.EventHandler, turning domain events into
// business counters.
func (c *Collector) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.BillIssuedEvent:
		c.billsIssued.Inc()
		if e.Amount.IsPositive() {
			c.billedAmount.Add(e.Amount.InexactFloat64())
		}
	case *billing.BillRevisedEvent:
		c.billsRevised.Inc()
	case *billing.BillPaidEvent:
		c.billsPaid.Inc()
	case *billing.BillOverdueEvent:
		c.billsOverdue.Inc()
	case *payment.PaymentRecordedEvent:
		method := string(e.Method)
		c.paymentsRecorded.WithLabelValues(method).Inc()
		c.paymentAmount.WithLabelValues(method).Add(e.Amount.InexactFloat64())
	case *payment.PaymentReviewedEvent:
		c.paymentsReviewed.WithLabelValues(string(e.Status)).Inc()
	case *support.ComplaintFiledEvent:
		c.complaintsFiled.WithLabelValues(string(e.Priority)).Inc()
	case *support.ComplaintRespondedEvent:
		c.complaintsUpdated.WithLabelValues(string(e.Status)).Inc()
	case *identity.ProfileRegisteredEvent:
		c.registrations.Inc()
	}
	return nil
}

// EventTypes returns nil so the collector sees every event
func (c *Collector) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*Collector)(nil)
