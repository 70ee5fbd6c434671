package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's prometheus collectors
type Metrics struct {
	// HTTP requests by method, route and status code
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP latency by method and route
	HTTPRequestDuration *prometheus.HistogramVec

	// Seat hold attempts (result: success, already_held, unavailable, error)
	SeatHoldsTotal *prometheus.CounterVec

	// Purchase attempts (result: success, rejected, error)
	PurchasesTotal *prometheus.CounterVec

	// Tickets created by the allocation builder
	TicketsGeneratedTotal prometheus.Counter

	// Events moved to the ended state
	EventsArchivedTotal prometheus.Counter

	// Expired holds removed by the sweeper
	HoldsSweptTotal prometheus.Counter

	// Background job executions (kind, result)
	JobsProcessedTotal *prometheus.CounterVec
}

// New creates Metrics registered with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors with reg
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatHoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of seat hold attempts",
			},
			[]string{"result"},
		),
		PurchasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_purchases_total",
				Help: "Total number of ticket purchase attempts",
			},
			[]string{"result"},
		),
		TicketsGeneratedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tickets_generated_total",
				Help: "Total number of tickets created for planned events",
			},
		),
		EventsArchivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "events_archived_total",
				Help: "Total number of archived events",
			},
		),
		HoldsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seat_holds_swept_total",
				Help: "Total number of expired holds removed by the sweeper",
			},
		),
		JobsProcessedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "background_jobs_processed_total",
				Help: "Total number of background job executions",
			},
			[]string{"kind", "result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatHoldsTotal,
		m.PurchasesTotal,
		m.TicketsGeneratedTotal,
		m.EventsArchivedTotal,
		m.HoldsSweptTotal,
		m.JobsProcessedTotal,
	)

	return m
}

// Middleware records request count and latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveHold records the result of a hold attempt
func (m *Metrics) ObserveHold(result string) {
	if m == nil {
		return
	}
	m.SeatHoldsTotal.WithLabelValues(result).Inc()
}

// ObservePurchase records the result of a purchase attempt
func (m *Metrics) ObservePurchase(result string) {
	if m == nil {
		return
	}
	m.PurchasesTotal.WithLabelValues(result).Inc()
}

// ObserveTicketsGenerated adds n generated tickets
func (m *Metrics) ObserveTicketsGenerated(n int) {
	if m == nil {
		return
	}
	m.TicketsGeneratedTotal.Add(float64(n))
}

// ObserveArchived counts one archived event
func (m *Metrics) ObserveArchived() {
	if m == nil {
		return
	}
	m.EventsArchivedTotal.Inc()
}

// ObserveSwept adds n removed holds
func (m *Metrics) ObserveSwept(n int) {
	if m == nil {
		return
	}
	m.HoldsSweptTotal.Add(float64(n))
}

// ObserveJob records one background job execution
func (m *Metrics) ObserveJob(kind, result string) {
	if m == nil {
		return
	}
	m.JobsProcessedTotal.WithLabelValues(kind, result).Inc()
}
