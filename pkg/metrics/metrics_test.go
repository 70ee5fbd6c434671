package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveHold("success")
	m.ObserveHold("success")
	m.ObserveHold("already_held")
	m.ObservePurchase("rejected")
	m.ObserveTicketsGenerated(12)
	m.ObserveArchived()
	m.ObserveSwept(3)
	m.ObserveJob("archive_event", "success")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SeatHoldsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SeatHoldsTotal.WithLabelValues("already_held")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PurchasesTotal.WithLabelValues("rejected")))
	assert.Equal(t, float64(12), testutil.ToFloat64(m.TicketsGeneratedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EventsArchivedTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.HoldsSweptTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobsProcessedTotal.WithLabelValues("archive_event", "success")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHold("success")
		m.ObservePurchase("success")
		m.ObserveTicketsGenerated(1)
		m.ObserveArchived()
		m.ObserveSwept(1)
		m.ObserveJob("archive_event", "failed")
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewWithRegistry(prometheus.NewRegistry())

	engine := gin.New()
	engine.Use(m.Middleware())
	engine.GET("/events/:eventId", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/abc", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/events/:eventId", "200")))
}
