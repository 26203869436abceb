package daemon

import (
	"strconv"
	"time"

	"github.com/theirongolddev/aurion/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer, st *store.Store) *metrics {
	m := &metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aurion",
				Name:      "requests_total",
				Help:      "How many HTTP requests processed, partitioned by status code and HTTP method.",
			},
			[]string{"code", "method", "url"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "aurion",
				Name:      "request_duration_seconds",
				Help:      "The HTTP request latencies in seconds.",
			},
			[]string{"code", "method", "url"},
		),
	}

	subscribers := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "aurion",
			Name:      "store_subscribers",
			Help:      "Live change feed subscriptions on the record store.",
		},
		func() float64 { return float64(st.SubscriberCount()) },
	)

	reg.MustRegister(m.requestCount, m.requestDuration, subscribers)
	return m
}

// middleware updates the request metrics. Routes are labeled by their
// pattern so ids do not blow up cardinality.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start).Seconds()

		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}

		m.requestDuration.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		m.requestCount.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}

func (m *metrics) handler(reg *prometheus.Registry) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
