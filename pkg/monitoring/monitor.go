package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// VotesTotal outcome: created / retracted / switched
	VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_votes_total",
			Help: "Votes cast on prompts by direction and ledger outcome",
		},
		[]string{"direction", "outcome"},
	)

	ModerationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_moderation_actions_total",
			Help: "Moderation state transitions applied to prompts",
		},
		[]string{"action"},
	)

	BookmarkToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_bookmark_toggles_total",
			Help: "Bookmark toggles by resulting state",
		},
		[]string{"state"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(VotesTotal)
		prometheus.MustRegister(ModerationActions)
		prometheus.MustRegister(BookmarkToggles)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
