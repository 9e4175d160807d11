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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// StructureMutations 测验结构修改次数，outcome 为 ok / rejected / error
	StructureMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_quiz_structure_mutations_total",
			Help: "Quiz structure mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// CacheLookups 编辑页缓存命中情况
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_edit_page_cache_lookups_total",
			Help: "Edit page cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Init 可重复调用，测试中多次构建 App 时不会重复注册
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter, RequestDuration, StructureMutations, CacheLookups)
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
