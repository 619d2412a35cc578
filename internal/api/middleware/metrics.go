// metrics.go — Prometheus HTTP метрики для Media Store.
// Регистрирует метрики: ms_http_requests_total, ms_http_request_duration_seconds.
// Бизнес-метрики (ms_operations_total, ms_uploaded_bytes_total) обновляются
// из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ms_http_requests_total",
			Help: "Общее количество HTTP-запросов к Media Store",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ms_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Media Store в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// OperationsTotal — общее количество файловых операций по результату.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ms_operations_total",
			Help: "Общее количество файловых операций",
		},
		[]string{"operation", "result"},
	)

	// UploadedBytesTotal — суммарный объём успешно загруженных файлов.
	UploadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ms_uploaded_bytes_total",
			Help: "Суммарный объём загруженных файлов в байтах",
		},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// urlPrefix — префикс публичных URL файлов, имена файлов в нём заменяются на {filename}.
func MetricsMiddleware(urlPrefix string) func(http.Handler) http.Handler {
	publicPrefix := "/" + strings.Trim(urlPrefix, "/") + "/"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			normalizedPath := normalizePath(r.URL.Path, publicPrefix)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет имена файлов в пути на {filename} для предотвращения
// взрывного роста кардинальности метрик.
// /api/v1/uploads/1700000000000-abc.png → /api/v1/uploads/{filename}
// /uploads/1700000000000-abc.png → /uploads/{filename}
func normalizePath(path, publicPrefix string) string {
	const uploadsAPI = "/api/v1/uploads/"

	switch {
	case path == "/health/live",
		path == "/health/ready",
		path == "/metrics",
		path == "/api/v1/uploads",
		path == "/api/v1/maintenance/cleanup":
		return path
	case strings.HasPrefix(path, uploadsAPI) && len(path) > len(uploadsAPI):
		return uploadsAPI + "{filename}"
	case publicPrefix != "//" && strings.HasPrefix(path, publicPrefix) && len(path) > len(publicPrefix):
		return publicPrefix + "{filename}"
	}
	return "other"
}
