// logging.go — журнал доступа Media Store через slog.
// Кроме метода и статуса пишет шаблон маршрута и идентичность вызывающего:
// идентичность появляется только внутри auth middleware, поэтому журнал
// получает её через accessEntry в контексте запроса.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// contextKeyAccessEntry — ключ записи журнала доступа в контексте запроса.
const contextKeyAccessEntry contextKey = "access_entry"

// accessEntry — поля записи журнала, которые заполняются ниже по цепочке.
type accessEntry struct {
	user string
}

// recordUser сохраняет идентичность в записи журнала доступа, если она есть в контексте.
func recordUser(ctx context.Context, subject string) {
	if entry, ok := ctx.Value(contextKeyAccessEntry).(*accessEntry); ok {
		entry.user = subject
	}
}

// responseWriter — обёртка для перехвата статус-кода и размера ответа.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// RequestLogger возвращает middleware, логирующий каждый HTTP-запрос.
// Уровень: INFO (1xx-3xx), WARN (4xx), ERROR (5xx).
// Успешные запросы health и metrics пишутся на DEBUG: их шлют пробы Kubernetes и Prometheus.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			entry := &accessEntry{}

			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), contextKeyAccessEntry, entry)))

			level := accessLevel(r.URL.Path, wrapped.statusCode)
			if !logger.Enabled(r.Context(), level) {
				return
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("remote_addr", r.RemoteAddr),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if route := rctx.RoutePattern(); route != "" {
					attrs = append(attrs, slog.String("route", route))
				}
			}
			if entry.user != "" {
				attrs = append(attrs, slog.String("user", entry.user))
			}
			if r.Method == http.MethodPost && r.ContentLength > 0 {
				attrs = append(attrs, slog.Int64("request_bytes", r.ContentLength))
			}

			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}

// accessLevel определяет уровень записи по статусу и пути.
func accessLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case path == "/metrics" || strings.HasPrefix(path, "/health/"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
