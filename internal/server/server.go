// Пакет server — HTTP-сервер Media Store с TLS и graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/bigkaa/mediastore/internal/api/errors"
	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/api/handlers"
	"github.com/bigkaa/mediastore/internal/api/middleware"
	"github.com/bigkaa/mediastore/internal/config"
)

// Server — HTTP-сервер Media Store.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// NewRouter собирает маршруты.
// Все API маршруты монтируются через HandlerWithOptions (oapi-codegen chi-server),
// аутентификация и scopes берутся из security операции в OpenAPI:
//
//	GET    /health/live, /health/ready, /metrics  — без аутентификации
//	POST   /api/v1/uploads                        — загрузка (bearerAuth)
//	GET    /api/v1/uploads                        — список (bearerAuth)
//	DELETE /api/v1/uploads/{filename}             — удаление (bearerAuth)
//	POST   /api/v1/maintenance/cleanup            — очистка (bearerAuth: media:admin)
//
// Публичная раздача GET {prefix}/{filename} монтируется отдельно: префикс из конфигурации.
func NewRouter(urlPrefix string, api *handlers.APIHandler, auth middleware.Authenticator, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.MetricsMiddleware(urlPrefix))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.NotFound(w, "Маршрут не найден")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.WriteError(w, http.StatusMethodNotAllowed, apierrors.CodeValidationError, "Метод не поддерживается")
	})

	router.Get(urlPrefix+"/{filename}", api.ServeFile)
	router.Head(urlPrefix+"/{filename}", api.ServeFile)

	generated.HandlerWithOptions(api, generated.ChiServerOptions{
		BaseRouter:       router,
		Middlewares:      []generated.MiddlewareFunc{securityMiddleware(auth)},
		ErrorHandlerFunc: paramErrorHandler,
	})

	return router
}

// securityMiddleware применяет аутентификацию к операциям, у которых в OpenAPI
// задан bearerAuth, и проверяет перечисленные там scopes.
// Операции с security: [] (health, metrics) проходят без проверки.
func securityMiddleware(auth middleware.Authenticator) generated.MiddlewareFunc {
	authenticate := auth.Middleware()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scopes, secured := r.Context().Value(generated.BearerAuthScopes).([]string)
			if !secured {
				next.ServeHTTP(w, r)
				return
			}

			h := next
			for _, scope := range scopes {
				h = middleware.RequireScope(scope)(h)
			}
			authenticate(h).ServeHTTP(w, r)
		})
	}
}

// paramErrorHandler — ошибки разбора параметров запроса в стандартном формате.
func paramErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, fmt.Sprintf("Некорректный параметр запроса: %s", err.Error()))
}

// New создаёт HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, api *handlers.APIHandler, auth middleware.Authenticator) *Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(cfg.URLPrefix, api, auth, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if cfg.TLSEnabled() {
		srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM) или отмены ctx.
// Затем выполняется graceful shutdown с таймаутом MS_SHUTDOWN_TIMEOUT.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
			slog.Bool("tls", s.cfg.TLSEnabled()),
		)

		var err error
		if s.cfg.TLSEnabled() {
			err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = s.httpServer.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.logger.Info("Контекст сервера отменён")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
