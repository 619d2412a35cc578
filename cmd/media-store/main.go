// Точка входа Media Store — сервис загрузки изображений для CMS.
// Загружает конфигурацию, создаёт хранилище и сервисный слой, при наличии
// MS_DATABASE_URL подключается к PostgreSQL CMS (сверка, readiness, мониторинг),
// запускает HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/bigkaa/mediastore/internal/api/handlers"
	"github.com/bigkaa/mediastore/internal/api/middleware"
	"github.com/bigkaa/mediastore/internal/config"
	"github.com/bigkaa/mediastore/internal/database"
	"github.com/bigkaa/mediastore/internal/ratelimit"
	"github.com/bigkaa/mediastore/internal/repository"
	"github.com/bigkaa/mediastore/internal/server"
	"github.com/bigkaa/mediastore/internal/service"
	"github.com/bigkaa/mediastore/internal/storage/filename"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
	"github.com/bigkaa/mediastore/internal/storage/signature"
)

func main() {
	// 0. .env (если есть) — до чтения переменных окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Ошибка чтения .env", slog.String("error", err.Error()))
	}

	// 1. Конфигурация
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Логирование
	logger := config.SetupLogger(cfg)
	logger.Info("Media Store запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upload_dir", cfg.UploadDir),
		slog.String("url_prefix", cfg.URLPrefix),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Хранилище и проверка содержимого
	store := filestore.New(cfg.UploadDir, cfg.URLPrefix)
	if err := store.Probe(); err != nil {
		logger.Warn("Каталог загрузок недоступен на запись", slog.String("error", err.Error()))
	}

	// 4. Rate limiter с периодической очисткой истёкших окон
	limiter, err := ratelimit.New(ratelimit.Config{
		Window:   cfg.RateLimitWindow,
		Max:      cfg.RateLimitMax,
		Capacity: cfg.RateLimitCapacity,
	})
	if err != nil {
		logger.Error("Ошибка создания rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiter.Start(ctx, cfg.RateLimitWindow, logger)
	defer limiter.Stop()

	validator := signature.New(signature.DefaultTable())
	uploadSvc := service.NewUploadService(
		service.UploadOptions{
			AllowedTypes: cfg.AllowedTypes,
			MaxFileSize:  cfg.MaxFileSize,
			Limiter:      limiter,
		},
		store,
		validator,
		filename.New(),
		logger,
	)

	// 5. PostgreSQL CMS (опционально)
	var (
		pool         *pgxpool.Pool
		pgDB         *sql.DB
		pgChecker    handlers.ReadinessChecker
		reconcileSvc *service.ReconcileService
	)
	if cfg.DatabaseURL != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
		pool, err = database.Connect(connectCtx, cfg.DatabaseURL, logger)
		connectCancel()
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
		pgDB = stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		pgChecker = database.NewReadinessChecker(pool)
		reconcileSvc = service.NewReconcileService(
			store,
			repository.NewContentRepository(pool),
			cfg.ReconcileInterval,
			cfg.ReconcileApply,
			logger,
		)
	} else {
		logger.Warn("MS_DATABASE_URL не задан: очистка осиротевших файлов недоступна")
	}

	// 6. Аутентификация
	var auth middleware.Authenticator
	if cfg.AuthEnabled() {
		jwtAuth, err := middleware.NewJWTAuth(ctx, middleware.JWTAuthConfig{
			JWKSURL:         cfg.JWKSURL,
			CACertPath:      cfg.JWKSCACert,
			TLSSkipVerify:   cfg.TLSSkipVerify,
			ClientTimeout:   cfg.JWKSClientTimeout,
			RefreshInterval: cfg.JWKSRefreshInterval,
			JWTLeeway:       cfg.JWTLeeway,
		}, logger)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
		auth = jwtAuth
		logger.Info("JWT middleware инициализирован", slog.String("jwks_url", cfg.JWKSURL))
	} else {
		// Load допускает отсутствие JWKS только при явном MS_DEV_AUTH=true
		auth = middleware.NewDevAuth(logger)
		logger.Warn("MS_DEV_AUTH=true: JWT не проверяется, идентичность берётся из заголовка "+
			middleware.DevUserHeader+". Не использовать в production")
	}

	// 7. Фоновая сверка (опционально)
	if reconcileSvc != nil && cfg.ReconcileInterval > 0 {
		reconcileSvc.Start(ctx)
		defer reconcileSvc.Stop()
	}

	// 8. topologymetrics — мониторинг зависимостей (PostgreSQL + JWKS)
	var deps handlers.DependencyReporter
	dephealthSvc, err := service.NewDephealthService(
		"media-store",
		cfg.DephealthGroup,
		service.DephealthTargets{
			DB:            pgDB,
			DatabaseURL:   cfg.DatabaseURL,
			JWKSURL:       cfg.JWKSURL,
			TLSSkipVerify: cfg.TLSSkipVerify,
		},
		cfg.DephealthCheckInterval,
		logger,
	)
	switch {
	case errors.Is(err, service.ErrNoDependencies):
		logger.Info("topologymetrics: нет зависимостей для мониторинга")
	case err != nil:
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	default:
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
		} else {
			defer dephealthSvc.Stop()
			deps = dephealthSvc
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 9. HTTP-сервер
	api := handlers.NewAPIHandler(
		handlers.NewUploadHandler(uploadSvc, cfg.MaxFileSize, logger),
		handlers.NewFilesHandler(uploadSvc, store, logger),
		handlers.NewMaintenanceHandler(reconcileSvc, logger),
		handlers.NewHealthHandler(store, pgChecker, deps),
	)
	srv := server.New(cfg, logger, api, auth)

	if err := srv.Run(ctx); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		cancel()
		os.Exit(1) //nolint:gocritic // отложенные функции не критичны при аварийном завершении
	}

	logger.Info("Media Store остановлен")
}
