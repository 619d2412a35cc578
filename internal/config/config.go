// Пакет config — загрузка и валидация конфигурации Media Store
// из переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/mediastore/internal/storage/signature"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Значения по умолчанию для ограничений загрузки.
const (
	DefaultMaxFileSize  int64 = 5 * 1024 * 1024
	DefaultAllowedTypes       = "image/jpeg,image/png,image/webp,image/gif"
)

// Config содержит все параметры конфигурации Media Store.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Путь к TLS-сертификату (пусто — HTTP)
	TLSCert string
	// Путь к TLS-ключу
	TLSKey string

	// --- Хранилище ---

	// Каталог загрузок
	UploadDir string
	// Префикс публичных URL файлов
	URLPrefix string
	// Максимальный размер файла в байтах
	MaxFileSize int64
	// Разрешённые MIME-типы
	AllowedTypes []string

	// --- Rate limiting ---

	// Окно лимита
	RateLimitWindow time.Duration
	// Максимум загрузок за окно
	RateLimitMax int
	// Максимум отслеживаемых идентичностей
	RateLimitCapacity int

	// --- JWT ---

	// URL JWKS endpoint
	JWKSURL string
	// Режим разработки: идентичность из заголовка X-User-ID, без JWT
	DevAuth bool
	// Путь к CA-сертификату для JWKS (опционально)
	JWKSCACert string
	// Пропускать проверку TLS-сертификатов JWKS
	TLSSkipVerify bool
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Интервал обновления JWKS
	JWKSRefreshInterval time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// --- PostgreSQL CMS ---

	// DSN базы данных CMS (пусто — сверка недоступна)
	DatabaseURL string

	// --- Сверка ---

	// Интервал фоновой сверки (0 — выключена)
	ReconcileInterval time.Duration
	// Фоновая сверка удаляет файлы (false — только отчёт)
	ReconcileApply bool

	// --- topologymetrics ---

	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// Имя группы в метриках зависимостей
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию HTTP-сервиса из переменных окружения,
// валидирует значения и возвращает Config или ошибку.
// Требует MS_JWKS_URL либо явного MS_DEV_AUTH=true.
func Load() (*Config, error) {
	return load(true)
}

// LoadForCleanup загружает конфигурацию утилиты media-cleanup.
// Утилита не принимает HTTP-запросов, параметры аутентификации не проверяются.
func LoadForCleanup() (*Config, error) {
	return load(false)
}

func load(requireAuth bool) (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// MS_PORT — порт HTTP-сервера (по умолчанию 8030)
	cfg.Port, err = getEnvInt("MS_PORT", 8030)
	if err != nil {
		return nil, fmt.Errorf("MS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("MS_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// MS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_LEVEL: %w", err)
	}

	// MS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("MS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// MS_TLS_CERT / MS_TLS_KEY — задаются вместе
	cfg.TLSCert = getEnvDefault("MS_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("MS_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, errors.New("MS_TLS_CERT и MS_TLS_KEY должны задаваться вместе")
	}

	// --- Хранилище ---

	// MS_UPLOAD_DIR — каталог загрузок (по умолчанию ./public/uploads)
	cfg.UploadDir = getEnvDefault("MS_UPLOAD_DIR", "./public/uploads")

	// MS_URL_PREFIX — префикс публичных URL (по умолчанию /uploads)
	cfg.URLPrefix = "/" + strings.Trim(getEnvDefault("MS_URL_PREFIX", "/uploads"), "/")
	if cfg.URLPrefix == "/" || strings.HasPrefix(cfg.URLPrefix, "/api/") ||
		cfg.URLPrefix == "/health" || cfg.URLPrefix == "/metrics" {
		return nil, fmt.Errorf("MS_URL_PREFIX: префикс %q конфликтует с маршрутами сервиса", cfg.URLPrefix)
	}

	// MS_MAX_FILE_SIZE — максимальный размер файла в байтах (по умолчанию 5 МБ)
	cfg.MaxFileSize, err = getEnvInt64("MS_MAX_FILE_SIZE", DefaultMaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("MS_MAX_FILE_SIZE: %w", err)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MS_MAX_FILE_SIZE: значение %d должно быть положительным", cfg.MaxFileSize)
	}

	// MS_ALLOWED_TYPES — разрешённые MIME-типы через запятую.
	// Каждый тип должен иметь сигнатуру, иначе такие файлы никогда не пройдут проверку.
	cfg.AllowedTypes = parseCSV(strings.ToLower(getEnvDefault("MS_ALLOWED_TYPES", DefaultAllowedTypes)))
	if len(cfg.AllowedTypes) == 0 {
		return nil, errors.New("MS_ALLOWED_TYPES: список разрешённых типов пуст")
	}
	validator := signature.New(signature.DefaultTable())
	for _, mime := range cfg.AllowedTypes {
		if !validator.Supported(mime) {
			return nil, fmt.Errorf("MS_ALLOWED_TYPES: для типа %q нет сигнатуры", mime)
		}
	}

	// --- Rate limiting ---

	// MS_RATE_LIMIT_WINDOW — окно лимита (по умолчанию 1m)
	cfg.RateLimitWindow, err = getEnvDuration("MS_RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MS_RATE_LIMIT_WINDOW: %w", err)
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, errors.New("MS_RATE_LIMIT_WINDOW: значение должно быть положительным")
	}

	// MS_RATE_LIMIT_MAX — загрузок за окно (по умолчанию 10)
	cfg.RateLimitMax, err = getEnvInt("MS_RATE_LIMIT_MAX", 10)
	if err != nil {
		return nil, fmt.Errorf("MS_RATE_LIMIT_MAX: %w", err)
	}
	if cfg.RateLimitMax < 1 {
		return nil, fmt.Errorf("MS_RATE_LIMIT_MAX: значение %d должно быть не меньше 1", cfg.RateLimitMax)
	}

	// MS_RATE_LIMIT_CAPACITY — отслеживаемых идентичностей (по умолчанию 10000)
	cfg.RateLimitCapacity, err = getEnvInt("MS_RATE_LIMIT_CAPACITY", 10000)
	if err != nil {
		return nil, fmt.Errorf("MS_RATE_LIMIT_CAPACITY: %w", err)
	}
	if cfg.RateLimitCapacity < 1 {
		return nil, fmt.Errorf("MS_RATE_LIMIT_CAPACITY: значение %d должно быть не меньше 1", cfg.RateLimitCapacity)
	}

	// --- JWT ---

	// MS_JWKS_URL — обязательный, если не включён MS_DEV_AUTH
	cfg.JWKSURL = getEnvDefault("MS_JWKS_URL", "")

	// MS_DEV_AUTH — режим разработки без JWT (по умолчанию false)
	cfg.DevAuth, err = getEnvBool("MS_DEV_AUTH", false)
	if err != nil {
		return nil, fmt.Errorf("MS_DEV_AUTH: %w", err)
	}
	if requireAuth {
		switch {
		case cfg.JWKSURL == "" && !cfg.DevAuth:
			return nil, errors.New("MS_JWKS_URL обязателен (для локальной разработки без JWT задайте MS_DEV_AUTH=true)")
		case cfg.JWKSURL != "" && cfg.DevAuth:
			return nil, errors.New("MS_JWKS_URL и MS_DEV_AUTH=true взаимоисключающие")
		}
	}

	// MS_JWKS_CA_CERT — путь к CA-сертификату (опционально)
	cfg.JWKSCACert = getEnvDefault("MS_JWKS_CA_CERT", "")

	// MS_TLS_SKIP_VERIFY — пропуск проверки TLS (по умолчанию false)
	cfg.TLSSkipVerify, err = getEnvBool("MS_TLS_SKIP_VERIFY", false)
	if err != nil {
		return nil, fmt.Errorf("MS_TLS_SKIP_VERIFY: %w", err)
	}

	// MS_JWKS_CLIENT_TIMEOUT — таймаут HTTP-клиента JWKS (по умолчанию 10s)
	cfg.JWKSClientTimeout, err = getEnvDuration("MS_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// MS_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 15m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("MS_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("MS_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// MS_JWT_LEEWAY — отклонение времени JWT (по умолчанию 5s)
	cfg.JWTLeeway, err = getEnvDuration("MS_JWT_LEEWAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_JWT_LEEWAY: %w", err)
	}

	// --- PostgreSQL CMS ---

	// MS_DATABASE_URL — опционально для сервиса, обязательно для media-cleanup
	cfg.DatabaseURL = getEnvDefault("MS_DATABASE_URL", "")

	// --- Сверка ---

	// MS_RECONCILE_INTERVAL — интервал фоновой сверки (по умолчанию выключена)
	cfg.ReconcileInterval, err = getEnvDuration("MS_RECONCILE_INTERVAL", 0)
	if err != nil {
		return nil, fmt.Errorf("MS_RECONCILE_INTERVAL: %w", err)
	}
	if cfg.ReconcileInterval < 0 {
		return nil, errors.New("MS_RECONCILE_INTERVAL: значение не может быть отрицательным")
	}
	if cfg.ReconcileInterval > 0 && cfg.DatabaseURL == "" {
		return nil, errors.New("MS_RECONCILE_INTERVAL: фоновая сверка требует MS_DATABASE_URL")
	}

	// MS_RECONCILE_APPLY — фоновая сверка удаляет файлы (по умолчанию false)
	cfg.ReconcileApply, err = getEnvBool("MS_RECONCILE_APPLY", false)
	if err != nil {
		return nil, fmt.Errorf("MS_RECONCILE_APPLY: %w", err)
	}

	// --- topologymetrics ---

	// MS_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("MS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// MS_DEPHEALTH_GROUP — группа в метриках (по умолчанию media-store)
	cfg.DephealthGroup = getEnvDefault("MS_DEPHEALTH_GROUP", "media-store")

	// --- Graceful shutdown ---

	// MS_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 10s)
	cfg.ShutdownTimeout, err = getEnvDuration("MS_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// TLSEnabled возвращает true, если заданы сертификат и ключ.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// AuthEnabled возвращает true, если настроена JWT-аутентификация.
func (c *Config) AuthEnabled() bool {
	return c.JWKSURL != ""
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// NewLogger создаёт slog-логгер с уровнем и форматом из конфигурации.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 из переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
