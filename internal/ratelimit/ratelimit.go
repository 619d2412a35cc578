// Пакет ratelimit — ограничение частоты загрузок по идентичности пользователя.
// Фиксированное окно на каждого пользователя, записи хранятся в LRU-кэше
// ограниченного размера (hashicorp/golang-lru/v2).
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения по умолчанию.
const (
	DefaultWindow   = time.Minute
	DefaultMax      = 10
	DefaultCapacity = 10000
)

var (
	rateLimitDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ms_rate_limit_denied_total",
		Help: "Общее количество запросов, отклонённых rate limiter",
	})

	rateLimitEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ms_rate_limit_entries",
		Help: "Текущее количество отслеживаемых идентичностей",
	})
)

// Config — параметры rate limiter.
type Config struct {
	// Window — длительность окна
	Window time.Duration
	// Max — максимум запросов за окно
	Max int
	// Capacity — максимум одновременно отслеживаемых идентичностей
	Capacity int
}

// entry — счётчик одной идентичности.
type entry struct {
	count   int
	resetAt time.Time
}

// Limiter — in-memory rate limiter с фиксированным окном.
type Limiter struct {
	window time.Duration
	max    int

	// mu делает последовательность read-check-increment атомарной.
	mu      sync.Mutex
	entries *lru.Cache[string, *entry]

	now    func() time.Time
	cancel context.CancelFunc
}

// New создаёт Limiter. Нулевые поля Config заменяются значениями по умолчанию.
func New(cfg Config) (*Limiter, error) {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	cache, err := lru.New[string, *entry](cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("создание LRU-кэша rate limiter: %w", err)
	}

	return &Limiter{
		window:  cfg.Window,
		max:     cfg.Max,
		entries: cache,
		now:     time.Now,
	}, nil
}

// Allow регистрирует запрос identity и возвращает true, если он укладывается в лимит.
// Отклонённый запрос счётчик не увеличивает.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries.Get(identity)
	if !ok || now.After(e.resetAt) {
		l.entries.Add(identity, &entry{count: 1, resetAt: now.Add(l.window)})
		rateLimitEntries.Set(float64(l.entries.Len()))
		return true
	}

	if e.count >= l.max {
		rateLimitDeniedTotal.Inc()
		return false
	}

	e.count++
	return true
}

// Max возвращает лимит запросов за окно.
func (l *Limiter) Max() int {
	return l.max
}

// Window возвращает длительность окна.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Len возвращает количество отслеживаемых идентичностей.
func (l *Limiter) Len() int {
	return l.entries.Len()
}

// Sweep удаляет записи с истёкшим окном. Возвращает количество удалённых.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for _, key := range l.entries.Keys() {
		e, ok := l.entries.Peek(key)
		if ok && now.After(e.resetAt) {
			l.entries.Remove(key)
			removed++
		}
	}
	rateLimitEntries.Set(float64(l.entries.Len()))
	return removed
}

// Start запускает периодическую очистку просроченных записей.
func (l *Limiter) Start(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	sweepCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := l.Sweep(); n > 0 {
					logger.Debug("Очищены просроченные записи rate limiter",
						slog.Int("removed", n),
					)
				}
			}
		}
	}()
}

// Stop останавливает периодическую очистку.
func (l *Limiter) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
