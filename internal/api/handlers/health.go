// health.go — обработчики health endpoints Media Store.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (каталог загрузок доступен на запись, PostgreSQL CMS доступен,
// состояние зависимостей по данным topologymetrics)
// /metrics — Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/config"
)

const serviceName = "media-store"

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// StorageProber — проверка доступности каталога загрузок.
// Реализуется *filestore.FileStore.
type StorageProber interface {
	Probe() error
}

// DependencyReporter — состояние внешних зависимостей.
// Реализуется *service.DephealthService.
type DependencyReporter interface {
	Health() map[string]bool
}

// storageChecker адаптирует StorageProber к ReadinessChecker.
type storageChecker struct {
	prober StorageProber
}

func (c storageChecker) CheckReady() (string, string) {
	if err := c.prober.Probe(); err != nil {
		return "fail", err.Error()
	}
	return "ok", "каталог доступен на запись"
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	storage     ReadinessChecker
	pgChecker   ReadinessChecker
	deps        DependencyReporter
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// pgChecker и deps могут быть nil: БД CMS не настроена, мониторинг зависимостей не запущен.
func NewHealthHandler(storage StorageProber, pgChecker ReadinessChecker, deps DependencyReporter) *HealthHandler {
	return &HealthHandler{
		storage:     storageChecker{prober: storage},
		pgChecker:   pgChecker,
		deps:        deps,
		promHandler: promhttp.Handler(),
	}
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generated.HealthStatus{
		Status:    generated.HealthStatusStatusOk,
		Timestamp: time.Now().UTC(),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe.
// Возвращает 200 (ok/degraded) или 503 (fail).
// Недоступная по данным topologymetrics зависимость понижает статус до degraded.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := generated.ReadinessStatus{
		Timestamp: time.Now().UTC(),
		Version:   config.Version,
		Service:   serviceName,
	}

	statuses := make([]string, 0, 3)

	stStatus, stMsg := h.storage.CheckReady()
	resp.Checks.Storage = generated.CheckResult{Status: generated.CheckResultStatus(stStatus), Message: stMsg}
	statuses = append(statuses, stStatus)

	if h.pgChecker != nil {
		pgStatus, pgMsg := h.pgChecker.CheckReady()
		resp.Checks.Postgresql = &generated.CheckResult{Status: generated.CheckResultStatus(pgStatus), Message: pgMsg}
		statuses = append(statuses, pgStatus)
	}

	if h.deps != nil {
		if deps := h.deps.Health(); len(deps) > 0 {
			resp.Checks.Dependencies = &deps
			if !allHealthy(deps) {
				statuses = append(statuses, "degraded")
			}
		}
	}

	resp.Status = generated.ReadinessStatusStatus(overallStatus(statuses...))

	status := http.StatusOK
	if resp.Status == generated.ReadinessStatusStatusFail {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// allHealthy возвращает true, если все зависимости доступны.
func allHealthy(deps map[string]bool) bool {
	for _, ok := range deps {
		if !ok {
			return false
		}
	}
	return true
}

// overallStatus определяет итоговый статус из статусов зависимостей.
// Если хотя бы одна зависимость fail — итог fail.
// Если хотя бы одна degraded — итог degraded.
// Иначе — ok.
func overallStatus(statuses ...string) string {
	hasDegraded := false
	for _, s := range statuses {
		if s == "fail" {
			return "fail"
		}
		if s == "degraded" {
			hasDegraded = true
		}
	}
	if hasDegraded {
		return "degraded"
	}
	return "ok"
}
