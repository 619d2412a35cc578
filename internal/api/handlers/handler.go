// Пакет handlers — HTTP-обработчики Media Store.
// handler.go — основной обработчик API, реализующий generated.ServerInterface,
// общие функции ответа и отображение ошибок сервисного слоя.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/mediastore/internal/api/errors"
	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/service"
)

// APIHandler — основной обработчик API Media Store.
// Реализует generated.ServerInterface, делегируя запросы доменным обработчикам.
type APIHandler struct {
	upload      *UploadHandler
	files       *FilesHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	upload *UploadHandler,
	files *FilesHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
) *APIHandler {
	return &APIHandler{
		upload:      upload,
		files:       files,
		maintenance: maintenance,
		health:      health,
	}
}

// UploadFile — POST /api/v1/uploads.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	h.upload.UploadFile(w, r)
}

// ListUploads — GET /api/v1/uploads.
func (h *APIHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	h.files.ListUploads(w, r)
}

// DeleteUpload — DELETE /api/v1/uploads/{filename}.
func (h *APIHandler) DeleteUpload(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	h.files.DeleteUpload(w, r, filename)
}

// RunCleanup — POST /api/v1/maintenance/cleanup.
func (h *APIHandler) RunCleanup(w http.ResponseWriter, r *http.Request, params generated.RunCleanupParams) {
	h.maintenance.RunCleanup(w, r, params)
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// ServeFile — публичная раздача файла. Не входит в ServerInterface:
// префикс URL задаётся конфигурацией и монтируется отдельно.
func (h *APIHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	h.files.ServeFile(w, r)
}

var _ generated.ServerInterface = (*APIHandler)(nil)

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError отображает категорию ошибки сервиса в HTTP-ответ.
// Внутренние подробности (Err) клиенту не передаются.
func writeServiceError(w http.ResponseWriter, err error) {
	message := "Внутренняя ошибка сервера"
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch service.KindOf(err) {
	case service.KindUnauthorized:
		apierrors.Unauthorized(w, message)
	case service.KindRateLimited:
		apierrors.RateLimited(w, message)
	case service.KindNoFile:
		apierrors.NoFile(w, message)
	case service.KindInvalidType:
		apierrors.InvalidType(w, message)
	case service.KindTooLarge:
		apierrors.FileTooLarge(w, message)
	case service.KindContentMismatch:
		apierrors.ContentMismatch(w, message)
	case service.KindDeleteFailed:
		apierrors.DeleteFailed(w, message)
	default:
		apierrors.InternalError(w, message)
	}
}
