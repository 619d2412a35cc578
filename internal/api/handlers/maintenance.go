// maintenance.go — операторская очистка осиротевших файлов.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/mediastore/internal/api/errors"
	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/domain/model"
	"github.com/bigkaa/mediastore/internal/service"
)

// MaintenanceHandler — обработчик endpoints обслуживания.
type MaintenanceHandler struct {
	reconcileSvc *service.ReconcileService
	logger       *slog.Logger
}

// NewMaintenanceHandler создаёт обработчик обслуживания.
// reconcileSvc может быть nil, если БД CMS не настроена.
func NewMaintenanceHandler(reconcileSvc *service.ReconcileService, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		reconcileSvc: reconcileSvc,
		logger:       logger.With(slog.String("component", "maintenance_handler")),
	}
}

// RunCleanup обрабатывает POST /api/v1/maintenance/cleanup?apply=true|false.
// По умолчанию dry-run: файлы не удаляются, возвращается отчёт.
func (h *MaintenanceHandler) RunCleanup(w http.ResponseWriter, r *http.Request, params generated.RunCleanupParams) {
	if h.reconcileSvc == nil {
		apierrors.ServiceUnavailable(w, "Очистка недоступна: не настроено подключение к БД CMS (MS_DATABASE_URL)")
		return
	}

	apply := params.Apply != nil && *params.Apply

	report, err := h.reconcileSvc.RunOnce(r.Context(), !apply)
	if err != nil {
		if errors.Is(err, service.ErrReconcileInProgress) {
			apierrors.ReconcileInProgress(w, "Очистка уже выполняется")
			return
		}
		h.logger.Error("Ошибка очистки", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось выполнить очистку")
		return
	}

	writeJSON(w, http.StatusOK, domainToAPIReport(report))
}

// domainToAPIReport преобразует отчёт сверки в API-формат.
func domainToAPIReport(report *model.CleanupReport) generated.CleanupReport {
	return generated.CleanupReport{
		DryRun:      report.DryRun,
		StartedAt:   report.StartedAt,
		CompletedAt: report.CompletedAt,
		Kept:        report.Kept,
		Deleted:     report.Deleted,
		Errors:      report.Errors,
	}
}
