// reconcile.go — сверка каталога загрузок со ссылками из контента.
//
// Файл, на который не ссылается ни одна запись блога или товара, считается
// осиротевшим и удаляется (в dry-run — только попадает в отчёт).
// Каталог и БД читаются без общей транзакции: файл, загруженный во время
// сверки, может быть ошибочно признан сиротой. Сверка идемпотентна, поэтому
// окно неконсистентности — один интервал запуска.
//
// Ошибка удаления одного файла не прерывает обработку остальных.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/mediastore/internal/domain/model"
)

// Prometheus метрики сверки
var (
	reconcileRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ms_reconcile_runs_total",
		Help: "Общее количество запусков сверки",
	}, []string{"mode"})

	reconcileFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ms_reconcile_files_total",
		Help: "Файлы, обработанные сверкой, по результату",
	}, []string{"result"})

	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ms_reconcile_duration_seconds",
		Help:    "Длительность выполнения сверки в секундах",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
	})
)

// FileCatalog — операции хранилища, нужные сверке.
// Реализуется *filestore.FileStore.
type FileCatalog interface {
	List() ([]string, error)
	Delete(filename string) error
	URL(filename string) string
	URLPrefix() string
}

// ReconcileService — сервис сверки хранилища.
type ReconcileService struct {
	store     FileCatalog
	refs      ReferenceProvider
	extractor *ReferenceExtractor
	interval  time.Duration
	apply     bool
	logger    *slog.Logger

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewReconcileService создаёт сервис сверки.
// interval и apply используются только фоновым запуском (Start).
func NewReconcileService(
	store FileCatalog,
	refs ReferenceProvider,
	interval time.Duration,
	apply bool,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		store:     store,
		refs:      refs,
		extractor: NewReferenceExtractor(store.URLPrefix()),
		interval:  interval,
		apply:     apply,
		logger:    logger.With(slog.String("component", "reconcile")),
	}
}

// Start запускает фоновую сверку с периодическим тикером.
func (rs *ReconcileService) Start(ctx context.Context) {
	rsCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel
	rs.done = make(chan struct{})

	go rs.run(rsCtx)

	rs.logger.Info("Фоновая сверка запущена",
		slog.String("interval", rs.interval.String()),
		slog.Bool("apply", rs.apply),
	)
}

// Stop останавливает фоновую сверку и дожидается завершения текущего цикла.
func (rs *ReconcileService) Stop() {
	if rs.cancel == nil {
		return
	}
	rs.cancel()
	<-rs.done
	rs.logger.Info("Фоновая сверка остановлена")
}

// IsInProgress возвращает true, если сверка выполняется.
func (rs *ReconcileService) IsInProgress() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.inProcess
}

func (rs *ReconcileService) run(ctx context.Context) {
	defer close(rs.done)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rs.RunOnce(ctx, !rs.apply); err != nil && !errors.Is(err, ErrReconcileInProgress) {
				rs.logger.Error("Ошибка фоновой сверки", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce выполняет один цикл сверки.
// Если сверка уже выполняется, возвращает ErrReconcileInProgress.
// Ошибка возвращается, только если не удалось получить список файлов или ссылки;
// ошибки удаления отдельных файлов попадают в отчёт.
func (rs *ReconcileService) RunOnce(ctx context.Context, dryRun bool) (*model.CleanupReport, error) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Сверка уже выполняется, пропуск")
		return nil, ErrReconcileInProgress
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	report := model.NewCleanupReport(dryRun, time.Now().UTC())
	rs.logger.Info("Сверка начата", slog.Bool("dry_run", dryRun))

	if err := rs.reconcile(ctx, report); err != nil {
		return nil, err
	}

	report.CompletedAt = time.Now().UTC()
	duration := report.CompletedAt.Sub(report.StartedAt)

	mode := "apply"
	if dryRun {
		mode = "dry_run"
	}
	reconcileRunsTotal.WithLabelValues(mode).Inc()
	reconcileDurationSeconds.Observe(duration.Seconds())
	reconcileFilesTotal.WithLabelValues("kept").Add(float64(len(report.Kept)))
	reconcileFilesTotal.WithLabelValues("orphaned").Add(float64(len(report.Deleted)))
	reconcileFilesTotal.WithLabelValues("error").Add(float64(len(report.Errors)))

	rs.logger.Info("Сверка завершена",
		slog.Bool("dry_run", dryRun),
		slog.Int("kept", len(report.Kept)),
		slog.Int("orphaned", len(report.Deleted)),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("duration", duration),
	)

	return report, nil
}

// reconcile заполняет отчёт.
func (rs *ReconcileService) reconcile(ctx context.Context, report *model.CleanupReport) error {
	// 1. Файлы в каталоге
	files, err := rs.store.List()
	if err != nil {
		return fmt.Errorf("получение списка файлов: %w", err)
	}
	if len(files) == 0 {
		return nil
	}

	// 2. Ссылки из контента
	referenced, err := rs.extractor.Collect(ctx, rs.refs)
	if err != nil {
		return fmt.Errorf("сбор ссылок на файлы: %w", err)
	}

	// 3. Классификация
	for _, name := range files {
		if _, ok := referenced[rs.store.URL(name)]; ok {
			report.Kept = append(report.Kept, name)
			continue
		}

		if report.DryRun {
			report.Deleted = append(report.Deleted, name)
			continue
		}

		if err := rs.store.Delete(name); err != nil {
			msg := fmt.Sprintf("Не удалось удалить %s: %v", name, err)
			report.Errors = append(report.Errors, msg)
			rs.logger.Error("Ошибка удаления осиротевшего файла",
				slog.String("filename", name),
				slog.String("error", err.Error()),
			)
			continue
		}

		report.Deleted = append(report.Deleted, name)
		rs.logger.Info("Осиротевший файл удалён", slog.String("filename", name))
	}

	return nil
}
