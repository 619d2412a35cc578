// media-cleanup — удаление осиротевших изображений из каталога загрузок.
//
// Использование:
//
//	media-cleanup            # dry-run: показать, что будет удалено
//	media-cleanup --apply    # удалить файлы
//
// Требует MS_DATABASE_URL. Коды выхода: 0 — успех, 1 — ошибка конфигурации
// или подключения, 2 — сверка завершена с ошибками удаления.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bigkaa/mediastore/internal/config"
	"github.com/bigkaa/mediastore/internal/database"
	"github.com/bigkaa/mediastore/internal/domain/model"
	"github.com/bigkaa/mediastore/internal/repository"
	"github.com/bigkaa/mediastore/internal/service"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
)

// Коды выхода.
const (
	exitOK         = 0
	exitFailure    = 1
	exitFileErrors = 2
)

// options — параметры командной строки.
type options struct {
	apply   bool
	timeout time.Duration
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Ошибка чтения .env: %v\n", err)
	}

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// parseFlags разбирает аргументы командной строки.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("media-cleanup", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.apply, "apply", false, "удалить осиротевшие файлы (без флага — только отчёт)")
	fs.BoolVar(&opts.apply, "delete", false, "синоним --apply")
	fs.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "максимальная длительность сверки")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if opts.timeout <= 0 {
		fmt.Fprintln(stderr, "--timeout должен быть положительным")
		return options{}, errors.New("некорректный --timeout")
	}
	return opts, nil
}

// run выполняет сверку и возвращает код выхода.
func run(ctx context.Context, opts options, stdout, stderr io.Writer) int {
	dryRun := !opts.apply

	cfg, err := config.LoadForCleanup()
	if err != nil {
		fmt.Fprintf(stderr, "Ошибка конфигурации: %v\n", err)
		return exitFailure
	}
	logger := config.NewLogger(cfg, stderr)

	printHeader(stdout, dryRun)

	if cfg.DatabaseURL == "" {
		fmt.Fprintln(stderr, "ОШИБКА: требуется переменная окружения MS_DATABASE_URL")
		return exitFailure
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Ошибка подключения к БД: %v\n", err)
		return exitFailure
	}
	defer pool.Close()

	rs := service.NewReconcileService(
		filestore.New(cfg.UploadDir, cfg.URLPrefix),
		repository.NewContentRepository(pool),
		0, false,
		logger,
	)

	report, err := rs.RunOnce(ctx, dryRun)
	if err != nil {
		fmt.Fprintf(stderr, "Очистка не выполнена: %v\n", err)
		return exitFailure
	}

	printReport(stdout, report)

	if len(report.Errors) > 0 {
		return exitFileErrors
	}
	return exitOK
}

// printHeader печатает заголовок с режимом запуска.
func printHeader(w io.Writer, dryRun bool) {
	mode := "(УДАЛЕНИЕ)"
	if dryRun {
		mode = "(DRY RUN)"
	}
	fmt.Fprintf(w, "\n=== Очистка изображений %s ===\n\n", mode)
}

// printReport печатает результаты сверки.
func printReport(w io.Writer, report *model.CleanupReport) {
	orphanedLabel, listLabel := "(удалено)", "Удалены"
	if report.DryRun {
		orphanedLabel, listLabel = "(будет удалено)", "Будут удалены"
	}

	fmt.Fprintln(w, "Результаты:")
	fmt.Fprintf(w, "  Используются (сохранены): %d файлов\n", len(report.Kept))
	fmt.Fprintf(w, "  Осиротевшие %s: %d файлов\n", orphanedLabel, len(report.Deleted))

	if len(report.Deleted) > 0 {
		fmt.Fprintf(w, "\n  %s:\n", listLabel)
		for _, name := range report.Deleted {
			fmt.Fprintf(w, "    - %s\n", name)
		}
	}

	if len(report.Errors) > 0 {
		fmt.Fprintln(w, "\n  Ошибки:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "    - %s\n", e)
		}
	}

	if report.DryRun && len(report.Deleted) > 0 {
		fmt.Fprintln(w, "\n  Запустите с флагом --apply, чтобы удалить эти файлы.")
	}
}
