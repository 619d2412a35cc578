// Пакет service — бизнес-логика Media Store.
// upload.go — сервис загрузки файлов: проверка типа и размера, сверка
// сигнатуры содержимого, генерация имени и запись в FileStore.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bigkaa/mediastore/internal/api/middleware"
	"github.com/bigkaa/mediastore/internal/domain/model"
	"github.com/bigkaa/mediastore/internal/storage/filename"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
	"github.com/bigkaa/mediastore/internal/storage/signature"
)

// UploadOptions — ограничения загрузки.
type UploadOptions struct {
	// AllowedTypes — разрешённые MIME-типы (единый список для HTTP и хранилища)
	AllowedTypes []string
	// MaxFileSize — максимальный размер файла в байтах
	MaxFileSize int64
	// Limiter — лимит загрузок на идентичность (nil — без лимита)
	Limiter QuotaLimiter
}

// QuotaLimiter — лимит загрузок за окно. Реализуется *ratelimit.Limiter.
type QuotaLimiter interface {
	Allow(identity string) bool
	Max() int
	Window() time.Duration
}

const mb = 1024 * 1024

// UploadService — сервис загрузки и удаления файлов.
type UploadService struct {
	opts      UploadOptions
	store     *filestore.FileStore
	validator *signature.Validator
	names     *filename.Generator
	logger    *slog.Logger
}

// NewUploadService создаёт сервис загрузки файлов.
func NewUploadService(
	opts UploadOptions,
	store *filestore.FileStore,
	validator *signature.Validator,
	names *filename.Generator,
	logger *slog.Logger,
) *UploadService {
	return &UploadService{
		opts:      opts,
		store:     store,
		validator: validator,
		names:     names,
		logger:    logger.With(slog.String("component", "upload_service")),
	}
}

// Admit проверяет, что вызывающий известен и не превысил лимит загрузок.
// Вызывается до чтения тела запроса.
func (s *UploadService) Admit(identity string) error {
	if identity == "" {
		s.reject("unauthorized")
		return newError(KindUnauthorized, "Требуется аутентификация")
	}
	if s.opts.Limiter != nil && !s.opts.Limiter.Allow(identity) {
		s.reject("rate_limited")
		s.logger.Warn("Превышен лимит загрузок", slog.String("user", identity))
		return newError(KindRateLimited, fmt.Sprintf("Превышен лимит загрузок. Максимум %d загрузок за %s",
			s.opts.Limiter.Max(), s.opts.Limiter.Window()))
	}
	return nil
}

// Upload проверяет и сохраняет файл.
//
// Поток:
//  1. Тип из списка разрешённых
//  2. Размер из заголовка
//  3. Чтение содержимого (не больше MaxFileSize+1 байт)
//  4. Фактический размер
//  5. Сигнатура содержимого
//  6. Генерация имени и запись
//
// Все отказы происходят до записи на диск.
func (s *UploadService) Upload(ctx context.Context, req model.UploadRequest) (*model.StoredFile, error) {
	if req.Reader == nil {
		s.reject("no_file")
		return nil, ErrNoFile
	}

	contentType := normalizeContentType(req.ContentType)

	// 1. Тип
	if !slices.Contains(s.opts.AllowedTypes, contentType) {
		s.reject("invalid_type")
		return nil, newError(KindInvalidType, fmt.Sprintf("Недопустимый тип файла %q. Разрешены: %s",
			req.ContentType, strings.Join(s.opts.AllowedTypes, ", ")))
	}

	// 2. Размер из заголовка
	if req.Size > s.opts.MaxFileSize {
		s.reject("too_large")
		return nil, s.tooLarge(req.Size)
	}

	// 3. Чтение
	data, err := io.ReadAll(io.LimitReader(req.Reader, s.opts.MaxFileSize+1))
	if err != nil {
		s.reject("read_error")
		return nil, &Error{Kind: KindInternal, Message: "Ошибка чтения файла", Err: err}
	}

	// 4. Фактический размер: заголовок мог быть занижен
	if int64(len(data)) > s.opts.MaxFileSize {
		s.reject("too_large")
		return nil, s.tooLarge(max(req.Size, int64(len(data))))
	}

	// 5. Сигнатура
	if !s.validator.Validate(data, contentType) {
		s.reject("content_mismatch")
		s.logger.Debug("Содержимое не совпадает с заявленным типом",
			slog.String("declared", contentType),
			slog.String("detected", mimetype.Detect(data).String()),
			slog.String("uploaded_by", req.UploadedBy),
		)
		return nil, newError(KindContentMismatch,
			"Содержимое файла не соответствует заявленному типу. Возможна подмена файла")
	}

	if err := ctx.Err(); err != nil {
		s.reject("canceled")
		return nil, &Error{Kind: KindInternal, Message: "Загрузка прервана", Err: err}
	}

	// 6. Имя и запись
	name := s.names.Generate(req.Filename, contentType)
	saved, err := s.store.Save(name, data)
	if err != nil {
		s.reject("write_error")
		s.logger.Error("Ошибка сохранения файла",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		return nil, &Error{Kind: KindInternal, Message: "Ошибка сохранения файла на диск", Err: err}
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	middleware.UploadedBytesTotal.Add(float64(saved.Size))

	s.logger.Info("Файл загружен",
		slog.String("filename", saved.Filename),
		slog.String("original_filename", req.Filename),
		slog.String("content_type", contentType),
		slog.Int64("size", saved.Size),
		slog.String("uploaded_by", req.UploadedBy),
	)

	return &model.StoredFile{
		Filename:    saved.Filename,
		URL:         s.store.URL(saved.Filename),
		Size:        saved.Size,
		ContentType: contentType,
	}, nil
}

// Delete удаляет файл из хранилища. Отсутствующий файл — успех.
func (s *UploadService) Delete(_ context.Context, name string) error {
	if err := s.store.Delete(name); err != nil {
		middleware.OperationsTotal.WithLabelValues("delete", "error").Inc()
		s.logger.Error("Ошибка удаления файла",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		kind := KindInternal
		if errors.Is(err, filestore.ErrDeleteFailed) {
			kind = KindDeleteFailed
		}
		return &Error{Kind: kind, Message: "Не удалось удалить файл", Err: err}
	}

	middleware.OperationsTotal.WithLabelValues("delete", "success").Inc()
	s.logger.Info("Файл удалён", slog.String("filename", filestore.BaseName(name)))
	return nil
}

// URL возвращает публичный URL файла.
func (s *UploadService) URL(name string) string {
	return s.store.URL(name)
}

// List возвращает имена всех файлов хранилища.
func (s *UploadService) List(_ context.Context) ([]string, error) {
	return s.store.List()
}

// RequestTooLarge — ошибка для тела запроса, превысившего лимит до разбора multipart.
// Фактический размер файла в этот момент неизвестен.
func (s *UploadService) RequestTooLarge() error {
	s.reject("too_large")
	return newError(KindTooLarge, fmt.Sprintf("Файл слишком большой. Максимум: %.0f МБ (%d байт)",
		float64(s.opts.MaxFileSize)/mb, s.opts.MaxFileSize))
}

// reject учитывает отклонённую загрузку в метриках.
func (s *UploadService) reject(reason string) {
	middleware.OperationsTotal.WithLabelValues("upload", reason).Inc()
}

// tooLarge формирует ошибку превышения размера с фактическим и максимальным значением.
func (s *UploadService) tooLarge(size int64) *Error {
	return newError(KindTooLarge, fmt.Sprintf("Файл слишком большой (%.1f МБ, %d байт). Максимум: %.0f МБ (%d байт)",
		float64(size)/mb, size, float64(s.opts.MaxFileSize)/mb, s.opts.MaxFileSize))
}

// normalizeContentType убирает параметры (charset и т.д.) и приводит к нижнему регистру.
func normalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
