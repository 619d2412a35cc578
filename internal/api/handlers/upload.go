// upload.go — HTTP handler загрузки изображений.
// POST /api/v1/uploads, multipart form, поле "file".
// Порядок проверок: идентичность → лимит запросов → наличие файла → сервис загрузки.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/mediastore/internal/api/errors"
	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/api/middleware"
	"github.com/bigkaa/mediastore/internal/domain/model"
	"github.com/bigkaa/mediastore/internal/service"
)

// multipartOverhead — запас на заголовки multipart сверх максимального размера файла.
const multipartOverhead = 1 << 20

// multipartMemory — часть формы, которая держится в памяти; остальное уходит во временные файлы.
const multipartMemory = 8 << 20

// UploadHandler — обработчик загрузки файлов.
type UploadHandler struct {
	uploadSvc   *service.UploadService
	maxFileSize int64
	logger      *slog.Logger
}

// NewUploadHandler создаёт обработчик загрузки.
func NewUploadHandler(uploadSvc *service.UploadService, maxFileSize int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadSvc:   uploadSvc,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "upload_handler")),
	}
}

// UploadFile обрабатывает POST /api/v1/uploads.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	subject := middleware.SubjectFromContext(r.Context())
	if err := h.uploadSvc.Admit(subject); err != nil {
		writeServiceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeServiceError(w, h.uploadSvc.RequestTooLarge())
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			writeServiceError(w, service.ErrNoFile)
		default:
			apierrors.ValidationError(w, fmt.Sprintf("Ошибка разбора multipart: %s", err.Error()))
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeServiceError(w, service.ErrNoFile)
		return
	}

	var body generated.UploadFileMultipartBody
	body.File.InitFromMultipart(headers[0])

	file, err := body.File.Reader()
	if err != nil {
		h.logger.Error("Ошибка открытия части multipart", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось прочитать файл")
		return
	}
	defer file.Close()

	contentType := headers[0].Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stored, err := h.uploadSvc.Upload(r.Context(), model.UploadRequest{
		Reader:      file,
		Filename:    body.File.Filename(),
		ContentType: contentType,
		Size:        body.File.FileSize(),
		UploadedBy:  subject,
	})
	if err != nil {
		if service.KindOf(err) == service.KindInternal {
			h.logger.Error("Ошибка загрузки файла",
				slog.String("user", subject),
				slog.String("error", err.Error()),
			)
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generated.UploadResponse{
		Success: true,
		Data: generated.StoredFile{
			Filename: stored.Filename,
			Url:      stored.URL,
			Size:     stored.Size,
			Type:     stored.ContentType,
		},
	})
}
