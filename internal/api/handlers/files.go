// files.go — список и удаление загруженных файлов, публичная раздача.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/mediastore/internal/api/errors"
	"github.com/bigkaa/mediastore/internal/api/generated"
	"github.com/bigkaa/mediastore/internal/service"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
)

// FilesHandler — обработчик списка, удаления и раздачи файлов.
type FilesHandler struct {
	uploadSvc *service.UploadService
	store     *filestore.FileStore
	logger    *slog.Logger
}

// NewFilesHandler создаёт обработчик файловых endpoints.
func NewFilesHandler(uploadSvc *service.UploadService, store *filestore.FileStore, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		uploadSvc: uploadSvc,
		store:     store,
		logger:    logger.With(slog.String("component", "files_handler")),
	}
}

// ListUploads обрабатывает GET /api/v1/uploads.
func (h *FilesHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	names, err := h.uploadSvc.List(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения списка файлов", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Не удалось получить список файлов")
		return
	}

	items := make([]generated.FileItem, 0, len(names))
	for _, name := range names {
		items = append(items, generated.FileItem{Filename: name, Url: h.uploadSvc.URL(name)})
	}

	writeJSON(w, http.StatusOK, generated.FileListResponse{Items: items, Total: len(items)})
}

// DeleteUpload обрабатывает DELETE /api/v1/uploads/{filename}.
// Отсутствующий файл — тоже 204.
func (h *FilesHandler) DeleteUpload(w http.ResponseWriter, r *http.Request, filename generated.Filename) {
	name, ok := storedFileName(filename)
	if !ok {
		apierrors.ValidationError(w, "Недопустимое имя файла")
		return
	}

	if err := h.uploadSvc.Delete(r.Context(), name); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ServeFile обрабатывает GET {prefix}/{filename}: публичная раздача файла.
// Поддерживает Range и If-Modified-Since через http.ServeContent.
func (h *FilesHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, ok := storedFileName(chi.URLParam(r, "filename"))
	if !ok {
		apierrors.NotFound(w, "Файл не найден")
		return
	}

	f, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			apierrors.NotFound(w, fmt.Sprintf("Файл %s не найден", name))
			return
		}
		h.logger.Error("Ошибка открытия файла",
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Не удалось прочитать файл")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		apierrors.InternalError(w, "Не удалось прочитать файл")
		return
	}

	// Имена уникальны и содержимое не меняется
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// storedFileName проверяет, что параметр пути — имя файла хранилища,
// а не путь или скрытый файл.
func storedFileName(param string) (string, bool) {
	name := filestore.BaseName(param)
	if name == "" || name != param || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}
