// Пакет model — доменные модели Media Store.
package model

import (
	"io"
	"time"
)

// UploadRequest — входящая загрузка. Живёт в пределах одного HTTP-запроса.
type UploadRequest struct {
	// Reader — содержимое файла
	Reader io.Reader
	// Filename — имя файла, присланное клиентом
	Filename string
	// ContentType — MIME-тип, заявленный клиентом
	ContentType string
	// Size — размер из multipart заголовка (может быть неточным)
	Size int64
	// UploadedBy — идентичность загрузившего (sub из JWT)
	UploadedBy string
}

// StoredFile — файл, записанный в хранилище.
type StoredFile struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

// PostImages — поля записи блога, которые могут ссылаться на загруженные файлы.
type PostImages struct {
	FeaturedImage  *string
	ThumbnailImage *string
	// Content — HTML-содержимое из rich-text редактора
	Content string
}

// ProductImages — поля товара, которые могут ссылаться на загруженные файлы.
type ProductImages struct {
	Image  *string
	Images []string
}

// CleanupReport — результат сверки каталога загрузок со ссылками из контента.
type CleanupReport struct {
	DryRun      bool      `json:"dry_run"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	// Kept — файлы, на которые есть ссылки
	Kept []string `json:"kept"`
	// Deleted — удалённые файлы (в dry-run — кандидаты на удаление)
	Deleted []string `json:"deleted"`
	// Errors — описания неудачных удалений
	Errors []string `json:"errors"`
}

// NewCleanupReport создаёт отчёт с пустыми (не nil) списками.
func NewCleanupReport(dryRun bool, startedAt time.Time) *CleanupReport {
	return &CleanupReport{
		DryRun:    dryRun,
		StartedAt: startedAt,
		Kept:      []string{},
		Deleted:   []string{},
		Errors:    []string{},
	}
}
