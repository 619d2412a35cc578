package service

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/bigkaa/mediastore/internal/storage/filename"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
	"github.com/bigkaa/mediastore/internal/storage/signature"
)

// Минимальные заголовки файлов, достаточные для проверки сигнатур.
var (
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, bytes.Repeat([]byte{0x01}, 64)...)
	pngBytes  = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x02}, 64)...)
	gifBytes  = append([]byte("GIF89a"), bytes.Repeat([]byte{0x03}, 64)...)
	webpBytes = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte{0x04}, 64)...)
)

var defaultAllowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestUploadService создаёт сервис загрузки поверх временного каталога.
func newTestUploadService(t *testing.T, maxSize int64) (*UploadService, *filestore.FileStore, string) {
	t.Helper()

	dir := t.TempDir()
	store := filestore.New(dir, "/uploads")
	svc := NewUploadService(
		UploadOptions{AllowedTypes: defaultAllowed, MaxFileSize: maxSize},
		store,
		signature.New(signature.DefaultTable()),
		filename.New(),
		testLogger(),
	)
	return svc, store, dir
}
