// Пакет filestore — операции с физическими файлами в каталоге загрузок.
// Каталог плоский, FileStore — единственный, кто в него пишет.
// Запись: temp файл → fsync → atomic rename.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrDeleteFailed — удаление файла не удалось по причине, отличной от его отсутствия.
var ErrDeleteFailed = errors.New("не удалось удалить файл")

// ErrNotFound — файл отсутствует в хранилище.
var ErrNotFound = errors.New("файл не найден")

// FileStore — управление файлами в каталоге загрузок.
type FileStore struct {
	// dir — каталог хранения (MS_UPLOAD_DIR)
	dir string
	// urlPrefix — префикс публичного URL без завершающего "/" (MS_URL_PREFIX)
	urlPrefix string
}

// SaveResult — результат записи файла.
type SaveResult struct {
	// Filename — имя файла в каталоге
	Filename string
	// FullPath — абсолютный путь файла на диске
	FullPath string
	// Size — количество записанных байт
	Size int64
}

// New создаёт FileStore. Каталог не создаётся: это делает первая запись.
func New(dir, urlPrefix string) *FileStore {
	return &FileStore{
		dir:       dir,
		urlPrefix: normalizePrefix(urlPrefix),
	}
}

// Save записывает data в файл filename. Каталог создаётся при необходимости.
// При ошибке temp файл удаляется, в каталоге не остаётся частичных данных.
func (s *FileStore) Save(filename string, data []byte) (*SaveResult, error) {
	name := BaseName(filename)
	if name == "" || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("недопустимое имя файла %q", filename)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог загрузок %s: %w", s.dir, err)
	}

	fullPath := filepath.Join(s.dir, name)
	// Скрытое имя: незавершённая запись не попадает в List
	tmpPath := filepath.Join(s.dir, "."+name+".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного файла: %w", err)
	}

	n, err := f.Write(data)
	if err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ошибка атомарного переименования: %w", err)
	}

	return &SaveResult{
		Filename: name,
		FullPath: fullPath,
		Size:     int64(n),
	}, nil
}

// Delete удаляет файл. Аргумент сводится к базовому имени.
// Отсутствие файла — не ошибка; прочие ошибки оборачивают ErrDeleteFailed.
func (s *FileStore) Delete(filename string) error {
	name := BaseName(filename)
	if name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w %s: %w", ErrDeleteFailed, name, err)
	}
	return nil
}

// URL возвращает публичный путь файла: {prefix}/{basename}.
func (s *FileStore) URL(filename string) string {
	return s.urlPrefix + "/" + BaseName(filename)
}

// URLPrefix возвращает префикс публичных URL.
func (s *FileStore) URLPrefix() string {
	return s.urlPrefix
}

// List возвращает имена файлов каталога без скрытых (начинающихся с ".").
// Подкаталоги пропускаются. Отсутствующий каталог — пустой список.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения каталога %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Open открывает файл для чтения. Скрытые и отсутствующие файлы — ErrNotFound.
// Вызывающий код обязан закрыть файл.
func (s *FileStore) Open(filename string) (*os.File, error) {
	name := BaseName(filename)
	if name == "" || strings.HasPrefix(name, ".") {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка открытия файла %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка получения информации о файле %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

// Probe проверяет, что каталог существует (создаётся при необходимости) и доступен на запись.
func (s *FileStore) Probe() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("каталог загрузок %s недоступен: %w", s.dir, err)
	}

	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("каталог загрузок %s недоступен на запись: %w", s.dir, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// BaseName сводит аргумент к последнему элементу пути (оба вида разделителей).
// "", ".", ".." и "/" дают пустую строку.
func BaseName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}
	return name
}

// normalizePrefix приводит префикс к виду "/uploads": ведущий "/", без завершающего.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
