// references.go — построение множества ссылок на загруженные файлы
// из полей записей блога и товаров.
package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bigkaa/mediastore/internal/domain/model"
)

// ReferenceProvider — read-only доступ к полям контента, где могут быть ссылки на файлы.
// Реализуется repository.ContentRepository.
type ReferenceProvider interface {
	// ListPostImages возвращает изображения и HTML-содержимое всех записей блога.
	ListPostImages(ctx context.Context) ([]model.PostImages, error)
	// ListProductImages возвращает основное изображение и галерею всех товаров.
	ListProductImages(ctx context.Context) ([]model.ProductImages, error)
}

// ReferenceExtractor собирает ссылки и приводит их к виду публичного URL.
type ReferenceExtractor struct {
	prefix    string
	contentRe *regexp.Regexp
}

// NewReferenceExtractor создаёт экстрактор для префикса публичных URL (например, "/uploads").
func NewReferenceExtractor(urlPrefix string) *ReferenceExtractor {
	prefix := "/" + strings.Trim(urlPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return &ReferenceExtractor{
		prefix:    prefix,
		contentRe: regexp.MustCompile(regexp.QuoteMeta(prefix+"/") + `[a-zA-Z0-9._-]+`),
	}
}

// Collect запрашивает все записи и возвращает множество публичных URL, на которые они ссылаются.
func (e *ReferenceExtractor) Collect(ctx context.Context, provider ReferenceProvider) (map[string]struct{}, error) {
	posts, err := provider.ListPostImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение записей блога: %w", err)
	}

	products, err := provider.ListProductImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("чтение товаров: %w", err)
	}

	return e.Build(posts, products), nil
}

// Build строит множество ссылок из уже полученных записей.
func (e *ReferenceExtractor) Build(posts []model.PostImages, products []model.ProductImages) map[string]struct{} {
	refs := make(map[string]struct{})
	add := func(ref string) {
		if normalized := e.Normalize(ref); normalized != "" {
			refs[normalized] = struct{}{}
		}
	}

	for _, p := range posts {
		if p.FeaturedImage != nil {
			add(*p.FeaturedImage)
		}
		if p.ThumbnailImage != nil {
			add(*p.ThumbnailImage)
		}
		for _, match := range e.contentRe.FindAllString(p.Content, -1) {
			add(match)
		}
	}

	for _, p := range products {
		if p.Image != nil {
			add(*p.Image)
		}
		for _, img := range p.Images {
			add(img)
		}
	}

	return refs
}

// Normalize приводит ссылку к виду публичного URL:
//   - абсолютный URL ("https://cdn.example.com/uploads/a.jpg") → путь ("/uploads/a.jpg")
//   - query и fragment отбрасываются
//   - голое имя файла ("a.jpg") → "{prefix}/a.jpg"
//   - путь без ведущего "/" ("uploads/a.jpg") → "/uploads/a.jpg"
//
// Пустая ссылка — пустая строка.
func (e *ReferenceExtractor) Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") {
		u, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		ref = u.Path
	}

	if idx := strings.IndexAny(ref, "?#"); idx != -1 {
		ref = ref[:idx]
	}
	if ref == "" {
		return ""
	}

	switch {
	case !strings.Contains(ref, "/"):
		return e.prefix + "/" + ref
	case !strings.HasPrefix(ref, "/") && strings.HasPrefix("/"+ref, e.prefix+"/"):
		return "/" + ref
	}
	return ref
}
