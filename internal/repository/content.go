package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/mediastore/internal/domain/model"
)

// Имена таблиц и колонок совпадают со схемой CMS (регистрозависимые идентификаторы).
const (
	queryPostImages = `SELECT "featuredImage", "thumbnailImage", COALESCE("content", '')
		FROM "Post"`
	queryProductImages = `SELECT "image", COALESCE("images", '{}'::text[])
		FROM "Product"`
)

// ContentRepository — чтение полей контента, которые могут ссылаться на загруженные файлы.
// Реализует service.ReferenceProvider.
type ContentRepository struct {
	db DBTX
}

// NewContentRepository создаёт репозиторий контента.
func NewContentRepository(db DBTX) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListPostImages возвращает изображения и HTML-содержимое всех записей блога.
func (r *ContentRepository) ListPostImages(ctx context.Context) ([]model.PostImages, error) {
	rows, err := r.db.Query(ctx, queryPostImages)
	if err != nil {
		return nil, fmt.Errorf("запрос записей блога: %w", err)
	}
	defer rows.Close()

	var result []model.PostImages
	for rows.Next() {
		var p model.PostImages
		if err := rows.Scan(&p.FeaturedImage, &p.ThumbnailImage, &p.Content); err != nil {
			return nil, fmt.Errorf("чтение записи блога: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация записей блога: %w", err)
	}

	return result, nil
}

// ListProductImages возвращает основное изображение и галерею всех товаров.
func (r *ContentRepository) ListProductImages(ctx context.Context) ([]model.ProductImages, error) {
	rows, err := r.db.Query(ctx, queryProductImages)
	if err != nil {
		return nil, fmt.Errorf("запрос товаров: %w", err)
	}
	defer rows.Close()

	var result []model.ProductImages
	for rows.Next() {
		var p model.ProductImages
		if err := rows.Scan(&p.Image, &p.Images); err != nil {
			return nil, fmt.Errorf("чтение товара: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация товаров: %w", err)
	}

	return result, nil
}
