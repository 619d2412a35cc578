package repository

import (
	"context"
	"embed"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/mediastore/internal/database"
	"github.com/bigkaa/mediastore/internal/service"
	"github.com/bigkaa/mediastore/internal/storage/filestore"
)

//go:embed testdata/migrations/*.sql
var fixtureFS embed.FS

// setupTestDB запускает PostgreSQL контейнер, создаёт фрагмент схемы CMS и заполняет его.
// Возвращает read-only пул Media Store.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("cms_test"),
		postgres.WithUsername("cms"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Не удалось получить строку подключения: %v", err)
	}

	source, err := iofs.New(fixtureFS, "testdata/migrations")
	if err != nil {
		t.Fatalf("Ошибка создания источника миграций: %v", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, "pgx5://"+strings.TrimPrefix(dsn, "postgres://"))
	if err != nil {
		t.Fatalf("Ошибка инициализации миграций: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("Ошибка применения миграций: %v", err)
	}
	_, _ = m.Close()

	// Заполнение через отдельный пул: сессии Media Store только читают
	writer, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Ошибка подключения для заполнения: %v", err)
	}
	seedContent(t, writer)
	writer.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool, err := database.Connect(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

func seedContent(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	statements := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO "Post" ("id", "title", "content", "featuredImage", "thumbnailImage")
			VALUES ($1, $2, $3, $4, $5)`,
			[]any{"p1", "Hello", `<p><img src="/uploads/inline.gif"></p>`, "/uploads/a.jpg", nil}},
		{`INSERT INTO "Post" ("id", "title", "content", "featuredImage", "thumbnailImage")
			VALUES ($1, $2, NULL, NULL, NULL)`,
			[]any{"p2", "Draft"}},
		{`INSERT INTO "Product" ("id", "name", "image", "images") VALUES ($1, $2, $3, $4)`,
			[]any{"pr1", "Mug", "/uploads/mug.webp", []string{"/uploads/g1.png", "/uploads/g2.png"}}},
		{`INSERT INTO "Product" ("id", "name", "image") VALUES ($1, $2, NULL)`,
			[]any{"pr2", "Empty"}},
	}

	for _, st := range statements {
		if _, err := pool.Exec(ctx, st.sql, st.args...); err != nil {
			t.Fatalf("Ошибка заполнения БД: %v", err)
		}
	}
}

func TestContentRepository_List(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewContentRepository(pool)
	ctx := context.Background()

	posts, err := repo.ListPostImages(ctx)
	if err != nil {
		t.Fatalf("ListPostImages: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ожидалось 2 записи, получено %d", len(posts))
	}

	var withImage, draft int
	for _, p := range posts {
		if p.FeaturedImage != nil && *p.FeaturedImage == "/uploads/a.jpg" {
			withImage++
			if p.ThumbnailImage != nil {
				t.Error("NULL thumbnailImage должен читаться как nil")
			}
		}
		if p.FeaturedImage == nil && p.Content == "" {
			draft++
		}
	}
	if withImage != 1 || draft != 1 {
		t.Errorf("неожиданные записи: %+v", posts)
	}

	products, err := repo.ListProductImages(ctx)
	if err != nil {
		t.Fatalf("ListProductImages: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("ожидалось 2 товара, получено %d", len(products))
	}
	for _, p := range products {
		if p.Image != nil && *p.Image == "/uploads/mug.webp" {
			if !slices.Equal(p.Images, []string{"/uploads/g1.png", "/uploads/g2.png"}) {
				t.Errorf("галерея = %v", p.Images)
			}
		}
	}
}

// TestContentRepository_Reconcile — сверка каталога со ссылками из реальной БД.
func TestContentRepository_Reconcile(t *testing.T) {
	pool := setupTestDB(t)

	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "inline.gif", "mug.webp", "g1.png", "g2.png", "orphan.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o640); err != nil {
			t.Fatal(err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := service.NewReconcileService(filestore.New(dir, "/uploads"), NewContentRepository(pool), time.Hour, false, logger)

	report, err := rs.RunOnce(context.Background(), false)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !slices.Equal(report.Deleted, []string{"orphan.png"}) {
		t.Errorf("Deleted = %v, ожидалось [orphan.png]", report.Deleted)
	}
	if len(report.Kept) != 5 {
		t.Errorf("Kept = %v", report.Kept)
	}
}

func TestConnect_ReadOnly(t *testing.T) {
	pool := setupTestDB(t)

	_, err := pool.Exec(context.Background(), `DELETE FROM "Post"`)
	if err == nil {
		t.Fatal("запись через пул Media Store должна быть запрещена")
	}
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("ожидалась ошибка read-only транзакции, получено: %v", err)
	}
}
