// Пакет filename — безопасные уникальные имена файлов для хранилища.
// Формат: {unix_ms}-{random_hex}-{base}{ext}, расширение берётся из
// подтверждённого MIME-типа, а не из имени, присланного клиентом.
package filename

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBaseLen — максимальная длина базовой части имени.
const maxBaseLen = 50

// randomHexLen — длина случайного суффикса.
const randomHexLen = 12

// extensions — расширение по MIME-типу.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// fallbackExt — расширение для типов вне таблицы.
const fallbackExt = ".bin"

// Generator — генератор имён файлов.
type Generator struct {
	now    func() time.Time
	random func() string
}

// New создаёт Generator с системными часами и случайным суффиксом из UUID v4.
func New() *Generator {
	return &Generator{
		now:    time.Now,
		random: randomHex,
	}
}

// Generate возвращает имя файла для хранения.
// Результат не содержит разделителей пути и последовательностей "..".
func (g *Generator) Generate(originalName, mimeType string) string {
	ts := g.now().UnixMilli()
	suffix := g.random()
	ext := Extension(mimeType)

	base := Sanitize(originalName)
	if base == "" {
		return fmt.Sprintf("%d-%s%s", ts, suffix, ext)
	}
	return fmt.Sprintf("%d-%s-%s%s", ts, suffix, base, ext)
}

// Extension возвращает расширение (с точкой) для MIME-типа.
func Extension(mimeType string) string {
	if ext, ok := extensions[mimeType]; ok {
		return ext
	}
	return fallbackExt
}

// Sanitize превращает имя файла клиента в безопасную базовую часть без расширения.
// Пустая строка — если от имени ничего не осталось.
func Sanitize(name string) string {
	// Последний элемент пути, оба вида разделителей
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	// У ".hidden" расширения нет: path.Ext вернул бы всё имя
	if stem := strings.TrimSuffix(name, path.Ext(name)); strings.Trim(stem, ".") != "" {
		name = stem
	}

	name = strings.NewReplacer("/", "", `\`, "").Replace(name)
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "")
	}

	name = strings.ToLower(name)

	var b strings.Builder
	lastHyphen := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		// '-' и любой недопустимый символ; повторы схлопываются
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	base := strings.Trim(b.String(), "-.")
	if len(base) > maxBaseLen {
		base = strings.Trim(base[:maxBaseLen], "-.")
	}
	return base
}

// randomHex возвращает случайный hex-суффикс (crypto/rand через UUID v4).
func randomHex() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:randomHexLen]
}
