// Пакет signature — проверка фактического формата файла по сигнатурам (magic bytes).
// Заявленному клиентом MIME-типу не доверяем: содержимое должно совпасть
// со всеми фрагментами сигнатуры этого типа.
package signature

// MIME-типы с известными сигнатурами.
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeWEBP = "image/webp"
	MimeGIF  = "image/gif"
)

// Fragment — ожидаемая последовательность байт по смещению Offset.
type Fragment struct {
	Offset int
	Bytes  []byte
}

// Table — сигнатуры по MIME-типу. Тип совпадает, если совпали все его фрагменты.
type Table map[string][]Fragment

// DefaultTable возвращает эталонную таблицу сигнатур изображений.
func DefaultTable() Table {
	return Table{
		MimeJPEG: {{Offset: 0, Bytes: []byte{0xFF, 0xD8, 0xFF}}},
		MimePNG:  {{Offset: 0, Bytes: []byte{0x89, 0x50, 0x4E, 0x47}}},
		// GIF87a / GIF89a
		MimeGIF: {{Offset: 0, Bytes: []byte{0x47, 0x49, 0x46, 0x38}}},
		// RIFF....WEBP
		MimeWEBP: {
			{Offset: 0, Bytes: []byte{0x52, 0x49, 0x46, 0x46}},
			{Offset: 8, Bytes: []byte{0x57, 0x45, 0x42, 0x50}},
		},
	}
}

// Validator — проверка содержимого по неизменяемой таблице сигнатур.
type Validator struct {
	table Table
}

// New создаёт Validator. Таблица копируется, внешние изменения на него не влияют.
func New(table Table) *Validator {
	cp := make(Table, len(table))
	for mime, fragments := range table {
		fs := make([]Fragment, len(fragments))
		for i, f := range fragments {
			fs[i] = Fragment{Offset: f.Offset, Bytes: append([]byte(nil), f.Bytes...)}
		}
		cp[mime] = fs
	}
	return &Validator{table: cp}
}

// Validate возвращает true, только если buf содержит все фрагменты сигнатуры
// заявленного типа. Неизвестный тип и слишком короткий буфер — false.
func (v *Validator) Validate(buf []byte, declaredMimeType string) bool {
	fragments, ok := v.table[declaredMimeType]
	if !ok || len(fragments) == 0 {
		return false
	}

	for _, f := range fragments {
		if f.Offset < 0 || len(buf) < f.Offset+len(f.Bytes) {
			return false
		}
		for i, b := range f.Bytes {
			if buf[f.Offset+i] != b {
				return false
			}
		}
	}
	return true
}

// Supported сообщает, есть ли сигнатура для типа.
func (v *Validator) Supported(mimeType string) bool {
	fragments, ok := v.table[mimeType]
	return ok && len(fragments) > 0
}

// MinLength возвращает количество начальных байт, которые проверяет сигнатура типа.
// 0 для неизвестного типа.
func (v *Validator) MinLength(mimeType string) int {
	n := 0
	for _, f := range v.table[mimeType] {
		if end := f.Offset + len(f.Bytes); end > n {
			n = end
		}
	}
	return n
}
