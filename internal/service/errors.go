// errors.go — ошибки сервисного слоя Media Store.
package service

import (
	"errors"
	"fmt"
)

// ErrorKind — категория ошибки загрузки/удаления.
type ErrorKind string

const (
	// KindUnauthorized — нет идентичности вызывающего.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindRateLimited — превышен лимит запросов за окно.
	KindRateLimited ErrorKind = "rate_limited"
	// KindNoFile — в запросе нет файла.
	KindNoFile ErrorKind = "no_file"
	// KindInvalidType — заявленный MIME-тип не в списке разрешённых.
	KindInvalidType ErrorKind = "invalid_type"
	// KindTooLarge — размер превышает максимум.
	KindTooLarge ErrorKind = "too_large"
	// KindContentMismatch — содержимое не совпадает с заявленным типом.
	KindContentMismatch ErrorKind = "content_mismatch"
	// KindDeleteFailed — удаление файла не удалось.
	KindDeleteFailed ErrorKind = "delete_failed"
	// KindInternal — внутренняя ошибка.
	KindInternal ErrorKind = "internal"
)

// Error — ошибка с категорией и сообщением для вызывающего.
type Error struct {
	Kind    ErrorKind
	Message string
	// Err — исходная ошибка (не показывается клиенту)
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError создаёт Error без исходной ошибки.
func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf возвращает категорию ошибки; KindInternal для посторонних ошибок.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrNoFile — в запросе нет файла.
var ErrNoFile = newError(KindNoFile, "Файл не передан")

// ErrReconcileInProgress — сверка уже выполняется.
var ErrReconcileInProgress = errors.New("сверка уже выполняется")
