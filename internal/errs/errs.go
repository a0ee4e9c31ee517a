// Package errs содержит таксономию ошибок клиента, видимую пользователю.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated - нет сессии или сервер отклонил токен.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrValidation - запрос не прошел проверку на клиенте, до сети дело не дошло.
	ErrValidation = errors.New("validation failed")

	// ErrServerRejected - сервер ответил статусом 4xx/5xx.
	ErrServerRejected = errors.New("server rejected")

	// ErrNetwork - запрос не был выполнен на транспортном уровне.
	ErrNetwork = errors.New("network failure")

	// ErrPersistence - ошибка чтения/записи локального хранилища.
	ErrPersistence = errors.New("persistence failure")

	// ErrAlreadyExists - сервер сообщил о конфликте уникальности (409).
	ErrAlreadyExists = errors.New("already exists")
)

// ServerError - ответ сервера со статусом >= 400.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ошибка сервера (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ошибка сервера: статус %d", e.Status)
}

// Is позволяет сопоставлять ServerError с сентинелами через errors.Is.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrServerRejected:
		return true
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrAlreadyExists:
		return e.Status == http.StatusConflict
	}
	return false
}

// ValidationError - причина, по которой запрос не был отправлен.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation создает ValidationError.
func Validation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Network оборачивает транспортную ошибку в ErrNetwork.
func Network(err error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// UserMessage возвращает текст уведомления для ошибки.
// Для ServerError берется сообщение из тела ответа, если оно есть.
func UserMessage(err error, fallback string) string {
	var (
		se *ServerError
		ve *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		if se.Message != "" {
			return se.Message
		}
		if fallback != "" {
			return fallback
		}
		return "Сервер отклонил запрос"
	case errors.Is(err, ErrUnauthenticated):
		return "Необходимо войти в аккаунт"
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, ErrNetwork):
		return "Нет соединения с сервером"
	case errors.Is(err, ErrPersistence):
		return "Не удалось сохранить сессию, войдите снова"
	}
	if fallback != "" {
		return fallback
	}
	return "Что-то пошло не так"
}
