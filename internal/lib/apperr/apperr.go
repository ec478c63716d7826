// Package apperr описывает типизированные ошибки, которые сервисы отдают наверх,
// и их отображение в HTTP статусы на внешней границе.
package apperr

import (
	"errors"
	"net/http"
)

type Kind uint8

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidToken
	KindTokenExpired
	KindForbidden
	KindNotFound
	KindInvalidInput
	KindValidation
	KindInvalidIDFormat
	KindConflict
)

// Коды ошибок. Error.Is сравнивает именно коды.
const (
	CodeInternal            = "InternalError"
	CodeUnauthenticated     = "Unauthenticated"
	CodeInvalidToken        = "InvalidToken"
	CodeTokenExpired        = "TokenExpired"
	CodeUserNotFound        = "UserNotFound"
	CodeForbidden           = "Forbidden"
	CodeNotFound            = "NotFound"
	CodeInvalidInput        = "InvalidInput"
	CodeValidation          = "ValidationError"
	CodeInvalidIDFormat     = "InvalidIdFormat"
	CodeConflict            = "Conflict"
	CodeEmptyOrder          = "EmptyOrder"
	CodeMissingProductRef   = "MissingProductRef"
	CodeMissingAddress      = "MissingAddress"
	CodeSelfDeleteForbidden = "SelfDeleteForbidden"
	CodeInvalidCredentials  = "InvalidCredentials"
)

// Error - ошибка с видом, кодом и сообщением для клиента.
// Err хранит исходную причину (например, ошибку драйвера БД).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает коды. Частная ошибка совпадает и с общим sentinel своего вида:
// ErrEmptyOrder является ErrInvalidInput. Виды 401 так не обобщаются.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	code, generic := genericCodes[t.Kind]
	return generic && t.Code == code && t.Kind == e.Kind
}

// общие коды, к которым сводятся частные ошибки того же вида
var genericCodes = map[Kind]string{
	KindNotFound:        CodeNotFound,
	KindForbidden:       CodeForbidden,
	KindInvalidInput:    CodeInvalidInput,
	KindInvalidIDFormat: CodeInvalidIDFormat,
	KindConflict:        CodeConflict,
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Базовые ошибки, с которыми удобно сравнивать через errors.Is
var (
	ErrUnauthenticated = New(KindUnauthenticated, CodeUnauthenticated, "Not authorized, no token")
	ErrInvalidToken    = New(KindInvalidToken, CodeInvalidToken, "Not authorized, token failed")
	ErrTokenExpired    = New(KindTokenExpired, CodeTokenExpired, "Token expired, please login again")
	ErrUserNotFound    = New(KindUnauthenticated, CodeUserNotFound, "User not found")
	ErrForbidden       = New(KindForbidden, CodeForbidden, "Forbidden")
	ErrNotFound        = New(KindNotFound, CodeNotFound, "Not found")
	ErrInvalidInput    = New(KindInvalidInput, CodeInvalidInput, "Invalid input")
	ErrInvalidIDFormat = New(KindInvalidIDFormat, CodeInvalidIDFormat, "Invalid ID format")

	ErrInvalidCredentials  = New(KindUnauthenticated, CodeInvalidCredentials, "Invalid email or password")
	ErrSelfDeleteForbidden = New(KindInvalidInput, CodeSelfDeleteForbidden, "Cannot delete your own account")
)

func NotFound(message string) *Error {
	return New(KindNotFound, CodeNotFound, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, CodeForbidden, message)
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, CodeInvalidInput, message)
}

func InvalidIDFormat(message string) *Error {
	return New(KindInvalidIDFormat, CodeInvalidIDFormat, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, CodeConflict, message)
}

func Validation(message string, err error) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Err: err}
}

// Internal оборачивает непредвиденную ошибку (БД, провайдер) с сообщением для клиента
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// As достает *Error из цепочки; для неизвестных ошибок возвращает Internal
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}

func KindOf(err error) Kind {
	return As(err).Kind
}

// HTTPStatus сопоставляет вид ошибки со статусом ответа
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindInvalidToken, KindTokenExpired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput, KindValidation, KindInvalidIDFormat, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
