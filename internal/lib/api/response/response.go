// Package response пишет JSON ответы и ошибки в едином формате.
package response

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shophub/shop-api/internal/lib/apperr"
)

// ErrorBody - тело ответа с ошибкой
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// MessageBody - ответ без данных, только сообщение
type MessageBody struct {
	Message string `json:"message"`
}

type debugKey struct{}

// DebugErrors включает stack trace в теле ошибки. В проде выключен.
func DebugErrors(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), debugKey{}, enabled)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func debugEnabled(ctx context.Context) bool {
	enabled, _ := ctx.Value(debugKey{}).(bool)
	return enabled
}

// JSON сериализует v и пишет его с указанным статусом
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", slog.Any("error", err))
	}
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Error переводит ошибку в статус и тело ответа.
// Текст исходной причины уходит клиенту в поле error.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	body := ErrorBody{Message: e.Message}
	if e.Err != nil {
		body.Error = e.Err.Error()
		if debugEnabled(r.Context()) {
			body.Stack = fmt.Sprintf("%+v", e.Err)
		}
	}
	JSON(w, apperr.HTTPStatus(e.Kind), body)
}

// NotFound - ответ для несуществующего маршрута
func NotFound(w http.ResponseWriter, r *http.Request) {
	Message(w, http.StatusNotFound, "Not Found - "+r.URL.RequestURI())
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Message(w, http.StatusMethodNotAllowed, "Method Not Allowed - "+r.Method+" "+r.URL.RequestURI())
}
