package jwtmiddleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/domain/models"
	security "github.com/shophub/shop-api/internal/jwt-new"
	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

type contextKey string

const IdentityKey contextKey = "identity"

// UserProvider достает пользователя по id из токена
type UserProvider interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NewJWTMiddleware создаёт middleware для проверки Bearer токена.
// Пользователь из sub должен существовать, его Identity кладется в контекст.
func NewJWTMiddleware(log *slog.Logger, secret string, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "jwtmiddleware.Authenticate"
			logger := log.With(slog.String("op", op))

			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Error(w, r, apperr.ErrUnauthenticated)
				return
			}

			userID, err := security.ParseToken(tokenStr, secret)
			if err != nil {
				logger.Warn("token rejected", slog.Any("error", err))
				if errors.Is(err, security.ErrTokenExpired) {
					response.Error(w, r, apperr.ErrTokenExpired)
					return
				}
				response.Error(w, r, apperr.ErrInvalidToken)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, storage.ErrUserNotFound) {
					logger.Warn("token subject not found", slog.String("userID", userID.String()))
					response.Error(w, r, apperr.ErrUserNotFound)
					return
				}
				// токен валиден, недоступно хранилище
				logger.Error("failed to resolve user", slog.Any("error", err))
				response.Error(w, r, apperr.Internal("Internal server error", err))
				return
			}

			ctx := WithIdentity(r.Context(), access.IdentityOf(user))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка вида "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole пропускает дальше только вызывающего с нужной ролью.
// Ставится после NewJWTMiddleware.
func RequireRole(role access.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := FromContext(r.Context())
			if !ok {
				response.Error(w, r, apperr.ErrUnauthenticated)
				return
			}
			if access.CheckRole(identity, role) != access.Allowed {
				response.Error(w, r, apperr.Forbidden("Not authorized as an admin"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext извлекает Identity вызывающего из контекста.
func FromContext(ctx context.Context) (access.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(access.Identity)
	return identity, ok
}

// WithIdentity кладет Identity в контекст
func WithIdentity(ctx context.Context, identity access.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}
