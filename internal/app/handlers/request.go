package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/jwt-new/jwtmiddleware"
	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/lib/apperr"
)

var validate = validator.New()

// decodeRequest читает JSON тело и прогоняет его через validator.
// При ошибке ответ уже записан и возвращается false.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Error("invalid request: decoding error", slog.Any("error", err))
		response.Error(w, r, apperr.InvalidInput("Invalid request body"))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		logger.Error("invalid request: validation error", slog.Any("error", err))
		response.Error(w, r, apperr.Validation("Validation error", err))
		return false
	}
	return true
}

// callerFrom достает Identity, положенную jwt middleware
func callerFrom(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (access.Identity, bool) {
	identity, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		logger.Error("identity not found in context")
		response.Error(w, r, apperr.ErrUnauthenticated)
		return access.Identity{}, false
	}
	return identity, true
}
