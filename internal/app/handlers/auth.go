package handlers

import (
	"log/slog"
	"net/http"

	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

// RegisterRequest - запрос регистрации с тегами валидации
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterHandler - POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		res, err := authService.Register(r.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: req.Password,
		})
		if err != nil {
			logger.Error("registration failed", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}

		response.JSON(w, http.StatusCreated, res)
	}
}

// LoginHandler - POST /api/auth/login
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		res, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}

		response.JSON(w, http.StatusOK, res)
	}
}
