package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/service"
)

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Image       string           `json:"image"`
	InStock     *bool            `json:"inStock"`
	Category    string           `json:"category"`
}

// UpdateProductRequest - все поля необязательны
type UpdateProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image"`
	InStock     *bool            `json:"inStock"`
	Category    string           `json:"category"`
}

func ListProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := productService.ListProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, products)
	}
}

func GetProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		product, err := productService.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			logger.Error("failed to get product", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, product)
	}
}

func CreateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		var req CreateProductRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		product, err := productService.CreateProduct(r.Context(), service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Image:       req.Image,
			InStock:     req.InStock,
			Category:    req.Category,
		})
		if err != nil {
			logger.Error("failed to create product", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusCreated, product)
	}
}

func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateProductRequest
		if !decodeRequest(w, r, logger, &req) {
			return
		}

		product, err := productService.UpdateProduct(r.Context(), chi.URLParam(r, "id"), service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Image:       req.Image,
			InStock:     req.InStock,
			Category:    req.Category,
		})
		if err != nil {
			logger.Error("failed to update product", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.JSON(w, http.StatusOK, product)
	}
}

func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		if err := productService.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			logger.Error("failed to delete product", slog.Any("error", err))
			response.Error(w, r, err)
			return
		}
		response.Message(w, http.StatusOK, "Product removed")
	}
}
