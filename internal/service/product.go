package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shophub/shop-api/internal/domain/models"
	"github.com/shophub/shop-api/internal/lib/apperr"
	"github.com/shophub/shop-api/internal/storage"
)

// ProductInput - поля товара из запроса. Пустые значения при обновлении
// оставляют сохраненные, inStock меняется только если передан.
type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Image       string
	InStock     *bool
	Category    string
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{
		log:         log,
		productRepo: productRepo,
	}
}

var errProductNotFound = apperr.NotFound("Product not found")

func parseProductID(id string) (uuid.UUID, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.InvalidIDFormat("Invalid product ID format")
	}
	return productID, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.ProductService.ListProducts"
	logger := s.log.With(slog.String("op", op))

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching products", err))
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.ProductService.GetProduct"
	logger := s.log.With(slog.String("op", op), slog.String("productID", id))

	productID, err := parseProductID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errProductNotFound)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error fetching product", err))
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	const op = "service.ProductService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		InStock:     true,
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("Price must not be negative"))
		}
		product.Price = *in.Price
	}
	if in.InStock != nil {
		product.InStock = *in.InStock
	}

	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error creating product", err))
	}

	logger.Info("product created", slog.String("productID", created.ID.String()))
	return created, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	const op = "service.ProductService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("productID", id))

	productID, err := parseProductID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidInput("Price must not be negative"))
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errProductNotFound)
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error updating product", err))
	}

	applyProductInput(product, in)

	updated, err := s.productRepo.UpdateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errProductNotFound)
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, apperr.Internal("Error updating product", err))
	}

	logger.Info("product updated")
	return updated, nil
}

// applyProductInput переносит в товар только заданные поля
func applyProductInput(product *models.Product, in ProductInput) {
	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Price != nil && !in.Price.IsZero() {
		product.Price = *in.Price
	}
	if in.Image != "" {
		product.Image = in.Image
	}
	if in.InStock != nil {
		product.InStock = *in.InStock
	}
	if in.Category != "" {
		product.Category = in.Category
	}
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	const op = "service.ProductService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.String("productID", id))

	productID, err := parseProductID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return fmt.Errorf("%s: %w", op, errProductNotFound)
		}
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, apperr.Internal("Error deleting product", err))
	}

	logger.Info("product deleted")
	return nil
}
