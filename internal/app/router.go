package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shophub/shop-api/internal/app/handlers"
	"github.com/shophub/shop-api/internal/config"
	"github.com/shophub/shop-api/internal/domain/access"
	"github.com/shophub/shop-api/internal/jwt-new/jwtmiddleware"
	"github.com/shophub/shop-api/internal/lib/api/response"
	"github.com/shophub/shop-api/internal/lib/logger/handlers/urllog"
	"github.com/shophub/shop-api/internal/service"
)

// Services - все, что нужно роутеру от слоя бизнес-логики
type Services struct {
	Auth    service.AuthServiceInterface
	Product service.ProductService
	Cart    service.CartService
	Order   service.OrderService
	Admin   service.AdminService
	Payment service.PaymentService
}

// NewRouter собирает chi роутер со всеми маршрутами API
func NewRouter(log *slog.Logger, cfg *config.Config, svc Services, users jwtmiddleware.UserProvider) http.Handler {
	router := chi.NewRouter()

	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(response.DebugErrors(!cfg.IsProduction()))

	router.NotFound(response.NotFound)
	router.MethodNotAllowed(response.MethodNotAllowed)

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API is running..."))
	})

	authMW := jwtmiddleware.NewJWTMiddleware(log, cfg.JWT.Secret, users)
	adminOnly := jwtmiddleware.RequireRole(access.RoleAdmin)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.RegisterHandler(log, svc.Auth))
		r.Post("/auth/login", handlers.LoginHandler(log, svc.Auth))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.ListProductsHandler(log, svc.Product))
			r.Get("/{id}", handlers.GetProductHandler(log, svc.Product))

			r.Group(func(r chi.Router) {
				r.Use(authMW, adminOnly)
				r.Post("/", handlers.CreateProductHandler(log, svc.Product))
				r.Put("/{id}", handlers.UpdateProductHandler(log, svc.Product))
				r.Delete("/{id}", handlers.DeleteProductHandler(log, svc.Product))
			})
		})

		// дальше только с токеном
		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Get("/cart", handlers.GetCartHandler(log, svc.Cart))
			r.Post("/cart/add", handlers.AddToCartHandler(log, svc.Cart))
			r.Put("/cart/update", handlers.UpdateCartItemHandler(log, svc.Cart))
			r.Delete("/cart/remove/{productId}", handlers.RemoveFromCartHandler(log, svc.Cart))

			r.Post("/orders", handlers.CreateOrderHandler(log, svc.Order))
			r.Get("/orders/mine", handlers.GetMyOrdersHandler(log, svc.Order))
			r.Get("/orders/{id}", handlers.GetOrderByIDHandler(log, svc.Order))

			r.Post("/payment/razorpay/create-order", handlers.CreatePaymentOrderHandler(log, svc.Payment))
			r.Post("/payment/razorpay/verify", handlers.VerifyPaymentHandler(log, svc.Payment))

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/stats", handlers.DashboardStatsHandler(log, svc.Admin))
				r.Get("/orders", handlers.ListAllOrdersHandler(log, svc.Admin))
				r.Put("/orders/{id}", handlers.UpdateOrderStatusHandler(log, svc.Admin))
				r.Get("/users", handlers.ListAllUsersHandler(log, svc.Admin))
				r.Delete("/users/{id}", handlers.DeleteUserHandler(log, svc.Admin))
			})
		})
	})

	return router
}
