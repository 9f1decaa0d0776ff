package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jairsl2206/restaurant-sub000/internal/config"
	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/enum"
	"github.com/jairsl2206/restaurant-sub000/internal/handler"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	mw "github.com/jairsl2206/restaurant-sub000/internal/middleware"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed. sender
// delivers order notifications; loc is the restaurant's time zone.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, sender service.Sender, loc *time.Location) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public, login rate limited per client IP)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	loginLimiter := mw.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)
	r.With(loginLimiter.Middleware).Post("/auth/login", authHandler.Login)
	r.Post("/auth/refresh", authHandler.Refresh)

	settingsService := service.NewSettingsService(queries, map[string]string{
		enum.SettingStaffPhone: cfg.StaffPhone,
	})
	menuService := service.NewMenuService(queries)
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, queries, newOrderStore, sender, settingsService)
	reportService := service.NewReportService(queries, loc)

	adminOnly := mw.RequireRole(enum.UserRoleAdmin)

	// Menu: public listing, admin management
	menuHandler := handler.NewMenuHandler(menuService)
	r.Route("/menu", func(r chi.Router) {
		menuHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret), adminOnly)
			menuHandler.RegisterAdminRoutes(r)
		})
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		orderHandler := handler.NewOrderHandler(orderService, loc)
		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				orderHandler.RegisterAdminRoutes(r)
			})
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			reportsHandler := handler.NewReportsHandler(reportService)
			r.Route("/reports", reportsHandler.RegisterRoutes)

			promotionHandler := handler.NewPromotionHandler(menuService)
			r.Route("/promotions", promotionHandler.RegisterRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterRoutes)

			settingsHandler := handler.NewSettingsHandler(settingsService)
			r.Route("/settings", settingsHandler.RegisterRoutes)
		})
	})

	logger.L().Info("router initialized")
	return r
}
