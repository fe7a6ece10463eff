package storefront

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth/register"
	couponapply "github.com/magabrotheeeer/storefront/internal/http/handlers/coupon/apply"
	couponcreate "github.com/magabrotheeeer/storefront/internal/http/handlers/coupon/create"
	couponlist "github.com/magabrotheeeer/storefront/internal/http/handlers/coupon/list"
	couponremove "github.com/magabrotheeeer/storefront/internal/http/handlers/coupon/remove"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/download/check"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	libraryadd "github.com/magabrotheeeer/storefront/internal/http/handlers/library/add"
	librarylist "github.com/magabrotheeeer/storefront/internal/http/handlers/library/list"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/payment/ordercreate"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/payment/verifyproduct"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/payment/verifysubscription"
	plancreate "github.com/magabrotheeeer/storefront/internal/http/handlers/plan/create"
	planlist "github.com/magabrotheeeer/storefront/internal/http/handlers/plan/list"
	planremove "github.com/magabrotheeeer/storefront/internal/http/handlers/plan/remove"
	planupdate "github.com/magabrotheeeer/storefront/internal/http/handlers/plan/update"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/storefront/internal/services/auth"
	couponservice "github.com/magabrotheeeer/storefront/internal/services/coupon"
	"github.com/magabrotheeeer/storefront/internal/services/download"
	"github.com/magabrotheeeer/storefront/internal/services/entitlement"
	planservice "github.com/magabrotheeeer/storefront/internal/services/plan"
)

// Services набор сервисов, которые обслуживают маршруты.
type Services struct {
	Auth        *authservice.AuthService
	Plans       *planservice.Service
	Coupons     *couponservice.Service
	Entitlement *entitlement.Service
	Downloads   *download.Service
	Health      map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, limits config.RateLimit, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/plans", planlist.New(logger, s.Plans).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limits.RPS, limits.Burst))

			r.Post("/payments/orders", ordercreate.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/payments/verify/subscription", verifysubscription.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/payments/verify/product", verifyproduct.New(logger, s.Entitlement).ServeHTTP)
			r.Post("/coupons/apply", couponapply.New(logger, s.Coupons).ServeHTTP)
			r.Get("/products/{id}/download", check.New(logger, s.Downloads).ServeHTTP)
			r.Post("/library/{id}", libraryadd.New(logger, s.Entitlement).ServeHTTP)
			r.Get("/library", librarylist.New(logger, s.Entitlement).ServeHTTP)

			// Администрирование
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Post("/plans", plancreate.New(logger, s.Plans).ServeHTTP)
				r.Put("/plans/{id}", planupdate.New(logger, s.Plans).ServeHTTP)
				r.Delete("/plans/{id}", planremove.New(logger, s.Plans).ServeHTTP)
				r.Post("/coupons", couponcreate.New(logger, s.Coupons).ServeHTTP)
				r.Get("/coupons", couponlist.New(logger, s.Coupons).ServeHTTP)
				r.Delete("/coupons/{id}", couponremove.New(logger, s.Coupons).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
