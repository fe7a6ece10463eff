// Package storefront собирает HTTP-приложение магазина: хранилище, кеш,
// платёжный шлюз, публикацию событий, сервисы и маршруты.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/migrations"
	"github.com/magabrotheeeer/storefront/internal/paymentgateway"
	authservice "github.com/magabrotheeeer/storefront/internal/services/auth"
	"github.com/magabrotheeeer/storefront/internal/services/catalog"
	couponservice "github.com/magabrotheeeer/storefront/internal/services/coupon"
	"github.com/magabrotheeeer/storefront/internal/services/download"
	"github.com/magabrotheeeer/storefront/internal/services/entitlement"
	planservice "github.com/magabrotheeeer/storefront/internal/services/plan"
	"github.com/magabrotheeeer/storefront/internal/storage/repository"
)

// App HTTP-приложение магазина.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	resources []resource
}

// resource открытое подключение, которое закрывается при остановке.
type resource struct {
	name   string
	closer io.Closer
}

// New подключает зависимости, применяет миграции и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "storefront.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{logger: logger}
	app.track("database", db)
	app.track("redis client", cacheRedis)

	// Публикация событий необязательна: без URL брокера доступ выдаётся без уведомлений.
	var publisher entitlement.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.track("rabbitmq connection", conn)
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.GetEntitlementQueues())
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rabbitPublisher := rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange)
		app.track("rabbitmq channel", rabbitPublisher)
		publisher = rabbitPublisher
	} else {
		logger.Warn("rabbitmq url is empty, entitlement events are disabled")
	}

	gateway := paymentgateway.NewClient(cfg.Gateway.APIURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout)

	authService := authservice.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL))
	planService := planservice.New(db, cacheRedis, logger)
	catalogService := catalog.New(db, cacheRedis, logger)
	couponService := couponservice.New(db, logger)
	entitlementService := entitlement.New(logger, db, gateway, planService, catalogService, db, publisher, cfg.Gateway.Currency)
	downloadService := download.New(db, planService, catalogService, cfg.FreeDownloadLimit, logger)

	if cfg.BootstrapAdmin.Email != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.BootstrapAdmin.Email, cfg.BootstrapAdmin.Password)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if created {
			logger.Info("bootstrap admin created", slog.String("email", cfg.BootstrapAdmin.Email))
		}
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimit, Services{
		Auth:        authService,
		Plans:       planService,
		Coupons:     couponService,
		Entitlement: entitlementService,
		Downloads:   downloadService,
		Health: map[string]health.Check{
			"postgres": func(ctx context.Context) error { return repository.CheckDatabaseReady(ctx, db) },
			"redis":    cacheRedis.Ping,
		},
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) track(name string, c io.Closer) {
	a.resources = append(a.resources, resource{name: name, closer: c})
}

// close закрывает подключения в порядке, обратном открытию.
func (a *App) close() {
	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if err := r.closer.Close(); err != nil {
			a.logger.Warn("failed to close "+r.name, sl.Err(err))
		}
	}
	a.resources = nil
}
