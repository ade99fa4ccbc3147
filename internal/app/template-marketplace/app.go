package templatemarketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/template-marketplace/internal/cache"
	"github.com/magabrotheeeer/template-marketplace/internal/canva"
	"github.com/magabrotheeeer/template-marketplace/internal/config"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/template-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/template-marketplace/internal/migrations"
	accessservice "github.com/magabrotheeeer/template-marketplace/internal/services/access"
	authservice "github.com/magabrotheeeer/template-marketplace/internal/services/auth"
	billingservice "github.com/magabrotheeeer/template-marketplace/internal/services/billing"
	canvaservice "github.com/magabrotheeeer/template-marketplace/internal/services/canvaconnect"
	catalogservice "github.com/magabrotheeeer/template-marketplace/internal/services/catalog"
	entitlementservice "github.com/magabrotheeeer/template-marketplace/internal/services/entitlement"
	notificationservice "github.com/magabrotheeeer/template-marketplace/internal/services/notification"
	templateservice "github.com/magabrotheeeer/template-marketplace/internal/services/template"
	"github.com/magabrotheeeer/template-marketplace/internal/storage/repository"
)

// App связывает HTTP-сервер и все подключения приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New собирает приложение: хранилище, миграции, кэш, брокер уведомлений,
// клиент Canva, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}
	verifiers := cache.NewVerifierStore(cacheRedis, cfg.CanvaOAuth.VerifierTTL)

	// Брокер уведомлений опционален: без него решения по заявкам
	// просто не рассылаются почтой.
	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	if cfg.RabbitMQ.URL != "" {
		amqpConn, amqpCh, err = rabbitmq.Connect(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		if err = rabbitmq.SetupQueues(amqpCh, cfg.RabbitMQ.ExchangeName); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("rabbitmq url is empty, email notifications disabled")
	}

	canvaClient := canva.NewClient(cfg.CanvaOAuth, logger)
	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	entitlementService := entitlementservice.New(db, db, logger)
	templateService := templateservice.New(db, db, entitlementService, logger)
	catalogService := catalogservice.New(db, db, cacheRedis, logger)
	canvaService := canvaservice.New(db, verifiers, canvaClient, logger)
	notificationService := notificationservice.New(amqpCh, cfg.RabbitMQ.ExchangeName, logger)
	accessService := accessservice.New(db, db, canvaClient, canvaService, notificationService, logger)
	billingService := billingservice.New(db, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db,
		authService, templateService, catalogService,
		accessService, canvaService, billingService,
		cfg.StripeWebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database connection", sl.Err(closeErr))
		}
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
