// Package planconnect собирает основное приложение: хранилище, кеш,
// блоб-хранилище, брокер уведомлений, realtime-хаб, сервисы и HTTP-сервер.
package planconnect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/plan-connect/internal/blob"
	"github.com/magabrotheeeer/plan-connect/internal/cache"
	"github.com/magabrotheeeer/plan-connect/internal/config"
	"github.com/magabrotheeeer/plan-connect/internal/lib/jwt"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/migrations"
	"github.com/magabrotheeeer/plan-connect/internal/rabbitmq"
	"github.com/magabrotheeeer/plan-connect/internal/realtime"
	authservice "github.com/magabrotheeeer/plan-connect/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/plan-connect/internal/services/catalog"
	chatservice "github.com/magabrotheeeer/plan-connect/internal/services/chat"
	contractservice "github.com/magabrotheeeer/plan-connect/internal/services/contract"
	sweeperservice "github.com/magabrotheeeer/plan-connect/internal/services/sweeper"
	"github.com/magabrotheeeer/plan-connect/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и фоновые компоненты приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
	sweeper  *sweeperservice.SweeperService
}

// New создаёт приложение: подключает зависимости, применяет миграции и
// регистрирует маршруты. RabbitMQ необязателен: без него уведомления
// просто не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	blobStorage, err := blob.New(ctx, cfg.BlobStorage)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	var publisher contractservice.Publisher
	if cfg.RabbitMQConnection != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQConnection, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		amqpCh, err = rabbitmq.SetupChannel(amqpConn, rabbitmq.GetNotificationQueues())
		if err != nil {
			amqpConn.Close()
			return nil, err
		}
		publisher = rabbitmq.NewChannelPublisher(amqpCh)
	} else {
		logger.Warn("rabbitmq connection is not configured, notifications disabled")
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	hub := realtime.NewHub(logger)

	authService := authservice.NewAuthService(db, jwtMaker)
	catalogService := catalogservice.NewCatalogService(db, cacheRedis, blobStorage, logger)
	contractService := contractservice.NewContractService(db, db, publisher, cfg.Contracts.DefaultDuration, logger)
	chatService := chatservice.NewChatService(db, db, hub, logger)
	sweeper := sweeperservice.NewSweeperService(contractService, publisher, cfg.Contracts.SweepInterval, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, catalogService, contractService, chatService, hub)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		amqpConn: amqpConn,
		amqpCh:   amqpCh,
		sweeper:  sweeper,
	}, nil
}

// Run запускает HTTP-сервер и фоновый процесс истечения контрактов,
// завершая оба по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sweeper.Run(ctx)

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
		if a.amqpCh != nil {
			if cerr := a.amqpCh.Close(); cerr != nil {
				a.logger.Error("failed to close amqp channel", sl.Err(cerr))
			}
		}
		if a.amqpConn != nil {
			if cerr := a.amqpConn.Close(); cerr != nil {
				a.logger.Error("failed to close amqp connection", sl.Err(cerr))
			}
		}
		a.db.DB.Close()
		return err
	}
}
