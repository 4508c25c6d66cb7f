package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/config"
	httpctl "storefront-service/internal/controllers/http"
	"storefront-service/internal/domain"
	"storefront-service/internal/infra"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/infra/cart"
	"storefront-service/internal/infra/database"
	"storefront-service/internal/infra/kafka"
	"storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/logger"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/gormrepo"
	"storefront-service/internal/repository/memory"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.ServiceName, cfg.LogLevel)

	decimal.MarshalJSONWithoutQuotes = true

	var store repository.Store
	if cfg.DBDriver == config.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	} else {
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db: connect")
		}
		store = gormrepo.NewStore(db)
	}

	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	orders := services.NewOrderService(store, publisher, services.CheckoutOptions{
		Mode:        cfg.CheckoutMode,
		StockPolicy: cfg.StockPolicy,
	}, log)
	catalog := services.NewCatalogService(store.Products(), log)

	var cartStore cart.StoreInterface
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cache.NewRedisClient(cfg.RedisAddr), cfg.IdempotencyTTL)
		orders.SetIdempotencyStore(redisCache)
		catalog.SetCache(redisCache)
		cartStore = cart.NewRedisStore(cart.NewRedisClient(cfg.RedisAddr), cfg.CartTTL)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := catalog.WarmupProductCache(ctx, 50); err != nil {
				log.Warn().Err(err).Msg("failed to warm up product cache")
			}
		}()
	} else {
		log.Warn().Msg("REDIS_ADDR not set; idempotency, product cache and cart are disabled")
	}

	blob := infra.NewBlobClient(cfg.BlobBaseURL, cfg.BlobToken, cfg.BlobTimeout)

	handler := httpctl.NewHandler(
		orders,
		catalog,
		services.NewCartService(cartStore, log),
		services.NewAdminService(store, catalog, log),
		services.NewUploadService(blob, log),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpctl.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).
			Str("checkout_mode", cfg.CheckoutMode).
			Str("stock_policy", cfg.StockPolicy).
			Str("event_broker", cfg.EventBroker).
			Msg("starting storefront service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server run")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	orders.Wait()
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (services.EventPublisher, func()) {
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.ServiceName)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init publisher")
		}
		return p, p.Close
	case config.BrokerKafka:
		p := kafka.NewProducer(cfg.KafkaBrokerList(), cfg.KafkaTopic, cfg.ServiceName, orderKey)
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka producer close")
			}
		}
	default:
		return nil, func() {}
	}
}

func orderKey(data any) []byte {
	if evt, ok := data.(domain.OrderCreatedEvent); ok {
		return []byte(evt.OrderID)
	}
	return nil
}
