package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"crm-graphql/internal/config"
	"crm-graphql/internal/database"
	"crm-graphql/internal/events"
	"crm-graphql/internal/metrics"
	custommiddleware "crm-graphql/internal/middleware"
	"crm-graphql/internal/repository"
	"crm-graphql/internal/schema"
	"crm-graphql/internal/service"
	"crm-graphql/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        database.Service
	publisher events.Publisher
	redis     *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, dbService database.Service) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(metrics.Middleware())

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := dbService.Health()

		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Get("/metrics", metrics.Handler())

	db := dbService.DB()

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txManager := repository.NewTxManager(db)

	publisher := events.New(cfg.Kafka.Brokers, events.Topics{
		Customers: cfg.Kafka.CustomersTopic,
		Orders:    cfg.Kafka.OrdersTopic,
	}, logger)

	// Services
	services := schema.Services{
		Customers: service.NewCustomerService(customerRepo, txManager, publisher, logger),
		Products:  service.NewProductService(productRepo),
		Orders:    service.NewOrderService(customerRepo, productRepo, orderRepo, txManager, publisher, logger),
		Queries:   service.NewQueryService(customerRepo, productRepo, orderRepo),
	}

	gqlSchema, err := schema.New(services, logger)
	if err != nil {
		publisher.Close()
		return nil, err
	}

	var (
		redisClient *redis.Client
		rateLimiter func(http.Handler) http.Handler
	)
	if cfg.RateLimit.Requests > 0 {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiting will fail open",
				zap.String("addr", cfg.Redis.Addr()),
				zap.Error(err),
			)
		}
		cancel()

		rateLimiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "crm:ratelimit",
		}, logger)
	}

	transport.NewGraphQLHandler(gqlSchema, logger).RegisterRoutes(router, rateLimiter)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		db:        dbService,
		publisher: publisher,
		redis:     redisClient,
	}

	return server, nil
}

// Close releases the publisher, redis and the database pool, in that order
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
