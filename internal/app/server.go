// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ustaad-service/internal/broker/kafka"
	"ustaad-service/internal/config"
	"ustaad-service/internal/db"
	authHandler "ustaad-service/internal/handlers/auth"
	requestHandler "ustaad-service/internal/handlers/request"
	validationHandler "ustaad-service/internal/handlers/validation"
	wsHandler "ustaad-service/internal/handlers/websocket"
	"ustaad-service/internal/middleware"
	"ustaad-service/internal/pkg/jwt"
	"ustaad-service/internal/pkg/session"
	"ustaad-service/internal/pkg/validation"
	"ustaad-service/internal/platform/metrics"
	"ustaad-service/internal/repository/cache"
	"ustaad-service/internal/repository/postgres"
	"ustaad-service/internal/repository/realtime"
	authUsecase "ustaad-service/internal/service/auth"
	requestUsecase "ustaad-service/internal/service/request"
	"ustaad-service/internal/websocket"
	wsHandlers "ustaad-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
	Close() error
}

type Server struct {
	cfg    config.AppConfig
	logger *zap.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher eventPublisher
	hub       *websocket.Hub
	http      *http.Server
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Run connects every dependency, serves until ctx is cancelled and then
// shuts down in reverse order.
func (s *Server) Run(ctx context.Context) error {
	if err := s.setup(ctx); err != nil {
		s.close()
		return err
	}
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.hub.Stop()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		s.logger.Info("http server stopped")
		return nil
	})

	return g.Wait()
}

func (s *Server) setup(ctx context.Context) error {
	logger := s.logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{URL: s.cfg.DatabaseURL, MaxConns: s.cfg.DBMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	dbWrapper := postgres.NewDB(pool)
	if err := postgres.EnsureSchema(ctx, dbWrapper); err != nil {
		return err
	}
	logger.Info("postgres ready")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return err
	}
	s.redis = redisClient
	logger.Info("redis ready", zap.String("addr", s.cfg.RedisAddr))

	// ----- Kafka -----
	if len(s.cfg.KafkaBrokers) > 0 {
		s.publisher = kafka.NewProducer(s.cfg.KafkaBrokers)
		logger.Info("publishing request events",
			zap.Strings("brokers", s.cfg.KafkaBrokers),
			zap.String("topic", s.cfg.KafkaRequestTopic))
	} else {
		s.publisher = kafka.NoopPublisher{}
		logger.Warn("KAFKA_BROKERS not set, request events are not published")
	}

	// ----- Metrics -----
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Repositories -----
	authRepo := postgres.NewAuthRepository(dbWrapper)
	profileCache := cache.NewProfileCache(redisClient, s.cfg.ProfileCacheTTL)
	requestStore := realtime.NewRequestStore(redisClient)

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient, authRepo, logger)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- WebSocket Hub -----
	// The hub authenticates through the auth service, which in turn closes
	// sockets through the hub.
	var authService *authUsecase.AuthService
	s.hub = websocket.NewHub(websocket.TokenValidatorFunc(func(ctx context.Context, token string) (*jwt.Claims, error) {
		return authService.ValidateToken(ctx, token)
	}), logger)

	// ----- Services (Usecases) -----
	authService = authUsecase.NewAuthService(
		authRepo,
		profileCache,
		jwtManager,
		sessionManager,
		rateLimiter,
		s.hub,
		m,
		logger,
	)
	requestService := requestUsecase.NewRequestService(
		requestStore,
		s.publisher,
		s.hub,
		m,
		s.cfg.KafkaRequestTopic,
		logger,
	)

	s.hub.RegisterHandler(wsHandlers.NewRequestHandler(requestService))

	// ----- Gin -----
	switch s.cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(s.cfg.GinMode)
	default:
		logger.Warn("unknown GIN_MODE, using release", zap.String("mode", s.cfg.GinMode))
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.RegisterBindings(v); err != nil {
			return fmt.Errorf("register validators: %w", err)
		}
	}

	engine := gin.New()
	engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(engine, &Handlers{
		AuthHandler:       authHandler.NewAuthHandler(authService, logger),
		RequestHandler:    requestHandler.NewRequestHandler(requestService, authService, logger),
		ValidationHandler: validationHandler.NewValidationHandler(),
		WSHandler:         wsHandler.NewWebSocketHandler(s.hub, s.cfg.AllowedOrigins, logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(authService),
		Metrics:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: engine,
	}
	return nil
}

// close releases whatever setup managed to open.
func (s *Server) close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("failed to close publisher", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
