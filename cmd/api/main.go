// @title Quiz Author API
// @version 1.0
// @description Builds quiz drafts question by question, validates them and forwards finished quizzes.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-author/internal/adapter"
	"quiz-author/internal/adapter/submission"
	"quiz-author/internal/cache"
	"quiz-author/internal/config"
	"quiz-author/internal/domain"
	"quiz-author/internal/handler"
	"quiz-author/internal/logger"
	"quiz-author/internal/middleware"
	"quiz-author/internal/render"
	"quiz-author/internal/repository"
	"quiz-author/internal/service"
	"quiz-author/internal/validation"

	_ "quiz-author/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Draft storage
	var draftCache domain.Cache
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		draftCache = adapter.NewRedisCacheAdapter(redisClient)
	default:
		appLogger.Warn("Using in-memory draft storage; drafts are lost on restart")
		memoryCache := adapter.NewMemoryCacheAdapter()
		defer memoryCache.Close()
		draftCache = memoryCache
	}
	draftRepository := repository.NewDraftCacheRepository(draftCache, cfg.Draft.TTL)

	// Submission sink
	var sink domain.SubmissionSink
	if cfg.Submission.Endpoint != "" {
		forwarder, err := submission.NewHTTPForwarder(cfg.Submission.Endpoint, cfg.Submission.Timeout)
		if err != nil {
			appLogger.Fatal("Failed to create submission forwarder", zap.Error(err))
		}
		appLogger.Info("Forwarding submissions", zap.String("endpoint", cfg.Submission.Endpoint))
		sink = forwarder
	} else {
		appLogger.Warn("submission.endpoint is empty; submissions are only logged")
		sink = submission.LogSink{}
	}

	submissionValidator := validation.NewSubmissionValidator(cfg.Validation.AnswerChecks)
	formService := service.NewFormService(draftRepository, sink, submissionValidator)
	appLogger.Info("FormService initialized", zap.Bool("answer_checks", cfg.Validation.AnswerChecks))

	renderer, err := render.New()
	if err != nil {
		appLogger.Fatal("Failed to parse page templates", zap.Error(err))
	}

	draftHandler := handler.NewDraftHandler(formService)
	pageHandler := handler.NewPageHandler(formService, renderer)
	healthHandler := handler.NewHealthHandler(draftCache)
	validationMiddleware := middleware.NewValidationMiddleware()

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/health", healthHandler.Health)
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Use("/static", filesystem.New(filesystem.Config{Root: render.StaticFS()}))

	// Drafts belong to the token's author when auth is enabled, otherwise
	// to the anonymous author.
	var authorRouter fiber.Router = app
	if cfg.AuthEnabled() {
		authService, err := service.NewAuthService(cfg.Auth)
		if err != nil {
			appLogger.Fatal("Failed to create AuthService", zap.Error(err))
		}
		authorRouter = app.Group("", middleware.Protected(authService))
		appLogger.Info("AuthService initialized")
	} else {
		appLogger.Warn("auth.jwt_secret is empty; authentication disabled")
	}

	draftHandler.Register(authorRouter.Group("/api"), validationMiddleware)
	pageHandler.Register(authorRouter, validationMiddleware)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		return app.Listen(":" + strconv.Itoa(cfg.Server.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}
