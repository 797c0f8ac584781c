package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/controller"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/configwatcher"
	"quiz_portal_backend/pkg/database"
	"quiz_portal_backend/pkg/kvstore"
	"quiz_portal_backend/pkg/logger"
	"quiz_portal_backend/pkg/monitoring"
	"quiz_portal_backend/pkg/security"
	"quiz_portal_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
	stopWatcher     context.CancelFunc
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	test     *repository.TestRepository
	question *repository.QuestionRepository
	attempt  *repository.AttemptRepository
}

type services struct {
	auth      *service.AuthService
	course    *service.CourseService
	test      *service.TestService
	question  *service.QuestionService
	selector  *service.QuestionSelector
	attempt   *service.AttemptService
	generator *service.QuizGeneratorService
}

type controllers struct {
	auth      *controller.AuthController
	course    *controller.CourseController
	test      *controller.TestController
	question  *controller.QuestionController
	attempt   *controller.AttemptController
	generator *controller.GeneratorController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		test:     repository.NewTestRepository(db),
		question: repository.NewQuestionRepository(db),
		attempt:  repository.NewAttemptRepository(db),
	}
}

// initQuizStorage picks the generator storage backend once at startup.
func (a *App) initQuizStorage(cfg *config.Config, rdb *redis.Client) (kvstore.Store, error) {
	switch cfg.Generator.Store {
	case util.KVStoreRedis:
		return kvstore.NewRedis(rdb, "quiz_portal:"), nil
	case util.KVStoreMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return kvstore.NewMinio(ctx, kvstore.MinioOptions{
			Endpoint:  cfg.Generator.MinioEndpoint,
			AccessKey: cfg.Generator.MinioAccessKey,
			SecretKey: cfg.Generator.MinioSecretKey,
			Bucket:    cfg.Generator.MinioBucket,
			UseSSL:    cfg.Generator.MinioUseSSL,
		})
	default:
		return kvstore.NewMemory(), nil
	}
}

func (a *App) initContentProvider(cfg *config.Config) service.ContentProvider {
	if cfg.AI.APIKey == "" {
		logger.Log.Warn("ai.api_key is empty, quiz generation is disabled")
		return service.UnconfiguredProvider{}
	}
	provider, err := service.NewGeminiProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize content provider", zap.Error(err))
	}
	return provider
}

func retryPolicy(cfg *config.Config) service.RetryPolicy {
	return service.RetryPolicy{MaxRetries: cfg.AI.MaxRetries, BaseDelay: cfg.AI.BaseDelay()}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, store kvstore.Store) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course)
	s.test = service.NewTestService(repos.test, repos.question)
	s.question = service.NewQuestionService(repos.question, repos.test)
	s.selector = service.NewQuestionSelector(repos.test, repos.question, repos.attempt)
	s.attempt = service.NewAttemptService(repos.test, repos.question, repos.attempt, service.NewSampler(cfg.Attempts.Sampling))

	s.generator = service.NewQuizGeneratorService(
		a.initContentProvider(cfg),
		service.NewQuizStore(store),
		retryPolicy(cfg),
	)
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.generator.SetRetryPolicy(retryPolicy(newCfg))
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		course:    controller.NewCourseController(s.course),
		test:      controller.NewTestController(s.test),
		question:  controller.NewQuestionController(s.selector, s.question),
		attempt:   controller.NewAttemptController(s.attempt),
		generator: controller.NewGeneratorController(s.generator),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	store, err := app.initQuizStorage(cfg, app.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize generator storage",
			zap.String("store", cfg.Generator.Store), zap.Error(err))
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, store)
	controllers := app.initControllers(app.services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.startConfigWatcher()
	return app
}

// startConfigWatcher pushes reloaded config to the registered callbacks.
func (a *App) startConfigWatcher() {
	configDir := a.Config.ConfigDir
	if configDir == "" {
		configDir = "configs"
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatcher = cancel
	go func() {
		err := configwatcher.Watch(ctx, configDir, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stopWatcher != nil {
		a.stopWatcher()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
