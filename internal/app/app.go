package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"prompt_library_backend/internal/config"
	"prompt_library_backend/internal/controller"
	"prompt_library_backend/internal/middleware"
	"prompt_library_backend/internal/repository"
	"prompt_library_backend/internal/service"
	"prompt_library_backend/internal/util"
	"prompt_library_backend/pkg/configwatcher"
	"prompt_library_backend/pkg/database"
	"prompt_library_backend/pkg/logger"
	"prompt_library_backend/pkg/monitoring"
	"prompt_library_backend/pkg/security"
	"prompt_library_backend/pkg/tracing"
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
	RateLimiter     *security.RateLimiter
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	prompt   *repository.PromptRepository
	version  *repository.VersionRepository
	vote     *repository.VoteRepository
	bookmark *repository.BookmarkRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	prompt     *service.PromptService
	version    *service.VersionService
	vote       *service.VoteService
	bookmark   *service.BookmarkService
	moderation *service.ModerationService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	prompt     *controller.PromptController
	moderation *controller.ModerationController
	engagement *controller.EngagementController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		prompt:   repository.NewPromptRepository(db),
		version:  repository.NewVersionRepository(db),
		vote:     repository.NewVoteRepository(db),
		bookmark: repository.NewBookmarkRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg, service.NewTokenDenylist(rdb))
	s.user = service.NewUserService(repos.user, repos.prompt)
	s.prompt = service.NewPromptService(db, repos.prompt, repos.version, repos.vote, repos.bookmark)
	s.version = service.NewVersionService(db, repos.prompt, repos.version, s.prompt)
	s.vote = service.NewVoteService(db, repos.prompt, repos.vote, s.prompt)
	s.bookmark = service.NewBookmarkService(db, repos.prompt, repos.bookmark, s.prompt)
	s.moderation = service.NewModerationService(db, repos.prompt, s.prompt)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		prompt:     controller.NewPromptController(s.prompt, s.version),
		moderation: controller.NewModerationController(s.moderation),
		engagement: controller.NewEngagementController(s.vote, s.bookmark),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.RateLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 基于已建立的连接组装应用，测试直接调用
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	gin.SetMode(cfg.Server.Mode)
	util.RegisterValidators()
	monitoring.Init()

	app := &App{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		RateLimiter: security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()),
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(app.services, db, rdb)

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	// 配置热更新：日志级别与限流
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg)
		app.RateLimiter.SetLimit(newCfg.RateLimit.MaxRequests, newCfg.RateLimit.Window())
		logger.Log.Info("Runtime config applied",
			zap.String("log_level", logger.Level().String()),
			zap.Int("rate_limit", newCfg.RateLimit.MaxRequests),
		)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不迁移，除非显式指定 -migrate
	if !cfg.IsRelease() || cfg.ForceMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	return app
}

// EnsureAdmin 对应 -create-admin 启动参数
func (a *App) EnsureAdmin(ctx context.Context, username, password string) error {
	user, err := a.services.auth.EnsureAdmin(ctx, username, password)
	if err != nil {
		return err
	}
	logger.Log.Info("Admin account ready", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func (a *App) watchConfig(ctx context.Context) {
	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.File, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.watchConfig(watchCtx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 释放追踪、Redis 与限流器等资源
func (a *App) Close(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	a.RateLimiter.Stop()
}
