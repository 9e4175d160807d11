package app

import (
	"context"
	"errors"
	"lms_backend/internal/authz"
	"lms_backend/internal/config"
	"lms_backend/internal/controller"
	"lms_backend/internal/event"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/testsite"
	"lms_backend/internal/util"
	"lms_backend/pkg/configwatcher"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/security"
	"lms_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile 运行时监听的配置文件
const ConfigFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Events          *event.Bus
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)

	mu     sync.RWMutex
	badges config.BadgesConfig
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	quiz     *repository.QuizRepository
	question *repository.QuestionRepository
	attempt  *repository.AttemptRepository
	badge    *repository.BadgeRepository
	event    *repository.EventRepository
}

type services struct {
	auth         *service.AuthService
	structure    *service.StructureService
	editPage     *service.EditPageService
	quizSettings *service.QuizSettingsService
	questionBank *service.QuestionBankService
	observer     *service.QuestionObserver
	eventLog     *service.EventLogService
	badge        *service.BadgeService
	report       *service.ReportService
}

type controllers struct {
	auth          *controller.AuthController
	quizStructure *controller.QuizStructureController
	section       *controller.SectionController
	questionBank  *controller.QuestionBankController
	badge         *controller.BadgeController
	report        *controller.ReportController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 配置热加载后依次回调
func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// BadgeFlags 当前生效的徽章开关，可被热加载更新
func (a *App) BadgeFlags() config.BadgesConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.badges
}

func (a *App) setBadgeFlags(cfg *config.Config) {
	a.mu.Lock()
	a.badges = cfg.Badges
	a.mu.Unlock()
	logger.Log.Info("徽章开关已更新",
		zap.Bool("enabled", cfg.Badges.Enabled),
		zap.Bool("allow_course_badges", cfg.Badges.AllowCourseBadges))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		quiz:     repository.NewQuizRepository(db),
		question: repository.NewQuestionRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		badge:    repository.NewBadgeRepository(db),
		event:    repository.NewEventRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	var cache service.StructureCache = service.NopStructureCache{}
	if a.Redis != nil {
		cache = service.NewRedisStructureCache(a.Redis, cfg.Quiz.EditCacheTTL)
	}

	gate := authz.NewGate(repos.course, authz.DefaultChecker())
	grades := service.NewGradeCalculator(repos.quiz, repos.attempt)

	s.auth = service.NewAuthService(repos.user, cfg)
	s.structure = service.NewStructureService(db, repos.quiz, repos.question, repos.attempt, gate, grades, cache, a.Events)
	s.editPage = service.NewEditPageService(s.structure, repos.attempt, cache)
	s.quizSettings = service.NewQuizSettingsService(repos.quiz, gate)
	s.questionBank = service.NewQuestionBankService(db, repos.question, repos.attempt, repos.user, gate, cache, a.Events)
	s.report = service.NewReportService(repos.user, repos.course, gate)
	s.badge = service.NewBadgeService(repos.badge, repos.course, gate,
		service.NewStorageProvider(&cfg.Storage), a.Events, a.BadgeFlags)

	// 订阅顺序不影响执行顺序，由优先级决定
	s.observer = service.NewQuestionObserver(db, repos.attempt)
	s.observer.Register(a.Events)
	s.eventLog = service.NewEventLogService(repos.event)
	s.eventLog.Register(a.Events)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		quizStructure: controller.NewQuizStructureController(s.structure, s.editPage, s.quizSettings),
		section:       controller.NewSectionController(s.structure),
		questionBank:  controller.NewQuestionBankController(s.questionBank),
		badge:         controller.NewBadgeController(s.badge),
		report:        controller.NewReportController(s.report),
		health:        controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests, window := cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// Build 用已建立的连接组装路由，rdb 为 nil 时不使用缓存
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Events: event.NewBus(),
		badges: cfg.Badges,
	}
	app.RegisterConfigCallback(app.setBadgeFlags)

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services)

	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "" || cfg.Storage.Type == util.StorageLocal {
		root := cfg.Storage.LocalPath
		if root == "" {
			root = "uploads"
		}
		router.Static("/uploads", root)
	}
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if err := testsite.CheckServerMode(cfg.TestSite.Enabled, cfg.TestSite.DataRoot); err != nil {
		logger.Log.Fatal("Refusing to start", zap.Error(err))
	}
	// 测试站点的上传文件放在数据目录下，重置时一并清理
	if cfg.TestSite.Enabled && (cfg.Storage.Type == "" || cfg.Storage.Type == util.StorageLocal) {
		cfg.Storage.LocalPath = filepath.Join(cfg.TestSite.DataRoot, "uploads")
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	gin.SetMode(cfg.Server.Mode)
	app := Build(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		name := cfg.Tracing.ServiceName
		if name == "" {
			name = "lms-backend"
		}
		tp, err := tracing.InitTracer(name, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if _, err := os.Stat(ConfigFile); err == nil {
		go func() {
			if err := configwatcher.Watch(ctx, filepath.Clean(ConfigFile), a.applyConfig); err != nil {
				logger.Log.Error("配置监听失败", zap.Error(err))
			}
		}()
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
