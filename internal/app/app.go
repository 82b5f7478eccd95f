package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"spanish_learning_backend/internal/config"
	"spanish_learning_backend/internal/controller"
	"spanish_learning_backend/internal/lexicon"
	"spanish_learning_backend/internal/repository"
	"spanish_learning_backend/internal/service"
	"spanish_learning_backend/pkg/configwatcher"
	"spanish_learning_backend/pkg/database"
	"spanish_learning_backend/pkg/logger"
	"spanish_learning_backend/pkg/monitoring"
	"spanish_learning_backend/pkg/security"
	"spanish_learning_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// aiClient is everything the services need from the language model.
type aiClient interface {
	service.ContentGenerator
	service.ChatCompleter
}

type App struct {
	Config          *config.Config
	ConfigFile      string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	curriculum *repository.CurriculumRepository
	sentence   *repository.SentenceRepository
	progress   *repository.ProgressRepository
	event      *repository.SystemEventRepository
}

type services struct {
	ai           aiClient
	events       *service.SystemEventService
	generator    *service.SentenceGenerator
	seeder       *service.CurriculumSeeder
	populator    *service.LessonPopulator
	curriculum   *service.CurriculumService
	sentence     *service.SentenceService
	tracker      *service.ProgressTracker
	progress     *service.ProgressService
	conversation *service.ConversationService
	idiom        *service.IdiomService
}

type controllers struct {
	curriculum   *controller.CurriculumController
	sentence     *controller.SentenceController
	progress     *controller.ProgressController
	admin        *controller.AdminController
	conversation *controller.ConversationController
	idiom        *controller.IdiomController
	lexicon      *controller.LexiconController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		curriculum: repository.NewCurriculumRepository(db),
		sentence:   repository.NewSentenceRepository(db),
		progress:   repository.NewProgressRepository(db),
		event:      repository.NewSystemEventRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client, ai aiClient) *services {
	s := &services{ai: ai}
	normalizer := lexicon.DefaultNormalizer()

	s.events = service.NewSystemEventService(repos.event)
	s.generator = service.NewSentenceGenerator(ai, normalizer, s.events)
	s.seeder = service.NewCurriculumSeeder(repos.curriculum, s.events)

	var lock service.LessonLock
	if rdb != nil {
		ttl := time.Duration(cfg.Curriculum.PopulateLockTTLSecond) * time.Second
		lock = service.NewRedisLessonLock(rdb, ttl)
	}
	s.populator = service.NewLessonPopulator(
		repos.curriculum,
		repos.sentence,
		s.generator,
		lock,
		s.events,
		cfg.Curriculum.MaxSentencesPerCall,
	)

	s.curriculum = service.NewCurriculumService(repos.curriculum)
	s.sentence = service.NewSentenceService(repos.sentence, s.generator, s.events)
	s.tracker = service.NewProgressTracker(repos.progress)
	s.progress = service.NewProgressService(repos.progress, repos.curriculum, repos.sentence, s.tracker, s.events)
	s.conversation = service.NewConversationService(ai, ai, s.events)
	s.idiom = service.NewIdiomService(ai, normalizer, s.events)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		curriculum:   controller.NewCurriculumController(s.curriculum),
		sentence:     controller.NewSentenceController(s.generator, s.sentence),
		progress:     controller.NewProgressController(s.progress),
		admin:        controller.NewAdminController(s.seeder, s.populator, s.events, cfg.Curriculum.SentencesPerLesson),
		conversation: controller.NewConversationController(s.conversation),
		idiom:        controller.NewIdiomController(s.idiom),
		lexicon:      controller.NewLexiconController(lexicon.Default()),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// newApp wires an App around already opened connections.
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client, ai aiClient) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	app.services = app.initServices(repos, cfg, rdb, ai)
	controllers := app.initControllers(app.services, cfg, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if aiService, ok := ai.(*service.AIService); ok {
		app.RegisterConfigCallback(func(newCfg *config.Config) {
			aiService.UpdateConfig(newCfg.AI)
		})
	}

	return app
}

// NewApp opens the store and optional Redis, migrates when asked to, and
// wires every component.
func NewApp(cfg *config.Config, configFile string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, lesson population runs without a lock", zap.Error(err))
			rdb = nil
		}
	}

	app := newApp(cfg, db, rdb, service.NewAIService(cfg.AI))
	app.ConfigFile = configFile

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("spanish-learning-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	return app
}

// SeedCurriculum runs the idempotent curriculum seed once.
func (a *App) SeedCurriculum(ctx context.Context) (bool, error) {
	return a.services.seeder.SeedIfEmpty(ctx)
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	if a.Config.Curriculum.SeedOnStart {
		go func() {
			if _, err := a.services.seeder.SeedIfEmpty(ctx); err != nil {
				logger.Log.Error("Curriculum seeding failed", zap.Error(err))
			}
		}()
	}

	if a.ConfigFile != "" {
		go func() {
			err := configwatcher.Watch(ctx, a.ConfigFile, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Warn("Config watcher stopped", zap.String("file", a.ConfigFile), zap.Error(err))
			}
		}()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startBackgroundTasks(ctx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
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

// DefaultConfigFile is where LoadConfig looks inside a config directory.
func DefaultConfigFile(dir string) string {
	return filepath.Join(dir, "config.yaml")
}
