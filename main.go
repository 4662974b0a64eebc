package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"article-api/config"
	"article-api/handlers"
	"article-api/helper"
	"article-api/logger"
	"article-api/metrics"
	"article-api/middleware"
	"article-api/rbac"
	"article-api/repositories"
	"article-api/routes"
	"article-api/services"
	"article-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.Setup(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("setup logger: %v", err)
	}

	if err := run(cfg, logg); err != nil {
		logg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize repositories
	var (
		userRepo    repositories.UserRepository
		articleRepo repositories.ArticleRepository
		pinger      handlers.Pinger
	)
	switch cfg.Store {
	case config.StoreMemory:
		logg.Warn("using in-memory store, data is lost on restart")
		userRepo = repositories.NewMemoryUserRepository()
		articleRepo = repositories.NewMemoryArticleRepository()
	default:
		db, err := config.InitDB(cfg.Database, logg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		userRepo = repositories.NewUserRepository(db)
		articleRepo = repositories.NewArticleRepository(db)
		pinger = sqlDB
	}

	registry, err := config.LoadRoles(cfg.RolesFile)
	if err != nil {
		return err
	}
	logg.Info("roles loaded", "roles", registry.Roles())

	assets, err := storage.NewFilesystem(cfg.UploadDir)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	httpHelper, err := helper.NewHTTPHelper(logg)
	if err != nil {
		return err
	}

	// Initialize services
	planner := services.NewListingPlanner(articleRepo, cfg.DefaultLimit, cfg.MaxLimit)
	authService := services.NewAuthService(userRepo, cfg.JWT, logg)
	articleService := services.NewArticleService(articleRepo, planner, logg)
	imageService := services.NewImageService(assets, cfg.PublicBaseURL, cfg.UploadMaxBytes, services.DefaultBreakerConfig(), logg)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimitRPS),
		Burst: cfg.RateLimitBurst,
	})
	defer limiter.Stop()

	router := routes.Setup(routes.Deps{
		Logger:         logg,
		Helper:         httpHelper,
		Gate:           rbac.NewGate(registry),
		AuthService:    authService,
		ArticleHandler: handlers.NewArticleHandler(articleService, imageService, planner, collector, cfg.UploadMaxBytes, httpHelper),
		AuthHandler:    handlers.NewAuthHandler(authService, httpHelper),
		HealthHandler:  handlers.NewHealthHandler(pinger),
		RateLimiter:    limiter,
		Recorder:       collector,
		Gatherer:       reg,
		UploadDir:      assets.Root(),
	})
	router.MaxMultipartMemory = cfg.UploadMaxBytes + 1<<20

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("server starting", "port", cfg.Port, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
