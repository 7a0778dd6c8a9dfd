package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	categorieshandler "github.com/wallpapersverse/wallpapers-api/domains/categories/be/handler"
	categoriesrepo "github.com/wallpapersverse/wallpapers-api/domains/categories/be/repo"
	categoriesservice "github.com/wallpapersverse/wallpapers-api/domains/categories/be/service"
	redirectshandler "github.com/wallpapersverse/wallpapers-api/domains/redirects/be/handler"
	redirectsservice "github.com/wallpapersverse/wallpapers-api/domains/redirects/be/service"
	wallpapershandler "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/handler"
	wallpapersrepo "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/repo"
	wallpapersservice "github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
	platformlogging "github.com/wallpapersverse/wallpapers-api/platform/go/logging"
	platformmiddleware "github.com/wallpapersverse/wallpapers-api/platform/go/middleware"
	"github.com/wallpapersverse/wallpapers-api/platform/go/persistence"
	platformstorage "github.com/wallpapersverse/wallpapers-api/platform/go/storage"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	StoreBackend    string        `env:"STORE_BACKEND" envDefault:"postgres"` // postgres | memory
	DatabaseURL     string        `env:"DATABASE_URL"`                        // required when STORE_BACKEND=postgres
	StorageBackend  string        `env:"STORAGE_BACKEND" envDefault:"gcs"`    // gcs | local | none
	StorageBucket   string        `env:"STORAGE_BUCKET"`                      // required when STORAGE_BACKEND=gcs
	StoragePublic   string        `env:"STORAGE_PUBLIC_URL"`
	StorageLocalDir string        `env:"STORAGE_LOCAL_DIR" envDefault:"./.data/storage"`
	HistoryLookup   bool          `env:"SLUG_HISTORY_LOOKUP" envDefault:"true"`
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "api-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var (
		wallpaperRepo wallpapersservice.Repository
		categoryRepo  categoriesservice.Repository
	)
	switch cfg.StoreBackend {
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			logger.Fatal("database url required when STORE_BACKEND=postgres")
		}
		pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
		if err != nil {
			logger.Fatal("init postgres pool", zap.Error(err))
		}
		defer persistence.ClosePool(pool)

		wallpaperStore, err := persistence.NewWallpaperStore(ctx, pool)
		if err != nil {
			logger.Fatal("init wallpaper store", zap.Error(err))
		}
		categoryStore, err := persistence.NewCategoryStore(ctx, pool)
		if err != nil {
			logger.Fatal("init category store", zap.Error(err))
		}
		wallpaperRepo = wallpapersrepo.NewPostgresRepository(wallpaperStore)
		categoryRepo = categoriesrepo.NewPostgresRepository(categoryStore)
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		wallpaperRepo = wallpapersrepo.NewMemoryRepository()
		categoryRepo = categoriesrepo.NewMemoryRepository()
	default:
		logger.Fatal("invalid STORE_BACKEND (use postgres or memory)", zap.String("backend", cfg.StoreBackend))
	}

	var objects platformstorage.ObjectStore
	switch cfg.StorageBackend {
	case "gcs":
		if cfg.StorageBucket == "" {
			logger.Fatal("storage bucket required when STORAGE_BACKEND=gcs")
		}
		gcsClient, err := gcstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("init gcs client", zap.Error(err))
		}
		defer gcsClient.Close()
		objects = platformstorage.NewGCSStore(gcsClient, cfg.StorageBucket, cfg.StoragePublic)
	case "local":
		localStore, err := platformstorage.NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublic)
		if err != nil {
			logger.Fatal("init local storage", zap.Error(err))
		}
		objects = localStore
	case "none":
		logger.Warn("object storage disabled; image upload is unavailable")
	default:
		logger.Fatal("invalid STORAGE_BACKEND (use gcs, local, or none)", zap.String("backend", cfg.StorageBackend))
	}

	wallpaperOpts := []wallpapersservice.Option{
		wallpapersservice.WithHistoryLookup(cfg.HistoryLookup),
	}
	if objects != nil {
		wallpaperOpts = append(wallpaperOpts, wallpapersservice.WithObjectStore(objects))
	}
	wallpaperService := wallpapersservice.New(wallpaperRepo, wallpaperOpts...)

	categoryService := categoriesservice.New(categoryRepo, wallpaperService)
	categoryHTTPHandler := categorieshandler.New(categoryService, logger)

	wallpaperHTTPHandler := wallpapershandler.New(wallpaperService, objects, logger,
		wallpapershandler.WithCategoryEnsurer(func(ctx context.Context, categorySlug string) error {
			_, err := categoryService.EnsureExists(ctx, categorySlug)
			return err
		}))

	redirectService := redirectsservice.New(wallpaperService)
	redirectHTTPHandler := redirectshandler.New(redirectService, logger)

	rootRouter := chi.NewRouter()
	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.DefaultCORS(),
	)
	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if checker, ok := objects.(platformstorage.HealthChecker); ok {
			if err := checker.Healthy(r.Context()); err != nil {
				logger.Warn("object store readiness check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := chi.NewRouter()
	wallpaperHTTPHandler.Register(apiRouter)
	categoryHTTPHandler.Register(apiRouter)
	redirectHTTPHandler.Register(apiRouter)
	apiRouter.Route("/admin", func(r chi.Router) {
		wallpaperHTTPHandler.RegisterAdmin(r)
		categoryHTTPHandler.RegisterAdmin(r)
		redirectHTTPHandler.RegisterAdmin(r)
	})
	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
