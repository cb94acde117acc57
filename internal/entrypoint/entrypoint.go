// Package entrypoint wires the engine together and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkowalik/libris/internal/audit"
	"github.com/mkowalik/libris/internal/config"
	"github.com/mkowalik/libris/internal/database"
	auditdb "github.com/mkowalik/libris/internal/database/audit"
	"github.com/mkowalik/libris/internal/database/authors"
	"github.com/mkowalik/libris/internal/database/books"
	"github.com/mkowalik/libris/internal/database/categories"
	http_controllers "github.com/mkowalik/libris/internal/http"
	"github.com/mkowalik/libris/internal/scheduler"
	"github.com/mkowalik/libris/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within the
// configured shutdown timeout. onShutdown runs before the listener closes so
// background workers stop taking new work first.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run builds every component from configuration and serves the API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libris v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	recorder := audit.NewRecorder(auditdb.NewRepository(db.DB))
	bookRepo := books.NewRepository(db.DB, recorder, db.Notifiers)
	authorRepo := authors.NewRepository(db.DB, recorder, db.Notifiers)
	categoryRepo := categories.NewRepository(db.DB, recorder, db.Notifiers)

	// Task queue for background maintenance
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupAuditQueue(recorder),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(
			taskClient, cfg.AuditCleanup, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		BookStore:          bookRepo,
		AuthorStore:        authorRepo,
		CategoryStore:      categoryRepo,
		AuditStore:         recorder,
		RateLimitPerSecond: cfg.HTTP.RateLimitPerSecond,
		RateLimitBurst:     cfg.HTTP.RateLimitBurst,
		Version:            version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
