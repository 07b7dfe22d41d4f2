package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rsscat/rsscat/categorizer"
	"github.com/rsscat/rsscat/config"
	"github.com/rsscat/rsscat/feeds"
	"github.com/rsscat/rsscat/ingest"
	"github.com/rsscat/rsscat/logger"
	"github.com/rsscat/rsscat/models"
	"github.com/rsscat/rsscat/router"
	"github.com/rsscat/rsscat/store"
	"github.com/rsscat/rsscat/tasks"
)

func main() {
	configPath := "./config"
	if p := os.Getenv("RSSCAT_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.InitConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("rsscat: %v", err)
	}
}

func run(cfg *config.Config) error {
	lg := logger.InitLogger(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.MigrateDB(db); err != nil {
		return err
	}
	st := store.New(db)
	defer func() {
		if err := st.Close(); err != nil {
			lg.Error("Failed to close database", "error", err)
		}
	}()

	handler := tasks.NewHandler(st, categorizer.New(categoryTable(cfg.Categories)), lg)

	var dispatcher ingest.Dispatcher
	workerDone := make(chan error, 1)
	switch cfg.Worker.Mode {
	case "sync":
		dispatcher = tasks.NewInline(st, handler)
		close(workerDone)
	default:
		rdb, err := config.OpenRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		hostname, _ := os.Hostname()
		worker := tasks.NewWorker(rdb, handler, tasks.WorkerConfig{
			Stream:      cfg.Redis.Stream,
			Group:       cfg.Redis.Group,
			Consumer:    hostname,
			Concurrency: cfg.Worker.Concurrency,
			Block:       cfg.Worker.Block,
		}, lg)
		if err := worker.Setup(ctx); err != nil {
			return err
		}
		go func() { workerDone <- worker.Run(ctx) }()

		dispatcher = tasks.NewDispatcher(rdb, st, cfg.Redis.Stream, lg)
	}

	// Background goroutines are joined on every return path, before Redis and the
	// database are closed.
	var background sync.WaitGroup
	defer func() {
		stop()
		background.Wait()
		if err := <-workerDone; err != nil {
			lg.Error("Classification workers exited with error", "error", err)
		}
	}()

	reader := feeds.NewReader(&http.Client{Timeout: cfg.Ingest.Timeout}, feeds.WithLogger(lg))
	pipeline := ingest.NewPipeline(reader, st, dispatcher, cfg.FeedURLs(), lg)
	if err := pipeline.EnsureFeeds(ctx, feedRows(cfg.Feeds)); err != nil {
		lg.Warn("Failed to record configured feeds", "error", err)
	}

	// Populate the database with articles before serving
	pipeline.Run(ctx)
	background.Add(1)
	go func() {
		defer background.Done()
		pipeline.Loop(ctx, cfg.Ingest.Interval)
	}()

	r, err := router.InitRouter(router.Deps{
		Store:          st,
		AllowedOrigins: cfg.CORS.Origins,
		Logger:         lg,
	})
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	port := cfg.App.Port
	if port == "" {
		port = ":5000"
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		lg.Info("Server listening", "addr", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	lg.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	lg.Info("Server exiting")
	return nil
}

func categoryTable(cats []config.CategoryConfig) []categorizer.Category {
	table := make([]categorizer.Category, 0, len(cats))
	for _, c := range cats {
		table = append(table, categorizer.Category{Name: c.Name, Keywords: c.Keywords})
	}
	return table
}

func feedRows(feedList []config.FeedConfig) []models.RSSFeed {
	rows := make([]models.RSSFeed, 0, len(feedList))
	for _, f := range feedList {
		name := f.Name
		if name == "" {
			name = f.URL
		}
		rows = append(rows, models.RSSFeed{Name: name, URL: f.URL, Active: true})
	}
	return rows
}
