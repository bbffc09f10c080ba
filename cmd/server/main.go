package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taxiluck/tli-backend-go/internal/api"
	"github.com/taxiluck/tli-backend-go/internal/config"
	"github.com/taxiluck/tli-backend-go/internal/database"
	"github.com/taxiluck/tli-backend-go/internal/repository"
	"github.com/taxiluck/tli-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 加载数据 (once; read-only afterwards)
	data, closeSource := loadDataset(cfg, logger)
	defer closeSource()

	svc := service.NewAnalysisService(data, service.NewResultCache(cfg.CacheSize, cfg.CacheTTL), logger)

	// 初始化路由
	router := api.SetupRouter(cfg, svc, logger)

	server := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// loadDataset reads both series from the configured source. A failed trip
// load is reported here once; the server still starts and answers 500 until
// restarted with valid data.
func loadDataset(cfg *config.Config, logger *slog.Logger) (*repository.Dataset, func()) {
	ctx := context.Background()
	noop := func() {}

	var src repository.Source
	closeSource := noop
	switch cfg.DataSource {
	case config.SourceSQLite:
		db, err := database.Open(database.Config{Path: cfg.DBPath, ReadOnly: true})
		if err != nil {
			logger.Error("trip statistics unavailable", "error", err)
			return repository.NewDataset(nil, nil, logger), noop
		}
		src = repository.NewSQLiteStore(db, cfg.DBPath)
		closeSource = func() { db.Close() }
	default:
		src = repository.NewCSVSource(cfg.TripStatsPath, cfg.CongestionPath, logger)
	}

	data, err := repository.Load(ctx, src, logger)
	if err != nil {
		logger.Error("trip statistics unavailable, /analyze will return 500", "error", err)
	}
	return data, closeSource
}
