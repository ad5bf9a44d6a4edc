package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dusthunter/internal/client"
	"dusthunter/internal/config"
	"dusthunter/internal/infrastructure/repository"
	"dusthunter/internal/infrastructure/restapi"
	"dusthunter/internal/pkg/logger"
	"dusthunter/internal/pkg/metrics"
	"dusthunter/internal/pkg/utils"
	"dusthunter/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync() // flushes buffer, if any
	logger.SetSlogDefault(zapLogger)
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	if zapLogger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.MustRegisterMetrics()

	dexScreenerClient := client.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		cfg.DEXScreener.RequestTimeout(),
		cfg.DEXScreener.RequestsPerMinute,
		zapLogger,
	)
	tokenPriceService := service.NewTokenPriceService(zapLogger, dexScreenerClient, cfg.Reconciler.MaxConcurrentRequests)
	sessions := service.NewHoldingsSessions(tokenPriceService, cfg.Reconciler.Interval(), cfg.Reconciler.IdleTimeout(), cfg.Reconciler.MaxSessions, zapLogger)
	zapLogger.Info("Price reconciliation initialized",
		zap.Duration("interval", cfg.Reconciler.Interval()),
		zap.Int("maxConcurrentRequests", cfg.Reconciler.MaxConcurrentRequests))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	analyzer, err := client.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.UseResponseSchema, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize analysis uplink", zap.Error(err))
	}
	analysisService := service.NewAnalysisService(analyzer, cfg.Gemini.Timeout(), zapLogger)

	storage := repository.NewFileStorage(cfg.Watchlist.File)
	watchlistStore := repository.NewWatchlistStore(storage, zapLogger)
	watchlistStore.Load()
	watchlistService := service.NewWatchlistService(watchlistStore, analysisService, zapLogger)
	zapLogger.Info("Watchlist initialized", zap.String("file", storage.Path()))

	router := restapi.SetupRouter(restapi.Handlers{
		Analysis:  restapi.NewAnalysisHandler(analysisService, zapLogger),
		Holdings:  restapi.NewHoldingsHandler(sessions, tokenPriceService),
		Watchlist: restapi.NewWatchlistHandler(watchlistService),
	}, restapi.RouterOptions{
		SwaggerEnabled:  cfg.Swagger.Enabled,
		SwaggerPath:     cfg.Swagger.Path,
		SwaggerSpecFile: cfg.Swagger.SpecFile,
		EnablePprof:     cfg.Server.Pprof,
	}, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	sessions.CloseAll(2 * time.Second)

	zapLogger.Info("Server exiting")
}
