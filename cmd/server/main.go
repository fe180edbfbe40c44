package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homecooks/profitboard/internal/api"
	"github.com/homecooks/profitboard/internal/cache"
	"github.com/homecooks/profitboard/internal/config"
	"github.com/homecooks/profitboard/internal/costing"
	"github.com/homecooks/profitboard/internal/gopuff"
	"github.com/homecooks/profitboard/internal/linnworks"
	"github.com/homecooks/profitboard/internal/profit"
	"github.com/homecooks/profitboard/internal/service"
	"github.com/homecooks/profitboard/internal/shopify"
	"github.com/homecooks/profitboard/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store := cache.NewStore(cfg.Cache.RefreshHour, nil)

	viewCache, err := cache.NewViewCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("view cache unavailable, running without it")
		viewCache = cache.NewNoopViewCache()
	}

	storefront := shopify.NewClient(cfg.Shopify)
	warehouse := linnworks.NewClient(cfg.Linnworks)

	var feed service.FeedClient
	if cfg.GoPuff.SpreadsheetID != "" && cfg.GoPuff.CredentialsJSON != "" {
		f, err := gopuff.NewFeed(context.Background(), cfg.GoPuff)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize sales feed")
		}
		feed = f
	} else {
		logger.Log.Warn().Msg("sales feed credentials missing, GoPuff view disabled")
		feed = gopuff.Disabled{}
	}

	costTTL := time.Duration(cfg.Cache.CostTTLSeconds) * time.Second
	resolver := costing.NewResolver(storefront, store, costTTL)
	calculator := profit.NewCalculator(costing.DefaultTiers())

	engine := service.NewEngine(cfg.Cache, store, storefront, warehouse, feed, resolver, calculator, nil)

	router := api.NewRouter(engine, viewCache, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
