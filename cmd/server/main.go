package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trolley/backend/config"
	httpDelivery "github.com/trolley/backend/internal/delivery/http"
	"github.com/trolley/backend/internal/domain"
	"github.com/trolley/backend/internal/infrastructure/cache"
	"github.com/trolley/backend/internal/infrastructure/pricefeed"
	"github.com/trolley/backend/internal/infrastructure/sqlite"
	"github.com/trolley/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	if err := run(cfg); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	zap.L().Info("starting trolley backend",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("priceSource", cfg.Prices.Source),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	extractor := usecase.NewSizeExtractor(cfg.Matching.EnableDebugLogging)

	var source domain.PriceLookup = store
	if cfg.Prices.Source == config.PriceSourceFeed {
		feed := pricefeed.NewClient(cfg.Prices.FeedAPIKey, cfg.Prices.FeedBaseURL, cfg.Prices.FeedRequestsPerSecond)
		feed.SetSizeExtractor(extractor.ExtractSize)
		feed.SetDebug(cfg.Matching.EnableDebugLogging)
		source = feed
		zap.L().Info("price feed configured",
			zap.String("baseURL", cfg.Prices.FeedBaseURL),
			zap.Float64("requestsPerSecond", cfg.Prices.FeedRequestsPerSecond),
			zap.Bool("apiKeySet", cfg.Prices.FeedAPIKey != ""),
		)
	}

	memoryCache := cache.NewMemoryCache(0)
	defer memoryCache.Close()
	prices := usecase.NewCachedPriceLookup(source, memoryCache, cfg.Prices.CacheTTL)

	lists := usecase.NewListService(store, prices, usecase.ListServiceConfig{
		AutoMatchTolerance: cfg.Matching.AutoMatchTolerance,
		LookupConcurrency:  cfg.Matching.LookupConcurrency,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	zap.L().Info("matching configured",
		zap.Float64("autoMatchTolerance", cfg.Matching.AutoMatchTolerance),
		zap.Int("lookupConcurrency", cfg.Matching.LookupConcurrency),
		zap.Bool("debug", cfg.Matching.EnableDebugLogging),
	)

	handler := httpDelivery.NewHandler(httpDelivery.HandlerDeps{
		Version:            version,
		Lists:              lists,
		Listings:           store,
		Prices:             prices,
		Extractor:          extractor,
		AutoMatchTolerance: cfg.Matching.AutoMatchTolerance,
	})
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", srv.Addr))
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

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
