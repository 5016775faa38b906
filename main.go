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

	"viral-clips/domain/repository"
	"viral-clips/infrastructure/cache"
	youtubeclient "viral-clips/infrastructure/clients/youtube"
	"viral-clips/infrastructure/configuration"
	"viral-clips/infrastructure/logger"
	"viral-clips/infrastructure/persistence"
	"viral-clips/infrastructure/pubsub"
	httpHandler "viral-clips/interfaces/http"
	"viral-clips/server"
	"viral-clips/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App
	cacheCfg := configuration.C.Cache

	coldTier := initColdTier(ctx)
	quotaStore := initQuotaStore(ctx)

	store := cache.NewTwoTierStore(
		cache.NewHotCache(cacheCfg.HotMaxEntries),
		coldTier,
		cacheCfg.HotTTL(),
		cacheCfg.ColdTTL(),
	)

	youtubeConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("YouTube credentials missing, discovery cannot start")
		os.Exit(1)
	}
	provider, err := youtubeclient.NewDiscoveryClient(ctx, &youtubeclient.Config{
		ClientID:     youtubeConfig.ClientID,
		ClientSecret: youtubeConfig.ClientSecret,
		RedirectURL:  youtubeConfig.RedirectURL,
		AccessToken:  youtubeConfig.AccessToken,
		RefreshToken: youtubeConfig.RefreshToken,
		APIKey:       youtubeConfig.APIKey,
		DailyQuota:   youtubeConfig.DailyQuota,
	}, quotaStore)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to initialize YouTube client")
		os.Exit(1)
	}

	discoveryUC := usecase.NewDiscoveryUseCase(provider, store, quotaStore)
	if events := initDiscoveryEvents(ctx); events != nil {
		discoveryUC = discoveryUC.WithEvents(events)
	}

	discoveryHandler := httpHandler.NewDiscoveryHandler(discoveryUC)
	router := server.InitiateRouter(discoveryHandler)

	// Background sweep keeps expired entries from piling up between reads.
	g.Go(func() error {
		ticker := time.NewTicker(cacheCfg.SweepInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				sweepCtx, cancelSweep := context.WithTimeout(ctx, 30*time.Second)
				discoveryUC.Sweep(sweepCtx)
				cancelSweep()
			}
		}
	})

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			} else {
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			}
		} else {
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// initColdTier selects the durable tier. Mongo is the default; Postgres is
// the alternative for deployments that already run one. A missing backend
// degrades to memory-only operation.
func initColdTier(ctx context.Context) repository.IDiscoveryCache {
	switch configuration.C.Cache.ColdBackend {
	case "postgres":
		psqlDb, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available, running memory-only cache")
			return nil
		}
		if err := persistence.EnsureDiscoveryCacheSchema(psqlDb); err != nil {
			logger.GetLogger().WithField("error", err).Error("Failed ensuring discovery cache schema")
			return nil
		}
		logger.GetLogger().Info("PostgreSQL cold tier connected")
		return persistence.NewSQLDiscoveryCacheRepository(psqlDb)

	default:
		mongoDb, err := persistence.NewMongoDb(
			configuration.C.Database.Mongo.Host,
			configuration.C.Database.Mongo.Port,
			configuration.C.Database.Mongo.User,
			configuration.C.Database.Mongo.Password,
			configuration.C.Database.Mongo.Name,
		)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("MongoDB not available, running memory-only cache")
			return nil
		}
		if err := mongoDb.Ping(ctx, nil); err != nil {
			logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed, running memory-only cache")
			return nil
		}
		logger.GetLogger().Info("MongoDB cold tier connected")
		return persistence.NewDiscoveryCacheRepository(mongoDb, configuration.C.Database.Mongo.Name)
	}
}

// initQuotaStore prefers Redis so quota accounting survives restarts and is
// shared across replicas. Falls back to the in-process store.
func initQuotaStore(ctx context.Context) repository.IQuotaStore {
	redisCfg := configuration.C.RedisClient
	if redisCfg.Host == "" {
		logger.GetLogger().Info("Redis not configured, using in-process quota store")
		return cache.NewMemoryQuotaStore()
	}
	client, err := cache.NewRedisClient(
		ctx,
		fmt.Sprintf("%s:%s", redisCfg.Host, redisCfg.Port),
		redisCfg.Username,
		redisCfg.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available, using in-process quota store")
		return cache.NewMemoryQuotaStore()
	}
	logger.GetLogger().Info("Redis quota store connected")
	return cache.NewRedisQuotaStore(client)
}

// initDiscoveryEvents wires the optional refresh-event publisher. Absent
// Pub/Sub config just means no events.
func initDiscoveryEvents(ctx context.Context) pubsub.IDiscoveryEvents {
	projectID := configuration.C.Pubsub.ProjectID
	if projectID == "" {
		return nil
	}
	client, err := pubsub.NewPubSub(ctx, projectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available, discovery events disabled")
		return nil
	}
	return pubsub.NewDiscoveryEvents(client, configuration.C.Pubsub.Topic)
}
