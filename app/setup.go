package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/api"
	"github.com/sahilchouksey/partner-hub/config"
	"github.com/sahilchouksey/partner-hub/router"
	"github.com/sahilchouksey/partner-hub/services/cron"
	"github.com/sahilchouksey/partner-hub/services/geo"
	"github.com/sahilchouksey/partner-hub/services/notify"
	"github.com/sahilchouksey/partner-hub/services/storage"
	"github.com/sahilchouksey/partner-hub/services/upstream"
	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/cache"
	"github.com/sahilchouksey/partner-hub/utils/middleware"
)

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log, err := utils.NewLogger(getEnv.GO_ENV, getEnv.LOG_LEVEL)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	client := upstream.NewClient(upstream.Config{
		BaseURL: getEnv.PARTNERSHIP_API_URL,
		Token:   getEnv.PARTNERSHIP_API_TOKEN,
		Timeout: getEnv.HTTP_TIMEOUT,
		Logger:  log,
	})

	// Redis only caches boundary data; run without it when unreachable
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Warn("redis unavailable, boundary cache disabled", zap.Error(err))
			redisCache = nil
		}
	}

	loaderCfg := geo.LoaderConfig{
		URL:    getEnv.GEO_TOPOLOGY_URL,
		Object: getEnv.GEO_TOPOLOGY_OBJECT,
		Logger: log,
	}
	if redisCache != nil {
		loaderCfg.Cache = redisCache
	}
	boundaries := geo.NewLoader(loaderCfg)

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(cronDeps(getEnv, client, log))
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			_ = redisCache.Close()
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), log)
	app := server.GetEngine()

	router.SetupRoutes(app, router.Dependencies{
		Backend:    client,
		Boundaries: boundaries,
		Logger:     log,
		Security: middleware.SecurityConfig{
			AllowedOrigins:    getEnv.ALLOWED_ORIGINS,
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			AccessLog:         true,
		},
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := server.Shutdown(10 * time.Second); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	return server.Run()
}

func cronDeps(env *config.EnvironmentVariable, client *upstream.Client, log *zap.Logger) cron.Deps {
	deps := cron.Deps{
		Source:     client,
		Recipients: env.DIGEST_RECIPIENTS,
		Logger:     log,
	}

	mailer := notify.NewEmailService(notify.SMTPConfig{
		Host:     env.SMTP_HOST,
		Port:     env.SMTP_PORT,
		Username: env.SMTP_USERNAME,
		Password: env.SMTP_PASSWORD,
		From:     env.SMTP_FROM,
	})
	if mailer.IsConfigured() {
		deps.Mailer = mailer
	}

	if env.SpacesConfigured() {
		spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Warn("report storage disabled", zap.Error(err))
		} else {
			deps.Uploader = spaces
		}
	}
	return deps
}
