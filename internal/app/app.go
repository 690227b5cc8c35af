package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skymaps/tilefinder/internal/config"
	"github.com/skymaps/tilefinder/internal/httpserver"
	"github.com/skymaps/tilefinder/internal/httpserver/deps"
	"github.com/skymaps/tilefinder/internal/logger"
	"github.com/skymaps/tilefinder/internal/redis"
	"github.com/skymaps/tilefinder/internal/registry"
	"github.com/skymaps/tilefinder/internal/resolver"
	redisstore "github.com/skymaps/tilefinder/internal/store/redis"
	"github.com/skymaps/tilefinder/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	registry    *registry.Registry
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: it only warm-starts tile snapshots. Without it
	// every service pays one catalog query on first use, nothing more.
	var redisClient *goredis.Client
	var store *redisstore.Store
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, snapshot store disabled",
				logger.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewStore(client)
			loggerClient.Info("redis snapshot store enabled")
		}
	} else {
		loggerClient.Info("redis not configured, snapshot store disabled")
	}

	// Optional extra service aliases
	var aliases map[string]registry.Alias
	if cfg.AliasFile != "" {
		loaded, err := registry.LoadAliases(cfg.AliasFile)
		if err != nil {
			loggerClient.Warn("failed to load alias file, continuing without aliases",
				logger.String("file", cfg.AliasFile),
				logger.Error(err))
		} else {
			aliases = loaded
			loggerClient.Info("service aliases loaded",
				logger.String("file", cfg.AliasFile),
				logger.Int("count", len(aliases)))
		}
	}

	reg := registry.New(registry.Options{
		Logger:       loggerClient,
		QueryTimeout: cfg.QueryTimeout,
		Aliases:      aliases,
		Store:        store,
	})

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		Resolver:       resolver.New(reg),
		Registry:       reg,
		DefaultService: cfg.DefaultService,
		RedisClient:    redisClient,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		registry:    reg,
	}
}

func (a *App) Run() error {
	a.logger.Infof("Starting tilefinder %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("tilefinder %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("tilefinder stopped cleanly")
	return nil
}
