package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/BioLink/config"
	"github.com/sifan077/BioLink/internal/app/model"
	apprepository "github.com/sifan077/BioLink/internal/app/repository"
	appserver "github.com/sifan077/BioLink/internal/app/server"
	appservice "github.com/sifan077/BioLink/internal/app/service"
	"github.com/sifan077/BioLink/internal/http/middleware"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"github.com/sifan077/BioLink/internal/infra/logger"
	infraPrometheus "github.com/sifan077/BioLink/internal/infra/prometheus"
	infraRedis "github.com/sifan077/BioLink/internal/infra/redis"
	"go.uber.org/zap"
)

const sessionSecretBytes = 32

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.MustInit(logger.ConfigFromEnv())
	defer func() { _ = logger.Sync() }()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatal("Invalid analytics timezone", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("addr", cfg.Server.Addr),
		zap.String("analytics_file", cfg.Analytics.DataFile),
		zap.String("content_file", cfg.Content.DataFile),
		zap.String("timezone", loc.String()),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("prometheus_enabled", cfg.Prometheus.Enabled),
	)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, continuing without rate limiting and live-status cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			log.Info("Connected to Redis successfully")
		}
	}

	if cfg.Prometheus.Enabled {
		promServer := infraPrometheus.NewServer(cfg.Prometheus, nil)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Prometheus metrics server disabled")
	}

	bots, err := appservice.NewBotDetector(cfg.Analytics.BotPatterns)
	if err != nil {
		log.Fatal("Invalid bot signature", zap.Error(err))
	}

	analyticsRepo := apprepository.NewAnalyticsFileRepository(apprepository.AnalyticsFileOptions{
		Path:      cfg.Analytics.DataFile,
		Retention: cfg.Analytics.Retention,
	})
	contentRepo := apprepository.NewContentFileRepository(cfg.Content.DataFile)

	analytics := appservice.NewAnalyticsService(appservice.AnalyticsDeps{
		Logger: logger.Named("analytics"),
		Repo:   analyticsRepo,
		Bots:   bots,
		Policy: appservice.AdmissionPolicy{
			ViewDedupWindow:  cfg.Analytics.ViewDedupWindow,
			ClickDedupWindow: cfg.Analytics.ClickDedupWindow,
			ClickRateWindow:  cfg.Analytics.ClickRateWindow,
			ClickRateLimit:   cfg.Analytics.ClickRateLimit,
		},
		Location: loc,
	})

	secret := []byte(cfg.Admin.SessionSecret)
	if len(secret) == 0 {
		secret, err = httpUtil.RandomSecret(sessionSecretBytes)
		if err != nil {
			log.Fatal("Failed to generate session secret", zap.Error(err))
		}
		log.Warn("ADMIN_SESSION_SECRET not set, admin sessions will not survive a restart")
	}
	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD not set, admin login works only with a stored password")
	}

	live, err := newLiveStatusService(cfg.Live, redisClient, logger.Named("live"))
	if err != nil {
		log.Fatal("Failed to build live-status probes", zap.Error(err))
	}

	server := appserver.New(appserver.Dependencies{
		Logger: log,
		Redis:  redisClient,
		RateLimit: middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      cfg.RateLimit.Window,
		},
		CORSOrigin: cfg.Server.CORSOrigin,
		Analytics:  analytics,
		Content:    appservice.NewContentService(contentRepo),
		Gate:       appservice.NewPasswordGate(contentRepo, cfg.Admin.Password),
		Live:       live,
		Tokens:     httpUtil.NewTokenSigner(secret, cfg.Admin.SessionTTL),
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting HTTP server", zap.String("addr", cfg.Server.Addr))
	if err := server.Listen(cfg.Server.Addr); err != nil {
		log.Error("Fiber server exited", zap.Error(err))
	}
}

func newLiveStatusService(cfg config.LiveConfig, rdb *redis.Client, log *zap.Logger) (*appservice.LiveStatusService, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	youtube, err := appservice.NewYouTubeProbe(client, cfg.YouTubeBaseURL, appservice.DefaultYouTubeLiveIndicators)
	if err != nil {
		return nil, err
	}

	probes := map[string]appservice.LiveProbe{
		model.PlatformKick:    appservice.NewCachedLiveProbe(appservice.NewKickProbe(client, cfg.KickBaseURL), rdb, model.PlatformKick, cfg.CacheTTL, log),
		model.PlatformYouTube: appservice.NewCachedLiveProbe(youtube, rdb, model.PlatformYouTube, cfg.CacheTTL, log),
	}
	return appservice.NewLiveStatusService(log, cfg.Timeout, probes), nil
}
