package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"legalgpt/internal/util"
	"legalgpt/pkg/ai"
	"legalgpt/pkg/legal"
	"legalgpt/pkg/storage"
	"legalgpt/pkg/store"
	"legalgpt/services/api/internal/app"
	"legalgpt/services/api/internal/config"
	"legalgpt/services/api/internal/security"
	"legalgpt/services/api/internal/server"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}
	leeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse JWT leeway: %v", err)
	}
	requestTimeout, err := config.ParseRequestTimeout(cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to parse request timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	st, err := store.NewGormStore(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to open database", "driver", cfg.DatabaseDriver, "err", err)
	}
	defer st.Close()

	var redisClient *redis.Client
	var revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			util.Fatal("failed to reach redis", "addr", cfg.RedisAddr, "err", err)
		}
		defer redisClient.Close()
		revoker = store.NewRedisTokenRevoker(redisClient, "")
	} else {
		logger.Warn("redis not configured; rate limits and token revocation are per-process")
	}

	issuer, err := store.NewJWTIssuer(cfg.JWTSecret, tokenTTL, revoker, store.JWTOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   leeway,
	})
	if err != nil {
		util.Fatal("failed to init token issuer", "err", err)
	}

	generator, err := ai.NewGenerator(ai.ProviderConfig{
		Provider: cfg.GenerationProvider,
		BaseURL:  cfg.GenerationBaseURL,
		APIKey:   cfg.GenerationAPIKey,
		Model:    cfg.GenerationModel,
		Timeout:  requestTimeout,
	})
	if err != nil {
		util.Fatal("failed to init generation provider", "provider", cfg.GenerationProvider, "err", err)
	}

	var objects storage.ObjectStore
	if cfg.ObjectStoreEnabled() {
		minioStore, err := storage.NewMinioStore(cfg.ObjectStoreEndpoint, cfg.ObjectStoreAccessKey,
			cfg.ObjectStoreSecretKey, cfg.ObjectStoreBucket, cfg.ObjectStoreUseSSL)
		if err != nil {
			util.Fatal("failed to init object store", "endpoint", cfg.ObjectStoreEndpoint, "err", err)
		}
		objects = minioStore
	}

	appCore, err := app.New(app.Config{
		Store:             st,
		Tokens:            issuer,
		Gateway:           legal.NewGateway(generator, cfg.GenerationMaxTokens).WithTimeout(requestTimeout),
		Objects:           objects,
		QueryHistoryLimit: cfg.QueryHistoryLimit,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		util.Fatal("invalid trusted proxy list", "err", err)
	}

	var google *server.GoogleOAuth
	if cfg.GoogleEnabled() {
		google = server.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Alerter:                    security.NewAuditAlerter(redisClient, ""),
		Redis:                      redisClient,
		TrustedProxies:             trusted,
		CORSOrigins:                cfg.CORSOrigins,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		GuidanceRateLimitPerMinute: cfg.GuidanceRateLimitPerMinute,
		MaxUploadBytes:             cfg.MaxUploadBytes,
		Google:                     google,
		DebugRoutes:                cfg.DebugRoutes,
	})
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.WriteTimeout(requestTimeout),
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("legalgpt api listening", "addr", addr, "google_sign_in", google != nil, "object_store", objects != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
