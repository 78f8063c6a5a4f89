package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"chartsight/internal/analyzer"
	"chartsight/internal/auth"
	"chartsight/internal/cache"
	"chartsight/internal/config"
	cronrunner "chartsight/internal/cron"
	"chartsight/internal/db"
	"chartsight/internal/handler"
	"chartsight/internal/llm"
	"chartsight/internal/logger"
	gormrepository "chartsight/internal/repository/gorm"
	"chartsight/internal/service"

	_ "chartsight/docs"
)

func main() {
	cfgPath := os.Getenv("CS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	kv := openKV(cfg.Redis, logger)
	sessions := auth.NewSessionManager(kv, cfg.Session)

	store := gormrepository.New(dbConn.Gorm)

	if cfg.Provider.APIKey == "" {
		logger.Warn("provider api key is empty, analysis requests will fail")
	}
	provider := llm.NewClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Model, cfg.Provider.MaxTokens, cfg.Provider.Timeout)

	chartAnalyzer := &analyzer.Analyzer{
		Provider: provider,
		Logger:   logger,
	}
	if cfg.Cache.Enabled {
		chartAnalyzer.Cache = kv
		chartAnalyzer.CacheTTL = cfg.Cache.TTL
	}

	quota := &service.QuotaPolicy{Repo: store, DailyLimit: cfg.Quota.DailyLimit}
	uploads, err := service.NewUploadStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Fatal("upload dir init failed", zap.Error(err))
	}

	accounts := &service.AccountService{Repo: store}
	analysisSvc := &service.AnalysisService{
		Repo:     store,
		Analyzer: chartAnalyzer,
		Quota:    quota,
		Logger:   logger,
	}
	statsSvc := &service.StatsService{Repo: store}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(limitBodyMiddleware(cfg.Upload.MaxBytes))

	requireSession := auth.RequireSession(sessions, store)

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)
	authHandler := &handler.AuthHandler{
		Accounts: accounts,
		Sessions: sessions,
		Logger:   logger,
	}
	authHandler.Register(engine, requireSession)
	userHandler := &handler.UserHandler{Quota: quota, Logger: logger}
	userHandler.Register(engine, requireSession)
	analysisHandler := &handler.AnalysisHandler{
		Service: analysisSvc,
		Stats:   statsSvc,
		Uploads: uploads,
		Repo:    store,
		Logger:  logger,
	}
	analysisHandler.Register(engine, requireSession)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		maxAge := cfg.Cron.UploadMaxAge
		_, err = cronRunner.Add(cfg.Cron.UploadSweep, func(ctx context.Context) {
			removed, err := uploads.SweepOlderThan(maxAge)
			if err != nil {
				logger.Warn("cron upload sweep failed", zap.Error(err))
				return
			}
			if removed > 0 {
				logger.Info("cron upload sweep ok", zap.Int("removed", removed))
			}
		})
		if err != nil {
			logger.Fatal("cron add upload sweep failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// openKV connects to redis, falling back to an in-process store so the
// service still runs when redis is unavailable. Sessions and cached analyses
// then do not survive a restart.
func openKV(cfg config.RedisConfig, logger *zap.Logger) cache.Store {
	rs := cache.NewRedisStore(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using in-memory store", zap.String("addr", cfg.Addr), zap.Error(err))
		return cache.NewMemoryStore()
	}
	return rs
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func limitBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
