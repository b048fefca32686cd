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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"collegeattendance/internal/admin"
	"collegeattendance/internal/attendance"
	"collegeattendance/internal/auth"
	"collegeattendance/internal/cloudinary"
	"collegeattendance/internal/config"
	"collegeattendance/internal/handler"
	"collegeattendance/internal/holiday"
	"collegeattendance/internal/httpmiddleware"
	"collegeattendance/internal/metrics"
	"collegeattendance/internal/photo"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/roster"
	"collegeattendance/internal/store"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.App) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := store.Migrate(ctx, db.Client); err != nil {
			return err
		}
		slog.Info("schema migrated")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	photos, err := photoStore(cfg)
	if err != nil {
		return err
	}

	rosterSvc := roster.NewService(roster.NewRepository(db.Client), photos, cfg.PhotoMaxSide)
	holidaySvc := holiday.NewService(holiday.NewRepository(db.Client))
	adminSvc := admin.NewService(admin.NewRepository(db.Client))
	attendanceSvc := attendance.NewService(attendance.NewRepository(db.Client), rosterSvc, holidaySvc,
		attendance.WithCache(attendance.NewRedisCountsCache(redisClient.Client, cfg.StatsCacheTTL)),
		attendance.WithPublisher(q),
		attendance.WithLocation(cfg.Location()),
	)
	rosterSvc.OnDelete(attendanceSvc.StudentRemoved)
	if cfg.QueueBackend == "memory" {
		// No worker can see this process's queue, so drain it here.
		events, err := q.Consume(ctx)
		if err != nil {
			return err
		}
		go attendanceSvc.Drain(ctx, events)
	}
	accountSvc := auth.NewService(auth.NewRepository(db.Client), adminSvc, auth.Config{
		Issuer:              cfg.JWTIssuer,
		SigningKey:          cfg.JWTSigningKey,
		AccessTTL:           cfg.AccessTTL,
		RefreshTTL:          cfg.RefreshTTL,
		BootstrapAdminEmail: cfg.BootstrapAdminEmail,
		RosterLinkDomains:   cfg.RosterLinkDomains,
	}, auth.WithDenylist(auth.NewRedisDenylist(redisClient.Client)), auth.WithRoster(rosterSvc))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(metrics.GinMiddleware())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware(httpmiddleware.ByClientIP))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})
	if !cfg.CloudinaryEnabled() {
		r.Static("/photos", cfg.PhotoDir)
	}

	userLimit := httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	handler.New(accountSvc, rosterSvc, attendanceSvc, holidaySvc, adminSvc).
		Register(r, userLimit.GinMiddleware(httpmiddleware.ByUser))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server forced shutdown", "error", err)
	}
	slog.Info("server exited")
	return nil
}

// photoStore picks Cloudinary when configured and the local directory otherwise.
func photoStore(cfg config.App) (roster.PhotoStore, error) {
	if cfg.CloudinaryEnabled() {
		slog.Info("cloudinary configured", "cloud", cfg.CloudinaryCloudName)
		return cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder), nil
	}
	slog.Info("cloudinary not configured, storing photos on disk", "dir", cfg.PhotoDir)
	return photo.NewDiskStore(cfg.PhotoDir, cfg.PublicBaseURL)
}
