package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"collegeattendance/internal/admin"
	"collegeattendance/internal/attendance"
	"collegeattendance/internal/auth"
	"collegeattendance/internal/config"
	"collegeattendance/internal/holiday"
	"collegeattendance/internal/queue"
	"collegeattendance/internal/roster"
	"collegeattendance/internal/store"
)

// Worker rebuilds cached day counts when attendance changes and purges dead refresh tokens.
func main() {
	cfg := config.Load()
	if cfg.Production() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		// The api drains its own in-memory queue; the worker then just runs the cron.
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}

	rosterSvc := roster.NewService(roster.NewRepository(db.Client), nil, cfg.PhotoMaxSide)
	holidaySvc := holiday.NewService(holiday.NewRepository(db.Client))
	att := attendance.NewService(attendance.NewRepository(db.Client), rosterSvc, holidaySvc,
		attendance.WithCache(attendance.NewRedisCountsCache(redisClient.Client, cfg.StatsCacheTTL)),
		attendance.WithLocation(cfg.Location()),
	)
	accounts := auth.NewService(auth.NewRepository(db.Client), admin.NewService(admin.NewRepository(db.Client)), auth.Config{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
	})

	c := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := c.AddFunc(cfg.TokenCleanupSchedule, func() {
		n, err := accounts.PurgeExpired(ctx)
		if err != nil {
			slog.Error("purge refresh tokens failed", "error", err)
			return
		}
		slog.Info("purged refresh tokens", "deleted", n)
	}); err != nil {
		slog.Error("invalid cleanup schedule", "schedule", cfg.TokenCleanupSchedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	messages, err := q.Consume(ctx)
	if err != nil {
		slog.Error("queue consume init failed", "error", err)
		os.Exit(1)
	}

	slog.Info("worker started, waiting for messages")
	att.Drain(ctx, messages)
	slog.Info("worker stopped")
}
