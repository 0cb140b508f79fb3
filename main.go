package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cursapp/cache"
	"cursapp/config"
	"cursapp/database"
	"cursapp/logger"
	"cursapp/queue"
	"cursapp/routers"
	"cursapp/scheduler"
	"cursapp/utils"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	logger.SetGlobal(log)
	defer log.Sync()

	database.ConnectDb()
	db := database.Database.Db

	var (
		rateCache cache.Cache = cache.NewMemory()
		videoQ    queue.Queue = queue.NewMemory(64)
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-process cache and queue", "error", err)
		} else {
			defer rdb.Close()
			rateCache = cache.NewRedis(rdb, "cursapp:")
			videoQ = queue.NewRedis(rdb, queue.DefaultRedisKey)
		}
	}

	rates := utils.InitExchangeRates(cfg.ExchangeRateAPIURL, time.Duration(cfg.ExchangeRateTimeout)*time.Second, rateCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	utils.InitVideoQueue(videoQ)
	utils.StartVideoWorker(ctx, db, videoQ, time.Duration(cfg.VideoProcessingDelay)*time.Second)

	jobs := scheduler.New(db, rates, cfg.PendingEnrollmentTTL)
	if err := jobs.Start(); err != nil {
		log.Fatal("failed to start scheduler", "error", err)
	}
	defer jobs.Stop()

	app := routers.NewApp(true)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		cancel()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info("server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
	}
}
