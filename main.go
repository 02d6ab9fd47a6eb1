package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/robfig/cron/v3"

	"thesis_backend/internals/configs"
	database "thesis_backend/internals/databases"
	notifService "thesis_backend/internals/features/notifications/service"
	councilService "thesis_backend/internals/features/thesis/councils/service"
	dashboardService "thesis_backend/internals/features/thesis/dashboards/service"
	discussionService "thesis_backend/internals/features/thesis/discussions/service"
	reportService "thesis_backend/internals/features/thesis/reports/service"
	topicService "thesis_backend/internals/features/thesis/topics/service"
	authService "thesis_backend/internals/features/users/auth/service"
	scheduler "thesis_backend/internals/features/users/auth/scheduler"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/oss"
	middlewares "thesis_backend/internals/middlewares"
	"thesis_backend/internals/middlewares/logger"
	routes "thesis_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ErrorHandler:            helper.ErrorHandler,
		BodyLimit:               (configs.GetEnvInt("REPORT_MAX_UPLOAD_MB", 5) + 1) << 20,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(logger.RequestID(5 * time.Second))
	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()
	if configs.GetEnvBool("DB_AUTO_MIGRATE", true) {
		if err := database.Migrate(database.DB); err != nil {
			log.Fatalf("[ERROR] migrate: %v", err)
		}
	}

	files, err := oss.NewFileStoreFromEnv()
	if err != nil {
		log.Fatalf("[ERROR] file store: %v", err)
	}

	notifOpts := []notifService.DispatcherOption{
		notifService.WithMaxPending(configs.GetEnvInt("NOTIF_MAX_PENDING", 500)),
	}
	publisher := notifService.NewKafkaPublisherFromEnv()
	if publisher != nil {
		notifOpts = append(notifOpts, notifService.WithPublisher(publisher))
	}
	notifier := notifService.NewDispatcher(database.DB, notifOpts...)

	// ⏱ scheduler setelah DB siap
	var crons []*cron.Cron
	if c, err := notifService.StartRetryScheduler(notifier, configs.GetEnv("NOTIF_RETRY_CRON", "@every 1m")); err != nil {
		log.Printf("[WARN] notification retry scheduler: %v", err)
	} else {
		crons = append(crons, c)
	}
	if c, err := scheduler.StartBlacklistCleanupScheduler(database.DB); err != nil {
		log.Printf("[WARN] blacklist cleanup scheduler: %v", err)
	} else {
		crons = append(crons, c)
	}

	auth := authService.NewAuthService(database.DB, configs.JWTSecret, configs.JWTTTL, configs.GoogleClientID)
	// 👤 admin pertama dari env; register publik tidak bisa membuat admin
	if name := configs.GetEnv("ADMIN_USER_NAME"); name != "" {
		created, err := auth.BootstrapAdmin(context.Background(), name, configs.GetEnv("ADMIN_PASSWORD"))
		switch {
		case err != nil:
			log.Printf("[WARN] bootstrap admin: %v", err)
		case created:
			log.Printf("[INFO] bootstrap admin %q created", name)
		}
	}

	discussions := discussionService.New(database.DB)
	routes.SetupRoutes(app, routes.Deps{
		DB:          database.DB,
		Auth:        auth,
		Topics:      topicService.New(database.DB, notifier, discussions.EnsureForTopic),
		Reports:     reportService.New(database.DB, notifier, files),
		Councils:    councilService.New(database.DB, notifier, files),
		Discussions: discussions,
		Dashboards:  dashboardService.New(database.DB),
	})

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := configs.GetEnv("PORT", "3000")

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: cron, server, publisher, pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")

	for _, c := range crons {
		<-c.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if n := notifier.FlushPending(ctx); n > 0 {
		log.Printf("[NOTIF] flushed %d pending notifications on shutdown", n)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("[WARN] kafka close: %v", err)
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
