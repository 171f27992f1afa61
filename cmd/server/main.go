package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudly/miniapp"
	"github.com/cloudly/miniapp/internal/app"
	"github.com/cloudly/miniapp/internal/bot"
	"github.com/cloudly/miniapp/internal/config"
	"github.com/cloudly/miniapp/internal/logger"
	"github.com/cloudly/miniapp/internal/metrics"
	"github.com/cloudly/miniapp/internal/routes"
	"github.com/cloudly/miniapp/internal/scheduler"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Development: cfg.IsDevelopment(),
		SentryDSN:   cfg.SentryDSN,
		File:        cfg.LogFile,
	})
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	if cfg.SeedCourses {
		bundled, err := fs.Sub(miniapp.ContentFS, "content")
		if err != nil {
			panic(err)
		}
		created, err := app.SeedCourses(ctx, bundled)
		if err != nil {
			slog.Error("failed to seed courses", "error", err)
		} else {
			slog.Info("courses seeded", "created", created)
		}
	}

	if cfg.BotEnabled {
		startBot(ctx, app)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
}

// startBot runs the Telegram bot and, when REMINDER_TIME is set, the daily
// journal reminder. Both stop when ctx is cancelled.
func startBot(ctx context.Context, app *app.App) {
	b, err := bot.New(app.Cfg.TelegramBotToken, app.Cfg.TelegramWebAppURL)
	if err != nil {
		slog.Error("failed to start telegram bot", "error", err)
		return
	}
	go b.Run(ctx)

	if app.Cfg.ReminderTime == "" {
		return
	}

	reminders := scheduler.New(app.UserRepository, b, app.Cfg.ReminderTime)
	err = reminders.Start()
	if err != nil {
		slog.Error("failed to start reminder scheduler", "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		reminders.Stop()
	}()
}
