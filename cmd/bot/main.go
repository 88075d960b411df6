package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"olympbot/core/bootstrap"
	coreconfig "olympbot/core/config"
	coredatabase "olympbot/core/database"
	"olympbot/core/logger"
	coretelegram "olympbot/core/telegram"
	"olympbot/core/telegram/state"
	"olympbot/internal/api"
	"olympbot/internal/bot"
	"olympbot/internal/bot/flows"
	"olympbot/internal/storage"

	"log/slog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("olympbot: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	boot, err := bootstrap.Run(bootstrap.Options{
		Config: cfg,
		Database: coredatabase.Config{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Name:           cfg.Database.Name,
			SSLMode:        cfg.Database.SSLMode,
			MaxConnections: cfg.Database.MaxConnections,
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = boot.DB.Close()
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	store := storage.New(boot.DB)
	engine := flows.New(store, state.NewMemoryManager())
	app := bot.NewApp(store, engine)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var apiSrv *http.Server
	if cfg.API.Listen != "" {
		apiSrv = &http.Server{
			Addr:              cfg.API.Listen,
			Handler:           api.NewRouter(store, cfg.API.Key),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.API.Info("listening",
				slog.String("event", "listen"),
				slog.String("listen", cfg.API.Listen),
			)
			if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.API.Error("server stopped",
					slog.String("event", "listen"),
					slog.String("err", err.Error()),
				)
				cancel()
			}
		}()
	}

	runErr := coretelegram.RunTelegram(ctx, coretelegram.RunOptions{
		Config:      cfg,
		Registry:    app.Registry(),
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      app.Routes(),
	})

	if apiSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = apiSrv.Shutdown(shutdownCtx)
	}

	return runErr
}
