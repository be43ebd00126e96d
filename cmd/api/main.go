package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nathanael250/travooz-hms-sub004/internal/config"
	"github.com/nathanael250/travooz-hms-sub004/internal/database"
	"github.com/nathanael250/travooz-hms-sub004/internal/domain/roomfeed"
	"github.com/nathanael250/travooz-hms-sub004/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := roomfeed.NewHub(log.Named("roomfeed"))
	var publisher unitStatusPublisher = hub
	if cfg.RedisURL != "" {
		client, err := roomfeed.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		publisher = roomfeed.NewRedisPublisher(client, roomfeed.DefaultChannel)
		go func() {
			if err := roomfeed.Relay(ctx, client, roomfeed.DefaultChannel, hub, log); err != nil {
				log.Error("roomfeed relay stopped", zap.Error(err))
			}
		}()
		log.Info("unit status events relayed through redis")
	}

	router := newRouter(cfg, db, hub, publisher, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
