package app

import (
	"context"
	"errors"
	"minigames_backend/internal/config"
	"minigames_backend/pkg/logger"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	ServiceProvider *ServiceProvider
}

func NewApp() *App {
	return &App{}
}

func (s *App) initServiceProvider() {
	s.ServiceProvider = newServiceProvider()
}

func (s *App) Run() error {
	envErr := config.Load(".env")
	s.initServiceProvider()

	if err := logger.Init(s.ServiceProvider.RuntimeCfg().LogMode()); err != nil {
		return logger.WrapError(err, "failed to init logger")
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Warn("failed to load .env file", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := s.ServiceProvider.Router(ctx)
	reg := s.ServiceProvider.Registry(ctx)

	go s.ServiceProvider.Clock().Run(ctx)
	if pub := s.ServiceProvider.RedisPublisher(ctx); pub != nil {
		broker := s.ServiceProvider.Broker(ctx)
		go broker.Forward(ctx)
		go pub.Relay(ctx, broker)
	}

	srv := &http.Server{
		Addr:              s.ServiceProvider.HTTPCfg().Address(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			runErr = logger.WrapError(err, "http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server", zap.Error(err))
	}

	// Тиканье остановлено вместе с ctx, раунды рассчитываются до закрытия хранилища
	stop()
	reg.Close()
	s.ServiceProvider.Close()

	logger.Info("server stopped")
	return runErr
}
