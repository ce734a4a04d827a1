package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tenderops/console-gateway/internal/config"
	"github.com/tenderops/console-gateway/internal/gateway"
	"github.com/tenderops/console-gateway/internal/logger"
	"github.com/tenderops/console-gateway/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.NewProduction()
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Log.Environment, cfg.Log.Level)

	gw := gateway.New(gateway.Config{
		LoginTimeout:      cfg.Backends.LoginTimeout,
		CookieName:        cfg.Session.CookieName,
		AccessCookieName:  cfg.Session.AccessCookieName,
		RefreshCookieName: cfg.Session.RefreshCookieName,
		CookieTTL:         cfg.Session.CookieTTL,
		CookieDomain:      cfg.Session.CookieDomain,
		CookieSecure:      cfg.Session.CookieSecure,
	}, gateway.Backends{
		Auth:      upstream.NewForwarder(cfg.Backends.Auth.BaseURL, cfg.Backends.Auth.Timeout),
		Data:      upstream.NewForwarder(cfg.Backends.Data.BaseURL, cfg.Backends.Data.Timeout),
		Recording: upstream.NewForwarder(cfg.Backends.Recording.BaseURL, cfg.Backends.Recording.Timeout),
	}, log)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           gw.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.ListenAddr).Msg("Starting gateway")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Gateway exited with error")
	}
	log.Info().Msg("Gateway stopped")
}
