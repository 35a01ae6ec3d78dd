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

	"github.com/statussync/presence-relay/internal/api"
	"github.com/statussync/presence-relay/internal/config"
	"github.com/statussync/presence-relay/internal/store"
	"github.com/statussync/presence-relay/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(1)
	}

	presence := store.NewPresenceStore(nil)
	consent := store.NewConsentStore(nil)
	inbox := store.NewTokenInbox(nil)
	profiles := store.NewProfileStore(nil)
	tokens := token.NewService(cfg.Secret, nil)

	h := &api.Handler{
		Presence: presence,
		Consent:  consent,
		Inbox:    inbox,
		Profiles: profiles,
		Tokens:   tokens,
	}
	router := api.NewRouter(h, cfg.CORSOrigin)

	sweeper := store.NewSweeper(presence, consent, inbox, store.SweepInterval, slog.Default())
	sweeper.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("presence relay listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutdown signal received")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}
