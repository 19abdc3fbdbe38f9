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

	"classlink-portal/internal/gateway"
	"classlink-portal/internal/handlers"
	"classlink-portal/internal/links"
	"classlink-portal/internal/roster"
	"classlink-portal/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfig(opts)
	cfg.Debugf("Config: database=%s session_store=%s static_dir=%s page_size=%d/%d",
		redactDatabaseURL(cfg.DatabaseURL), cfg.SessionStore, cfg.StaticDir, cfg.DefaultPageSize, cfg.MaxPageSize)

	store, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	sessions, err := session.New(ctx, cfg.SessionStore, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	if closer, ok := sessions.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	passwordHash, err := handlers.HashAdminPassword(cfg)
	if err != nil {
		return err
	}
	// Surface template errors at startup rather than on the first request.
	if err := handlers.InitTemplates(); err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		Config:            cfg,
		Store:             store,
		Roster:            roster.NewManager(store),
		Links:             links.NewManager(store),
		Gateway:           gateway.New(store),
		Sessions:          sessions,
		AdminPasswordHash: passwordHash,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":          cfg.Port,
			"session_store": cfg.SessionStore,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logrus.Info("Server stopped")
	return nil
}
