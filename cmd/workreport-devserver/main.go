package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/namkunwoo/workreport-front/internal/config"
	"github.com/namkunwoo/workreport-front/internal/db"
	"github.com/namkunwoo/workreport-front/internal/devserver"
	"github.com/namkunwoo/workreport-front/internal/repository"
	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadDevServer()

	addr := flag.String("addr", cfg.Addr, "listen address")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	seedUser := flag.String("seed-user", "", "create this user on startup if missing")
	seedPassword := flag.String("seed-password", "password", "password for -seed-user")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	database, err := db.OpenDB(*dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	srv := devserver.New(database, cfg.JWTSecret, cfg.TokenTTL, devserver.WithLogger(logger))

	if *seedUser != "" {
		_, err := srv.CreateUser(context.Background(), *seedUser, *seedPassword, *seedUser, "")
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			logger.Info("seed user exists", "username", *seedUser)
		case err != nil:
			return fmt.Errorf("seeding user: %w", err)
		default:
			logger.Info("seed user created", "username", *seedUser)
		}
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", *addr, "db", *dbPath, "token_ttl", cfg.TokenTTL.String())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
