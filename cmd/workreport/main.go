package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/namkunwoo/workreport-front/internal/api"
	"github.com/namkunwoo/workreport-front/internal/cli"
	"github.com/namkunwoo/workreport-front/internal/config"
	"github.com/namkunwoo/workreport-front/internal/session"
	"github.com/namkunwoo/workreport-front/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	tokens, err := store.OpenTokenStore(cfg.TokenDir())
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}

	// Auth calls carry their token explicitly.
	authOpts := []api.Option{api.WithTimeout(cfg.Timeout())}
	if cfg.LogCalls {
		authOpts = append(authOpts, api.WithObserver(api.NewLogObserver(logger)))
	}
	auth := api.NewClient(cfg.BaseURL, api.StaticToken(""), authOpts...)

	monitor := session.NewMonitor(auth, tokens, session.WithLogger(logger))
	defer monitor.Close()

	reportOpts := []api.Option{api.WithTimeout(cfg.Timeout())}
	if cfg.LogCalls {
		reportOpts = append(reportOpts, api.WithObserver(api.NewLogObserver(logger)))
	}
	reports := api.NewClient(cfg.BaseURL, monitor, reportOpts...)

	// Another process logging in or out rewrites the token file.
	if changes, err := tokens.Watch(ctx); err != nil {
		logger.Warn("token_watch_unavailable", "error", err.Error())
	} else {
		go monitor.Follow(ctx, changes)
	}

	app := &cli.App{
		Session:   monitor,
		Reports:   reports,
		Logger:    logger,
		ExportDir: cfg.ExportDir,
	}

	// Detect interactive terminal for the TUI entrypoint.
	app.Interactive = func() bool {
		in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		return in && out
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// openLogger writes structured logs to the configured file so they never
// interfere with the TUI. WORKREPORT_LOG_FILE=stderr logs to stderr.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFile == "stderr" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		return slog.New(slog.NewTextHandler(io.Discard, opts)), func() {}, nil
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
}
