package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/gridadmin/internal/config"
	"github.com/JonMunkholm/gridadmin/internal/datasource"
	"github.com/JonMunkholm/gridadmin/internal/logging"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/JonMunkholm/gridadmin/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Overload lets a local .env win over the shell.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open table source", "source", cfg.Backend.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	svc := session.NewService(source, &datasource.MockSaver{Delay: cfg.Grid.SaveDelay}, session.Options{
		MaxBulkRows:    cfg.Grid.MaxBulkRows,
		MaxRows:        cfg.Grid.MaxRows,
		IdleTimeout:    cfg.Grid.SessionIdleTimeout,
		FallbackTables: cfg.Backend.FallbackTables,
		Limiter:        session.NewSaveLimiter(cfg.Grid.SaveMaxConcurrent, cfg.Grid.SaveMaxWait),
	})

	opts := web.Options{
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		TrustedProxies: cfg.Security.TrustedProxies,
		MaxBodyBytes:   cfg.Grid.MaxPasteBytes,
	}
	if cfg.Rate.Enabled {
		opts.RateLimit = cfg.Rate.RequestsPerMinute
		opts.SaveRateLimit = cfg.Rate.SaveLimit
	}
	server := web.NewServer(svc, opts)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go svc.StartJanitor(jobCtx, cfg.Grid.SessionSweep)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if n := svc.ActiveSaves(); n > 0 {
			slog.Info("waiting for saves to complete", "active", n)
			if err := svc.WaitForSaves(shutdownCtx); err != nil {
				slog.Warn("saves did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openSource builds the configured table source and its cleanup.
func openSource(ctx context.Context, cfg *config.Config) (datasource.Source, func(), error) {
	if !strings.EqualFold(cfg.Backend.Source, config.SourcePostgres) {
		slog.Info("reading tables from backend", "url", cfg.Backend.URL)
		return datasource.NewHTTPSource(cfg.Backend.URL, cfg.Backend.Timeout), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("reading tables from database", "schema", cfg.Database.Schema)
	src := datasource.NewPostgres(pool, cfg.Database.Schema, cfg.Database.Prefix, cfg.Database.MaxRows)
	return src, pool.Close, nil
}
