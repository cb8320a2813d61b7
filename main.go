package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/coordinator"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/hub"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/router"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/store/mongostore"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage failure at startup is fatal
	s, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer s.Close()
	logger.Info("storage ready", "type", cfg.DatabaseType)

	h := hub.New(hub.Options{QueueSize: cfg.SendQueueSize, Logger: logger})
	coord := coordinator.New(s, h, coordinator.Options{OpTimeout: cfg.OpTimeout, Logger: logger})

	server := &http.Server{
		Handler:           middleware.CORS(router.NewRouter(coord, h, cfg, logger)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown
		h.Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server closed", "error", err)
		s.Close()
		os.Exit(1)
	}
	logger.Info("Server closed")
}

// openStore connects the configured backend
func openStore(ctx context.Context, cfg cliparse.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMemory:
		return store.NewMemory(), nil
	case cliparse.DatabaseMongo:
		return mongostore.Connect(ctx, cfg.DatabaseURL, cfg.MongoDatabase, logger)
	case cliparse.DatabasePostgres:
		conn, err := db.Connect(ctx, db.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewSQL(conn, logger), nil
	case cliparse.DatabaseSQLite:
		conn, err := db.Connect(ctx, db.DriverSQLite, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewSQL(conn, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
