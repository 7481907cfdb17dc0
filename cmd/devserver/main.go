package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/snippetmap/internal/adapters/http"
	"github.com/samirrijal/snippetmap/internal/adapters/memstore"
	natsadapter "github.com/samirrijal/snippetmap/internal/adapters/nats"
	"github.com/samirrijal/snippetmap/internal/adapters/postgres"
	"github.com/samirrijal/snippetmap/internal/adapters/valkey"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/pkg/config"
	"github.com/samirrijal/snippetmap/internal/pkg/logging"
	"github.com/samirrijal/snippetmap/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("snippetmap-devserver")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Store
	var store ports.SnippetStore
	switch cfg.DevServer.Store {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewSnippetRepo(db)
		if err := repo.Lock(ctx, cfg.DevServer.LockedIDs...); err != nil {
			log.Fatalf("lock: %v", err)
		}
		store = repo
	default:
		mem := memstore.New(memstore.Sample())
		if cfg.DevServer.SeedFile != "" {
			mem, err = memstore.LoadFile(cfg.DevServer.SeedFile)
			if err != nil {
				log.Fatalf("seed: %v", err)
			}
		}
		mem.Lock(cfg.DevServer.LockedIDs...)
		slog.Info("memory store ready", "snippets", mem.Len())
		store = mem
	}
	slog.Info("store ready", "driver", cfg.DevServer.Store, "locked", cfg.DevServer.LockedIDs)

	// Cache
	var cache ports.FeedCache
	if cfg.Valkey.Addr != "" {
		c, err := valkey.New(cfg.Valkey.Addr, "snippetmap:")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	// NATS, only for readiness
	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = natsadapter.Connect(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer natsConn.Close()
		}
	}

	deps := &http.Dependencies{
		Store:        store,
		NATS:         natsConn,
		Cache:        cache,
		FeedCacheTTL: int(cfg.Valkey.FeedTTL / time.Second),
		FeedPath:     cfg.API.FeedPath,
		SnippetsPath: cfg.API.SnippetsPath,
		CSRFCookie:   cfg.API.CSRFCookie,
		CSRFHeader:   cfg.API.CSRFHeader,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "snippetmap devserver",
	})
	http.SetupStubRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.DevServer.Port)
		slog.Info("devserver starting", "addr", addr, "feed", cfg.API.FeedPath)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
