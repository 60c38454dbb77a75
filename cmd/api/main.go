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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/zonemap/internal/adapters/http"
	natsadapter "github.com/samirrijal/zonemap/internal/adapters/nats"
	"github.com/samirrijal/zonemap/internal/adapters/postgres"
	"github.com/samirrijal/zonemap/internal/adapters/valkey"
	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/ports"
	"github.com/samirrijal/zonemap/internal/core/usecases"
	"github.com/samirrijal/zonemap/internal/pkg/config"
	"github.com/samirrijal/zonemap/internal/pkg/logging"
	"github.com/samirrijal/zonemap/internal/pkg/metrics"
	"github.com/samirrijal/zonemap/internal/pkg/telemetry"
	"github.com/samirrijal/zonemap/internal/workflows"
)

func main() {
	cfg, err := config.Load("zonemap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	store := usecases.NewZoneStore()
	var sinks []usecases.NamedSink

	deps := &http.Dependencies{Store: store}

	// Database: source of the initial zones and, in direct mode, their sink.
	if cfg.Persistence.Mode != config.PersistNone {
		db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.WithMaxConns(cfg.Database.MaxConns))
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db

		repo := postgres.NewZoneRepo(db)
		zones, err := repo.List(ctx)
		if err != nil {
			log.Fatalf("load zones: %v", err)
		}
		if err := store.Restore(zones); err != nil {
			log.Fatalf("restore zones: %v", err)
		}
		slog.Info("zones restored", "count", len(zones))

		if cfg.Persistence.Mode == config.PersistDirect {
			sinks = append(sinks, usecases.NamedSink{Name: "postgres", Sink: repo})
		}
		go reportPoolStats(ctx, db)
	}

	if cfg.Persistence.Mode == config.PersistWorkflow {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer tc.Close()
		sinks = append(sinks, usecases.NamedSink{
			Name: "temporal",
			Sink: workflows.NewStarter(tc, cfg.Temporal.TaskQueue),
		})
	}

	// Cache
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var pub *natsadapter.Publisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer p.Close()
		pub = p
		sinks = append(sinks, usecases.NamedSink{Name: "nats", Sink: p})
	}

	// Raw NATS connection for WebSocket relay
	if natsConn, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		deps.NATS = natsConn
	}

	// Core
	pen, err := domain.ParseColor(cfg.Map.DefaultColor)
	if err != nil {
		log.Fatalf("map.default_color: %v", err)
	}
	session := usecases.NewEditSession(store, pen)
	relayed := make(chan struct{})
	if pub != nil {
		relay := usecases.NewSessionRelay(pub)
		session.OnChange(relay.Notify)
		go func() {
			relay.Run(ctx)
			close(relayed)
		}()
	} else {
		close(relayed)
	}

	dispatcher := usecases.NewDispatcher(store, cfg.Persistence.QueueSize, sinks...)
	store.Observe(dispatcher)
	dispatched := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(dispatched)
	}()

	deps.Session = session
	deps.Queries = usecases.NewQueryService(store, cache, cfg.Map.CheckPoint())

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    4 * 1024 * 1024, // GeoJSON imports
		AppName:      "Zonemap API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Location, Link",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "persistence", cfg.Persistence.Mode, "sinks", len(sinks))
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

	// Flush pending zone events before the sinks close.
	cancel()
	select {
	case <-dispatched:
	case <-shutdownCtx.Done():
		slog.Warn("sync queue not drained before shutdown")
	}
	select {
	case <-relayed:
	case <-shutdownCtx.Done():
	}

	slog.Info("server stopped")
}

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Stat())
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
