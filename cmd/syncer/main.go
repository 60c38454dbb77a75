package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/zonemap/internal/adapters/nats"
	"github.com/samirrijal/zonemap/internal/adapters/postgres"
	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/pkg/config"
	"github.com/samirrijal/zonemap/internal/pkg/logging"
	"github.com/samirrijal/zonemap/internal/workflows"
)

// syncer runs the Temporal worker that writes zone events to Postgres. With
// -consume it also turns events from the ZONES stream into sync workflows,
// which covers API instances that only publish to NATS.
func main() {
	consume := flag.Bool("consume", true, "start sync workflows from the ZONES JetStream stream")
	flag.Parse()

	cfg, err := config.Load("zonemap-syncer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), postgres.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ZoneSyncWorkflow)
	w.RegisterActivity(&workflows.SyncActivities{Repo: postgres.NewZoneRepo(db)})

	if *consume {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer sub.Close()

		starter := workflows.NewStarter(c, cfg.Temporal.TaskQueue)
		if err := sub.SubscribeZoneSaved(ctx, func(ctx context.Context, z *domain.Zone) error {
			return starter.Start(ctx, workflows.SyncInput{Op: workflows.OpSave, Zone: z})
		}); err != nil {
			log.Fatalf("subscribe zone saved: %v", err)
		}
		if err := sub.SubscribeZoneRemoved(ctx, func(ctx context.Context, id domain.ZoneID, revision uint64) error {
			return starter.Start(ctx, workflows.SyncInput{Op: workflows.OpRemove, ZoneID: id, Revision: revision})
		}); err != nil {
			log.Fatalf("subscribe zone removed: %v", err)
		}
		slog.Info("consuming zone events", "stream", natsadapter.StreamZones)
	}

	slog.Info("syncer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
