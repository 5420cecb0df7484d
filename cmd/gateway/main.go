package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/mmogate/internal/chunk"
	"github.com/udisondev/mmogate/internal/config"
	"github.com/udisondev/mmogate/internal/db"
	"github.com/udisondev/mmogate/internal/gateway"
	"github.com/udisondev/mmogate/internal/logging"
	"github.com/udisondev/mmogate/internal/protocol"
	"github.com/udisondev/mmogate/internal/scheduler"
	"github.com/udisondev/mmogate/internal/spawn"
	"github.com/udisondev/mmogate/internal/world"
)

const logQueueSize = 4096

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logHandler := logging.New(parseLogLevel(cfg.LogLevel), logQueueSize)
	defer logHandler.Close()
	slog.SetDefault(slog.New(logHandler))

	slog.Info("gateway starting",
		"log_level", cfg.LogLevel,
		"game_addr", cfg.GameServer.Addr(),
		"chunk_addr", cfg.ChunkServer.Addr())

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	pool := database.Pool()
	userRepo := db.NewUserRepository(pool)
	charRepo := db.NewCharacterRepository(pool)

	npcs, err := world.LoadNpcTable(ctx, db.NewNpcRepository(pool))
	if err != nil {
		return err
	}
	items, err := world.LoadItemTable(ctx, db.NewItemRepository(pool))
	if err != nil {
		return err
	}
	loot, err := world.LoadLootTable(ctx, db.NewLootRepository(pool))
	if err != nil {
		return err
	}
	slog.Info("reference data loaded",
		"npcs", npcs.Count(), "items", items.Count(), "loot", loot.Count())

	zones := spawn.NewManager(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err := zones.Load(ctx, db.NewSpawnZoneRepository(pool), db.NewMobTemplateRepository(pool)); err != nil {
		return err
	}
	spawned := zones.SpawnAll()
	slog.Info("initial mob population spawned", "mobs", spawned)

	characters := world.NewCharacterManager()
	clients := gateway.NewClientManager()
	chunks := chunk.NewManager()

	queues := gateway.NewQueues()
	dispatcher := gateway.NewDispatcher(queues, clients)
	server := gateway.NewServer(cfg.GameServer, dispatcher)
	peer := chunk.NewPeer(cfg.ChunkServer.Addr(), dispatcher, chunks, nil)

	handler := gateway.NewHandler(clients, characters, zones, userRepo, charRepo, peer, chunks, server)
	workers := gateway.NewWorkerPool(0)
	pipeline := gateway.NewPipeline(queues, workers, handler, cfg.Dispatch)

	sched := scheduler.New(slog.Default())
	registerTasks(ctx, sched, cfg.Tick, characters, charRepo, zones, clients, peer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return peer.Run(gctx) })
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// Intake stops with the listener and peer; closing the queues then
		// drains the pipeline and joins the worker pool.
		<-gctx.Done()
		queues.Close()
		return nil
	})
	g.Go(func() error {
		pipeline.Run(gctx)
		return nil
	})

	err = g.Wait()

	flushAll(characters, charRepo)

	if err != nil && ctx.Err() == nil {
		return err
	}
	slog.Info("gateway stopped")
	return nil
}

// registerTasks arms the periodic work: character write-back, mob wander,
// zone respawn and chunk telemetry.
func registerTasks(
	ctx context.Context,
	sched *scheduler.Scheduler,
	tick config.TickConfig,
	characters *world.CharacterManager,
	charRepo *db.CharacterRepository,
	zones *spawn.Manager,
	clients *gateway.ClientManager,
	peer *chunk.Peer,
) {
	sched.Schedule("character-flush", tick.FlushInterval(), func() {
		flushDirty(ctx, characters, charRepo)
	})

	sched.Schedule("mob-wander", tick.WanderInterval(), func() {
		for _, zoneID := range zones.ZoneIDs() {
			zones.MoveMobsInZone(zoneID)
		}
	})

	for _, zoneID := range zones.ZoneIDs() {
		z := zones.Zone(zoneID)
		interval := z.RespawnTime
		if interval <= 0 {
			continue
		}
		id := zoneID
		sched.Schedule(fmt.Sprintf("respawn-zone-%d", id), interval, func() {
			zones.SpawnMobsInZone(id)
		})
	}

	sched.Schedule("chunk-telemetry", tick.TelemetryInterval(), func() {
		sendTelemetry(peer, clients, characters, zones)
	})
}

// flushDirty persists every dirty character and clears flags under the
// version guard. A failed save leaves the rows dirty; the next tick
// retries.
func flushDirty(ctx context.Context, characters *world.CharacterManager, repo *db.CharacterRepository) {
	dirty := characters.DirtySnapshot()
	if len(dirty) == 0 {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := repo.SaveAll(saveCtx, dirty); err != nil {
		slog.Error("character flush failed", "rows", len(dirty), "error", err)
		return
	}
	for _, c := range dirty {
		characters.ClearDirty(c.ID, c.Version)
	}
	slog.Debug("characters flushed", "rows", len(dirty))
}

// flushAll saves every cached character on shutdown, dirty or not.
func flushAll(characters *world.CharacterManager, repo *db.CharacterRepository) {
	all := characters.GetAll()
	if len(all) == 0 {
		return
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := repo.SaveAll(saveCtx, all); err != nil {
		slog.Error("save on shutdown failed", "rows", len(all), "error", err)
		return
	}
	slog.Info("characters saved on shutdown", "count", len(all))
}

// sendTelemetry pings the chunk server with current gateway load.
func sendTelemetry(peer *chunk.Peer, clients *gateway.ClientManager, characters *world.CharacterManager, zones *spawn.Manager) {
	if !peer.Connected() {
		return
	}
	payload, err := protocol.BuildRequest(protocol.EventPingClient, 0, "", map[string]any{
		"connectedClients": clients.Count(),
		"cachedCharacters": characters.Count(),
		"liveMobs":         zones.LiveMobCount(),
	})
	if err != nil {
		slog.Error("encoding telemetry failed", "error", err)
		return
	}
	if err := peer.Send(payload); err != nil {
		slog.Error("sending telemetry failed", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
