package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"prohibition/internal/engine"
	"prohibition/internal/event"
	"prohibition/internal/infra"
	"prohibition/internal/infra/snapshot"
	"prohibition/internal/infra/storage"
	"prohibition/internal/infra/stream"
	"prohibition/internal/ledger"
	"prohibition/internal/market"
	"prohibition/internal/service"
	"prohibition/internal/world"
	"prohibition/internal/worldgen"
)

const metricsInterval = time.Minute

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config       *infra.Config
	Logger       *slog.Logger
	Metrics      *infra.Metrics
	Storage      *storage.Storage
	Orchestrator *engine.Orchestrator
	Hub          *stream.Hub
	Market       *service.MarketService

	// saves hands committed worlds from the tick loop to the persister.
	saves chan checkpoint
}

// checkpoint is a committed world and the last event sequence that produced it.
type checkpoint struct {
	state *world.State
	seq   uint64
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{
		Metrics: infra.GlobalMetrics,
		saves:   make(chan checkpoint, 1),
	}
}

// Initialize loads config, opens storage and restores (or generates) the world.
func (b *Bootstrap) Initialize(ctx context.Context, configPath string) error {
	slog.Info("🚀 Bootstrapping Prohibition...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Restore or generate the world
	st, entries, err := b.restore(ctx)
	if err != nil {
		return err
	}
	events, err := event.Restore(entries)
	if err != nil {
		return err
	}

	// 5. Tick engine
	policy, err := ledger.ParsePolicy(cfg.Ledger.NegativeInventory)
	if err != nil {
		return err
	}
	market.Warmup(64)

	b.Hub = stream.NewHub(cfg.Stream.AllowedOrigins, b.Logger, b.Metrics)
	b.Orchestrator = engine.NewOrchestrator(st, engine.Config{
		Interval: cfg.TickInterval(),
		RNG:      rand.New(rand.NewSource(b.seed())),
		Options: engine.Options{
			Applier: ledger.NewApplier(policy, b.Logger, b.Metrics),
			Clearer: market.Clearer{
				Parallel: cfg.Simulation.ParallelClearing,
				Workers:  cfg.Simulation.ClearingWorkers,
			},
			Retention: cfg.Simulation.HistoryRetention,
		},
		Log:      events,
		Logger:   b.Logger,
		Metrics:  b.Metrics,
		DumpPath: filepath.Join(cfg.Snapshot.Dir, "panic_dump.snap.zst"),
		OnTick:   b.onTick,
		OnLoad:   b.Hub.PublishLoad,
	})
	b.Market = service.NewMarketService(b.Orchestrator)
	slog.Info("✅ World ready",
		slog.Uint64("tick", st.Tick),
		slog.Int("cities", len(st.Cities)),
		slog.Int("entities", len(st.Entities)),
		slog.Int("events", events.Len()),
	)
	return nil
}

func (b *Bootstrap) seed() int64 {
	if s := b.Config.Simulation.Seed; s != 0 {
		return s
	}
	return time.Now().UnixNano()
}

// restore prefers the database, then the newest snapshot file, then a fresh world.
func (b *Bootstrap) restore(ctx context.Context) (*world.State, []event.Entry, error) {
	st, err := b.Storage.LoadWorld(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("restore from database: %w", err)
	}
	if st != nil {
		entries, err := b.Storage.LoadEvents(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := st.Validate(); err != nil {
			return nil, nil, fmt.Errorf("restore from database: %w", err)
		}
		slog.Info("🔄 Restored world from database", slog.Uint64("tick", st.Tick))
		return st, entries, nil
	}

	path, err := snapshot.Latest(b.Config.Snapshot.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan snapshots: %w", err)
	}
	if path != "" {
		snap, err := snapshot.Read(path)
		if err != nil {
			return nil, nil, err
		}
		if err := snap.World.Validate(); err != nil {
			return nil, nil, fmt.Errorf("restore %s: %w", path, err)
		}
		slog.Info("🔄 Restored world from snapshot", slog.String("file", path), slog.Uint64("tick", snap.Header.Tick))
		return snap.World, snap.Events, nil
	}

	gen := worldgen.Generator{Seed: b.seed()}
	st, err = gen.Generate()
	if err != nil {
		return nil, nil, fmt.Errorf("generate world: %w", err)
	}
	slog.Info("🌱 Generated new world", slog.Int64("seed", gen.Seed))
	return st, nil, nil
}

// onTick runs on the orchestrator goroutine and must not block.
func (b *Bootstrap) onTick(res engine.Result) {
	b.Hub.PublishTick(res)

	every := uint64(b.Config.Storage.SaveEveryTicks)
	if every == 0 || res.Tick%every != 0 {
		return
	}
	st, seq := b.Orchestrator.Checkpoint()
	select {
	case b.saves <- checkpoint{state: st, seq: seq}:
	default:
		// persister still busy, the next interval catches up
		slog.Warn("Save skipped, persister busy", slog.Uint64("tick", res.Tick))
	}
}

// Run starts every background loop and blocks until ctx is done, then saves once more.
func (b *Bootstrap) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.Orchestrator.Run(gctx)
		return nil
	})
	g.Go(func() error {
		b.Hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return b.serveStream(gctx)
	})
	g.Go(func() error {
		b.persist(gctx)
		return nil
	})
	g.Go(func() error {
		b.reportMetrics(gctx)
		return nil
	})

	if err := b.Orchestrator.Start(gctx); err != nil {
		slog.Error("Failed to start tick loop", slog.Any("error", err))
	} else {
		slog.Info("✅ Tick loop started", slog.Duration("interval", b.Config.TickInterval()))
	}

	err := g.Wait()

	// Final save uses a fresh context, the run context is already cancelled.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, seq := b.Orchestrator.Checkpoint()
	if serr := b.Save(saveCtx, st, seq); serr != nil {
		err = errors.Join(err, serr)
	}
	if cerr := b.Storage.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func (b *Bootstrap) serveStream(ctx context.Context) error {
	if b.Config.Stream.Addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", b.Hub.ServeWs)
	srv := &http.Server{Addr: b.Config.Stream.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("📡 Stream server listening", slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("stream server: %w", err)
	}
	return nil
}

func (b *Bootstrap) persist(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cp := <-b.saves:
			if err := b.Save(ctx, cp.state, cp.seq); err != nil {
				b.Metrics.RecordError()
				slog.Error("Failed to save world", slog.Uint64("tick", cp.state.Tick), slog.Any("error", err))
			}
		}
	}
}

// Save writes st and the event log up to seq to the database and a snapshot file.
// seq must be the sequence st was checkpointed at, so later events are never
// persisted alongside an older world.
func (b *Bootstrap) Save(ctx context.Context, st *world.State, seq uint64) error {
	if err := b.Storage.SaveWorld(ctx, st); err != nil {
		return err
	}
	entries := b.Orchestrator.EventsUntil(seq)
	n, err := b.Storage.AppendEvents(ctx, entries)
	if err != nil {
		return err
	}

	if dir := b.Config.Snapshot.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
		if err := snapshot.Write(snapshot.PathFor(dir, st.Tick), snapshot.New(st, entries)); err != nil {
			return err
		}
	}
	slog.Info("💾 World saved", slog.Uint64("tick", st.Tick), slog.Int("new_events", n))
	return nil
}

func (b *Bootstrap) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := b.Metrics.Snapshot()
			st := b.Orchestrator.State()
			city, _ := st.LocationOf(st.User)
			slog.Info("📊 Metrics",
				slog.Uint64("tick", snap.WorldTick),
				slog.Uint64("trades", snap.Trades),
				slog.Int64("avg_latency_ns", snap.AvgLatencyNs),
				slog.Int("stream_clients", int(snap.StreamClients)),
				slog.String("player_city", string(city)),
				slog.String("player_capital", b.Market.Capital(st.User).Decimal().StringFixed(2)),
			)
		}
	}
}
