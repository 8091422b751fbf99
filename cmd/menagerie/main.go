package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/menagerie/server/internal/config"
	"github.com/menagerie/server/internal/core/event"
	coresys "github.com/menagerie/server/internal/core/system"
	"github.com/menagerie/server/internal/data"
	"github.com/menagerie/server/internal/handler"
	gonet "github.com/menagerie/server/internal/net"
	"github.com/menagerie/server/internal/net/packet"
	"github.com/menagerie/server/internal/persist"
	"github.com/menagerie/server/internal/registry"
	"github.com/menagerie/server/internal/scripting"
	"github.com/menagerie/server/internal/system"
	"github.com/menagerie/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("MENAGERIE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("name", cfg.Server.Name),
		zap.Int("id", cfg.Server.ID),
		zap.Int("digits", cfg.Registry.Digits),
	)

	// 3. Connect to PostgreSQL and run migrations
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready")

	// 4. Create repositories
	entityRepo := persist.NewEntityRepo(db)
	journalRepo := persist.NewJournalRepo(db)

	// 5. Event bus + registry. The registry's observer is the bus: one
	// emit per append, synchronous, fire-and-forget past that.
	bus := event.NewBus()
	reg, err := registry.New(cfg.Registry.Digits, registry.ObserverFunc(func(c registry.Creation) {
		event.Emit(bus, event.EntityCreated{ID: c.ID, Name: c.Name, DNA: c.DNA, Origin: c.Origin})
	}))
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	// 5a. Rebuild the registry from the entity store
	restored, err := loadEntities(ctx, reg, entityRepo)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}
	stored, err := entityRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count entities: %w", err)
	}
	if stored != int64(restored) {
		return fmt.Errorf("entity store count %d does not match %d restored rows", stored, restored)
	}
	log.Info("registry restored", zap.Int("entities", restored))

	// 5b. Load trait catalog
	traitTable, err := data.LoadTraitTable("data/yaml/trait_list.yaml")
	if err != nil {
		return fmt.Errorf("load trait table: %w", err)
	}
	log.Info("trait catalog loaded", zap.Int("traits", traitTable.Count()))

	// 5c. Initialize Lua hook engine
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	log.Info("lua hooks loaded", zap.Int("hooks", luaEngine.HookCount()))

	// 6. Create packet handler registry and register handlers
	worldState := world.NewState()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		Registry: reg,
		Traits:   traitTable,
		Config:   cfg,
		Log:      log,
		World:    worldState,
	}
	handler.RegisterAll(pktReg, deps)

	// 6a. Event subscribers: spawn broadcast + Lua hooks.
	// (The persistence system subscribes itself below.)
	event.Subscribe(bus, func(ev event.EntityCreated) {
		handler.BroadcastSpawn(worldState, ev)
	})
	event.Subscribe(bus, func(ev event.EntityCreated) {
		luaEngine.RunCreateHooks(ev.ID, ev.Name, ev.DNA)
	})

	// 7. Create network server
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 8. Create systems and register with runner
	persistSys := system.NewPersistenceSystem(entityRepo, journalRepo, bus, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewInputSystem(netServer, pktReg, worldState, bus, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(persistSys)
	runner.Register(system.NewOutputSystem(worldState))
	runner.Register(system.NewCleanupSystem(netServer, worldState, bus, log))

	// 9. Start tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	log.Info("server ready",
		zap.String("addr", netServer.Addr().String()),
		zap.Duration("tick", cfg.Network.TickRate),
	)

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			netServer.Shutdown()
			// One final dispatch + flush so creations from the last tick
			// reach the store before exit.
			runner.TickPhase(coresys.PhaseUpdate, 0)
			persistSys.Flush()
			log.Info("server stopped")
			return nil
		}
	}
}

// loadEntities rebuilds the in-memory registry from the entity store.
// Identifiers must come back dense (0..N-1): a gap means the store was
// tampered with or a batch was lost, and the boot fails rather than
// silently reassigning ids.
func loadEntities(ctx context.Context, reg *registry.Registry, repo *persist.EntityRepo) (int, error) {
	rows, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	entities := make([]registry.Entity, len(rows))
	for i, row := range rows {
		if row.ID != int64(i) {
			return 0, fmt.Errorf("entity store not dense: row %d has id %d", i, row.ID)
		}
		if row.DNA < 0 {
			return 0, fmt.Errorf("entity %d has negative dna %d", row.ID, row.DNA)
		}
		entities[i] = registry.Entity{Name: row.Name, DNA: uint64(row.DNA)}
	}
	if err := reg.Restore(entities); err != nil {
		return 0, err
	}
	return len(entities), nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
