// Package main provides the headless simulator that loads configuration and
// content and plays one encounter to its end.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/config"
	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/character"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/inventory"
	"github.com/cory-johannsen/gauntlet/internal/game/npc"
	"github.com/cory-johannsen/gauntlet/internal/game/session"
	"github.com/cory-johannsen/gauntlet/internal/observability"
	"github.com/cory-johannsen/gauntlet/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before configuration")
	maxRounds := flag.Int("max-rounds", 100, "abandon the encounter after this many rounds")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("note: %s not loaded: %v", *envFile, err)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging,
		zap.Int64("seed", cfg.Combat.Seed),
		zap.Int("floor", cfg.Dungeon.Floor),
		zap.String("difficulty", cfg.Dungeon.Difficulty),
	)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	shutdown, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("shutting down tracing", zap.Error(err))
		}
	}()

	abilities, err := ability.LoadCatalog(cfg.Content.Abilities)
	if err != nil {
		logger.Fatal("loading abilities", zap.Error(err))
	}
	difficulties, err := npc.LoadDifficulties(cfg.Content.Difficulties)
	if err != nil {
		logger.Fatal("loading difficulties", zap.Error(err))
	}
	enemies, err := npc.LoadCatalog(cfg.Content.Enemies, difficulties, cfg.Dungeon.BossFloor, observability.Component(logger, "npc"))
	if err != nil {
		logger.Fatal("loading enemies", zap.Error(err))
	}
	weaponDefs, err := inventory.LoadWeapons(cfg.Content.Weapons)
	if err != nil {
		logger.Fatal("loading weapons", zap.Error(err))
	}
	var itemDefs []*inventory.ItemDef
	if cfg.Content.Items != "" {
		itemDefs, err = inventory.LoadItems(cfg.Content.Items)
		if err != nil {
			logger.Fatal("loading items", zap.Error(err))
		}
	}
	weapons, err := inventory.NewRegistry(weaponDefs, itemDefs)
	if err != nil {
		logger.Fatal("indexing weapons", zap.Error(err))
	}
	if missing := weapons.MissingItems(enemies.LootItemIDs()); len(missing) > 0 {
		logger.Warn("loot tables reference unknown items", zap.Strings("items", missing))
	}
	roster, err := character.LoadRoster(cfg.Content.Party)
	if err != nil {
		logger.Fatal("loading party", zap.Error(err))
	}
	party, err := character.BuildParty(roster, weapons)
	if err != nil {
		logger.Fatal("building party", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("abilities", len(abilities.Keys())),
		zap.Int("weapons", len(weapons.IDs())),
		zap.Int("items", len(weapons.ItemIDs())),
		zap.Int("enemy_tiers", enemies.MaxTier()),
		zap.Strings("difficulties", difficulties.Names()),
		zap.Int("party", len(party)),
		zap.Duration("elapsed", time.Since(start)),
	)

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Combat.Seed != 0 {
		src = dice.NewSeededSource(cfg.Combat.Seed)
	}

	stream := session.NewStream("simulate", 256)

	mgr := session.NewManager(
		session.Content{Abilities: abilities, Enemies: enemies},
		session.Options{
			Tiebreak:    cfg.Combat.InitiativeTiebreak,
			BaseXP:      cfg.Combat.SkillBaseXP,
			ArenaWidth:  cfg.Dungeon.ArenaWidth,
			ArenaHeight: cfg.Dungeon.ArenaHeight,
		},
		src,
		event.Fanout{event.NewLogSink(observability.Component(logger, "events")), stream},
		observability.Component(logger, "session"),
		observability.Tracer("session"),
	)

	trigger, ok := mgr.SpawnTrigger(cfg.Dungeon)
	if !ok {
		logger.Fatal("no enemy to fight", zap.Int("floor", cfg.Dungeon.Floor))
	}
	anchor := combat.Position{X: cfg.Dungeon.ArenaWidth - 3, Y: cfg.Dungeon.ArenaHeight / 2}
	s, err := mgr.Open(ctx, cfg.Dungeon, party, trigger, anchor)
	if err != nil {
		logger.Fatal("opening encounter", zap.Error(err))
	}

	counts := make(map[event.Type]int)
	lc := server.NewLifecycle(observability.Component(logger, "lifecycle"))
	lc.Add("events", server.FuncService(func(ctx context.Context) error {
		return countEvents(ctx, stream, counts)
	}))
	lc.Add("encounter", server.FuncService(func(ctx context.Context) error {
		// Abandon uses a fresh context so a signal still records the summary.
		defer s.Abandon(context.WithoutCancel(ctx))
		return play(ctx, s, *maxRounds)
	}))
	if err := lc.Run(ctx); err != nil {
		logger.Error("encounter aborted", zap.Error(err))
	}
	_ = stream.Close()

	sum, _ := s.Summary()
	stash := make(map[string]int, len(sum.Loot.Items))
	for _, it := range sum.Loot.Items {
		stash[it.ItemDefID] += it.Quantity
	}
	var progress session.MetaProgress
	progress.Record(sum)
	logger.Info("simulation complete",
		zap.String("outcome", sum.Outcome.String()),
		zap.Int("rounds", sum.Rounds),
		zap.Strings("survivors", sum.Survivors),
		zap.Strings("fallen", sum.Fallen),
		zap.Int("enemies_defeated", sum.EnemiesDefeated),
		zap.Int("xp", sum.XPEarned),
		zap.Int("currency", sum.Loot.Currency),
		zap.Int("items", len(sum.Loot.Items)),
		zap.Int("loot_value", weapons.StashValue(stash)),
		zap.Int("runs_completed", progress.RunsCompleted),
		zap.Int("deepest_floor", progress.DeepestFloor),
		zap.Int("characters_lost", progress.CharactersLost),
		zap.Int("attacks", counts[event.TypeAttackResolved]),
		zap.Int("events_dropped", stream.Dropped()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
