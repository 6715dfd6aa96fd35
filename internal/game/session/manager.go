package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/ai"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/encounter"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/npc"
	"github.com/cory-johannsen/gauntlet/internal/observability"
)

// Content bundles the immutable catalogs encounters draw on.
type Content struct {
	Abilities *ability.Catalog
	Enemies   *npc.Catalog
}

// Options tunes encounter construction.
type Options struct {
	// Tiebreak is the initiative tiebreak resolution.
	Tiebreak int
	// BaseXP is the XP of one trivial skill use.
	BaseXP      int
	ArenaWidth  int
	ArenaHeight int
	// Terrain is the external movement validator; nil means open ground.
	Terrain ai.MovementValidator
}

// Manager opens encounter sessions and tracks the ones still running.
// All methods are safe for concurrent use; each Session is not.
type Manager struct {
	mu       sync.RWMutex
	content  Content
	opts     Options
	engine   *combat.Engine
	enemies  *npc.Manager
	src      dice.Source
	sink     event.Sink
	logger   *zap.Logger
	tracer   trace.Tracer
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
//
// Precondition: content catalogs and src must be non-nil.
// Postcondition: nil sink, logger, and tracer are replaced with no-ops.
func NewManager(content Content, opts Options, src dice.Source, sink event.Sink, logger *zap.Logger, tracer trace.Tracer) *Manager {
	if sink == nil {
		sink = event.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = observability.NoopTracer()
	}
	if opts.ArenaWidth <= 0 {
		opts.ArenaWidth = 24
	}
	if opts.ArenaHeight <= 0 {
		opts.ArenaHeight = 16
	}
	return &Manager{
		content:  content,
		opts:     opts,
		engine:   combat.NewEngine(opts.Tiebreak),
		enemies:  npc.NewManager(),
		src:      &lockedSource{src: src},
		sink:     sink,
		logger:   logger,
		tracer:   tracer,
		sessions: make(map[string]*Session),
	}
}

// Engine returns the registry of running schedulers.
func (m *Manager) Engine() *combat.Engine { return m.engine }

// Tracked returns the enemy instance registry.
func (m *Manager) Tracked() *npc.Manager { return m.enemies }

// SpawnTrigger picks a random template eligible for floor and instantiates it.
//
// Postcondition: returns (nil, false) with a warning when nothing is eligible.
func (m *Manager) SpawnTrigger(floor FloorContext) (*npc.Instance, bool) {
	number, difficulty := floor.CurrentFloorNumber(), floor.DifficultySetting()
	templates := m.content.Enemies.EnemiesForFloor(number, difficulty)
	if len(templates) == 0 {
		m.logger.Warn("no enemy eligible for floor",
			zap.Int("floor", number),
			zap.String("difficulty", difficulty),
		)
		return nil, false
	}
	t := templates[dice.Between(m.src, 0, len(templates)-1)]
	return m.content.Enemies.Instantiate(t.Key, t.Tier, number, difficulty)
}

// Open builds an encounter around trigger and starts its combat.
//
// trigger is scaled into a group for the floor, the group is balanced against
// the party once, and the enemies are placed on free cells nearest at.
//
// Precondition: party is non-empty and alive; trigger is non-nil.
// Postcondition: Returns a Session whose scheduler is Active, or an error
// with nothing tracked.
func (m *Manager) Open(ctx context.Context, floor FloorContext, party []*combat.Combatant, trigger *npc.Instance, at combat.Position) (*Session, error) {
	if len(party) == 0 {
		return nil, errors.New("session: party must not be empty")
	}
	if trigger == nil {
		return nil, errors.New("session: trigger must not be nil")
	}

	id := uuid.New().String()
	number, difficulty := floor.CurrentFloorNumber(), floor.DifficultySetting()
	ctx, span := m.tracer.Start(ctx, "combat.start", trace.WithAttributes(
		attribute.String("encounter.id", id),
		attribute.Int("floor", number),
		attribute.String("difficulty", difficulty),
		attribute.Int("party.size", len(party)),
	))
	defer span.End()

	logger := m.logger.With(zap.String("encounter", id))
	group := encounter.NewScaler(m.src, logger).Scale(trigger, number)

	arena := NewArena(m.opts.ArenaWidth, m.opts.ArenaHeight, m.opts.Terrain)
	arena.Occupy(party...)
	cells := arena.Place(ai.EntityKindEnemy, at, len(group))
	if len(cells) == 0 {
		err := fmt.Errorf("session: no free cell near (%d, %d)", at.X, at.Y)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(cells) < len(group) {
		logger.Warn("arena too crowded for group",
			zap.Int("wanted", len(group)),
			zap.Int("placed", len(cells)),
		)
		group = group[:len(cells)]
	}
	balance := encounter.Balance(group, encounter.PartyStrength(party))

	s := &Session{
		id:         id,
		floor:      number,
		difficulty: difficulty,
		party:      party,
		instances:  make(map[string]*npc.Instance, len(group)),
		arena:      arena,
		balance:    balance,
		src:        m.src,
		sink:       m.sink,
		logger:     logger,
		tracer:     m.tracer,
		release:    func() { m.finished(id) },
	}
	for i, inst := range group {
		if err := m.enemies.Track(id, inst); err != nil {
			m.enemies.Release(id)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("session: tracking enemy: %w", err)
		}
		cbt := inst.Combatant(cells[i])
		arena.Occupy(cbt)
		s.enemies = append(s.enemies, cbt)
		s.instances[cbt.ID] = inst
		m.sink.Emit(event.Event{
			Type:      event.TypeEnemySpawned,
			Encounter: id,
			ActorID:   cbt.ID,
			Key:       inst.TemplateKey,
			Amount:    inst.Tier,
			X:         cbt.Pos.X,
			Y:         cbt.Pos.Y,
		})
	}

	s.roller = dice.NewLoggedRoller(m.src, logger)
	s.resolver = ability.NewResolver(m.content.Abilities, m.sink, logger, m.opts.BaseXP)
	s.tactician = ai.NewTactician(s.resolver, arena, s.roller, m.sink, logger)

	sched, err := m.engine.StartCombat(id, m.src, party, s.enemies)
	if err != nil {
		m.enemies.Release(id)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("session: %w", err)
	}
	s.sched = sched

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	span.SetAttributes(
		attribute.Int("enemy.count", len(s.enemies)),
		attribute.String("balance", balance.Adjustment.String()),
		attribute.Float64("balance.ratio", balance.Ratio),
	)
	m.sink.Emit(event.Event{
		Type:      event.TypeCombatStarted,
		Encounter: id,
		Round:     sched.Round(),
		Amount:    len(s.enemies),
	})
	logger.Info("combat started",
		zap.Int("floor", number),
		zap.String("difficulty", difficulty),
		zap.Int("party", len(party)),
		zap.Int("enemies", len(s.enemies)),
		zap.String("balance", balance.Adjustment.String()),
	)
	return s, nil
}

// Get returns the running session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Active returns the ids of running sessions in sorted order.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of running sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) finished(id string) {
	m.engine.EndCombat(id)
	released := m.enemies.Release(id)
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.logger.Debug("session released", zap.String("encounter", id), zap.Int("enemies", released))
}

// lockedSource serialises a Source shared by sessions on different goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src dice.Source
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}
