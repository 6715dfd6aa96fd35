// Package event defines the discrete records the combat core emits and the
// narrow sink capability consumers implement to receive them.
package event

import (
	"sync"

	"go.uber.org/zap"
)

// Type identifies the kind of an Event.
type Type int

const (
	TypeUnknown Type = iota
	TypeCombatStarted
	TypeCombatEnded
	TypeTurnStarted
	TypeTurnSkipped
	TypeAbilityUsed
	TypeAbilityFailed
	TypeSkillGained
	TypeAbilityUnlocked
	TypeEnemySpawned
	TypeEnemyMoved
	TypeAttackResolved
)

// String returns the wire name of the event type.
func (t Type) String() string {
	switch t {
	case TypeCombatStarted:
		return "combat_started"
	case TypeCombatEnded:
		return "combat_ended"
	case TypeTurnStarted:
		return "turn_started"
	case TypeTurnSkipped:
		return "turn_skipped"
	case TypeAbilityUsed:
		return "ability_used"
	case TypeAbilityFailed:
		return "ability_failed"
	case TypeSkillGained:
		return "skill_gained"
	case TypeAbilityUnlocked:
		return "ability_unlocked"
	case TypeEnemySpawned:
		return "enemy_spawned"
	case TypeEnemyMoved:
		return "enemy_moved"
	case TypeAttackResolved:
		return "attack_resolved"
	default:
		return "unknown"
	}
}

// Event is one emitted record. Fields not meaningful for a Type are zero.
type Event struct {
	Type      Type
	Encounter string
	Round     int
	ActorID   string
	TargetID  string
	// Key is the ability or skill key the event concerns.
	Key string
	// Amount is damage dealt, XP gained, or the new level depending on Type.
	Amount int
	// Hit is set on TypeAttackResolved.
	Hit bool
	// Reason carries a failure reason code or the combat outcome.
	Reason string
	X, Y   int
}

// Sink receives events. Implementations must not retain the Event after
// returning unless they copy it.
type Sink interface {
	Emit(e Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}

// Recorder is a Sink that keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of every recorded event.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t in emission order.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// LogSink writes each event to a zap logger at info level.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a Sink that logs to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Emit logs e with typed fields; zero-valued fields are omitted.
func (s *LogSink) Emit(e Event) {
	fields := []zap.Field{zap.String("encounter", e.Encounter), zap.Int("round", e.Round)}
	if e.ActorID != "" {
		fields = append(fields, zap.String("actor", e.ActorID))
	}
	if e.TargetID != "" {
		fields = append(fields, zap.String("target", e.TargetID))
	}
	if e.Key != "" {
		fields = append(fields, zap.String("key", e.Key))
	}
	if e.Amount != 0 {
		fields = append(fields, zap.Int("amount", e.Amount))
	}
	if e.Type == TypeAttackResolved {
		fields = append(fields, zap.Bool("hit", e.Hit))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	if e.Type == TypeEnemyMoved || e.Type == TypeEnemySpawned {
		fields = append(fields, zap.Int("x", e.X), zap.Int("y", e.Y))
	}
	s.logger.Info(e.Type.String(), fields...)
}

// Fanout delivers each event to every sink in order.
type Fanout []Sink

// Emit forwards e to each sink.
func (f Fanout) Emit(e Event) {
	for _, s := range f {
		s.Emit(e)
	}
}
