package main

import (
	"context"

	"github.com/cory-johannsen/gauntlet/internal/game/ability"
	"github.com/cory-johannsen/gauntlet/internal/game/ai"
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/session"
)

// entityKindParty is the entity kind reported when a party member moves.
const entityKindParty = "party"

// play drives s until it ends, abandoning it after maxRounds. It stops
// between turns once ctx is done.
func play(ctx context.Context, s *session.Session, maxRounds int) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		turn, err := s.BeginTurn(ctx)
		if err != nil {
			return err
		}
		if turn.Round > maxRounds {
			s.Abandon(ctx)
			return nil
		}
		if turn.Actor.IsPlayer() {
			if err := partyTurn(ctx, s, turn.Actor); err != nil {
				return err
			}
		} else if _, err := s.RunEnemyTurn(ctx); err != nil {
			return err
		}
		if _, err := s.EndTurn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// partyTurn is the simulator's stand-in for a player: it closes on the
// nearest enemy and spends AP on the first usable damaging ability, healing
// first when below a third of its health.
func partyTurn(ctx context.Context, s *session.Session, actor *combat.Combatant) error {
	resolver := s.Resolver()
	if actor.HealthFraction() < 1.0/3 {
		if key := usable(resolver, actor, nil, ability.EffectHeal); key != "" {
			if _, err := s.UseAbility(ctx, key, ""); err != nil {
				return err
			}
		}
	}

	moved := false
	for i := 0; i <= actor.MaxAP && actor.AP > 0; i++ {
		target := nearestEnemy(s, actor)
		if target == nil {
			return nil
		}
		key := usable(resolver, actor, &target.Pos, ability.EffectDamage)
		if key == "" {
			if moved || !step(s, actor, target) {
				return nil
			}
			moved = true
			continue
		}
		res, err := s.UseAbility(ctx, key, target.ID)
		if err != nil {
			return err
		}
		if !res.Outcome.Success {
			return nil
		}
	}
	return nil
}

func usable(r *ability.Resolver, actor *combat.Combatant, target *combat.Position, kind ability.EffectKind) string {
	for _, key := range r.Catalog().KnownBy(actor) {
		def, _ := r.Catalog().Get(key)
		if def.HasEffect(kind) && r.Validate(actor, key, target) == ability.ReasonNone {
			return key
		}
	}
	return ""
}

func nearestEnemy(s *session.Session, actor *combat.Combatant) *combat.Combatant {
	var best *combat.Combatant
	for _, e := range s.Enemies() {
		if !e.IsAlive() {
			continue
		}
		if best == nil || actor.Pos.Distance(e.Pos) < actor.Pos.Distance(best.Pos) {
			best = e
		}
	}
	return best
}

func step(s *session.Session, actor, target *combat.Combatant) bool {
	for _, p := range ai.StepCandidates(actor.Pos, target.Pos) {
		if s.Arena().CanMoveTo(entityKindParty, p.X, p.Y) {
			actor.Pos = p
			return true
		}
	}
	return false
}

// countEvents tallies events by type until the stream closes or ctx is
// done, then counts whatever is still buffered.
func countEvents(ctx context.Context, stream *session.Stream, counts map[event.Type]int) error {
	for {
		select {
		case e, ok := <-stream.Events():
			if !ok {
				return nil
			}
			counts[e.Type]++
		case <-ctx.Done():
			drain(stream, counts)
			return nil
		}
	}
}

func drain(stream *session.Stream, counts map[event.Type]int) {
	for {
		select {
		case e, ok := <-stream.Events():
			if !ok {
				return
			}
			counts[e.Type]++
		default:
			return
		}
	}
}
