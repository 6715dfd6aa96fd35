package session

import (
	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/npc"
)

// Summary is the result of a finished encounter.
type Summary struct {
	Encounter string
	Outcome   combat.Outcome
	Floor     int
	Rounds    int
	// Survivors and Fallen hold party combatant ids in roster order.
	Survivors       []string
	Fallen          []string
	EnemiesDefeated int
	// XPEarned sums the XP of every defeated enemy.
	XPEarned int
	// Loot is rolled only on victory.
	Loot npc.LootResult
}

// MetaProgress holds the run counters an external save layer persists.
type MetaProgress struct {
	RunsCompleted  int
	DeepestFloor   int
	CharactersLost int
}

// Progress returns the meta-progression delta of s. A defeat ends the run.
func (s Summary) Progress() MetaProgress {
	p := MetaProgress{DeepestFloor: s.Floor, CharactersLost: len(s.Fallen)}
	if s.Outcome == combat.OutcomeDefeat {
		p.RunsCompleted = 1
	}
	return p
}

// Record folds the delta of s into m.
func (m *MetaProgress) Record(s Summary) {
	d := s.Progress()
	m.RunsCompleted += d.RunsCompleted
	m.DeepestFloor = max(m.DeepestFloor, d.DeepestFloor)
	m.CharactersLost += d.CharactersLost
}

func (s *Session) summarize(outcome combat.Outcome) Summary {
	sum := Summary{
		Encounter: s.id,
		Outcome:   outcome,
		Floor:     s.floor,
		Rounds:    s.rounds,
		Survivors: []string{},
		Fallen:    []string{},
	}
	for _, c := range s.party {
		if c.IsAlive() {
			sum.Survivors = append(sum.Survivors, c.ID)
		} else {
			sum.Fallen = append(sum.Fallen, c.ID)
		}
	}
	for _, c := range s.enemies {
		if c.IsAlive() {
			continue
		}
		sum.EnemiesDefeated++
		inst := s.instances[c.ID]
		inst.Health = 0
		sum.XPEarned += inst.XP
		if outcome == combat.OutcomeVictory {
			sum.Loot.Merge(inst.RollLoot(s.src))
		}
	}
	return sum
}
