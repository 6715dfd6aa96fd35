package skill

import (
	"math"
	"sort"
)

// DefaultBaseXP is the base XP of one skill use.
const DefaultBaseXP = 10

// Progress is one skill's progression record.
//
// Invariant: Level == LevelForExperience(XP).
type Progress struct {
	Level    int
	XP       int
	UseCount int
}

// AwardResult reports the outcome of AwardUse.
type AwardResult struct {
	// Success is false when the skill is not present in the ledger.
	Success       bool
	Skill         string
	XPGained      int
	PreviousLevel int
	NewLevel      int
	LeveledUp     bool
}

// Ledger holds every skill a combatant owns.
// It is not safe for concurrent use; the owning encounter serialises access.
type Ledger struct {
	skills map[string]*Progress
}

// NewLedger creates a ledger with each key at level 0 and 0 XP.
func NewLedger(keys ...string) *Ledger {
	l := &Ledger{skills: make(map[string]*Progress, len(keys))}
	for _, k := range keys {
		l.skills[k] = &Progress{}
	}
	return l
}

// Has reports whether key is tracked.
func (l *Ledger) Has(key string) bool {
	if l == nil {
		return false
	}
	_, ok := l.skills[key]
	return ok
}

// Level returns the level of key, or 0 if absent.
func (l *Ledger) Level(key string) int {
	if l == nil {
		return 0
	}
	if p, ok := l.skills[key]; ok {
		return p.Level
	}
	return 0
}

// Get returns a copy of the progress record for key.
func (l *Ledger) Get(key string) (Progress, bool) {
	if l == nil {
		return Progress{}, false
	}
	p, ok := l.skills[key]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Keys returns the tracked skill keys in sorted order.
func (l *Ledger) Keys() []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.skills))
	for k := range l.skills {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent deep copy.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}
	out := &Ledger{skills: make(map[string]*Progress, len(l.skills))}
	for k, p := range l.skills {
		cp := *p
		out.skills[k] = &cp
	}
	return out
}

// AwardUse grants XP for one use of key at difficulty.
//
// Postcondition: when key is absent or l is nil the result has
// Success == false and the ledger is unchanged; otherwise XP and UseCount grow, XPGained >= 1, and
// Level == LevelForExperience(XP).
func (l *Ledger) AwardUse(key string, difficulty Difficulty, baseXP int) AwardResult {
	if l == nil {
		return AwardResult{Skill: key}
	}
	p, ok := l.skills[key]
	if !ok {
		return AwardResult{Skill: key}
	}
	if baseXP <= 0 {
		baseXP = DefaultBaseXP
	}

	levelDifference := difficulty.TargetLevel() - p.Level
	gain := int(math.Floor(float64(baseXP) * difficulty.Multiplier() * diminishingFactor(levelDifference)))
	if gain < 1 {
		gain = 1
	}

	previous := p.Level
	p.XP += gain
	p.UseCount++
	p.Level = LevelForExperience(p.XP)

	return AwardResult{
		Success:       true,
		Skill:         key,
		XPGained:      gain,
		PreviousLevel: previous,
		NewLevel:      p.Level,
		LeveledUp:     p.Level > previous,
	}
}

// Advance sets key to exactly level, rewriting XP to that level's threshold.
// Missing keys are created. Intended for debug tooling and character setup.
//
// Precondition: l is non-nil.
// Postcondition: Level(key) == clamp(level, 0, MaxLevel) and XP == Threshold(level).
func (l *Ledger) Advance(key string, level int) {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	p, ok := l.skills[key]
	if !ok {
		p = &Progress{}
		l.skills[key] = p
	}
	p.XP = Threshold(level)
	p.Level = LevelForExperience(p.XP)
}
