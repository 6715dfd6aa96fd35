package combat

import "sort"

// Source is the subset of dice.Source used by the combat package.
// Using a local interface avoids a circular import.
type Source interface {
	Intn(n int) int
}

// Entry is one slot of the turn order.
type Entry struct {
	Combatant *Combatant
	// Initiative is BaseInitiative plus a tiebreak fraction in [0, 1).
	Initiative float64
	// rank breaks exact Initiative ties; it is a random permutation index.
	rank int
}

// RollInitiative resolves initiative for every live combatant and returns
// them sorted highest first.
//
// The tiebreak roll is uniform in [0, tiebreak) and is scaled into [0, 1) so
// it only orders combatants whose BaseInitiative is equal. Exact ties after
// the roll fall back to a random permutation, so the result is always a total
// order with no duplicates.
//
// Precondition: src non-nil; tiebreak >= 1.
// Postcondition: dead combatants are excluded; result is sorted descending.
func RollInitiative(combatants []*Combatant, src Source, tiebreak int) []Entry {
	if tiebreak < 1 {
		tiebreak = 1
	}
	seen := make(map[*Combatant]bool, len(combatants))
	var entries []Entry
	for _, c := range combatants {
		if c == nil || !c.IsAlive() || seen[c] {
			continue
		}
		seen[c] = true
		roll := src.Intn(tiebreak)
		entries = append(entries, Entry{
			Combatant:  c,
			Initiative: float64(c.BaseInitiative) + float64(roll)/float64(tiebreak),
		})
	}
	for i, j := range permutation(len(entries), src) {
		entries[i].rank = j
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Initiative != entries[b].Initiative {
			return entries[a].Initiative > entries[b].Initiative
		}
		return entries[a].rank < entries[b].rank
	})
	return entries
}

// permutation returns a Fisher-Yates shuffle of [0, n).
func permutation(n int, src Source) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
