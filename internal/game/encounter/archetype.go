// Package encounter expands one triggering enemy into a balanced combat group.
package encounter

import "strings"

// Archetype is a coarse enemy classification that selects a group-size formula.
type Archetype string

const (
	ArchetypeGoblin   Archetype = "goblin"
	ArchetypeOrc      Archetype = "orc"
	ArchetypeSkeleton Archetype = "skeleton"
	ArchetypeRat      Archetype = "rat"
	ArchetypeSpider   Archetype = "spider"
	ArchetypeWolf     Archetype = "wolf"
	ArchetypeSlime    Archetype = "slime"
	ArchetypeBandit   Archetype = "bandit"
	ArchetypeTroll    Archetype = "troll"
	ArchetypeDragon   Archetype = "dragon"
	ArchetypeLich     Archetype = "lich"
	ArchetypeDefault  Archetype = "default"
)

// archetypeKeywords is checked in order; the first substring match wins.
var archetypeKeywords = []Archetype{
	ArchetypeGoblin,
	ArchetypeOrc,
	ArchetypeSkeleton,
	ArchetypeRat,
	ArchetypeSpider,
	ArchetypeWolf,
	ArchetypeSlime,
	ArchetypeBandit,
	ArchetypeTroll,
	ArchetypeDragon,
	ArchetypeLich,
}

// BaseType classifies name by case-insensitive substring match against the
// archetype keywords, returning ArchetypeDefault when none match.
func BaseType(name string) Archetype {
	lower := strings.ToLower(name)
	for _, a := range archetypeKeywords {
		if strings.Contains(lower, string(a)) {
			return a
		}
	}
	return ArchetypeDefault
}

// IsSolo reports whether a never multiplies.
func (a Archetype) IsSolo() bool {
	return a == ArchetypeDragon || a == ArchetypeLich
}

// CountForArchetype returns the group size for a on floor.
//
// Postcondition: result >= 1; solo archetypes always return 1.
func CountForArchetype(a Archetype, floor int) int {
	if floor < 1 {
		floor = 1
	}
	var n int
	switch a {
	case ArchetypeGoblin:
		n = min(2+floor, 8)
	case ArchetypeOrc:
		n = min(1+floor/2, 5)
	case ArchetypeSkeleton:
		n = min(2+floor/2, 6)
	case ArchetypeRat:
		n = min(3+floor, 10)
	case ArchetypeSpider:
		n = min(2+floor/3, 6)
	case ArchetypeWolf:
		n = min(2+floor/2, 6)
	case ArchetypeSlime:
		n = min(1+floor/2, 4)
	case ArchetypeBandit:
		n = min(2+floor/3, 5)
	case ArchetypeTroll:
		n = min(1+floor/4, 3)
	case ArchetypeDragon, ArchetypeLich:
		n = 1
	default:
		n = min(1+floor/3, 4)
	}
	return max(1, n)
}
