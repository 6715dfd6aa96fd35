// Package skill implements the use-based skill ledger: an exponential
// cumulative-XP leveling curve and diminishing-returns XP awards.
package skill

import "math"

// MaxLevel is the highest attainable skill level.
const MaxLevel = 100

// thresholds[L] is the cumulative XP required to reach level L.
//
// Invariant: thresholds[0] == 0 and thresholds is strictly increasing.
var thresholds = buildThresholds()

func buildThresholds() [MaxLevel + 1]int {
	var t [MaxLevel + 1]int
	for l := 1; l <= MaxLevel; l++ {
		t[l] = t[l-1] + int(math.Floor(100*math.Pow(float64(l), 1.8)))
	}
	return t
}

// Threshold returns the cumulative XP required to reach level.
// Levels outside [0, MaxLevel] are clamped.
func Threshold(level int) int {
	switch {
	case level <= 0:
		return 0
	case level >= MaxLevel:
		return thresholds[MaxLevel]
	default:
		return thresholds[level]
	}
}

// LevelForExperience returns the highest level whose threshold xp meets.
//
// Postcondition: result is in [0, MaxLevel] and non-decreasing in xp.
func LevelForExperience(xp int) int {
	if xp <= 0 {
		return 0
	}
	lo, hi := 0, MaxLevel
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if thresholds[mid] <= xp {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
