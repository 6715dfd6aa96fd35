// Package dice provides the randomness abstraction, dice expressions, and
// range helpers used by the combat core.
package dice

import "fmt"

// Source is the randomness provider for every roll in the combat core.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// fractionSteps is the resolution of Uniform.
const fractionSteps = 1_000_000

// RollResult holds the audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns an audit string such as "1d6+1 → [4] +1 = 5".
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Between returns a uniform integer in the closed range [lo, hi].
//
// Precondition: src must be non-nil.
// Postcondition: lo <= result <= hi; when hi < lo, lo is returned.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Uniform returns a float in the half-open range [lo, hi) with a resolution
// of one millionth of the span.
//
// Postcondition: lo <= result < hi when hi > lo; lo otherwise.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*float64(src.Intn(fractionSteps))/fractionSteps
}
