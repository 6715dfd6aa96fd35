package testutil

import "sync"

// Cell is a grid coordinate.
type Cell struct{ X, Y int }

// Grid is an in-memory movement validator for tests. Cells are walkable
// inside [0, Width) x [0, Height) unless blocked.
type Grid struct {
	mu      sync.Mutex
	Width   int
	Height  int
	blocked map[Cell]bool
	queries []Cell
}

// NewGrid returns an open grid of the given size.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, blocked: make(map[Cell]bool)}
}

// Block marks cells as unwalkable.
func (g *Grid) Block(cells ...Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range cells {
		g.blocked[c] = true
	}
}

// CanMoveTo reports whether (x, y) is in bounds and not blocked. Every query
// is recorded.
func (g *Grid) CanMoveTo(_ string, x, y int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, Cell{x, y})
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	return !g.blocked[Cell{x, y}]
}

// Queries returns the cells asked about so far, in order.
func (g *Grid) Queries() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Cell(nil), g.queries...)
}
