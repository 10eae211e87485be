// Package pathfinding plans player walks across the grid.
package pathfinding

import (
	"container/heap"

	"github.com/pthm-cable/sprout/components"
)

// Grid is the view of the world the planner needs.
type Grid interface {
	Width() int
	Height() int
	Walkable(pos components.Vec) bool
}

// Planner runs A* searches over walkable tiles. Every move costs one turn
// whether it is cardinal or diagonal. A Planner reuses its buffers and is
// not safe for concurrent use.
type Planner struct {
	openHeap  *nodeHeap
	closedSet map[components.Vec]struct{}
	cameFrom  map[components.Vec]components.Vec
	gScore    map[components.Vec]int
}

type node struct {
	pos   components.Vec
	f     int
	g     int
	index int
}

// nodeHeap implements heap.Interface for the open set. Ties on f prefer the
// deeper node, which keeps straight runs straight.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g > h[j].g
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	nd.index = -1
	*h = old[0 : n-1]
	return nd
}

// NewPlanner creates a planner with empty buffers.
func NewPlanner() *Planner {
	return &Planner{
		openHeap:  &nodeHeap{},
		closedSet: make(map[components.Vec]struct{}, 256),
		cameFrom:  make(map[components.Vec]components.Vec, 256),
		gScore:    make(map[components.Vec]int, 256),
	}
}

// FindPath returns the tiles walked from start to goal, both included.
// The start tile itself need not be walkable; the goal must be.
func (p *Planner) FindPath(g Grid, start, goal components.Vec) ([]components.Vec, bool) {
	if !g.Walkable(goal) {
		return nil, false
	}
	return p.search(g, start, func(v components.Vec) int { return v.Chebyshev(goal) })
}

// FindPathNear returns a path to any walkable tile within reach of target,
// the tile itself included. Used to get next to a build site.
func (p *Planner) FindPathNear(g Grid, start, target components.Vec) ([]components.Vec, bool) {
	return p.search(g, start, func(v components.Vec) int {
		if d := v.Chebyshev(target); d > 1 {
			return d - 1
		}
		return 0
	})
}

// search expands from start until h reaches zero on an acceptable tile.
func (p *Planner) search(g Grid, start components.Vec, h func(components.Vec) int) ([]components.Vec, bool) {
	if h(start) == 0 {
		return []components.Vec{start}, true
	}

	*p.openHeap = (*p.openHeap)[:0]
	clear(p.closedSet)
	clear(p.cameFrom)
	clear(p.gScore)

	p.gScore[start] = 0
	heap.Push(p.openHeap, &node{pos: start, f: h(start)})

	maxExpansions := g.Width() * g.Height()
	for p.openHeap.Len() > 0 && len(p.closedSet) < maxExpansions {
		current := heap.Pop(p.openHeap).(*node)
		if _, done := p.closedSet[current.pos]; done {
			continue
		}
		if h(current.pos) == 0 {
			return p.reconstruct(start, current.pos), true
		}
		p.closedSet[current.pos] = struct{}{}

		for _, d := range components.Directions {
			next := current.pos.Add(d)
			if !g.Walkable(next) {
				continue
			}
			if _, done := p.closedSet[next]; done {
				continue
			}
			tentative := current.g + 1
			if existing, ok := p.gScore[next]; ok && tentative >= existing {
				continue
			}
			p.cameFrom[next] = current.pos
			p.gScore[next] = tentative
			heap.Push(p.openHeap, &node{pos: next, g: tentative, f: tentative + h(next)})
		}
	}
	return nil, false
}

func (p *Planner) reconstruct(start, goal components.Vec) []components.Vec {
	path := []components.Vec{goal}
	for current := goal; current != start; {
		current = p.cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindPath is a one-off search with a fresh planner.
func FindPath(g Grid, start, goal components.Vec) ([]components.Vec, bool) {
	return NewPlanner().FindPath(g, start, goal)
}
