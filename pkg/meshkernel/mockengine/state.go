package mockengine

import (
	"sync/atomic"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// state is everything one context owns.
type state struct {
	busy       atomic.Bool
	projection int32
	mesh1d     mesh1d
	mesh2d     *mesh2d
	grid       *grid
	contacts   contacts
	alg        *algorithm
}

func newState(projection int32) *state {
	return &state{
		projection: projection,
		mesh2d:     newMesh2d(nil, nil, nil),
		grid:       newGrid(0, 0, nil, nil),
	}
}

type mesh1d struct {
	x, y  []float64
	edges [][2]int32
}

func (m *mesh1d) node(i int32) point {
	return point{X: m.x[i], Y: m.y[i]}
}

type contacts struct {
	mesh1d []int32
	mesh2d []int32
}

// algorithm is the engine-side state of an initialized curvilinear protocol.
type algorithm struct {
	kind       backend.Algorithm
	ortho      backend.OrthogonalizationParameters
	factor     float64
	iterations int32

	blocks  []nodeBlock
	frozen  []gridLine
	line    *gridLine
	moves   []nodeMove
	origin  *grid
	applied bool
}

// gridNode addresses a curvilinear node.
type gridNode struct{ m, n int }

// nodeBlock is an inclusive index rectangle.
type nodeBlock struct{ lo, hi gridNode }

func (b nodeBlock) contains(g gridNode) bool {
	return g.m >= b.lo.m && g.m <= b.hi.m && g.n >= b.lo.n && g.n <= b.hi.n
}

func makeBlock(a, b gridNode) nodeBlock {
	return nodeBlock{
		lo: gridNode{m: min(a.m, b.m), n: min(a.n, b.n)},
		hi: gridNode{m: max(a.m, b.m), n: max(a.n, b.n)},
	}
}

// gridLine is a segment of a grid line between two nodes sharing m or n.
type gridLine struct{ from, to gridNode }

func (l gridLine) alongM() bool { return l.from.n == l.to.n }

func (l gridLine) contains(g gridNode) bool {
	return makeBlock(l.from, l.to).contains(g)
}

type nodeMove struct {
	node gridNode
	to   point
}
