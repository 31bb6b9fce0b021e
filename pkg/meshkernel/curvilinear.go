package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// MissingValue marks a deleted curvilinear node and missing interpolation
// results.
const MissingValue = backend.GeometrySeparator

// CurvilinearGrid is a structured grid of NumM x NumN nodes stored with m
// varying fastest: index = n*NumM + m. Deleted nodes hold MissingValue in
// both coordinates, so indices stay stable.
type CurvilinearGrid struct {
	nodeX, nodeY []float64
	numM, numN   int
}

// NewCurvilinearGrid validates and copies a grid.
func NewCurvilinearGrid(nodeX, nodeY []float64, numM, numN int) (CurvilinearGrid, error) {
	const op = "curvilinear grid"
	if numM < 0 || numN < 0 {
		return CurvilinearGrid{}, validationf(op, "negative dimensions %d x %d", numM, numN)
	}
	if !fitsInt32(numM, numN) {
		return CurvilinearGrid{}, validationf(op, "dimensions %d x %d exceed the engine's 32-bit counts", numM, numN)
	}
	if len(nodeX) != len(nodeY) {
		return CurvilinearGrid{}, validationf(op, "node_x has %d entries but node_y has %d", len(nodeX), len(nodeY))
	}
	if len(nodeX) != numM*numN {
		return CurvilinearGrid{}, validationf(op, "%d nodes do not match num_m*num_n = %d*%d", len(nodeX), numM, numN)
	}
	return CurvilinearGrid{
		nodeX: backend.Contiguous(nodeX),
		nodeY: backend.Contiguous(nodeY),
		numM:  numM,
		numN:  numN,
	}, nil
}

func (g CurvilinearGrid) NodeX() []float64 { return backend.Contiguous(g.nodeX) }
func (g CurvilinearGrid) NodeY() []float64 { return backend.Contiguous(g.nodeY) }
func (g CurvilinearGrid) NumM() int        { return g.numM }
func (g CurvilinearGrid) NumN() int        { return g.numN }
func (g CurvilinearGrid) IsEmpty() bool    { return g.numM == 0 || g.numN == 0 }

// Node returns the node at (m, n). ok is false outside the grid and for
// deleted nodes.
func (g CurvilinearGrid) Node(m, n int) (p Point, ok bool) {
	if m < 0 || n < 0 || m >= g.numM || n >= g.numN {
		return Point{}, false
	}
	i := n*g.numM + m
	p = Point{X: g.nodeX[i], Y: g.nodeY[i]}
	return p, !(p.X == MissingValue && p.Y == MissingValue)
}

func (g CurvilinearGrid) toBackend() backend.CurvilinearGrid {
	return backend.CurvilinearGrid{
		NodeX: backend.Contiguous(g.nodeX),
		NodeY: backend.Contiguous(g.nodeY),
		NumM:  int32(g.numM),
		NumN:  int32(g.numN),
	}
}

func curvilinearFromBackend(b backend.CurvilinearGrid) CurvilinearGrid {
	n := int(b.NumM) * int(b.NumN)
	return CurvilinearGrid{
		nodeX: backend.Contiguous(b.NodeX[:n]),
		nodeY: backend.Contiguous(b.NodeY[:n]),
		numM:  int(b.NumM),
		numN:  int(b.NumN),
	}
}
