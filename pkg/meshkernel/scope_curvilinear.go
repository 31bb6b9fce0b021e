package meshkernel

import (
	"math"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// SetCurvilinearGrid replaces the session's curvilinear grid.
func (sc *Scope) SetCurvilinearGrid(g CurvilinearGrid) error {
	return sc.call("curvilinear_set", func(id backend.ContextID) backend.Status {
		return sc.m.engine.SetCurvilinear(id, g.toBackend())
	})
}

// CurvilinearGrid returns a copy of the session's curvilinear grid. Inside
// an algorithm protocol it shows the grid as last executed.
func (sc *Scope) CurvilinearGrid() (CurvilinearGrid, error) {
	var b backend.CurvilinearGrid
	err := sc.exclusive("curvilinear_get", func() error {
		if err := sc.invoke("curvilinear_get_dimensions", func(id backend.ContextID) backend.Status {
			return sc.m.engine.CurvilinearDimensions(id, &b)
		}); err != nil {
			return err
		}
		b.Allocate()
		return sc.invoke("curvilinear_get_data", func(id backend.ContextID) backend.Status {
			return sc.m.engine.CurvilinearData(id, &b)
		})
	})
	if err != nil {
		return CurvilinearGrid{}, err
	}
	return curvilinearFromBackend(b), nil
}

// CurvilinearMakeUniform replaces the grid with NumColumns x NumRows uniform
// cells, giving NumColumns+1 x NumRows+1 nodes. A non-empty polygon removes
// the nodes outside it.
func (sc *Scope) CurvilinearMakeUniform(params MakeGridParameters, polygon GeometryList) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return sc.run(backend.OpCurvilinearMakeUniform, &backend.MakeUniformArgs{
		Parameters: params.toBackend(),
		Polygon:    polygon.toBackend(),
	})
}

// CurvilinearComputeTransfiniteFromSplines builds a grid from four splines
// that cross pairwise, separated by the geometry separator.
func (sc *Scope) CurvilinearComputeTransfiniteFromSplines(splines GeometryList, params CurvilinearParameters) error {
	const op = backend.OpCurvilinearTransfiniteFromSpline
	if n := len(splines.Parts()); n < 4 {
		return validationf(string(op), "need at least four splines, got %d", n)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return sc.run(op, &backend.TransfiniteArgs{Splines: splines.toBackend(), Parameters: params.toBackend()})
}

// CurvilinearComputeOrthogonalFromSplines grows an orthogonal grid from the
// splines.
func (sc *Scope) CurvilinearComputeOrthogonalFromSplines(splines GeometryList, params CurvilinearParameters, splinesParams SplinesToCurvilinearParameters) error {
	const op = backend.OpCurvilinearOrthogonalFromSpline
	if splines.IsEmpty() {
		return validationf(string(op), "no splines")
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if err := splinesParams.Validate(); err != nil {
		return err
	}
	return sc.run(op, &backend.OrthogonalFromSplinesArgs{
		Splines:                        splines.toBackend(),
		Parameters:                     params.toBackend(),
		SplinesToCurvilinearParameters: splinesParams.toBackend(),
	})
}

// CurvilinearConvertToMesh2d appends the grid to the 2d mesh and clears the
// curvilinear grid.
func (sc *Scope) CurvilinearConvertToMesh2d() error {
	return sc.run(backend.OpCurvilinearConvertToMesh2d, nil)
}

// CurvilinearRefine splits every cell between the grid nodes closest to
// first and second into refinement cells. The two nodes must share a grid
// line.
func (sc *Scope) CurvilinearRefine(first, second Point, refinement int) error {
	if refinement < 1 || !fitsInt32(refinement) {
		return validationf(string(backend.OpCurvilinearRefine), "refinement %d must be in [1, %d]", refinement, math.MaxInt32)
	}
	return sc.run(backend.OpCurvilinearRefine, &backend.RefineArgs{
		First:      first.toBackend(),
		Second:     second.toBackend(),
		Refinement: int32(refinement),
	})
}

// CurvilinearDerefine merges the cells between the grid nodes closest to
// first and second.
func (sc *Scope) CurvilinearDerefine(first, second Point) error {
	return sc.run(backend.OpCurvilinearDerefine, segment(first, second))
}

// CurvilinearInsertFace extrudes a cell on the boundary edge closest to p.
// The grid grows when needed; new positions are padded with MissingValue.
func (sc *Scope) CurvilinearInsertFace(p Point) error {
	return sc.run(backend.OpCurvilinearInsertFace, &backend.PointArgs{Point: p.toBackend()})
}

// CurvilinearDeleteNode marks the node closest to p as missing. Dimensions
// and the positions of all other nodes stay the same.
func (sc *Scope) CurvilinearDeleteNode(p Point) error {
	return sc.run(backend.OpCurvilinearDeleteNode, &backend.PointArgs{Point: p.toBackend()})
}

// CurvilinearMoveNode moves the node closest to from onto to.
func (sc *Scope) CurvilinearMoveNode(from, to Point) error {
	return sc.run(backend.OpCurvilinearMoveNode, segment(from, to))
}

// CurvilinearDeleteInterior deletes the nodes strictly inside the block
// spanned by the nodes closest to the two corners.
func (sc *Scope) CurvilinearDeleteInterior(lowerLeft, upperRight Point) error {
	return sc.run(backend.OpCurvilinearDeleteInterior, segment(lowerLeft, upperRight))
}

// CurvilinearDeleteExterior deletes the nodes outside the block.
func (sc *Scope) CurvilinearDeleteExterior(lowerLeft, upperRight Point) error {
	return sc.run(backend.OpCurvilinearDeleteExterior, segment(lowerLeft, upperRight))
}

func segment(first, second Point) *backend.SegmentArgs {
	return &backend.SegmentArgs{First: first.toBackend(), Second: second.toBackend()}
}
