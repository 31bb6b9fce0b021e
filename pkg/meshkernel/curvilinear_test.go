package meshkernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
)

func TestMakeUniformNodeCounts(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)

	for _, tc := range []struct{ cols, rows int }{{3, 3}, {1, 4}, {6, 2}} {
		makeUniform(t, s, tc.cols, tc.rows, 1, 1)
		g := readGrid(t, s)
		assert.Equal(t, tc.cols+1, g.NumM(), "%d x %d", tc.cols, tc.rows)
		assert.Equal(t, tc.rows+1, g.NumN(), "%d x %d", tc.cols, tc.rows)
		assert.Len(t, g.NodeX(), g.NumM()*g.NumN())
	}
}

func TestMakeUniformEmptyPolygon(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 3, 3, 1, 1)

	g := readGrid(t, s)
	assert.Equal(t, 4, g.NumM())
	assert.Equal(t, 4, g.NumN())
	assert.Equal(t, pt(3, 3), node(t, g, 3, 3))
}

func TestMakeUniformInsidePolygon(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	triangle, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0), pt(4, 0), pt(0, 4), pt(0, 0)}, nil)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		return sc.CurvilinearMakeUniform(uniformGrid(0, 0, 1, 1), triangle)
	})
	g := readGrid(t, s)
	assert.Equal(t, 5, g.NumM())
	assert.Equal(t, 5, g.NumN())
	assert.Equal(t, pt(0, 4), node(t, g, 0, 4))
	_, ok := g.Node(4, 4)
	assert.False(t, ok)
}

func TestMakeUniformRejectsBadParameters(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	before := e.Calls()

	err := s.With(t.Context(), func(sc *meshkernel.Scope) error {
		return sc.CurvilinearMakeUniform(uniformGrid(3, 3, 0, 1), meshkernel.GeometryList{})
	})
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	assert.Equal(t, before, e.Calls(), "invalid parameters must not reach the engine")
}

func TestInsertFaceGrowsGrid(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 4, 4, 10, 20)

	with(t, s, func(sc *meshkernel.Scope) error {
		if err := sc.CurvilinearInsertFace(pt(-10, 5)); err != nil {
			return err
		}
		return sc.CurvilinearInsertFace(pt(-5, 10))
	})

	g := readGrid(t, s)
	assert.Equal(t, 7, g.NumM())
	assert.Equal(t, 5, g.NumN())
	assert.Equal(t, pt(-20, 0), node(t, g, 0, 0))
	assert.Equal(t, pt(-10, 0), node(t, g, 1, 0))
	assert.Equal(t, pt(-20, 20), node(t, g, 0, 1))
	_, ok := g.Node(0, 2)
	assert.False(t, ok, "padding outside the inserted faces is missing")
}

func TestDeleteNodeKeepsDimensions(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 4, 4, 10, 10)

	with(t, s, func(sc *meshkernel.Scope) error { return sc.CurvilinearDeleteNode(pt(11, 9)) })
	g := readGrid(t, s)
	assert.Equal(t, 5, g.NumM())
	assert.Equal(t, 5, g.NumN())

	i := 1*g.NumM() + 1
	assert.Equal(t, meshkernel.MissingValue, g.NodeX()[i])
	assert.Equal(t, meshkernel.MissingValue, g.NodeY()[i])
	assert.Equal(t, pt(20, 10), node(t, g, 2, 1))
	assert.Equal(t, pt(0, 10), node(t, g, 0, 1))
}

func TestMoveAndDeleteBlocks(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 4, 4, 10, 10)

	with(t, s, func(sc *meshkernel.Scope) error {
		if err := sc.CurvilinearMoveNode(pt(21, 21), pt(22, 23)); err != nil {
			return err
		}
		return sc.CurvilinearDeleteInterior(pt(0, 0), pt(40, 40))
	})
	g := readGrid(t, s)
	_, ok := g.Node(2, 2)
	assert.False(t, ok)
	assert.Equal(t, pt(40, 40), node(t, g, 4, 4))

	with(t, s, func(sc *meshkernel.Scope) error { return sc.CurvilinearDeleteExterior(pt(0, 0), pt(40, 30)) })
	g = readGrid(t, s)
	_, ok = g.Node(4, 4)
	assert.False(t, ok)
	assert.Equal(t, pt(0, 0), node(t, g, 0, 0))
}

func TestRefineAndDerefine(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 4, 4, 10, 10)

	with(t, s, func(sc *meshkernel.Scope) error { return sc.CurvilinearRefine(pt(10, 0), pt(20, 0), 2) })
	g := readGrid(t, s)
	assert.Equal(t, 6, g.NumM())
	assert.Equal(t, pt(15, 30), node(t, g, 2, 3))

	with(t, s, func(sc *meshkernel.Scope) error { return sc.CurvilinearDerefine(pt(0, 0), pt(20, 0)) })
	g = readGrid(t, s)
	assert.Equal(t, 4, g.NumM())

	err := s.With(t.Context(), func(sc *meshkernel.Scope) error { return sc.CurvilinearRefine(pt(0, 0), pt(10, 0), 0) })
	assert.ErrorIs(t, err, meshkernel.ErrValidation)

	err = s.With(t.Context(), func(sc *meshkernel.Scope) error { return sc.CurvilinearRefine(pt(0, 0), pt(30, 40), 2) })
	var merr *meshkernel.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, meshkernel.KindValidation, merr.Kind)
	assert.NotEmpty(t, merr.Native, "engine diagnostics are preserved")
}

func TestCurvilinearRoundTripAndConvert(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	in, err := meshkernel.NewCurvilinearGrid(
		[]float64{0, 1, 2, 0, 1, 2},
		[]float64{0, 0, 0, 1, 1, 1},
		3, 2,
	)
	require.NoError(t, err)

	var mesh meshkernel.Mesh2d
	with(t, s, func(sc *meshkernel.Scope) error {
		if err := sc.SetCurvilinearGrid(in); err != nil {
			return err
		}
		out, err := sc.CurvilinearGrid()
		if err != nil {
			return err
		}
		assert.Equal(t, in, out)
		if err := sc.CurvilinearConvertToMesh2d(); err != nil {
			return err
		}
		mesh, err = sc.Mesh2d()
		return err
	})
	assert.Equal(t, 6, mesh.NumNodes())
	assert.Equal(t, 7, mesh.NumEdges())
	assert.Equal(t, 2, mesh.NumFaces())
	assert.True(t, readGrid(t, s).IsEmpty())
}

func TestTransfiniteNeedsFourSplines(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	two, err := meshkernel.NewGeometryList(
		[]float64{0, 1, meshkernel.DefaultGeometrySeparator, 0, 1},
		[]float64{0, 1, meshkernel.DefaultGeometrySeparator, 1, 0},
		nil,
	)
	require.NoError(t, err)

	err = s.With(t.Context(), func(sc *meshkernel.Scope) error {
		return sc.CurvilinearComputeTransfiniteFromSplines(two, meshkernel.DefaultCurvilinearParameters())
	})
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestNewCurvilinearGridValidation(t *testing.T) {
	_, err := meshkernel.NewCurvilinearGrid([]float64{0, 1}, []float64{0}, 2, 1)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	_, err = meshkernel.NewCurvilinearGrid([]float64{0, 1}, []float64{0, 1}, 3, 1)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	_, err = meshkernel.NewCurvilinearGrid(nil, nil, -1, 0)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)

	g, err := meshkernel.NewCurvilinearGrid(nil, nil, 0, 0)
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
	_, ok := g.Node(0, 0)
	assert.False(t, ok)
}
