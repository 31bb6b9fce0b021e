package meshkernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
)

func TestMeshConnectivityValidation(t *testing.T) {
	tests := []struct {
		name  string
		x, y  []float64
		edges []int32
	}{
		{"unequal coordinates", []float64{0, 1}, []float64{0}, nil},
		{"odd edge list", []float64{0, 1}, []float64{0, 1}, []int32{0, 1, 1}},
		{"index past the end", []float64{0, 1}, []float64{0, 1}, []int32{0, 2}},
		{"negative index", []float64{0, 1}, []float64{0, 1}, []int32{-1, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := meshkernel.NewMesh1d(tc.x, tc.y, tc.edges)
			assert.ErrorIs(t, err, meshkernel.ErrValidation)
			_, err = meshkernel.NewMesh2d(tc.x, tc.y, tc.edges)
			assert.ErrorIs(t, err, meshkernel.ErrValidation)
		})
	}
}

func TestMeshCopiesInput(t *testing.T) {
	x := []float64{0, 1}
	m, err := meshkernel.NewMesh1d(x, []float64{0, 0}, []int32{0, 1})
	require.NoError(t, err)
	x[0] = 42
	assert.Equal(t, pt(0, 0), m.Node(0))

	got := m.NodeX()
	got[1] = 42
	assert.Equal(t, pt(1, 0), m.Node(1))
}

func TestMesh1dRoundTrip(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	in, err := meshkernel.NewMesh1d([]float64{0, 1, 2}, []float64{-1, -1, -1}, []int32{0, 1, 1, 2})
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		if err := sc.SetMesh1d(in); err != nil {
			return err
		}
		out, err := sc.Mesh1d()
		if err != nil {
			return err
		}
		assert.Equal(t, in.NodeX(), out.NodeX())
		assert.Equal(t, in.NodeY(), out.NodeY())
		assert.Equal(t, in.EdgeNodes(), out.EdgeNodes())
		assert.Equal(t, 2, out.NumEdges())
		assert.Equal(t, [2]int32{1, 2}, out.Edge(1))
		return nil
	})
}

func TestRectilinearMesh2d(t *testing.T) {
	mesh, err := meshkernel.NewRectilinearMesh2d(3, 3, pt(10, 20), 2)
	require.NoError(t, err)
	assert.Equal(t, 9, mesh.NumNodes())
	assert.Equal(t, 12, mesh.NumEdges())
	assert.Equal(t, pt(14, 20), mesh.Node(2))
	assert.Equal(t, pt(10, 22), mesh.Node(3))

	m, _ := newManager(t)
	s := newSession(t, m)
	var out meshkernel.Mesh2d
	with(t, s, func(sc *meshkernel.Scope) error {
		if err := sc.SetMesh2d(mesh); err != nil {
			return err
		}
		out, err = sc.Mesh2d()
		return err
	})
	assert.Equal(t, mesh.NodeX(), out.NodeX())
	assert.Equal(t, mesh.EdgeNodes(), out.EdgeNodes())
	require.Equal(t, 4, out.NumFaces())
	assert.Len(t, out.Face(3), 4)
	assert.Len(t, out.EdgeX(), 12)
	assert.InDelta(t, 11, out.FaceX()[0], 1e-12)
	assert.InDelta(t, 21, out.FaceY()[0], 1e-12)

	_, err = meshkernel.NewRectilinearMesh2d(0, 3, pt(0, 0), 1)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	_, err = meshkernel.NewRectilinearMesh2d(3, 3, pt(0, 0), 0)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestMesh2dEditing(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	mesh, err := meshkernel.NewRectilinearMesh2d(3, 3, pt(0, 0), 1)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		require.NoError(t, sc.SetMesh2d(mesh))

		n, err := sc.Mesh2dInsertNode(pt(5, 5))
		require.NoError(t, err)
		assert.Equal(t, 9, n)
		e, err := sc.Mesh2dInsertEdge(8, n)
		require.NoError(t, err)
		assert.Equal(t, 12, e)

		hanging, err := sc.Mesh2dCountHangingEdges()
		require.NoError(t, err)
		assert.Equal(t, 1, hanging)
		require.NoError(t, sc.Mesh2dDeleteHangingEdges())

		idx, err := sc.Mesh2dNodeIndex(pt(1.1, 0.9), 0.5)
		require.NoError(t, err)
		assert.Equal(t, 4, idx)
		_, err = sc.Mesh2dNodeIndex(pt(10, 10), 0.5)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		_, err = sc.Mesh2dNodeIndex(pt(1, 1), 0)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)

		require.NoError(t, sc.Mesh2dMoveNode(pt(1.2, 1.1), 4))
		assert.ErrorIs(t, sc.Mesh2dMoveNode(pt(0, 0), 42), meshkernel.ErrValidation)
		return sc.Mesh2dDeleteNode(4)
	})

	with(t, s, func(sc *meshkernel.Scope) error {
		out, err := sc.Mesh2d()
		require.NoError(t, err)
		assert.Equal(t, 8, out.NumNodes())
		assert.Equal(t, 8, out.NumEdges())
		assert.Zero(t, out.NumFaces())

		e, err := sc.Mesh2dFindEdge(pt(0.5, -0.1))
		require.NoError(t, err)
		require.NoError(t, sc.Mesh2dDeleteEdge(pt(0.5, -0.1)))
		out, err = sc.Mesh2d()
		require.NoError(t, err)
		assert.Equal(t, 7, out.NumEdges())
		assert.Less(t, e, 8)
		return nil
	})
}

func TestMesh2dDeleteInsidePolygon(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	mesh, err := meshkernel.NewRectilinearMesh2d(4, 4, pt(0, 0), 1)
	require.NoError(t, err)
	polygon, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(-0.5, -0.5), pt(1.2, -0.5), pt(1.2, 1.2), pt(-0.5, 1.2), pt(-0.5, -0.5)}, nil)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		require.NoError(t, sc.SetMesh2d(mesh))
		assert.ErrorIs(t, sc.Mesh2dDelete(polygon, meshkernel.DeleteMeshOption(7), false), meshkernel.ErrValidation)
		require.NoError(t, sc.Mesh2dDelete(polygon, meshkernel.DeleteAllNodes, false))
		out, err := sc.Mesh2d()
		require.NoError(t, err)
		assert.Equal(t, 12, out.NumNodes())
		assert.Equal(t, 5, out.NumFaces())
		return nil
	})
}

func TestMesh2dFromSamplesAndPolygon(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	samples, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0), pt(1, 0), pt(1.1, 1), pt(0, 1)}, []float64{0, 0, 0, 0})
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		assert.ErrorIs(t, sc.Mesh2dMakeFromSamples(meshkernel.GeometryList{}), meshkernel.ErrValidation)
		assert.ErrorIs(t, sc.Mesh2dMakeFromPolygon(meshkernel.GeometryList{}), meshkernel.ErrValidation)
		require.NoError(t, sc.Mesh2dMakeFromSamples(samples))
		out, err := sc.Mesh2d()
		require.NoError(t, err)
		assert.Equal(t, 4, out.NumNodes())
		assert.Equal(t, 5, out.NumEdges())
		assert.Equal(t, 2, out.NumFaces())
		return nil
	})
}

func TestRefinePolygonReleasesResult(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	square, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0), pt(3, 0), pt(3, 3), pt(0, 3), pt(0, 0)}, nil)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		refined, err := sc.RefinePolygon(square, 0, 2, 1)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 1, 2, 3, 3, 3, 3, 0, 0}, refined.X(), 1e-12)
		assert.Equal(t, 9, refined.Len())

		_, err = sc.RefinePolygon(square, 0, 9, 1)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		_, err = sc.RefinePolygon(square, 0, 2, -1)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		return nil
	})
	assert.Zero(t, e.Outstanding(), "engine result buffers must be released")
}

func TestPointsInPolygonKeepsSeparators(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	polygon, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2), pt(0, 0)}, nil)
	require.NoError(t, err)
	sep := meshkernel.DefaultGeometrySeparator
	points, err := meshkernel.NewGeometryList([]float64{1, 3, sep, 0.5}, []float64{1, 3, sep, 1.5}, nil)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		in, err := sc.PointsInPolygon(polygon, points)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0, sep, 1}, in.Values())
		assert.Len(t, in.Parts(), 2)
		return nil
	})
	assert.Zero(t, e.Outstanding())
}

func TestMesh2dOrthogonality(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	mesh, err := meshkernel.NewRectilinearMesh2d(3, 3, pt(0, 0), 1)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		require.NoError(t, sc.SetMesh2d(mesh))
		o, err := sc.Mesh2dOrthogonality()
		require.NoError(t, err)
		assert.Equal(t, []float64{-999, 0, -999, -999, 0, -999, -999, -999, 0, 0, -999, -999}, o.Values())
		return nil
	})
	assert.Zero(t, e.Outstanding())
}

func TestInterpolationArgumentChecks(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	samples, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0)}, []float64{1})
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dTriangulationInterpolation(samples, meshkernel.Mesh2dLocation(9))
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		_, err = sc.Mesh2dAveragingInterpolation(samples, meshkernel.LocationNodes, meshkernel.AveragingMethod(42), 1, 1)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		_, err = sc.Mesh2dAveragingInterpolation(samples, meshkernel.LocationNodes, meshkernel.AveragingSimple, 0, 1)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		_, err = sc.Mesh2dAveragingInterpolation(samples, meshkernel.LocationNodes, meshkernel.AveragingSimple, 1, -1)
		assert.ErrorIs(t, err, meshkernel.ErrValidation)
		return nil
	})
}

func TestIndicesBeyondInt32AreRejected(t *testing.T) {
	const huge = 1 << 32
	m, e := newManager(t)
	s := newSession(t, m)
	square, err := meshkernel.NewRectilinearMesh2d(2, 2, pt(0, 0), 1)
	require.NoError(t, err)
	samples, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(0, 0)}, []float64{1})
	require.NoError(t, err)
	with(t, s, func(sc *meshkernel.Scope) error { return sc.SetMesh2d(square) })
	makeUniform(t, s, 2, 2, 1, 1)

	calls := e.Calls()
	tests := map[string]func(sc *meshkernel.Scope) error{
		"delete node": func(sc *meshkernel.Scope) error {
			return sc.Mesh2dDeleteNode(huge)
		},
		"move node": func(sc *meshkernel.Scope) error {
			return sc.Mesh2dMoveNode(pt(0, 0), huge)
		},
		"insert edge": func(sc *meshkernel.Scope) error {
			_, err := sc.Mesh2dInsertEdge(0, huge)
			return err
		},
		"averaging min samples": func(sc *meshkernel.Scope) error {
			_, err := sc.Mesh2dAveragingInterpolation(samples, meshkernel.LocationNodes, meshkernel.AveragingSimple, 1, huge)
			return err
		},
		"curvilinear refine": func(sc *meshkernel.Scope) error {
			return sc.CurvilinearRefine(pt(0, 0), pt(1, 0), huge)
		},
		"make uniform": func(sc *meshkernel.Scope) error {
			return sc.CurvilinearMakeUniform(uniformGrid(huge+3, 3, 1, 1), meshkernel.GeometryList{})
		},
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			err := s.With(t.Context(), fn)
			assert.ErrorIs(t, err, meshkernel.ErrValidation)
		})
	}
	assert.Equal(t, calls, e.Calls())

	with(t, s, func(sc *meshkernel.Scope) error {
		out, err := sc.Mesh2d()
		require.NoError(t, err)
		assert.Equal(t, 4, out.NumNodes())
		return nil
	})
}

func TestSizesBeyondInt32AreRejected(t *testing.T) {
	_, err := meshkernel.NewCurvilinearGrid(nil, nil, 1<<32, 0)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	_, err = meshkernel.NewRectilinearMesh2d(1<<16, 1<<16, pt(0, 0), 1)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestSingleContacts(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	mesh2d, err := meshkernel.NewRectilinearMesh2d(4, 4, pt(0, 0), 1)
	require.NoError(t, err)
	mesh1d, err := meshkernel.NewMesh1d([]float64{0, 1, 2}, []float64{-1, -1, -1}, []int32{0, 1, 1, 2})
	require.NoError(t, err)
	polygon, err := meshkernel.GeometryFromPoints([]meshkernel.Point{pt(-1, -2), pt(3, -2), pt(3, 3), pt(-1, 3), pt(-1, -2)}, nil)
	require.NoError(t, err)

	with(t, s, func(sc *meshkernel.Scope) error {
		require.NoError(t, sc.SetMesh2d(mesh2d))
		require.NoError(t, sc.SetMesh1d(mesh1d))
		require.NoError(t, sc.ContactsComputeSingle([]bool{true, true, true}, polygon))

		c, err := sc.Contacts()
		require.NoError(t, err)
		require.Equal(t, 3, c.Len())
		assert.Equal(t, []int32{0, 1, 2}, c.Mesh1dIndices())
		assert.Equal(t, []int32{0, 0, 1}, c.Mesh2dIndices())
		n1, f := c.Pair(2)
		assert.Equal(t, int32(2), n1)
		assert.Equal(t, int32(1), f)

		assert.ErrorIs(t, sc.ContactsComputeSingle([]bool{true}, polygon), meshkernel.ErrValidation)
		assert.ErrorIs(t, sc.ContactsComputeBoundary([]bool{true, true, true}, polygon, 0), meshkernel.ErrValidation)
		return nil
	})
}

func TestNewContactsValidation(t *testing.T) {
	_, err := meshkernel.NewContacts([]int32{0, 1}, []int32{0})
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	c, err := meshkernel.NewContacts([]int32{0}, []int32{3})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
