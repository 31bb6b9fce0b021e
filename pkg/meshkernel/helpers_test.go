package meshkernel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/mockengine"
)

func newManager(t *testing.T, opts ...meshkernel.Option) (*meshkernel.Manager, *mockengine.Engine) {
	t.Helper()
	return newManagerWith(t, mockengine.New(), opts...)
}

func newManagerWith(t *testing.T, e *mockengine.Engine, opts ...meshkernel.Option) (*meshkernel.Manager, *mockengine.Engine) {
	t.Helper()
	m, err := meshkernel.NewManager(e, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, e
}

func newSession(t *testing.T, m *meshkernel.Manager) *meshkernel.Session {
	t.Helper()
	s, err := m.Create(context.Background())
	require.NoError(t, err)
	return s
}

// with runs fn on s and fails the test on error.
func with(t *testing.T, s *meshkernel.Session, fn func(sc *meshkernel.Scope) error) {
	t.Helper()
	require.NoError(t, s.With(context.Background(), fn))
}

func uniformGrid(cols, rows int, dx, dy float64) meshkernel.MakeGridParameters {
	p := meshkernel.DefaultMakeGridParameters()
	p.NumColumns, p.NumRows = cols, rows
	p.BlockSizeX, p.BlockSizeY = dx, dy
	return p
}

func makeUniform(t *testing.T, s *meshkernel.Session, cols, rows int, dx, dy float64) {
	t.Helper()
	with(t, s, func(sc *meshkernel.Scope) error {
		return sc.CurvilinearMakeUniform(uniformGrid(cols, rows, dx, dy), meshkernel.GeometryList{})
	})
}

func readGrid(t *testing.T, s *meshkernel.Session) meshkernel.CurvilinearGrid {
	t.Helper()
	var g meshkernel.CurvilinearGrid
	with(t, s, func(sc *meshkernel.Scope) error {
		var err error
		g, err = sc.CurvilinearGrid()
		return err
	})
	return g
}

func node(t *testing.T, g meshkernel.CurvilinearGrid, m, n int) meshkernel.Point {
	t.Helper()
	p, ok := g.Node(m, n)
	require.True(t, ok, "node (%d, %d) is missing", m, n)
	return p
}

func pt(x, y float64) meshkernel.Point { return meshkernel.NewPoint(x, y) }
