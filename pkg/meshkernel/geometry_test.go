package meshkernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
)

func TestGeometryListValidation(t *testing.T) {
	sep := meshkernel.DefaultGeometrySeparator
	inner := meshkernel.DefaultInnerOuterSeparator

	tests := []struct {
		name      string
		x, y, val []float64
		opts      []meshkernel.GeometryOption
		ok        bool
	}{
		{name: "empty", ok: true},
		{name: "points", x: []float64{0, 1}, y: []float64{0, 1}, ok: true},
		{name: "unequal lengths", x: []float64{0, 1}, y: []float64{0}},
		{name: "short values", x: []float64{0, 1}, y: []float64{0, 1}, val: []float64{1}},
		{name: "separator only in x", x: []float64{0, sep, 1}, y: []float64{0, 5, 1}},
		{name: "mixed separator kinds", x: []float64{0, sep, 1}, y: []float64{0, inner, 1}},
		{name: "aligned separators", x: []float64{0, sep, 1, inner, 2}, y: []float64{0, sep, 1, inner, 2}, ok: true},
		{name: "value missing at a separator", x: []float64{0, sep}, y: []float64{0, sep}, val: []float64{0, 3}},
		{name: "missing value at a point", x: []float64{0, 1}, y: []float64{0, 1}, val: []float64{sep, 2}, ok: true},
		{name: "equal custom separators", x: []float64{0}, y: []float64{0}, opts: []meshkernel.GeometryOption{meshkernel.WithSeparators(-1, -1)}},
		{name: "zero custom separator", x: []float64{1}, y: []float64{1}, opts: []meshkernel.GeometryOption{meshkernel.WithSeparators(-1, 0)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := meshkernel.NewGeometryList(tc.x, tc.y, tc.val, tc.opts...)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, meshkernel.ErrValidation)
			}
		})
	}
}

func TestGeometryListDefaults(t *testing.T) {
	sep := meshkernel.DefaultGeometrySeparator
	g, err := meshkernel.NewGeometryList([]float64{0, sep, 1}, []float64{2, sep, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, sep, 0}, g.Values())
	assert.Equal(t, sep, g.GeometrySeparator())
	assert.Equal(t, meshkernel.DefaultInnerOuterSeparator, g.InnerOuterSeparator())

	p, v := g.At(2)
	assert.Equal(t, pt(1, 3), p)
	assert.Zero(t, v)

	var zero meshkernel.GeometryList
	assert.True(t, zero.IsEmpty())
	assert.Equal(t, sep, zero.GeometrySeparator())
	assert.Empty(t, zero.Parts())
}

func TestGeometryListParts(t *testing.T) {
	g, err := meshkernel.NewGeometryList(
		[]float64{-5, 0, 1, -5, -5, 2, -5},
		[]float64{-5, 0, 1, -5, -5, 2, -5},
		nil,
		meshkernel.WithSeparators(-5, -6),
	)
	require.NoError(t, err)
	parts := g.Parts()
	require.Len(t, parts, 2, "empty parts are dropped")
	assert.Equal(t, []float64{0, 1}, parts[0].X())
	assert.Equal(t, []float64{2}, parts[1].Y())
	assert.Equal(t, -5.0, parts[1].GeometrySeparator())
}

func TestGeometryListIsImmutable(t *testing.T) {
	x := []float64{0, 1}
	g, err := meshkernel.NewGeometryList(x, []float64{0, 1}, nil)
	require.NoError(t, err)
	x[0] = 9
	out := g.X()
	out[1] = 9
	assert.Equal(t, []float64{0, 1}, g.X())
}

func TestStridedGather(t *testing.T) {
	// Rows of (x, y, value).
	table := []float64{
		0, 10, 100,
		1, 11, 101,
		2, 12, 102,
	}
	col := func(i int) meshkernel.Strided[float64] {
		return meshkernel.Strided[float64]{Data: table, Offset: i, Stride: 3, Len: 3}
	}

	x, err := col(0).Gather()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, x)
	x[0] = 42
	assert.Equal(t, 0.0, table[0], "gather copies")

	g, err := meshkernel.GeometryFromStrided(col(0), col(1), col(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12}, g.Y())
	assert.Equal(t, []float64{100, 101, 102}, g.Values())

	g, err = meshkernel.GeometryFromStrided(col(0), col(1), meshkernel.Strided[float64]{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, g.Values())

	_, err = meshkernel.Strided[float64]{Data: table, Offset: 2, Stride: 3, Len: 4}.Gather()
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	_, err = meshkernel.Strided[int32]{Data: []int32{1, 2}, Stride: 0, Len: 2}.Gather()
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestGatherNeverNil(t *testing.T) {
	assert.NotNil(t, meshkernel.Gather[int32](nil))
	src := []int32{1, 2, 3}
	out := meshkernel.Gather(src[1:])
	assert.Equal(t, []int32{2, 3}, out)
}

func TestParameterDefaultsValidate(t *testing.T) {
	assert.NoError(t, meshkernel.DefaultMakeGridParameters().Validate())
	assert.NoError(t, meshkernel.DefaultCurvilinearParameters().Validate())
	assert.NoError(t, meshkernel.DefaultSplinesToCurvilinearParameters().Validate())
	assert.NoError(t, meshkernel.DefaultOrthogonalizationParameters().Validate())
	assert.NoError(t, meshkernel.DefaultInterpolationParameters().Validate())
	assert.NoError(t, meshkernel.DefaultSampleRefineParameters().Validate())
	assert.NoError(t, meshkernel.DefaultLineAttractionRepulsionParameters().Validate())
	assert.NoError(t, meshkernel.DefaultDirectionalSmoothingParameters().Validate())

	o := meshkernel.DefaultOrthogonalizationParameters()
	o.OrthogonalizationToSmoothingFactor = 1.5
	assert.ErrorIs(t, o.Validate(), meshkernel.ErrValidation)

	c := meshkernel.DefaultCurvilinearParameters()
	c.MRefinement = 0
	assert.ErrorIs(t, c.Validate(), meshkernel.ErrValidation)

	d := meshkernel.DirectionalSmoothingParameters{}
	assert.ErrorIs(t, d.Validate(), meshkernel.ErrValidation)
}

func TestParametersRejectInt32Overflow(t *testing.T) {
	const huge = 1 << 32
	grid := meshkernel.DefaultMakeGridParameters()
	grid.NumColumns = huge + 3
	wide := meshkernel.DefaultMakeGridParameters()
	wide.NumColumns, wide.NumRows = 1<<16, 1<<16
	curv := meshkernel.DefaultCurvilinearParameters()
	curv.MRefinement = huge
	ortho := meshkernel.DefaultOrthogonalizationParameters()
	ortho.InnerIterations = huge
	interp := meshkernel.DefaultInterpolationParameters()
	interp.MinPoints = huge
	refine := meshkernel.DefaultSampleRefineParameters()
	refine.MaxRefinementIterations = huge
	smooth := meshkernel.DirectionalSmoothingParameters{Iterations: huge}

	for name, err := range map[string]error{
		"make grid columns":     grid.Validate(),
		"make grid node count":  wide.Validate(),
		"curvilinear":           curv.Validate(),
		"orthogonalization":     ortho.Validate(),
		"interpolation":         interp.Validate(),
		"sample refine":         refine.Validate(),
		"directional smoothing": smooth.Validate(),
	} {
		assert.ErrorIs(t, err, meshkernel.ErrValidation, name)
	}
}
