package meshkernel

import (
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Default separator values of a GeometryList.
const (
	DefaultGeometrySeparator   = backend.GeometrySeparator
	DefaultInnerOuterSeparator = backend.InnerOuterSeparator
)

// Point is a coordinate pair.
type Point struct {
	X float64
	Y float64
}

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) toBackend() backend.Point { return backend.Point{X: p.X, Y: p.Y} }

// GeometryList is an immutable sequence of (x, y, value) points. The geometry
// separator splits it into polylines or polygons, and the inner/outer
// separator splits a polygon's outer ring from its holes. The zero value is
// an empty list with the default separators.
type GeometryList struct {
	x, y, values []float64
	separator    float64
	innerOuter   float64
	custom       bool
}

// GeometryOption customizes NewGeometryList.
type GeometryOption func(*GeometryList)

// WithSeparators overrides the separator values.
func WithSeparators(geometry, innerOuter float64) GeometryOption {
	return func(g *GeometryList) {
		g.separator = geometry
		g.innerOuter = innerOuter
		g.custom = true
	}
}

// NewGeometryList validates and copies the coordinates. A nil values slice is
// filled with zero at points and with the separator at separator positions.
func NewGeometryList(x, y, values []float64, opts ...GeometryOption) (GeometryList, error) {
	const op = "geometry list"
	g := GeometryList{}
	for _, opt := range opts {
		opt(&g)
	}
	if g.custom && g.separator == g.innerOuter {
		return GeometryList{}, validationf(op, "geometry and inner/outer separators must differ, both are %g", g.separator)
	}
	if g.custom && (g.separator == 0 || g.innerOuter == 0) {
		return GeometryList{}, validationf(op, "separators must be non-zero, got %g and %g", g.separator, g.innerOuter)
	}
	if len(x) != len(y) {
		return GeometryList{}, validationf(op, "x has %d coordinates but y has %d", len(x), len(y))
	}
	if !fitsInt32(len(x)) {
		return GeometryList{}, validationf(op, "%d coordinates exceed the engine's 32-bit count", len(x))
	}
	if values != nil && len(values) != len(x) {
		return GeometryList{}, validationf(op, "values has %d entries for %d coordinates", len(values), len(x))
	}
	for i := range x {
		kx, ky := g.separatorKind(x[i]), g.separatorKind(y[i])
		if kx != ky {
			return GeometryList{}, validationf(op, "separator positions of x and y differ at index %d", i)
		}
		// A value may equal a separator at a regular point, where it marks a
		// missing value.
		if values != nil && kx != 0 && g.separatorKind(values[i]) != kx {
			return GeometryList{}, validationf(op, "separator positions of values and coordinates differ at index %d", i)
		}
	}
	g.x = backend.Contiguous(x)
	g.y = backend.Contiguous(y)
	if values != nil {
		g.values = backend.Contiguous(values)
	} else {
		g.values = make([]float64, len(x))
		for i, v := range x {
			if g.separatorKind(v) != 0 {
				g.values[i] = v
			}
		}
	}
	return g, nil
}

// GeometryFromPoints builds a separator-free list from points.
func GeometryFromPoints(points []Point, values []float64) (GeometryList, error) {
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i], y[i] = p.X, p.Y
	}
	return NewGeometryList(x, y, values)
}

// separatorKind returns 1 for the geometry separator, 2 for the inner/outer
// separator and 0 otherwise.
func (g GeometryList) separatorKind(v float64) int {
	switch v {
	case g.GeometrySeparator():
		return 1
	case g.InnerOuterSeparator():
		return 2
	}
	return 0
}

func (g GeometryList) GeometrySeparator() float64 {
	if !g.custom {
		return DefaultGeometrySeparator
	}
	return g.separator
}

func (g GeometryList) InnerOuterSeparator() float64 {
	if !g.custom {
		return DefaultInnerOuterSeparator
	}
	return g.innerOuter
}

func (g GeometryList) Len() int      { return len(g.x) }
func (g GeometryList) IsEmpty() bool { return len(g.x) == 0 }

// X returns a copy of the x coordinates.
func (g GeometryList) X() []float64 { return backend.Contiguous(g.x) }

// Y returns a copy of the y coordinates.
func (g GeometryList) Y() []float64 { return backend.Contiguous(g.y) }

// Values returns a copy of the values.
func (g GeometryList) Values() []float64 { return backend.Contiguous(g.values) }

// At returns the point and value at index i.
func (g GeometryList) At(i int) (Point, float64) {
	return Point{X: g.x[i], Y: g.y[i]}, g.values[i]
}

// Parts splits the list on the geometry separator. Empty parts are dropped.
func (g GeometryList) Parts() []GeometryList {
	var out []GeometryList
	start := 0
	for i := 0; i <= len(g.x); i++ {
		if i < len(g.x) && g.separatorKind(g.x[i]) != 1 {
			continue
		}
		if i > start {
			out = append(out, GeometryList{
				x:          backend.Contiguous(g.x[start:i]),
				y:          backend.Contiguous(g.y[start:i]),
				values:     backend.Contiguous(g.values[start:i]),
				separator:  g.separator,
				innerOuter: g.innerOuter,
				custom:     g.custom,
			})
		}
		start = i + 1
	}
	return out
}

func (g GeometryList) toBackend() backend.GeometryList {
	return backend.CopyGeometry(backend.GeometryList{
		GeometrySeparator:   g.GeometrySeparator(),
		InnerOuterSeparator: g.InnerOuterSeparator(),
		X:                   g.x,
		Y:                   g.y,
		Values:              g.values,
	})
}

// geometryFromBackend wraps an engine result. The slices must already be
// owned by the binding.
func geometryFromBackend(b backend.GeometryList) GeometryList {
	g := GeometryList{x: b.X, y: b.Y, values: b.Values}
	if len(g.values) < len(g.x) {
		g.values = append(g.values, make([]float64, len(g.x)-len(g.values))...)
	}
	if b.GeometrySeparator != DefaultGeometrySeparator || b.InnerOuterSeparator != DefaultInnerOuterSeparator {
		g.separator, g.innerOuter, g.custom = b.GeometrySeparator, b.InnerOuterSeparator, true
	}
	return g
}
