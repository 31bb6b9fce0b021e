package mockengine

import (
	"fmt"
	"math"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

const (
	missing = backend.GeometrySeparator
	eps     = 1e-9
)

type point = backend.Point

func isMissing(x, y float64) bool {
	return x == missing && y == missing
}

func dist(a, b point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func sub(a, b point) point { return point{X: a.X - b.X, Y: a.Y - b.Y} }
func add(a, b point) point { return point{X: a.X + b.X, Y: a.Y + b.Y} }
func scale(a point, s float64) point {
	return point{X: a.X * s, Y: a.Y * s}
}
func lerp(a, b point, t float64) point {
	return point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}
func cross(a, b point) float64 { return a.X*b.Y - a.Y*b.X }
func dot(a, b point) float64 { return a.X*b.X + a.Y*b.Y }

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b point) float64 {
	ab := sub(b, a)
	l2 := dot(ab, ab)
	if l2 == 0 {
		return dist(p, a)
	}
	t := math.Max(0, math.Min(1, dot(sub(p, a), ab)/l2))
	return dist(p, lerp(a, b, t))
}

// ring is a closed polygon boundary without a repeated closing vertex.
type ring []point

// polygon is an outer ring with optional holes.
type polygon struct {
	outer ring
	holes []ring
}

func (r ring) contains(p point) bool {
	in := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if segmentDistance(p, a, b) < eps {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				in = !in
			}
		}
	}
	return in
}

func (r ring) area() float64 {
	var s float64
	for i := range r {
		j := (i + 1) % len(r)
		s += cross(r[i], r[j])
	}
	return s / 2
}

// centroid returns the area centroid, falling back to the vertex mean for
// degenerate rings.
func (r ring) centroid() point {
	a := r.area()
	if math.Abs(a) < eps {
		var c point
		for _, p := range r {
			c = add(c, p)
		}
		return scale(c, 1/float64(len(r)))
	}
	var cx, cy float64
	for i := range r {
		j := (i + 1) % len(r)
		f := cross(r[i], r[j])
		cx += (r[i].X + r[j].X) * f
		cy += (r[i].Y + r[j].Y) * f
	}
	return point{X: cx / (6 * a), Y: cy / (6 * a)}
}

func (p polygon) contains(q point) bool {
	if !p.outer.contains(q) {
		return false
	}
	for _, h := range p.holes {
		if h.contains(q) && !onRing(h, q) {
			return false
		}
	}
	return true
}

func onRing(r ring, q point) bool {
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		if segmentDistance(q, r[i], r[j]) < eps {
			return true
		}
	}
	return false
}

// polygonSet is the parsed form of a polygon geometry. An empty set selects
// everything.
type polygonSet []polygon

func (ps polygonSet) contains(q point) bool {
	if len(ps) == 0 {
		return true
	}
	for _, p := range ps {
		if p.contains(q) {
			return true
		}
	}
	return false
}

// parts splits a geometry on its geometry separator. Each part is further
// split on the inner/outer separator.
func parts(g backend.GeometryList) [][][]point {
	var out [][][]point
	var part [][]point
	var cur []point
	flush := func() {
		if len(cur) > 0 {
			part = append(part, cur)
		}
		cur = nil
	}
	for i := range g.X {
		x, y := g.X[i], g.Y[i]
		switch {
		case x == g.GeometrySeparator:
			flush()
			if len(part) > 0 {
				out = append(out, part)
			}
			part = nil
		case x == g.InnerOuterSeparator:
			flush()
		default:
			cur = append(cur, point{X: x, Y: y})
		}
	}
	flush()
	if len(part) > 0 {
		out = append(out, part)
	}
	return out
}

func toRing(pts []point) ring {
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return ring(pts)
}

func parsePolygons(g backend.GeometryList) polygonSet {
	var ps polygonSet
	for _, part := range parts(g) {
		if len(part[0]) < 3 {
			continue
		}
		p := polygon{outer: toRing(part[0])}
		for _, h := range part[1:] {
			if len(h) >= 3 {
				p.holes = append(p.holes, toRing(h))
			}
		}
		ps = append(ps, p)
	}
	return ps
}

// polylines returns every geometry part as an open polyline.
func polylines(g backend.GeometryList) [][]point {
	var out [][]point
	for _, part := range parts(g) {
		for _, pl := range part {
			out = append(out, pl)
		}
	}
	return out
}

// samples returns the non-separator points of g with their values.
func samples(g backend.GeometryList) ([]point, []float64) {
	var pts []point
	var vals []float64
	for i := range g.X {
		if g.X[i] == g.GeometrySeparator || g.X[i] == g.InnerOuterSeparator {
			continue
		}
		pts = append(pts, point{X: g.X[i], Y: g.Y[i]})
		v := 0.0
		if i < len(g.Values) {
			v = g.Values[i]
		}
		vals = append(vals, v)
	}
	return pts, vals
}

// segmentIntersection returns the parameters along ab and cd of their
// crossing, if any.
func segmentIntersection(a, b, c, d point) (float64, float64, bool) {
	r, s := sub(b, a), sub(d, c)
	den := cross(r, s)
	if math.Abs(den) < eps {
		return 0, 0, false
	}
	qp := sub(c, a)
	t := cross(qp, s) / den
	u := cross(qp, r) / den
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return 0, 0, false
	}
	return t, u, true
}

func errRange(first, second, n int32) error {
	return fmt.Errorf("polygon nodes %d and %d must satisfy 0 <= first < second < %d", first, second, n)
}

func errTarget(target float64) error {
	return fmt.Errorf("target edge length %g must be positive", target)
}
