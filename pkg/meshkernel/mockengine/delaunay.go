package mockengine

import "math"

type triangle struct {
	v      [3]int
	center point
	r2     float64
}

func newTriangle(pts []point, a, b, c int) triangle {
	pa, pb, pc := pts[a], pts[b], pts[c]
	if cross(sub(pb, pa), sub(pc, pa)) < 0 {
		b, c = c, b
		pb, pc = pc, pb
	}
	t := triangle{v: [3]int{a, b, c}}
	d := 2 * (pa.X*(pb.Y-pc.Y) + pb.X*(pc.Y-pa.Y) + pc.X*(pa.Y-pb.Y))
	if math.Abs(d) < 1e-12 {
		t.r2 = math.Inf(1)
		return t
	}
	a2, b2, c2 := dot(pa, pa), dot(pb, pb), dot(pc, pc)
	t.center = point{
		X: (a2*(pb.Y-pc.Y) + b2*(pc.Y-pa.Y) + c2*(pa.Y-pb.Y)) / d,
		Y: (a2*(pc.X-pb.X) + b2*(pa.X-pc.X) + c2*(pb.X-pa.X)) / d,
	}
	t.r2 = dot(sub(pa, t.center), sub(pa, t.center))
	return t
}

func (t triangle) inCircumcircle(p point) bool {
	if math.IsInf(t.r2, 1) {
		return true
	}
	d := sub(p, t.center)
	return dot(d, d) < t.r2*(1-1e-12)
}

// delaunay triangulates pts with the Bowyer-Watson algorithm. Coincident
// points are skipped. Returned triangles index into pts and are oriented
// counter-clockwise.
func delaunay(pts []point) [][3]int {
	if len(pts) < 3 {
		return nil
	}
	lo := point{X: math.Inf(1), Y: math.Inf(1)}
	hi := point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range pts {
		lo = point{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = point{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	size := math.Max(math.Max(hi.X-lo.X, hi.Y-lo.Y), 1)
	mid := lerp(lo, hi, 0.5)

	work := append([]point(nil), pts...)
	n := len(pts)
	work = append(work,
		point{X: mid.X - 100*size, Y: mid.Y - 100*size},
		point{X: mid.X + 100*size, Y: mid.Y - 100*size},
		point{X: mid.X, Y: mid.Y + 100*size},
	)
	tris := []triangle{newTriangle(work, n, n+1, n+2)}

	inserted := make([]int, 0, n)
	for i := 0; i < n; i++ {
		p := work[i]
		dup := false
		for _, j := range inserted {
			if dist(p, work[j]) < eps {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		inserted = append(inserted, i)

		type edge struct{ a, b int }
		count := make(map[edge]int)
		var order []edge
		keep := tris[:0:0]
		for _, t := range tris {
			if !t.inCircumcircle(p) {
				keep = append(keep, t)
				continue
			}
			for k := 0; k < 3; k++ {
				a, b := t.v[k], t.v[(k+1)%3]
				if a > b {
					a, b = b, a
				}
				e := edge{a, b}
				if count[e] == 0 {
					order = append(order, e)
				}
				count[e]++
			}
		}
		for _, e := range order {
			if count[e] == 1 {
				keep = append(keep, newTriangle(work, e.a, e.b, i))
			}
		}
		tris = keep
	}

	var out [][3]int
	for _, t := range tris {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n {
			continue
		}
		if math.IsInf(t.r2, 1) {
			continue
		}
		out = append(out, t.v)
	}
	return out
}

// barycentric returns the barycentric weights of p in triangle abc.
func barycentric(p, a, b, c point) (float64, float64, float64, bool) {
	den := cross(sub(b, a), sub(c, a))
	if math.Abs(den) < 1e-15 {
		return 0, 0, 0, false
	}
	wb := cross(sub(p, a), sub(c, a)) / den
	wc := cross(sub(b, a), sub(p, a)) / den
	return 1 - wb - wc, wb, wc, true
}
