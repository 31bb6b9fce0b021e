package mockengine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

var errNoGrid = errors.New("no curvilinear grid")

// grid stores nodes with m varying fastest.
type grid struct {
	m, n int
	x, y []float64
}

func newGrid(m, n int, x, y []float64) *grid {
	return &grid{
		m: m,
		n: n,
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
	}
}

func emptyGrid(m, n int) *grid {
	g := &grid{m: m, n: n, x: make([]float64, m*n), y: make([]float64, m*n)}
	for i := range g.x {
		g.x[i], g.y[i] = missing, missing
	}
	return g
}

func (g *grid) clone() *grid { return newGrid(g.m, g.n, g.x, g.y) }

func (g *grid) idx(m, n int) int { return n*g.m + m }

func (g *grid) inside(m, n int) bool {
	return m >= 0 && m < g.m && n >= 0 && n < g.n
}

func (g *grid) at(m, n int) point {
	i := g.idx(m, n)
	return point{X: g.x[i], Y: g.y[i]}
}

func (g *grid) valid(m, n int) bool {
	if !g.inside(m, n) {
		return false
	}
	i := g.idx(m, n)
	return !isMissing(g.x[i], g.y[i])
}

func (g *grid) set(m, n int, p point) {
	i := g.idx(m, n)
	g.x[i], g.y[i] = p.X, p.Y
}

func (g *grid) clear(m, n int) { g.set(m, n, point{X: missing, Y: missing}) }

func (g *grid) empty() bool { return g.m == 0 || g.n == 0 }

// cell reports whether the face with lower-left node (m, n) has four valid
// corners.
func (g *grid) cell(m, n int) bool {
	return g.valid(m, n) && g.valid(m+1, n) && g.valid(m, n+1) && g.valid(m+1, n+1)
}

// closest snaps p to the nearest valid node. Ties resolve to the lowest
// index.
func (g *grid) closest(p point) (gridNode, bool) {
	best, bestD, found := gridNode{}, math.Inf(1), false
	for n := 0; n < g.n; n++ {
		for m := 0; m < g.m; m++ {
			if !g.valid(m, n) {
				continue
			}
			if d := dist(p, g.at(m, n)); d < bestD-eps {
				best, bestD, found = gridNode{m: m, n: n}, d, true
			}
		}
	}
	return best, found
}

// transpose swaps the roles of m and n.
func (g *grid) transpose() *grid {
	t := emptyGrid(g.n, g.m)
	for n := 0; n < g.n; n++ {
		for m := 0; m < g.m; m++ {
			t.set(n, m, g.at(m, n))
		}
	}
	return t
}

// makeUniform builds a rectangular grid. With polygons, the grid covers
// their bounding box and nodes outside every polygon are left missing.
func makeUniform(p backend.MakeGridParameters, polys polygonSet) (*grid, error) {
	if p.BlockSizeX <= 0 || p.BlockSizeY <= 0 {
		return nil, fmt.Errorf("block sizes must be positive, got %g x %g", p.BlockSizeX, p.BlockSizeY)
	}
	cols, rows := int(p.NumColumns), int(p.NumRows)
	origin := point{X: p.OriginX, Y: p.OriginY}
	if len(polys) > 0 {
		lo := point{X: math.Inf(1), Y: math.Inf(1)}
		hi := point{X: math.Inf(-1), Y: math.Inf(-1)}
		for _, poly := range polys {
			for _, q := range poly.outer {
				lo = point{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
				hi = point{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
			}
		}
		origin = lo
		cols = max(1, int(math.Ceil((hi.X-lo.X)/p.BlockSizeX-eps)))
		rows = max(1, int(math.Ceil((hi.Y-lo.Y)/p.BlockSizeY-eps)))
	}
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("grid needs at least one column and row, got %d x %d", cols, rows)
	}
	sin, cos := math.Sincos(p.Angle * math.Pi / 180)
	g := emptyGrid(cols+1, rows+1)
	for n := 0; n <= rows; n++ {
		for m := 0; m <= cols; m++ {
			dx, dy := float64(m)*p.BlockSizeX, float64(n)*p.BlockSizeY
			q := point{X: origin.X + dx*cos - dy*sin, Y: origin.Y + dx*sin + dy*cos}
			if len(polys) > 0 && !polys.contains(q) {
				continue
			}
			g.set(m, n, q)
		}
	}
	return g, nil
}

// polyline is parameterised by arc length.
type polyline []point

func (pl polyline) cumulative() []float64 {
	out := make([]float64, len(pl))
	for i := 1; i < len(pl); i++ {
		out[i] = out[i-1] + dist(pl[i-1], pl[i])
	}
	return out
}

func (pl polyline) at(s float64) point {
	cum := pl.cumulative()
	if s <= 0 {
		return pl[0]
	}
	for i := 1; i < len(pl); i++ {
		if s <= cum[i] {
			seg := cum[i] - cum[i-1]
			if seg == 0 {
				return pl[i]
			}
			return lerp(pl[i-1], pl[i], (s-cum[i-1])/seg)
		}
	}
	return pl[len(pl)-1]
}

// intersect returns the arc-length positions of the first crossing of a and
// b.
func (pl polyline) intersect(other polyline) (float64, float64, bool) {
	ca, cb := pl.cumulative(), other.cumulative()
	for i := 1; i < len(pl); i++ {
		for j := 1; j < len(other); j++ {
			t, u, ok := segmentIntersection(pl[i-1], pl[i], other[j-1], other[j])
			if ok {
				return ca[i-1] + t*(ca[i]-ca[i-1]), cb[j-1] + u*(cb[j]-cb[j-1]), true
			}
		}
	}
	return 0, 0, false
}

// resample returns count+1 points evenly spaced in arc length from s0 to s1.
func (pl polyline) resample(s0, s1 float64, count int) []point {
	out := make([]point, count+1)
	for i := range out {
		out[i] = pl.at(s0 + (s1-s0)*float64(i)/float64(count))
	}
	return out
}

// transfinite builds a grid from four crossing polylines with a Coons patch.
// Polylines that cross the first one bound the grid in m; the first one and
// those parallel to it bound it in n.
func transfinite(splines []polyline, p backend.CurvilinearParameters) (*grid, error) {
	if p.MRefinement < 1 || p.NRefinement < 1 {
		return nil, fmt.Errorf("refinement must be positive, got m=%d n=%d", p.MRefinement, p.NRefinement)
	}
	var usable []polyline
	for _, s := range splines {
		if len(s) >= 2 {
			usable = append(usable, s)
		}
	}
	if len(usable) < 4 {
		return nil, fmt.Errorf("need at least 4 splines with two or more points, got %d", len(usable))
	}

	first := usable[0]
	along := []polyline{first}
	type crossing struct {
		spline polyline
		pos    float64
	}
	var across []crossing
	for _, s := range usable[1:] {
		if pos, _, ok := first.intersect(s); ok {
			across = append(across, crossing{spline: s, pos: pos})
		} else {
			along = append(along, s)
		}
	}
	if len(along) < 2 || len(across) < 2 {
		return nil, fmt.Errorf("splines do not form two crossing families (%d along, %d across)", len(along), len(across))
	}
	sort.SliceStable(across, func(i, j int) bool { return across[i].pos < across[j].pos })
	left, right := across[0].spline, across[len(across)-1].spline

	type ordered struct {
		spline polyline
		pos    float64
	}
	rows := make([]ordered, 0, len(along))
	for _, s := range along {
		_, pos, ok := s.intersect(left)
		if !ok {
			return nil, errors.New("spline does not cross the bounding splines")
		}
		rows = append(rows, ordered{spline: s, pos: pos})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].pos < rows[j].pos })
	bottom, top := rows[0].spline, rows[len(rows)-1].spline

	trim := func(curve, a, b polyline, count int) ([]point, error) {
		sa, _, okA := curve.intersect(a)
		sb, _, okB := curve.intersect(b)
		if !okA || !okB {
			return nil, errors.New("bounding splines do not intersect")
		}
		return curve.resample(sa, sb, count), nil
	}
	mCells, nCells := int(p.MRefinement), int(p.NRefinement)
	b, err := trim(bottom, left, right, mCells)
	if err != nil {
		return nil, err
	}
	t, err := trim(top, left, right, mCells)
	if err != nil {
		return nil, err
	}
	l, err := trim(left, bottom, top, nCells)
	if err != nil {
		return nil, err
	}
	r, err := trim(right, bottom, top, nCells)
	if err != nil {
		return nil, err
	}

	c00, c10, c01, c11 := b[0], b[mCells], t[0], t[mCells]
	g := emptyGrid(mCells+1, nCells+1)
	for j := 0; j <= nCells; j++ {
		v := float64(j) / float64(nCells)
		for i := 0; i <= mCells; i++ {
			u := float64(i) / float64(mCells)
			q := add(scale(b[i], 1-v), scale(t[i], v))
			q = add(q, add(scale(l[j], 1-u), scale(r[j], u)))
			q = sub(q, scale(c00, (1-u)*(1-v)))
			q = sub(q, scale(c10, u*(1-v)))
			q = sub(q, scale(c01, (1-u)*v))
			q = sub(q, scale(c11, u*v))
			g.set(i, j, q)
		}
	}
	return g, nil
}

// toMesh2d returns the valid nodes and the edges joining valid neighbours.
// Edges along m come first, then edges along n.
func (g *grid) toMesh2d() ([]float64, []float64, [][2]int32) {
	ids := make([]int32, g.m*g.n)
	var x, y []float64
	for n := 0; n < g.n; n++ {
		for m := 0; m < g.m; m++ {
			ids[g.idx(m, n)] = -1
			if g.valid(m, n) {
				ids[g.idx(m, n)] = int32(len(x))
				p := g.at(m, n)
				x = append(x, p.X)
				y = append(y, p.Y)
			}
		}
	}
	var edges [][2]int32
	for n := 0; n < g.n; n++ {
		for m := 0; m+1 < g.m; m++ {
			if g.valid(m, n) && g.valid(m+1, n) {
				edges = append(edges, [2]int32{ids[g.idx(m, n)], ids[g.idx(m+1, n)]})
			}
		}
	}
	for n := 0; n+1 < g.n; n++ {
		for m := 0; m < g.m; m++ {
			if g.valid(m, n) && g.valid(m, n+1) {
				edges = append(edges, [2]int32{ids[g.idx(m, n)], ids[g.idx(m, n+1)]})
			}
		}
	}
	return x, y, edges
}

// lineBetween snaps two points to nodes on a common grid line.
func (g *grid) lineBetween(a, b point) (gridLine, error) {
	na, okA := g.closest(a)
	nb, okB := g.closest(b)
	if !okA || !okB {
		return gridLine{}, errNoGrid
	}
	if na == nb {
		return gridLine{}, fmt.Errorf("both points snap to node (%d, %d)", na.m, na.n)
	}
	if na.m != nb.m && na.n != nb.n {
		return gridLine{}, fmt.Errorf("nodes (%d, %d) and (%d, %d) are not on a common grid line", na.m, na.n, nb.m, nb.n)
	}
	return gridLine{from: na, to: nb}, nil
}

func (g *grid) blockBetween(a, b point) (nodeBlock, error) {
	na, okA := g.closest(a)
	nb, okB := g.closest(b)
	if !okA || !okB {
		return nodeBlock{}, errNoGrid
	}
	return makeBlock(na, nb), nil
}

// refineM splits every column interval in [lo, hi) into factor intervals.
func (g *grid) refineM(lo, hi, factor int) *grid {
	out := emptyGrid(g.m+(hi-lo)*(factor-1), g.n)
	for n := 0; n < g.n; n++ {
		col := 0
		for m := 0; m < g.m; m++ {
			out.set(col, n, g.at(m, n))
			col++
			if m < lo || m >= hi {
				continue
			}
			for k := 1; k < factor; k++ {
				if g.valid(m, n) && g.valid(m+1, n) {
					out.set(col, n, lerp(g.at(m, n), g.at(m+1, n), float64(k)/float64(factor)))
				}
				col++
			}
		}
	}
	return out
}

// derefineM removes the columns strictly between lo and hi.
func (g *grid) derefineM(lo, hi int) *grid {
	removed := max(0, hi-lo-1)
	out := emptyGrid(g.m-removed, g.n)
	for n := 0; n < g.n; n++ {
		col := 0
		for m := 0; m < g.m; m++ {
			if m > lo && m < hi {
				continue
			}
			out.set(col, n, g.at(m, n))
			col++
		}
	}
	return out
}

// alongLine applies fn to the grid oriented so that the line runs along m,
// and restores the orientation afterwards.
func (g *grid) alongLine(l gridLine, fn func(*grid, int, int) *grid) *grid {
	if l.alongM() {
		return fn(g, min(l.from.m, l.to.m), max(l.from.m, l.to.m))
	}
	return fn(g.transpose(), min(l.from.n, l.to.n), max(l.from.n, l.to.n)).transpose()
}

// boundaryEdge is a grid edge with exactly one valid adjacent cell.
type boundaryEdge struct {
	a, b gridNode
	// outward is the index step from the edge towards the missing side.
	dm, dn int
}

// boundaryEdges lists edges along m (row by row), then edges along n.
func (g *grid) boundaryEdges() []boundaryEdge {
	var out []boundaryEdge
	for n := 0; n < g.n; n++ {
		for m := 0; m+1 < g.m; m++ {
			if !g.valid(m, n) || !g.valid(m+1, n) {
				continue
			}
			below, above := g.cell(m, n-1), g.cell(m, n)
			switch {
			case above && !below:
				out = append(out, boundaryEdge{a: gridNode{m, n}, b: gridNode{m + 1, n}, dn: -1})
			case below && !above:
				out = append(out, boundaryEdge{a: gridNode{m, n}, b: gridNode{m + 1, n}, dn: 1})
			}
		}
	}
	for n := 0; n+1 < g.n; n++ {
		for m := 0; m < g.m; m++ {
			if !g.valid(m, n) || !g.valid(m, n+1) {
				continue
			}
			left, right := g.cell(m-1, n), g.cell(m, n)
			switch {
			case right && !left:
				out = append(out, boundaryEdge{a: gridNode{m, n}, b: gridNode{m, n + 1}, dm: -1})
			case left && !right:
				out = append(out, boundaryEdge{a: gridNode{m, n}, b: gridNode{m, n + 1}, dm: 1})
			}
		}
	}
	return out
}

// insertFace extrudes a new face from the boundary edge closest to p by
// mirroring the adjacent face across that edge. The grid grows by one line
// when the new nodes fall outside it.
func (g *grid) insertFace(p point) (*grid, error) {
	edges := g.boundaryEdges()
	if len(edges) == 0 {
		return nil, errors.New("grid has no boundary edge")
	}
	best, bestD := 0, math.Inf(1)
	for i, e := range edges {
		if d := segmentDistance(p, g.at(e.a.m, e.a.n), g.at(e.b.m, e.b.n)); d < bestD-eps {
			best, bestD = i, d
		}
	}
	e := edges[best]
	newA := sub(scale(g.at(e.a.m, e.a.n), 2), g.at(e.a.m-e.dm, e.a.n-e.dn))
	newB := sub(scale(g.at(e.b.m, e.b.n), 2), g.at(e.b.m-e.dm, e.b.n-e.dn))

	out, offM, offN := g, 0, 0
	target := func(node gridNode) gridNode { return gridNode{node.m + e.dm, node.n + e.dn} }
	ta, tb := target(e.a), target(e.b)
	if !g.inside(ta.m, ta.n) || !g.inside(tb.m, tb.n) {
		growM, growN := abs(e.dm), abs(e.dn)
		if e.dm < 0 {
			offM = 1
		}
		if e.dn < 0 {
			offN = 1
		}
		out = emptyGrid(g.m+growM, g.n+growN)
		for n := 0; n < g.n; n++ {
			for m := 0; m < g.m; m++ {
				out.set(m+offM, n+offN, g.at(m, n))
			}
		}
	} else {
		out = g.clone()
	}
	out.set(ta.m+offM, ta.n+offN, newA)
	out.set(tb.m+offM, tb.n+offN, newB)
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
