package mockengine

import (
	"fmt"
	"math"
	"reflect"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Run dispatches one-shot operations.
func (e *Engine) Run(id backend.ContextID, op backend.Op, args any) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()

	if err := checkSeparators(args); err != nil {
		return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
	}

	switch op {
	case backend.OpMesh2dDelete:
		a := args.(*backend.Mesh2dDeleteArgs)
		if a.DeletionOption < 0 || a.DeletionOption > 2 {
			return e.setErr(backend.StatusRangeError, "%s: unknown deletion option %d", op, a.DeletionOption)
		}
		polys := parsePolygons(a.Polygon)
		s.mesh2d.deleteInside(func(p point) bool { return polys.contains(p) != a.InvertDeletion }, a.DeletionOption)
	case backend.OpMesh2dInsertEdge:
		a := args.(*backend.Mesh2dInsertEdgeArgs)
		n := s.mesh2d.numNodes()
		if a.StartNode < 0 || a.StartNode >= n || a.EndNode < 0 || a.EndNode >= n {
			return e.setErr(backend.StatusRangeError, "%s: nodes %d and %d must be in [0, %d)", op, a.StartNode, a.EndNode, n)
		}
		if a.StartNode == a.EndNode {
			return e.setErr(backend.StatusInvalidGeometry, "%s: an edge needs two distinct nodes", op)
		}
		s.mesh2d.edges = append(s.mesh2d.edges, [2]int32{a.StartNode, a.EndNode})
		s.mesh2d.changed()
		a.EdgeIndex = int32(len(s.mesh2d.edges) - 1)
	case backend.OpMesh2dInsertNode:
		a := args.(*backend.Mesh2dInsertNodeArgs)
		s.mesh2d.x = append(s.mesh2d.x, a.Point.X)
		s.mesh2d.y = append(s.mesh2d.y, a.Point.Y)
		s.mesh2d.changed()
		a.NodeIndex = s.mesh2d.numNodes() - 1
	case backend.OpMesh2dDeleteNode:
		a := args.(*backend.NodeIndexArgs)
		if a.NodeIndex < 0 || a.NodeIndex >= s.mesh2d.numNodes() {
			return e.setErr(backend.StatusRangeError, "%s: node %d out of range [0, %d)", op, a.NodeIndex, s.mesh2d.numNodes())
		}
		keepNode := make([]bool, len(s.mesh2d.x))
		keepEdge := make([]bool, len(s.mesh2d.edges))
		for i := range keepNode {
			keepNode[i] = int32(i) != a.NodeIndex
		}
		for i := range keepEdge {
			keepEdge[i] = true
		}
		s.mesh2d.compact(keepNode, keepEdge)
	case backend.OpMesh2dMoveNode:
		a := args.(*backend.Mesh2dMoveNodeArgs)
		if a.NodeIndex < 0 || a.NodeIndex >= s.mesh2d.numNodes() {
			return e.setErr(backend.StatusRangeError, "%s: node %d out of range [0, %d)", op, a.NodeIndex, s.mesh2d.numNodes())
		}
		s.mesh2d.x[a.NodeIndex], s.mesh2d.y[a.NodeIndex] = a.Point.X, a.Point.Y
		s.mesh2d.changed()
	case backend.OpMesh2dDeleteEdge:
		a := args.(*backend.PointArgs)
		i := s.mesh2d.closestEdge(a.Point)
		if i < 0 {
			return e.setErr(backend.StatusInvalidGeometry, "%s: mesh has no edges", op)
		}
		s.mesh2d.edges = append(s.mesh2d.edges[:i], s.mesh2d.edges[i+1:]...)
		s.mesh2d.changed()
	case backend.OpMesh2dFindEdge:
		a := args.(*backend.Mesh2dFindEdgeArgs)
		i := s.mesh2d.closestEdge(a.Point)
		if i < 0 {
			return e.setErr(backend.StatusInvalidGeometry, "%s: mesh has no edges", op)
		}
		a.EdgeIndex = int32(i)
	case backend.OpMesh2dNodeIndex:
		a := args.(*backend.Mesh2dNodeIndexArgs)
		i, d := s.mesh2d.closestNode(a.Point)
		if i < 0 || d > a.SearchRadius {
			return e.setErr(backend.StatusRangeError, "%s: no node within %g of (%g, %g)", op, a.SearchRadius, a.Point.X, a.Point.Y)
		}
		a.NodeIndex = i
	case backend.OpMesh2dCountHangingEdges:
		args.(*backend.CountArgs).Count = int32(len(s.mesh2d.hangingEdges()))
	case backend.OpMesh2dDeleteHangingEdges:
		hanging := s.mesh2d.hangingEdges()
		keepNode := make([]bool, len(s.mesh2d.x))
		keepEdge := make([]bool, len(s.mesh2d.edges))
		for i := range keepNode {
			keepNode[i] = true
		}
		for i := range keepEdge {
			keepEdge[i] = true
		}
		candidates := make(map[int32]bool)
		for _, i := range hanging {
			keepEdge[i] = false
			candidates[s.mesh2d.edges[i][0]], candidates[s.mesh2d.edges[i][1]] = true, true
		}
		s.mesh2d.compact(keepNode, keepEdge)
		s.mesh2d.dropIsolated(candidates)
	case backend.OpMesh2dMakeFromPolygon:
		a := args.(*backend.GeometryArgs)
		polys := parsePolygons(a.Geometry)
		if len(polys) == 0 {
			return e.setErr(backend.StatusInvalidGeometry, "%s: polygon needs at least three points", op)
		}
		pts := polygonSeeds(polys[0])
		tris := delaunay(pts)
		var kept [][3]int
		for _, t := range tris {
			c := scale(add(add(pts[t[0]], pts[t[1]]), pts[t[2]]), 1.0/3)
			if polys[0].contains(c) {
				kept = append(kept, t)
			}
		}
		s.mesh2d.appendTriangles(pts, kept)
	case backend.OpMesh2dMakeFromSamples:
		a := args.(*backend.GeometryArgs)
		pts, _ := samples(a.Geometry)
		tris := delaunay(pts)
		if len(tris) == 0 {
			return e.setErr(backend.StatusInvalidGeometry, "%s: samples do not span a triangle", op)
		}
		s.mesh2d.appendTriangles(pts, tris)
	case backend.OpRefinePolygon:
		a := args.(*backend.RefinePolygonArgs)
		x, y, err := refinePolygon(a)
		if err != nil {
			return e.setErr(backend.StatusRangeError, "%s: %v", op, err)
		}
		a.Result = e.allocate(x, y, make([]float64, len(x)))
		a.Result.Geometry.GeometrySeparator = a.Polygon.GeometrySeparator
		a.Result.Geometry.InnerOuterSeparator = a.Polygon.InnerOuterSeparator
	case backend.OpMesh2dRefineBasedOnSamples, backend.OpMesh2dRefineBasedOnPolygon, backend.OpCurvilinearOrthogonalFromSpline:
		return e.setErr(backend.StatusNotImplemented, "%s is not available in the reference engine", op)
	case backend.OpPointsInPolygon:
		a := args.(*backend.PointsInPolygonArgs)
		polys := parsePolygons(a.Polygon)
		n := len(a.Points.X)
		x := append([]float64(nil), a.Points.X...)
		y := append([]float64(nil), a.Points.Y...)
		v := make([]float64, n)
		for i := 0; i < n; i++ {
			switch {
			case x[i] == a.Points.GeometrySeparator || x[i] == a.Points.InnerOuterSeparator:
				v[i] = x[i]
			case len(polys) > 0 && polys.contains(point{X: x[i], Y: y[i]}):
				v[i] = 1
			}
		}
		a.Result = e.allocate(x, y, v)
	case backend.OpMesh2dOrthogonality:
		a := args.(*backend.ResultArgs)
		o := s.mesh2d.orthogonality()
		x := make([]float64, len(o))
		y := make([]float64, len(o))
		for i := range o {
			mid := s.mesh2d.edgeMid(i)
			x[i], y[i] = mid.X, mid.Y
		}
		a.Result = e.allocate(x, y, o)
	case backend.OpMesh2dComputeOrthogonalization:
		a := args.(*backend.Mesh2dOrthogonalizationArgs)
		if a.ProjectToLandBoundary < 0 || a.ProjectToLandBoundary > 4 {
			return e.setErr(backend.StatusRangeError, "%s: unknown land boundary option %d", op, a.ProjectToLandBoundary)
		}
		polys := parsePolygons(a.Polygon)
		boundary := s.mesh2d.boundaryNodes()
		free := make([]bool, len(s.mesh2d.x))
		for i := range free {
			free[i] = !boundary[i] && polys.contains(s.mesh2d.node(int32(i)))
		}
		sweeps := max(1, int(a.Parameters.OuterIterations)) * max(1, int(a.Parameters.InnerIterations))
		s.mesh2d.smooth(free, sweeps)
	case backend.OpMesh2dTriangulationInterpolation:
		a := args.(*backend.TriangulationInterpolationArgs)
		targets, _, ok := s.mesh2d.locations(a.Location)
		if !ok {
			return e.setErr(backend.StatusRangeError, "%s: unknown location %d", op, a.Location)
		}
		pts, vals := samples(a.Samples)
		a.Result = e.interpolated(targets, triangulationInterpolate(pts, vals, targets))
	case backend.OpMesh2dAveragingInterpolation:
		a := args.(*backend.AveragingInterpolationArgs)
		targets, sizes, ok := s.mesh2d.locations(a.Location)
		if !ok {
			return e.setErr(backend.StatusRangeError, "%s: unknown location %d", op, a.Location)
		}
		if a.AveragingMethod < 1 || a.AveragingMethod > 6 {
			return e.setErr(backend.StatusNotImplemented, "%s: averaging method %d is not supported", op, a.AveragingMethod)
		}
		pts, vals := samples(a.Samples)
		a.Result = e.interpolated(targets, averagingInterpolate(pts, vals, targets, sizes, a))
	case backend.OpCurvilinearMakeUniform:
		a := args.(*backend.MakeUniformArgs)
		g, err := makeUniform(a.Parameters, parsePolygons(a.Polygon))
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
		}
		s.grid = g
	case backend.OpCurvilinearTransfiniteFromSpline:
		a := args.(*backend.TransfiniteArgs)
		var splines []polyline
		for _, pl := range polylines(a.Splines) {
			splines = append(splines, polyline(pl))
		}
		g, err := transfinite(splines, a.Parameters)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
		}
		s.grid = g
	case backend.OpCurvilinearConvertToMesh2d:
		if s.grid.empty() {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, errNoGrid)
		}
		s.mesh2d.append(s.grid.toMesh2d())
		s.grid = newGrid(0, 0, nil, nil)
	case backend.OpCurvilinearRefine, backend.OpCurvilinearDerefine:
		var first, second point
		factor := 1
		if a, ok := args.(*backend.RefineArgs); ok {
			first, second, factor = a.First, a.Second, int(a.Refinement)
		} else {
			a := args.(*backend.SegmentArgs)
			first, second = a.First, a.Second
		}
		if factor < 1 {
			return e.setErr(backend.StatusRangeError, "%s: refinement %d must be at least 1", op, factor)
		}
		l, err := s.grid.lineBetween(first, second)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
		}
		if op == backend.OpCurvilinearRefine {
			s.grid = s.grid.alongLine(l, func(g *grid, lo, hi int) *grid { return g.refineM(lo, hi, factor) })
		} else {
			s.grid = s.grid.alongLine(l, func(g *grid, lo, hi int) *grid { return g.derefineM(lo, hi) })
		}
	case backend.OpCurvilinearInsertFace:
		a := args.(*backend.PointArgs)
		if s.grid.empty() {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, errNoGrid)
		}
		g, err := s.grid.insertFace(a.Point)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
		}
		s.grid = g
	case backend.OpCurvilinearDeleteNode:
		a := args.(*backend.PointArgs)
		node, ok := s.grid.closest(a.Point)
		if !ok {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, errNoGrid)
		}
		s.grid.clear(node.m, node.n)
	case backend.OpCurvilinearMoveNode:
		a := args.(*backend.SegmentArgs)
		node, ok := s.grid.closest(a.First)
		if !ok {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, errNoGrid)
		}
		s.grid.set(node.m, node.n, a.Second)
	case backend.OpCurvilinearDeleteInterior, backend.OpCurvilinearDeleteExterior:
		a := args.(*backend.SegmentArgs)
		b, err := s.grid.blockBetween(a.First, a.Second)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: %v", op, err)
		}
		interior := op == backend.OpCurvilinearDeleteInterior
		for n := 0; n < s.grid.n; n++ {
			for m := 0; m < s.grid.m; m++ {
				strictlyInside := m > b.lo.m && m < b.hi.m && n > b.lo.n && n < b.hi.n
				if (interior && strictlyInside) || (!interior && !b.contains(gridNode{m: m, n: n})) {
					s.grid.clear(m, n)
				}
			}
		}
	case backend.OpContactsComputeSingle, backend.OpContactsComputeMultiple, backend.OpContactsComputeWithPolygons,
		backend.OpContactsComputeWithPoints, backend.OpContactsComputeBoundary:
		a := args.(*backend.ContactsArgs)
		if len(a.Mesh1dMask) != len(s.mesh1d.x) {
			return e.setErr(backend.StatusRangeError, "%s: mask has %d entries for %d mesh1d nodes", op, len(a.Mesh1dMask), len(s.mesh1d.x))
		}
		c := newContactFinder(s, a.Mesh1dMask)
		switch op {
		case backend.OpContactsComputeSingle:
			s.contacts = c.single(parsePolygons(a.Geometry))
		case backend.OpContactsComputeMultiple:
			s.contacts = c.multiple()
		case backend.OpContactsComputeWithPolygons:
			s.contacts = c.withPolygons(parsePolygons(a.Geometry))
		case backend.OpContactsComputeWithPoints:
			pts, _ := samples(a.Geometry)
			s.contacts = c.withPoints(pts)
		default:
			s.contacts = c.boundary(parsePolygons(a.Geometry), a.SearchRadius)
		}
	default:
		return e.setErr(backend.StatusNotImplemented, "unknown operation %q", op)
	}
	return backend.StatusSuccess
}

func (e *Engine) interpolated(targets []point, values []float64) backend.Allocation {
	x := make([]float64, len(targets))
	y := make([]float64, len(targets))
	for i, p := range targets {
		x[i], y[i] = p.X, p.Y
	}
	return e.allocate(x, y, values)
}

// polygonSeeds returns the ring vertices plus interior lattice points spaced
// by the mean ring segment length.
func polygonSeeds(p polygon) []point {
	r := p.outer
	pts := append([]point(nil), r...)
	var perim float64
	lo := point{X: math.Inf(1), Y: math.Inf(1)}
	hi := point{X: math.Inf(-1), Y: math.Inf(-1)}
	for i := range r {
		perim += dist(r[i], r[(i+1)%len(r)])
		lo = point{X: math.Min(lo.X, r[i].X), Y: math.Min(lo.Y, r[i].Y)}
		hi = point{X: math.Max(hi.X, r[i].X), Y: math.Max(hi.Y, r[i].Y)}
	}
	h := perim / float64(len(r))
	if h <= 0 {
		return pts
	}
	for y := lo.Y + h; y < hi.Y; y += h {
		for x := lo.X + h; x < hi.X; x += h {
			q := point{X: x, Y: y}
			if !p.contains(q) || onRing(r, q) {
				continue
			}
			near := false
			for i := range r {
				if segmentDistance(q, r[i], r[(i+1)%len(r)]) < h/2 {
					near = true
					break
				}
			}
			if !near {
				pts = append(pts, q)
			}
		}
	}
	return pts
}

// refinePolygon inserts points on the segments between polygon nodes first
// and second so that no piece exceeds the target length.
func refinePolygon(a *backend.RefinePolygonArgs) ([]float64, []float64, error) {
	n := int32(len(a.Polygon.X))
	if a.FirstNode < 0 || a.SecondNode >= n || a.FirstNode >= a.SecondNode {
		return nil, nil, errRange(a.FirstNode, a.SecondNode, n)
	}
	if a.TargetEdgeLength <= 0 {
		return nil, nil, errTarget(a.TargetEdgeLength)
	}
	var x, y []float64
	for i := int32(0); i < n; i++ {
		x = append(x, a.Polygon.X[i])
		y = append(y, a.Polygon.Y[i])
		if i < a.FirstNode || i >= a.SecondNode {
			continue
		}
		p := point{X: a.Polygon.X[i], Y: a.Polygon.Y[i]}
		q := point{X: a.Polygon.X[i+1], Y: a.Polygon.Y[i+1]}
		pieces := int(math.Ceil(dist(p, q)/a.TargetEdgeLength - eps))
		for k := 1; k < pieces; k++ {
			r := lerp(p, q, float64(k)/float64(pieces))
			x = append(x, r.X)
			y = append(y, r.Y)
		}
	}
	return x, y, nil
}

// triangulationInterpolate interpolates linearly inside the Delaunay
// triangulation of the samples. Targets outside it take the linear
// extrapolation of the nearest triangle.
func triangulationInterpolate(pts []point, vals []float64, targets []point) []float64 {
	out := make([]float64, len(targets))
	tris := delaunay(pts)
	for i, p := range targets {
		out[i] = missing
		best, bestD := -1, math.Inf(1)
		for ti, t := range tris {
			a, b, c := pts[t[0]], pts[t[1]], pts[t[2]]
			wa, wb, wc, ok := barycentric(p, a, b, c)
			if !ok {
				continue
			}
			if wa >= -eps && wb >= -eps && wc >= -eps {
				best, bestD = ti, 0
				break
			}
			d := math.Min(segmentDistance(p, a, b), math.Min(segmentDistance(p, b, c), segmentDistance(p, c, a)))
			if d < bestD {
				best, bestD = ti, d
			}
		}
		if best < 0 {
			continue
		}
		t := tris[best]
		wa, wb, wc, _ := barycentric(p, pts[t[0]], pts[t[1]], pts[t[2]])
		out[i] = wa*vals[t[0]] + wb*vals[t[1]] + wc*vals[t[2]]
	}
	return out
}

// averagingInterpolate combines the samples within relativeSearchSize times
// the location size of each target.
func averagingInterpolate(pts []point, vals []float64, targets []point, sizes []float64, a *backend.AveragingInterpolationArgs) []float64 {
	out := make([]float64, len(targets))
	for i, p := range targets {
		radius := a.RelativeSearchSize * sizes[i]
		var sel []float64
		var dists []float64
		for k, q := range pts {
			if d := dist(p, q); d <= radius+eps {
				sel = append(sel, vals[k])
				dists = append(dists, d)
			}
		}
		if len(sel) == 0 || len(sel) < int(a.MinSamples) {
			out[i] = missing
			continue
		}
		out[i] = combine(a.AveragingMethod, sel, dists)
	}
	return out
}

func combine(method int32, vals, dists []float64) float64 {
	switch method {
	case 2:
		best := 0
		for k := range dists {
			if dists[k] < dists[best] {
				best = k
			}
		}
		return vals[best]
	case 3:
		v := math.Inf(-1)
		for _, x := range vals {
			v = math.Max(v, x)
		}
		return v
	case 4:
		v := math.Inf(1)
		for _, x := range vals {
			v = math.Min(v, x)
		}
		return v
	case 5:
		var num, den float64
		for k, x := range vals {
			if dists[k] < eps {
				return x
			}
			num += x / dists[k]
			den += 1 / dists[k]
		}
		return num / den
	case 6:
		v := vals[0]
		for _, x := range vals[1:] {
			if math.Abs(x) < math.Abs(v) {
				v = x
			}
		}
		return v
	default:
		var sum float64
		for _, x := range vals {
			sum += x
		}
		return sum / float64(len(vals))
	}
}

// checkSeparators rejects non-empty geometry arguments whose separators are
// unset or equal; either would turn ordinary coordinates into separators.
func checkSeparators(args any) error {
	v := reflect.ValueOf(args)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanInterface() {
			continue
		}
		g, ok := f.Interface().(backend.GeometryList)
		if !ok || len(g.X) == 0 {
			continue
		}
		name := v.Type().Field(i).Name
		switch {
		case g.GeometrySeparator == 0 || g.InnerOuterSeparator == 0:
			return fmt.Errorf("%s: separators must be set, got %g and %g", name, g.GeometrySeparator, g.InnerOuterSeparator)
		case g.GeometrySeparator == g.InnerOuterSeparator:
			return fmt.Errorf("%s: geometry and inner/outer separators are both %g", name, g.GeometrySeparator)
		}
	}
	return nil
}
