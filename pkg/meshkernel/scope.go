package meshkernel

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Scope is exclusive access to one session for the duration of a
// Session.With callback. Every engine operation is a Scope method; using a
// Scope after its callback returned is an invalid-state error.
//
// A Scope may be shared by goroutines started inside the callback. Their
// engine calls are serialised on the session, never interleaved.
type Scope struct {
	m     *Manager
	s     *session
	ctx   context.Context
	valid atomic.Bool
}

// Handle returns the handle of the session the scope belongs to.
func (sc *Scope) Handle() Handle { return sc.s.handle }

func (sc *Scope) check(op string) error {
	if !sc.valid.Load() {
		return invalidStatef(op, "scope used after its Session.With callback returned")
	}
	return nil
}

// exclusive runs fn holding the session's call lock. Multi-step engine
// sequences go through one exclusive so no other call lands in between.
func (sc *Scope) exclusive(op string, fn func() error) error {
	if err := sc.check(op); err != nil {
		return err
	}
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if err := sc.check(op); err != nil {
		return err
	}
	if sc.s.doomed() {
		return invalidHandle(op, sc.s.handle)
	}
	return fn()
}

// call performs one engine call and translates its status.
func (sc *Scope) call(op string, fn func(id backend.ContextID) backend.Status) error {
	return sc.exclusive(op, func() error { return sc.invoke(op, fn) })
}

// invoke requires the call lock.
func (sc *Scope) invoke(op string, fn func(id backend.ContextID) backend.Status) error {
	start := time.Now()
	st := fn(sc.s.id)
	elapsed := time.Since(start)
	err := RemapError(op, backend.Check(sc.m.engine, op, st))

	sc.m.metrics.engineCall(op, elapsed, err)
	sc.m.logger.Debug(sc.ctx, "engine call", "op", op, "handle", sc.s.handle, "session", sc.s.label, "status", st.String(), "duration", elapsed)
	if err != nil {
		sc.m.logger.Warn(sc.ctx, "engine call failed", "op", op, "session", sc.s.label, "error", err)
	}
	return err
}

func (sc *Scope) run(op backend.Op, args any) error {
	return sc.call(string(op), func(id backend.ContextID) backend.Status {
		return sc.m.engine.Run(id, op, args)
	})
}

// take copies an engine allocation out and releases it. The allocation is
// released even when the scope has expired in the meantime.
func (sc *Scope) take(op backend.Op, a backend.Allocation) (GeometryList, error) {
	sc.s.mu.Lock()
	g, err := backend.TakeGeometry(sc.m.engine, string(op), a)
	sc.s.mu.Unlock()
	if err != nil {
		return GeometryList{}, RemapError(string(op), err)
	}
	return geometryFromBackend(g), nil
}

// SetMesh1d replaces the session's 1d mesh.
func (sc *Scope) SetMesh1d(m Mesh1d) error {
	return sc.call("mesh1d_set", func(id backend.ContextID) backend.Status {
		return sc.m.engine.SetMesh1d(id, m.toBackend())
	})
}

// Mesh1d returns a copy of the session's 1d mesh.
func (sc *Scope) Mesh1d() (Mesh1d, error) {
	var b backend.Mesh1d
	err := sc.exclusive("mesh1d_get", func() error {
		if err := sc.invoke("mesh1d_get_dimensions", func(id backend.ContextID) backend.Status {
			return sc.m.engine.Mesh1dDimensions(id, &b)
		}); err != nil {
			return err
		}
		b.Allocate()
		return sc.invoke("mesh1d_get_data", func(id backend.ContextID) backend.Status {
			return sc.m.engine.Mesh1dData(id, &b)
		})
	})
	if err != nil {
		return Mesh1d{}, err
	}
	return mesh1dFromBackend(b), nil
}

// SetMesh2d replaces the session's 2d mesh.
func (sc *Scope) SetMesh2d(m Mesh2d) error {
	return sc.call("mesh2d_set", func(id backend.ContextID) backend.Status {
		return sc.m.engine.SetMesh2d(id, m.toBackend())
	})
}

// Mesh2d returns a copy of the session's 2d mesh with faces, edge mid points
// and face mass centres filled in.
func (sc *Scope) Mesh2d() (Mesh2d, error) {
	var b backend.Mesh2d
	err := sc.exclusive("mesh2d_get", func() error {
		if err := sc.invoke("mesh2d_get_dimensions", func(id backend.ContextID) backend.Status {
			return sc.m.engine.Mesh2dDimensions(id, &b)
		}); err != nil {
			return err
		}
		b.Allocate()
		return sc.invoke("mesh2d_get_data", func(id backend.ContextID) backend.Status {
			return sc.m.engine.Mesh2dData(id, &b)
		})
	})
	if err != nil {
		return Mesh2d{}, err
	}
	return mesh2dFromBackend(b), nil
}

// Mesh2dDelete removes the part of the mesh inside polygon, or outside it
// when invert is set. An empty polygon selects the whole mesh.
func (sc *Scope) Mesh2dDelete(polygon GeometryList, option DeleteMeshOption, invert bool) error {
	if !option.valid() {
		return validationf(string(backend.OpMesh2dDelete), "unknown delete option %d", option)
	}
	return sc.run(backend.OpMesh2dDelete, &backend.Mesh2dDeleteArgs{
		Polygon:        polygon.toBackend(),
		DeletionOption: int32(option),
		InvertDeletion: invert,
	})
}

// Mesh2dInsertEdge connects two existing nodes and returns the new edge
// index.
func (sc *Scope) Mesh2dInsertEdge(start, end int) (int, error) {
	if start < 0 || end < 0 || !fitsInt32(start, end) {
		return 0, validationf(string(backend.OpMesh2dInsertEdge), "node indices %d and %d must be in [0, %d]", start, end, math.MaxInt32)
	}
	args := &backend.Mesh2dInsertEdgeArgs{StartNode: int32(start), EndNode: int32(end)}
	if err := sc.run(backend.OpMesh2dInsertEdge, args); err != nil {
		return 0, err
	}
	return int(args.EdgeIndex), nil
}

// Mesh2dInsertNode adds an unconnected node and returns its index.
func (sc *Scope) Mesh2dInsertNode(p Point) (int, error) {
	args := &backend.Mesh2dInsertNodeArgs{Point: p.toBackend()}
	if err := sc.run(backend.OpMesh2dInsertNode, args); err != nil {
		return 0, err
	}
	return int(args.NodeIndex), nil
}

// Mesh2dDeleteNode removes a node and its edges. Nodes after it shift down by
// one.
func (sc *Scope) Mesh2dDeleteNode(node int) error {
	if node < 0 || !fitsInt32(node) {
		return validationf(string(backend.OpMesh2dDeleteNode), "node index %d must be in [0, %d]", node, math.MaxInt32)
	}
	return sc.run(backend.OpMesh2dDeleteNode, &backend.NodeIndexArgs{NodeIndex: int32(node)})
}

func (sc *Scope) Mesh2dMoveNode(p Point, node int) error {
	if node < 0 || !fitsInt32(node) {
		return validationf(string(backend.OpMesh2dMoveNode), "node index %d must be in [0, %d]", node, math.MaxInt32)
	}
	return sc.run(backend.OpMesh2dMoveNode, &backend.Mesh2dMoveNodeArgs{Point: p.toBackend(), NodeIndex: int32(node)})
}

// Mesh2dDeleteEdge removes the edge closest to p.
func (sc *Scope) Mesh2dDeleteEdge(p Point) error {
	return sc.run(backend.OpMesh2dDeleteEdge, &backend.PointArgs{Point: p.toBackend()})
}

// Mesh2dFindEdge returns the index of the edge closest to p.
func (sc *Scope) Mesh2dFindEdge(p Point) (int, error) {
	args := &backend.Mesh2dFindEdgeArgs{Point: p.toBackend()}
	if err := sc.run(backend.OpMesh2dFindEdge, args); err != nil {
		return 0, err
	}
	return int(args.EdgeIndex), nil
}

// Mesh2dNodeIndex returns the node closest to p within radius.
func (sc *Scope) Mesh2dNodeIndex(p Point, radius float64) (int, error) {
	if !positive(radius) {
		return 0, validationf(string(backend.OpMesh2dNodeIndex), "search radius %g must be positive", radius)
	}
	args := &backend.Mesh2dNodeIndexArgs{Point: p.toBackend(), SearchRadius: radius}
	if err := sc.run(backend.OpMesh2dNodeIndex, args); err != nil {
		return 0, err
	}
	return int(args.NodeIndex), nil
}

// Mesh2dCountHangingEdges counts edges with an endpoint no other edge uses.
func (sc *Scope) Mesh2dCountHangingEdges() (int, error) {
	args := &backend.CountArgs{}
	if err := sc.run(backend.OpMesh2dCountHangingEdges, args); err != nil {
		return 0, err
	}
	return int(args.Count), nil
}

func (sc *Scope) Mesh2dDeleteHangingEdges() error {
	return sc.run(backend.OpMesh2dDeleteHangingEdges, nil)
}

// Mesh2dMakeFromPolygon triangulates the inside of polygon and adds the
// triangles to the mesh.
func (sc *Scope) Mesh2dMakeFromPolygon(polygon GeometryList) error {
	if polygon.IsEmpty() {
		return validationf(string(backend.OpMesh2dMakeFromPolygon), "empty polygon")
	}
	return sc.run(backend.OpMesh2dMakeFromPolygon, &backend.GeometryArgs{Geometry: polygon.toBackend()})
}

// Mesh2dMakeFromSamples adds the Delaunay triangulation of the samples.
func (sc *Scope) Mesh2dMakeFromSamples(samples GeometryList) error {
	if samples.IsEmpty() {
		return validationf(string(backend.OpMesh2dMakeFromSamples), "no samples")
	}
	return sc.run(backend.OpMesh2dMakeFromSamples, &backend.GeometryArgs{Geometry: samples.toBackend()})
}

// RefinePolygon inserts points between the polygon nodes first and second so
// no segment is longer than targetEdgeLength.
func (sc *Scope) RefinePolygon(polygon GeometryList, first, second int, targetEdgeLength float64) (GeometryList, error) {
	const op = backend.OpRefinePolygon
	if first < 0 || second < 0 || first >= polygon.Len() || second >= polygon.Len() {
		return GeometryList{}, validationf(string(op), "nodes %d and %d must be in [0, %d)", first, second, polygon.Len())
	}
	if !positive(targetEdgeLength) {
		return GeometryList{}, validationf(string(op), "target edge length %g must be positive", targetEdgeLength)
	}
	args := &backend.RefinePolygonArgs{
		Polygon:          polygon.toBackend(),
		FirstNode:        int32(first),
		SecondNode:       int32(second),
		TargetEdgeLength: targetEdgeLength,
	}
	if err := sc.run(op, args); err != nil {
		return GeometryList{}, err
	}
	return sc.take(op, args.Result)
}

// Mesh2dRefineBasedOnSamples refines the mesh where samples demand it.
func (sc *Scope) Mesh2dRefineBasedOnSamples(samples GeometryList, interp InterpolationParameters, refine SampleRefineParameters) error {
	if err := interp.Validate(); err != nil {
		return err
	}
	if err := refine.Validate(); err != nil {
		return err
	}
	return sc.run(backend.OpMesh2dRefineBasedOnSamples, &backend.RefineBasedOnSamplesArgs{
		Samples:       samples.toBackend(),
		Interpolation: interp.toBackend(),
		SampleRefine:  refine.toBackend(),
	})
}

// Mesh2dRefineBasedOnPolygon refines the faces inside polygon.
func (sc *Scope) Mesh2dRefineBasedOnPolygon(polygon GeometryList, interp InterpolationParameters) error {
	if err := interp.Validate(); err != nil {
		return err
	}
	return sc.run(backend.OpMesh2dRefineBasedOnPolygon, &backend.RefineBasedOnPolygonArgs{
		Polygon:       polygon.toBackend(),
		Interpolation: interp.toBackend(),
	})
}

// PointsInPolygon marks each point with 1 inside polygon and 0 outside.
// Separators in points are preserved.
func (sc *Scope) PointsInPolygon(polygon, points GeometryList) (GeometryList, error) {
	const op = backend.OpPointsInPolygon
	args := &backend.PointsInPolygonArgs{Polygon: polygon.toBackend(), Points: points.toBackend()}
	if err := sc.run(op, args); err != nil {
		return GeometryList{}, err
	}
	return sc.take(op, args.Result)
}

// Mesh2dOrthogonality returns one value per edge, located at the edge mid
// points. Boundary edges carry MissingValue.
func (sc *Scope) Mesh2dOrthogonality() (GeometryList, error) {
	const op = backend.OpMesh2dOrthogonality
	args := &backend.ResultArgs{}
	if err := sc.run(op, args); err != nil {
		return GeometryList{}, err
	}
	return sc.take(op, args.Result)
}

// Mesh2dComputeOrthogonalization improves the orthogonality of the mesh
// inside polygon in one call.
func (sc *Scope) Mesh2dComputeOrthogonalization(project ProjectToLandBoundaryOption, params OrthogonalizationParameters, polygon, landBoundaries GeometryList) error {
	const op = backend.OpMesh2dComputeOrthogonalization
	if !project.valid() {
		return validationf(string(op), "unknown land boundary option %d", project)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return sc.run(op, &backend.Mesh2dOrthogonalizationArgs{
		ProjectToLandBoundary: int32(project),
		Parameters:            params.toBackend(),
		Polygon:               polygon.toBackend(),
		LandBoundaries:        landBoundaries.toBackend(),
	})
}

// Mesh2dTriangulationInterpolation interpolates sample values linearly onto
// the mesh locations.
func (sc *Scope) Mesh2dTriangulationInterpolation(samples GeometryList, loc Mesh2dLocation) (GeometryList, error) {
	const op = backend.OpMesh2dTriangulationInterpolation
	if !loc.valid() {
		return GeometryList{}, validationf(string(op), "unknown location %d", loc)
	}
	args := &backend.TriangulationInterpolationArgs{Samples: samples.toBackend(), Location: int32(loc)}
	if err := sc.run(op, args); err != nil {
		return GeometryList{}, err
	}
	return sc.take(op, args.Result)
}

// Mesh2dAveragingInterpolation averages the samples around each mesh
// location. Locations with fewer than minSamples samples in range get
// MissingValue.
func (sc *Scope) Mesh2dAveragingInterpolation(samples GeometryList, loc Mesh2dLocation, method AveragingMethod, relativeSearchSize float64, minSamples int) (GeometryList, error) {
	const op = backend.OpMesh2dAveragingInterpolation
	switch {
	case !loc.valid():
		return GeometryList{}, validationf(string(op), "unknown location %d", loc)
	case !method.valid():
		return GeometryList{}, validationf(string(op), "unknown averaging method %d", method)
	case !positive(relativeSearchSize):
		return GeometryList{}, validationf(string(op), "relative search size %g must be positive", relativeSearchSize)
	case minSamples < 0 || !fitsInt32(minSamples):
		return GeometryList{}, validationf(string(op), "minimum sample count %d must be in [0, %d]", minSamples, math.MaxInt32)
	}
	args := &backend.AveragingInterpolationArgs{
		Samples:            samples.toBackend(),
		Location:           int32(loc),
		AveragingMethod:    int32(method),
		RelativeSearchSize: relativeSearchSize,
		MinSamples:         int32(minSamples),
	}
	if err := sc.run(op, args); err != nil {
		return GeometryList{}, err
	}
	return sc.take(op, args.Result)
}
