//go:build cgo && meshkernel

package backend

/*
#cgo LDFLAGS: -lMeshKernelApi
#include <stdlib.h>
#include <string.h>
#include "capi.h"
*/
import "C"

import (
	"math"
	"runtime"
	"sync"
	"unsafe"
)

// NativeAvailable reports whether the native engine was linked.
const NativeAvailable = true

// NewNative returns the engine backed by libMeshKernelApi.
func NewNative() (Engine, error) {
	return &native{
		allocs:  make(map[AllocID]unsafe.Pointer),
		pending: make(map[ContextID]*pendingAlgorithm),
	}, nil
}

// pendingAlgorithm accumulates the configuration of the algorithms the
// library exposes as a single call.
type pendingAlgorithm struct {
	alg      Algorithm
	factor   float64
	iters    int32
	line     *[2]Point
	block    *[2]Point
	executed bool
}

type native struct {
	mu      sync.Mutex
	next    AllocID
	allocs  map[AllocID]unsafe.Pointer
	pending map[ContextID]*pendingAlgorithm
	lastErr string
}

func (n *native) Version() string {
	buf := (*C.char)(C.calloc(C.MKERNEL_VERSION_BUFFER, 1))
	defer C.free(unsafe.Pointer(buf))
	if C.mkernel_get_version(buf) != 0 {
		return "unknown"
	}
	return C.GoString(buf)
}

func (n *native) LastError() string {
	n.mu.Lock()
	msg := n.lastErr
	n.mu.Unlock()
	if msg != "" {
		return msg
	}
	buf := (*C.char)(C.calloc(C.MKERNEL_ERROR_BUFFER, 1))
	defer C.free(unsafe.Pointer(buf))
	if C.mkernel_get_error(buf) != 0 {
		return ""
	}
	return C.GoString(buf)
}

// fail records a binding-side diagnostic for the next LastError call.
func (n *native) fail(st Status, msg string) Status {
	n.mu.Lock()
	n.lastErr = msg
	n.mu.Unlock()
	return st
}

func (n *native) status(rc C.int) Status {
	n.mu.Lock()
	n.lastErr = ""
	n.mu.Unlock()
	return Status(rc)
}

func (n *native) Allocate(projection int32) (ContextID, Status) {
	var id C.int
	st := n.status(C.mkernel_allocate_state(C.int(projection), &id))
	return ContextID(id), st
}

func (n *native) Deallocate(id ContextID) Status {
	n.mu.Lock()
	delete(n.pending, id)
	n.mu.Unlock()
	return n.status(C.mkernel_deallocate_state(C.int(id)))
}

// Free releases a geometry allocated by allocGeometry.
func (n *native) Free(alloc AllocID) Status {
	n.mu.Lock()
	block, ok := n.allocs[alloc]
	delete(n.allocs, alloc)
	n.mu.Unlock()
	if !ok {
		return n.fail(StatusInvalidState, "free: unknown or already released allocation")
	}
	C.free(block)
	return StatusSuccess
}

// allocGeometry reserves C memory for a geometry of size points that the
// library fills in. The returned Allocation views that memory until Free.
func (n *native) allocGeometry(size int) (Allocation, *C.mk_geometry_list) {
	count := size
	if count == 0 {
		count = 1
	}
	bytes := C.size_t(unsafe.Sizeof(C.mk_geometry_list{})) + 3*C.size_t(count)*C.size_t(unsafe.Sizeof(C.double(0)))
	block := C.calloc(1, bytes)
	cg := (*C.mk_geometry_list)(block)
	base := unsafe.Add(block, unsafe.Sizeof(C.mk_geometry_list{}))
	stride := uintptr(count) * unsafe.Sizeof(C.double(0))
	cg.geometry_separator = C.double(GeometrySeparator)
	cg.inner_outer_separator = C.double(InnerOuterSeparator)
	cg.num_coordinates = C.int(size)
	cg.coordinates_x = (*C.double)(base)
	cg.coordinates_y = (*C.double)(unsafe.Add(base, stride))
	cg.values = (*C.double)(unsafe.Add(base, 2*stride))

	n.mu.Lock()
	n.next++
	id := n.next
	n.allocs[id] = block
	n.mu.Unlock()
	return Allocation{ID: id}, cg
}

// viewGeometry exposes the filled C geometry as Go slices without copying.
func viewGeometry(a *Allocation, cg *C.mk_geometry_list) {
	size := int(cg.num_coordinates)
	a.Geometry = GeometryList{
		GeometrySeparator:   float64(cg.geometry_separator),
		InnerOuterSeparator: float64(cg.inner_outer_separator),
		X:                   unsafe.Slice((*float64)(unsafe.Pointer(cg.coordinates_x)), size),
		Y:                   unsafe.Slice((*float64)(unsafe.Pointer(cg.coordinates_y)), size),
		Values:              unsafe.Slice((*float64)(unsafe.Pointer(cg.values)), size),
	}
}

var (
	emptyDoubles = make([]float64, 1)
	emptyInts    = make([]int32, 1)
)

func doubles(p *runtime.Pinner, s []float64) *C.double {
	if len(s) == 0 {
		s = emptyDoubles
	}
	p.Pin(&s[0])
	return (*C.double)(unsafe.Pointer(&s[0]))
}

func ints(p *runtime.Pinner, s []int32) *C.int {
	if len(s) == 0 {
		s = emptyInts
	}
	p.Pin(&s[0])
	return (*C.int)(unsafe.Pointer(&s[0]))
}

func cGeometry(p *runtime.Pinner, g GeometryList) *C.mk_geometry_list {
	cg := &C.mk_geometry_list{
		geometry_separator:    C.double(g.GeometrySeparator),
		inner_outer_separator: C.double(g.InnerOuterSeparator),
		num_coordinates:       C.int(len(g.X)),
		coordinates_x:         doubles(p, g.X),
		coordinates_y:         doubles(p, g.Y),
		values:                doubles(p, g.Values),
	}
	p.Pin(cg)
	return cg
}

func cPoint(p *runtime.Pinner, pt Point) *C.mk_geometry_list {
	return cGeometry(p, GeometryList{
		GeometrySeparator:   GeometrySeparator,
		InnerOuterSeparator: InnerOuterSeparator,
		X:                   []float64{pt.X},
		Y:                   []float64{pt.Y},
		Values:              []float64{0},
	})
}

func cMesh1d(p *runtime.Pinner, m *Mesh1d) *C.mk_mesh1d {
	cm := &C.mk_mesh1d{
		edge_nodes: ints(p, m.EdgeNodes),
		node_x:     doubles(p, m.NodeX),
		node_y:     doubles(p, m.NodeY),
		num_nodes:  C.int(m.NumNodes),
		num_edges:  C.int(m.NumEdges),
	}
	p.Pin(cm)
	return cm
}

func cMesh2d(p *runtime.Pinner, m *Mesh2d) *C.mk_mesh2d {
	cm := &C.mk_mesh2d{
		edge_nodes:     ints(p, m.EdgeNodes),
		face_nodes:     ints(p, m.FaceNodes),
		nodes_per_face: ints(p, m.NodesPerFace),
		node_x:         doubles(p, m.NodeX),
		node_y:         doubles(p, m.NodeY),
		edge_x:         doubles(p, m.EdgeX),
		edge_y:         doubles(p, m.EdgeY),
		face_x:         doubles(p, m.FaceX),
		face_y:         doubles(p, m.FaceY),
		num_nodes:      C.int(m.NumNodes),
		num_edges:      C.int(m.NumEdges),
		num_faces:      C.int(m.NumFaces),
		num_face_nodes: C.int(m.NumFaceNodes),
	}
	p.Pin(cm)
	return cm
}

func cCurvilinear(p *runtime.Pinner, g *CurvilinearGrid) *C.mk_curvilinear_grid {
	cg := &C.mk_curvilinear_grid{
		node_x: doubles(p, g.NodeX),
		node_y: doubles(p, g.NodeY),
		num_m:  C.int(g.NumM),
		num_n:  C.int(g.NumN),
	}
	p.Pin(cg)
	return cg
}

func cOrthogonalization(p *runtime.Pinner, o OrthogonalizationParameters) *C.mk_orthogonalization_parameters {
	c := &C.mk_orthogonalization_parameters{
		outer_iterations:                                  C.int(o.OuterIterations),
		boundary_iterations:                               C.int(o.BoundaryIterations),
		inner_iterations:                                  C.int(o.InnerIterations),
		orthogonalization_to_smoothing_factor:             C.double(o.OrthogonalizationToSmoothingFactor),
		orthogonalization_to_smoothing_factor_at_boundary: C.double(o.OrthogonalizationToSmoothingFactorAtBoundary),
		areal_to_angle_smoothing_factor:                   C.double(o.ArealToAngleSmoothingFactor),
	}
	p.Pin(c)
	return c
}

func cInterpolation(p *runtime.Pinner, i InterpolationParameters) *C.mk_interpolation_parameters {
	c := &C.mk_interpolation_parameters{
		max_refinement_iterations:     C.int(i.MaxRefinementIterations),
		averaging_method:              C.int(i.AveragingMethod),
		min_points:                    C.int(i.MinPoints),
		relative_search_radius:        C.double(i.RelativeSearchRadius),
		interpolate_to:                C.int(i.InterpolateTo),
		refine_intersected:            C.int(i.RefineIntersected),
		use_mass_center_when_refining: C.int(i.UseMassCenterWhenRefining),
	}
	p.Pin(c)
	return c
}

func cCurvilinearParameters(p *runtime.Pinner, c CurvilinearParameters) *C.mk_curvilinear_parameters {
	out := &C.mk_curvilinear_parameters{
		m_refinement:         C.int(c.MRefinement),
		n_refinement:         C.int(c.NRefinement),
		smoothing_iterations: C.int(c.SmoothingIterations),
		smoothing_parameter:  C.double(c.SmoothingParameter),
		attraction_parameter: C.double(c.AttractionParameter),
	}
	p.Pin(out)
	return out
}

func (n *native) SetMesh1d(id ContextID, m Mesh1d) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_set_mesh1d(C.int(id), cMesh1d(&p, &m)))
}

func (n *native) Mesh1dDimensions(id ContextID, m *Mesh1d) Status {
	var cm C.mk_mesh1d
	st := n.status(C.mkernel_get_dimensions_mesh1d(C.int(id), &cm))
	m.NumNodes, m.NumEdges = int32(cm.num_nodes), int32(cm.num_edges)
	return st
}

func (n *native) Mesh1dData(id ContextID, m *Mesh1d) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_get_data_mesh1d(C.int(id), cMesh1d(&p, m)))
}

func (n *native) SetMesh2d(id ContextID, m Mesh2d) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_set_mesh2d(C.int(id), cMesh2d(&p, &m)))
}

func (n *native) Mesh2dDimensions(id ContextID, m *Mesh2d) Status {
	var cm C.mk_mesh2d
	st := n.status(C.mkernel_get_dimensions_mesh2d(C.int(id), &cm))
	m.NumNodes = int32(cm.num_nodes)
	m.NumEdges = int32(cm.num_edges)
	m.NumFaces = int32(cm.num_faces)
	m.NumFaceNodes = int32(cm.num_face_nodes)
	return st
}

func (n *native) Mesh2dData(id ContextID, m *Mesh2d) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_get_data_mesh2d(C.int(id), cMesh2d(&p, m)))
}

func (n *native) SetCurvilinear(id ContextID, g CurvilinearGrid) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_curvilinear_set(C.int(id), cCurvilinear(&p, &g)))
}

func (n *native) CurvilinearDimensions(id ContextID, g *CurvilinearGrid) Status {
	var cg C.mk_curvilinear_grid
	st := n.status(C.mkernel_curvilinear_get_dimensions(C.int(id), &cg))
	g.NumM, g.NumN = int32(cg.num_m), int32(cg.num_n)
	return st
}

func (n *native) CurvilinearData(id ContextID, g *CurvilinearGrid) Status {
	var p runtime.Pinner
	defer p.Unpin()
	return n.status(C.mkernel_curvilinear_get_data(C.int(id), cCurvilinear(&p, g)))
}

func (n *native) ContactsDimensions(id ContextID, c *Contacts) Status {
	var cc C.mk_contacts
	st := n.status(C.mkernel_get_dimensions_contacts(C.int(id), &cc))
	c.NumContacts = int32(cc.num_contacts)
	return st
}

func (n *native) ContactsData(id ContextID, c *Contacts) Status {
	var p runtime.Pinner
	defer p.Unpin()
	cc := &C.mk_contacts{
		mesh1d_indices: ints(&p, c.Mesh1dIndices),
		mesh2d_indices: ints(&p, c.Mesh2dIndices),
		num_contacts:   C.int(c.NumContacts),
	}
	p.Pin(cc)
	return n.status(C.mkernel_get_data_contacts(C.int(id), cc))
}

// resultSize returns the number of mesh2d entities at location.
func (n *native) resultSize(id ContextID, location int32) (int, Status) {
	var m Mesh2d
	if st := n.Mesh2dDimensions(id, &m); st != StatusSuccess {
		return 0, st
	}
	switch location {
	case 0:
		return int(m.NumFaces), StatusSuccess
	case 1:
		return int(m.NumNodes), StatusSuccess
	case 2:
		return int(m.NumEdges), StatusSuccess
	default:
		return 0, n.fail(StatusRangeError, "unknown mesh2d location")
	}
}

func (n *native) Run(id ContextID, op Op, args any) Status {
	var p runtime.Pinner
	defer p.Unpin()
	cid := C.int(id)

	switch a := args.(type) {
	case *Mesh2dDeleteArgs:
		return n.status(C.mkernel_delete_mesh2d(cid, cGeometry(&p, a.Polygon), C.int(a.DeletionOption), C.bool(a.InvertDeletion)))
	case *Mesh2dInsertEdgeArgs:
		var idx C.int
		st := n.status(C.mkernel_insert_edge_mesh2d(cid, C.int(a.StartNode), C.int(a.EndNode), &idx))
		a.EdgeIndex = int32(idx)
		return st
	case *Mesh2dInsertNodeArgs:
		var idx C.int
		st := n.status(C.mkernel_insert_node_mesh2d(cid, C.double(a.Point.X), C.double(a.Point.Y), &idx))
		a.NodeIndex = int32(idx)
		return st
	case *NodeIndexArgs:
		return n.status(C.mkernel_delete_node_mesh2d(cid, C.int(a.NodeIndex)))
	case *Mesh2dMoveNodeArgs:
		return n.status(C.mkernel_move_node_mesh2d(cid, cPoint(&p, a.Point), C.int(a.NodeIndex)))
	case *Mesh2dFindEdgeArgs:
		var idx C.int
		st := n.status(C.mkernel_find_edge_mesh2d(cid, cPoint(&p, a.Point), &idx))
		a.EdgeIndex = int32(idx)
		return st
	case *Mesh2dNodeIndexArgs:
		var idx C.int
		st := n.status(C.mkernel_get_node_index_mesh2d(cid, cPoint(&p, a.Point), C.double(a.SearchRadius), &idx))
		a.NodeIndex = int32(idx)
		return st
	case *CountArgs:
		var count C.int
		st := n.status(C.mkernel_count_hanging_edges_mesh2d(cid, &count))
		a.Count = int32(count)
		return st
	case *GeometryArgs:
		if op == OpMesh2dMakeFromSamples {
			return n.status(C.mkernel_make_mesh_from_samples_mesh2d(cid, cGeometry(&p, a.Geometry)))
		}
		return n.status(C.mkernel_make_mesh_from_polygon_mesh2d(cid, cGeometry(&p, a.Geometry)))
	case *RefinePolygonArgs:
		poly := cGeometry(&p, a.Polygon)
		var count C.int
		st := n.status(C.mkernel_count_refine_polygon(cid, poly, C.int(a.FirstNode), C.int(a.SecondNode), C.double(a.TargetEdgeLength), &count))
		if st != StatusSuccess {
			return st
		}
		alloc, out := n.allocGeometry(int(count))
		out.geometry_separator = C.double(a.Polygon.GeometrySeparator)
		out.inner_outer_separator = C.double(a.Polygon.InnerOuterSeparator)
		st = n.status(C.mkernel_refine_polygon(cid, poly, C.int(a.FirstNode), C.int(a.SecondNode), C.double(a.TargetEdgeLength), out))
		return n.settle(st, &a.Result, alloc, out)
	case *RefineBasedOnSamplesArgs:
		sr := &C.mk_sample_refine_parameters{
			max_refinement_iterations:        C.int(a.SampleRefine.MaxRefinementIterations),
			min_face_size:                    C.double(a.SampleRefine.MinFaceSize),
			refinement_type:                  C.int(a.SampleRefine.RefinementType),
			connect_hanging_nodes:            C.int(a.SampleRefine.ConnectHangingNodes),
			max_time_step:                    C.double(a.SampleRefine.MaxTimeStep),
			account_for_samples_outside_face: C.int(a.SampleRefine.AccountForSamplesOutsideFace),
		}
		p.Pin(sr)
		return n.status(C.mkernel_refine_based_on_samples_mesh2d(cid, cGeometry(&p, a.Samples), cInterpolation(&p, a.Interpolation), sr))
	case *RefineBasedOnPolygonArgs:
		return n.status(C.mkernel_refine_based_on_polygon_mesh2d(cid, cGeometry(&p, a.Polygon), cInterpolation(&p, a.Interpolation)))
	case *PointsInPolygonArgs:
		alloc, out := n.allocGeometry(len(a.Points.X))
		st := n.status(C.mkernel_get_points_in_polygon(cid, cGeometry(&p, a.Polygon), cGeometry(&p, a.Points), out))
		return n.settle(st, &a.Result, alloc, out)
	case *ResultArgs:
		size, st := n.resultSize(id, 2)
		if st != StatusSuccess {
			return st
		}
		alloc, out := n.allocGeometry(size)
		st = n.status(C.mkernel_get_orthogonality_mesh2d(cid, out))
		return n.settle(st, &a.Result, alloc, out)
	case *Mesh2dOrthogonalizationArgs:
		return n.status(C.mkernel_compute_orthogonalization_mesh2d(cid, C.int(a.ProjectToLandBoundary),
			cOrthogonalization(&p, a.Parameters), cGeometry(&p, a.Polygon), cGeometry(&p, a.LandBoundaries)))
	case *TriangulationInterpolationArgs:
		size, st := n.resultSize(id, a.Location)
		if st != StatusSuccess {
			return st
		}
		alloc, out := n.allocGeometry(size)
		st = n.status(C.mkernel_triangulation_interpolation_mesh2d(cid, cGeometry(&p, a.Samples), C.int(a.Location), out))
		return n.settle(st, &a.Result, alloc, out)
	case *AveragingInterpolationArgs:
		size, st := n.resultSize(id, a.Location)
		if st != StatusSuccess {
			return st
		}
		alloc, out := n.allocGeometry(size)
		st = n.status(C.mkernel_averaging_interpolation_mesh2d(cid, cGeometry(&p, a.Samples), C.int(a.Location),
			C.int(a.AveragingMethod), C.double(a.RelativeSearchSize), C.size_t(a.MinSamples), out))
		return n.settle(st, &a.Result, alloc, out)
	case *MakeUniformArgs:
		mp := &C.mk_make_grid_parameters{
			num_columns:  C.int(a.Parameters.NumColumns),
			num_rows:     C.int(a.Parameters.NumRows),
			angle:        C.double(a.Parameters.Angle),
			origin_x:     C.double(a.Parameters.OriginX),
			origin_y:     C.double(a.Parameters.OriginY),
			block_size_x: C.double(a.Parameters.BlockSizeX),
			block_size_y: C.double(a.Parameters.BlockSizeY),
		}
		p.Pin(mp)
		return n.status(C.mkernel_curvilinear_make_uniform(cid, mp, cGeometry(&p, a.Polygon)))
	case *TransfiniteArgs:
		return n.status(C.mkernel_curvilinear_compute_transfinite_from_splines(cid, cGeometry(&p, a.Splines), cCurvilinearParameters(&p, a.Parameters)))
	case *OrthogonalFromSplinesArgs:
		s := a.SplinesToCurvilinearParameters
		sp := &C.mk_splines_to_curvilinear_parameters{
			aspect_ratio:                         C.double(s.AspectRatio),
			aspect_ratio_grow_factor:             C.double(s.AspectRatioGrowFactor),
			average_width:                        C.double(s.AverageWidth),
			curvature_adapted_grid_spacing:       C.int(s.CurvatureAdaptedGridSpacing),
			grids_on_top_of_each_other_tolerance: C.double(s.GridsOnTopOfEachOtherTolerance),
			min_cosine_crossing_angles:           C.double(s.MinCosineCrossingAngles),
			check_front_collisions:               C.int(s.CheckFrontCollisions),
			uniform_grid_size:                    C.double(s.UniformGridSize),
			remove_skinny_triangles:              C.int(s.RemoveSkinnyTriangles),
		}
		p.Pin(sp)
		return n.status(C.mkernel_curvilinear_compute_orthogonal_grid_from_splines(cid, cGeometry(&p, a.Splines), cCurvilinearParameters(&p, a.Parameters), sp))
	case *RefineArgs:
		return n.status(C.mkernel_curvilinear_refine(cid, C.double(a.First.X), C.double(a.First.Y), C.double(a.Second.X), C.double(a.Second.Y), C.int(a.Refinement)))
	case *PointArgs:
		x, y := C.double(a.Point.X), C.double(a.Point.Y)
		switch op {
		case OpMesh2dDeleteEdge:
			return n.status(C.mkernel_delete_edge_mesh2d(cid, cPoint(&p, a.Point)))
		case OpCurvilinearInsertFace:
			return n.status(C.mkernel_curvilinear_insert_face(cid, x, y))
		case OpCurvilinearDeleteNode:
			return n.status(C.mkernel_curvilinear_delete_node(cid, x, y))
		}
	case *SegmentArgs:
		x1, y1 := C.double(a.First.X), C.double(a.First.Y)
		x2, y2 := C.double(a.Second.X), C.double(a.Second.Y)
		switch op {
		case OpCurvilinearDerefine:
			return n.status(C.mkernel_curvilinear_derefine(cid, x1, y1, x2, y2))
		case OpCurvilinearMoveNode:
			return n.status(C.mkernel_curvilinear_move_node(cid, x1, y1, x2, y2))
		case OpCurvilinearDeleteInterior:
			return n.status(C.mkernel_curvilinear_delete_interior(cid, x1, y1, x2, y2))
		case OpCurvilinearDeleteExterior:
			return n.status(C.mkernel_curvilinear_delete_exterior(cid, x1, y1, x2, y2))
		}
	case *ContactsArgs:
		mask := ints(&p, a.Mesh1dMask)
		switch op {
		case OpContactsComputeSingle:
			return n.status(C.mkernel_compute_single_contacts(cid, mask, cGeometry(&p, a.Geometry)))
		case OpContactsComputeMultiple:
			return n.status(C.mkernel_compute_multiple_contacts(cid, mask))
		case OpContactsComputeWithPolygons:
			return n.status(C.mkernel_compute_with_polygons_contacts(cid, mask, cGeometry(&p, a.Geometry)))
		case OpContactsComputeWithPoints:
			return n.status(C.mkernel_compute_with_points_contacts(cid, mask, cGeometry(&p, a.Geometry)))
		case OpContactsComputeBoundary:
			return n.status(C.mkernel_compute_boundary_contacts(cid, mask, cGeometry(&p, a.Geometry), C.double(a.SearchRadius)))
		}
	case nil:
		switch op {
		case OpMesh2dDeleteHangingEdges:
			return n.status(C.mkernel_delete_hanging_edges_mesh2d(cid))
		case OpCurvilinearConvertToMesh2d:
			return n.status(C.mkernel_curvilinear_convert_to_mesh2d(cid))
		}
	}
	return n.fail(StatusNotImplemented, "unsupported operation "+string(op))
}

// settle publishes a filled allocation, or releases it when the call failed.
func (n *native) settle(st Status, dst *Allocation, alloc Allocation, out *C.mk_geometry_list) Status {
	if st != StatusSuccess {
		n.mu.Lock()
		block := n.allocs[alloc.ID]
		delete(n.allocs, alloc.ID)
		n.mu.Unlock()
		C.free(block)
		return st
	}
	viewGeometry(&alloc, out)
	*dst = alloc
	return st
}

func (n *native) AlgorithmInitialize(id ContextID, alg Algorithm, params any) Status {
	var p runtime.Pinner
	defer p.Unpin()
	cid := C.int(id)
	switch alg {
	case AlgorithmOrthogonalization:
		o, ok := params.(OrthogonalizationParameters)
		if !ok {
			return n.fail(StatusInvalidGeometry, "orthogonalization requires OrthogonalizationParameters")
		}
		return n.status(C.mkernel_curvilinear_initialize_orthogonalize(cid, cOrthogonalization(&p, o)))
	case AlgorithmLineShift:
		return n.status(C.mkernel_curvilinear_initialize_line_shift(cid))
	case AlgorithmAttractionRepulsion, AlgorithmDirectionalSmoothing:
		pa := &pendingAlgorithm{alg: alg}
		switch v := params.(type) {
		case LineAttractionRepulsionParameters:
			pa.factor = v.Factor
		case DirectionalSmoothingParameters:
			pa.iters = v.Iterations
		default:
			return n.fail(StatusInvalidGeometry, alg.String()+": unexpected parameters")
		}
		n.mu.Lock()
		n.pending[id] = pa
		n.lastErr = ""
		n.mu.Unlock()
		return StatusSuccess
	}
	return n.fail(StatusNotImplemented, "unknown algorithm")
}

func (n *native) AlgorithmConfigure(id ContextID, alg Algorithm, c Constraint) Status {
	cid := C.int(id)
	x1, y1 := C.double(c.First.X), C.double(c.First.Y)
	x2, y2 := C.double(c.Second.X), C.double(c.Second.Y)
	switch alg {
	case AlgorithmOrthogonalization:
		switch c.Kind {
		case ConstraintBlock:
			return n.status(C.mkernel_curvilinear_set_block_orthogonalize(cid, x1, y1, x2, y2))
		case ConstraintFrozenLine:
			return n.status(C.mkernel_curvilinear_set_frozen_lines_orthogonalize(cid, x1, y1, x2, y2))
		}
	case AlgorithmLineShift:
		switch c.Kind {
		case ConstraintLine:
			return n.status(C.mkernel_curvilinear_set_line_line_shift(cid, x1, y1, x2, y2))
		case ConstraintBlock:
			return n.status(C.mkernel_curvilinear_set_block_line_shift(cid, x1, y1, x2, y2))
		case ConstraintMoveNode:
			return n.status(C.mkernel_curvilinear_move_node_line_shift(cid, x1, y1, x2, y2))
		}
	case AlgorithmAttractionRepulsion, AlgorithmDirectionalSmoothing:
		n.mu.Lock()
		defer n.mu.Unlock()
		pa, ok := n.pending[id]
		if !ok || pa.alg != alg {
			n.lastErr = alg.String() + ": not initialized"
			return StatusInvalidState
		}
		pts := &[2]Point{c.First, c.Second}
		switch c.Kind {
		case ConstraintLine:
			pa.line = pts
		case ConstraintBlock:
			pa.block = pts
		default:
			n.lastErr = alg.String() + ": unsupported constraint " + c.Kind.String()
			return StatusInvalidGeometry
		}
		n.lastErr = ""
		return StatusSuccess
	}
	return n.fail(StatusInvalidGeometry, alg.String()+": unsupported constraint "+c.Kind.String())
}

func (n *native) AlgorithmExecute(id ContextID, alg Algorithm) Status {
	cid := C.int(id)
	switch alg {
	case AlgorithmOrthogonalization:
		return n.status(C.mkernel_curvilinear_orthogonalize(cid))
	case AlgorithmLineShift:
		return n.status(C.mkernel_curvilinear_line_shift(cid))
	}

	n.mu.Lock()
	pa, ok := n.pending[id]
	n.mu.Unlock()
	if !ok || pa.alg != alg || pa.line == nil {
		return n.fail(StatusInvalidState, alg.String()+": line not configured")
	}
	block, st := n.blockOrExtent(id, pa.block)
	if st != StatusSuccess {
		return st
	}
	l0, l1 := pa.line[0], pa.line[1]
	b0, b1 := block[0], block[1]
	if alg == AlgorithmAttractionRepulsion {
		st = n.status(C.mkernel_curvilinear_line_attraction_repulsion(cid, C.double(pa.factor),
			C.double(l0.X), C.double(l0.Y), C.double(l1.X), C.double(l1.Y),
			C.double(b0.X), C.double(b0.Y), C.double(b1.X), C.double(b1.Y)))
	} else {
		st = n.status(C.mkernel_curvilinear_smoothing_directional(cid, C.int(pa.iters),
			C.double(l0.X), C.double(l0.Y), C.double(l1.X), C.double(l1.Y),
			C.double(b0.X), C.double(b0.Y), C.double(b1.X), C.double(b1.Y)))
	}
	if st == StatusSuccess {
		pa.executed = true
	}
	return st
}

// blockOrExtent returns the configured block, or the grid's bounding box
// when none was set.
func (n *native) blockOrExtent(id ContextID, block *[2]Point) ([2]Point, Status) {
	if block != nil {
		return *block, StatusSuccess
	}
	var g CurvilinearGrid
	if st := n.CurvilinearDimensions(id, &g); st != StatusSuccess {
		return [2]Point{}, st
	}
	g.Allocate()
	if st := n.CurvilinearData(id, &g); st != StatusSuccess {
		return [2]Point{}, st
	}
	lo := Point{X: math.Inf(1), Y: math.Inf(1)}
	hi := Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for i := range g.NodeX {
		if g.NodeX[i] == GeometrySeparator && g.NodeY[i] == GeometrySeparator {
			continue
		}
		lo.X, lo.Y = math.Min(lo.X, g.NodeX[i]), math.Min(lo.Y, g.NodeY[i])
		hi.X, hi.Y = math.Max(hi.X, g.NodeX[i]), math.Max(hi.Y, g.NodeY[i])
	}
	return [2]Point{lo, hi}, StatusSuccess
}

func (n *native) AlgorithmFinalize(id ContextID, alg Algorithm) Status {
	cid := C.int(id)
	switch alg {
	case AlgorithmOrthogonalization:
		return n.status(C.mkernel_curvilinear_finalize_orthogonalize(cid))
	case AlgorithmLineShift:
		return n.status(C.mkernel_curvilinear_finalize_line_shift(cid))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.pending[id]; !ok {
		n.lastErr = alg.String() + ": not initialized"
		return StatusInvalidState
	}
	delete(n.pending, id)
	n.lastErr = ""
	return StatusSuccess
}
