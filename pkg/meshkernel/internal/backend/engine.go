package backend

// Engine is the capability contract of a MeshKernel engine. Every method
// addresses one context and reports a Status; on failure the engine keeps a
// diagnostic message retrievable through LastError until the next call.
//
// Implementations are not required to be safe for concurrent use of the same
// context. Callers serialise access per context.
type Engine interface {
	Version() string

	Allocate(projection int32) (ContextID, Status)
	Deallocate(id ContextID) Status
	// LastError is process-wide, as in libMeshKernelApi: when calls on
	// different contexts fail concurrently, a message may describe the
	// other failure. The Status returned by each call is always its own.
	LastError() string

	// Free releases a result the engine allocated. Freeing an unknown or
	// already released allocation reports StatusInvalidState.
	Free(alloc AllocID) Status

	SetMesh1d(id ContextID, m Mesh1d) Status
	Mesh1dDimensions(id ContextID, m *Mesh1d) Status
	Mesh1dData(id ContextID, m *Mesh1d) Status

	SetMesh2d(id ContextID, m Mesh2d) Status
	Mesh2dDimensions(id ContextID, m *Mesh2d) Status
	Mesh2dData(id ContextID, m *Mesh2d) Status

	SetCurvilinear(id ContextID, g CurvilinearGrid) Status
	CurvilinearDimensions(id ContextID, g *CurvilinearGrid) Status
	CurvilinearData(id ContextID, g *CurvilinearGrid) Status

	ContactsDimensions(id ContextID, c *Contacts) Status
	ContactsData(id ContextID, c *Contacts) Status

	// Run executes a one-shot operation. args must be a pointer to the
	// argument struct documented for op; output fields are written in place.
	Run(id ContextID, op Op, args any) Status

	AlgorithmInitialize(id ContextID, alg Algorithm, params any) Status
	AlgorithmConfigure(id ContextID, alg Algorithm, c Constraint) Status
	AlgorithmExecute(id ContextID, alg Algorithm) Status
	AlgorithmFinalize(id ContextID, alg Algorithm) Status
}

// Op names a one-shot engine operation.
type Op string

const (
	OpMesh2dDelete                     Op = "mesh2d_delete"                                    // *Mesh2dDeleteArgs
	OpMesh2dInsertEdge                 Op = "mesh2d_insert_edge"                               // *Mesh2dInsertEdgeArgs
	OpMesh2dInsertNode                 Op = "mesh2d_insert_node"                               // *Mesh2dInsertNodeArgs
	OpMesh2dDeleteNode                 Op = "mesh2d_delete_node"                               // *NodeIndexArgs
	OpMesh2dMoveNode                   Op = "mesh2d_move_node"                                 // *Mesh2dMoveNodeArgs
	OpMesh2dDeleteEdge                 Op = "mesh2d_delete_edge"                               // *PointArgs
	OpMesh2dFindEdge                   Op = "mesh2d_find_edge"                                 // *Mesh2dFindEdgeArgs
	OpMesh2dNodeIndex                  Op = "mesh2d_get_node_index"                            // *Mesh2dNodeIndexArgs
	OpMesh2dCountHangingEdges          Op = "mesh2d_count_hanging_edges"                       // *CountArgs
	OpMesh2dDeleteHangingEdges         Op = "mesh2d_delete_hanging_edges"                      // nil
	OpMesh2dMakeFromPolygon            Op = "mesh2d_make_mesh_from_polygon"                    // *GeometryArgs
	OpMesh2dMakeFromSamples            Op = "mesh2d_make_mesh_from_samples"                    // *GeometryArgs
	OpRefinePolygon                    Op = "polygon_refine"                                   // *RefinePolygonArgs
	OpMesh2dRefineBasedOnSamples       Op = "mesh2d_refine_based_on_samples"                   // *RefineBasedOnSamplesArgs
	OpMesh2dRefineBasedOnPolygon       Op = "mesh2d_refine_based_on_polygon"                   // *RefineBasedOnPolygonArgs
	OpPointsInPolygon                  Op = "polygon_get_included_points"                      // *PointsInPolygonArgs
	OpMesh2dOrthogonality              Op = "mesh2d_get_orthogonality"                         // *ResultArgs
	OpMesh2dComputeOrthogonalization   Op = "mesh2d_compute_orthogonalization"                 // *Mesh2dOrthogonalizationArgs
	OpMesh2dTriangulationInterpolation Op = "mesh2d_triangulation_interpolation"               // *TriangulationInterpolationArgs
	OpMesh2dAveragingInterpolation     Op = "mesh2d_averaging_interpolation"                   // *AveragingInterpolationArgs
	OpCurvilinearMakeUniform           Op = "curvilinear_make_uniform"                         // *MakeUniformArgs
	OpCurvilinearTransfiniteFromSpline Op = "curvilinear_compute_transfinite_from_splines"     // *TransfiniteArgs
	OpCurvilinearOrthogonalFromSpline  Op = "curvilinear_compute_orthogonal_grid_from_splines" // *OrthogonalFromSplinesArgs
	OpCurvilinearConvertToMesh2d       Op = "curvilinear_convert_to_mesh2d"                    // nil
	OpCurvilinearRefine                Op = "curvilinear_refine"                               // *RefineArgs
	OpCurvilinearDerefine              Op = "curvilinear_derefine"                             // *SegmentArgs
	OpCurvilinearInsertFace            Op = "curvilinear_insert_face"                          // *PointArgs
	OpCurvilinearDeleteNode            Op = "curvilinear_delete_node"                          // *PointArgs
	OpCurvilinearMoveNode              Op = "curvilinear_move_node"                            // *SegmentArgs
	OpCurvilinearDeleteInterior        Op = "curvilinear_delete_interior"                      // *SegmentArgs
	OpCurvilinearDeleteExterior        Op = "curvilinear_delete_exterior"                      // *SegmentArgs
	OpContactsComputeSingle            Op = "contacts_compute_single"                          // *ContactsArgs
	OpContactsComputeMultiple          Op = "contacts_compute_multiple"                        // *ContactsArgs
	OpContactsComputeWithPolygons      Op = "contacts_compute_with_polygons"                   // *ContactsArgs
	OpContactsComputeWithPoints        Op = "contacts_compute_with_points"                     // *ContactsArgs
	OpContactsComputeBoundary          Op = "contacts_compute_boundary"                        // *ContactsArgs
)

// PointArgs addresses the node or edge closest to Point.
type PointArgs struct {
	Point Point
}

// SegmentArgs carries two points. For moves, First is the node to move and
// Second its destination; otherwise they are opposite corners of a block or
// the two ends of a grid line.
type SegmentArgs struct {
	First  Point
	Second Point
}

// RefineArgs refines the cells between two grid nodes.
type RefineArgs struct {
	First      Point
	Second     Point
	Refinement int32
}

// NodeIndexArgs addresses a node by index.
type NodeIndexArgs struct {
	NodeIndex int32
}

// CountArgs receives a count.
type CountArgs struct {
	Count int32 // out
}

// GeometryArgs carries a single geometry input.
type GeometryArgs struct {
	Geometry GeometryList
}

// ResultArgs receives an engine-owned geometry.
type ResultArgs struct {
	Result Allocation // out
}

type Mesh2dDeleteArgs struct {
	Polygon        GeometryList
	DeletionOption int32
	InvertDeletion bool
}

type Mesh2dInsertEdgeArgs struct {
	StartNode int32
	EndNode   int32
	EdgeIndex int32 // out
}

type Mesh2dInsertNodeArgs struct {
	Point     Point
	NodeIndex int32 // out
}

type Mesh2dMoveNodeArgs struct {
	Point     Point
	NodeIndex int32
}

type Mesh2dFindEdgeArgs struct {
	Point     Point
	EdgeIndex int32 // out
}

type Mesh2dNodeIndexArgs struct {
	Point        Point
	SearchRadius float64
	NodeIndex    int32 // out
}

type RefinePolygonArgs struct {
	Polygon          GeometryList
	FirstNode        int32
	SecondNode       int32
	TargetEdgeLength float64
	Result           Allocation // out
}

type RefineBasedOnSamplesArgs struct {
	Samples       GeometryList
	Interpolation InterpolationParameters
	SampleRefine  SampleRefineParameters
}

type RefineBasedOnPolygonArgs struct {
	Polygon       GeometryList
	Interpolation InterpolationParameters
}

type PointsInPolygonArgs struct {
	Polygon GeometryList
	Points  GeometryList
	Result  Allocation // out
}

type Mesh2dOrthogonalizationArgs struct {
	ProjectToLandBoundary int32
	Parameters            OrthogonalizationParameters
	Polygon               GeometryList
	LandBoundaries        GeometryList
}

type TriangulationInterpolationArgs struct {
	Samples  GeometryList
	Location int32
	Result   Allocation // out
}

type AveragingInterpolationArgs struct {
	Samples            GeometryList
	Location           int32
	AveragingMethod    int32
	RelativeSearchSize float64
	MinSamples         int32
	Result             Allocation // out
}

type MakeUniformArgs struct {
	Parameters MakeGridParameters
	Polygon    GeometryList
}

type TransfiniteArgs struct {
	Splines    GeometryList
	Parameters CurvilinearParameters
}

type OrthogonalFromSplinesArgs struct {
	Splines                        GeometryList
	Parameters                     CurvilinearParameters
	SplinesToCurvilinearParameters SplinesToCurvilinearParameters
}

// ContactsArgs covers every contact computation. Mesh1dMask selects the 1d
// nodes that may be connected (1 connects, 0 skips); Geometry holds the
// polygons or points the computation needs, and SearchRadius is used by the
// boundary variant only.
type ContactsArgs struct {
	Mesh1dMask   []int32
	Geometry     GeometryList
	SearchRadius float64
}

// Algorithm names a stateful curvilinear protocol.
type Algorithm int32

const (
	AlgorithmOrthogonalization Algorithm = iota
	AlgorithmLineShift
	AlgorithmAttractionRepulsion
	AlgorithmDirectionalSmoothing
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmOrthogonalization:
		return "orthogonalization"
	case AlgorithmLineShift:
		return "line_shift"
	case AlgorithmAttractionRepulsion:
		return "line_attraction_repulsion"
	case AlgorithmDirectionalSmoothing:
		return "directional_smoothing"
	default:
		return "unknown_algorithm"
	}
}

// ConstraintKind selects how a Constraint narrows an algorithm.
type ConstraintKind int32

const (
	ConstraintBlock ConstraintKind = iota
	ConstraintLine
	ConstraintFrozenLine
	ConstraintMoveNode
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintBlock:
		return "block"
	case ConstraintLine:
		return "line"
	case ConstraintFrozenLine:
		return "frozen_line"
	case ConstraintMoveNode:
		return "move_node"
	default:
		return "unknown_constraint"
	}
}

// Constraint is one configure call. For blocks First and Second are opposite
// corners, for lines the two ends, for node moves the origin and destination.
type Constraint struct {
	Kind   ConstraintKind
	First  Point
	Second Point
}
