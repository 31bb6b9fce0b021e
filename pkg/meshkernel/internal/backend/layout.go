package backend

// The structures below mirror the engine's fixed layouts field for field. Every
// slice is dense and owned by whoever allocated it; the Num* fields are the
// authoritative sizes the engine reads or writes.

// Default separators used by the engine to split flat coordinate sequences.
const (
	GeometrySeparator   = -999.0
	InnerOuterSeparator = -998.0
)

// GeometryList mirrors the engine's GeometryList.
type GeometryList struct {
	GeometrySeparator   float64
	InnerOuterSeparator float64
	X                   []float64
	Y                   []float64
	Values              []float64
}

// NewGeometry returns a list using the default separators.
func NewGeometry(x, y, values []float64) GeometryList {
	return GeometryList{
		GeometrySeparator:   GeometrySeparator,
		InnerOuterSeparator: InnerOuterSeparator,
		X:                   x,
		Y:                   y,
		Values:              values,
	}
}

// NumCoordinates returns the coordinate count the engine sees.
func (g *GeometryList) NumCoordinates() int32 {
	if g == nil {
		return 0
	}
	return int32(len(g.X))
}

// Mesh1d mirrors the engine's Mesh1D.
type Mesh1d struct {
	EdgeNodes []int32
	NodeX     []float64
	NodeY     []float64
	NumNodes  int32
	NumEdges  int32
}

// Allocate sizes the slices from the Num* fields so the engine can write into
// them. The memory belongs to the caller.
func (m *Mesh1d) Allocate() {
	m.EdgeNodes = make([]int32, 2*m.NumEdges)
	m.NodeX = make([]float64, m.NumNodes)
	m.NodeY = make([]float64, m.NumNodes)
}

// Mesh2d mirrors the engine's Mesh2D.
type Mesh2d struct {
	EdgeNodes    []int32
	FaceNodes    []int32
	NodesPerFace []int32
	NodeX        []float64
	NodeY        []float64
	EdgeX        []float64
	EdgeY        []float64
	FaceX        []float64
	FaceY        []float64
	NumNodes     int32
	NumEdges     int32
	NumFaces     int32
	NumFaceNodes int32
}

// Allocate sizes the slices from the Num* fields so the engine can write into
// them. The memory belongs to the caller.
func (m *Mesh2d) Allocate() {
	m.EdgeNodes = make([]int32, 2*m.NumEdges)
	m.FaceNodes = make([]int32, m.NumFaceNodes)
	m.NodesPerFace = make([]int32, m.NumFaces)
	m.NodeX = make([]float64, m.NumNodes)
	m.NodeY = make([]float64, m.NumNodes)
	m.EdgeX = make([]float64, m.NumEdges)
	m.EdgeY = make([]float64, m.NumEdges)
	m.FaceX = make([]float64, m.NumFaces)
	m.FaceY = make([]float64, m.NumFaces)
}

// CurvilinearGrid mirrors the engine's CurvilinearGrid. Nodes are stored with
// m varying fastest: index = n*NumM + m.
type CurvilinearGrid struct {
	NodeX []float64
	NodeY []float64
	NumM  int32
	NumN  int32
}

// Allocate sizes the node slices from NumM and NumN.
func (g *CurvilinearGrid) Allocate() {
	n := int(g.NumM) * int(g.NumN)
	g.NodeX = make([]float64, n)
	g.NodeY = make([]float64, n)
}

// Contacts mirrors the engine's Contacts.
type Contacts struct {
	Mesh1dIndices []int32
	Mesh2dIndices []int32
	NumContacts   int32
}

// Allocate sizes the index slices from NumContacts.
func (c *Contacts) Allocate() {
	c.Mesh1dIndices = make([]int32, c.NumContacts)
	c.Mesh2dIndices = make([]int32, c.NumContacts)
}

// Allocation is a result the engine allocated itself. Its slices stay valid
// until the allocation is released with Engine.Free; callers copy what they
// need first.
type Allocation struct {
	ID       AllocID
	Geometry GeometryList
}

// MakeGridParameters mirrors the engine's MakeGridParameters.
type MakeGridParameters struct {
	NumColumns int32
	NumRows    int32
	Angle      float64
	OriginX    float64
	OriginY    float64
	BlockSizeX float64
	BlockSizeY float64
}

// CurvilinearParameters mirrors the engine's CurvilinearParameters.
type CurvilinearParameters struct {
	MRefinement         int32
	NRefinement         int32
	SmoothingIterations int32
	SmoothingParameter  float64
	AttractionParameter float64
}

// SplinesToCurvilinearParameters mirrors the engine's
// SplinesToCurvilinearParameters.
type SplinesToCurvilinearParameters struct {
	AspectRatio                    float64
	AspectRatioGrowFactor          float64
	AverageWidth                   float64
	CurvatureAdaptedGridSpacing    int32
	GridsOnTopOfEachOtherTolerance float64
	MinCosineCrossingAngles        float64
	CheckFrontCollisions           int32
	UniformGridSize                float64
	RemoveSkinnyTriangles          int32
}

// OrthogonalizationParameters mirrors the engine's OrthogonalizationParameters.
type OrthogonalizationParameters struct {
	OuterIterations                              int32
	BoundaryIterations                           int32
	InnerIterations                              int32
	OrthogonalizationToSmoothingFactor           float64
	OrthogonalizationToSmoothingFactorAtBoundary float64
	ArealToAngleSmoothingFactor                  float64
}

// InterpolationParameters mirrors the engine's InterpolationParameters.
type InterpolationParameters struct {
	MaxRefinementIterations   int32
	AveragingMethod           int32
	MinPoints                 int32
	RelativeSearchRadius      float64
	InterpolateTo             int32
	RefineIntersected         int32
	UseMassCenterWhenRefining int32
}

// SampleRefineParameters mirrors the engine's SampleRefineParameters.
type SampleRefineParameters struct {
	MaxRefinementIterations      int32
	MinFaceSize                  float64
	RefinementType               int32
	ConnectHangingNodes          int32
	MaxTimeStep                  float64
	AccountForSamplesOutsideFace int32
}

// LineAttractionRepulsionParameters carries the attraction (positive) or
// repulsion (negative) factor.
type LineAttractionRepulsionParameters struct {
	Factor float64
}

// DirectionalSmoothingParameters carries the smoothing iteration count.
type DirectionalSmoothingParameters struct {
	Iterations int32
}
