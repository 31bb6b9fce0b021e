package meshkernel

import (
	"fmt"
	"strings"
)

// Projection is the coordinate system of a session.
type Projection int32

const (
	ProjectionCartesian Projection = iota
	ProjectionSpherical
	ProjectionSphericalAccurate
)

var projectionNames = [...]string{"cartesian", "spherical", "spherical_accurate"}

func (p Projection) String() string {
	if p.valid() {
		return projectionNames[p]
	}
	return fmt.Sprintf("projection(%d)", int32(p))
}

func (p Projection) valid() bool { return p >= ProjectionCartesian && p <= ProjectionSphericalAccurate }

// MarshalText implements encoding.TextMarshaler.
func (p Projection) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, validationf("projection", "unknown projection %d", int32(p))
	}
	return []byte(projectionNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Projection) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range projectionNames {
		if n == name {
			*p = Projection(i)
			return nil
		}
	}
	return validationf("projection", "unknown projection %q", name)
}

// DeleteMeshOption selects what Mesh2dDelete removes inside the polygon.
type DeleteMeshOption int32

const (
	DeleteAllNodes DeleteMeshOption = iota
	DeleteAllFaceCircumcenters
	DeleteAllCompleteFaces
)

func (o DeleteMeshOption) valid() bool { return o >= DeleteAllNodes && o <= DeleteAllCompleteFaces }

// ProjectToLandBoundaryOption controls how mesh2d orthogonalization treats
// land boundaries.
type ProjectToLandBoundaryOption int32

const (
	DoNotProjectToLandBoundary ProjectToLandBoundaryOption = iota
	ToOriginalNetBoundary
	OuterMeshBoundaryToLandBoundary
	InnerAndOuterMeshBoundaryToLandBoundary
	WholeMesh
)

func (o ProjectToLandBoundaryOption) valid() bool {
	return o >= DoNotProjectToLandBoundary && o <= WholeMesh
}

// AveragingMethod selects how averaging interpolation combines samples.
type AveragingMethod int32

const (
	AveragingSimple AveragingMethod = iota + 1
	AveragingClosestPoint
	AveragingMax
	AveragingMin
	AveragingInverseWeightedDistance
	AveragingMinAbs
	AveragingKdTree
)

func (m AveragingMethod) valid() bool { return m >= AveragingSimple && m <= AveragingKdTree }

// InterpolateToOption selects the mesh location refinement interpolates to.
type InterpolateToOption int32

const (
	InterpolateToBathymetry InterpolateToOption = iota + 1
	InterpolateToZK
	InterpolateToS1
	InterpolateToZC
)

func (o InterpolateToOption) valid() bool { return o >= InterpolateToBathymetry && o <= InterpolateToZC }

// RefinementType selects the sample based refinement criterion.
type RefinementType int32

const (
	RefinementRidgeRefinement RefinementType = iota + 1
	RefinementWaveCourant
	RefinementRefinementLevels
)

func (r RefinementType) valid() bool { return r >= RefinementRidgeRefinement && r <= RefinementRefinementLevels }

// Mesh2dLocation addresses faces, nodes or edges of a Mesh2d.
type Mesh2dLocation int32

const (
	LocationFaces Mesh2dLocation = iota
	LocationNodes
	LocationEdges
)

func (l Mesh2dLocation) valid() bool { return l >= LocationFaces && l <= LocationEdges }

func (l Mesh2dLocation) String() string {
	switch l {
	case LocationFaces:
		return "faces"
	case LocationNodes:
		return "nodes"
	case LocationEdges:
		return "edges"
	}
	return fmt.Sprintf("location(%d)", int32(l))
}
