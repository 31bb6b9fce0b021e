package meshkernel

import (
	"math"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Parameter records are plain values. Sessions never keep a reference to
// them; every call copies what it needs.

// MakeGridParameters describes a uniform curvilinear grid.
type MakeGridParameters struct {
	NumColumns int     `yaml:"num_columns" json:"num_columns"`
	NumRows    int     `yaml:"num_rows" json:"num_rows"`
	Angle      float64 `yaml:"angle" json:"angle"`
	OriginX    float64 `yaml:"origin_x" json:"origin_x"`
	OriginY    float64 `yaml:"origin_y" json:"origin_y"`
	BlockSizeX float64 `yaml:"block_size_x" json:"block_size_x"`
	BlockSizeY float64 `yaml:"block_size_y" json:"block_size_y"`
}

// DefaultMakeGridParameters returns a 3x3 grid of 10x10 blocks at the origin.
func DefaultMakeGridParameters() MakeGridParameters {
	return MakeGridParameters{NumColumns: 3, NumRows: 3, BlockSizeX: 10, BlockSizeY: 10}
}

func (p MakeGridParameters) Validate() error {
	const op = "make grid parameters"
	if p.NumColumns < 0 || p.NumRows < 0 {
		return validationf(op, "negative grid size %d x %d", p.NumColumns, p.NumRows)
	}
	if !fitsInt32(p.NumColumns, p.NumRows) || (p.NumColumns+1)*(p.NumRows+1) > math.MaxInt32 {
		return validationf(op, "grid size %d x %d exceeds the engine's 32-bit node count", p.NumColumns, p.NumRows)
	}
	if !positive(p.BlockSizeX) || !positive(p.BlockSizeY) {
		return validationf(op, "block size %g x %g must be positive", p.BlockSizeX, p.BlockSizeY)
	}
	if !finite(p.Angle, p.OriginX, p.OriginY) {
		return validationf(op, "angle and origin must be finite")
	}
	return nil
}

func (p MakeGridParameters) toBackend() backend.MakeGridParameters {
	return backend.MakeGridParameters{
		NumColumns: int32(p.NumColumns),
		NumRows:    int32(p.NumRows),
		Angle:      p.Angle,
		OriginX:    p.OriginX,
		OriginY:    p.OriginY,
		BlockSizeX: p.BlockSizeX,
		BlockSizeY: p.BlockSizeY,
	}
}

// CurvilinearParameters controls grid generation from splines.
type CurvilinearParameters struct {
	MRefinement         int     `yaml:"m_refinement" json:"m_refinement"`
	NRefinement         int     `yaml:"n_refinement" json:"n_refinement"`
	SmoothingIterations int     `yaml:"smoothing_iterations" json:"smoothing_iterations"`
	SmoothingParameter  float64 `yaml:"smoothing_parameter" json:"smoothing_parameter"`
	AttractionParameter float64 `yaml:"attraction_parameter" json:"attraction_parameter"`
}

func DefaultCurvilinearParameters() CurvilinearParameters {
	return CurvilinearParameters{
		MRefinement:         2000,
		NRefinement:         40,
		SmoothingIterations: 10,
		SmoothingParameter:  0.5,
	}
}

func (p CurvilinearParameters) Validate() error {
	const op = "curvilinear parameters"
	if p.MRefinement < 1 || p.NRefinement < 1 {
		return validationf(op, "refinement %d x %d must be at least 1", p.MRefinement, p.NRefinement)
	}
	if p.SmoothingIterations < 0 {
		return validationf(op, "negative smoothing iterations %d", p.SmoothingIterations)
	}
	if !fitsInt32(p.MRefinement, p.NRefinement, p.SmoothingIterations) {
		return validationf(op, "refinement and iteration counts must fit in 32 bits")
	}
	if !unit(p.SmoothingParameter) || !unit(p.AttractionParameter) {
		return validationf(op, "smoothing and attraction parameters must lie in [0, 1]")
	}
	return nil
}

func (p CurvilinearParameters) toBackend() backend.CurvilinearParameters {
	return backend.CurvilinearParameters{
		MRefinement:         int32(p.MRefinement),
		NRefinement:         int32(p.NRefinement),
		SmoothingIterations: int32(p.SmoothingIterations),
		SmoothingParameter:  p.SmoothingParameter,
		AttractionParameter: p.AttractionParameter,
	}
}

// SplinesToCurvilinearParameters controls the orthogonal grid growth from
// splines.
type SplinesToCurvilinearParameters struct {
	AspectRatio                    float64 `yaml:"aspect_ratio" json:"aspect_ratio"`
	AspectRatioGrowFactor          float64 `yaml:"aspect_ratio_grow_factor" json:"aspect_ratio_grow_factor"`
	AverageWidth                   float64 `yaml:"average_width" json:"average_width"`
	CurvatureAdaptedGridSpacing    bool    `yaml:"curvature_adapted_grid_spacing" json:"curvature_adapted_grid_spacing"`
	GridsOnTopOfEachOtherTolerance float64 `yaml:"grids_on_top_of_each_other_tolerance" json:"grids_on_top_of_each_other_tolerance"`
	MinCosineCrossingAngles        float64 `yaml:"min_cosine_crossing_angles" json:"min_cosine_crossing_angles"`
	CheckFrontCollisions           bool    `yaml:"check_front_collisions" json:"check_front_collisions"`
	UniformGridSize                float64 `yaml:"uniform_grid_size" json:"uniform_grid_size"`
	RemoveSkinnyTriangles          bool    `yaml:"remove_skinny_triangles" json:"remove_skinny_triangles"`
}

func DefaultSplinesToCurvilinearParameters() SplinesToCurvilinearParameters {
	return SplinesToCurvilinearParameters{
		AspectRatio:                    0.1,
		AspectRatioGrowFactor:          1.1,
		AverageWidth:                   500,
		CurvatureAdaptedGridSpacing:    true,
		GridsOnTopOfEachOtherTolerance: 1e-4,
		MinCosineCrossingAngles:        0.95,
		RemoveSkinnyTriangles:          true,
	}
}

func (p SplinesToCurvilinearParameters) Validate() error {
	const op = "splines to curvilinear parameters"
	if !positive(p.AspectRatio) || !positive(p.AspectRatioGrowFactor) || !positive(p.AverageWidth) {
		return validationf(op, "aspect ratio, grow factor and average width must be positive")
	}
	if p.GridsOnTopOfEachOtherTolerance < 0 || p.UniformGridSize < 0 {
		return validationf(op, "tolerance and uniform grid size must not be negative")
	}
	if p.MinCosineCrossingAngles < -1 || p.MinCosineCrossingAngles > 1 {
		return validationf(op, "min cosine crossing angles %g outside [-1, 1]", p.MinCosineCrossingAngles)
	}
	return nil
}

func (p SplinesToCurvilinearParameters) toBackend() backend.SplinesToCurvilinearParameters {
	return backend.SplinesToCurvilinearParameters{
		AspectRatio:                    p.AspectRatio,
		AspectRatioGrowFactor:          p.AspectRatioGrowFactor,
		AverageWidth:                   p.AverageWidth,
		CurvatureAdaptedGridSpacing:    flag(p.CurvatureAdaptedGridSpacing),
		GridsOnTopOfEachOtherTolerance: p.GridsOnTopOfEachOtherTolerance,
		MinCosineCrossingAngles:        p.MinCosineCrossingAngles,
		CheckFrontCollisions:           flag(p.CheckFrontCollisions),
		UniformGridSize:                p.UniformGridSize,
		RemoveSkinnyTriangles:          flag(p.RemoveSkinnyTriangles),
	}
}

// OrthogonalizationParameters controls both the Mesh2d and the curvilinear
// orthogonalization. The smoothing factors weigh orthogonality (1) against
// smoothness (0).
type OrthogonalizationParameters struct {
	OuterIterations                              int     `yaml:"outer_iterations" json:"outer_iterations"`
	BoundaryIterations                           int     `yaml:"boundary_iterations" json:"boundary_iterations"`
	InnerIterations                              int     `yaml:"inner_iterations" json:"inner_iterations"`
	OrthogonalizationToSmoothingFactor           float64 `yaml:"orthogonalization_to_smoothing_factor" json:"orthogonalization_to_smoothing_factor"`
	OrthogonalizationToSmoothingFactorAtBoundary float64 `yaml:"orthogonalization_to_smoothing_factor_at_boundary" json:"orthogonalization_to_smoothing_factor_at_boundary"`
	ArealToAngleSmoothingFactor                  float64 `yaml:"areal_to_angle_smoothing_factor" json:"areal_to_angle_smoothing_factor"`
}

func DefaultOrthogonalizationParameters() OrthogonalizationParameters {
	return OrthogonalizationParameters{
		OuterIterations:                              2,
		BoundaryIterations:                           25,
		InnerIterations:                              25,
		OrthogonalizationToSmoothingFactor:           0.975,
		OrthogonalizationToSmoothingFactorAtBoundary: 1,
		ArealToAngleSmoothingFactor:                  1,
	}
}

func (p OrthogonalizationParameters) Validate() error {
	const op = "orthogonalization parameters"
	if p.OuterIterations < 1 || p.BoundaryIterations < 1 || p.InnerIterations < 1 {
		return validationf(op, "iterations %d/%d/%d must be at least 1", p.OuterIterations, p.BoundaryIterations, p.InnerIterations)
	}
	if !fitsInt32(p.OuterIterations, p.BoundaryIterations, p.InnerIterations) {
		return validationf(op, "iteration counts %d/%d/%d must fit in 32 bits", p.OuterIterations, p.BoundaryIterations, p.InnerIterations)
	}
	if !unit(p.OrthogonalizationToSmoothingFactor) ||
		!unit(p.OrthogonalizationToSmoothingFactorAtBoundary) ||
		!unit(p.ArealToAngleSmoothingFactor) {
		return validationf(op, "smoothing factors must lie in [0, 1]")
	}
	return nil
}

func (p OrthogonalizationParameters) toBackend() backend.OrthogonalizationParameters {
	return backend.OrthogonalizationParameters{
		OuterIterations:                              int32(p.OuterIterations),
		BoundaryIterations:                           int32(p.BoundaryIterations),
		InnerIterations:                              int32(p.InnerIterations),
		OrthogonalizationToSmoothingFactor:           p.OrthogonalizationToSmoothingFactor,
		OrthogonalizationToSmoothingFactorAtBoundary: p.OrthogonalizationToSmoothingFactorAtBoundary,
		ArealToAngleSmoothingFactor:                  p.ArealToAngleSmoothingFactor,
	}
}

// InterpolationParameters controls refinement driven by samples or polygons.
type InterpolationParameters struct {
	MaxRefinementIterations   int                 `yaml:"max_refinement_iterations" json:"max_refinement_iterations"`
	AveragingMethod           AveragingMethod     `yaml:"averaging_method" json:"averaging_method"`
	MinPoints                 int                 `yaml:"min_points" json:"min_points"`
	RelativeSearchRadius      float64             `yaml:"relative_search_radius" json:"relative_search_radius"`
	InterpolateTo             InterpolateToOption `yaml:"interpolate_to" json:"interpolate_to"`
	RefineIntersected         bool                `yaml:"refine_intersected" json:"refine_intersected"`
	UseMassCenterWhenRefining bool                `yaml:"use_mass_center_when_refining" json:"use_mass_center_when_refining"`
}

func DefaultInterpolationParameters() InterpolationParameters {
	return InterpolationParameters{
		MaxRefinementIterations:   3,
		AveragingMethod:           AveragingSimple,
		MinPoints:                 1,
		RelativeSearchRadius:      1.01,
		InterpolateTo:             InterpolateToS1,
		UseMassCenterWhenRefining: true,
	}
}

func (p InterpolationParameters) Validate() error {
	const op = "interpolation parameters"
	if p.MaxRefinementIterations < 1 {
		return validationf(op, "max refinement iterations %d must be at least 1", p.MaxRefinementIterations)
	}
	if !p.AveragingMethod.valid() {
		return validationf(op, "unknown averaging method %d", p.AveragingMethod)
	}
	if p.MinPoints < 1 {
		return validationf(op, "min points %d must be at least 1", p.MinPoints)
	}
	if !fitsInt32(p.MaxRefinementIterations, p.MinPoints) {
		return validationf(op, "max refinement iterations and min points must fit in 32 bits")
	}
	if !positive(p.RelativeSearchRadius) {
		return validationf(op, "relative search radius %g must be positive", p.RelativeSearchRadius)
	}
	if !p.InterpolateTo.valid() {
		return validationf(op, "unknown interpolate-to option %d", p.InterpolateTo)
	}
	return nil
}

func (p InterpolationParameters) toBackend() backend.InterpolationParameters {
	return backend.InterpolationParameters{
		MaxRefinementIterations:   int32(p.MaxRefinementIterations),
		AveragingMethod:           int32(p.AveragingMethod),
		MinPoints:                 int32(p.MinPoints),
		RelativeSearchRadius:      p.RelativeSearchRadius,
		InterpolateTo:             int32(p.InterpolateTo),
		RefineIntersected:         flag(p.RefineIntersected),
		UseMassCenterWhenRefining: flag(p.UseMassCenterWhenRefining),
	}
}

// SampleRefineParameters controls refinement based on sample values.
type SampleRefineParameters struct {
	MaxRefinementIterations      int            `yaml:"max_refinement_iterations" json:"max_refinement_iterations"`
	MinFaceSize                  float64        `yaml:"min_face_size" json:"min_face_size"`
	RefinementType               RefinementType `yaml:"refinement_type" json:"refinement_type"`
	ConnectHangingNodes          bool           `yaml:"connect_hanging_nodes" json:"connect_hanging_nodes"`
	MaxTimeStep                  float64        `yaml:"max_time_step" json:"max_time_step"`
	AccountForSamplesOutsideFace bool           `yaml:"account_for_samples_outside_face" json:"account_for_samples_outside_face"`
}

func DefaultSampleRefineParameters() SampleRefineParameters {
	return SampleRefineParameters{
		MaxRefinementIterations: 10,
		MinFaceSize:             5e-4,
		RefinementType:          RefinementWaveCourant,
		ConnectHangingNodes:     true,
		MaxTimeStep:             1,
	}
}

func (p SampleRefineParameters) Validate() error {
	const op = "sample refine parameters"
	if p.MaxRefinementIterations < 1 {
		return validationf(op, "max refinement iterations %d must be at least 1", p.MaxRefinementIterations)
	}
	if !fitsInt32(p.MaxRefinementIterations) {
		return validationf(op, "max refinement iterations %d must fit in 32 bits", p.MaxRefinementIterations)
	}
	if !positive(p.MinFaceSize) || !positive(p.MaxTimeStep) {
		return validationf(op, "min face size and max time step must be positive")
	}
	if !p.RefinementType.valid() {
		return validationf(op, "unknown refinement type %d", p.RefinementType)
	}
	return nil
}

func (p SampleRefineParameters) toBackend() backend.SampleRefineParameters {
	return backend.SampleRefineParameters{
		MaxRefinementIterations:      int32(p.MaxRefinementIterations),
		MinFaceSize:                  p.MinFaceSize,
		RefinementType:               int32(p.RefinementType),
		ConnectHangingNodes:          flag(p.ConnectHangingNodes),
		MaxTimeStep:                  p.MaxTimeStep,
		AccountForSamplesOutsideFace: flag(p.AccountForSamplesOutsideFace),
	}
}

// LineAttractionRepulsionParameters sets how strongly grid lines are pulled
// towards (positive) or pushed away from (negative) the configured line.
type LineAttractionRepulsionParameters struct {
	Factor float64 `yaml:"factor" json:"factor"`
}

func DefaultLineAttractionRepulsionParameters() LineAttractionRepulsionParameters {
	return LineAttractionRepulsionParameters{Factor: 0.5}
}

func (p LineAttractionRepulsionParameters) Validate() error {
	if math.IsNaN(p.Factor) || p.Factor < -1 || p.Factor > 1 {
		return validationf("line attraction repulsion parameters", "factor %g outside [-1, 1]", p.Factor)
	}
	return nil
}

func (p LineAttractionRepulsionParameters) toBackend() backend.LineAttractionRepulsionParameters {
	return backend.LineAttractionRepulsionParameters{Factor: p.Factor}
}

type DirectionalSmoothingParameters struct {
	Iterations int `yaml:"iterations" json:"iterations"`
}

func DefaultDirectionalSmoothingParameters() DirectionalSmoothingParameters {
	return DirectionalSmoothingParameters{Iterations: 1}
}

func (p DirectionalSmoothingParameters) Validate() error {
	if p.Iterations < 1 || !fitsInt32(p.Iterations) {
		return validationf("directional smoothing parameters", "iterations %d must be in [1, %d]", p.Iterations, math.MaxInt32)
	}
	return nil
}

func (p DirectionalSmoothingParameters) toBackend() backend.DirectionalSmoothingParameters {
	return backend.DirectionalSmoothingParameters{Iterations: int32(p.Iterations)}
}

func flag(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// fitsInt32 reports whether every v survives conversion to the engine's
// 32-bit integers.
func fitsInt32(vs ...int) bool {
	for _, v := range vs {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return false
		}
	}
	return true
}

func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func unit(v float64) bool { return v >= 0 && v <= 1 }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
