package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// The algorithm handles below are thin views on a Scope. Protocol state is
// kept per session, so a protocol may span several Session.With calls and
// the grid can be inspected between steps.

// Orthogonalization smooths the curvilinear grid towards orthogonality.
// Nodes on frozen lines and outside the configured blocks stay put. It may
// execute repeatedly.
type Orthogonalization struct{ sc *Scope }

func (sc *Scope) Orthogonalization() Orthogonalization { return Orthogonalization{sc} }

func (o Orthogonalization) Initialize(params OrthogonalizationParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return o.sc.initialize(AlgorithmOrthogonalization, params.toBackend())
}

// SetBlock restricts the algorithm to the block spanned by the nodes closest
// to the two corners. Blocks accumulate.
func (o Orthogonalization) SetBlock(lowerLeft, upperRight Point) error {
	return o.sc.configure(AlgorithmOrthogonalization, constraint(backend.ConstraintBlock, lowerLeft, upperRight))
}

// SetFrozenLine freezes the grid line between the nodes closest to first and
// second.
func (o Orthogonalization) SetFrozenLine(first, second Point) error {
	return o.sc.configure(AlgorithmOrthogonalization, constraint(backend.ConstraintFrozenLine, first, second))
}

func (o Orthogonalization) Execute() error  { return o.sc.execute(AlgorithmOrthogonalization) }
func (o Orthogonalization) Finalize() error { return o.sc.finalize(AlgorithmOrthogonalization) }

// LineShift moves nodes of a grid line and distributes the displacement over
// the configured block. Every execute starts again from the grid as it was
// at initialize.
type LineShift struct{ sc *Scope }

func (sc *Scope) LineShift() LineShift { return LineShift{sc} }

func (l LineShift) Initialize() error {
	return l.sc.initialize(AlgorithmLineShift, nil)
}

func (l LineShift) SetLine(first, second Point) error {
	return l.sc.configure(AlgorithmLineShift, constraint(backend.ConstraintLine, first, second))
}

func (l LineShift) SetBlock(lowerLeft, upperRight Point) error {
	return l.sc.configure(AlgorithmLineShift, constraint(backend.ConstraintBlock, lowerLeft, upperRight))
}

// MoveNode moves the line node closest to from onto to. A line must be set
// first.
func (l LineShift) MoveNode(from, to Point) error {
	return l.sc.configure(AlgorithmLineShift, constraint(backend.ConstraintMoveNode, from, to))
}

func (l LineShift) Execute() error  { return l.sc.execute(AlgorithmLineShift) }
func (l LineShift) Finalize() error { return l.sc.finalize(AlgorithmLineShift) }

// AttractionRepulsion pulls grid lines towards the configured line or pushes
// them away. It executes once per initialize.
type AttractionRepulsion struct{ sc *Scope }

func (sc *Scope) AttractionRepulsion() AttractionRepulsion { return AttractionRepulsion{sc} }

func (a AttractionRepulsion) Initialize(params LineAttractionRepulsionParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return a.sc.initialize(AlgorithmAttractionRepulsion, params.toBackend())
}

func (a AttractionRepulsion) SetLine(first, second Point) error {
	return a.sc.configure(AlgorithmAttractionRepulsion, constraint(backend.ConstraintLine, first, second))
}

func (a AttractionRepulsion) SetBlock(lowerLeft, upperRight Point) error {
	return a.sc.configure(AlgorithmAttractionRepulsion, constraint(backend.ConstraintBlock, lowerLeft, upperRight))
}

func (a AttractionRepulsion) Execute() error  { return a.sc.execute(AlgorithmAttractionRepulsion) }
func (a AttractionRepulsion) Finalize() error { return a.sc.finalize(AlgorithmAttractionRepulsion) }

// DirectionalSmoothing smooths the grid along the direction of the
// configured line. It executes once per initialize.
type DirectionalSmoothing struct{ sc *Scope }

func (sc *Scope) DirectionalSmoothing() DirectionalSmoothing { return DirectionalSmoothing{sc} }

func (d DirectionalSmoothing) Initialize(params DirectionalSmoothingParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return d.sc.initialize(AlgorithmDirectionalSmoothing, params.toBackend())
}

func (d DirectionalSmoothing) SetLine(first, second Point) error {
	return d.sc.configure(AlgorithmDirectionalSmoothing, constraint(backend.ConstraintLine, first, second))
}

func (d DirectionalSmoothing) SetBlock(lowerLeft, upperRight Point) error {
	return d.sc.configure(AlgorithmDirectionalSmoothing, constraint(backend.ConstraintBlock, lowerLeft, upperRight))
}

func (d DirectionalSmoothing) Execute() error  { return d.sc.execute(AlgorithmDirectionalSmoothing) }
func (d DirectionalSmoothing) Finalize() error { return d.sc.finalize(AlgorithmDirectionalSmoothing) }
