package meshkernel

import "math"

// NewRectilinearMesh2d lays out rows x cols nodes with equal spacing from
// origin. Nodes are numbered with x varying fastest; vertical edges come
// before horizontal ones.
func NewRectilinearMesh2d(rows, cols int, origin Point, spacing float64) (Mesh2d, error) {
	const op = "rectilinear mesh2d"
	if rows < 1 || cols < 1 {
		return Mesh2d{}, validationf(op, "need at least one row and column, got %d x %d", rows, cols)
	}
	if !fitsInt32(rows, cols) || rows*cols > math.MaxInt32 {
		return Mesh2d{}, validationf(op, "%d x %d nodes exceed the engine's 32-bit counts", rows, cols)
	}
	if !positive(spacing) {
		return Mesh2d{}, validationf(op, "spacing %g must be positive", spacing)
	}
	if !finite(origin.X, origin.Y) {
		return Mesh2d{}, validationf(op, "origin must be finite")
	}

	nodeX := make([]float64, 0, rows*cols)
	nodeY := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			nodeX = append(nodeX, origin.X+float64(c)*spacing)
			nodeY = append(nodeY, origin.Y+float64(r)*spacing)
		}
	}

	edges := make([]int32, 0, 2*((rows-1)*cols+rows*(cols-1)))
	for r := 0; r+1 < rows; r++ {
		for c := 0; c < cols; c++ {
			edges = append(edges, int32(r*cols+c), int32((r+1)*cols+c))
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c+1 < cols; c++ {
			edges = append(edges, int32(r*cols+c), int32(r*cols+c+1))
		}
	}
	return Mesh2d{nodeX: nodeX, nodeY: nodeY, edgeNodes: edges}, nil
}
