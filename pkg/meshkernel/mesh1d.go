package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// Mesh1d is a network of nodes joined by edges.
type Mesh1d struct {
	nodeX, nodeY []float64
	edgeNodes    []int32
}

// NewMesh1d validates and copies a 1d mesh. edgeNodes holds one pair of node
// indices per edge.
func NewMesh1d(nodeX, nodeY []float64, edgeNodes []int32) (Mesh1d, error) {
	if err := validateConnectivity("mesh1d", nodeX, nodeY, edgeNodes); err != nil {
		return Mesh1d{}, err
	}
	return Mesh1d{
		nodeX:     backend.Contiguous(nodeX),
		nodeY:     backend.Contiguous(nodeY),
		edgeNodes: backend.Contiguous(edgeNodes),
	}, nil
}

func validateConnectivity(op string, nodeX, nodeY []float64, edgeNodes []int32) error {
	if len(nodeX) != len(nodeY) {
		return validationf(op, "node_x has %d entries but node_y has %d", len(nodeX), len(nodeY))
	}
	if !fitsInt32(len(nodeX), len(edgeNodes)/2) {
		return validationf(op, "%d nodes and %d edges exceed the engine's 32-bit counts", len(nodeX), len(edgeNodes)/2)
	}
	if len(edgeNodes)%2 != 0 {
		return validationf(op, "edge_nodes length %d is odd", len(edgeNodes))
	}
	n := int32(len(nodeX))
	for i, v := range edgeNodes {
		if v < 0 || v >= n {
			return validationf(op, "edge_nodes[%d] = %d is outside [0, %d)", i, v, n)
		}
	}
	return nil
}

func (m Mesh1d) NodeX() []float64    { return backend.Contiguous(m.nodeX) }
func (m Mesh1d) NodeY() []float64    { return backend.Contiguous(m.nodeY) }
func (m Mesh1d) EdgeNodes() []int32  { return backend.Contiguous(m.edgeNodes) }
func (m Mesh1d) NumNodes() int       { return len(m.nodeX) }
func (m Mesh1d) NumEdges() int       { return len(m.edgeNodes) / 2 }
func (m Mesh1d) Node(i int) Point    { return Point{X: m.nodeX[i], Y: m.nodeY[i]} }
func (m Mesh1d) Edge(i int) [2]int32 { return [2]int32{m.edgeNodes[2*i], m.edgeNodes[2*i+1]} }

func (m Mesh1d) toBackend() backend.Mesh1d {
	return backend.Mesh1d{
		EdgeNodes: backend.Contiguous(m.edgeNodes),
		NodeX:     backend.Contiguous(m.nodeX),
		NodeY:     backend.Contiguous(m.nodeY),
		NumNodes:  int32(len(m.nodeX)),
		NumEdges:  int32(len(m.edgeNodes) / 2),
	}
}

func mesh1dFromBackend(b backend.Mesh1d) Mesh1d {
	return Mesh1d{
		nodeX:     b.NodeX[:b.NumNodes],
		nodeY:     b.NodeY[:b.NumNodes],
		edgeNodes: b.EdgeNodes[:2*b.NumEdges],
	}
}
