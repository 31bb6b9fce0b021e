package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// Mesh2d is an unstructured 2d mesh. Callers supply nodes and edges; faces
// and edge mid points are filled in by the engine when the mesh is read back
// from a session.
type Mesh2d struct {
	nodeX, nodeY []float64
	edgeNodes    []int32

	faceNodes    []int32
	nodesPerFace []int32
	edgeX, edgeY []float64
	faceX, faceY []float64
}

// NewMesh2d validates and copies a 2d mesh.
func NewMesh2d(nodeX, nodeY []float64, edgeNodes []int32) (Mesh2d, error) {
	if err := validateConnectivity("mesh2d", nodeX, nodeY, edgeNodes); err != nil {
		return Mesh2d{}, err
	}
	return Mesh2d{
		nodeX:     backend.Contiguous(nodeX),
		nodeY:     backend.Contiguous(nodeY),
		edgeNodes: backend.Contiguous(edgeNodes),
	}, nil
}

func (m Mesh2d) NodeX() []float64      { return backend.Contiguous(m.nodeX) }
func (m Mesh2d) NodeY() []float64      { return backend.Contiguous(m.nodeY) }
func (m Mesh2d) EdgeNodes() []int32    { return backend.Contiguous(m.edgeNodes) }
func (m Mesh2d) FaceNodes() []int32    { return backend.Contiguous(m.faceNodes) }
func (m Mesh2d) NodesPerFace() []int32 { return backend.Contiguous(m.nodesPerFace) }
func (m Mesh2d) EdgeX() []float64      { return backend.Contiguous(m.edgeX) }
func (m Mesh2d) EdgeY() []float64      { return backend.Contiguous(m.edgeY) }
func (m Mesh2d) FaceX() []float64      { return backend.Contiguous(m.faceX) }
func (m Mesh2d) FaceY() []float64      { return backend.Contiguous(m.faceY) }
func (m Mesh2d) NumNodes() int         { return len(m.nodeX) }
func (m Mesh2d) NumEdges() int         { return len(m.edgeNodes) / 2 }
func (m Mesh2d) NumFaces() int         { return len(m.nodesPerFace) }
func (m Mesh2d) Node(i int) Point      { return Point{X: m.nodeX[i], Y: m.nodeY[i]} }

// Face returns the node indices of face i, counter-clockwise.
func (m Mesh2d) Face(i int) []int32 {
	start := 0
	for _, n := range m.nodesPerFace[:i] {
		start += int(n)
	}
	return backend.Contiguous(m.faceNodes[start : start+int(m.nodesPerFace[i])])
}

func (m Mesh2d) toBackend() backend.Mesh2d {
	return backend.Mesh2d{
		EdgeNodes: backend.Contiguous(m.edgeNodes),
		NodeX:     backend.Contiguous(m.nodeX),
		NodeY:     backend.Contiguous(m.nodeY),
		NumNodes:  int32(len(m.nodeX)),
		NumEdges:  int32(len(m.edgeNodes) / 2),
	}
}

func mesh2dFromBackend(b backend.Mesh2d) Mesh2d {
	return Mesh2d{
		nodeX:        b.NodeX[:b.NumNodes],
		nodeY:        b.NodeY[:b.NumNodes],
		edgeNodes:    b.EdgeNodes[:2*b.NumEdges],
		faceNodes:    b.FaceNodes[:b.NumFaceNodes],
		nodesPerFace: b.NodesPerFace[:b.NumFaces],
		edgeX:        b.EdgeX[:b.NumEdges],
		edgeY:        b.EdgeY[:b.NumEdges],
		faceX:        b.FaceX[:b.NumFaces],
		faceY:        b.FaceY[:b.NumFaces],
	}
}
