package mockengine

import (
	"math"
	"sort"
)

// maxFaceNodes bounds the faces reported on retrieval.
const maxFaceNodes = 6

type mesh2d struct {
	x, y  []float64
	edges [][2]int32
	topo  *topology
}

func newMesh2d(x, y []float64, edges [][2]int32) *mesh2d {
	return &mesh2d{
		x:     append([]float64(nil), x...),
		y:     append([]float64(nil), y...),
		edges: append([][2]int32(nil), edges...),
	}
}

func (m *mesh2d) changed() { m.topo = nil }

func (m *mesh2d) node(i int32) point {
	return point{X: m.x[i], Y: m.y[i]}
}

func (m *mesh2d) edgeMid(i int) point {
	return lerp(m.node(m.edges[i][0]), m.node(m.edges[i][1]), 0.5)
}

func (m *mesh2d) numNodes() int32 { return int32(len(m.x)) }

// topology holds the faces found on the current nodes and edges.
type topology struct {
	faces     [][]int32
	centers   []point
	areas     []float64
	edgeFaces [][]int
}

func (t *topology) faceNodeCount() int {
	n := 0
	for _, f := range t.faces {
		n += len(f)
	}
	return n
}

type halfEdge struct {
	to   int32
	edge int
}

// topology finds faces by walking half-edges: arriving at v from u, the walk
// continues along the edge that follows u clockwise around v. Faces are
// recorded in the order their first edge appears, each starting at the
// origin of that edge.
func (m *mesh2d) topology() *topology {
	if m.topo != nil {
		return m.topo
	}
	adj := make([][]halfEdge, len(m.x))
	for i, e := range m.edges {
		if e[0] == e[1] {
			continue
		}
		adj[e[0]] = append(adj[e[0]], halfEdge{to: e[1], edge: i})
		adj[e[1]] = append(adj[e[1]], halfEdge{to: e[0], edge: i})
	}
	for v := range adj {
		origin := m.node(int32(v))
		sort.SliceStable(adj[v], func(i, j int) bool {
			a := sub(m.node(adj[v][i].to), origin)
			b := sub(m.node(adj[v][j].to), origin)
			return math.Atan2(a.Y, a.X) < math.Atan2(b.Y, b.X)
		})
	}
	next := func(u, v int32, edge int) (int32, int) {
		list := adj[v]
		for k, h := range list {
			if h.to == u && h.edge == edge {
				n := list[(k-1+len(list))%len(list)]
				return n.to, n.edge
			}
		}
		return -1, -1
	}

	t := &topology{edgeFaces: make([][]int, len(m.edges))}
	visited := make(map[[2]int]bool)
	for i, e := range m.edges {
		if e[0] == e[1] {
			continue
		}
		for dir := 0; dir < 2; dir++ {
			u, v := e[dir], e[1-dir]
			if visited[[2]int{i, dir}] {
				continue
			}
			nodes := []int32{u}
			steps := []int{i}
			cu, cv, ce := u, v, i
			closed := false
			for len(nodes) <= maxFaceNodes {
				nu, ne := next(cu, cv, ce)
				if nu < 0 {
					break
				}
				if cv == u && ne == i {
					closed = true
					break
				}
				nodes = append(nodes, cv)
				steps = append(steps, ne)
				cu, cv, ce = cv, nu, ne
			}
			if !closed || len(nodes) < 3 || len(nodes) > maxFaceNodes || hasDuplicate(nodes) {
				continue
			}
			r := make(ring, len(nodes))
			for k, n := range nodes {
				r[k] = m.node(n)
			}
			area := r.area()
			if area <= eps {
				continue
			}
			fi := len(t.faces)
			t.faces = append(t.faces, nodes)
			t.centers = append(t.centers, r.centroid())
			t.areas = append(t.areas, area)
			for k, se := range steps {
				d := 0
				if m.edges[se][0] != nodes[k] {
					d = 1
				}
				visited[[2]int{se, d}] = true
				t.edgeFaces[se] = append(t.edgeFaces[se], fi)
			}
		}
	}
	m.topo = t
	return t
}

func hasDuplicate(nodes []int32) bool {
	seen := make(map[int32]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

func (m *mesh2d) degrees() []int {
	deg := make([]int, len(m.x))
	for _, e := range m.edges {
		deg[e[0]]++
		deg[e[1]]++
	}
	return deg
}

// boundaryNodes marks nodes on an edge with fewer than two faces.
func (m *mesh2d) boundaryNodes() []bool {
	t := m.topology()
	out := make([]bool, len(m.x))
	for i, e := range m.edges {
		if len(t.edgeFaces[i]) < 2 {
			out[e[0]], out[e[1]] = true, true
		}
	}
	return out
}

// compact drops the nodes and edges not kept and renumbers the rest. Edges
// touching a dropped node are dropped too.
func (m *mesh2d) compact(keepNode, keepEdge []bool) {
	remap := make([]int32, len(m.x))
	var x, y []float64
	for i := range m.x {
		if !keepNode[i] {
			remap[i] = -1
			continue
		}
		remap[i] = int32(len(x))
		x = append(x, m.x[i])
		y = append(y, m.y[i])
	}
	var edges [][2]int32
	for i, e := range m.edges {
		if !keepEdge[i] || remap[e[0]] < 0 || remap[e[1]] < 0 {
			continue
		}
		edges = append(edges, [2]int32{remap[e[0]], remap[e[1]]})
	}
	m.x, m.y, m.edges = x, y, edges
	m.changed()
}

// dropIsolated removes nodes that lost all their edges, limited to the
// candidates given.
func (m *mesh2d) dropIsolated(candidates map[int32]bool) {
	deg := m.degrees()
	keepNode := make([]bool, len(m.x))
	for i := range keepNode {
		keepNode[i] = !(candidates[int32(i)] && deg[i] == 0)
	}
	keepEdge := make([]bool, len(m.edges))
	for i := range keepEdge {
		keepEdge[i] = true
	}
	m.compact(keepNode, keepEdge)
}

func (m *mesh2d) closestEdge(p point) int {
	best, bestD := -1, math.Inf(1)
	for i, e := range m.edges {
		d := segmentDistance(p, m.node(e[0]), m.node(e[1]))
		if d < bestD-eps {
			best, bestD = i, d
		}
	}
	return best
}

func (m *mesh2d) closestNode(p point) (int32, float64) {
	best, bestD := int32(-1), math.Inf(1)
	for i := range m.x {
		d := dist(p, m.node(int32(i)))
		if d < bestD-eps {
			best, bestD = int32(i), d
		}
	}
	return best, bestD
}

// append merges another node/edge set into the mesh.
func (m *mesh2d) append(x, y []float64, edges [][2]int32) {
	off := int32(len(m.x))
	m.x = append(m.x, x...)
	m.y = append(m.y, y...)
	for _, e := range edges {
		m.edges = append(m.edges, [2]int32{e[0] + off, e[1] + off})
	}
	m.changed()
}

// appendTriangles adds the triangles over pts, keeping only the used points.
func (m *mesh2d) appendTriangles(pts []point, tris [][3]int) {
	used := make(map[int]int32)
	var x, y []float64
	id := func(i int) int32 {
		if v, ok := used[i]; ok {
			return v
		}
		v := int32(len(x))
		used[i] = v
		x = append(x, pts[i].X)
		y = append(y, pts[i].Y)
		return v
	}
	seen := make(map[[2]int32]bool)
	var edges [][2]int32
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			a, b := id(t[k]), id(t[(k+1)%3])
			key := [2]int32{min(a, b), max(a, b)}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, [2]int32{a, b})
		}
	}
	m.append(x, y, edges)
}

// deleteInside removes mesh parts selected by the option: 0 nodes, 1 faces
// by mass centre, 2 faces with all nodes selected.
func (m *mesh2d) deleteInside(selected func(point) bool, option int32) {
	if option == 0 {
		keepNode := make([]bool, len(m.x))
		for i := range m.x {
			keepNode[i] = !selected(m.node(int32(i)))
		}
		keepEdge := make([]bool, len(m.edges))
		for i := range keepEdge {
			keepEdge[i] = true
		}
		m.compact(keepNode, keepEdge)
		return
	}

	t := m.topology()
	deleted := make([]bool, len(t.faces))
	for fi, face := range t.faces {
		if option == 1 {
			deleted[fi] = selected(t.centers[fi])
			continue
		}
		all := true
		for _, n := range face {
			if !selected(m.node(n)) {
				all = false
				break
			}
		}
		deleted[fi] = all
	}
	keepEdge := make([]bool, len(m.edges))
	candidates := make(map[int32]bool)
	for i, e := range m.edges {
		faces := t.edgeFaces[i]
		drop := len(faces) > 0
		for _, f := range faces {
			if !deleted[f] {
				drop = false
			}
		}
		if len(faces) == 0 {
			drop = selected(m.edgeMid(i))
		}
		keepEdge[i] = !drop
		if drop {
			candidates[e[0]], candidates[e[1]] = true, true
		}
	}
	keepNode := make([]bool, len(m.x))
	for i := range keepNode {
		keepNode[i] = true
	}
	// Every node is kept, so candidate indices survive the compaction.
	m.compact(keepNode, keepEdge)
	m.dropIsolated(candidates)
}

func (m *mesh2d) hangingEdges() []int {
	deg := m.degrees()
	var out []int
	for i, e := range m.edges {
		if deg[e[0]] == 1 || deg[e[1]] == 1 {
			out = append(out, i)
		}
	}
	return out
}

// orthogonality reports, per edge, the cosine of the angle between the edge
// and the segment joining its two face centres. Boundary edges report the
// missing value.
func (m *mesh2d) orthogonality() []float64 {
	t := m.topology()
	out := make([]float64, len(m.edges))
	for i, e := range m.edges {
		faces := t.edgeFaces[i]
		if len(faces) != 2 {
			out[i] = missing
			continue
		}
		ev := sub(m.node(e[1]), m.node(e[0]))
		cv := sub(t.centers[faces[1]], t.centers[faces[0]])
		den := math.Hypot(ev.X, ev.Y) * math.Hypot(cv.X, cv.Y)
		if den == 0 {
			out[i] = missing
			continue
		}
		out[i] = math.Abs(dot(ev, cv)) / den
	}
	return out
}

// smooth moves every free node towards the mean of its neighbours, Jacobi
// style, for the given number of sweeps.
func (m *mesh2d) smooth(free []bool, sweeps int) {
	neighbours := make([][]int32, len(m.x))
	for _, e := range m.edges {
		neighbours[e[0]] = append(neighbours[e[0]], e[1])
		neighbours[e[1]] = append(neighbours[e[1]], e[0])
	}
	for s := 0; s < sweeps; s++ {
		nx := append([]float64(nil), m.x...)
		ny := append([]float64(nil), m.y...)
		for i, nb := range neighbours {
			if !free[i] || len(nb) == 0 {
				continue
			}
			var sx, sy float64
			for _, j := range nb {
				sx += m.x[j]
				sy += m.y[j]
			}
			nx[i], ny[i] = sx/float64(len(nb)), sy/float64(len(nb))
		}
		m.x, m.y = nx, ny
	}
	m.changed()
}

// locations returns the points of the requested mesh location together with
// a characteristic size used by averaging: 0 faces, 1 nodes, 2 edges.
func (m *mesh2d) locations(loc int32) ([]point, []float64, bool) {
	switch loc {
	case 0:
		t := m.topology()
		sizes := make([]float64, len(t.faces))
		for i, a := range t.areas {
			sizes[i] = math.Sqrt(a)
		}
		return append([]point(nil), t.centers...), sizes, true
	case 1:
		pts := make([]point, len(m.x))
		sizes := make([]float64, len(m.x))
		counts := make([]int, len(m.x))
		for i := range m.x {
			pts[i] = m.node(int32(i))
		}
		for _, e := range m.edges {
			l := dist(m.node(e[0]), m.node(e[1]))
			sizes[e[0]] += l
			sizes[e[1]] += l
			counts[e[0]]++
			counts[e[1]]++
		}
		for i := range sizes {
			if counts[i] > 0 {
				sizes[i] /= float64(counts[i])
			}
		}
		return pts, sizes, true
	case 2:
		pts := make([]point, len(m.edges))
		sizes := make([]float64, len(m.edges))
		for i, e := range m.edges {
			pts[i] = m.edgeMid(i)
			sizes[i] = dist(m.node(e[0]), m.node(e[1]))
		}
		return pts, sizes, true
	}
	return nil, nil, false
}
