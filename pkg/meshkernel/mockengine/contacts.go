package mockengine

import "math"

// contactFinder pairs masked mesh1d nodes with mesh2d faces.
type contactFinder struct {
	s     *state
	mask  []int32
	faces [][]int32
	ring  []ring
	topo  *topology
}

func newContactFinder(s *state, mask []int32) *contactFinder {
	t := s.mesh2d.topology()
	rings := make([]ring, len(t.faces))
	for i, f := range t.faces {
		r := make(ring, len(f))
		for k, n := range f {
			r[k] = s.mesh2d.node(n)
		}
		rings[i] = r
	}
	return &contactFinder{s: s, mask: mask, faces: t.faces, ring: rings, topo: t}
}

func (c *contactFinder) enabled(i int) bool { return c.mask[i] != 0 }

// closestFace returns the face whose mass centre is nearest to p.
func (c *contactFinder) closestFace(p point) int {
	best, bestD := -1, math.Inf(1)
	for i, ctr := range c.topo.centers {
		if d := dist(p, ctr); d < bestD-eps {
			best, bestD = i, d
		}
	}
	return best
}

// closestNode returns the enabled mesh1d node nearest to p, optionally
// restricted by accept.
func (c *contactFinder) closestNode(p point, accept func(point) bool) (int, float64) {
	best, bestD := -1, math.Inf(1)
	m := &c.s.mesh1d
	for i := range m.x {
		if !c.enabled(i) {
			continue
		}
		q := m.node(int32(i))
		if accept != nil && !accept(q) {
			continue
		}
		if d := dist(p, q); d < bestD-eps {
			best, bestD = i, d
		}
	}
	return best, bestD
}

func (c *contactFinder) faceContaining(p point) int {
	for i, r := range c.ring {
		if r.contains(p) {
			return i
		}
	}
	return -1
}

// single connects every enabled mesh1d node inside polys to its closest
// face.
func (c *contactFinder) single(polys polygonSet) contacts {
	var out contacts
	m := &c.s.mesh1d
	for i := range m.x {
		p := m.node(int32(i))
		if !c.enabled(i) || !polys.contains(p) {
			continue
		}
		if f := c.closestFace(p); f >= 0 {
			out.mesh1d = append(out.mesh1d, int32(i))
			out.mesh2d = append(out.mesh2d, int32(f))
		}
	}
	return out
}

// multiple connects every face crossed by the mesh1d network to the closest
// enabled mesh1d node.
func (c *contactFinder) multiple() contacts {
	var out contacts
	m := &c.s.mesh1d
	for fi, r := range c.ring {
		crossed := false
		for _, e := range m.edges {
			a, b := m.node(e[0]), m.node(e[1])
			if r.contains(a) || r.contains(b) || crossesRing(r, a, b) {
				crossed = true
				break
			}
		}
		if !crossed {
			continue
		}
		if n, _ := c.closestNode(c.topo.centers[fi], nil); n >= 0 {
			out.mesh1d = append(out.mesh1d, int32(n))
			out.mesh2d = append(out.mesh2d, int32(fi))
		}
	}
	return out
}

func crossesRing(r ring, a, b point) bool {
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		if _, _, ok := segmentIntersection(a, b, r[j], r[i]); ok {
			return true
		}
	}
	return false
}

// withPolygons makes one contact per polygon: the closest pair of a face
// centred inside it and an enabled mesh1d node inside it.
func (c *contactFinder) withPolygons(polys polygonSet) contacts {
	var out contacts
	for _, poly := range polys {
		bestN, bestF, bestD := -1, -1, math.Inf(1)
		for fi, ctr := range c.topo.centers {
			if !poly.contains(ctr) {
				continue
			}
			n, d := c.closestNode(ctr, poly.contains)
			if n >= 0 && d < bestD-eps {
				bestN, bestF, bestD = n, fi, d
			}
		}
		if bestN >= 0 {
			out.mesh1d = append(out.mesh1d, int32(bestN))
			out.mesh2d = append(out.mesh2d, int32(bestF))
		}
	}
	return out
}

// withPoints connects the face containing each point to the closest enabled
// mesh1d node.
func (c *contactFinder) withPoints(pts []point) contacts {
	var out contacts
	for _, p := range pts {
		f := c.faceContaining(p)
		if f < 0 {
			continue
		}
		if n, _ := c.closestNode(p, nil); n >= 0 {
			out.mesh1d = append(out.mesh1d, int32(n))
			out.mesh2d = append(out.mesh2d, int32(f))
		}
	}
	return out
}

// boundary connects boundary faces centred inside polys to the closest
// enabled mesh1d node within radius.
func (c *contactFinder) boundary(polys polygonSet, radius float64) contacts {
	var out contacts
	onBoundary := make([]bool, len(c.faces))
	for _, faces := range c.topo.edgeFaces {
		if len(faces) == 1 {
			onBoundary[faces[0]] = true
		}
	}
	for fi, ctr := range c.topo.centers {
		if !onBoundary[fi] || !polys.contains(ctr) {
			continue
		}
		if n, d := c.closestNode(ctr, nil); n >= 0 && d <= radius {
			out.mesh1d = append(out.mesh1d, int32(n))
			out.mesh2d = append(out.mesh2d, int32(fi))
		}
	}
	return out
}
