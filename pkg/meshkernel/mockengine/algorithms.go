package mockengine

import (
	"sort"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

func (e *Engine) AlgorithmInitialize(id backend.ContextID, alg backend.Algorithm, params any) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	if s.alg != nil {
		return e.setErr(backend.StatusInvalidState, "%s: %s is already initialized", alg, s.alg.kind)
	}
	if s.grid.empty() {
		return e.setErr(backend.StatusInvalidGeometry, "%s: %v", alg, errNoGrid)
	}
	a := &algorithm{kind: alg}
	switch alg {
	case backend.AlgorithmOrthogonalization:
		p, ok := params.(backend.OrthogonalizationParameters)
		if !ok {
			return e.setErr(backend.StatusInvalidGeometry, "%s: unexpected parameters %T", alg, params)
		}
		a.ortho = p
	case backend.AlgorithmLineShift:
		a.origin = s.grid.clone()
	case backend.AlgorithmAttractionRepulsion:
		p, ok := params.(backend.LineAttractionRepulsionParameters)
		if !ok {
			return e.setErr(backend.StatusInvalidGeometry, "%s: unexpected parameters %T", alg, params)
		}
		a.factor = p.Factor
	case backend.AlgorithmDirectionalSmoothing:
		p, ok := params.(backend.DirectionalSmoothingParameters)
		if !ok {
			return e.setErr(backend.StatusInvalidGeometry, "%s: unexpected parameters %T", alg, params)
		}
		a.iterations = p.Iterations
	default:
		return e.setErr(backend.StatusNotImplemented, "unknown algorithm %d", alg)
	}
	s.alg = a
	return backend.StatusSuccess
}

func accepts(alg backend.Algorithm, k backend.ConstraintKind) bool {
	switch alg {
	case backend.AlgorithmOrthogonalization:
		return k == backend.ConstraintBlock || k == backend.ConstraintFrozenLine
	case backend.AlgorithmLineShift:
		return k == backend.ConstraintLine || k == backend.ConstraintBlock || k == backend.ConstraintMoveNode
	case backend.AlgorithmAttractionRepulsion, backend.AlgorithmDirectionalSmoothing:
		return k == backend.ConstraintLine || k == backend.ConstraintBlock
	}
	return false
}

func (e *Engine) AlgorithmConfigure(id backend.ContextID, alg backend.Algorithm, c backend.Constraint) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	a := s.alg
	if a == nil || a.kind != alg {
		return e.setErr(backend.StatusInvalidState, "%s: not initialized", alg)
	}
	if !accepts(alg, c.Kind) {
		return e.setErr(backend.StatusInvalidGeometry, "%s: %s constraints are not supported", alg, c.Kind)
	}
	g := s.grid
	if a.origin != nil {
		g = a.origin
	}
	switch c.Kind {
	case backend.ConstraintBlock:
		b, err := g.blockBetween(c.First, c.Second)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: block: %v", alg, err)
		}
		a.blocks = append(a.blocks, b)
	case backend.ConstraintFrozenLine:
		l, err := g.lineBetween(c.First, c.Second)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: frozen line: %v", alg, err)
		}
		a.frozen = append(a.frozen, l)
	case backend.ConstraintLine:
		l, err := g.lineBetween(c.First, c.Second)
		if err != nil {
			return e.setErr(backend.StatusInvalidGeometry, "%s: line: %v", alg, err)
		}
		a.line = &l
	case backend.ConstraintMoveNode:
		if a.line == nil {
			return e.setErr(backend.StatusInvalidState, "%s: set a line before moving nodes", alg)
		}
		node, ok := g.closest(c.First)
		if !ok || !a.line.contains(node) {
			return e.setErr(backend.StatusInvalidGeometry, "%s: node to move is not on the line", alg)
		}
		a.moves = append(a.moves, nodeMove{node: node, to: c.Second})
	}
	return backend.StatusSuccess
}

func (e *Engine) AlgorithmExecute(id backend.ContextID, alg backend.Algorithm) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	a := s.alg
	if a == nil || a.kind != alg {
		return e.setErr(backend.StatusInvalidState, "%s: not initialized", alg)
	}
	switch alg {
	case backend.AlgorithmOrthogonalization:
		orthogonalize(s.grid, a)
		return backend.StatusSuccess
	case backend.AlgorithmLineShift:
		if a.line == nil {
			return e.setErr(backend.StatusInvalidState, "%s: no line configured", alg)
		}
		s.grid = lineShift(a)
		return backend.StatusSuccess
	}
	if a.line == nil {
		return e.setErr(backend.StatusInvalidState, "%s: no line configured", alg)
	}
	if a.applied {
		return e.setErr(backend.StatusInvalidState, "%s: already executed", alg)
	}
	if alg == backend.AlgorithmAttractionRepulsion {
		attractRepulse(s.grid, a)
	} else {
		smoothDirectional(s.grid, a)
	}
	a.applied = true
	return backend.StatusSuccess
}

func (e *Engine) AlgorithmFinalize(id backend.ContextID, alg backend.Algorithm) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	if s.alg == nil || s.alg.kind != alg {
		return e.setErr(backend.StatusInvalidState, "%s: not initialized", alg)
	}
	s.alg = nil
	return backend.StatusSuccess
}

func inBlocks(blocks []nodeBlock, g gridNode) bool {
	if len(blocks) == 0 {
		return true
	}
	for _, b := range blocks {
		if b.contains(g) {
			return true
		}
	}
	return false
}

// interior reports whether (m, n) is a valid node with four valid
// neighbours.
func (g *grid) interior(m, n int) bool {
	return g.valid(m, n) && g.valid(m-1, n) && g.valid(m+1, n) && g.valid(m, n-1) && g.valid(m, n+1)
}

// orthogonalize relaxes free interior nodes towards the mean of their four
// neighbours. Nodes on frozen lines and outside the configured blocks stay
// where they are.
func orthogonalize(g *grid, a *algorithm) {
	w := a.ortho.OrthogonalizationToSmoothingFactor
	if w <= 0 || w > 1 {
		w = 1
	}
	sweeps := max(1, int(a.ortho.OuterIterations)) * max(1, int(a.ortho.InnerIterations))
	free := make([]bool, g.m*g.n)
	for n := 0; n < g.n; n++ {
		for m := 0; m < g.m; m++ {
			node := gridNode{m: m, n: n}
			if !g.interior(m, n) || !inBlocks(a.blocks, node) {
				continue
			}
			frozen := false
			for _, l := range a.frozen {
				if l.contains(node) {
					frozen = true
					break
				}
			}
			free[g.idx(m, n)] = !frozen
		}
	}
	for s := 0; s < sweeps; s++ {
		next := g.clone()
		for n := 0; n < g.n; n++ {
			for m := 0; m < g.m; m++ {
				if !free[g.idx(m, n)] {
					continue
				}
				avg := scale(add(add(g.at(m-1, n), g.at(m+1, n)), add(g.at(m, n-1), g.at(m, n+1))), 0.25)
				next.set(m, n, lerp(g.at(m, n), avg, w))
			}
		}
		copy(g.x, next.x)
		copy(g.y, next.y)
	}
}

// lineShift recomputes the grid from the state captured at initialization:
// nodes on the line follow the moved nodes with linearly interpolated
// displacements, and block nodes beside the line follow with a displacement
// that fades to zero at the block edge.
func lineShift(a *algorithm) *grid {
	g := a.origin.clone()
	o := a.origin
	l := *a.line
	oriented := o
	lineIdx := func(node gridNode) (int, int) { return node.m, node.n }
	if !l.alongM() {
		oriented = o.transpose()
		lineIdx = func(node gridNode) (int, int) { return node.n, node.m }
	}
	lo, row := lineIdx(l.from)
	hi, _ := lineIdx(l.to)
	if lo > hi {
		lo, hi = hi, lo
	}

	type anchor struct {
		k    int
		disp point
	}
	anchors := map[int]point{lo: {}, hi: {}}
	for _, mv := range a.moves {
		k, _ := lineIdx(mv.node)
		anchors[k] = sub(mv.to, o.at(mv.node.m, mv.node.n))
	}
	var sorted []anchor
	for k, d := range anchors {
		sorted = append(sorted, anchor{k: k, disp: d})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].k < sorted[j].k })
	disp := make(map[int]point, hi-lo+1)
	for i := 0; i+1 < len(sorted); i++ {
		a0, a1 := sorted[i], sorted[i+1]
		for k := a0.k; k <= a1.k; k++ {
			t := 0.0
			if a1.k > a0.k {
				t = float64(k-a0.k) / float64(a1.k-a0.k)
			}
			disp[k] = lerp(a0.disp, a1.disp, t)
		}
	}

	// Rows beside the line, in oriented coordinates, with their weights.
	weights := map[int]float64{row: 1}
	for _, b := range a.blocks {
		bl, bh := b.lo.n, b.hi.n
		if !l.alongM() {
			bl, bh = b.lo.m, b.hi.m
		}
		for r := bl; r <= bh; r++ {
			var w float64
			switch {
			case r > row && bh > row:
				w = float64(bh-r) / float64(bh-row)
			case r < row && bl < row:
				w = float64(r-bl) / float64(row-bl)
			default:
				continue
			}
			if w > weights[r] {
				weights[r] = w
			}
		}
	}
	for r, w := range weights {
		for k := lo; k <= hi; k++ {
			if !oriented.valid(k, r) {
				continue
			}
			m, n := k, r
			if !l.alongM() {
				m, n = r, k
			}
			g.set(m, n, add(o.at(m, n), scale(disp[k], w)))
		}
	}
	return g
}

// orientedLine returns the line's row and span with m along the line.
func orientedLine(g *grid, l gridLine) (*grid, int, int, int) {
	if l.alongM() {
		return g, l.from.n, min(l.from.m, l.to.m), max(l.from.m, l.to.m)
	}
	return g.transpose(), l.from.m, min(l.from.n, l.to.n), max(l.from.n, l.to.n)
}

func orientedBlocks(blocks []nodeBlock, alongM bool) []nodeBlock {
	if alongM {
		return blocks
	}
	out := make([]nodeBlock, len(blocks))
	for i, b := range blocks {
		out[i] = nodeBlock{lo: gridNode{m: b.lo.n, n: b.lo.m}, hi: gridNode{m: b.hi.n, n: b.hi.m}}
	}
	return out
}

// attractRepulse pulls grid lines parallel to the configured line towards it
// (positive factor) or pushes them away (negative factor). The pull weakens
// with the index distance from the line.
func attractRepulse(g *grid, a *algorithm) {
	o, row, lo, hi := orientedLine(g, *a.line)
	blocks := orientedBlocks(a.blocks, a.line.alongM())
	next := o.clone()
	for n := 1; n+1 < o.n; n++ {
		if n == row {
			continue
		}
		step := 1
		if n > row {
			step = -1
		}
		d := float64(abs(n - row))
		for m := lo; m <= hi; m++ {
			if !o.valid(m, n) || !o.valid(m, n+step) || !inBlocks(blocks, gridNode{m: m, n: n}) {
				continue
			}
			toward := sub(o.at(m, n+step), o.at(m, n))
			next.set(m, n, add(o.at(m, n), scale(toward, a.factor/d)))
		}
	}
	restore(g, next, a.line.alongM())
}

// smoothDirectional averages nodes with their neighbours along the line's
// direction.
func smoothDirectional(g *grid, a *algorithm) {
	o, row, _, _ := orientedLine(g, *a.line)
	blocks := orientedBlocks(a.blocks, a.line.alongM())
	for it := 0; it < max(1, int(a.iterations)); it++ {
		next := o.clone()
		for n := 1; n+1 < o.n; n++ {
			if n == row {
				continue
			}
			for m := 1; m+1 < o.m; m++ {
				if !o.valid(m, n) || !o.valid(m-1, n) || !o.valid(m+1, n) || !inBlocks(blocks, gridNode{m: m, n: n}) {
					continue
				}
				avg := scale(add(o.at(m-1, n), o.at(m+1, n)), 0.5)
				next.set(m, n, lerp(o.at(m, n), avg, 0.5))
			}
		}
		o = next
	}
	restore(g, o, a.line.alongM())
}

// restore writes an oriented grid back into g.
func restore(g, oriented *grid, alongM bool) {
	if !alongM {
		oriented = oriented.transpose()
	}
	copy(g.x, oriented.x)
	copy(g.y, oriented.y)
}
