package mockengine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Version is reported by Engine.Version.
const Version = "mock-2.0.0"

// Option configures an Engine.
type Option func(*Engine)

// WithCapacity bounds the number of live contexts. Allocate reports
// StatusAllocationFailure once the bound is reached. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(e *Engine) { e.capacity = n }
}

// WithCallDelay makes every context-bound call hold its context for d. Tests
// use it to widen the window in which overlapping calls are detected.
func WithCallDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// Engine implements backend.Engine in memory.
type Engine struct {
	mu        sync.Mutex
	capacity  int
	delay     time.Duration
	nextCtx   backend.ContextID
	contexts  map[backend.ContextID]*state
	nextAlloc backend.AllocID
	allocs    map[backend.AllocID]struct{}
	lastErr   string
	inject    *injected

	violations atomic.Int64
	calls      atomic.Int64
}

type injected struct {
	status  backend.Status
	message string
}

var _ backend.Engine = (*Engine)(nil)

// New returns an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		contexts: make(map[backend.ContextID]*state),
		allocs:   make(map[backend.AllocID]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outstanding returns the number of engine allocations not yet freed.
func (e *Engine) Outstanding() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.allocs)
}

// Contexts returns the number of live contexts.
func (e *Engine) Contexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

// Violations returns how many calls found their context already in use.
func (e *Engine) Violations() int64 {
	return e.violations.Load()
}

// Calls returns the number of context-bound calls served so far.
func (e *Engine) Calls() int64 {
	return e.calls.Load()
}

// FailNext makes the next engine call fail with st and record msg as the
// last error. Version and LastError are not affected.
func (e *Engine) FailNext(st backend.Status, msg string) {
	e.mu.Lock()
	e.inject = &injected{status: st, message: msg}
	e.mu.Unlock()
}

func (e *Engine) Version() string { return Version }

// LastError keeps one message for all contexts, like the native engine.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) setErr(st backend.Status, format string, args ...any) backend.Status {
	e.mu.Lock()
	e.lastErr = fmt.Sprintf(format, args...)
	e.mu.Unlock()
	return st
}

// injectedFailure consumes a pending FailNext.
func (e *Engine) injectedFailure() (backend.Status, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inject == nil {
		return backend.StatusSuccess, false
	}
	in := e.inject
	e.inject = nil
	e.lastErr = in.message
	return in.status, true
}

// enter claims exclusive use of a context for one call. The returned release
// function must be called when the call completes.
func (e *Engine) enter(id backend.ContextID) (*state, func(), backend.Status) {
	if st, ok := e.injectedFailure(); ok {
		return nil, nil, st
	}
	e.mu.Lock()
	s, ok := e.contexts[id]
	e.mu.Unlock()
	if !ok {
		return nil, nil, e.setErr(backend.StatusInvalidContext, "context %d does not exist", id)
	}
	if !s.busy.CompareAndSwap(false, true) {
		e.violations.Add(1)
		return nil, nil, e.setErr(backend.StatusException, "context %d is already in use by another call", id)
	}
	e.calls.Add(1)
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return s, func() { s.busy.Store(false) }, backend.StatusSuccess
}

func (e *Engine) Allocate(projection int32) (backend.ContextID, backend.Status) {
	if st, ok := e.injectedFailure(); ok {
		return 0, st
	}
	if projection < 0 || projection > 2 {
		return 0, e.setErr(backend.StatusRangeError, "unknown projection %d", projection)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capacity > 0 && len(e.contexts) >= e.capacity {
		e.lastErr = fmt.Sprintf("cannot allocate state: %d contexts in use", len(e.contexts))
		return 0, backend.StatusAllocationFailure
	}
	id := e.nextCtx
	e.nextCtx++
	e.contexts[id] = newState(projection)
	return id, backend.StatusSuccess
}

func (e *Engine) Deallocate(id backend.ContextID) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	e.mu.Lock()
	delete(e.contexts, id)
	e.mu.Unlock()
	s.alg = nil
	return backend.StatusSuccess
}

func (e *Engine) Free(alloc backend.AllocID) backend.Status {
	if st, ok := e.injectedFailure(); ok {
		return st
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.allocs[alloc]; !ok {
		e.lastErr = fmt.Sprintf("free: allocation %d is not owned by the engine", alloc)
		return backend.StatusInvalidState
	}
	delete(e.allocs, alloc)
	return backend.StatusSuccess
}

// allocate registers an engine-owned result geometry.
func (e *Engine) allocate(x, y, values []float64) backend.Allocation {
	e.mu.Lock()
	e.nextAlloc++
	id := e.nextAlloc
	e.allocs[id] = struct{}{}
	e.mu.Unlock()
	return backend.Allocation{
		ID:       id,
		Geometry: backend.NewGeometry(x, y, values),
	}
}

func (e *Engine) SetMesh1d(id backend.ContextID, m backend.Mesh1d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	if err := checkMesh1d(m); err != nil {
		return e.setErr(backend.StatusInvalidGeometry, "set mesh1d: %v", err)
	}
	s.mesh1d = mesh1d{
		x:     append([]float64(nil), m.NodeX[:m.NumNodes]...),
		y:     append([]float64(nil), m.NodeY[:m.NumNodes]...),
		edges: toEdges(m.EdgeNodes[:2*m.NumEdges]),
	}
	return backend.StatusSuccess
}

func (e *Engine) Mesh1dDimensions(id backend.ContextID, m *backend.Mesh1d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	m.NumNodes = int32(len(s.mesh1d.x))
	m.NumEdges = int32(len(s.mesh1d.edges))
	return backend.StatusSuccess
}

func (e *Engine) Mesh1dData(id backend.ContextID, m *backend.Mesh1d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	nn, ne := len(s.mesh1d.x), len(s.mesh1d.edges)
	if len(m.NodeX) < nn || len(m.NodeY) < nn || len(m.EdgeNodes) < 2*ne {
		return e.setErr(backend.StatusRangeError, "mesh1d data: output buffers too small")
	}
	copy(m.NodeX, s.mesh1d.x)
	copy(m.NodeY, s.mesh1d.y)
	for i, ed := range s.mesh1d.edges {
		m.EdgeNodes[2*i], m.EdgeNodes[2*i+1] = ed[0], ed[1]
	}
	m.NumNodes, m.NumEdges = int32(nn), int32(ne)
	return backend.StatusSuccess
}

func (e *Engine) SetMesh2d(id backend.ContextID, m backend.Mesh2d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	if err := checkMesh2d(m); err != nil {
		return e.setErr(backend.StatusInvalidGeometry, "set mesh2d: %v", err)
	}
	s.mesh2d = newMesh2d(m.NodeX[:m.NumNodes], m.NodeY[:m.NumNodes], toEdges(m.EdgeNodes[:2*m.NumEdges]))
	return backend.StatusSuccess
}

func (e *Engine) Mesh2dDimensions(id backend.ContextID, m *backend.Mesh2d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	f := s.mesh2d.topology()
	m.NumNodes = int32(len(s.mesh2d.x))
	m.NumEdges = int32(len(s.mesh2d.edges))
	m.NumFaces = int32(len(f.faces))
	m.NumFaceNodes = int32(f.faceNodeCount())
	return backend.StatusSuccess
}

func (e *Engine) Mesh2dData(id backend.ContextID, m *backend.Mesh2d) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	mesh := s.mesh2d
	f := mesh.topology()
	nn, ne, nf, nfn := len(mesh.x), len(mesh.edges), len(f.faces), f.faceNodeCount()
	if len(m.NodeX) < nn || len(m.NodeY) < nn || len(m.EdgeNodes) < 2*ne ||
		len(m.EdgeX) < ne || len(m.EdgeY) < ne || len(m.FaceX) < nf || len(m.FaceY) < nf ||
		len(m.NodesPerFace) < nf || len(m.FaceNodes) < nfn {
		return e.setErr(backend.StatusRangeError, "mesh2d data: output buffers too small")
	}
	copy(m.NodeX, mesh.x)
	copy(m.NodeY, mesh.y)
	for i, ed := range mesh.edges {
		m.EdgeNodes[2*i], m.EdgeNodes[2*i+1] = ed[0], ed[1]
		mid := mesh.edgeMid(i)
		m.EdgeX[i], m.EdgeY[i] = mid.X, mid.Y
	}
	pos := 0
	for i, face := range f.faces {
		m.NodesPerFace[i] = int32(len(face))
		for _, n := range face {
			m.FaceNodes[pos] = n
			pos++
		}
		m.FaceX[i], m.FaceY[i] = f.centers[i].X, f.centers[i].Y
	}
	m.NumNodes, m.NumEdges, m.NumFaces, m.NumFaceNodes = int32(nn), int32(ne), int32(nf), int32(nfn)
	return backend.StatusSuccess
}

func (e *Engine) SetCurvilinear(id backend.ContextID, g backend.CurvilinearGrid) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	n := int(g.NumM) * int(g.NumN)
	if g.NumM < 0 || g.NumN < 0 || len(g.NodeX) < n || len(g.NodeY) < n {
		return e.setErr(backend.StatusInvalidGeometry, "set curvilinear grid: %d x %d nodes do not match %d coordinates", g.NumM, g.NumN, len(g.NodeX))
	}
	s.grid = newGrid(int(g.NumM), int(g.NumN), g.NodeX[:n], g.NodeY[:n])
	return backend.StatusSuccess
}

func (e *Engine) CurvilinearDimensions(id backend.ContextID, g *backend.CurvilinearGrid) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	g.NumM, g.NumN = int32(s.grid.m), int32(s.grid.n)
	return backend.StatusSuccess
}

func (e *Engine) CurvilinearData(id backend.ContextID, g *backend.CurvilinearGrid) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	n := len(s.grid.x)
	if len(g.NodeX) < n || len(g.NodeY) < n {
		return e.setErr(backend.StatusRangeError, "curvilinear data: output buffers too small")
	}
	copy(g.NodeX, s.grid.x)
	copy(g.NodeY, s.grid.y)
	g.NumM, g.NumN = int32(s.grid.m), int32(s.grid.n)
	return backend.StatusSuccess
}

func (e *Engine) ContactsDimensions(id backend.ContextID, c *backend.Contacts) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	c.NumContacts = int32(len(s.contacts.mesh1d))
	return backend.StatusSuccess
}

func (e *Engine) ContactsData(id backend.ContextID, c *backend.Contacts) backend.Status {
	s, release, st := e.enter(id)
	if st != backend.StatusSuccess {
		return st
	}
	defer release()
	n := len(s.contacts.mesh1d)
	if len(c.Mesh1dIndices) < n || len(c.Mesh2dIndices) < n {
		return e.setErr(backend.StatusRangeError, "contacts data: output buffers too small")
	}
	copy(c.Mesh1dIndices, s.contacts.mesh1d)
	copy(c.Mesh2dIndices, s.contacts.mesh2d)
	c.NumContacts = int32(n)
	return backend.StatusSuccess
}

func checkMesh1d(m backend.Mesh1d) error {
	if m.NumNodes < 0 || m.NumEdges < 0 {
		return fmt.Errorf("negative dimensions")
	}
	if len(m.NodeX) < int(m.NumNodes) || len(m.NodeY) < int(m.NumNodes) || len(m.EdgeNodes) < 2*int(m.NumEdges) {
		return fmt.Errorf("buffers shorter than the declared dimensions")
	}
	return checkIndices(m.EdgeNodes[:2*m.NumEdges], m.NumNodes)
}

func checkMesh2d(m backend.Mesh2d) error {
	if m.NumNodes < 0 || m.NumEdges < 0 {
		return fmt.Errorf("negative dimensions")
	}
	if len(m.NodeX) < int(m.NumNodes) || len(m.NodeY) < int(m.NumNodes) || len(m.EdgeNodes) < 2*int(m.NumEdges) {
		return fmt.Errorf("buffers shorter than the declared dimensions")
	}
	return checkIndices(m.EdgeNodes[:2*m.NumEdges], m.NumNodes)
}

func checkIndices(idx []int32, n int32) error {
	for i, v := range idx {
		if v < 0 || v >= n {
			return fmt.Errorf("edge node %d at position %d out of range [0, %d)", v, i, n)
		}
	}
	return nil
}

func toEdges(flat []int32) [][2]int32 {
	out := make([][2]int32, len(flat)/2)
	for i := range out {
		out[i] = [2]int32{flat[2*i], flat[2*i+1]}
	}
	return out
}
