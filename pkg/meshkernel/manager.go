package meshkernel

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"sync"
	"weak"

	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/logging"
)

// Engine is the capability contract a Manager drives. Use NewNativeManager
// for the linked MeshKernel library or pass mockengine.New() in tests.
type Engine = backend.Engine

// Handle identifies a session within its Manager. Handles are never reused.
type Handle uint64

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics reports engine calls and live sessions to scope.
func WithMetrics(scope tally.Scope) Option {
	return func(m *Manager) { m.scope = scope }
}

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

// SessionOption configures a session at creation.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	projection Projection
}

// WithProjection overrides Config.Projection for one session.
func WithProjection(p Projection) SessionOption {
	return func(c *sessionConfig) { c.projection = p }
}

// Manager owns engine contexts. Each Session maps to exactly one context;
// distinct sessions may be used concurrently, while calls on one session are
// serialised.
type Manager struct {
	engine  Engine
	logger  logging.Logger
	cfg     Config
	scope   tally.Scope
	metrics *metrics

	mu       sync.Mutex
	sessions map[Handle]*session
	next     Handle
	closed   bool
}

// session is the manager-side state of a context. The manager keeps it
// strongly and the caller's *Session weakly, so a leaked Session can still
// be collected and finalized.
type session struct {
	handle     Handle
	id         backend.ContextID
	label      string
	projection Projection
	// sem admits one With at a time.
	sem chan struct{}
	// mu serialises engine calls on the context and guards protocol.
	mu       sync.Mutex
	protocol protocol
	// state guards the lifecycle flags below.
	state sync.Mutex
	// held is set while a With callback runs; destroying a held session
	// is deferred until the callback returns.
	held      bool
	pending   bool
	destroyed bool
	public    weak.Pointer[Session]
}

// doomed reports whether the session is destroyed or about to be.
func (s *session) doomed() bool {
	s.state.Lock()
	defer s.state.Unlock()
	return s.destroyed || s.pending
}

// NewManager returns a manager driving engine.
func NewManager(engine Engine, opts ...Option) (*Manager, error) {
	if engine == nil {
		return nil, validationf("new manager", "nil engine")
	}
	m := &Manager{
		engine:   engine,
		logger:   logging.Nop(),
		cfg:      DefaultConfig(),
		scope:    tally.NoopScope,
		sessions: make(map[Handle]*session),
		next:     1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, err
	}
	m.metrics = newMetrics(m.scope, m.cfg.MetricsPrefix)
	return m, nil
}

// NewNativeManager drives the linked MeshKernel library. Binaries built
// without it get a resource error wrapping ErrNotBuilt.
func NewNativeManager(opts ...Option) (*Manager, error) {
	engine, err := backend.NewNative()
	if err != nil {
		return nil, RemapError("new native manager", err)
	}
	return NewManager(engine, opts...)
}

// Engine returns the engine the manager drives.
func (m *Manager) Engine() Engine {
	return m.engine
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Create allocates an engine context and returns the owning Session. The
// caller must Close it; a finalizer destroys leaked sessions as a last
// resort.
func (m *Manager) Create(ctx context.Context, opts ...SessionOption) (*Session, error) {
	const op = "create"
	sc := sessionConfig{projection: m.cfg.Projection}
	for _, opt := range opts {
		opt(&sc)
	}
	if !sc.projection.valid() {
		return nil, validationf(op, "unknown projection %d", sc.projection)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, invalidStatef(op, "manager is closed")
	}
	id, st := m.engine.Allocate(int32(sc.projection))
	if err := backend.Check(m.engine, "allocate", st); err != nil {
		err = RemapError(op, err)
		m.logger.Warn(ctx, "session allocation failed", "error", err)
		return nil, err
	}

	s := &session{
		handle:     m.next,
		id:         id,
		label:      uuid.NewString(),
		projection: sc.projection,
		sem:        make(chan struct{}, 1),
	}
	m.next++
	m.sessions[s.handle] = s
	m.metrics.sessions(len(m.sessions))

	pub := &Session{m: m, handle: s.handle, s: s}
	s.public = weak.Make(pub)
	runtime.SetFinalizer(pub, func(p *Session) {
		p.m.logger.Warn(context.Background(), "session was not closed", "handle", p.handle, "session", p.s.label)
		_ = p.m.Destroy(p.handle)
	})

	m.logger.Info(ctx, "session created", "handle", s.handle, "session", s.label, "projection", s.projection.String())
	return pub, nil
}

// Destroy releases the context behind h. Destroying a session from inside
// its own With callback, or while another goroutine holds it, succeeds at
// once: the remaining calls of that callback fail with an invalid-handle
// error and the context is released when the callback returns. Destroying
// an unknown or already destroyed handle is an invalid-handle error.
func (m *Manager) Destroy(h Handle) error {
	m.mu.Lock()
	s, ok := m.sessions[h]
	if ok {
		delete(m.sessions, h)
		m.metrics.sessions(len(m.sessions))
	}
	m.mu.Unlock()
	if !ok {
		return invalidHandle("destroy", h)
	}
	return m.release(s)
}

func (m *Manager) release(s *session) error {
	s.state.Lock()
	if s.held {
		s.pending = true
		s.state.Unlock()
		m.logger.Debug(context.Background(), "session destroy deferred until With returns", "handle", s.handle, "session", s.label)
		return nil
	}
	s.state.Unlock()

	// Only the gap between a With taking sem and marking the session held
	// is waited out here.
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	return m.deallocate(s)
}

func (m *Manager) deallocate(s *session) error {
	s.state.Lock()
	s.destroyed = true
	s.state.Unlock()
	if p := s.public.Value(); p != nil {
		runtime.SetFinalizer(p, nil)
	}

	s.mu.Lock()
	err := RemapError("destroy", backend.Check(m.engine, "deallocate", m.engine.Deallocate(s.id)))
	s.mu.Unlock()
	if err != nil {
		m.logger.Warn(context.Background(), "session deallocation failed", "handle", s.handle, "session", s.label, "error", err)
		return err
	}
	m.logger.Info(context.Background(), "session destroyed", "handle", s.handle, "session", s.label)
	return nil
}

// Lookup returns the live Session for h.
func (m *Manager) Lookup(h Handle) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[h]
	m.mu.Unlock()
	if !ok {
		return nil, invalidHandle("lookup", h)
	}
	p := s.public.Value()
	if p == nil {
		return nil, invalidHandle("lookup", h)
	}
	return p, nil
}

// With runs fn with exclusive access to the session behind h.
func (m *Manager) With(ctx context.Context, h Handle, fn func(*Scope) error) error {
	m.mu.Lock()
	s, ok := m.sessions[h]
	m.mu.Unlock()
	if !ok {
		return invalidHandle("with", h)
	}
	return m.with(ctx, s, fn)
}

// Parallel runs fn once per handle, concurrently across handles and bounded
// by Config.MaxParallel. The first error cancels the context of the calls
// still waiting for access.
func (m *Manager) Parallel(ctx context.Context, handles []Handle, fn func(*Scope) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.MaxParallel)
	for _, h := range handles {
		g.Go(func() error {
			return m.With(gctx, h, fn)
		})
	}
	return g.Wait()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close destroys every live session and refuses new ones. Errors from the
// individual sessions are combined.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	live := make([]*session, 0, len(m.sessions))
	for h, s := range m.sessions {
		live = append(live, s)
		delete(m.sessions, h)
	}
	m.metrics.sessions(0)
	m.mu.Unlock()

	slices.SortFunc(live, func(a, b *session) int { return cmp.Compare(a.handle, b.handle) })
	var err error
	for _, s := range live {
		err = multierr.Append(err, m.release(s))
	}
	return err
}

func (m *Manager) with(ctx context.Context, s *session, fn func(*Scope) error) error {
	if fn == nil {
		return validationf("with", "nil function")
	}
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return &Error{Kind: KindResource, Op: "with", Detail: "waiting for session access", Cause: ctx.Err()}
	}
	defer func() { <-s.sem }()

	s.state.Lock()
	if s.destroyed || s.pending {
		s.state.Unlock()
		return invalidHandle("with", s.handle)
	}
	s.held = true
	s.state.Unlock()

	sc := &Scope{m: m, s: s, ctx: ctx}
	sc.valid.Store(true)
	defer m.leave(sc)
	return fn(sc)
}

// leave ends a With callback and carries out a destroy requested during it.
func (m *Manager) leave(sc *Scope) {
	sc.valid.Store(false)
	s := sc.s
	s.state.Lock()
	s.held = false
	pending := s.pending
	s.state.Unlock()
	if pending {
		_ = m.deallocate(s)
	}
}
