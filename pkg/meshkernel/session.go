package meshkernel

import (
	"context"
	"runtime"
)

// Session owns one engine context. Every engine call goes through
// Session.With, which grants exclusive access for its duration.
//
// Memory Management:
// Sessions must be closed by calling Close when no longer needed. A finalizer
// is set as a safety net, but relying on it keeps engine memory alive until
// the next garbage collection.
//
// Example:
//
//	sess, err := manager.Create(ctx)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//	err = sess.With(ctx, func(sc *meshkernel.Scope) error {
//	    return sc.CurvilinearMakeUniform(meshkernel.DefaultMakeGridParameters(), meshkernel.GeometryList{})
//	})
type Session struct {
	m      *Manager
	handle Handle
	s      *session
}

func (s *Session) Handle() Handle { return s.handle }

// Label is a random identifier attached to every log line of the session.
func (s *Session) Label() string { return s.s.label }

func (s *Session) Projection() Projection { return s.s.projection }

// With runs fn with exclusive access to the session. Waiting for access
// honours ctx; an engine call in progress is never interrupted. The Scope is
// invalid once fn returns, and access is released on every exit path,
// including panics.
func (s *Session) With(ctx context.Context, fn func(*Scope) error) error {
	err := s.m.with(ctx, s.s, fn)
	runtime.KeepAlive(s)
	return err
}

// Close destroys the session. Closing twice reports an invalid handle, like
// Manager.Destroy.
func (s *Session) Close() error {
	return s.m.Destroy(s.handle)
}
