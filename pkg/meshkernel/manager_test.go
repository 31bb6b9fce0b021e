package meshkernel_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/mockengine"
)

func TestNewManagerRejectsNilEngine(t *testing.T) {
	_, err := meshkernel.NewManager(nil)
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestNewManagerValidatesConfig(t *testing.T) {
	cfg := meshkernel.DefaultConfig()
	cfg.MaxParallel = 0
	_, err := meshkernel.NewManager(mockengine.New(), meshkernel.WithConfig(cfg))
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestNativeManagerWithoutEngine(t *testing.T) {
	if meshkernel.NativeAvailable {
		t.Skip("native engine linked")
	}
	_, err := meshkernel.NewNativeManager()
	assert.ErrorIs(t, err, meshkernel.ErrResource)
	assert.ErrorIs(t, err, meshkernel.ErrNotBuilt)
}

func TestCreateAndDestroy(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, e.Contexts())
	assert.NotEmpty(t, s.Label())
	assert.Equal(t, meshkernel.ProjectionCartesian, s.Projection())

	found, err := m.Lookup(s.Handle())
	require.NoError(t, err)
	assert.Same(t, s, found)

	require.NoError(t, s.Close())
	assert.Zero(t, m.Len())
	assert.Zero(t, e.Contexts())

	assert.ErrorIs(t, s.Close(), meshkernel.ErrInvalidHandle)
	assert.ErrorIs(t, m.Destroy(s.Handle()), meshkernel.ErrInvalidHandle)
	_, err = m.Lookup(s.Handle())
	assert.ErrorIs(t, err, meshkernel.ErrInvalidHandle)
}

func TestDestroyedSessionRejectsCalls(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	require.NoError(t, s.Close())

	calls := e.Calls()
	err := s.With(t.Context(), func(sc *meshkernel.Scope) error {
		t.Fatal("callback ran on a destroyed session")
		return nil
	})
	assert.ErrorIs(t, err, meshkernel.ErrInvalidHandle)
	assert.ErrorIs(t, err, meshkernel.ErrInvalidState, "an invalid handle is an invalid state")
	assert.ErrorIs(t, m.With(t.Context(), s.Handle(), func(*meshkernel.Scope) error { return nil }), meshkernel.ErrInvalidHandle)
	assert.Equal(t, calls, e.Calls())
}

func TestHandlesAreNotReused(t *testing.T) {
	m, _ := newManager(t)
	a := newSession(t, m)
	require.NoError(t, a.Close())
	b := newSession(t, m)
	assert.NotEqual(t, a.Handle(), b.Handle())
	assert.NotEqual(t, a.Label(), b.Label())
}

func TestSessionsAreIsolated(t *testing.T) {
	m, _ := newManager(t)
	a := newSession(t, m)
	b := newSession(t, m)
	makeUniform(t, a, 3, 3, 1, 1)
	makeUniform(t, b, 1, 1, 5, 5)

	require.NoError(t, b.Close())
	g := readGrid(t, a)
	assert.Equal(t, 4, g.NumM())
	assert.Equal(t, pt(3, 3), node(t, g, 3, 3))
}

func TestWithProjection(t *testing.T) {
	m, _ := newManager(t)
	s, err := m.Create(t.Context(), meshkernel.WithProjection(meshkernel.ProjectionSpherical))
	require.NoError(t, err)
	assert.Equal(t, meshkernel.ProjectionSpherical, s.Projection())

	_, err = m.Create(t.Context(), meshkernel.WithProjection(meshkernel.Projection(9)))
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
}

func TestCreateReportsAllocationFailure(t *testing.T) {
	m, _ := newManagerWith(t, mockengine.New(mockengine.WithCapacity(1)))
	newSession(t, m)

	_, err := m.Create(t.Context())
	var merr *meshkernel.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, meshkernel.KindResource, merr.Kind)
	assert.Contains(t, merr.Native, "contexts in use")
	assert.Equal(t, 1, m.Len())
}

func TestScopeInvalidAfterCallback(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)

	var leaked *meshkernel.Scope
	with(t, s, func(sc *meshkernel.Scope) error {
		leaked = sc
		return nil
	})
	_, err := leaked.CurvilinearGrid()
	assert.ErrorIs(t, err, meshkernel.ErrInvalidState)
	_, _, err = leaked.ProtocolState()
	assert.ErrorIs(t, err, meshkernel.ErrInvalidState)
}

func TestWithReturnsCallbackError(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	sentinel := errors.New("stop")

	assert.ErrorIs(t, s.With(t.Context(), func(*meshkernel.Scope) error { return sentinel }), sentinel)
	assert.ErrorIs(t, s.With(t.Context(), nil), meshkernel.ErrValidation)
	with(t, s, func(*meshkernel.Scope) error { return nil })
}

func TestWithReleasesAccessOnPanic(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)

	assert.Panics(t, func() {
		_ = s.With(t.Context(), func(*meshkernel.Scope) error { panic("boom") })
	})
	with(t, s, func(*meshkernel.Scope) error { return nil })
}

func TestWithHonoursContextWhileWaiting(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)

	entered := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.With(context.Background(), func(*meshkernel.Scope) error {
			close(entered)
			<-done
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := s.With(ctx, func(*meshkernel.Scope) error { return nil })
	assert.ErrorIs(t, err, meshkernel.ErrResource)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(done)
}

func TestConcurrentCallsOnOneSessionAreSerialised(t *testing.T) {
	m, e := newManagerWith(t, mockengine.New(mockengine.WithCallDelay(time.Millisecond)))
	s := newSession(t, m)
	makeUniform(t, s, 3, 3, 1, 1)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.With(context.Background(), func(sc *meshkernel.Scope) error {
				_, err := sc.CurvilinearGrid()
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, e.Violations())
}

func TestScopeSharedAcrossGoroutines(t *testing.T) {
	m, e := newManagerWith(t, mockengine.New(mockengine.WithCallDelay(2*time.Millisecond)))
	s := newSession(t, m)
	makeUniform(t, s, 3, 3, 1, 1)

	with(t, s, func(sc *meshkernel.Scope) error {
		const workers = 4
		var wg sync.WaitGroup
		errs := make(chan error, 2*workers)
		for i := 0; i < workers; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := sc.CurvilinearGrid()
				errs <- err
			}()
			go func() {
				defer wg.Done()
				errs <- sc.CurvilinearMoveNode(pt(1, 1), pt(1.1, 1.1))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
		return nil
	})
	assert.Zero(t, e.Violations())
}

func TestProtocolStepsAreAtomicOnSharedScope(t *testing.T) {
	m, e := newManagerWith(t, mockengine.New(mockengine.WithCallDelay(time.Millisecond)))
	s := newSession(t, m)
	makeUniform(t, s, 3, 3, 10, 10)

	var initialized atomic.Int32
	with(t, s, func(sc *meshkernel.Scope) error {
		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := sc.Orthogonalization().Initialize(meshkernel.DefaultOrthogonalizationParameters())
				if err == nil {
					initialized.Add(1)
					return
				}
				assert.ErrorIs(t, err, meshkernel.ErrInvalidState)
			}()
		}
		wg.Wait()
		return sc.Orthogonalization().Finalize()
	})
	assert.Equal(t, int32(1), initialized.Load())
	assert.Zero(t, e.Violations())
}

func TestCloseInsideWith(t *testing.T) {
	m, e := newManager(t)
	s := newSession(t, m)
	makeUniform(t, s, 2, 2, 1, 1)

	with(t, s, func(sc *meshkernel.Scope) error {
		require.NoError(t, s.Close())
		assert.Zero(t, m.Len())
		assert.Equal(t, 1, e.Contexts(), "released once the callback returns")

		_, err := sc.CurvilinearGrid()
		assert.ErrorIs(t, err, meshkernel.ErrInvalidHandle)
		assert.ErrorIs(t, s.Close(), meshkernel.ErrInvalidHandle)
		return nil
	})
	assert.Zero(t, e.Contexts())
	assert.ErrorIs(t, s.With(t.Context(), func(*meshkernel.Scope) error { return nil }), meshkernel.ErrInvalidHandle)
}

func TestManagerCloseInsideWith(t *testing.T) {
	m, e := newManager(t)
	a := newSession(t, m)
	newSession(t, m)

	with(t, a, func(*meshkernel.Scope) error {
		require.NoError(t, m.Close())
		assert.Equal(t, 1, e.Contexts())
		return nil
	})
	assert.Zero(t, e.Contexts())
}

func TestParallelAcrossSessions(t *testing.T) {
	cfg := meshkernel.DefaultConfig()
	cfg.MaxParallel = 3
	m, e := newManagerWith(t, mockengine.New(mockengine.WithCallDelay(time.Millisecond)), meshkernel.WithConfig(cfg))

	handles := make([]meshkernel.Handle, 6)
	for i := range handles {
		handles[i] = newSession(t, m).Handle()
	}
	// Every handle appears twice so two workers contend for each session.
	work := append(append([]meshkernel.Handle{}, handles...), handles...)

	err := m.Parallel(t.Context(), work, func(sc *meshkernel.Scope) error {
		if err := sc.CurvilinearMakeUniform(uniformGrid(2, 2, 1, 1), meshkernel.GeometryList{}); err != nil {
			return err
		}
		_, err := sc.CurvilinearGrid()
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, e.Violations())
}

func TestParallelStopsOnError(t *testing.T) {
	m, _ := newManager(t)
	a := newSession(t, m)
	b := newSession(t, m)
	require.NoError(t, b.Close())

	err := m.Parallel(t.Context(), []meshkernel.Handle{a.Handle(), b.Handle()}, func(*meshkernel.Scope) error { return nil })
	assert.ErrorIs(t, err, meshkernel.ErrInvalidHandle)
}

func TestCloseDestroysEverything(t *testing.T) {
	e := mockengine.New()
	m, err := meshkernel.NewManager(e)
	require.NoError(t, err)
	a, err := m.Create(t.Context())
	require.NoError(t, err)
	_, err = m.Create(t.Context())
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Zero(t, e.Contexts())
	assert.Zero(t, m.Len())
	assert.ErrorIs(t, a.Close(), meshkernel.ErrInvalidHandle)

	_, err = m.Create(t.Context())
	assert.ErrorIs(t, err, meshkernel.ErrInvalidState)
	assert.NoError(t, m.Close())
}

func TestCloseCombinesErrors(t *testing.T) {
	e := mockengine.New()
	m, err := meshkernel.NewManager(e)
	require.NoError(t, err)
	_, err = m.Create(t.Context())
	require.NoError(t, err)
	_, err = m.Create(t.Context())
	require.NoError(t, err)

	e.FailNext(meshkernel.StatusException, "deallocate failed")
	err = m.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, meshkernel.ErrEngine)
	assert.Equal(t, 1, e.Contexts(), "the second session is still released")
}
