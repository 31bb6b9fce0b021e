package meshkernel_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel"
	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/mockengine"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := &meshkernel.Error{Kind: meshkernel.KindValidation, Op: "x"}
	assert.ErrorIs(t, err, meshkernel.ErrValidation)
	assert.NotErrorIs(t, err, meshkernel.ErrEngine)

	handle := &meshkernel.Error{Kind: meshkernel.KindInvalidHandle}
	assert.ErrorIs(t, handle, meshkernel.ErrInvalidHandle)
	assert.ErrorIs(t, handle, meshkernel.ErrInvalidState)
	assert.NotErrorIs(t, meshkernel.ErrInvalidState, meshkernel.ErrInvalidHandle)
}

func TestErrorMessage(t *testing.T) {
	err := &meshkernel.Error{
		Kind:   meshkernel.KindEngine,
		Op:     "mesh2d_delete",
		Detail: "exception",
		Native: "bad polygon",
		Cause:  errors.New("root"),
	}
	assert.Equal(t, "[mesh2d_delete] engine: exception: engine: bad polygon (caused by: root)", err.Error())
}

func TestRemapError(t *testing.T) {
	assert.NoError(t, meshkernel.RemapError("op", nil))

	own := &meshkernel.Error{Kind: meshkernel.KindResource}
	assert.Same(t, own, meshkernel.RemapError("op", own))
	wrapped := fmt.Errorf("context: %w", own)
	assert.Equal(t, wrapped, meshkernel.RemapError("op", wrapped))

	err := meshkernel.RemapError("op", errors.New("plain"))
	assert.ErrorIs(t, err, meshkernel.ErrEngine)

	err = meshkernel.RemapError("op", meshkernel.ErrNotBuilt)
	assert.ErrorIs(t, err, meshkernel.ErrResource)
	assert.ErrorIs(t, err, meshkernel.ErrNotBuilt)
}

func TestEngineStatusMapping(t *testing.T) {
	tests := []struct {
		status meshkernel.Status
		kind   meshkernel.Kind
	}{
		{meshkernel.StatusException, meshkernel.KindEngine},
		{meshkernel.StatusInvalidGeometry, meshkernel.KindValidation},
		{meshkernel.StatusRangeError, meshkernel.KindValidation},
		{meshkernel.StatusInvalidState, meshkernel.KindInvalidState},
		{meshkernel.StatusAllocationFailure, meshkernel.KindResource},
		{meshkernel.StatusInvalidContext, meshkernel.KindInvalidState},
		{meshkernel.StatusNotImplemented, meshkernel.KindEngine},
	}
	m, e := newManager(t)
	s := newSession(t, m)
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			e.FailNext(tc.status, "injected "+tc.status.String())
			err := s.With(t.Context(), func(sc *meshkernel.Scope) error {
				_, err := sc.Mesh2dCountHangingEdges()
				return err
			})
			var merr *meshkernel.Error
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, tc.kind, merr.Kind)
			assert.Equal(t, int32(tc.status), merr.Status)
			assert.Equal(t, "injected "+tc.status.String(), merr.Native)
			assert.Equal(t, "mesh2d_count_hanging_edges", merr.Op)
		})
	}

	// The session is still usable after engine failures.
	with(t, s, func(sc *meshkernel.Scope) error {
		_, err := sc.Mesh2dCountHangingEdges()
		return err
	})
}

func TestNotImplementedOperation(t *testing.T) {
	m, _ := newManager(t)
	s := newSession(t, m)
	mesh, err := meshkernel.NewRectilinearMesh2d(2, 2, pt(0, 0), 1)
	require.NoError(t, err)

	err = s.With(t.Context(), func(sc *meshkernel.Scope) error {
		if err := sc.SetMesh2d(mesh); err != nil {
			return err
		}
		return sc.Mesh2dRefineBasedOnPolygon(meshkernel.GeometryList{}, meshkernel.DefaultInterpolationParameters())
	})
	var merr *meshkernel.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, meshkernel.KindEngine, merr.Kind)
	assert.Equal(t, int32(meshkernel.StatusNotImplemented), merr.Status)
}

func TestConcurrentFailuresKeepTheirOwnStatus(t *testing.T) {
	m, _ := newManagerWith(t, mockengine.New(mockengine.WithCallDelay(time.Millisecond)))
	const sessions = 6
	var wg sync.WaitGroup
	errs := make([]error, sessions)
	for i := 0; i < sessions; i++ {
		s := newSession(t, m)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.With(t.Context(), func(sc *meshkernel.Scope) error {
				if i%2 == 0 {
					_, err := sc.Mesh2dInsertEdge(0, 1)
					return err
				}
				return sc.Mesh2dRefineBasedOnPolygon(meshkernel.GeometryList{}, meshkernel.DefaultInterpolationParameters())
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		var merr *meshkernel.Error
		require.ErrorAs(t, err, &merr, "session %d", i)
		if i%2 == 0 {
			assert.Equal(t, meshkernel.KindValidation, merr.Kind)
			assert.Equal(t, int32(meshkernel.StatusRangeError), merr.Status)
		} else {
			assert.Equal(t, meshkernel.KindEngine, merr.Kind)
			assert.Equal(t, int32(meshkernel.StatusNotImplemented), merr.Status)
		}
	}
}
