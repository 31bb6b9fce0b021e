package meshkernel

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

func TestProtocolAcceptedConstraints(t *testing.T) {
	all := []backend.ConstraintKind{backend.ConstraintBlock, backend.ConstraintLine, backend.ConstraintFrozenLine, backend.ConstraintMoveNode}
	want := map[Algorithm][]backend.ConstraintKind{
		AlgorithmOrthogonalization:    {backend.ConstraintBlock, backend.ConstraintFrozenLine},
		AlgorithmLineShift:            {backend.ConstraintBlock, backend.ConstraintLine, backend.ConstraintMoveNode},
		AlgorithmAttractionRepulsion:  {backend.ConstraintBlock, backend.ConstraintLine},
		AlgorithmDirectionalSmoothing: {backend.ConstraintBlock, backend.ConstraintLine},
	}
	for alg, kinds := range want {
		for _, k := range all {
			assert.Equal(t, slices.Contains(kinds, k), accepts(alg, k), "%s %s", alg, k)
		}
	}
}

func TestProtocolTransitions(t *testing.T) {
	var p protocol
	const op = "test"

	require.NoError(t, p.checkInitialize(op, AlgorithmAttractionRepulsion))
	p.initialized(AlgorithmAttractionRepulsion)
	assert.Equal(t, StateInitialized, p.state)

	err := p.checkConfigure(op, AlgorithmAttractionRepulsion, backend.ConstraintFrozenLine)
	assert.ErrorIs(t, err, ErrValidation, "unsupported constraint kind")
	assert.ErrorIs(t, p.checkExecute(op, AlgorithmAttractionRepulsion), ErrInvalidState, "no line yet")

	require.NoError(t, p.checkConfigure(op, AlgorithmAttractionRepulsion, backend.ConstraintLine))
	p.configured(backend.ConstraintLine)
	assert.Equal(t, StateConfigured, p.state)
	assert.True(t, p.hasLine)

	require.NoError(t, p.checkExecute(op, AlgorithmAttractionRepulsion))
	p.ran()
	assert.Equal(t, StateExecuted, p.state)

	// Reconfiguring after execute does not allow a second run.
	p.configured(backend.ConstraintBlock)
	assert.ErrorIs(t, p.checkExecute(op, AlgorithmAttractionRepulsion), ErrInvalidState)

	assert.ErrorIs(t, p.active(op, AlgorithmLineShift), ErrInvalidState)
	require.NoError(t, p.active(op, AlgorithmAttractionRepulsion))
	p.reset()
	assert.Equal(t, StateIdle, p.state)
	assert.False(t, p.executed)
}

func TestOrthogonalizationRunsWithoutLine(t *testing.T) {
	var p protocol
	p.initialized(AlgorithmOrthogonalization)
	require.NoError(t, p.checkExecute("test", AlgorithmOrthogonalization))
	p.ran()
	assert.NoError(t, p.checkExecute("test", AlgorithmOrthogonalization))
}
