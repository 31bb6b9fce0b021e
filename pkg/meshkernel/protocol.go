package meshkernel

import (
	"fmt"

	"github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"
)

// Algorithm names a stateful curvilinear algorithm.
type Algorithm = backend.Algorithm

const (
	AlgorithmOrthogonalization    = backend.AlgorithmOrthogonalization
	AlgorithmLineShift            = backend.AlgorithmLineShift
	AlgorithmAttractionRepulsion  = backend.AlgorithmAttractionRepulsion
	AlgorithmDirectionalSmoothing = backend.AlgorithmDirectionalSmoothing
)

// ProtocolState is the position of a session in the
// initialize, configure, execute, finalize sequence.
type ProtocolState int

const (
	StateIdle ProtocolState = iota
	StateInitialized
	StateConfigured
	StateExecuted
)

func (s ProtocolState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialized:
		return "initialized"
	case StateConfigured:
		return "configured"
	case StateExecuted:
		return "executed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// protocol tracks the one algorithm a session may run at a time. Checks run
// before the engine call; transitions are applied only after it succeeded.
type protocol struct {
	state   ProtocolState
	alg     Algorithm
	hasLine bool
	// executed survives reconfiguration so one-shot algorithms cannot run
	// twice per initialize.
	executed bool
}

func accepts(alg Algorithm, k backend.ConstraintKind) bool {
	switch alg {
	case AlgorithmOrthogonalization:
		return k == backend.ConstraintBlock || k == backend.ConstraintFrozenLine
	case AlgorithmLineShift:
		return k == backend.ConstraintLine || k == backend.ConstraintBlock || k == backend.ConstraintMoveNode
	case AlgorithmAttractionRepulsion, AlgorithmDirectionalSmoothing:
		return k == backend.ConstraintLine || k == backend.ConstraintBlock
	}
	return false
}

func needsLine(alg Algorithm) bool {
	return alg != AlgorithmOrthogonalization
}

func executesOnce(alg Algorithm) bool {
	return alg == AlgorithmAttractionRepulsion || alg == AlgorithmDirectionalSmoothing
}

func (p *protocol) active(op string, alg Algorithm) error {
	if p.state == StateIdle {
		return invalidStatef(op, "%s is not initialized", alg)
	}
	if p.alg != alg {
		return invalidStatef(op, "%s is active", p.alg)
	}
	return nil
}

func (p *protocol) checkInitialize(op string, alg Algorithm) error {
	if p.state == StateIdle {
		return nil
	}
	if p.alg != alg {
		return invalidStatef(op, "%s is active; finalize it first", p.alg)
	}
	return invalidStatef(op, "%s is already %s", alg, p.state)
}

func (p *protocol) checkConfigure(op string, alg Algorithm, k backend.ConstraintKind) error {
	if err := p.active(op, alg); err != nil {
		return err
	}
	if !accepts(alg, k) {
		return validationf(op, "%s does not accept %s constraints", alg, k)
	}
	if k == backend.ConstraintMoveNode && !p.hasLine {
		return invalidStatef(op, "set a line before moving nodes")
	}
	return nil
}

func (p *protocol) checkExecute(op string, alg Algorithm) error {
	if err := p.active(op, alg); err != nil {
		return err
	}
	if needsLine(alg) && !p.hasLine {
		return invalidStatef(op, "%s needs a line", alg)
	}
	if executesOnce(alg) && p.executed {
		return invalidStatef(op, "%s already executed; finalize and initialize again", alg)
	}
	return nil
}

func (p *protocol) initialized(alg Algorithm) {
	*p = protocol{state: StateInitialized, alg: alg}
}

func (p *protocol) configured(k backend.ConstraintKind) {
	if k == backend.ConstraintLine {
		p.hasLine = true
	}
	p.state = StateConfigured
}

func (p *protocol) ran() {
	p.state = StateExecuted
	p.executed = true
}

func (p *protocol) reset() {
	*p = protocol{}
}

// ProtocolState reports the active algorithm and its state. The algorithm
// is meaningless while the state is StateIdle.
func (sc *Scope) ProtocolState() (Algorithm, ProtocolState, error) {
	var p protocol
	if err := sc.exclusive("protocol_state", func() error {
		p = sc.s.protocol
		return nil
	}); err != nil {
		return 0, StateIdle, err
	}
	return p.alg, p.state, nil
}

func protocolOp(alg Algorithm, step string) string {
	return alg.String() + "_" + step
}

// step checks the protocol, makes the engine call and commits the
// transition, all under one hold of the call lock.
func (sc *Scope) step(op string, check func(*protocol) error, fn func(id backend.ContextID) backend.Status, commit func(*protocol)) error {
	return sc.exclusive(op, func() error {
		if err := check(&sc.s.protocol); err != nil {
			return err
		}
		if err := sc.invoke(op, fn); err != nil {
			return err
		}
		commit(&sc.s.protocol)
		return nil
	})
}

func (sc *Scope) initialize(alg Algorithm, params any) error {
	op := protocolOp(alg, "initialize")
	return sc.step(op,
		func(p *protocol) error { return p.checkInitialize(op, alg) },
		func(id backend.ContextID) backend.Status { return sc.m.engine.AlgorithmInitialize(id, alg, params) },
		func(p *protocol) { p.initialized(alg) },
	)
}

func (sc *Scope) configure(alg Algorithm, c backend.Constraint) error {
	op := protocolOp(alg, "set_"+c.Kind.String())
	return sc.step(op,
		func(p *protocol) error { return p.checkConfigure(op, alg, c.Kind) },
		func(id backend.ContextID) backend.Status { return sc.m.engine.AlgorithmConfigure(id, alg, c) },
		func(p *protocol) { p.configured(c.Kind) },
	)
}

func (sc *Scope) execute(alg Algorithm) error {
	op := protocolOp(alg, "execute")
	return sc.step(op,
		func(p *protocol) error { return p.checkExecute(op, alg) },
		func(id backend.ContextID) backend.Status { return sc.m.engine.AlgorithmExecute(id, alg) },
		(*protocol).ran,
	)
}

func (sc *Scope) finalize(alg Algorithm) error {
	op := protocolOp(alg, "finalize")
	return sc.step(op,
		func(p *protocol) error { return p.active(op, alg) },
		func(id backend.ContextID) backend.Status { return sc.m.engine.AlgorithmFinalize(id, alg) },
		(*protocol).reset,
	)
}

func constraint(k backend.ConstraintKind, first, second Point) backend.Constraint {
	return backend.Constraint{Kind: k, First: first.toBackend(), Second: second.toBackend()}
}
