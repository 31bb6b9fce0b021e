// Package meshkernel is a Go binding for the MeshKernel mesh generation
// engine. It owns engine session lifetimes, converts between Go slices and
// the engine's flat buffer layouts, and maps engine status codes to typed
// errors.
//
// A Manager hands out sessions; all work on a session happens inside
// Session.With, which grants exclusive access through a Scope:
//
//	m, err := meshkernel.NewManager(mockengine.New())
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	s, err := m.Create(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	err = s.With(ctx, func(sc *meshkernel.Scope) error {
//		if err := sc.CurvilinearMakeUniform(meshkernel.DefaultMakeGridParameters(), meshkernel.GeometryList{}); err != nil {
//			return err
//		}
//		grid, err := sc.CurvilinearGrid()
//		...
//	})
//
// Builds without cgo, or without the meshkernel build tag, use a backend
// that reports ErrNotBuilt; mockengine provides a pure Go engine for tests
// and tooling.
package meshkernel
