// Package mockengine is a pure-Go reference implementation of the MeshKernel
// engine contract for Cartesian meshes.
//
// It keeps per-context mesh state, computes Mesh2d faces on retrieval, and
// implements the curvilinear grid operations and stateful algorithms with
// simple, deterministic numerics (Laplacian smoothing in place of the
// engine's orthogonalization solver, polyline Coons patches in place of
// spline interpolation). Results are therefore close to, but not identical
// with, those of libMeshKernelApi.
//
// The engine is instrumented for tests of the binding: Outstanding reports
// engine allocations that were never freed, FailNext injects a failure into
// the next call, and concurrent use of one context is detected and reported
// as a failed call (see Violations).
package mockengine
