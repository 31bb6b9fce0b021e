// Package backend hosts the boundary between the Go API and the native
// MeshKernel engine: the fixed-layout structures the engine reads and writes,
// the marshalling helpers that produce them, and the Engine contract with its
// native (cgo) and stub implementations. The real binding lives behind the
// `meshkernel` build tag so the rest of the repository compiles without cgo.
package backend
