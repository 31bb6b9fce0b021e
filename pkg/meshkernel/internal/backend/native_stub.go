//go:build !cgo || !meshkernel

package backend

// Stub for builds without the native library. Build with CGO_ENABLED=1 and
// -tags meshkernel to link libMeshKernelApi.

// NativeAvailable reports whether the native engine was linked.
const NativeAvailable = false

// NewNative returns ErrNotBuilt.
func NewNative() (Engine, error) {
	return nil, ErrNotBuilt
}
