package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// NativeAvailable reports whether this binary links the MeshKernel library.
const NativeAvailable = backend.NativeAvailable

var (
	Version         = "v0.0.0-in-progress"
	UpstreamVersion = "unknown"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// EngineVersion returns the version string reported by e, falling back to
// the pinned upstream version when the engine reports none.
func EngineVersion(e Engine) string {
	if e != nil {
		if v := e.Version(); v != "" {
			return v
		}
	}
	return UpstreamVersion
}
