package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// Numeric is the set of element types mesh buffers carry.
type Numeric interface {
	~int32 | ~float64
}

// Strided is a non-contiguous view over a backing slice: element i lives at
// Data[Offset+i*Stride]. Use it to feed columns of an interleaved table to
// the constructors without copying by hand.
type Strided[T Numeric] struct {
	Data   []T
	Offset int
	Stride int
	Len    int
}

// Gather materialises the view into a fresh dense slice.
func (s Strided[T]) Gather() ([]T, error) {
	out, err := backend.Strided[T]{Data: s.Data, Offset: s.Offset, Stride: s.Stride, Len: s.Len}.Gather()
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: "gather", Detail: err.Error(), Cause: err}
	}
	return out, nil
}

// Gather copies src densely. The result is never nil.
func Gather[T Numeric](src []T) []T {
	return backend.Contiguous(src)
}

// GeometryFromStrided builds a GeometryList from interleaved storage, for
// example rows of (x, y, value) in one slice.
func GeometryFromStrided(x, y, values Strided[float64], opts ...GeometryOption) (GeometryList, error) {
	xs, err := x.Gather()
	if err != nil {
		return GeometryList{}, err
	}
	ys, err := y.Gather()
	if err != nil {
		return GeometryList{}, err
	}
	var vs []float64
	if values.Data != nil {
		if vs, err = values.Gather(); err != nil {
			return GeometryList{}, err
		}
	}
	return NewGeometryList(xs, ys, vs, opts...)
}
